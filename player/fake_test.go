package player

import (
	"bufio"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"sync"
)

// fakeMPV speaks enough of mpv's JSON-IPC protocol to drive the adapter.
// Every reply is preceded by an unrelated event line, as mpv broadcasts
// events to all clients.
type fakeMPV struct {
	ln   net.Listener
	dir  string
	path string

	mu       sync.Mutex
	props    map[string]any
	conns    []net.Conn
	commands [][]any
	onLoad   func(f *fakeMPV, target string)
}

func newFakeMPV() (*fakeMPV, error) {
	dir, err := os.MkdirTemp("", "fakempv")
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "mpv.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	f := &fakeMPV{
		ln:    ln,
		dir:   dir,
		path:  path,
		props: map[string]any{"volume": float64(100)},
		onLoad: func(f *fakeMPV, _ string) {
			f.broadcast(map[string]any{"event": "file-loaded"})
		},
	}
	go f.accept()
	return f, nil
}

func (f *fakeMPV) close() {
	f.ln.Close()
	f.mu.Lock()
	for _, c := range f.conns {
		c.Close()
	}
	f.mu.Unlock()
	os.RemoveAll(f.dir)
}

func (f *fakeMPV) set(name string, value any) {
	f.mu.Lock()
	f.props[name] = value
	f.mu.Unlock()
}

func (f *fakeMPV) sent(verb string) [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out [][]any
	for _, c := range f.commands {
		if len(c) > 0 && c[0] == verb {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeMPV) broadcast(event map[string]any) {
	line, _ := json.Marshal(event)

	f.mu.Lock()
	conns := append([]net.Conn(nil), f.conns...)
	f.mu.Unlock()

	for _, c := range conns {
		_, _ = c.Write(append(line, '\n'))
	}
}

func (f *fakeMPV) accept() {
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		f.mu.Lock()
		f.conns = append(f.conns, conn)
		f.mu.Unlock()
		go f.serve(conn)
	}
}

func (f *fakeMPV) serve(conn net.Conn) {
	defer func() {
		conn.Close()
		f.mu.Lock()
		for i, c := range f.conns {
			if c == conn {
				f.conns = append(f.conns[:i], f.conns[i+1:]...)
				break
			}
		}
		f.mu.Unlock()
	}()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var req ipcCommand
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil || len(req.Command) == 0 {
			continue
		}

		f.mu.Lock()
		f.commands = append(f.commands, req.Command)
		resp := map[string]any{"request_id": req.RequestID, "error": "success"}
		var loaded string

		switch req.Command[0] {
		case "get_property":
			name, _ := req.Command[1].(string)
			if v, ok := f.props[name]; ok {
				resp["data"] = v
			} else {
				resp["error"] = "property unavailable"
			}
		case "set_property":
			name, _ := req.Command[1].(string)
			f.props[name] = req.Command[2]
		case "seek":
			f.props["time-pos"] = req.Command[1]
		case "loadfile":
			loaded, _ = req.Command[1].(string)
		}
		onLoad := f.onLoad
		f.mu.Unlock()

		noise, _ := json.Marshal(map[string]any{"event": "audio-reconfig"})
		reply, _ := json.Marshal(resp)
		_, _ = conn.Write(append(noise, '\n'))
		_, _ = conn.Write(append(reply, '\n'))

		if loaded != "" && onLoad != nil {
			onLoad(f, loaded)
		}
	}
}
