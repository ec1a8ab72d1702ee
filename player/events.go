package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/eonplay/eonplay/log"
)

// nativeEvent is one decoded mpv event line.
type nativeEvent struct {
	Event      string `json:"event"`
	Name       string `json:"name"`
	Data       any    `json:"data"`
	Reason     string `json:"reason"`
	FileError  string `json:"file_error"`
	EntryID    int64  `json:"playlist_entry_id"`
	RequestID  int64  `json:"request_id"`
	ObserverID int64  `json:"id"`
}

// observed lists the properties whose changes drive state translation.
var observed = []string{
	"pause",
	"paused-for-cache",
	"eof-reached",
	"idle-active",
	"duration",
	"volume",
}

// eventListener reads mpv events from a dedicated connection on its own
// goroutine. Observers are per connection, so they are registered on the
// same connection that is read.
type eventListener struct {
	socketPath string
	conn       net.Conn
	callback   func(nativeEvent)
	mu         sync.Mutex
	listening  bool
	done       chan struct{}
}

func newEventListener(socketPath string, callback func(nativeEvent)) *eventListener {
	return &eventListener{
		socketPath: socketPath,
		callback:   callback,
		done:       make(chan struct{}),
	}
}

func (el *eventListener) start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range observed {
		payload, err := json.Marshal(ipcCommand{
			Command:   []any{"observe_property", i + 1, name},
			RequestID: requestSeq.Add(1),
		})
		if err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.listening = true
	go el.readLoop()

	log.For("player").WithField("socket", el.socketPath).Debug("event listener started")
	return nil
}

func (el *eventListener) stop() {
	el.mu.Lock()
	if !el.listening {
		el.mu.Unlock()
		return
	}
	el.listening = false
	conn := el.conn
	el.mu.Unlock()

	conn.Close()
	<-el.done
}

func (el *eventListener) readLoop() {
	defer close(el.done)

	scanner := bufio.NewScanner(el.conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		var ev nativeEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		if ev.Event == "" {
			continue
		}
		el.callback(ev)
	}

	el.mu.Lock()
	wasListening := el.listening
	el.listening = false
	el.mu.Unlock()

	if wasListening {
		log.For("player").Warn("event listener disconnected")
	}
}
