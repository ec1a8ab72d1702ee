package player

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// BinaryVersion returns the first line of `<binary> --version`.
func BinaryVersion(binary string) (string, error) {
	if binary == "" {
		binary = "mpv"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, binary, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("%s --version: %w", binary, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	return "", fmt.Errorf("%s --version: empty output", binary)
}
