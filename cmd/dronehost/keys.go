package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"
)

// runKeys puts the terminal into raw mode and feeds key presses to the
// surface until ctx is done or a quit key arrives. Without a terminal on
// stdin it only waits for ctx.
func runKeys(ctx context.Context, s *surface, v *voice, quit context.CancelFunc) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		<-ctx.Done()
		return nil
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("terminal raw mode: %w", err)
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	fmt.Fprint(os.Stderr, toRaw(usageKeys))

	keys := make(chan byte, 16)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				close(keys)
				return
			}
			if n == 1 {
				keys <- buf[0]
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case key, ok := <-keys:
			if !ok || !s.handleKey(key, v) {
				quit()
				return nil
			}
		}
	}
}

// toRaw converts line feeds for a terminal in raw mode.
func toRaw(text string) string {
	out := make([]byte, 0, len(text)+16)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			out = append(out, '\r')
		}
		out = append(out, text[i])
	}
	return string(out)
}
