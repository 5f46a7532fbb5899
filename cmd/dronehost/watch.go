package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchControls reloads the control file whenever it is written or
// replaced. The parent directory is watched so editors that save through a
// rename keep working. Parse errors are logged and the previous targets stay.
func watchControls(ctx context.Context, path string, s *surface) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch controls: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch controls: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch controls: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := s.load(abs); err != nil {
				log.Printf("%v\r", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch controls: %v\r", err)
		}
	}
}
