package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher signals when any collection file in a snapshot directory
// changes, debouncing bursts from editors and bulk dumps.
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	lastEvent time.Time
	debounce  time.Duration
}

// Watch starts watching the snapshot directory. Callers drain Events
// and call Stop when done.
func Watch(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		watcher:  fsw,
		events:   make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
		debounce: 200 * time.Millisecond,
	}
	go w.loop()
	return w, nil
}

// Events delivers one signal per debounced burst of file changes.
func (w *Watcher) Events() <-chan struct{} { return w.events }

// Stop shuts the watcher down and closes the event channel.
func (w *Watcher) Stop() {
	w.cancel()
	w.watcher.Close()
}

func (w *Watcher) loop() {
	defer close(w.events)
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Only writes and creates matter, and only JSON files.
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".json" {
				continue
			}

			now := time.Now()
			if now.Sub(w.lastEvent) < w.debounce {
				continue
			}
			w.lastEvent = now

			select {
			case w.events <- struct{}{}:
			default:
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
