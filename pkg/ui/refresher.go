// refresher.go - off-thread snapshot reloads driven by file watching.
package ui

import (
	"context"
	"log"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/suiteview/pkg/loader"
	"github.com/vanderheijden86/suiteview/pkg/model"
)

// Refresher watches a snapshot directory and reloads collections off
// the UI thread, pushing results into the program as messages.
type Refresher struct {
	snapshot *loader.Snapshot
	watcher  *loader.Watcher
	program  *tea.Program

	mu      sync.Mutex
	started bool
	done    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRefresher builds a refresher for the given snapshot. Call
// SetProgram before Start.
func NewRefresher(snapshot *loader.Snapshot) (*Refresher, error) {
	watcher, err := loader.Watch(snapshot.Dir())
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Refresher{
		snapshot: snapshot,
		watcher:  watcher,
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// SetProgram wires the bubbletea program that receives reload
// messages.
func (r *Refresher) SetProgram(p *tea.Program) { r.program = p }

// Start begins the reload loop. Idempotent.
func (r *Refresher) Start() {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()

	go r.loop()
}

// Stop shuts the refresher down.
func (r *Refresher) Stop() {
	r.cancel()
	r.watcher.Stop()

	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if started {
		<-r.done
	}
}

func (r *Refresher) loop() {
	defer close(r.done)
	for {
		select {
		case <-r.ctx.Done():
			return
		case _, ok := <-r.watcher.Events():
			if !ok {
				return
			}
			r.reload()
		}
	}
}

func (r *Refresher) reload() {
	collections, err := r.snapshot.Load(r.ctx)
	if err != nil {
		log.Printf("warning: snapshot reload failed: %v", err)
		if r.program != nil {
			r.program.Send(LoadFailedMsg{Err: err})
		}
		return
	}
	if r.program != nil {
		r.program.Send(CollectionsLoadedMsg{Collections: collections})
	}
}

// CollectionsLoadedMsg delivers a fresh set of collections, either
// from the initial fetch or a snapshot reload.
type CollectionsLoadedMsg struct {
	Collections model.Collections
}

// LoadFailedMsg reports a failed fetch or reload. The dashboard keeps
// the last good data and offers a retry.
type LoadFailedMsg struct {
	Err error
}
