// Package bus broadcasts triggered signals from the pipeline to N sink
// channels (Redis, SQLite, webhooks). A slow sink never blocks the pipeline:
// when its channel is full the signal is dropped for that sink only.
package bus

import (
	"context"
	"log"
	"sync"

	"signal-systemv1/internal/model"
)

// FanOut broadcasts signals from a single input channel to N output channels.
type FanOut struct {
	mu      sync.RWMutex
	outputs []chan model.Signal
	names   []string
	bufSize int

	// OnDrop is called when a signal is dropped for a subscriber.
	OnDrop func(sink string)
}

// New creates a FanOut with the given buffer size for output channels.
func New(outputBufferSize int) *FanOut {
	return &FanOut{
		bufSize: outputBufferSize,
	}
}

// Subscribe creates and returns a new named output channel.
func (f *FanOut) Subscribe(name string) <-chan model.Signal {
	ch := make(chan model.Signal, f.bufSize)
	f.mu.Lock()
	f.outputs = append(f.outputs, ch)
	f.names = append(f.names, name)
	f.mu.Unlock()
	return ch
}

// Run reads from the input channel and fans out to all subscribers.
// Blocks until ctx is cancelled or input is closed.
func (f *FanOut) Run(ctx context.Context, input <-chan model.Signal) {
	defer func() {
		f.mu.RLock()
		for _, ch := range f.outputs {
			close(ch)
		}
		f.mu.RUnlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-input:
			if !ok {
				return
			}
			f.mu.RLock()
			for i, ch := range f.outputs {
				select {
				case ch <- sig:
				default:
					if f.OnDrop != nil {
						f.OnDrop(f.names[i])
					} else {
						log.Printf("[bus] sink %q full, dropping signal %s", f.names[i], sig.Key())
					}
				}
			}
			f.mu.RUnlock()
		}
	}
}
