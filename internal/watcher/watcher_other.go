//go:build !darwin && !windows

package watcher

// Watcher is a stub for platforms without a native implementation.
// TODO: Implement using inotify on Linux
type Watcher struct {
	eventCh chan Event
}

// New creates a new filesystem watcher (stub)
func New() (*Watcher, error) {
	return &Watcher{
		eventCh: make(chan Event, 100),
	}, nil
}

// Events returns the channel for receiving filesystem events
func (w *Watcher) Events() <-chan Event {
	return w.eventCh
}

// AddRecursive adds a path to watch recursively (stub - does nothing)
func (w *Watcher) AddRecursive(root string) error {
	return nil
}

// Start begins watching for events (stub - does nothing)
func (w *Watcher) Start() {
}

// Stop stops the watcher (stub)
func (w *Watcher) Stop() error {
	close(w.eventCh)
	return nil
}
