package engine

import (
	"os"
	"sync"
)

// tmpRegistry tracks in-flight temporary files so an aborted run can
// sweep its droppings out of the backup folder.
type tmpRegistry struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

func newTmpRegistry() *tmpRegistry {
	return &tmpRegistry{paths: make(map[string]struct{})}
}

func (t *tmpRegistry) register(path string) {
	t.mu.Lock()
	t.paths[path] = struct{}{}
	t.mu.Unlock()
}

func (t *tmpRegistry) deregister(path string) {
	t.mu.Lock()
	delete(t.paths, path)
	t.mu.Unlock()
}

// cleanup removes every registered temporary file. Safe to call more
// than once.
func (t *tmpRegistry) cleanup() {
	t.mu.Lock()
	paths := make([]string, 0, len(t.paths))
	for p := range t.paths {
		paths = append(paths, p)
	}
	t.paths = make(map[string]struct{})
	t.mu.Unlock()

	for _, p := range paths {
		_ = os.Remove(p)
	}
}
