package source

import "sync"

// Engine is the native capture/encode/compose layer.
//
// The registry calls CreateNativeHandle when a source is registered and
// DestroyNativeHandle when it is removed. Implementations must not call back
// into the registry.
type Engine interface {
	CreateNativeHandle(t Type, settings map[string]any) (Handle, error)
	DestroyNativeHandle(h Handle)
}

// NullEngine is an Engine that hands out integer handles without creating
// any native objects. It is used when Studio runs headless and in tests.
//
// All methods are safe for concurrent use.
type NullEngine struct {
	mu   sync.Mutex
	next uint64
	live map[uint64]Type
}

// NewNullEngine creates a NullEngine.
func NewNullEngine() *NullEngine {
	return &NullEngine{live: make(map[uint64]Type)}
}

// CreateNativeHandle returns a new integer handle.
func (e *NullEngine) CreateNativeHandle(t Type, _ map[string]any) (Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	e.live[e.next] = t
	return e.next, nil
}

// DestroyNativeHandle forgets the handle.
func (e *NullEngine) DestroyNativeHandle(h Handle) {
	id, ok := h.(uint64)
	if !ok {
		return
	}
	e.mu.Lock()
	delete(e.live, id)
	e.mu.Unlock()
}

// LiveHandles returns the number of handles created and not yet destroyed.
func (e *NullEngine) LiveHandles() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.live)
}
