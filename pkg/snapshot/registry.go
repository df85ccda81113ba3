package snapshot

import (
	"sync"

	"github.com/vango-dev/vdiff/pkg/vdom"
)

// Registry maps handler names to callbacks.
//
// A name always resolves to the same Callback, so trees decoded through one
// Registry compare their handlers by name. A Registry is safe for concurrent
// use.
type Registry struct {
	// Strict makes Decode fail on handler names that were never registered.
	// Otherwise an unknown name is bound to a fresh no-op callback on first use.
	Strict bool

	mu     sync.RWMutex
	byName map[string]vdom.Callback
	names  map[vdom.Callback]string
}

// NewRegistry returns an empty, non-strict Registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]vdom.Callback),
		names:  make(map[vdom.Callback]string),
	}
}

// Register binds name to cb, replacing any earlier binding of name.
func (r *Registry) Register(name string, cb vdom.Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, rebound := r.byName[name]
	r.byName[name] = cb
	r.names[cb] = name
	if rebound && old != cb && r.names[old] == name {
		r.renameLocked(old)
	}
}

// renameLocked points cb's reverse entry at the smallest name still bound
// to it, or drops the entry when none is.
func (r *Registry) renameLocked(cb vdom.Callback) {
	delete(r.names, cb)
	for n, c := range r.byName {
		if c != cb {
			continue
		}
		if cur, ok := r.names[cb]; !ok || n < cur {
			r.names[cb] = n
		}
	}
}

// Lookup returns the callback bound to name.
func (r *Registry) Lookup(name string) (vdom.Callback, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cb, ok := r.byName[name]
	return cb, ok
}

// Name returns the name cb is registered under.
func (r *Registry) Name(cb vdom.Callback) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.names[cb]
	return name, ok
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// resolve looks name up, binding a placeholder when the registry is not
// strict.
func (r *Registry) resolve(name string) (vdom.Callback, bool) {
	if cb, ok := r.Lookup(name); ok {
		return cb, true
	}
	if r.Strict {
		return vdom.Callback{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cb, ok := r.byName[name]; ok {
		return cb, true
	}
	cb := vdom.NewCallback(func(vdom.Event) {})
	r.byName[name] = cb
	r.names[cb] = name
	return cb, true
}
