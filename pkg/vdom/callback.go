package vdom

// Event is the payload handed to a callback. Its concrete type is decided by
// whatever layer dispatches events; the tree model never inspects it.
type Event any

// Callback is an event handler attached to an element as an attribute value.
//
// Callbacks compare by lineage: a Callback and every copy of it are equal,
// while two Callbacks wrapping the same function separately are not. Go
// functions are not comparable, so identity of the wrapper is the only
// equality that can be decided.
type Callback struct {
	h *handler
}

type handler struct {
	fn func(Event)
}

// NewCallback wraps fn in a new Callback lineage.
func NewCallback(fn func(Event)) Callback {
	return Callback{h: &handler{fn: fn}}
}

// Call invokes the wrapped handler. Calling a zero Callback is a no-op.
func (c Callback) Call(e Event) {
	if c.h == nil || c.h.fn == nil {
		return
	}
	c.h.fn(e)
}

// Same reports whether c and o share a lineage.
func (c Callback) Same(o Callback) bool {
	return c.h == o.h
}

// IsZero reports whether c wraps nothing.
func (c Callback) IsZero() bool {
	return c.h == nil
}

// IsCallback reports whether an attribute value is a Callback.
func IsCallback(v any) bool {
	switch v.(type) {
	case Callback, *Callback:
		return true
	}
	return false
}
