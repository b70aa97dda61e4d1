package engine

// EventWithArg is a multicast event carrying a typed payload, such as a
// claw state change or a delivered prize. Listeners run synchronously, on
// the tick that raised the event, in the order they were added.
type EventWithArg[T any] struct {
	listeners []func(T)
}

// AddListener subscribes fn. A nil fn is ignored.
func (e *EventWithArg[T]) AddListener(fn func(T)) {
	if fn == nil {
		return
	}
	e.listeners = append(e.listeners, fn)
}

// Clear drops every listener.
func (e *EventWithArg[T]) Clear() {
	e.listeners = nil
}

func (e *EventWithArg[T]) Invoke(arg T) {
	for _, fn := range e.listeners {
		fn(arg)
	}
}

// Len is the number of subscribed listeners.
func (e *EventWithArg[T]) Len() int {
	return len(e.listeners)
}
