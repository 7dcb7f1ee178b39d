package input

// Pointer is a single pointer sample in window pixels. ID is the touch
// finger id, or zero for the mouse.
type Pointer struct {
	ID   int64
	X, Y float32
}

type listenerKind int

const (
	moveListener listenerKind = iota
	endListener
)

type listener struct {
	id   uint64
	kind listenerKind
	fn   func(Pointer)
}

// Dispatcher fans pointer move and end events out to registered listeners.
// Listeners are called in registration order.
type Dispatcher struct {
	nextID    uint64
	listeners []listener
}

// Subscription removes a listener when no longer needed.
type Subscription struct {
	id uint64
	d  *Dispatcher
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// OnMove registers fn for pointer move events.
func (d *Dispatcher) OnMove(fn func(Pointer)) Subscription {
	return d.add(moveListener, fn)
}

// OnEnd registers fn for pointer release and cancel events.
func (d *Dispatcher) OnEnd(fn func(Pointer)) Subscription {
	return d.add(endListener, fn)
}

func (d *Dispatcher) add(kind listenerKind, fn func(Pointer)) Subscription {
	d.nextID++
	d.listeners = append(d.listeners, listener{id: d.nextID, kind: kind, fn: fn})
	return Subscription{id: d.nextID, d: d}
}

// Move delivers a move event.
func (d *Dispatcher) Move(p Pointer) {
	d.dispatch(moveListener, p)
}

// End delivers a release event.
func (d *Dispatcher) End(p Pointer) {
	d.dispatch(endListener, p)
}

// Len returns the number of registered listeners.
func (d *Dispatcher) Len() int {
	return len(d.listeners)
}

func (d *Dispatcher) dispatch(kind listenerKind, p Pointer) {
	// Listeners may remove themselves while being called.
	snapshot := append([]listener(nil), d.listeners...)
	for _, l := range snapshot {
		if l.kind == kind && d.has(l.id) {
			l.fn(p)
		}
	}
}

func (d *Dispatcher) has(id uint64) bool {
	for _, l := range d.listeners {
		if l.id == id {
			return true
		}
	}
	return false
}

// Remove unregisters the listener. Removing twice is a no-op.
func (s Subscription) Remove() {
	if s.d == nil {
		return
	}
	for i, l := range s.d.listeners {
		if l.id == s.id {
			s.d.listeners = append(s.d.listeners[:i], s.d.listeners[i+1:]...)
			return
		}
	}
}
