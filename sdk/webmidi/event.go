package webmidi

import "sync"

// Controller identifies the control-change controller an event refers to.
type Controller struct {
	Number uint8  // Controller number, 0-119.
	Name   string // Well-known name, or "" for valid but unnamed numbers.
}

// Event is delivered to listeners for every decoded inbound message. Type is
// one of the names from the channel voice, channel mode or system tables,
// plus "rpn" and "nrpn" for assembled parameter sequences. Fields beyond
// Type, Timestamp and Data are populated per event family.
type Event struct {
	Type      string
	Timestamp float64
	Data      []byte // Raw message bytes as received from the host.

	Target *InputChannel // Originating channel; nil for port-level system events.
	Port   *Input        // Originating port.

	Note       Note       // noteon, noteoff, keyaftertouch.
	Controller Controller // controlchange.
	Value      float64    // Normalized value; meaning depends on Type.
	RawValue   uint8      // Raw data byte backing Value.
	RawPair    [2]uint8   // pitchbend: raw (LSB, MSB) pair behind the 14-bit value.
	Bool       bool       // localcontrol, omnimode, monomode state.

	Parameter     [2]byte // rpn, nrpn: selected parameter (MSB, LSB).
	ParameterName string  // rpn: well-known parameter name, if any.
}

// ListenerFunc handles a dispatched event.
type ListenerFunc func(Event)

// Listener is the handle returned by AddListener, used for removal.
type Listener struct {
	eventType string
	fn        ListenerFunc
}

// listenerRegistry is a small pub/sub registry keyed by event type. Dispatch
// runs listeners synchronously in registration order.
type listenerRegistry struct {
	mu        sync.RWMutex
	listeners map[string][]*Listener
}

func newListenerRegistry() *listenerRegistry {
	return &listenerRegistry{listeners: make(map[string][]*Listener)}
}

func (r *listenerRegistry) add(eventType string, fn ListenerFunc) *Listener {
	l := &Listener{eventType: eventType, fn: fn}
	r.mu.Lock()
	r.listeners[eventType] = append(r.listeners[eventType], l)
	r.mu.Unlock()
	return l
}

func (r *listenerRegistry) remove(l *Listener) {
	if l == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.listeners[l.eventType]
	for i, candidate := range list {
		if candidate == l {
			r.listeners[l.eventType] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(r.listeners[l.eventType]) == 0 {
		delete(r.listeners, l.eventType)
	}
}

func (r *listenerRegistry) removeAll(eventType string) {
	r.mu.Lock()
	if eventType == "" {
		r.listeners = make(map[string][]*Listener)
	} else {
		delete(r.listeners, eventType)
	}
	r.mu.Unlock()
}

func (r *listenerRegistry) has(eventType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if eventType == "" {
		return len(r.listeners) > 0
	}
	return len(r.listeners[eventType]) > 0
}

func (r *listenerRegistry) emit(e Event) {
	r.mu.RLock()
	list := make([]*Listener, len(r.listeners[e.Type]))
	copy(list, r.listeners[e.Type])
	r.mu.RUnlock()

	for _, l := range list {
		l.fn(e)
	}
}
