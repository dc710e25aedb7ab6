package events

import "sync"

// Emitter receives events in the order they happen.
type Emitter interface {
	Emit(ev Event) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ev Event) error

func (f EmitterFunc) Emit(ev Event) error { return f(ev) }

type multiEmitter []Emitter

// Multi sends every event to all emitters. Every emitter sees every event;
// the first error is returned.
func Multi(emitters ...Emitter) Emitter {
	return multiEmitter(emitters)
}

func (m multiEmitter) Emit(ev Event) error {
	var first error
	for _, e := range m {
		if err := e.Emit(ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Recorder keeps every emitted event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Names returns the names of the recorded events, in order.
func (r *Recorder) Names() []Name {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]Name, len(r.events))
	for i, ev := range r.events {
		names[i] = ev.Name()
	}
	return names
}
