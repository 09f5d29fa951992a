package timeline

// EventName identifies a composition notification.
type EventName string

const (
	EventCondensedChanged     EventName = "condensed-view-changed"
	EventSourceAdded          EventName = "source-added"
	EventSourceRemoved        EventName = "source-removed"
	EventGlobalEffectAdded    EventName = "global-effect-added"
	EventGlobalEffectRemoved  EventName = "global-effect-removed"
	EventSimpleEffectAdded    EventName = "simple-effect-added"
	EventSimpleEffectRemoved  EventName = "simple-effect-removed"
	EventComplexEffectAdded   EventName = "complex-effect-added"
	EventComplexEffectRemoved EventName = "complex-effect-removed"
	EventTransitionAdded      EventName = "transition-added"
	EventTransitionRemoved    EventName = "transition-removed"
)

// Events lists every notification a composition emits.
var Events = []EventName{
	EventCondensedChanged,
	EventSourceAdded,
	EventSourceRemoved,
	EventGlobalEffectAdded,
	EventGlobalEffectRemoved,
	EventSimpleEffectAdded,
	EventSimpleEffectRemoved,
	EventComplexEffectAdded,
	EventComplexEffectRemoved,
	EventTransitionAdded,
	EventTransitionRemoved,
}

// Event is a notification payload. Object is set for added/removed events,
// Condensed for condensed-view-changed (the full new sequence, not a diff).
type Event struct {
	Name        EventName
	Composition string
	Object      *Object
	Condensed   []*Object
}

// Listener receives notifications.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// bus delivers notifications synchronously, in registration order.
//
// Mutating operations hold the bus for their whole duration. Events emitted
// while held are queued and drained when the outermost hold is released, so
// listeners always observe a composition whose operation has completed. A
// listener that issues another mutation gets that mutation's events appended
// to the same queue, delivered after it returns.
type bus struct {
	listeners map[EventName][]subscription
	nextID    int
	queue     eventQueue
	holds     int
	draining  bool
}

func newBus() *bus {
	return &bus{listeners: make(map[EventName][]subscription)}
}

func (b *bus) on(name EventName, fn Listener) func() {
	b.nextID++
	id := b.nextID
	b.listeners[name] = append(b.listeners[name], subscription{id: id, fn: fn})
	return func() {
		subs := b.listeners[name]
		for i, s := range subs {
			if s.id == id {
				b.listeners[name] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

func (b *bus) hold() {
	b.holds++
}

func (b *bus) release() {
	b.holds--
	if b.holds == 0 {
		b.drain()
	}
}

func (b *bus) emit(ev Event) {
	b.queue.push(ev)
	if b.holds == 0 {
		b.drain()
	}
}

func (b *bus) drain() {
	if b.draining {
		return
	}
	b.draining = true
	defer func() { b.draining = false }()

	for {
		ev, ok := b.queue.pop()
		if !ok {
			return
		}
		// Snapshot so unsubscribing from inside a listener is safe.
		subs := append([]subscription(nil), b.listeners[ev.Name]...)
		for _, s := range subs {
			s.fn(ev)
		}
	}
}

// eventQueue is an unbounded FIFO of pending notifications.
type eventQueue struct {
	events []Event
}

func (q *eventQueue) push(ev Event) {
	q.events = append(q.events, ev)
}

func (q *eventQueue) pop() (Event, bool) {
	if len(q.events) == 0 {
		return Event{}, false
	}
	ev := q.events[0]

	// Nil out the slot so the backing array does not pin payloads.
	q.events[0] = Event{}
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return ev, true
}

func (q *eventQueue) len() int {
	return len(q.events)
}
