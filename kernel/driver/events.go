package driver

import (
	"container/heap"
	"fmt"
)

// EventKind identifies a scheduled scenario event.
type EventKind int

const (
	EventLeave EventKind = iota
	EventJoin
	EventFault
)

func (k EventKind) String() string {
	switch k {
	case EventLeave:
		return "leave"
	case EventJoin:
		return "join"
	case EventFault:
		return "fault"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one scheduled membership change or fault injection.
type Event struct {
	Tick  int64
	Kind  EventKind
	Seq   int64  // scheduling order, deterministic tie-breaker
	Node  string // join/leave
	Trust int    // join
	Fault string // fault descriptor
}

// EventHeap is a priority queue with deterministic ordering.
// Ordering: tick → kind (leave, join, fault) → seq.
// Leaves sort first so a node that leaves and another that joins on the same
// tick never appear together in that tick's membership.
type EventHeap struct {
	events []Event
	seq    int64
}

// NewEventHeap creates an empty event heap.
func NewEventHeap() *EventHeap {
	h := &EventHeap{events: make([]Event, 0)}
	heap.Init(h)
	return h
}

// Len implements heap.Interface
func (h *EventHeap) Len() int {
	return len(h.events)
}

// Less implements heap.Interface
func (h *EventHeap) Less(i, j int) bool {
	ei, ej := h.events[i], h.events[j]
	if ei.Tick != ej.Tick {
		return ei.Tick < ej.Tick
	}
	if ei.Kind != ej.Kind {
		return ei.Kind < ej.Kind
	}
	return ei.Seq < ej.Seq
}

// Swap implements heap.Interface
func (h *EventHeap) Swap(i, j int) {
	h.events[i], h.events[j] = h.events[j], h.events[i]
}

// Push implements heap.Interface
func (h *EventHeap) Push(x interface{}) {
	h.events = append(h.events, x.(Event))
}

// Pop implements heap.Interface
func (h *EventHeap) Pop() interface{} {
	old := h.events
	n := len(old)
	item := old[n-1]
	h.events = old[0 : n-1]
	return item
}

// Schedule adds e to the heap, stamping it with the next sequence number.
func (h *EventHeap) Schedule(e Event) {
	e.Seq = h.seq
	h.seq++
	heap.Push(h, e)
}

// PopDue removes and returns every event with Tick <= now, in order.
func (h *EventHeap) PopDue(now int64) []Event {
	var due []Event
	for h.Len() > 0 && h.events[0].Tick <= now {
		due = append(due, heap.Pop(h).(Event))
	}
	return due
}

// Peek returns the next event without removing it.
func (h *EventHeap) Peek() (Event, bool) {
	if h.Len() == 0 {
		return Event{}, false
	}
	return h.events[0], true
}
