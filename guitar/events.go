package guitar

import "sort"

// EventType selects what an Event does to a string.
type EventType int

const (
	EventPluck  EventType = iota // excite the string, then fret Key
	EventDamp                    // mute the string
	EventUndamp                  // release the mute
	EventHammer                  // fret Key without re-exciting
)

func (t EventType) String() string {
	switch t {
	case EventPluck:
		return "pluck"
	case EventDamp:
		return "damp"
	case EventUndamp:
		return "undamp"
	case EventHammer:
		return "hammer"
	default:
		return "unknown"
	}
}

// Event is a scheduled articulation at an absolute, possibly fractional,
// sample time.
type Event struct {
	Type EventType
	Time float64
	Key  int
}

// eventQueue keeps pending events ordered by time. Events with equal times keep
// insertion order. Consumed and stale events are dropped by advancing head.
type eventQueue struct {
	items []Event
	head  int
}

func (q *eventQueue) push(ev Event) {
	pending := q.items[q.head:]
	i := sort.Search(len(pending), func(i int) bool { return pending[i].Time > ev.Time })
	i += q.head
	q.items = append(q.items, Event{})
	copy(q.items[i+1:], q.items[i:])
	q.items[i] = ev
}

// next returns the earliest pending event with lo <= Time < hi and removes it.
// Events earlier than lo are discarded unprocessed.
func (q *eventQueue) next(lo, hi float64) (Event, bool) {
	for q.head < len(q.items) && q.items[q.head].Time < lo {
		q.head++
	}
	if q.head == len(q.items) || q.items[q.head].Time >= hi {
		q.compact()
		return Event{}, false
	}
	ev := q.items[q.head]
	q.head++
	return ev, true
}

func (q *eventQueue) compact() {
	if q.head == 0 {
		return
	}
	n := copy(q.items, q.items[q.head:])
	q.items = q.items[:n]
	q.head = 0
}

func (q *eventQueue) clear() {
	q.items = q.items[:0]
	q.head = 0
}

func (q *eventQueue) len() int {
	return len(q.items) - q.head
}

func (q *eventQueue) pending() []Event {
	out := make([]Event, q.len())
	copy(out, q.items[q.head:])
	return out
}
