package compliance

import (
	"cmp"
	"slices"

	"github.com/talgya/fleetcommand/internal/entity"
)

// Ticket is a breach handed to planners and the event log.
type Ticket struct {
	Source      entity.Handle `json:"source"`
	Affiliation entity.Handle `json:"affiliation"`
	Type        BreachType    `json:"type"`
	Severity    float32       `json:"severity"`
	Tick        uint64        `json:"tick"`
}

func compareTickets(a, b Ticket) int {
	return cmp.Or(
		cmp.Compare(a.Tick, b.Tick),
		cmp.Compare(a.Source.Index, b.Source.Index),
		cmp.Compare(a.Affiliation.Index, b.Affiliation.Index),
		cmp.Compare(a.Type, b.Type),
	)
}

// DefaultTicketCapacity bounds the ticket queue.
const DefaultTicketCapacity = 4096

// TicketQueue collects tickets until a consumer drains them. Tickets come out
// ordered by tick, then source, affiliation and type, whatever the push order.
// When full, the oldest tickets are dropped.
//
// A consumer that may fail can Peek with Mark, then Release up to that mark
// once the tickets are safely stored.
type TicketQueue struct {
	tickets  []queuedTicket
	capacity int
	dropped  int
	pushed   uint64
}

type queuedTicket struct {
	Ticket
	seq uint64
}

// NewTicketQueue returns an empty queue. A capacity below 1 uses the default.
func NewTicketQueue(capacity int) *TicketQueue {
	if capacity < 1 {
		capacity = DefaultTicketCapacity
	}
	return &TicketQueue{capacity: capacity}
}

// Push enqueues tickets.
func (q *TicketQueue) Push(tickets ...Ticket) {
	for _, t := range tickets {
		q.pushed++
		q.tickets = append(q.tickets, queuedTicket{Ticket: t, seq: q.pushed})
	}
	if over := len(q.tickets) - q.capacity; over > 0 {
		q.sort()
		q.tickets = append(q.tickets[:0], q.tickets[over:]...)
		q.dropped += over
	}
}

// Len returns the number of queued tickets.
func (q *TicketQueue) Len() int { return len(q.tickets) }

// Dropped returns how many tickets overflowed since the queue was created.
func (q *TicketQueue) Dropped() int { return q.dropped }

// Mark returns the position of the newest pushed ticket.
func (q *TicketQueue) Mark() uint64 { return q.pushed }

// Peek returns the queued tickets in order without consuming them.
func (q *TicketQueue) Peek() []Ticket {
	q.sort()
	out := make([]Ticket, len(q.tickets))
	for i, t := range q.tickets {
		out[i] = t.Ticket
	}
	return out
}

// Release removes every ticket pushed at or before mark. Tickets pushed
// after mark stay queued.
func (q *TicketQueue) Release(mark uint64) {
	q.tickets = slices.DeleteFunc(q.tickets, func(t queuedTicket) bool {
		return t.seq <= mark
	})
}

// Drain returns every queued ticket in order and empties the queue.
func (q *TicketQueue) Drain() []Ticket {
	out := q.Peek()
	q.tickets = nil
	return out
}

func (q *TicketQueue) sort() {
	slices.SortStableFunc(q.tickets, func(a, b queuedTicket) int {
		return compareTickets(a.Ticket, b.Ticket)
	})
}
