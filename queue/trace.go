package queue

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Entry is one node as seen by a trace.
type Entry struct {
	ID    uuid.UUID `json:"id"`
	Value string    `json:"value"`
}

// Traversal is a snapshot of the queue in head to tail order. Head and
// Tail are nil when the queue is empty.
type Traversal struct {
	Head    *Entry  `json:"head"`
	Tail    *Entry  `json:"tail"`
	Entries []Entry `json:"entries"`
}

// Values returns the traced values in order.
func (t Traversal) Values() []string {
	values := make([]string, 0, len(t.Entries))
	for _, e := range t.Entries {
		values = append(values, e.Value)
	}
	return values
}

func (t Traversal) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Queue traversal. Head: %s. Tail: %s\n", describe(t.Head), describe(t.Tail))
	for _, e := range t.Entries {
		fmt.Fprintf(&b, "%s(%s)->", e.ID, e.Value)
	}
	b.WriteString("\n")
	return b.String()
}

func describe(e *Entry) string {
	if e == nil {
		return "NULL (NULL)"
	}
	return fmt.Sprintf("%s (%s)", e.ID, e.Value)
}

// Tracer observes a queue after each successful mutation.
type Tracer interface {
	Trace(op string, t Traversal)
}

// TracerFunc adapts a plain function to Tracer.
type TracerFunc func(op string, t Traversal)

func (f TracerFunc) Trace(op string, t Traversal) {
	f(op, t)
}

// LogTracer writes traversals to a logrus logger at debug level.
type LogTracer struct {
	Logger *logrus.Logger
}

func (l LogTracer) Trace(op string, t Traversal) {
	l.Logger.WithFields(logrus.Fields{
		"op":   op,
		"size": len(t.Entries),
	}).Debug(t.String())
}

// Traverse walks the queue without modifying it. It is meant for
// diagnostics; a nil or freed queue yields an empty traversal.
func (q *Queue) Traverse() Traversal {
	t := Traversal{Entries: []Entry{}}
	if q == nil || q.freed {
		return t
	}

	for n := q.head; n != nil; n = n.next {
		t.Entries = append(t.Entries, Entry{ID: n.id, Value: n.value})
	}
	if q.head != nil {
		t.Head = &Entry{ID: q.head.id, Value: q.head.value}
		t.Tail = &Entry{ID: q.tail.id, Value: q.tail.value}
	}
	return t
}

func (q *Queue) trace(op string) {
	if q.tracer == nil {
		return
	}
	q.tracer.Trace(op, q.Traverse())
}
