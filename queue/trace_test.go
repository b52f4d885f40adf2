package queue

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestTraverse(t *testing.T) {
	q := newQueue(t)

	tr := q.Traverse()
	assert.Assert(t, tr.Head == nil)
	assert.Assert(t, tr.Tail == nil)
	assert.Check(t, is.Len(tr.Entries, 0))

	assert.NilError(t, q.InsertTail("a"))
	assert.NilError(t, q.InsertTail("b"))

	tr = q.Traverse()
	assert.DeepEqual(t, tr.Values(), []string{"a", "b"})
	assert.Equal(t, tr.Head.Value, "a")
	assert.Equal(t, tr.Tail.Value, "b")
	assert.Equal(t, tr.Head.ID, q.head.id)
	assert.Equal(t, tr.Tail.ID, q.tail.id)
	assert.Assert(t, tr.Head.ID != tr.Tail.ID)
}

func TestTracerSeesMutations(t *testing.T) {
	var ops []string
	var last Traversal
	q := newQueue(t, WithTracer(TracerFunc(func(op string, tr Traversal) {
		ops = append(ops, op)
		last = tr
	})))

	assert.NilError(t, q.InsertTail("a"))
	assert.NilError(t, q.InsertTail("b"))
	assert.NilError(t, q.InsertHead("z"))
	q.Reverse()
	assert.NilError(t, q.RemoveHead(nil))
	q.Size()
	q.Traverse()

	assert.DeepEqual(t, ops, []string{"insert tail", "insert tail", "insert head", "reverse", "remove head"})
	assert.DeepEqual(t, last.Values(), []string{"a", "z"})
}

func TestTracerNotCalledOnFailure(t *testing.T) {
	calls := 0
	q := newQueue(t, WithTracer(TracerFunc(func(string, Traversal) { calls++ })))

	assert.Assert(t, q.RemoveHead(nil) != nil)
	q.Reverse()
	assert.Equal(t, calls, 0)
}

func TestLogTracer(t *testing.T) {
	var out bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&out)
	logger.SetLevel(logrus.DebugLevel)

	q := newQueue(t, WithTracer(LogTracer{Logger: logger}))
	assert.NilError(t, q.InsertTail("first"))
	assert.NilError(t, q.InsertTail("second"))

	s := out.String()
	assert.Assert(t, strings.Contains(s, "Queue traversal. Head: "))
	assert.Assert(t, strings.Contains(s, q.head.id.String()+"(first)->"))
	assert.Assert(t, strings.Contains(s, "op=\"insert tail\""))

	out.Reset()
	logger.SetLevel(logrus.InfoLevel)
	assert.NilError(t, q.RemoveHead(nil))
	assert.Equal(t, out.String(), "")
}

func TestTraversalStringEmpty(t *testing.T) {
	q := newQueue(t)
	assert.Equal(t, q.Traverse().String(), "Queue traversal. Head: NULL (NULL). Tail: NULL (NULL)\n\n")
}

func TestTraversalStringEndsChain(t *testing.T) {
	q := newQueue(t)
	assert.NilError(t, q.InsertTail("a"))

	s := q.Traverse().String()
	assert.Assert(t, strings.HasSuffix(s, q.head.id.String()+"(a)->\n"))
}

func TestInsertTailIntoEmptyTracedAsTail(t *testing.T) {
	var ops []string
	q := newQueue(t, WithTracer(TracerFunc(func(op string, _ Traversal) {
		ops = append(ops, op)
	})))

	assert.NilError(t, q.InsertTail("first"))
	assert.NilError(t, q.RemoveHead(nil))
	assert.NilError(t, q.InsertTail("again"))

	assert.DeepEqual(t, ops, []string{"insert tail", "remove head", "insert tail"})
}
