package queue

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

// values walks the links directly so tests do not depend on Traverse.
func values(q *Queue) []string {
	out := []string{}
	for n := q.head; n != nil; n = n.next {
		out = append(out, n.value)
	}
	return out
}

func checkInvariants(t *testing.T, q *Queue) {
	t.Helper()
	if q.size == 0 {
		assert.Assert(t, q.head == nil)
		assert.Assert(t, q.tail == nil)
		return
	}

	n := q.head
	for i := 1; i < q.size; i++ {
		assert.Assert(t, n.next != nil, "chain shorter than size %d", q.size)
		n = n.next
	}
	assert.Assert(t, n == q.tail)
	assert.Assert(t, n.next == nil)
}

func newQueue(t *testing.T, opts ...Option) *Queue {
	t.Helper()
	q, err := New(opts...)
	assert.NilError(t, err)
	return q
}

func TestNewIsEmpty(t *testing.T) {
	q := newQueue(t)

	assert.Equal(t, q.Size(), 0)
	checkInvariants(t, q)
	assert.NilError(t, q.Free())
}

func TestScenario(t *testing.T) {
	q := newQueue(t)

	assert.NilError(t, q.InsertTail("a"))
	assert.NilError(t, q.InsertTail("b"))
	assert.NilError(t, q.InsertHead("z"))
	assert.DeepEqual(t, values(q), []string{"z", "a", "b"})
	assert.Equal(t, q.Size(), 3)
	checkInvariants(t, q)

	q.Reverse()
	assert.DeepEqual(t, values(q), []string{"b", "a", "z"})
	assert.Equal(t, q.head.value, "b")
	assert.Equal(t, q.tail.value, "z")
	checkInvariants(t, q)

	buf := make([]byte, 16)
	assert.NilError(t, q.RemoveHead(buf))
	assert.Equal(t, String(buf), "b")
	assert.DeepEqual(t, values(q), []string{"a", "z"})

	assert.NilError(t, q.RemoveHead(buf))
	assert.Equal(t, String(buf), "a")
	assert.DeepEqual(t, values(q), []string{"z"})
	assert.Equal(t, q.tail.value, "z")
	checkInvariants(t, q)

	assert.NilError(t, q.Free())
}

func TestFIFO(t *testing.T) {
	q := newQueue(t)
	for i := 0; i < 5; i++ {
		assert.NilError(t, q.InsertTail(fmt.Sprint(i)))
	}

	buf := make([]byte, 8)
	for i := 0; i < 5; i++ {
		assert.NilError(t, q.RemoveHead(buf))
		assert.Equal(t, String(buf), fmt.Sprint(i))
	}
	checkInvariants(t, q)
}

func TestLIFO(t *testing.T) {
	q := newQueue(t)
	for i := 0; i < 5; i++ {
		assert.NilError(t, q.InsertHead(fmt.Sprint(i)))
	}

	buf := make([]byte, 8)
	for i := 4; i >= 0; i-- {
		assert.NilError(t, q.RemoveHead(buf))
		assert.Equal(t, String(buf), fmt.Sprint(i))
	}
	checkInvariants(t, q)
}

func TestInsertHeadThenRemove(t *testing.T) {
	q := newQueue(t)
	assert.NilError(t, q.InsertTail("tail"))

	value := "hello there"
	assert.NilError(t, q.InsertHead(value))

	buf := make([]byte, len(value)+1)
	assert.NilError(t, q.RemoveHead(buf))
	assert.Equal(t, String(buf), value)
	assert.Equal(t, buf[len(value)], byte(0))
}

func TestInsertTailIntoEmpty(t *testing.T) {
	q := newQueue(t)
	assert.NilError(t, q.InsertTail("only"))

	assert.Assert(t, q.head == q.tail)
	assert.Equal(t, q.Size(), 1)
	checkInvariants(t, q)
}

func TestInsertCopiesValue(t *testing.T) {
	q := newQueue(t)
	raw := []byte("mutable")
	assert.NilError(t, q.InsertHead(string(raw)))
	raw[0] = 'M'

	assert.DeepEqual(t, values(q), []string{"mutable"})
}

func TestRemoveHeadEmpty(t *testing.T) {
	q := newQueue(t)

	buf := []byte("untouched")
	err := q.RemoveHead(buf)
	assert.Assert(t, errors.Is(err, ErrEmpty))
	assert.Equal(t, string(buf), "untouched")

	assert.NilError(t, q.InsertTail("x"))
	assert.NilError(t, q.RemoveHead(nil))
	err = q.RemoveHead(buf)
	assert.Assert(t, errors.Is(err, ErrEmpty))
	assert.Equal(t, string(buf), "untouched")
	checkInvariants(t, q)
}

func TestRemoveHeadTruncates(t *testing.T) {
	q := newQueue(t)
	assert.NilError(t, q.InsertTail("abcdefgh"))
	assert.NilError(t, q.InsertTail("xy"))
	assert.NilError(t, q.InsertTail("k"))

	buf := []byte{'*', '*', '*', '*', '*'}
	assert.NilError(t, q.RemoveHead(buf))
	assert.DeepEqual(t, buf, []byte{'a', 'b', 'c', 'd', 0})
	assert.Equal(t, String(buf), "abcd")

	one := []byte{'*'}
	assert.NilError(t, q.RemoveHead(one))
	assert.DeepEqual(t, one, []byte{0})

	assert.NilError(t, q.RemoveHead([]byte{}))
	assert.Equal(t, q.Size(), 0)
}

func TestReverseIsInvolution(t *testing.T) {
	for n := 0; n < 6; n++ {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			q := newQueue(t)
			for i := 0; i < n; i++ {
				assert.NilError(t, q.InsertTail(fmt.Sprint(i)))
			}
			before := values(q)

			q.Reverse()
			checkInvariants(t, q)
			q.Reverse()
			checkInvariants(t, q)

			assert.DeepEqual(t, values(q), before)
		})
	}
}

func TestReverseSingleKeepsNode(t *testing.T) {
	q := newQueue(t)
	assert.NilError(t, q.InsertTail("solo"))
	n := q.head

	q.Reverse()
	assert.Assert(t, q.head == n)
	assert.Assert(t, q.tail == n)

	empty := newQueue(t)
	empty.Reverse()
	checkInvariants(t, empty)
}

func TestReversePreservesNodes(t *testing.T) {
	q := newQueue(t)
	for _, v := range []string{"a", "b", "c", "d"} {
		assert.NilError(t, q.InsertTail(v))
	}
	first, last := q.head, q.tail

	q.Reverse()
	assert.Assert(t, q.head == last)
	assert.Assert(t, q.tail == first)
	assert.DeepEqual(t, values(q), []string{"d", "c", "b", "a"})

	assert.NilError(t, q.InsertTail("e"))
	assert.DeepEqual(t, values(q), []string{"d", "c", "b", "a", "e"})
	checkInvariants(t, q)
}

func TestSizeTracksOperations(t *testing.T) {
	q := newQueue(t)
	expected := 0
	for i := 0; i < 20; i++ {
		switch i % 4 {
		case 0, 1:
			assert.NilError(t, q.InsertTail(fmt.Sprint(i)))
			expected++
		case 2:
			assert.NilError(t, q.InsertHead(fmt.Sprint(i)))
			expected++
		case 3:
			assert.NilError(t, q.RemoveHead(nil))
			expected--
		}
		assert.Equal(t, q.Size(), expected)
		checkInvariants(t, q)
	}
}

func TestNilQueue(t *testing.T) {
	var q *Queue

	assert.Assert(t, errors.Is(q.InsertHead("a"), ErrNilQueue))
	assert.Assert(t, errors.Is(q.InsertTail("a"), ErrNilQueue))

	buf := []byte("keep")
	assert.Assert(t, errors.Is(q.RemoveHead(buf), ErrNilQueue))
	assert.Equal(t, string(buf), "keep")

	assert.Equal(t, q.Size(), 0)
	q.Reverse()
	assert.NilError(t, q.Free())
	assert.Check(t, is.Len(q.Traverse().Entries, 0))
}

func TestFreeTwice(t *testing.T) {
	q := newQueue(t)
	assert.NilError(t, q.InsertTail("a"))
	assert.NilError(t, q.Free())

	assert.Assert(t, errors.Is(q.Free(), ErrFreed))
	assert.Assert(t, errors.Is(q.InsertHead("b"), ErrFreed))
	assert.Assert(t, errors.Is(q.InsertTail("b"), ErrFreed))
	assert.Assert(t, errors.Is(q.RemoveHead(nil), ErrFreed))
	assert.Equal(t, q.Size(), 0)
	q.Reverse()
}

func TestString(t *testing.T) {
	assert.Equal(t, String([]byte{'a', 0, 'b'}), "a")
	assert.Equal(t, String([]byte("no terminator")), "no terminator")
	assert.Equal(t, String(nil), "")
}

func TestHeadLen(t *testing.T) {
	var nilQueue *Queue
	assert.Equal(t, nilQueue.HeadLen(), 0)

	q := newQueue(t)
	assert.Equal(t, q.HeadLen(), 0)

	assert.NilError(t, q.InsertTail("abc"))
	assert.NilError(t, q.InsertHead("hello"))
	assert.Equal(t, q.HeadLen(), 5)

	assert.NilError(t, q.RemoveHead(nil))
	assert.Equal(t, q.HeadLen(), 3)

	assert.NilError(t, q.Free())
	assert.Equal(t, q.HeadLen(), 0)
}
