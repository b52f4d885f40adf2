package queue

// Queue is a singly-linked list of strings. Values can be inserted at
// either end but are only removed from the head, so pairing InsertTail
// with RemoveHead gives FIFO order and InsertHead with RemoveHead gives
// LIFO order.
//
// A Queue is not safe for concurrent use.
type Queue struct {
	head  *node
	tail  *node
	size  int
	freed bool

	alloc  Allocator
	tracer Tracer
}

// Option configures a Queue at construction.
type Option func(*Queue)

// WithAllocator makes the queue account every header, node and text
// allocation against a.
func WithAllocator(a Allocator) Option {
	return func(q *Queue) {
		q.alloc = a
	}
}

// WithTracer installs t to observe the queue after every mutation.
func WithTracer(t Tracer) Option {
	return func(q *Queue) {
		q.tracer = t
	}
}

// New returns an empty queue, or ErrNoMemory if the allocator refused
// the header.
func New(opts ...Option) (*Queue, error) {
	q := Queue{alloc: heap{}}
	for _, opt := range opts {
		opt(&q)
	}

	if err := q.alloc.Malloc(headerSize); err != nil {
		return nil, wrapNoMemory(err, "new queue")
	}

	return &q, nil
}

// Free releases every node and the queue itself. Free on a nil queue
// does nothing; calling it twice returns ErrFreed.
func (q *Queue) Free() error {
	if q == nil {
		return nil
	}
	if q.freed {
		return ErrFreed
	}

	for q.head != nil {
		old := q.head
		q.head = old.next
		q.release(old)
	}
	q.tail = nil
	q.size = 0
	q.freed = true

	q.alloc.Free(headerSize)
	return nil
}

// InsertHead stores a copy of s in front of the current head.
func (q *Queue) InsertHead(s string) error {
	if err := q.check(); err != nil {
		return err
	}
	return q.pushHead(s, "insert head")
}

func (q *Queue) pushHead(s, op string) error {
	n, err := q.newNode(s)
	if err != nil {
		return wrapNoMemory(err, op)
	}

	n.next = q.head
	q.head = n
	q.size++

	if q.size == 1 {
		q.tail = n
	}

	q.trace(op)
	return nil
}

// InsertTail stores a copy of s after the current tail.
func (q *Queue) InsertTail(s string) error {
	if err := q.check(); err != nil {
		return err
	}
	if q.size == 0 {
		return q.pushHead(s, "insert tail")
	}

	n, err := q.newNode(s)
	if err != nil {
		return wrapNoMemory(err, "insert tail")
	}

	q.tail.next = n
	q.tail = n
	q.size++

	q.trace("insert tail")
	return nil
}

// RemoveHead unlinks the head node. If buf is not empty, the removed
// value is copied into it, truncated to len(buf)-1 bytes and followed by
// a zero byte. On failure buf is left untouched.
func (q *Queue) RemoveHead(buf []byte) error {
	if err := q.check(); err != nil {
		return err
	}
	if q.head == nil {
		return ErrEmpty
	}

	n := q.head
	if len(buf) > 0 {
		c := copy(buf[:len(buf)-1], n.value)
		buf[c] = 0
	}

	q.head = n.next
	q.size--

	if q.size == 0 {
		q.head = nil
		q.tail = nil
	}

	q.release(n)

	q.trace("remove head")
	return nil
}

// Size returns the number of values in the queue in constant time.
func (q *Queue) Size() int {
	if q == nil || q.freed {
		return 0
	}
	return q.size
}

// HeadLen returns the length of the head value, or 0 for an empty,
// nil or freed queue. RemoveHead never needs a buffer larger than
// HeadLen()+1.
func (q *Queue) HeadLen() int {
	if q.check() != nil || q.head == nil {
		return 0
	}
	return len(q.head.value)
}

// Reverse reverses the order of the nodes in place. No node is allocated
// or released.
func (q *Queue) Reverse() {
	if q == nil || q.freed || q.size <= 1 {
		return
	}

	var prev *node
	n := q.head
	for n != nil {
		next := n.next
		n.next = prev
		prev = n
		n = next
	}

	q.tail = q.head
	q.head = prev

	q.trace("reverse")
}

func (q *Queue) check() error {
	if q == nil {
		return ErrNilQueue
	}
	if q.freed {
		return ErrFreed
	}
	return nil
}

// String returns the contents of a buffer filled by RemoveHead, up to
// the terminating zero byte.
func String(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}
