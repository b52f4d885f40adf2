package queue

import "github.com/google/uuid"

const (
	headerSize = 32
	nodeSize   = 40
)

type node struct {
	id    uuid.UUID
	value string
	next  *node
}

// Allocator accounts for the memory a queue holds. Malloc may refuse a
// request by returning an error.
type Allocator interface {
	Malloc(size int) error
	Free(size int)
}

type heap struct{}

func (heap) Malloc(int) error {
	return nil
}

func (heap) Free(int) {}

// newNode allocates a node and then its text. When the text is refused
// the node is handed back before returning.
func (q *Queue) newNode(s string) (*node, error) {
	if err := q.alloc.Malloc(nodeSize); err != nil {
		return nil, err
	}
	if err := q.alloc.Malloc(textSize(s)); err != nil {
		q.alloc.Free(nodeSize)
		return nil, err
	}

	return &node{
		id:    uuid.New(),
		value: string(append([]byte(nil), s...)),
	}, nil
}

func (q *Queue) release(n *node) {
	q.alloc.Free(textSize(n.value))
	n.value = ""
	n.next = nil
	q.alloc.Free(nodeSize)
}

func textSize(s string) int {
	return len(s) + 1
}
