package store

import (
	"sort"

	"github.com/pkg/errors"

	"qlab/queue"
)

var (
	ErrNotFound = errors.New("key does not exist")
	ErrExists   = errors.New("key already exists")
)

type Store[T any] interface {
	Put(key string, value T) error
	Get(key string) (T, error)
	Delete(key string) (T, error)
	List() ([]string, error)
	Count() (int, error)
}

type InMemoryStore[T any] struct {
	Db map[string]T
}

// Ensure InMemoryStore implements the Store interface
var _ Store[*queue.Queue] = (*InMemoryStore[*queue.Queue])(nil)

func NewInMemoryStore[T any]() *InMemoryStore[T] {
	return &InMemoryStore[T]{
		Db: make(map[string]T),
	}
}

// Put stores value under key. Existing keys are not overwritten.
func (i *InMemoryStore[T]) Put(key string, value T) error {
	if _, ok := i.Db[key]; ok {
		return errors.Wrapf(ErrExists, "key %s", key)
	}
	i.Db[key] = value
	return nil
}

func (i *InMemoryStore[T]) Get(key string) (T, error) {
	var zeroVal T

	t, ok := i.Db[key]
	if !ok {
		return zeroVal, errors.Wrapf(ErrNotFound, "key %s", key)
	}
	return t, nil
}

func (i *InMemoryStore[T]) Delete(key string) (T, error) {
	t, err := i.Get(key)
	if err != nil {
		return t, err
	}
	delete(i.Db, key)
	return t, nil
}

// List returns the keys in sorted order.
func (i *InMemoryStore[T]) List() ([]string, error) {
	keys := make([]string, 0, len(i.Db))

	for k := range i.Db {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys, nil
}

func (i *InMemoryStore[T]) Count() (int, error) {
	return len(i.Db), nil
}
