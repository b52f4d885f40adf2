// Package harness counts the blocks a data structure allocates and can
// be told to refuse allocations, so that out-of-memory paths and leaks
// are observable in tests and in the console.
package harness

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrMallocFailed = errors.New("malloc failed")
	ErrDoubleFree   = errors.New("attempted to free more blocks than were allocated")
	ErrLeak         = errors.New("allocated blocks were not freed")
)

type Harness struct {
	blocks int
	bytes  int
	peak   int

	failPct  int
	failNext int
	rnd      *rand.Rand

	err    error
	logger *logrus.Logger
}

type Option func(*Harness)

// WithSeed makes random allocation failures reproducible.
func WithSeed(seed int64) Option {
	return func(h *Harness) {
		h.rnd = rand.New(rand.NewSource(seed))
	}
}

func WithLogger(l *logrus.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

func New(opts ...Option) *Harness {
	h := &Harness{
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetFailProbability makes every later Malloc fail with probability
// pct percent. Values are clamped to [0, 100].
func (h *Harness) SetFailProbability(pct int) {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	h.failPct = pct
}

func (h *Harness) FailProbability() int {
	return h.failPct
}

// FailNext refuses the next n Malloc calls regardless of probability.
func (h *Harness) FailNext(n int) {
	h.failNext = n
}

func (h *Harness) Malloc(size int) error {
	if h.failNext > 0 {
		h.failNext--
		return errors.Wrapf(ErrMallocFailed, "%d bytes", size)
	}
	if h.failPct > 0 && h.rnd.Intn(100) < h.failPct {
		h.logger.WithField("size", size).Debug("harness: injected malloc failure")
		return errors.Wrapf(ErrMallocFailed, "%d bytes", size)
	}

	h.blocks++
	h.bytes += size
	if h.blocks > h.peak {
		h.peak = h.blocks
	}
	return nil
}

func (h *Harness) Free(size int) {
	if h.blocks == 0 {
		h.err = ErrDoubleFree
		h.logger.WithField("size", size).Error(ErrDoubleFree)
		return
	}
	h.blocks--
	h.bytes -= size
}

// Blocks is the number of live allocations.
func (h *Harness) Blocks() int {
	return h.blocks
}

// Bytes is the number of live bytes.
func (h *Harness) Bytes() int {
	return h.bytes
}

// Peak is the highest number of live allocations seen.
func (h *Harness) Peak() int {
	return h.peak
}

// Err reports a misuse recorded by Free, if any.
func (h *Harness) Err() error {
	return h.err
}

// CheckLeaks returns ErrLeak when blocks are still allocated.
func (h *Harness) CheckLeaks() error {
	if h.blocks != 0 {
		return errors.Wrapf(ErrLeak, "%d blocks (%d bytes) still allocated", h.blocks, h.bytes)
	}
	return nil
}
