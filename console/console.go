// Package console drives a queue from line-oriented commands, printing
// the queue after every operation and checking the harness for leaked
// blocks whenever a queue is freed.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"qlab/harness"
	"qlab/queue"
)

const (
	DefaultLength   = 1024
	DefaultErrLimit = 5
	// maxShow is how many values show prints before eliding the rest.
	maxShow = 20
)

var (
	ErrTooManyErrors = errors.New("error limit exceeded")
	ErrUnknown       = errors.New("unknown command")
	ErrUsage         = errors.New("invalid arguments")
)

type command struct {
	usage string
	help  string
	run   func(c *Console, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"new":     {"new", "Create new queue", (*Console).doNew},
		"free":    {"free", "Delete queue", (*Console).doFree},
		"ih":      {"ih str [n]", "Insert string str at head of queue n times (default: n == 1)", (*Console).doInsertHead},
		"it":      {"it str [n]", "Insert string str at tail of queue n times (default: n == 1)", (*Console).doInsertTail},
		"rh":      {"rh [str]", "Remove from head of queue. Optionally compare to expected value str", (*Console).doRemoveHead},
		"rhq":     {"rhq", "Remove from head of queue without reporting value", (*Console).doRemoveHeadQuiet},
		"reverse": {"reverse", "Reverse queue", (*Console).doReverse},
		"size":    {"size [n]", "Compute queue size n times (default: n == 1)", (*Console).doSize},
		"show":    {"show", "Show queue contents", (*Console).doShow},
		"option":  {"option [name val]", "Display or set options", (*Console).doOption},
		"help":    {"help", "Show documentation", (*Console).doHelp},
		"quit":    {"quit", "Exit program", (*Console).doQuit},
	}
}

type Console struct {
	out     io.Writer
	logger  *logrus.Logger
	harness *harness.Harness

	q *queue.Queue

	verbose  bool
	length   int
	errLimit int
	errCount int
	done     bool
}

func New(out io.Writer, logger *logrus.Logger, h *harness.Harness) *Console {
	return &Console{
		out:      out,
		logger:   logger,
		harness:  h,
		length:   DefaultLength,
		errLimit: DefaultErrLimit,
	}
}

// SetVerbose controls whether queues created afterwards log a traversal
// after every mutation.
func (c *Console) SetVerbose(v bool) {
	c.verbose = v
	if v && c.logger.GetLevel() < logrus.DebugLevel {
		c.logger.SetLevel(logrus.DebugLevel)
	}
}

// Errors is the number of errors reported so far.
func (c *Console) Errors() int {
	return c.errCount
}

// Run executes commands from in until it is exhausted, quit is issued,
// the context is cancelled or the error limit is exceeded. Any queue
// left over is freed before returning, except on cancellation.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)

	// Lines are read in the background so cancellation is noticed while
	// an interactive reader is blocked.
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for !c.done {
		if err := ctx.Err(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return errors.Wrap(err, "console: read commands")
				}
				return c.Exec("quit")
			}
			if err := c.Exec(line); err != nil {
				return err
			}
		}
	}
	return nil
}

// Exec runs a single command line. Command failures are reported on the
// output and only returned once they exceed the error limit.
func (c *Console) Exec(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if strings.HasPrefix(line, "#") {
		c.printf("%s\n", line)
		return nil
	}

	fields := strings.Fields(line)
	cmd, ok := commands[fields[0]]
	if !ok {
		return c.report(errors.Wrapf(ErrUnknown, "'%s'", fields[0]))
	}

	if err := cmd.run(c, fields[1:]); err != nil {
		return c.report(err)
	}
	return nil
}

func (c *Console) report(err error) error {
	c.errCount++
	c.printf("ERROR: %v\n", err)
	c.logger.WithField("errors", c.errCount).Debug(err)

	if c.errCount > c.errLimit {
		return errors.Wrapf(ErrTooManyErrors, "%d errors", c.errCount)
	}
	return nil
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) show() {
	if c.q == nil {
		c.printf("q = NULL\n")
		return
	}

	values := c.q.Traverse().Values()
	elided := len(values) > maxShow
	if elided {
		values = values[:maxShow]
	}

	c.printf("q = [%s", strings.Join(values, " "))
	if elided {
		c.printf(" ...")
	}
	c.printf("]\n")
}

func (c *Console) doNew(args []string) error {
	if len(args) != 0 {
		return errors.Wrap(ErrUsage, "new takes no arguments")
	}
	if c.q != nil {
		if err := c.freeQueue(); err != nil {
			return err
		}
	}

	opts := []queue.Option{queue.WithAllocator(c.harness)}
	if c.verbose {
		opts = append(opts, queue.WithTracer(queue.LogTracer{Logger: c.logger}))
	}

	q, err := queue.New(opts...)
	if err != nil {
		c.show()
		return err
	}
	c.q = q
	c.show()
	return nil
}

func (c *Console) doFree(args []string) error {
	if len(args) != 0 {
		return errors.Wrap(ErrUsage, "free takes no arguments")
	}
	if c.q == nil {
		c.printf("Warning: Calling free on null queue\n")
	}
	err := c.freeQueue()
	c.show()
	return err
}

// freeQueue frees the current queue and verifies nothing stayed
// allocated.
func (c *Console) freeQueue() error {
	err := c.q.Free()
	c.q = nil
	if err != nil {
		return err
	}

	if leak := c.harness.CheckLeaks(); leak != nil {
		return errors.Wrap(leak, "freed queue")
	}
	return nil
}

func (c *Console) doInsertHead(args []string) error {
	return c.insert(args, "head", c.q.InsertHead)
}

func (c *Console) doInsertTail(args []string) error {
	return c.insert(args, "tail", c.q.InsertTail)
}

func (c *Console) insert(args []string, end string, insert func(string) error) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.Wrapf(ErrUsage, "need value and optional count for insert %s", end)
	}

	reps := 1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return errors.Wrapf(ErrUsage, "invalid number of insertions '%s'", args[1])
		}
		reps = n
	}

	if c.q == nil {
		c.printf("Warning: Calling insert %s on null queue\n", end)
	}

	var err error
	for i := 0; i < reps; i++ {
		if err = insert(args[0]); err != nil {
			err = errors.Wrapf(err, "insert %s", end)
			break
		}
	}
	c.show()
	return err
}

func (c *Console) doRemoveHead(args []string) error {
	if len(args) > 1 {
		return errors.Wrap(ErrUsage, "rh takes at most one argument")
	}
	if c.q == nil {
		c.printf("Warning: Calling remove head on null queue\n")
	}

	buf := make([]byte, min(c.length, c.q.HeadLen()+1))
	err := c.q.RemoveHead(buf)
	if err != nil {
		c.show()
		return errors.Wrap(err, "remove head")
	}

	removed := queue.String(buf)
	c.printf("Removed %s from queue\n", removed)
	if len(args) == 1 && removed != args[0] {
		c.show()
		return errors.Errorf("removed value %s != expected value %s", removed, args[0])
	}
	c.show()
	return nil
}

func (c *Console) doRemoveHeadQuiet(args []string) error {
	if len(args) != 0 {
		return errors.Wrap(ErrUsage, "rhq takes no arguments")
	}
	if c.q == nil {
		c.printf("Warning: Calling remove head on null queue\n")
	}

	err := c.q.RemoveHead(nil)
	c.show()
	return errors.Wrap(err, "remove head")
}

func (c *Console) doReverse(args []string) error {
	if len(args) != 0 {
		return errors.Wrap(ErrUsage, "reverse takes no arguments")
	}
	if c.q == nil {
		c.printf("Warning: Calling reverse on null queue\n")
	}
	c.q.Reverse()
	c.show()
	return nil
}

func (c *Console) doSize(args []string) error {
	if len(args) > 1 {
		return errors.Wrap(ErrUsage, "size takes at most one argument")
	}

	reps := 1
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return errors.Wrapf(ErrUsage, "invalid number of computations '%s'", args[0])
		}
		reps = n
	}

	if c.q == nil {
		c.printf("Warning: Calling size on null queue\n")
	}

	size := 0
	for i := 0; i < reps; i++ {
		size = c.q.Size()
	}
	c.printf("Queue size = %d\n", size)
	c.show()
	return nil
}

func (c *Console) doShow(args []string) error {
	if len(args) != 0 {
		return errors.Wrap(ErrUsage, "show takes no arguments")
	}
	c.show()
	return nil
}

func (c *Console) doHelp([]string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	c.printf("Commands:\n")
	for _, name := range names {
		cmd := commands[name]
		c.printf("\t%-18s| %s\n", cmd.usage, cmd.help)
	}
	c.printf("\t%-18s| %s\n", "#", "Display comment")
	return nil
}

func (c *Console) doQuit(args []string) error {
	if len(args) != 0 {
		return errors.Wrap(ErrUsage, "quit takes no arguments")
	}
	c.done = true

	var err error
	if c.q != nil {
		err = c.freeQueue()
	}
	if err == nil && c.harness.Blocks() > 0 {
		err = errors.Wrapf(harness.ErrLeak, "%d blocks still allocated at exit", c.harness.Blocks())
	}
	c.printf("Freeing queue\n")
	return err
}
