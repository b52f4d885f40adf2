package console

import (
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

type option struct {
	help string
	get  func(c *Console) int
	set  func(c *Console, v int) error
}

var options = map[string]option{
	"verbose": {
		help: "Trace queue contents after every operation (0/1), applies to new queues",
		get: func(c *Console) int {
			if c.verbose {
				return 1
			}
			return 0
		},
		set: func(c *Console, v int) error {
			c.SetVerbose(v != 0)
			return nil
		},
	},
	"malloc": {
		help: "Malloc failure probability percent",
		get:  func(c *Console) int { return c.harness.FailProbability() },
		set: func(c *Console, v int) error {
			if v < 0 || v > 100 {
				return errors.Wrapf(ErrUsage, "malloc must be between 0 and 100, got %d", v)
			}
			c.harness.SetFailProbability(v)
			return nil
		},
	},
	"length": {
		help: "Maximum length of removed strings, including terminator",
		get:  func(c *Console) int { return c.length },
		set: func(c *Console, v int) error {
			if v < 1 {
				return errors.Wrapf(ErrUsage, "length must be positive, got %d", v)
			}
			c.length = v
			return nil
		},
	},
	"error": {
		help: "Number of errors until the session aborts",
		get:  func(c *Console) int { return c.errLimit },
		set: func(c *Console, v int) error {
			if v < 0 {
				return errors.Wrapf(ErrUsage, "error must not be negative, got %d", v)
			}
			c.errLimit = v
			return nil
		},
	},
}

func (c *Console) doOption(args []string) error {
	switch len(args) {
	case 0:
		names := make([]string, 0, len(options))
		for name := range options {
			names = append(names, name)
		}
		sort.Strings(names)

		c.printf("Options:\n")
		for _, name := range names {
			opt := options[name]
			c.printf("\t%-10s%-6d| %s\n", name, opt.get(c), opt.help)
		}
		return nil
	case 2:
		opt, ok := options[args[0]]
		if !ok {
			return errors.Wrapf(ErrUsage, "unknown option '%s'", args[0])
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return errors.Wrapf(ErrUsage, "invalid value '%s' for option %s", args[1], args[0])
		}
		return opt.set(c, v)
	default:
		return errors.Wrap(ErrUsage, "option takes no arguments or a name and a value")
	}
}
