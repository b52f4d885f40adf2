package main

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"qlab/config"
	"qlab/console"
	"qlab/harness"
)

type shellCommand struct {
	Logger *logrus.Logger
}

func (cmd shellCommand) Command(ctx context.Context, cfg *config.Config) *cobra.Command {
	var (
		file    string
		verbose bool
		malloc  int
		seed    int64
	)

	c := &cobra.Command{
		Use:   "shell",
		Short: "Run queue commands from a file or standard input",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmd.run(ctx, file, verbose, malloc, seed)
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "", "Read commands from file instead of standard input")
	c.Flags().BoolVarP(&verbose, "verbose", "v", cfg.Verbose, "Trace queue contents after every operation")
	c.Flags().IntVar(&malloc, "malloc", cfg.MallocFail, "Malloc failure probability percent")
	c.Flags().Int64Var(&seed, "seed", 0, "Seed for injected malloc failures (0 picks one from the clock)")
	return c
}

func (cmd shellCommand) run(ctx context.Context, file string, verbose bool, malloc int, seed int64) error {
	var in io.Reader = os.Stdin
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return errors.Wrap(err, "shell: open command file")
		}
		defer f.Close()
		in = f
	}

	opts := []harness.Option{harness.WithLogger(cmd.Logger)}
	if seed != 0 {
		opts = append(opts, harness.WithSeed(seed))
	}
	h := harness.New(opts...)
	h.SetFailProbability(malloc)

	c := console.New(os.Stdout, cmd.Logger, h)
	c.SetVerbose(verbose)

	if err := c.Run(ctx, in); err != nil {
		return err
	}
	if n := c.Errors(); n > 0 {
		return errors.Errorf("shell: %d errors reported", n)
	}
	return nil
}
