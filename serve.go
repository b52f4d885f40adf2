package main

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"qlab/api"
	"qlab/config"
	"qlab/harness"
	"qlab/queue"
	"qlab/store"
)

type serveCommand struct {
	Logger *logrus.Logger
}

func (cmd serveCommand) Command(ctx context.Context, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve named queues over HTTP",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmd.run(ctx, cfg)
		},
	}
}

func (cmd serveCommand) run(ctx context.Context, cfg *config.Config) error {
	h := harness.New(harness.WithLogger(cmd.Logger))
	h.SetFailProbability(cfg.MallocFail)

	a := &api.Api{
		Address:   cfg.HTTP.Host,
		Port:      cfg.HTTP.Port,
		Logger:    cmd.Logger,
		Store:     store.NewInMemoryStore[*queue.Queue](),
		Allocator: h,
		Verbose:   cfg.Verbose,
	}

	err := a.Start(ctx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serve")
	}

	if leak := h.CheckLeaks(); leak != nil {
		cmd.Logger.Warn(leak)
	}
	return nil
}
