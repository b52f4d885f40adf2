package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"qlab/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.WithContext(ctx).Fatal(err)
	}

	logger := log.New()
	logger.SetLevel(cfg.LogLevel)

	root := &cobra.Command{
		Use:           "qlab",
		Short:         "String queue supporting FIFO and LIFO operations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		shellCommand{Logger: logger}.Command(ctx, cfg),
		serveCommand{Logger: logger}.Command(ctx, cfg),
	)

	if err := root.Execute(); err != nil {
		logger.WithContext(ctx).Error(err)
		os.Exit(1)
	}
}
