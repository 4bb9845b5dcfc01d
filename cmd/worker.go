/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/blogdb/server/config"
	"github.com/blogdb/server/internal/events"
	"github.com/blogdb/server/internal/mq"
	"github.com/blogdb/server/types"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// workerCmd consumes post events and logs them.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume post lifecycle events",
	Long: `Subscribes to the post events channel (POST_EVENTS_CHANNEL) on the
configured broker (MQ_BACKEND) and logs every event.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := newLogger(cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if queue == nil {
			return fmt.Errorf("MQ_BACKEND is %q; nothing to consume", cfg.MQ.Backend)
		}
		defer queue.Close()

		logger.WithFields(logrus.Fields{
			"backend": cfg.MQ.Backend,
			"channel": queue.Channel(),
		}).Info("worker started")

		err = events.Consume(ctx, queue, logger, func(ctx context.Context, event types.PostEvent) error {
			logger.WithFields(logrus.Fields{
				"event":      event.Type,
				"post_id":    event.PostID,
				"title":      event.Title,
				"actor_id":   event.ActorID,
				"actor_name": event.ActorName,
				"at":         event.OccurredAt,
			}).Info("post event")
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
