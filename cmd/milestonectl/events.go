package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
	"github.com/yungbote/neurobridge-milestones/internal/realtime"
	"github.com/yungbote/neurobridge-milestones/internal/realtime/bus"
)

func newEventsCommand() *cobra.Command {
	var channel string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Stream milestone notifications published on Redis",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Redis.Enabled() {
				return fmt.Errorf("redis.addr is not configured; events are only shared through redis")
			}
			log, err := logger.New(cfg.App.LogMode)
			if err != nil {
				return fmt.Errorf("failed to init logger: %w", err)
			}
			b, err := bus.NewRedisBus(log, bus.RedisConfig{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				Channel:  cfg.Redis.Channel,
			})
			if err != nil {
				return fmt.Errorf("bus.NewRedisBus() > %w", err)
			}
			defer b.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w := cmd.OutOrStdout()
			onMsg := func(m realtime.Message) { printEvent(w, m) }
			if sub, ok := b.(bus.ChannelSubscriber); ok && channel != "" {
				err = sub.SubscribeChannels(ctx, []string{channel}, onMsg)
			} else {
				err = b.StartForwarder(ctx, onMsg)
			}
			if err != nil {
				return fmt.Errorf("subscribe > %w", err)
			}
			boldColor.Fprintln(w, "listening for events, ctrl-c to stop")
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "", "only show events for this channel (usually a student id)")
	return cmd
}

func printEvent(w io.Writer, m realtime.Message) {
	c := boldColor
	switch m.Event {
	case realtime.EventMilestoneCompleted, realtime.EventCoursePassed:
		c = okColor
	case realtime.EventMilestoneProgressed:
		c = warnColor
	case realtime.EventJobDead:
		c = errColor
	}
	fmt.Fprintf(w, "%s %s %s", m.SentAt.Format("15:04:05"), c.Sprint(string(m.Event)), m.Channel)
	for _, k := range []string{"milestone_name", "course_id", "count", "total_score", "job_id", "error"} {
		if v, ok := m.Data[k]; ok {
			fmt.Fprintf(w, " %s=%v", k, v)
		}
	}
	fmt.Fprintln(w)
}
