package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/NicolasHaas/badgeboard/pkg/client"
	"github.com/NicolasHaas/badgeboard/pkg/logging"
	"github.com/NicolasHaas/badgeboard/pkg/model"
	"github.com/NicolasHaas/badgeboard/pkg/realtime"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow badge awards and removals as they happen",
	Long: `Load the current state, then apply realtime events from the server
until interrupted.

Examples:
  badgectl watch
  badgectl watch --reconnect --metrics-addr 127.0.0.1:9100`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Bool("reconnect", false, "re-dial when the connection drops (default from realtime.reconnect)")
	watchCmd.Flags().String("metrics-addr", "", "serve /metrics and /healthz on this address (default from metrics.addr)")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	reconnect := cfg.Realtime.Reconnect
	if cmd.Flags().Changed("reconnect") {
		reconnect, _ = cmd.Flags().GetBool("reconnect")
	}
	metricsAddr := cfg.Metrics.Addr
	if cmd.Flags().Changed("metrics-addr") {
		metricsAddr, _ = cmd.Flags().GetString("metrics-addr")
	}

	a, err := openApp(client.PageHome)
	if err != nil {
		return err
	}
	defer a.Close()
	a.coord.OnEventApplied = printEvent
	if err := a.coord.Start(ctx); err != nil {
		return err
	}

	bound, err := client.StartMetricsHTTP(ctx, metricsAddr, a.metrics)
	if err != nil {
		return err
	}
	if bound != "" {
		slog.Info("serving metrics", "addr", bound)
	}

	url, err := cfg.WebSocketURL()
	if err != nil {
		return err
	}
	opts := []realtime.Option{
		realtime.WithRecorder(a.metrics),
		realtime.WithLogger(logging.Component("realtime")),
	}
	if reconnect {
		opts = append(opts, realtime.WithReconnect(realtime.Backoff{
			Initial: cfg.Realtime.BackoffInitial,
			Max:     cfg.Realtime.BackoffMax,
			Factor:  realtime.DefaultBackoff.Factor,
		}))
	}

	ch, err := realtime.Dial(ctx, url, opts...)
	if err != nil {
		return err
	}
	defer ch.Close()

	a.coord.Attach(ch)
	ch.OnStateChange(func(s realtime.State) {
		slog.Info("realtime connection", "state", s)
	})
	ch.Start()

	if !jsonOut {
		fmt.Printf("Watching %s (Ctrl-C to stop)\n", url)
	}

	select {
	case <-ctx.Done():
		return nil
	case <-ch.Done():
		return fmt.Errorf("realtime connection closed")
	}
}

func printEvent(ev model.RealtimeEvent) {
	now := time.Now().Format(time.TimeOnly)
	switch e := ev.(type) {
	case model.BadgeAwarded:
		if jsonOut {
			_ = printJSON(map[string]any{"type": e.Type(), "badge": e.Badge, "user_id": e.RecipientUserID, "user": e.RecipientName})
			return
		}
		who := e.RecipientName
		if who == "" {
			who = e.RecipientUserID.String()
		}
		fmt.Printf("%s  %s earned %q\n", now, who, e.Badge.Name)
	case model.BadgeRemoved:
		if jsonOut {
			_ = printJSON(map[string]any{"type": e.Type(), "badge_id": e.BadgeID, "user_id": e.UserID, "count": e.Count})
			return
		}
		fmt.Printf("%s  badge %s removed from user %s\n", now, e.BadgeID, e.UserID)
	}
}
