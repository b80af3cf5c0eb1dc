package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ptessari/turnkey/internal/config"
	"github.com/ptessari/turnkey/internal/notify"
	"github.com/ptessari/turnkey/internal/notify/discord"
	"github.com/ptessari/turnkey/internal/notify/slack"
	"github.com/ptessari/turnkey/internal/visit"
)

func newAlertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Restocking digests and stock alerts",
	}

	cmd.AddCommand(newAlertsSendCmd())
	cmd.AddCommand(newAlertsRunCmd())
	return cmd
}

func newAlertsSendCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Build and deliver the restocking digest once",
		Long: `Collects counted items below their expected number and consumables at or
below their minimum, records stock alerts and delivers the digest to the
configured channel. Sends nothing when there is nothing to report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlertsSend(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "turnkey.yaml", "path to Turnkey config file")
	return cmd
}

func runAlertsSend(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	digest, err := notify.BuildDigest(gormDB)
	if err != nil {
		return err
	}
	if digest.Empty() {
		fmt.Fprintln(out, "Nothing to report.")
		return nil
	}

	created, err := notify.RecordAlerts(gormDB, digest.Low)
	if err != nil {
		return err
	}

	adapter, err := buildAdapter(cfg, out)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := adapter.Connect(ctx); err != nil {
		return err
	}
	defer adapter.Close()

	if err := adapter.Send(ctx, digest.Event()); err != nil {
		return err
	}
	fmt.Fprintf(out, "Digest sent via %s: %d missing, %d low, %d new alert(s)\n",
		cfg.Alerts.Channel, len(digest.Missing), len(digest.Low), created)
	return nil
}

func newAlertsRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the alerts daemon",
		Long: `Runs forever: on each digest_cron tick, expires orphaned work sessions
older than session_ttl_hours and delivers the restocking digest.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlertsDaemon(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "turnkey.yaml", "path to Turnkey config file")
	return cmd
}

func runAlertsDaemon(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	adapter, err := buildAdapter(cfg, out)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(out, "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	if err := adapter.Connect(ctx); err != nil {
		return err
	}
	defer adapter.Close()

	return alertsLoop(ctx, out, gormDB, cfg, adapter)
}

// alertsLoop sleeps until the next cron tick, then sweeps orphaned sessions
// and sends the digest. Delivery failures are logged and retried on the next
// tick rather than killing the daemon.
func alertsLoop(ctx context.Context, out io.Writer, gormDB *gorm.DB, cfg *config.Config, adapter notify.Adapter) error {
	ttl := time.Duration(cfg.Alerts.SessionTTLHours) * time.Hour
	for {
		wait := notify.NextCronDuration(cfg.Alerts.DigestCron)
		if wait == 0 {
			return fmt.Errorf("invalid digest cron %q", cfg.Alerts.DigestCron)
		}
		fmt.Fprintf(out, "Next digest in %s\n", wait.Round(time.Second))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}

		if swept, err := visit.SweepOrphans(gormDB, ttl); err != nil {
			fmt.Fprintf(out, "Orphan sweep failed: %v\n", err)
		} else if swept > 0 {
			fmt.Fprintf(out, "Expired %d orphaned session(s)\n", swept)
		}

		if err := notify.SendDigest(ctx, gormDB, adapter); err != nil {
			fmt.Fprintf(out, "Digest failed: %v\n", err)
		}
	}
}

// buildAdapter picks the delivery adapter for the configured channel. The
// "none" channel prints digests to the terminal instead of sending them.
func buildAdapter(cfg *config.Config, out io.Writer) (notify.Adapter, error) {
	switch cfg.Alerts.Channel {
	case "slack":
		return slack.New(slack.AdapterOpts{
			BotToken:  cfg.Alerts.Slack.BotToken,
			ChannelID: cfg.Alerts.Slack.Channel,
		})
	case "discord":
		return discord.New(discord.AdapterOpts{
			BotToken:  cfg.Alerts.Discord.Token,
			ChannelID: cfg.Alerts.Discord.ChannelID,
		})
	default:
		return &consoleAdapter{out: out}, nil
	}
}

// consoleAdapter writes events to the terminal for the "none" channel.
type consoleAdapter struct {
	out io.Writer
}

func (c *consoleAdapter) Connect(ctx context.Context) error { return nil }

func (c *consoleAdapter) Send(ctx context.Context, evt notify.Event) error {
	fmt.Fprintf(c.out, "[%s] %s\n%s\n", evt.Severity, evt.Title, evt.Body)
	for _, f := range evt.Fields {
		fmt.Fprintf(c.out, "  %s: %s\n", f.Name, f.Value)
	}
	return nil
}

func (c *consoleAdapter) Close() error { return nil }
