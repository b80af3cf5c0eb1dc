package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ptessari/turnkey/internal/config"
	"github.com/ptessari/turnkey/internal/notify"
	"github.com/ptessari/turnkey/internal/notify/discord"
	"github.com/ptessari/turnkey/internal/notify/slack"
)

func TestBuildAdapter_Selection(t *testing.T) {
	out := new(bytes.Buffer)

	cfg := &config.Config{}
	cfg.Alerts.Channel = "none"
	a, err := buildAdapter(cfg, out)
	if err != nil {
		t.Fatalf("none: %v", err)
	}
	if _, ok := a.(*consoleAdapter); !ok {
		t.Errorf("none channel adapter = %T, want consoleAdapter", a)
	}

	cfg = &config.Config{}
	cfg.Alerts.Channel = "slack"
	cfg.Alerts.Slack.BotToken = "xoxb-test"
	cfg.Alerts.Slack.Channel = "C123"
	a, err = buildAdapter(cfg, out)
	if err != nil {
		t.Fatalf("slack: %v", err)
	}
	if _, ok := a.(*slack.Adapter); !ok {
		t.Errorf("slack channel adapter = %T, want slack.Adapter", a)
	}

	cfg = &config.Config{}
	cfg.Alerts.Channel = "discord"
	cfg.Alerts.Discord.Token = "token"
	cfg.Alerts.Discord.ChannelID = "123456"
	a, err = buildAdapter(cfg, out)
	if err != nil {
		t.Fatalf("discord: %v", err)
	}
	if _, ok := a.(*discord.Adapter); !ok {
		t.Errorf("discord channel adapter = %T, want discord.Adapter", a)
	}
}

func TestBuildAdapter_MissingCredentials(t *testing.T) {
	cfg := &config.Config{}
	cfg.Alerts.Channel = "slack"
	if _, err := buildAdapter(cfg, new(bytes.Buffer)); err == nil {
		t.Error("expected error for slack without a bot token")
	}
}

func TestConsoleAdapter_Send(t *testing.T) {
	out := new(bytes.Buffer)
	a := &consoleAdapter{out: out}

	if err := a.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	evt := notify.Event{
		Title:    "Restocking digest",
		Body:     "1 consumable low",
		Severity: notify.SeverityWarning,
		Fields:   []notify.Field{{Name: "Unit A — Sapone", Value: "0 left (minimum 1)"}},
	}
	if err := a.Send(context.Background(), evt); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	for _, want := range []string{"[warning] Restocking digest", "1 consumable low", "Unit A — Sapone: 0 left (minimum 1)"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestAlertsCmd_Help(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"alerts", "--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("alerts --help failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "send") {
		t.Errorf("expected help to list 'send' subcommand, got: %s", out)
	}
	if !strings.Contains(out, "run") {
		t.Errorf("expected help to list 'run' subcommand, got: %s", out)
	}
}

func TestAlertsSendCmd_MissingConfig(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"alerts", "send", "--config", "/nonexistent/turnkey.yaml"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "load config") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "load config")
	}
}
