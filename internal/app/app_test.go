package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/brief-portal/internal/briefs"
	"github.com/bobmcallan/brief-portal/internal/common"
	"github.com/bobmcallan/brief-portal/internal/config"
)

func newFeedApp(t *testing.T, source string, buf *bytes.Buffer) *App {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Feed.Source = source
	logger := common.NewLoggerWithOutput("info", buf)
	return &App{
		Config: cfg,
		Logger: logger,
		Briefs: briefs.NewStore(source, time.Second, logger),
	}
}

func TestLoadBriefs_ReportsFailureWithTrigger(t *testing.T) {
	var buf bytes.Buffer
	a := newFeedApp(t, filepath.Join(t.TempDir(), "missing.json"), &buf)

	if err := a.LoadBriefs(context.Background(), "sighup"); err == nil {
		t.Fatal("expected error for missing feed")
	}
	if a.Briefs.State().Err == "" {
		t.Error("expected failure published in store state")
	}
	out := buf.String()
	if !strings.Contains(out, "failed to load brief feed") || !strings.Contains(out, "trigger=sighup") {
		t.Errorf("expected failure line with trigger, got %q", out)
	}
}

func TestLoadBriefs_ReportsSuccessWithTrigger(t *testing.T) {
	feed := filepath.Join(t.TempDir(), "feed.json")
	body := `[{"id":"2024-10-11","date":"2024-10-11","subject":"Friday close"}]`
	if err := os.WriteFile(feed, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	a := newFeedApp(t, feed, &buf)

	if err := a.LoadBriefs(context.Background(), "startup"); err != nil {
		t.Fatalf("LoadBriefs: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "brief feed loaded") || !strings.Contains(out, "trigger=startup") {
		t.Errorf("expected success line with trigger, got %q", out)
	}
}
