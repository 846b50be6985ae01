// Package onboarding drives the one-time ticker tooltip shown on the newest
// brief's first insight.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bobmcallan/brief-portal/internal/common"
	"github.com/bobmcallan/brief-portal/internal/interfaces"
)

// Status is a tooltip state.
type Status string

const (
	StatusUnseen    Status = "unseen"
	StatusPending   Status = "pending-display"
	StatusVisible   Status = "visible"
	StatusDismissed Status = "dismissed"
)

// Timer is the subset of *time.Timer the tooltip needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// FlagKey is the KV key recording that visitor dismissed the tooltip.
func FlagKey(visitor string) string {
	return "onboarding:" + visitor + ":ticker_tooltip_seen"
}

// Seen reports whether visitor has dismissed the tooltip before.
func Seen(ctx context.Context, kv interfaces.KeyValueStorage, visitor string) (bool, error) {
	v, err := kv.Get(ctx, FlagKey(visitor))
	if errors.Is(err, interfaces.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

// Reset clears visitor's flag so the tooltip shows again.
func Reset(ctx context.Context, kv interfaces.KeyValueStorage, visitor string) error {
	return kv.Delete(ctx, FlagKey(visitor))
}

// Options configures a Tooltip.
type Options struct {
	ShowDelay   time.Duration
	DetachDelay time.Duration
	// OnDetach is called once the dismiss animation has finished.
	OnDetach  func()
	AfterFunc AfterFunc
}

// Tooltip is the per-visitor state machine:
// unseen -> pending-display -> visible -> dismissed.
type Tooltip struct {
	kv      interfaces.KeyValueStorage
	visitor string
	opts    Options
	logger  *common.Logger

	mu     sync.Mutex
	status Status
	timer  Timer
}

// NewTooltip creates a tooltip for visitor in the unseen state.
func NewTooltip(kv interfaces.KeyValueStorage, visitor string, opts Options, logger *common.Logger) *Tooltip {
	if opts.AfterFunc == nil {
		opts.AfterFunc = realAfterFunc
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Tooltip{kv: kv, visitor: visitor, opts: opts, logger: logger, status: StatusUnseen}
}

// Mount checks the persisted flag. A visitor who already dismissed the
// tooltip goes straight to dismissed without OnDetach being called;
// otherwise the tooltip becomes visible after ShowDelay.
func (t *Tooltip) Mount(ctx context.Context) error {
	seen, err := Seen(ctx, t.kv, t.visitor)
	if err != nil {
		return fmt.Errorf("failed to read onboarding flag: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusUnseen {
		return nil
	}
	if seen {
		t.status = StatusDismissed
		return nil
	}
	t.status = StatusPending
	t.timer = t.opts.AfterFunc(t.opts.ShowDelay, t.show)
	return nil
}

func (t *Tooltip) show() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == StatusPending {
		t.status = StatusVisible
	}
}

// Dismiss closes the tooltip, persists the flag and schedules OnDetach.
// Dismissing twice is a no-op.
func (t *Tooltip) Dismiss(ctx context.Context) error {
	t.mu.Lock()
	if t.status == StatusDismissed {
		t.mu.Unlock()
		return nil
	}
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.status = StatusDismissed
	t.mu.Unlock()

	if err := t.kv.Set(ctx, FlagKey(t.visitor), "true"); err != nil {
		return fmt.Errorf("failed to persist onboarding flag: %w", err)
	}
	t.logger.Debug().Str("visitor", t.visitor).Msg("ticker tooltip dismissed")

	if t.opts.OnDetach != nil {
		t.opts.AfterFunc(t.opts.DetachDelay, t.opts.OnDetach)
	}
	return nil
}

// DismissOnTickerClick dismisses the tooltip because the visitor clicked a
// ticker, which shows they found the feature.
func (t *Tooltip) DismissOnTickerClick(ctx context.Context) error {
	return t.Dismiss(ctx)
}

// State returns the current status.
func (t *Tooltip) State() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}
