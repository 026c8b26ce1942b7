package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hyperengineering/croppriceai/pkg/agriapi"
)

// AlertLister lists stored price alerts. Implemented by store.AlertStore.
type AlertLister interface {
	List(ctx context.Context) ([]agriapi.Alert, error)
}

// PriceSource quotes the current market price of a crop.
type PriceSource interface {
	CurrentPrice(crop string) float64
}

// Notifier delivers a triggered alert to its contact.
type Notifier interface {
	Notify(ctx context.Context, contact, message string) error
}

// LogNotifier "delivers" notifications by logging them.
type LogNotifier struct{}

// Notify logs the message at warn level so it stands out in server output.
func (LogNotifier) Notify(_ context.Context, contact, message string) error {
	slog.Warn("price alert triggered",
		"component", "worker",
		"worker", "alert-checker",
		"contact", contact,
		"message", message,
	)
	return nil
}

// AlertChecker compares every alert against the current price on a fixed
// interval and notifies the contacts of triggered alerts.
type AlertChecker struct {
	alerts   AlertLister
	prices   PriceSource
	notifier Notifier
	interval time.Duration
}

// NewAlertChecker creates an alert checker.
func NewAlertChecker(alerts AlertLister, prices PriceSource, notifier Notifier, interval time.Duration) *AlertChecker {
	return &AlertChecker{
		alerts:   alerts,
		prices:   prices,
		notifier: notifier,
		interval: interval,
	}
}

// Run checks once immediately, then on every tick. Blocks until ctx is cancelled.
func (c *AlertChecker) Run(ctx context.Context) {
	slog.Info("alert checker started",
		"component", "worker",
		"worker", "alert-checker",
		"interval", c.interval.String(),
	)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.CheckOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("alert checker stopped",
				"component", "worker",
				"worker", "alert-checker",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			c.CheckOnce(ctx)
		}
	}
}

// CheckOnce runs a single pass and returns how many alerts fired. Failures
// on individual notifications are logged and skipped.
func (c *AlertChecker) CheckOnce(ctx context.Context) int {
	alerts, err := c.alerts.List(ctx)
	if err != nil {
		slog.Error("failed to list alerts",
			"component", "worker",
			"worker", "alert-checker",
			"error", err,
		)
		return 0
	}

	fired := 0
	for _, a := range alerts {
		if ctx.Err() != nil {
			return fired // Graceful shutdown
		}
		price := c.prices.CurrentPrice(a.Crop)
		if !Triggered(a, price) {
			continue
		}
		msg := fmt.Sprintf("PRICE ALERT: %s is now %.2f (%s %.2f)", a.Crop, price, a.Condition, a.TargetPrice)
		if err := c.notifier.Notify(ctx, a.Contact, msg); err != nil {
			slog.Error("failed to send alert",
				"component", "worker",
				"worker", "alert-checker",
				"alert_id", a.ID,
				"error", err,
			)
			continue
		}
		fired++
	}

	slog.Debug("alert check completed",
		"component", "worker",
		"worker", "alert-checker",
		"checked", len(alerts),
		"fired", fired,
	)
	return fired
}

// Triggered reports whether price satisfies the alert's condition.
func Triggered(a agriapi.Alert, price float64) bool {
	switch a.Condition {
	case agriapi.ConditionAbove:
		return price > a.TargetPrice
	case agriapi.ConditionBelow:
		return price < a.TargetPrice
	default:
		return false
	}
}
