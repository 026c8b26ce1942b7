// Package alerts is the price-alert manager and market ticker.
//
// The backend is the single source of truth for alerts. After every
// successful create or delete the monitor re-reads the whole list and
// replaces its copy; it never patches the list locally.
package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/hyperengineering/croppriceai/internal/form"
	"github.com/hyperengineering/croppriceai/internal/validation"
	"github.com/hyperengineering/croppriceai/pkg/agriapi"
)

// Backend is the part of the service the monitor uses.
type Backend interface {
	MarketStatus(ctx context.Context) ([]agriapi.MarketTile, error)
	ListAlerts(ctx context.Context) ([]agriapi.Alert, error)
	CreateAlert(ctx context.Context, a agriapi.NewAlert) (*agriapi.CreatedAlert, error)
	DeleteAlert(ctx context.Context, id int64) error
}

// ConfirmFunc asks the user to confirm deleting alert a.
type ConfirmFunc func(a agriapi.Alert) bool

// Conditions are the accepted alert conditions.
var Conditions = []string{agriapi.ConditionAbove, agriapi.ConditionBelow}

// Monitor holds the market snapshot, the alert list and the new-alert form.
// Safe for concurrent use.
type Monitor struct {
	backend Backend
	form    *form.Form
	logger  *slog.Logger

	mu     sync.RWMutex
	market []agriapi.MarketTile
	alerts []agriapi.Alert
}

// NewMonitor creates a monitor with an empty alert form.
func NewMonitor(b Backend) *Monitor {
	return &Monitor{
		backend: b,
		form: form.New(
			form.Field{Name: "crop", Required: true, Default: "Wheat"},
			form.Field{Name: "target_price", Kind: form.Number, Required: true},
			form.Field{Name: "condition", Required: true, Default: agriapi.ConditionAbove, Options: Conditions},
			form.Field{Name: "contact", Required: true},
		),
		logger: slog.Default().With("component", "alerts"),
	}
}

// Form returns the new-alert form.
func (m *Monitor) Form() *form.Form {
	return m.form
}

// MarketStatus fetches the market ticker once. There is no polling.
func (m *Monitor) MarketStatus(ctx context.Context) ([]agriapi.MarketTile, error) {
	tiles, err := m.backend.MarketStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("market status: %w", err)
	}
	m.mu.Lock()
	m.market = tiles
	m.mu.Unlock()
	return tiles, nil
}

// Refresh re-reads the alert list from the backend.
func (m *Monitor) Refresh(ctx context.Context) ([]agriapi.Alert, error) {
	list, err := m.backend.ListAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	m.mu.Lock()
	m.alerts = list
	m.mu.Unlock()
	return list, nil
}

// Create validates values (merged over the form), posts the alert, clears
// the target price and re-reads the list.
func (m *Monitor) Create(ctx context.Context, values map[string]string) (*agriapi.CreatedAlert, error) {
	m.form.Replace(values)

	if err := m.validate(); err != nil {
		return nil, err
	}

	price, _ := strconv.ParseFloat(strings.TrimSpace(m.form.Get("target_price")), 64)
	created, err := m.backend.CreateAlert(ctx, agriapi.NewAlert{
		Crop:        strings.TrimSpace(m.form.Get("crop")),
		TargetPrice: price,
		Condition:   m.form.Get("condition"),
		Contact:     strings.TrimSpace(m.form.Get("contact")),
	})
	if err != nil {
		return nil, fmt.Errorf("create alert: %w", err)
	}
	m.logger.Info("alert created", "id", created.ID)

	m.form.Set("target_price", "")
	if _, err := m.Refresh(ctx); err != nil {
		return created, err
	}
	return created, nil
}

func (m *Monitor) validate() error {
	if err := m.form.Validate(); err != nil {
		return err
	}
	var c validation.Collector
	c.Add(validation.ValidateEnum("condition", m.form.Get("condition"), Conditions))
	c.Add(validation.ValidateNoNullBytes("contact", m.form.Get("contact")))
	return c.Err()
}

// Delete asks confirm first and sends nothing if it declines. On success the
// list is re-read.
func (m *Monitor) Delete(ctx context.Context, id int64, confirm ConfirmFunc) error {
	target := agriapi.Alert{ID: id}
	m.mu.RLock()
	for _, a := range m.alerts {
		if a.ID == id {
			target = a
			break
		}
	}
	m.mu.RUnlock()

	if confirm != nil && !confirm(target) {
		return ErrNotConfirmed
	}

	if err := m.backend.DeleteAlert(ctx, id); err != nil {
		return fmt.Errorf("delete alert %d: %w", id, err)
	}
	m.logger.Info("alert deleted", "id", id)

	_, err := m.Refresh(ctx)
	return err
}

// Alerts returns the last list read from the backend.
func (m *Monitor) Alerts() []agriapi.Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]agriapi.Alert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// Market returns the last market snapshot.
func (m *Monitor) Market() []agriapi.MarketTile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]agriapi.MarketTile, len(m.market))
	copy(out, m.market)
	return out
}
