package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hyperengineering/croppriceai/migrations"
	"github.com/hyperengineering/croppriceai/pkg/agriapi"
)

// createdAtLayout matches the timestamp format of the price-alert service.
const createdAtLayout = "2006-01-02 15:04:05"

// AlertStore persists price alerts for the development backend.
type AlertStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewAlertStore opens (creating if needed) the alerts database at dbPath.
func NewAlertStore(dbPath string) (*AlertStore, error) {
	db, err := openDB(dbPath, migrations.MockAPIDir)
	if err != nil {
		return nil, err
	}
	return &AlertStore{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *AlertStore) Close() error {
	return s.db.Close()
}

// Add stores a new alert and returns its id.
func (s *AlertStore) Add(ctx context.Context, a agriapi.NewAlert) (int64, error) {
	if a.Crop == "" || a.Contact == "" || a.TargetPrice == 0 {
		return 0, fmt.Errorf("%w: crop, target_price and contact are required", ErrInvalidAlert)
	}
	if a.Condition != agriapi.ConditionAbove && a.Condition != agriapi.ConditionBelow {
		return 0, fmt.Errorf("%w: condition %q must be Above or Below", ErrInvalidAlert, a.Condition)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts (crop, target_price, condition, contact, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, a.Crop, a.TargetPrice, a.Condition, a.Contact, s.now().UTC().Format(createdAtLayout))
	if err != nil {
		return 0, fmt.Errorf("insert alert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert alert: %w", err)
	}
	return id, nil
}

// List returns every alert in insertion order.
func (s *AlertStore) List(ctx context.Context) ([]agriapi.Alert, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, crop, target_price, condition, contact, created_at
		FROM alerts ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	alerts := []agriapi.Alert{}
	for rows.Next() {
		var a agriapi.Alert
		if err := rows.Scan(&a.ID, &a.Crop, &a.TargetPrice, &a.Condition, &a.Contact, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// Delete removes an alert. Returns ErrNotFound if no row has that id.
func (s *AlertStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM alerts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
