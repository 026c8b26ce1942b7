package alerts

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperengineering/croppriceai/internal/assistant"
	"github.com/hyperengineering/croppriceai/internal/mockapi"
	"github.com/hyperengineering/croppriceai/internal/store"
	"github.com/hyperengineering/croppriceai/internal/validation"
	"github.com/hyperengineering/croppriceai/pkg/agriapi"
)

func newBackend(t *testing.T) *agriapi.Client {
	t.Helper()
	st, err := store.NewAlertStore(filepath.Join(t.TempDir(), "alerts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	srv := httptest.NewServer(mockapi.NewRouter(
		mockapi.NewHandler(mockapi.NewModel(3), st, assistant.NewKeyword(nil), "test"),
	))
	t.Cleanup(srv.Close)
	return agriapi.New(srv.URL)
}

func TestMonitor_CreateRefreshesList(t *testing.T) {
	ctx := context.Background()
	m := NewMonitor(newBackend(t))

	created, err := m.Create(ctx, map[string]string{
		"crop":         "Tomato",
		"target_price": "1200",
		"condition":    "Below",
		"contact":      "farmer@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alert created successfully", created.Message)

	list := m.Alerts()
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "Tomato", list[0].Crop)
	assert.Equal(t, 1200.0, list[0].TargetPrice)

	// The target price is cleared for the next entry; the rest is kept.
	assert.Equal(t, "", m.Form().Get("target_price"))
	assert.Equal(t, "Tomato", m.Form().Get("crop"))
}

func TestMonitor_CreateValidatesLocally(t *testing.T) {
	m := NewMonitor(newBackend(t))

	_, err := m.Create(context.Background(), map[string]string{"target_price": "lots", "contact": ""})
	require.Error(t, err)
	assert.True(t, errors.Is(err, validation.ErrValidation))

	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.ElementsMatch(t, []string{"target_price", "contact"}, verrs.Fields())
	assert.Empty(t, m.Alerts())
}

func TestMonitor_CreateRejectsUnknownCondition(t *testing.T) {
	m := NewMonitor(newBackend(t))

	_, err := m.Create(context.Background(), map[string]string{
		"target_price": "2000",
		"condition":    "Sideways",
		"contact":      "x",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, validation.ErrValidation))
}

func TestMonitor_DeleteConfirmed(t *testing.T) {
	ctx := context.Background()
	m := NewMonitor(newBackend(t))

	created, err := m.Create(ctx, map[string]string{"target_price": "2500", "contact": "a@b.c"})
	require.NoError(t, err)

	var asked agriapi.Alert
	err = m.Delete(ctx, created.ID, func(a agriapi.Alert) bool {
		asked = a
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, "Wheat", asked.Crop, "confirm sees the full alert")
	assert.Empty(t, m.Alerts())
}

func TestMonitor_DeleteMissingAlertFails(t *testing.T) {
	m := NewMonitor(newBackend(t))

	err := m.Delete(context.Background(), 99, nil)
	var apiErr *agriapi.APIError
	require.True(t, errors.As(err, &apiErr), "err = %v", err)
	assert.Equal(t, 404, apiErr.Status)
}

func TestMonitor_MarketStatus(t *testing.T) {
	m := NewMonitor(newBackend(t))

	tiles, err := m.MarketStatus(context.Background())
	require.NoError(t, err)
	assert.Len(t, tiles, len(mockapi.MarketCrops))
	assert.Equal(t, tiles, m.Market())
}

// recordingBackend counts calls and never fails.
type recordingBackend struct {
	deletes int
	lists   int
}

func (r *recordingBackend) MarketStatus(context.Context) ([]agriapi.MarketTile, error) {
	return nil, nil
}

func (r *recordingBackend) ListAlerts(context.Context) ([]agriapi.Alert, error) {
	r.lists++
	return []agriapi.Alert{{ID: 1, Crop: "Rice"}}, nil
}

func (r *recordingBackend) CreateAlert(context.Context, agriapi.NewAlert) (*agriapi.CreatedAlert, error) {
	return &agriapi.CreatedAlert{ID: 1}, nil
}

func (r *recordingBackend) DeleteAlert(context.Context, int64) error {
	r.deletes++
	return nil
}

func TestMonitor_DeleteDeclinedSendsNothing(t *testing.T) {
	ctx := context.Background()
	b := &recordingBackend{}
	m := NewMonitor(b)
	_, err := m.Refresh(ctx)
	require.NoError(t, err)

	err = m.Delete(ctx, 1, func(agriapi.Alert) bool { return false })
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Equal(t, 0, b.deletes)
	assert.Equal(t, 1, b.lists, "no refresh after a declined delete")
	assert.Len(t, m.Alerts(), 1)
}

func TestMonitor_ListFailureKeepsPreviousCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMonitor(&recordingBackend{})
	_, err := m.Refresh(ctx)
	require.NoError(t, err)

	m.backend = agriapi.New("http://127.0.0.1:1")
	_, err = m.Refresh(ctx)
	require.Error(t, err)
	assert.True(t, agriapi.IsNetwork(err))
	assert.Len(t, m.Alerts(), 1)
}
