package pages

import (
	"context"

	"github.com/hyperengineering/croppriceai/internal/form"
	"github.com/hyperengineering/croppriceai/internal/view"
	"github.com/hyperengineering/croppriceai/pkg/agriapi"
)

// Analytics is the historical price analytics page. It has no inputs.
type Analytics struct {
	*view.View[agriapi.Analytics]
}

// NewAnalytics creates the analytics page.
func NewAnalytics(b Backend) *Analytics {
	submit := func(ctx context.Context, _ agriapi.Payload) (agriapi.Analytics, error) {
		res, err := b.Analytics(ctx)
		if err != nil {
			return agriapi.Analytics{}, err
		}
		return *res, nil
	}
	return &Analytics{View: view.New("analytics", form.New(), submit, AnalyticsFailure)}
}

// Load fetches the analytics once.
func (a *Analytics) Load(ctx context.Context) (*agriapi.Analytics, error) {
	return a.Submit(ctx)
}
