package pages

import (
	"context"

	"github.com/hyperengineering/croppriceai/internal/form"
	"github.com/hyperengineering/croppriceai/internal/view"
	"github.com/hyperengineering/croppriceai/pkg/agriapi"
)

// MonthPrice is one point of the dashboard's price outlook.
type MonthPrice struct {
	Month string
	Price float64
}

var trendFactors = []struct {
	month  string
	factor float64
}{
	{"Jan", 0.9},
	{"Feb", 0.95},
	{"Mar", 1.0},
	{"Apr", 1.05},
	{"May", 1.02},
}

// PriceTrend projects a predicted price over five months.
func PriceTrend(predicted float64) []MonthPrice {
	out := make([]MonthPrice, len(trendFactors))
	for i, tf := range trendFactors {
		out[i] = MonthPrice{Month: tf.month, Price: predicted * tf.factor}
	}
	return out
}

// Dashboard is the price prediction page.
type Dashboard struct {
	*view.View[agriapi.PricePrediction]
	backend Backend
}

// NewDashboard creates the dashboard page.
func NewDashboard(b Backend) *Dashboard {
	f := form.New(append([]form.Field{
		{Name: "crop", Required: true, Default: "Wheat", Options: Crops},
		{Name: "region", Required: true, Default: "Punjab", Options: Regions},
		{Name: "season", Required: true, Default: "Rabi", Options: Seasons},
	}, weatherFields()...)...)

	submit := func(ctx context.Context, p agriapi.Payload) (agriapi.PricePrediction, error) {
		res, err := b.PredictPrice(ctx, p)
		if err != nil {
			return agriapi.PricePrediction{}, err
		}
		return *res, nil
	}
	return &Dashboard{
		View: view.New("dashboard", f, submit, DashboardFailure,
			view.WithNotice[agriapi.PricePrediction](WeatherTrigger, WeatherNotice)),
		backend: b,
	}
}

// FetchWeather fills the weather fields using the region as the district.
func (d *Dashboard) FetchWeather(ctx context.Context) error {
	return d.FetchDependent(ctx, WeatherTrigger, weatherLookup(d.backend, "region", ""))
}
