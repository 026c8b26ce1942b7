// Package pages wires the generic view to each screen of the client: its
// fields, defaults, endpoint, dependent lookups and failure message.
package pages

import (
	"context"
	"fmt"

	"github.com/hyperengineering/croppriceai/internal/form"
	"github.com/hyperengineering/croppriceai/internal/validation"
	"github.com/hyperengineering/croppriceai/internal/view"
	"github.com/hyperengineering/croppriceai/pkg/agriapi"
)

// Backend is the part of the prediction service the pages use.
// *agriapi.Client implements it.
type Backend interface {
	PredictPrice(ctx context.Context, p agriapi.Payload) (*agriapi.PricePrediction, error)
	PredictSuitability(ctx context.Context, p agriapi.Payload) (*agriapi.SuitabilityResult, error)
	Recommend(ctx context.Context, p agriapi.Payload) (*agriapi.RecommendResponse, error)
	Analytics(ctx context.Context) (*agriapi.Analytics, error)
	FetchWeather(ctx context.Context, district, state string) (*agriapi.Weather, error)
	PredictPestRisk(ctx context.Context, p agriapi.Payload) (*agriapi.PestRisk, error)
}

// Failure messages shown when a submission cannot reach the backend.
const (
	DashboardFailure   = "Failed to fetch prediction. Ensure backend is running."
	AnalyticsFailure   = "Failed to load data."
	RecommendFailure   = "Failed to fetch recommendations. Ensure backend is running."
	SuitabilityFailure = "Prediction failed, check backend"
	PestFailure        = "Prediction failed. Ensure backend is running."
	WeatherNotice      = "Could not fetch weather. Please enter manually."
)

// WeatherTrigger names the weather lookup.
const WeatherTrigger = "weather"

// Common option lists.
var (
	Crops   = []string{"Wheat", "Rice", "Maize", "Sugarcane", "Cotton", "Tomato", "Potato", "Onion"}
	Regions = []string{"Punjab", "Haryana", "Uttar Pradesh", "Maharashtra", "Karnataka"}
	Seasons = []string{"Rabi", "Kharif", "Zaid"}
	Soils   = []string{"Clayey", "Loamy", "Sandy", "Black", "Red"}
	States  = []string{"Karnataka", "Punjab", "Maharashtra", "Madhya Pradesh", "Uttar Pradesh"}
)

func weatherFields() []form.Field {
	return []form.Field{
		{Name: "temperature", Kind: form.Number, Required: true},
		{Name: "humidity", Kind: form.Number, Required: true},
		{Name: "rainfall", Kind: form.Number, Required: true},
	}
}

// weatherLookup reads the district (and optional state) from the named
// fields and returns the three readings as form values.
func weatherLookup(b Backend, districtField, stateField string) view.FetchFunc {
	return func(ctx context.Context, values map[string]string) (map[string]string, error) {
		district := values[districtField]
		if err := validation.ValidateRequired(districtField, district); err != nil {
			return nil, validation.Errors{*err}
		}
		state := ""
		if stateField != "" {
			state = values[stateField]
		}
		wx, err := b.FetchWeather(ctx, district, state)
		if err != nil {
			return nil, fmt.Errorf("fetch weather: %w", err)
		}
		return map[string]string{
			"temperature": form.FormatNumber(wx.Temperature),
			"humidity":    form.FormatNumber(wx.Humidity),
			"rainfall":    form.FormatNumber(wx.Rainfall),
		}, nil
	}
}
