package pages

import (
	"context"

	"github.com/hyperengineering/croppriceai/internal/form"
	"github.com/hyperengineering/croppriceai/internal/view"
	"github.com/hyperengineering/croppriceai/pkg/agriapi"
)

// Pest is the 7-day pest risk page.
type Pest struct {
	*view.View[agriapi.PestRisk]
	backend Backend
}

// NewPest creates the pest risk page.
func NewPest(b Backend) *Pest {
	f := form.New(append([]form.Field{
		{Name: "crop", Required: true, Default: "Wheat", Options: Crops},
		{Name: "region", Required: true, Default: "Punjab", Options: Regions},
	}, weatherFields()...)...)

	submit := func(ctx context.Context, p agriapi.Payload) (agriapi.PestRisk, error) {
		res, err := b.PredictPestRisk(ctx, p)
		if err != nil {
			return agriapi.PestRisk{}, err
		}
		return *res, nil
	}
	return &Pest{
		View: view.New("pest", f, submit, PestFailure,
			view.WithNotice[agriapi.PestRisk](WeatherTrigger, WeatherNotice)),
		backend: b,
	}
}

// FetchWeather fills the weather fields using the region as the district.
func (p *Pest) FetchWeather(ctx context.Context) error {
	return p.FetchDependent(ctx, WeatherTrigger, weatherLookup(p.backend, "region", ""))
}
