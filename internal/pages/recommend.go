package pages

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperengineering/croppriceai/internal/cascade"
	"github.com/hyperengineering/croppriceai/internal/form"
	"github.com/hyperengineering/croppriceai/internal/resultparse"
	"github.com/hyperengineering/croppriceai/internal/validation"
	"github.com/hyperengineering/croppriceai/internal/view"
	"github.com/hyperengineering/croppriceai/pkg/agriapi"
)

// NoResponse is shown when a suitability answer is empty.
const NoResponse = "No response from backend"

// Ranked is the price-ranked crop recommendation page.
type Ranked struct {
	*view.View[agriapi.RecommendResponse]
	backend Backend
}

// NewRanked creates the ranked recommendation page.
func NewRanked(b Backend) *Ranked {
	f := form.New(
		form.Field{Name: "region", Required: true, Default: "Punjab", Options: Regions},
		form.Field{Name: "season", Required: true, Default: "Rabi", Options: Seasons},
		form.Field{Name: "soil_type", Required: true, Default: "Loamy", Options: Soils},
		form.Field{Name: "temperature", Kind: form.Number, Required: true},
		form.Field{Name: "humidity", Kind: form.Number, Required: true},
		form.Field{Name: "rainfall", Kind: form.Number, Required: true},
	)
	submit := func(ctx context.Context, p agriapi.Payload) (agriapi.RecommendResponse, error) {
		res, err := b.Recommend(ctx, p)
		if err != nil {
			return agriapi.RecommendResponse{}, err
		}
		return *res, nil
	}
	return &Ranked{
		View: view.New("recommend_ranked", f, submit, RecommendFailure,
			view.WithNotice[agriapi.RecommendResponse](WeatherTrigger, WeatherNotice)),
		backend: b,
	}
}

// FetchWeather fills the weather fields using the region as the district.
func (r *Ranked) FetchWeather(ctx context.Context) error {
	return r.FetchDependent(ctx, WeatherTrigger, weatherLookup(r.backend, "region", ""))
}

// SuitabilityMode selects one of the soil-family recommendation pages.
type SuitabilityMode int

const (
	// SoilMode takes a typed state and district.
	SoilMode SuitabilityMode = iota
	// GeoMode picks state and district from the geography cascade.
	GeoMode
	// CheckMode asks about one specific crop.
	CheckMode
)

func (m SuitabilityMode) String() string {
	switch m {
	case GeoMode:
		return "geo"
	case CheckMode:
		return "check"
	default:
		return "soil"
	}
}

// ErrNoCascade is returned by the cascade methods outside GeoMode.
var ErrNoCascade = errors.New("page has no geography selection")

// Suitability is a soil-nutrient recommendation page whose answer is free
// text parsed into scores and alternatives.
type Suitability struct {
	*view.View[resultparse.StructuredResult]
	mode    SuitabilityMode
	backend Backend
	geo     *cascade.Select
}

// NewSuitability creates a soil-family page. geo is only used in GeoMode.
func NewSuitability(b Backend, mode SuitabilityMode, geo *cascade.Select) *Suitability {
	locationRequired := mode == GeoMode
	f := form.New(
		form.Field{Name: "state", Required: locationRequired, Default: "Karnataka", Options: States, Omit: true},
		form.Field{Name: "district", Required: locationRequired, Default: "Davanagere"},
		form.Field{Name: "N", Kind: form.Number, Required: true, Default: "90"},
		form.Field{Name: "P", Kind: form.Number, Required: true, Default: "42"},
		form.Field{Name: "K", Kind: form.Number, Required: true, Default: "43"},
		form.Field{Name: "pH", Kind: form.Number, Required: true, Default: "6.5"},
		form.Field{Name: "temperature", Kind: form.Number, Required: true},
		form.Field{Name: "humidity", Kind: form.Number, Required: true},
		form.Field{Name: "rainfall", Kind: form.Number, Required: true},
		form.Field{Name: "crop", Required: mode == CheckMode, Options: Crops},
	)
	if mode == GeoMode {
		f.Replace(map[string]string{"state": "", "district": ""})
	}

	submit := func(ctx context.Context, p agriapi.Payload) (resultparse.StructuredResult, error) {
		res, err := b.PredictSuitability(ctx, p)
		if err != nil {
			return resultparse.StructuredResult{}, err
		}
		return resultparse.Parse(res.Result), nil
	}

	return &Suitability{
		View: view.New("recommend_"+mode.String(), f, submit, SuitabilityFailure,
			view.WithPayload[resultparse.StructuredResult](suitabilityPayload),
			view.WithNotice[resultparse.StructuredResult](WeatherTrigger, "Failed to fetch weather")),
		mode:    mode,
		backend: b,
		geo:     geo,
	}
}

// suitabilityPayload sends the district as region and drops the state.
func suitabilityPayload(f *form.Form) agriapi.Payload {
	p := f.Payload()
	if d, ok := p["district"]; ok {
		p["region"] = d
		delete(p, "district")
	} else {
		p["region"] = ""
	}
	return p
}

// Mode returns the page variant.
func (s *Suitability) Mode() SuitabilityMode {
	return s.mode
}

// FetchWeather fills the weather fields for the state and district.
func (s *Suitability) FetchWeather(ctx context.Context) error {
	return s.FetchDependent(ctx, WeatherTrigger, weatherLookup(s.backend, "district", "state"))
}

// LoadStates fills the state list of the geography cascade.
func (s *Suitability) LoadStates(ctx context.Context) ([]string, error) {
	if s.geo == nil {
		return nil, ErrNoCascade
	}
	if err := s.geo.LoadStates(ctx); err != nil {
		return nil, err
	}
	return s.geo.States(), nil
}

// SelectState picks a state, clears the district field and reloads the
// district list.
func (s *Suitability) SelectState(ctx context.Context, state string) ([]string, error) {
	if s.geo == nil {
		return nil, ErrNoCascade
	}
	err := s.geo.SelectState(ctx, state)
	if errors.Is(err, cascade.ErrUnknownState) {
		return nil, err
	}
	s.Form().Replace(map[string]string{"state": s.geo.State(), "district": ""})
	s.UpdateField("district", "")
	if err != nil {
		return nil, err
	}
	return s.geo.Districts(), nil
}

// SelectDistrict picks a district from the loaded list.
func (s *Suitability) SelectDistrict(district string) error {
	if s.geo == nil {
		return ErrNoCascade
	}
	if err := s.geo.SelectDistrict(district); err != nil {
		return err
	}
	s.UpdateField("district", district)
	return nil
}

// UpdateField edits one field. In GeoMode a new state goes through the
// cascade, so the district and its list are cleared; a state outside the
// loaded list is refused.
func (s *Suitability) UpdateField(name, value string) bool {
	if s.mode != GeoMode || s.geo == nil || name != "state" || value == s.geo.State() {
		return s.View.UpdateField(name, value)
	}
	if err := s.geo.Reset(value); err != nil {
		return false
	}
	s.Form().Replace(map[string]string{"state": value, "district": ""})
	return s.View.UpdateField("district", "")
}

// Submit validates and submits. In GeoMode the state and district must be
// the cascade's current selection.
func (s *Suitability) Submit(ctx context.Context) (*resultparse.StructuredResult, error) {
	if s.mode == GeoMode && s.geo != nil {
		var errs validation.Errors
		if st := s.Form().Get("state"); st != s.geo.State() {
			errs = append(errs, validation.ValidationError{Field: "state", Message: fmt.Sprintf("%q is not the selected state", st)})
		}
		if d := s.Form().Get("district"); d != "" && d != s.geo.District() {
			errs = append(errs, validation.ValidationError{Field: "district", Message: fmt.Sprintf("%q is not a district of the selected state", d)})
		}
		if len(errs) > 0 {
			return nil, errs
		}
	}
	return s.View.Submit(ctx)
}
