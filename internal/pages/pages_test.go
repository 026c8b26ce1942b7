package pages

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hyperengineering/croppriceai/internal/cascade"
	"github.com/hyperengineering/croppriceai/internal/resultparse"
	"github.com/hyperengineering/croppriceai/internal/validation"
	"github.com/hyperengineering/croppriceai/internal/view"
	"github.com/hyperengineering/croppriceai/pkg/agriapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records every call and answers from canned values.
type fakeBackend struct {
	mu       sync.Mutex
	calls    []string
	payloads []agriapi.Payload
	weather  map[string]string // last district/state asked for

	err        error
	weatherErr error
	suitText   string
	analytics  *agriapi.Analytics
}

func (f *fakeBackend) record(name string, p agriapi.Payload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	f.payloads = append(f.payloads, p)
}

func (f *fakeBackend) PredictPrice(ctx context.Context, p agriapi.Payload) (*agriapi.PricePrediction, error) {
	f.record("predict_price", p)
	if f.err != nil {
		return nil, f.err
	}
	return &agriapi.PricePrediction{PredictedPrice: 2000, Suggestion: "Price seems stable.", Trend: "Stable"}, nil
}

func (f *fakeBackend) PredictSuitability(ctx context.Context, p agriapi.Payload) (*agriapi.SuitabilityResult, error) {
	f.record("predict_suitability", p)
	if f.err != nil {
		return nil, f.err
	}
	return &agriapi.SuitabilityResult{Result: f.suitText}, nil
}

func (f *fakeBackend) Recommend(ctx context.Context, p agriapi.Payload) (*agriapi.RecommendResponse, error) {
	f.record("recommend", p)
	if f.err != nil {
		return nil, f.err
	}
	return &agriapi.RecommendResponse{Recommendations: []agriapi.Recommendation{{Crop: "Cotton", PredictedPrice: 5000}}, Count: 1}, nil
}

func (f *fakeBackend) Analytics(ctx context.Context) (*agriapi.Analytics, error) {
	f.record("analytics", nil)
	if f.err != nil {
		return nil, f.err
	}
	return f.analytics, nil
}

func (f *fakeBackend) FetchWeather(ctx context.Context, district, state string) (*agriapi.Weather, error) {
	f.record("weather", nil)
	f.mu.Lock()
	f.weather = map[string]string{"district": district, "state": state}
	f.mu.Unlock()
	if f.weatherErr != nil {
		return nil, f.weatherErr
	}
	return &agriapi.Weather{Temperature: 28.5, Humidity: 60, Rainfall: 120}, nil
}

func (f *fakeBackend) PredictPestRisk(ctx context.Context, p agriapi.Payload) (*agriapi.PestRisk, error) {
	f.record("pest", p)
	if f.err != nil {
		return nil, f.err
	}
	return &agriapi.PestRisk{RiskLevel: "High", RiskScore: 80, PestName: "Aphids", RecommendedSprayDay: 2, Next7Days: []float64{1, 2, 3, 4, 5, 6, 7}}, nil
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestDashboard_WeatherThenSubmit(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{}
	d := NewDashboard(b)

	// Given: a required weather field empty
	_, err := d.Submit(ctx)
	require.ErrorIs(t, err, validation.ErrValidation)
	assert.Equal(t, 0, b.callCount(), "no request while required fields are empty")

	// When: weather is fetched for the region and the form submitted
	require.NoError(t, d.FetchWeather(ctx))
	assert.Equal(t, "Punjab", b.weather["district"])
	assert.Equal(t, "", b.weather["state"])

	res, err := d.Submit(ctx)
	require.NoError(t, err)

	// Then: the payload carries every field, weather as numbers
	assert.Equal(t, 2000.0, res.PredictedPrice)
	last := b.payloads[len(b.payloads)-1]
	assert.Equal(t, agriapi.Payload{
		"crop": "Wheat", "region": "Punjab", "season": "Rabi",
		"temperature": 28.5, "humidity": 60.0, "rainfall": 120.0,
	}, last)
}

func TestDashboard_FailureMessage(t *testing.T) {
	b := &fakeBackend{err: agriapi.ErrNetwork}
	d := NewDashboard(b)
	d.UpdateField("temperature", "25")
	d.UpdateField("humidity", "50")
	d.UpdateField("rainfall", "100")

	_, err := d.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, DashboardFailure, d.Snapshot().Error)
}

func TestDashboard_WeatherFailureKeepsFields(t *testing.T) {
	b := &fakeBackend{weatherErr: agriapi.ErrNetwork}
	d := NewDashboard(b)
	d.UpdateField("temperature", "19")

	require.Error(t, d.FetchWeather(context.Background()))

	snap := d.Snapshot()
	assert.Equal(t, "19", snap.Values["temperature"])
	assert.Equal(t, WeatherNotice, snap.Notice)
	assert.Equal(t, view.Idle, snap.State)
}

func TestPriceTrend(t *testing.T) {
	trend := PriceTrend(2000)
	require.Len(t, trend, 5)
	assert.Equal(t, "Jan", trend[0].Month)
	assert.InDelta(t, 1800, trend[0].Price, 0.001)
	assert.InDelta(t, 2000, trend[2].Price, 0.001)
	assert.InDelta(t, 2040, trend[4].Price, 0.001)
}

func TestAnalytics_Load(t *testing.T) {
	b := &fakeBackend{analytics: &agriapi.Analytics{AvgPriceByCrop: map[string]float64{"Wheat": 2000}}}
	a := NewAnalytics(b)

	res, err := a.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2000.0, res.AvgPriceByCrop["Wheat"])
}

func TestAnalytics_ErrorBody(t *testing.T) {
	b := &fakeBackend{err: &agriapi.APIError{Status: 200, Message: "Data file not found"}}
	a := NewAnalytics(b)

	_, err := a.Load(context.Background())
	require.ErrorIs(t, err, agriapi.ErrNetwork)
	assert.Equal(t, AnalyticsFailure, a.Snapshot().Error)
}

func TestRanked_Submit(t *testing.T) {
	b := &fakeBackend{}
	r := NewRanked(b)
	require.NoError(t, r.FetchWeather(context.Background()))

	res, err := r.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Cotton", res.Recommendations[0].Crop)
	assert.Equal(t, "Loamy", b.payloads[len(b.payloads)-1]["soil_type"])
}

func TestRanked_FailureMessage(t *testing.T) {
	b := &fakeBackend{err: errors.New("dial tcp: refused")}
	r := NewRanked(b)
	require.NoError(t, r.FetchWeather(context.Background()))
	b.err = agriapi.ErrNetwork

	_, err := r.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, RecommendFailure, r.Snapshot().Error)
}

func fillWeather(p interface{ UpdateField(string, string) bool }) {
	p.UpdateField("temperature", "25")
	p.UpdateField("humidity", "55")
	p.UpdateField("rainfall", "90")
}

func TestSoil_PayloadMapsDistrictToRegion(t *testing.T) {
	b := &fakeBackend{suitText: "Confidence: 70%\nSuggested Alternatives: Maize, Ragi."}
	s := NewSuitability(b, SoilMode, nil)
	fillWeather(s)

	res, err := s.Submit(context.Background())
	require.NoError(t, err)

	p := b.payloads[len(b.payloads)-1]
	assert.Equal(t, "Davanagere", p["region"])
	assert.NotContains(t, p, "state")
	assert.NotContains(t, p, "district")
	assert.NotContains(t, p, "crop", "empty optional crop is not sent")
	assert.Equal(t, 90.0, p["N"])
	assert.Equal(t, 6.5, p["pH"])

	assert.Equal(t, resultparse.BandHigh, res.Score(resultparse.Confidence).Band)
	assert.Equal(t, []string{"Maize", "Ragi"}, res.Alternatives)
}

func TestSoil_CropSentWhenSet(t *testing.T) {
	b := &fakeBackend{}
	s := NewSuitability(b, SoilMode, nil)
	fillWeather(s)
	s.UpdateField("crop", "Rice")

	_, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Rice", b.payloads[len(b.payloads)-1]["crop"])
}

func TestSoil_EmptyAnswer(t *testing.T) {
	b := &fakeBackend{suitText: ""}
	s := NewSuitability(b, SoilMode, nil)
	fillWeather(s)

	res, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Empty())
}

func TestSoil_WeatherUsesStateAndDistrict(t *testing.T) {
	b := &fakeBackend{}
	s := NewSuitability(b, SoilMode, nil)

	require.NoError(t, s.FetchWeather(context.Background()))
	assert.Equal(t, map[string]string{"district": "Davanagere", "state": "Karnataka"}, b.weather)
	assert.Equal(t, "28.5", s.Form().Get("temperature"))
}

func TestSoil_WeatherNeedsDistrict(t *testing.T) {
	b := &fakeBackend{}
	s := NewSuitability(b, SoilMode, nil)
	s.UpdateField("district", "")

	err := s.FetchWeather(context.Background())
	require.ErrorIs(t, err, validation.ErrValidation)
	assert.Equal(t, 0, b.callCount())
	assert.Equal(t, "Failed to fetch weather", s.Snapshot().Notice)
}

func TestSoil_WeatherRequiredBeforeSubmit(t *testing.T) {
	b := &fakeBackend{}
	s := NewSuitability(b, SoilMode, nil)

	_, err := s.Submit(context.Background())
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{"temperature", "humidity", "rainfall"}, verrs.Fields())
	assert.Equal(t, 0, b.callCount())
}

func TestCheck_CropRequired(t *testing.T) {
	b := &fakeBackend{}
	s := NewSuitability(b, CheckMode, nil)
	fillWeather(s)

	_, err := s.Submit(context.Background())
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{"crop"}, verrs.Fields())
	assert.Equal(t, 0, b.callCount())

	s.UpdateField("crop", "Cotton")
	_, err = s.Submit(context.Background())
	require.NoError(t, err)
}

type fakeGeo struct{}

func (fakeGeo) States(ctx context.Context) ([]string, error) {
	return []string{"Karnataka", "Punjab"}, nil
}

func (fakeGeo) Districts(ctx context.Context, state string) ([]string, error) {
	if state == "Karnataka" {
		return []string{"Davanagere", "Mysuru"}, nil
	}
	return []string{"Ludhiana"}, nil
}

func TestGeo_StateChangeClearsDistrictAndSubmitFails(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{}
	s := NewSuitability(b, GeoMode, cascade.New(fakeGeo{}))
	fillWeather(s)

	states, err := s.LoadStates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Karnataka", "Punjab"}, states)

	// Given: a full selection
	districts, err := s.SelectState(ctx, "Karnataka")
	require.NoError(t, err)
	assert.Equal(t, []string{"Davanagere", "Mysuru"}, districts)
	require.NoError(t, s.SelectDistrict("Mysuru"))

	// When: the state changes
	_, err = s.SelectState(ctx, "Punjab")
	require.NoError(t, err)

	// Then: the district is empty and submission is blocked
	assert.Equal(t, "", s.Form().Get("district"))
	assert.Equal(t, "Punjab", s.Form().Get("state"))
	_, err = s.Submit(ctx)
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{"district"}, verrs.Fields())
	assert.Equal(t, 0, b.callCount())

	// And: choosing a district of the new state allows submission
	require.NoError(t, s.SelectDistrict("Ludhiana"))
	_, err = s.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ludhiana", b.payloads[len(b.payloads)-1]["region"])
}

func TestGeo_TypedDistrictMustBeSelected(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{}
	s := NewSuitability(b, GeoMode, cascade.New(fakeGeo{}))
	fillWeather(s)
	_, err := s.SelectState(ctx, "Karnataka")
	require.NoError(t, err)

	s.UpdateField("district", "Gotham")
	_, err = s.Submit(ctx)
	require.ErrorIs(t, err, validation.ErrValidation)
	assert.Equal(t, 0, b.callCount())
}

func TestGeo_StateFieldEditClearsDistrict(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{}
	s := NewSuitability(b, GeoMode, cascade.New(fakeGeo{}))
	fillWeather(s)
	_, err := s.LoadStates(ctx)
	require.NoError(t, err)

	// Given: a full selection
	_, err = s.SelectState(ctx, "Karnataka")
	require.NoError(t, err)
	require.NoError(t, s.SelectDistrict("Mysuru"))

	// When: the state is edited as a plain field
	require.True(t, s.UpdateField("state", "Punjab"))

	// Then: the district is cleared everywhere and nothing is sent
	assert.Equal(t, "Punjab", s.Form().Get("state"))
	assert.Equal(t, "", s.Form().Get("district"))
	assert.Equal(t, "", s.geo.District())
	assert.ErrorIs(t, s.SelectDistrict("Mysuru"), cascade.ErrUnknownDistrict)
	_, err = s.Submit(ctx)
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{"district"}, verrs.Fields())
	assert.Equal(t, 0, b.callCount())

	// And: a state outside the list is refused
	assert.False(t, s.UpdateField("state", "Atlantis"))
	assert.Equal(t, "Punjab", s.Form().Get("state"))
}

func TestGeo_FormStateMustMatchSelection(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{}
	s := NewSuitability(b, GeoMode, cascade.New(fakeGeo{}))
	fillWeather(s)
	_, err := s.SelectState(ctx, "Karnataka")
	require.NoError(t, err)
	require.NoError(t, s.SelectDistrict("Mysuru"))

	s.Form().Set("state", "Punjab")
	_, err = s.Submit(ctx)
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{"state"}, verrs.Fields())
	assert.Equal(t, 0, b.callCount())
}

func TestSoil_NoCascade(t *testing.T) {
	s := NewSuitability(&fakeBackend{}, SoilMode, nil)
	_, err := s.LoadStates(context.Background())
	assert.ErrorIs(t, err, ErrNoCascade)
	assert.ErrorIs(t, s.SelectDistrict("x"), ErrNoCascade)
}

func TestPest_Submit(t *testing.T) {
	b := &fakeBackend{}
	p := NewPest(b)
	require.NoError(t, p.FetchWeather(context.Background()))

	res, err := p.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Aphids", res.PestName)
	assert.Equal(t, "Wheat", b.payloads[len(b.payloads)-1]["crop"])
}

func TestPest_FailureMessage(t *testing.T) {
	b := &fakeBackend{}
	p := NewPest(b)
	fillWeather(p)
	b.err = agriapi.ErrNetwork

	_, err := p.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, PestFailure, p.Snapshot().Error)
}
