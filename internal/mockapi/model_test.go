package mockapi

import (
	"math"
	"reflect"
	"sort"
	"testing"

	"github.com/hyperengineering/croppriceai/internal/resultparse"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestModel_PriceAndSuggestion(t *testing.T) {
	m := NewModel(1)

	tests := []struct {
		name       string
		in         PriceInput
		wantPrice  float64
		suggestion string
	}{
		{
			name:       "punjab wheat baseline",
			in:         PriceInput{Crop: "Wheat", Region: "Punjab", Season: "Rabi", Temperature: 25, Rainfall: 100, Humidity: 50},
			wantPrice:  2184,
			suggestion: "Good time to sell! Prices are high.",
		},
		{
			name:       "potato baseline",
			in:         PriceInput{Crop: "Potato", Region: "Uttar Pradesh", Season: "Rabi", Temperature: 25, Rainfall: 100, Humidity: 50},
			wantPrice:  1127,
			suggestion: "Price seems stable.",
		},
		{
			name:       "potato after heavy rain",
			in:         PriceInput{Crop: "Potato", Region: "Uttar Pradesh", Season: "Rabi", Temperature: 25, Rainfall: 1000, Humidity: 50},
			wantPrice:  822.71,
			suggestion: "Consider holding if possible, prices are low.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Price(tt.in)
			if !near(got, tt.wantPrice) {
				t.Errorf("Price() = %v, want %v", got, tt.wantPrice)
			}
			if s := Suggestion(got); s != tt.suggestion {
				t.Errorf("Suggestion(%v) = %q, want %q", got, s, tt.suggestion)
			}
		})
	}
}

func TestModel_PriceUnknownInputsStayPositive(t *testing.T) {
	m := NewModel(1)
	got := m.Price(PriceInput{Crop: "Quinoa", Region: "Atlantis", Season: "Monsoon", Temperature: 60, Rainfall: 5000, Humidity: 0})
	if got <= 0 {
		t.Errorf("Price() = %v, want positive", got)
	}
}

func TestModel_RecommendFiltersAndSorts(t *testing.T) {
	m := NewModel(1)

	// Given: loamy soil in a very wet season
	recs := m.Recommend("Punjab", "Kharif", "Loamy", 25, 60, 300)

	// Then: cotton is dropped and the rest are sorted by price
	var crops []string
	for _, r := range recs {
		crops = append(crops, r.Crop)
	}
	if len(recs) != 5 {
		t.Fatalf("len(recs) = %d, want 5: %v", len(recs), crops)
	}
	for _, c := range crops {
		if c == "Cotton" {
			t.Error("Cotton should be filtered out above 250mm rain")
		}
	}
	if !sort.SliceIsSorted(recs, func(i, j int) bool { return recs[i].PredictedPrice > recs[j].PredictedPrice }) {
		t.Errorf("recommendations not sorted by price: %v", recs)
	}
	if recs[0].Crop != "Sugarcane" {
		t.Errorf("top crop = %q, want Sugarcane", recs[0].Crop)
	}
}

func TestModel_RecommendDropsRiceInDrySeason(t *testing.T) {
	m := NewModel(1)
	recs := m.Recommend("Punjab", "Rabi", "Clayey", 25, 60, 50)

	got := map[string]bool{}
	for _, r := range recs {
		got[r.Crop] = true
	}
	if got["Rice"] || !got["Wheat"] || !got["Sugarcane"] || len(recs) != 2 {
		t.Errorf("recommendations = %v, want Wheat and Sugarcane only", recs)
	}
}

func TestModel_RecommendUnknownSoilConsidersAllCrops(t *testing.T) {
	m := NewModel(1)
	recs := m.Recommend("Punjab", "Rabi", "Peat", 25, 60, 150)
	if len(recs) != len(allCrops) {
		t.Errorf("len(recs) = %d, want %d", len(recs), len(allCrops))
	}
}

func TestModel_WeatherIsStablePerDistrict(t *testing.T) {
	m := NewModel(1)

	a := m.Weather("Davanagere")
	b := m.Weather("  davanagere ")
	if a != b {
		t.Errorf("Weather differs for same district: %+v vs %+v", a, b)
	}
	if a.Temperature < 18 || a.Temperature >= 35 {
		t.Errorf("Temperature = %v, want within [18, 35)", a.Temperature)
	}
	if a.Humidity < 40 || a.Humidity > 85 {
		t.Errorf("Humidity = %v, want within [40, 85]", a.Humidity)
	}
	if a.Rainfall < 0 || a.Rainfall >= 250 {
		t.Errorf("Rainfall = %v, want within [0, 250)", a.Rainfall)
	}
}

func TestModel_SuitabilityTextParses(t *testing.T) {
	m := NewModel(1)

	tests := []struct {
		name     string
		in       SoilInput
		negative bool
	}{
		{
			name: "good rice conditions",
			in:   SoilInput{Region: "Mandya", N: 80, P: 48, K: 40, PH: 6.4, Temperature: 24, Humidity: 82, Rainfall: 236, Crop: "Rice"},
		},
		{
			name:     "rice in the desert",
			in:       SoilInput{Region: "Jaisalmer", N: 20, P: 20, K: 20, PH: 8.5, Temperature: 40, Humidity: 20, Rainfall: 10, Crop: "Rice"},
			negative: true,
		},
		{
			name: "best crop without a candidate",
			in:   SoilInput{Region: "Mandya", N: 100, P: 50, K: 40, PH: 6.5, Temperature: 20, Humidity: 55, Rainfall: 75},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := resultparse.Parse(m.SuitabilityText(tt.in))

			if res.Negative != tt.negative {
				t.Errorf("Negative = %v, want %v\n%s", res.Negative, tt.negative, res.Raw)
			}
			if !res.Score(resultparse.Suitability).Found || !res.Score(resultparse.Confidence).Found {
				t.Errorf("scores not found in:\n%s", res.Raw)
			}
			if len(res.Alternatives) != 3 {
				t.Errorf("Alternatives = %v, want 3", res.Alternatives)
			}
			for _, alt := range res.Alternatives {
				if alt == tt.in.Crop {
					t.Errorf("alternatives should not repeat the queried crop: %v", res.Alternatives)
				}
			}
		})
	}
}

func TestModel_SuitabilityBestCropIsWheat(t *testing.T) {
	ranked := rankSoil(SoilInput{N: 100, P: 50, K: 40, PH: 6.5, Temperature: 20, Humidity: 55, Rainfall: 75})
	if ranked[0].crop != "Wheat" || ranked[0].score != 100 {
		t.Errorf("best = %+v, want Wheat at 100", ranked[0])
	}
}

func TestModel_PestRisk(t *testing.T) {
	m := NewModel(1)

	high := m.PestRisk("Cotton", "Maharashtra", 35, 95, 200)
	if high.RiskLevel != "High" || high.PestName != "Pink Bollworm" {
		t.Errorf("humid heat = %+v, want High Pink Bollworm", high)
	}
	low := m.PestRisk("Onion", "Punjab", 10, 20, 0)
	if low.RiskLevel != "Low" || low.PestName != "Locust" {
		t.Errorf("cold dry = %+v, want Low Locust", low)
	}

	for _, r := range []struct {
		name string
		days []float64
		day  int
	}{{"high", high.Next7Days, high.RecommendedSprayDay}, {"low", low.Next7Days, low.RecommendedSprayDay}} {
		if len(r.days) != 7 {
			t.Fatalf("%s: len(Next7Days) = %d, want 7", r.name, len(r.days))
		}
		if r.day < 1 || r.day > 7 {
			t.Fatalf("%s: RecommendedSprayDay = %d, want 1..7", r.name, r.day)
		}
		for _, v := range r.days {
			if v > r.days[r.day-1] {
				t.Errorf("%s: spray day %d is not the peak of %v", r.name, r.day, r.days)
			}
		}
	}
}

func TestModel_MarketIsSeeded(t *testing.T) {
	a := NewModel(42).Market()
	b := NewModel(42).Market()
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different market quotes")
	}

	if len(a) != len(MarketCrops) {
		t.Fatalf("len(Market()) = %d, want %d", len(a), len(MarketCrops))
	}
	m := NewModel(42)
	for i, tile := range a {
		if tile.Crop != MarketCrops[i] {
			t.Errorf("tile %d crop = %q, want %q", i, tile.Crop, MarketCrops[i])
		}
		base := m.Price(PriceInput{Crop: tile.Crop, Region: "Uttar Pradesh", Season: "Rabi", Temperature: 25, Rainfall: 100, Humidity: 50})
		if math.Abs(tile.Price-base) > 50.01 {
			t.Errorf("%s price %v strays more than 50 from %v", tile.Crop, tile.Price, base)
		}
		if tile.Change < 0.5 || tile.Change > 5 {
			t.Errorf("%s change = %v, want within [0.5, 5]", tile.Crop, tile.Change)
		}
		switch tile.Trend {
		case "Up", "Down", "Stable":
		default:
			t.Errorf("%s trend = %q", tile.Crop, tile.Trend)
		}
	}
}

func TestModel_Analytics(t *testing.T) {
	got := NewModel(1).Analytics()

	if len(got.AvgPriceByCrop) != 7 {
		t.Errorf("len(AvgPriceByCrop) = %d, want 7", len(got.AvgPriceByCrop))
	}
	if len(got.AvgPriceByRegion) != 5 {
		t.Errorf("len(AvgPriceByRegion) = %d, want 5", len(got.AvgPriceByRegion))
	}
	if len(got.TrendData) != 50 {
		t.Fatalf("len(TrendData) = %d, want 50", len(got.TrendData))
	}
	for i := 1; i < len(got.TrendData); i++ {
		if got.TrendData[i].Date < got.TrendData[i-1].Date {
			t.Fatalf("TrendData not in date order at %d", i)
		}
	}
	if last := got.TrendData[len(got.TrendData)-1].Date; last != "2024-12-01" {
		t.Errorf("last trend date = %q, want 2024-12-01", last)
	}
	if got.AvgPriceByCrop["Cotton"] <= got.AvgPriceByCrop["Potato"] {
		t.Errorf("Cotton average %v should exceed Potato %v", got.AvgPriceByCrop["Cotton"], got.AvgPriceByCrop["Potato"])
	}
}
