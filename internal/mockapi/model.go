package mockapi

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hyperengineering/croppriceai/pkg/agriapi"
)

// Model is the deterministic stand-in for the trained price, suitability
// and pest models. Only the market ticker uses randomness. Safe for
// concurrent use.
type Model struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewModel creates a model whose market fluctuation is seeded with seed.
func NewModel(seed uint64) *Model {
	return &Model{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

var basePrices = map[string]float64{
	"Wheat":     2100,
	"Rice":      2300,
	"Maize":     1850,
	"Sugarcane": 3150,
	"Cotton":    6200,
	"Onion":     1700,
	"Tomato":    1400,
	"Potato":    1150,
	"Bajra":     2250,
	"Groundnut": 5600,
	"Soybean":   4400,
}

var regionFactors = map[string]float64{
	"Punjab":         1.04,
	"Haryana":        1.02,
	"Uttar Pradesh":  0.98,
	"Maharashtra":    1.00,
	"Karnataka":      1.01,
	"Madhya Pradesh": 0.97,
}

var seasonFactors = map[string]float64{
	"Rabi":   1.00,
	"Kharif": 0.96,
	"Zaid":   1.05,
}

// Soil suitability table used by the ranked recommendation.
var soilCrops = map[string][]string{
	"Clayey": {"Rice", "Sugarcane", "Wheat"},
	"Loamy":  {"Wheat", "Maize", "Sugarcane", "Cotton", "Onion", "Tomato"},
	"Sandy":  {"Maize", "Bajra", "Potato", "Onion", "Groundnut"},
	"Black":  {"Cotton", "Soybean", "Wheat", "Sugarcane"},
	"Red":    {"Groundnut", "Tomato", "Potato", "Maize"},
}

var allCrops = []string{"Wheat", "Rice", "Maize", "Sugarcane", "Cotton", "Onion", "Tomato", "Potato"}

// MarketCrops are quoted by the market ticker.
var MarketCrops = []string{"Wheat", "Rice", "Tomato", "Potato", "Onion", "Cotton"}

func hash32(parts ...string) uint32 {
	h := fnv.New32a()
	for _, p := range parts {
		h.Write([]byte(strings.ToLower(strings.TrimSpace(p))))
		h.Write([]byte{0})
	}
	return h.Sum32()
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// PriceInput is one price-model query.
type PriceInput struct {
	Crop, Region, Season            string
	Temperature, Rainfall, Humidity float64
}

// Price predicts a crop price in rupees per quintal.
func (m *Model) Price(in PriceInput) float64 {
	base, ok := basePrices[in.Crop]
	if !ok {
		base = 1500
	}
	region, ok := regionFactors[in.Region]
	if !ok {
		region = 0.95 + float64(hash32(in.Region)%10)/100
	}
	season, ok := seasonFactors[in.Season]
	if !ok {
		season = 1
	}
	weather := 1 + (in.Temperature-25)*0.004 - (in.Rainfall-100)*0.0003 + (in.Humidity-50)*0.001
	weather = math.Max(weather, 0.5)
	return round(base*region*season*weather, 2)
}

// Suggestion is the advice shown next to a predicted price.
func Suggestion(price float64) string {
	switch {
	case price > 2000:
		return "Good time to sell! Prices are high."
	case price < 1000:
		return "Consider holding if possible, prices are low."
	default:
		return "Price seems stable."
	}
}

// CurrentPrice quotes today's price with a small random fluctuation.
func (m *Model) CurrentPrice(crop string) float64 {
	p := m.Price(PriceInput{Crop: crop, Region: "Uttar Pradesh", Season: "Rabi", Temperature: 25, Rainfall: 100, Humidity: 50})
	m.mu.Lock()
	fluctuation := m.rng.Float64()*100 - 50
	m.mu.Unlock()
	return round(p+fluctuation, 2)
}

// Market quotes every market crop with a random trend and change.
func (m *Model) Market() []agriapi.MarketTile {
	trends := []string{"Up", "Down", "Stable"}
	tiles := make([]agriapi.MarketTile, 0, len(MarketCrops))
	for _, crop := range MarketCrops {
		price := m.CurrentPrice(crop)
		m.mu.Lock()
		trend := trends[m.rng.IntN(len(trends))]
		change := round(0.5+m.rng.Float64()*4.5, 1)
		m.mu.Unlock()
		tiles = append(tiles, agriapi.MarketTile{Crop: crop, Price: price, Trend: trend, Change: change})
	}
	return tiles
}

// Recommend ranks the crops suited to soil and rainfall by predicted price,
// highest first. An unknown soil considers every crop; a rainfall filter
// that would remove every candidate is skipped.
func (m *Model) Recommend(region, season, soil string, temperature, humidity, rainfall float64) []agriapi.Recommendation {
	candidates, ok := soilCrops[soil]
	if !ok {
		candidates = allCrops
	}

	var wet []string
	for _, crop := range candidates {
		if crop == "Rice" && rainfall < 100 {
			continue
		}
		if crop == "Cotton" && rainfall > 250 {
			continue
		}
		wet = append(wet, crop)
	}
	if len(wet) > 0 {
		candidates = wet
	}

	recs := make([]agriapi.Recommendation, 0, len(candidates))
	for _, crop := range candidates {
		recs = append(recs, agriapi.Recommendation{
			Crop: crop,
			PredictedPrice: m.Price(PriceInput{
				Crop: crop, Region: region, Season: season,
				Temperature: temperature, Rainfall: rainfall, Humidity: humidity,
			}),
		})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].PredictedPrice > recs[j].PredictedPrice
	})
	return recs
}

// Weather returns stable readings for a district.
func (m *Model) Weather(district string) agriapi.Weather {
	h := hash32(district)
	return agriapi.Weather{
		Temperature: round(18+float64(h%170)/10, 1),
		Humidity:    float64(40 + (h>>8)%46),
		Rainfall:    round(float64((h>>16)%2500)/10, 1),
	}
}

type cropProfile struct {
	n, p, k, ph, temp, rain, hum float64
}

var profiles = map[string]cropProfile{
	"Rice":      {80, 48, 40, 6.4, 24, 236, 82},
	"Maize":     {78, 48, 20, 6.2, 22, 85, 65},
	"Wheat":     {100, 50, 40, 6.5, 20, 75, 55},
	"Cotton":    {118, 46, 20, 6.9, 24, 80, 80},
	"Sugarcane": {100, 40, 40, 6.8, 27, 150, 70},
	"Groundnut": {20, 40, 20, 6.2, 27, 60, 55},
	"Tomato":    {90, 60, 50, 6.3, 24, 70, 65},
	"Potato":    {110, 55, 60, 5.8, 18, 70, 70},
	"Onion":     {90, 50, 60, 6.5, 22, 65, 65},
	"Soybean":   {40, 60, 40, 6.7, 25, 90, 65},
}

// SoilInput is one suitability query.
type SoilInput struct {
	Region                          string
	N, P, K, PH                     float64
	Temperature, Humidity, Rainfall float64
	Crop                            string
}

func closeness(v, ideal, tolerance float64) float64 {
	return math.Max(0, 1-math.Abs(v-ideal)/tolerance)
}

func suitability(in SoilInput, p cropProfile) float64 {
	score := closeness(in.N, p.n, 60) +
		closeness(in.P, p.p, 40) +
		closeness(in.K, p.k, 40) +
		closeness(in.PH, p.ph, 1.5) +
		closeness(in.Temperature, p.temp, 10) +
		closeness(in.Rainfall, p.rain, 150) +
		closeness(in.Humidity, p.hum, 40)
	return round(score/7*100, 1)
}

type scored struct {
	crop  string
	score float64
}

func rankSoil(in SoilInput) []scored {
	out := make([]scored, 0, len(profiles))
	for crop, p := range profiles {
		out = append(out, scored{crop, suitability(in, p)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score == out[j].score {
			return out[i].crop < out[j].crop
		}
		return out[i].score > out[j].score
	})
	return out
}

func phNote(ph float64) string {
	switch {
	case ph < 6:
		return fmt.Sprintf("Soil pH %.1f is acidic; liming may help.", ph)
	case ph > 7.5:
		return fmt.Sprintf("Soil pH %.1f is alkaline; add organic matter.", ph)
	default:
		return fmt.Sprintf("Soil pH %.1f is in a good range.", ph)
	}
}

// SuitabilityText answers a soil query in the free-text form the client
// parses: a verdict, score lines and a list of alternatives.
func (m *Model) SuitabilityText(in SoilInput) string {
	ranked := rankSoil(in)
	region := in.Region
	if region == "" {
		region = "your area"
	}

	var (
		lines []string
		score float64
		skip  string
	)
	if crop := strings.TrimSpace(in.Crop); crop != "" {
		p, ok := profiles[crop]
		if ok {
			score = suitability(in, p)
		}
		if score >= 50 {
			lines = append(lines, fmt.Sprintf("%s is suitable for %s.", crop, region))
		} else {
			lines = append(lines, fmt.Sprintf("%s is NOT suitable for %s under these conditions.", crop, region))
		}
		skip = crop
	} else {
		best := ranked[0]
		score = best.score
		skip = best.crop
		lines = append(lines, fmt.Sprintf("Recommended crop for %s: %s.", region, best.crop))
	}

	confidence := round(55+0.4*math.Abs(score-50), 0)
	lines = append(lines,
		fmt.Sprintf("Suitability Score: %.0f%%", score),
		fmt.Sprintf("Confidence: %.0f%%", confidence),
		phNote(in.PH),
	)

	var alts []string
	for _, s := range ranked {
		if s.crop == skip {
			continue
		}
		alts = append(alts, s.crop)
		if len(alts) == 3 {
			break
		}
	}
	lines = append(lines, "Suggested Alternatives: "+strings.Join(alts, ", ")+".")
	return strings.Join(lines, "\n")
}

var pests = map[string]string{
	"Wheat":     "Aphids",
	"Rice":      "Brown Planthopper",
	"Maize":     "Fall Armyworm",
	"Sugarcane": "Early Shoot Borer",
	"Cotton":    "Pink Bollworm",
	"Tomato":    "Whitefly",
	"Potato":    "Potato Tuber Moth",
}

// PestRisk forecasts pest pressure for the next seven days.
func (m *Model) PestRisk(crop, region string, temperature, humidity, rainfall float64) agriapi.PestRisk {
	base := clamp(0.5*humidity+1.2*math.Max(0, temperature-15)+0.05*rainfall, 0, 100)
	phase := float64(hash32(crop, region)%628) / 100

	days := make([]float64, 7)
	peak := 0
	for i := range days {
		days[i] = round(clamp(base+12*math.Sin(float64(i)*0.9+phase), 0, 100), 1)
		if days[i] > days[peak] {
			peak = i
		}
	}

	pest, ok := pests[crop]
	if !ok {
		pest = "Locust"
	}

	score := round(base, 0)
	level := "Low"
	switch {
	case score >= 70:
		level = "High"
	case score >= 40:
		level = "Medium"
	}

	return agriapi.PestRisk{
		RiskLevel:           level,
		RiskScore:           score,
		PestName:            pest,
		RecommendedSprayDay: peak + 1,
		Next7Days:           days,
	}
}

// historyStart anchors the generated price history.
var historyStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Analytics summarises twelve months of generated price history.
func (m *Model) Analytics() agriapi.Analytics {
	crops := []string{"Wheat", "Rice", "Maize", "Cotton", "Onion", "Tomato", "Potato"}
	regions := []string{"Punjab", "Haryana", "Uttar Pradesh", "Maharashtra", "Karnataka"}

	type row struct {
		date         string
		crop, region string
		price        float64
	}
	var rows []row
	for month := 0; month < 12; month++ {
		date := historyStart.AddDate(0, month, 0).Format("2006-01-02")
		for _, crop := range crops {
			phase := float64(hash32(crop)%628) / 100
			season := 1 + 0.06*math.Sin(float64(month)/12*2*math.Pi+phase)
			for _, region := range regions {
				p := m.Price(PriceInput{Crop: crop, Region: region, Season: "Rabi", Temperature: 25, Rainfall: 100, Humidity: 50})
				rows = append(rows, row{date, crop, region, round(p*season, 2)})
			}
		}
	}

	byCrop := map[string][]float64{}
	byRegion := map[string][]float64{}
	for _, r := range rows {
		byCrop[r.crop] = append(byCrop[r.crop], r.price)
		byRegion[r.region] = append(byRegion[r.region], r.price)
	}

	out := agriapi.Analytics{
		AvgPriceByCrop:   mean(byCrop),
		AvgPriceByRegion: mean(byRegion),
	}
	// Rows are already in date order; keep the latest 50.
	tail := rows
	if len(tail) > 50 {
		tail = tail[len(tail)-50:]
	}
	for _, r := range tail {
		out.TrendData = append(out.TrendData, agriapi.TrendPoint{Date: r.date, Crop: r.crop, Price: r.price})
	}
	return out
}

func mean(groups map[string][]float64) map[string]float64 {
	out := make(map[string]float64, len(groups))
	for k, vs := range groups {
		var sum float64
		for _, v := range vs {
			sum += v
		}
		out[k] = round(sum/float64(len(vs)), 2)
	}
	return out
}
