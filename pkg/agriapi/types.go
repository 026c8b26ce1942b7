package agriapi

// Payload is a flat form submission. Numeric fields are float64 so they
// encode as JSON numbers.
type Payload map[string]any

// PricePrediction is the dashboard contract of POST /predict.
type PricePrediction struct {
	PredictedPrice float64 `json:"predicted_price"`
	Suggestion     string  `json:"suggestion"`
	Trend          string  `json:"trend"`
}

// SuitabilityResult is the recommendation-page contract of POST /predict:
// free text parsed by the resultparse package.
type SuitabilityResult struct {
	Result string `json:"result"`
}

// Recommendation is one ranked crop.
type Recommendation struct {
	Crop           string  `json:"crop"`
	PredictedPrice float64 `json:"predicted_price"`
}

// RecommendResponse is the answer of POST /recommend, ranked by price descending.
type RecommendResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
	Count           int              `json:"count"`
}

// TrendPoint is one historical price sample.
type TrendPoint struct {
	Date  string  `json:"Date"`
	Crop  string  `json:"Crop"`
	Price float64 `json:"Price"`
}

// Analytics is the answer of GET /analytics.
type Analytics struct {
	AvgPriceByCrop   map[string]float64 `json:"avg_price_by_crop"`
	AvgPriceByRegion map[string]float64 `json:"avg_price_by_region"`
	TrendData        []TrendPoint       `json:"trend_data"`
	Error            string             `json:"error,omitempty"`
}

// Weather is the answer of GET /fetch_weather.
type Weather struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Rainfall    float64 `json:"rainfall"`
}

// PestRisk is the answer of POST /predict_pest_risk.
type PestRisk struct {
	RiskLevel           string    `json:"risk_level"`
	RiskScore           float64   `json:"risk_score"`
	PestName            string    `json:"pest_name"`
	RecommendedSprayDay int       `json:"recommended_spray_day"`
	Next7Days           []float64 `json:"next_7_days"`
}

// MarketTile is one entry of GET /market-status.
type MarketTile struct {
	Crop   string  `json:"crop"`
	Price  float64 `json:"price"`
	Trend  string  `json:"trend"`
	Change float64 `json:"change"`
}

// Alert conditions.
const (
	ConditionAbove = "Above"
	ConditionBelow = "Below"
)

// Alert is a stored price alert. The backend owns it; CreatedAt is kept as
// the backend formats it.
type Alert struct {
	ID          int64   `json:"id"`
	Crop        string  `json:"crop"`
	TargetPrice float64 `json:"target_price"`
	Condition   string  `json:"condition"`
	Contact     string  `json:"contact"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// NewAlert is the body of POST /alerts.
type NewAlert struct {
	Crop        string  `json:"crop"`
	TargetPrice float64 `json:"target_price"`
	Condition   string  `json:"condition"`
	Contact     string  `json:"contact"`
}

// CreatedAlert acknowledges POST /alerts.
type CreatedAlert struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// ChatRequest is the body of POST /chatbot.
type ChatRequest struct {
	Question string `json:"question"`
	Language string `json:"language"`
}

// ChatReply is the answer of POST /chatbot.
type ChatReply struct {
	Answer string `json:"answer"`
}
