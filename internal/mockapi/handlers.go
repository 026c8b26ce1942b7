package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/croppriceai/internal/assistant"
	"github.com/hyperengineering/croppriceai/internal/validation"
	"github.com/hyperengineering/croppriceai/pkg/agriapi"
)

// AlertRepository persists price alerts. Implemented by store.AlertStore.
type AlertRepository interface {
	Add(ctx context.Context, a agriapi.NewAlert) (int64, error)
	List(ctx context.Context) ([]agriapi.Alert, error)
	Delete(ctx context.Context, id int64) error
}

// HealthResponse is the answer of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Assistant string `json:"assistant"`
	Alerts    int    `json:"alerts"`
}

// Handler implements the development backend endpoints
type Handler struct {
	model    *Model
	alerts   AlertRepository
	answerer assistant.Answerer
	version  string
}

// NewHandler creates a new Handler
func NewHandler(m *Model, alerts AlertRepository, a assistant.Answerer, version string) *Handler {
	return &Handler{
		model:    m,
		alerts:   alerts,
		answerer: a,
		version:  version,
	}
}

// body is a decoded JSON object. Numbers may arrive as JSON numbers or
// numeric strings.
type body map[string]any

func (b body) has(key string) bool {
	_, ok := b[key]
	return ok
}

func (b body) str(key string) string {
	switch v := b[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func (b body) num(key string) (float64, bool) {
	switch v := b[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// require checks that every string key is present and every number key parses.
func (b body) require(strs []string, nums []string) []validation.ValidationError {
	var c validation.Collector
	for _, k := range strs {
		c.Add(validation.ValidateRequired(k, b.str(k)))
	}
	for _, k := range nums {
		if _, ok := b.num(k); !ok {
			c.Add(&validation.ValidationError{Field: k, Message: "must be a number"})
		}
	}
	return c.Errors()
}

func decodeBody(w http.ResponseWriter, r *http.Request) (body, bool) {
	var b body
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return nil, false
	}
	if b == nil {
		b = body{}
	}
	return b, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "component", "mockapi", "error", err)
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.List(r.Context())
	if err != nil {
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Assistant: h.answerer.Name(),
		Alerts:    len(alerts),
	})
}

// Predict handles POST /predict. A body carrying soil nutrients is a
// suitability query answered in free text; anything else is a price query.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	b, ok := decodeBody(w, r)
	if !ok {
		return
	}
	if b.has("N") {
		h.suitability(w, r, b)
		return
	}

	if errs := b.require(
		[]string{"crop", "region", "season"},
		[]string{"temperature", "rainfall", "humidity"},
	); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}
	temp, _ := b.num("temperature")
	rain, _ := b.num("rainfall")
	hum, _ := b.num("humidity")

	price := h.model.Price(PriceInput{
		Crop:        b.str("crop"),
		Region:      b.str("region"),
		Season:      b.str("season"),
		Temperature: temp,
		Rainfall:    rain,
		Humidity:    hum,
	})
	writeJSON(w, agriapi.PricePrediction{
		PredictedPrice: price,
		Suggestion:     Suggestion(price),
		Trend:          "Stable",
	})
}

func (h *Handler) suitability(w http.ResponseWriter, r *http.Request, b body) {
	if errs := b.require(
		nil,
		[]string{"N", "P", "K", "pH", "temperature", "humidity", "rainfall"},
	); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}
	in := SoilInput{Region: b.str("region"), Crop: b.str("crop")}
	in.N, _ = b.num("N")
	in.P, _ = b.num("P")
	in.K, _ = b.num("K")
	in.PH, _ = b.num("pH")
	in.Temperature, _ = b.num("temperature")
	in.Humidity, _ = b.num("humidity")
	in.Rainfall, _ = b.num("rainfall")

	writeJSON(w, agriapi.SuitabilityResult{Result: h.model.SuitabilityText(in)})
}

// Recommend handles POST /recommend
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	b, ok := decodeBody(w, r)
	if !ok {
		return
	}
	if errs := b.require(
		[]string{"region", "season", "soil_type"},
		[]string{"temperature", "humidity", "rainfall"},
	); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}
	temp, _ := b.num("temperature")
	hum, _ := b.num("humidity")
	rain, _ := b.num("rainfall")

	recs := h.model.Recommend(b.str("region"), b.str("season"), b.str("soil_type"), temp, hum, rain)
	writeJSON(w, agriapi.RecommendResponse{Recommendations: recs, Count: len(recs)})
}

// Analytics handles GET /analytics
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.model.Analytics())
}

// FetchWeather handles GET /fetch_weather?district=&state=
func (h *Handler) FetchWeather(w http.ResponseWriter, r *http.Request) {
	district := strings.TrimSpace(r.URL.Query().Get("district"))
	if district == "" {
		WriteProblem(w, r, http.StatusBadRequest, "district is required")
		return
	}
	writeJSON(w, h.model.Weather(district))
}

// PredictPestRisk handles POST /predict_pest_risk
func (h *Handler) PredictPestRisk(w http.ResponseWriter, r *http.Request) {
	b, ok := decodeBody(w, r)
	if !ok {
		return
	}
	if errs := b.require(
		[]string{"crop", "region"},
		[]string{"temperature", "humidity", "rainfall"},
	); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}
	temp, _ := b.num("temperature")
	hum, _ := b.num("humidity")
	rain, _ := b.num("rainfall")

	writeJSON(w, h.model.PestRisk(b.str("crop"), b.str("region"), temp, hum, rain))
}

// MarketStatus handles GET /market-status
func (h *Handler) MarketStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.model.Market())
}

// ListAlerts handles GET /alerts
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.List(r.Context())
	if err != nil {
		slog.Error("list alerts failed", "component", "mockapi", "error", err)
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, alerts)
}

// CreateAlert handles POST /alerts
func (h *Handler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	b, ok := decodeBody(w, r)
	if !ok {
		return
	}
	price, priced := b.num("target_price")
	a := agriapi.NewAlert{
		Crop:        b.str("crop"),
		TargetPrice: price,
		Condition:   b.str("condition"),
		Contact:     b.str("contact"),
	}
	if a.Crop == "" || !priced || a.Condition == "" || a.Contact == "" {
		WriteProblem(w, r, http.StatusBadRequest, "Missing fields")
		return
	}

	id, err := h.alerts.Add(r.Context(), a)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	slog.Info("alert created", "component", "mockapi", "alert_id", id, "crop", a.Crop)
	writeJSON(w, agriapi.CreatedAlert{ID: id, Message: "Alert created successfully"})
}

// DeleteAlert handles DELETE /alerts/{id}
func (h *Handler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Alert id must be an integer")
		return
	}
	if err := h.alerts.Delete(r.Context(), id); err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "Alert deleted"})
}

// Chatbot handles POST /chatbot
func (h *Handler) Chatbot(w http.ResponseWriter, r *http.Request) {
	var req agriapi.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}
	var c validation.Collector
	c.Add(validation.ValidateRequired("question", req.Question))
	c.Add(validation.ValidateUTF8("question", req.Question))
	c.Add(validation.ValidateMaxLength("question", req.Question, 2000))
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}
	if req.Language == "" {
		req.Language = "English"
	}

	answer, err := h.answerer.Answer(r.Context(), req.Question, req.Language)
	if err != nil {
		slog.Error("assistant failed", "component", "mockapi", "assistant", h.answerer.Name(), "error", err)
		WriteProblem(w, r, http.StatusServiceUnavailable, "Assistant unavailable")
		return
	}
	writeJSON(w, agriapi.ChatReply{Answer: answer})
}
