package agriapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithUserAgent("croppriceai-test"))
}

func TestPredictPrice_SendsFlatPayload(t *testing.T) {
	var got map[string]any
	var headers http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"predicted_price": 2150.5, "suggestion": "Good time to sell! Prices are high.", "trend": "Stable"}`))
	})

	res, err := c.PredictPrice(context.Background(), Payload{
		"crop":        "Wheat",
		"temperature": 25.0,
	})
	require.NoError(t, err)

	assert.Equal(t, 2150.5, res.PredictedPrice)
	assert.Equal(t, "Stable", res.Trend)
	assert.Equal(t, "Wheat", got["crop"])
	assert.Equal(t, 25.0, got["temperature"], "numbers must travel as JSON numbers")
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.Equal(t, "croppriceai-test", headers.Get("User-Agent"))
	_, err = uuid.Parse(headers.Get("X-Request-ID"))
	assert.NoError(t, err, "X-Request-ID must be a UUID")
}

func TestPredictSuitability_DecodesResultText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": "Confidence: 72%\nSuggested Alternatives: Maize, Cotton."}`))
	})

	res, err := c.PredictSuitability(context.Background(), Payload{"region": "Davanagere"})
	require.NoError(t, err)
	assert.Contains(t, res.Result, "Confidence: 72%")
}

func TestRecommend(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recommend", r.URL.Path)
		w.Write([]byte(`{"recommendations":[{"crop":"Cotton","predicted_price":5200},{"crop":"Wheat","predicted_price":2100}],"count":2}`))
	})

	res, err := c.Recommend(context.Background(), Payload{"soil_type": "Loamy"})
	require.NoError(t, err)
	require.Len(t, res.Recommendations, 2)
	assert.Equal(t, "Cotton", res.Recommendations[0].Crop)
	assert.Equal(t, 2, res.Count)
}

func TestAnalytics_ErrorFieldIsFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "Data file not found"}`))
	})

	_, err := c.Analytics(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Data file not found", apiErr.Message)
}

func TestAnalytics_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"avg_price_by_crop":{"Wheat":2010.4},"avg_price_by_region":{"Punjab":1990},"trend_data":[{"Date":"2024-01-01","Crop":"Wheat","Price":2000}]}`))
	})

	res, err := c.Analytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2010.4, res.AvgPriceByCrop["Wheat"])
	require.Len(t, res.TrendData, 1)
	assert.Equal(t, "2024-01-01", res.TrendData[0].Date)
}

func TestFetchWeather_QueryAndDecode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fetch_weather", r.URL.Path)
		assert.Equal(t, "Davanagere", r.URL.Query().Get("district"))
		assert.Equal(t, "Karnataka", r.URL.Query().Get("state"))
		w.Write([]byte(`{"temperature": 27.5, "humidity": 61, "rainfall": 0}`))
	})

	wx, err := c.FetchWeather(context.Background(), "Davanagere", "Karnataka")
	require.NoError(t, err)
	assert.Equal(t, 27.5, wx.Temperature)
	assert.Equal(t, 61.0, wx.Humidity)
	assert.Equal(t, 0.0, wx.Rainfall, "zero rainfall is a valid reading")
}

func TestFetchWeather_OmitsEmptyState(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.URL.Query()["state"]
		assert.False(t, ok)
		w.Write([]byte(`{"temperature": 20, "humidity": 40, "rainfall": 5}`))
	})

	_, err := c.FetchWeather(context.Background(), "Punjab", "")
	require.NoError(t, err)
}

func TestFetchWeather_MissingReadingIsEmptyResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"temperature": 20}`))
	})

	_, err := c.FetchWeather(context.Background(), "Nowhere", "")
	assert.ErrorIs(t, err, ErrEmptyResult)
	assert.False(t, errors.Is(err, ErrNetwork))
}

func TestPredictPestRisk(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"risk_level":"High","risk_score":78,"pest_name":"Aphids","recommended_spray_day":3,"next_7_days":[40,55,78,70,60,50,45]}`))
	})

	res, err := c.PredictPestRisk(context.Background(), Payload{"crop": "Wheat"})
	require.NoError(t, err)
	assert.Equal(t, "High", res.RiskLevel)
	assert.Equal(t, 3, res.RecommendedSprayDay)
	assert.Len(t, res.Next7Days, 7)
}

func TestAlerts_Lifecycle(t *testing.T) {
	var deletedPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`[{"id":7,"crop":"Onion","target_price":3000,"condition":"Above","contact":"9999999999","created_at":"2024-03-01 10:00:00"}]`))
		case http.MethodPost:
			var body NewAlert
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Below", body.Condition)
			w.Write([]byte(`{"id":8,"message":"Alert created successfully"}`))
		case http.MethodDelete:
			deletedPath = r.URL.Path
			w.Write([]byte(`{"message":"Alert deleted"}`))
		}
	})
	ctx := context.Background()

	list, err := c.ListAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(7), list[0].ID)
	assert.Equal(t, "2024-03-01 10:00:00", list[0].CreatedAt)

	created, err := c.CreateAlert(ctx, NewAlert{Crop: "Rice", TargetPrice: 1500, Condition: ConditionBelow, Contact: "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), created.ID)

	require.NoError(t, c.DeleteAlert(ctx, 7))
	assert.Equal(t, "/alerts/7", deletedPath)
}

func TestAsk(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Kannada", body.Language)
		w.Write([]byte(`{"answer":"ನಮಸ್ಕಾರ"}`))
	})

	reply, err := c.Ask(context.Background(), "hello", "Kannada")
	require.NoError(t, err)
	assert.Equal(t, "ನಮಸ್ಕಾರ", reply.Answer)
}

func TestErrors_StatusAndProblemDetails(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"flask error field", http.StatusBadRequest, `{"error":"could not convert string to float"}`, "could not convert string to float"},
		{"rfc7807 detail", http.StatusNotFound, `{"type":"about:blank","title":"Not Found","status":404,"detail":"alert 9 not found"}`, "alert 9 not found"},
		{"plain text", http.StatusInternalServerError, "boom", "boom"},
		{"empty body", http.StatusBadGateway, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.ListAlerts(context.Background())
			require.Error(t, err)
			assert.True(t, IsNetwork(err))

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestErrors_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := New(srv.URL)
	_, err := c.MarketStatus(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestErrors_UndecodableBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	})

	_, err := c.MarketStatus(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestWithTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`[]`))
	})
	WithTimeout(20 * time.Millisecond)(c)

	_, err := c.MarketStatus(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestWithTimeout_LeavesSharedClientUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	shared := &http.Client{}
	c := New(srv.URL, WithHTTPClient(shared), WithTimeout(20*time.Millisecond))

	_, err := c.MarketStatus(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Zero(t, shared.Timeout)
	assert.Same(t, shared, c.http)

	// A second client sharing the transport keeps its own deadline.
	other := New(srv.URL, WithHTTPClient(shared), WithTimeout(time.Second))
	_, err = other.MarketStatus(context.Background())
	assert.NoError(t, err)
}

func TestNew_TrimsBaseURL(t *testing.T) {
	c := New("http://localhost:5000/")
	assert.Equal(t, "http://localhost:5000", c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.timeout)
	assert.Zero(t, c.http.Timeout)
}
