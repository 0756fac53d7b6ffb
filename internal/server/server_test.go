package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/magnatepoint/goal-projection/pkg/projection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, cfg *Config) http.Handler {
	t.Helper()
	return NewHandler(zap.NewNop(), cfg)
}

func serve(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHandleProjectionSuccess(t *testing.T) {
	body := `{
		"as_of": "2025-01-01",
		"goal_id": "g-1",
		"goal_name": "House deposit",
		"estimated_cost": 120000,
		"current_savings_close": "30000",
		"target_date": "2025-07-01",
		"milestones": [{"percentage": 25, "achieved": true}]
	}`

	rr := serve(newTestHandler(t, nil), http.MethodPost, "/api/projection", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp projection.GoalProjection
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, "g-1", resp.GoalID)
	assert.Equal(t, "House deposit", resp.Name)
	require.NotNil(t, resp.MonthlyContribution)
	assert.Equal(t, "12857.14", resp.MonthlyContribution.StringFixed(2))
	require.NotNil(t, resp.ProjectedCompletionDate)
	assert.True(t, resp.ProjectedCompletionDate.Equal(time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)))
	require.Len(t, resp.Milestones, 4)
	assert.True(t, resp.Milestones[0].Achieved)
	assert.True(t, resp.Milestones[0].Reported)
	assert.Len(t, resp.Timeline, 8)
}

func TestHandleProjectionFixedContribution(t *testing.T) {
	body := `{"as_of":"2025-01-01","goal_id":"car","estimated_cost":"100000","current_savings_close":0,"monthly_contribution":"10000"}`

	rr := serve(newTestHandler(t, nil), http.MethodPost, "/api/projection", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp projection.GoalProjection
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.ProjectedCompletionDate)
	assert.True(t, resp.ProjectedCompletionDate.Equal(time.Date(2025, time.October, 28, 0, 0, 0, 0, time.UTC)))
	assert.False(t, resp.Indeterminate())
}

func TestHandleProjectionDefaultsAsOfToToday(t *testing.T) {
	h := &handler{
		logger:        zap.NewNop(),
		maxUploadSize: 1024,
		version:       "test",
		now:           func() time.Time { return time.Date(2025, time.March, 3, 18, 45, 0, 0, time.UTC) },
	}

	rr := serve(h.routes(nil), http.MethodPost, "/api/projection", `{"goal_id":"g","estimated_cost":100}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp projection.GoalProjection
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.AsOfDate.Equal(time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)))
	assert.True(t, resp.Indeterminate())
}

func TestHandleProjectionErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "malformed json",
			body:       `{"goal_id": `,
			wantStatus: http.StatusBadRequest,
			wantError:  "failed to decode request",
		},
		{
			name:       "bad as_of",
			body:       `{"as_of":"01/01/2025","goal_id":"g"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "as_of",
		},
		{
			name:       "bad target date",
			body:       `{"as_of":"2025-01-01","goal_id":"g","target_date":"soon"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "target_date",
		},
		{
			name:       "negative savings",
			body:       `{"as_of":"2025-01-01","goal_id":"g","estimated_cost":100,"current_savings_close":-5}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "current_savings",
		},
		{
			name:       "inconsistent remaining",
			body:       `{"as_of":"2025-01-01","goal_id":"g","estimated_cost":100,"current_savings_close":150,"remaining_amount":10}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "remaining_amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(newTestHandler(t, nil), http.MethodPost, "/api/projection", tt.body)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Contains(t, resp["error"], tt.wantError)
		})
	}
}

func TestHandleProjectionTooLarge(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.normalize())
	cfg.SetUploadSizeBytes(64)

	body := `{"as_of":"2025-01-01","goal_id":"` + strings.Repeat("x", 128) + `"}`
	rr := serve(newTestHandler(t, cfg), http.MethodPost, "/api/projection", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code, rr.Body.String())
}

func TestHandleProjectionsBatch(t *testing.T) {
	body := `{
		"as_of": "2025-01-01",
		"goals": [
			{"goal_id": "ok", "goal_name": "Fine", "estimated_cost": 1000, "current_savings_close": 250, "target_date": "2025-04-01"},
			{"goal_id": "bad", "estimated_cost": 100, "current_savings_close": -1},
			{"goal_id": "done", "estimated_cost": 50, "current_savings_close": 75}
		]
	}`

	rr := serve(newTestHandler(t, nil), http.MethodPost, "/api/projections", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp batchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	require.Len(t, resp.Projections, 2)
	assert.Equal(t, "ok", resp.Projections[0].GoalID)
	assert.Equal(t, "done", resp.Projections[1].GoalID)
	assert.True(t, resp.Projections[1].Complete())

	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "bad", resp.Errors[0].GoalID)
	assert.Contains(t, resp.Errors[0].Error, "current_savings")

	assert.True(t, strings.HasPrefix(resp.CSV, "goal_id,goal_name,"))
	assert.Contains(t, resp.CSV, "ok,Fine,2025-01-01,1000.00,250.00,750.00,25.00,250.00,2025-04-01,3,false")
	assert.NotEmpty(t, resp.Duration)
}

func TestHandleProjectionsEmptyBatch(t *testing.T) {
	rr := serve(newTestHandler(t, nil), http.MethodPost, "/api/projections", `{"as_of":"2025-01-01","goals":[]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.JSONEq(t, `[]`, string(resp["projections"]))
	assert.JSONEq(t, `[]`, string(resp["errors"]))
}

func TestHandleVersion(t *testing.T) {
	cfg := &Config{Version: " 1.2.3 "}
	require.NoError(t, cfg.normalize())

	rr := serve(newTestHandler(t, cfg), http.MethodGet, "/api/version", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"version":"1.2.3"}`, rr.Body.String())

	rr = serve(newTestHandler(t, nil), http.MethodGet, "/api/version", "")
	assert.JSONEq(t, `{"version":"dev"}`, rr.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	rr := serve(newTestHandler(t, nil), http.MethodGet, "/api/projection", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = serve(newTestHandler(t, nil), http.MethodPost, "/api/unknown", "{}")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCORS(t *testing.T) {
	cfg := &Config{AllowedOrigins: []string{"http://localhost:5173"}}
	require.NoError(t, cfg.normalize())
	handler := newTestHandler(t, cfg)

	req := httptest.NewRequest(http.MethodOptions, "/api/projection", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/version", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

const forecastConfig = `asOfDate: "2025-01-01"
goals:
  - id: house
    name: House deposit
    active: true
    targetAmount: "120000"
    currentSavings: "30000"
    targetDate: "2025-07-01"
  - id: thirds
    name: Thirds
    active: true
    targetAmount: "100"
    currentSavings: "0"
    targetDate: "2025-03-31"
  - id: retired
    name: Retired
    active: false
    targetAmount: "1"
`

func upload(t *testing.T, handler http.Handler, path, field, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, "config.yaml")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHandleForecast(t *testing.T) {
	rr := upload(t, newTestHandler(t, nil), "/api/forecast", "file", forecastConfig)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp forecastResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, "2025-01-01", resp.AsOf)
	require.Len(t, resp.Projections, 2, "inactive goal should be skipped")
	assert.Equal(t, "house", resp.Projections[0].GoalID)
	assert.Equal(t, "12857.14", resp.Projections[0].MonthlyContribution.StringFixed(2))

	thirds := resp.Projections[1]
	require.NotNil(t, thirds.Milestones[3].ProjectedDate)
	assert.True(t, thirds.Milestones[3].ProjectedDate.Equal(time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)))
	require.Len(t, thirds.Timeline, 4)
	assert.Equal(t, "100", thirds.Timeline[3].CumulativeSavings.String())

	assert.Empty(t, resp.Warnings)
	assert.Contains(t, resp.CSV, "house,House deposit,2025-01-01,120000.00,30000.00,90000.00,25.00,12857.14,2025-07-01,7,false")
	assert.NotContains(t, resp.CSV, "retired")
	assert.NotEmpty(t, resp.Duration)
}

func TestHandleForecastAsOfOverride(t *testing.T) {
	rr := upload(t, newTestHandler(t, nil), "/api/forecast?as_of=2025-08-01", "file", forecastConfig)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp forecastResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "2025-08-01", resp.AsOf)
	require.Len(t, resp.Projections, 2)
	assert.True(t, resp.Projections[0].Overdue)
	assert.NotEmpty(t, resp.Warnings, "overdue target dates are reported")
}

func TestHandleForecastErrors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		field      string
		content    string
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing file",
			path:       "/api/forecast",
			field:      "config",
			content:    forecastConfig,
			wantStatus: http.StatusBadRequest,
			wantError:  "missing configuration file",
		},
		{
			name:       "malformed yaml",
			path:       "/api/forecast",
			field:      "file",
			content:    "goals: [unterminated",
			wantStatus: http.StatusBadRequest,
			wantError:  "error reading config data",
		},
		{
			name:       "bad as-of override",
			path:       "/api/forecast?as_of=someday",
			field:      "file",
			content:    forecastConfig,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid as-of date",
		},
		{
			name:       "unparseable amount",
			path:       "/api/forecast",
			field:      "file",
			content:    "asOfDate: \"2025-01-01\"\ngoals:\n  - id: x\n    name: Broken\n    active: true\n    targetAmount: ten\n",
			wantStatus: http.StatusBadRequest,
			wantError:  "goal Broken",
		},
		{
			name:       "invalid goal state",
			path:       "/api/forecast",
			field:      "file",
			content:    "asOfDate: \"2025-01-01\"\ngoals:\n  - id: y\n    name: Negative\n    active: true\n    targetAmount: \"100\"\n    currentSavings: \"-1\"\n",
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "current_savings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := upload(t, newTestHandler(t, nil), tt.path, tt.field, tt.content)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Contains(t, resp["error"], tt.wantError)
		})
	}
}

func TestHandleForecastTooLarge(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.normalize())
	cfg.SetUploadSizeBytes(64)

	rr := upload(t, newTestHandler(t, cfg), "/api/forecast", "file", forecastConfig)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code, rr.Body.String())
}
