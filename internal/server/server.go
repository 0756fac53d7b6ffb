package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/magnatepoint/goal-projection/internal/config"
	"github.com/magnatepoint/goal-projection/internal/forecast"
	"github.com/magnatepoint/goal-projection/pkg/adapters"
	"github.com/magnatepoint/goal-projection/pkg/constants"
	"github.com/magnatepoint/goal-projection/pkg/datetime"
	"github.com/magnatepoint/goal-projection/pkg/output"
	"github.com/magnatepoint/goal-projection/pkg/projection"
	"go.uber.org/zap"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	now           func() time.Time
}

// NewHandler constructs the HTTP handler that serves the projection API.
func NewHandler(logger *zap.Logger, cfg *Config) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = &Config{}
		if err := cfg.normalize(); err != nil {
			panic(fmt.Sprintf("invalid default server config: %v", err))
		}
	}

	maxUploadSize := cfg.UploadSizeBytes()
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		version = constants.DefaultVersion
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: version, now: time.Now}
	return h.routes(cfg.AllowedOrigins)
}

func (h *handler) routes(allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/projection", h.handleProjection)
		r.Post("/projections", h.handleProjections)
		r.Post("/forecast", h.handleForecast)
		r.Get("/version", h.handleVersion)
	})

	return r
}

// requestLogger logs each request through zap once the response is written.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Debug("request served",
					zap.String("op", "server.requestLogger"),
					zap.String("requestID", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

type projectionRequest struct {
	AsOf string `json:"as_of"`
	adapters.GoalProgress
}

type batchRequest struct {
	AsOf  string                  `json:"as_of"`
	Goals []adapters.GoalProgress `json:"goals"`
}

type goalError struct {
	GoalID string `json:"goal_id"`
	Error  string `json:"error"`
}

type batchResponse struct {
	Projections []*projection.GoalProjection `json:"projections"`
	Errors      []goalError                  `json:"errors"`
	CSV         string                       `json:"csv"`
	Duration    string                       `json:"duration"`
}

func (h *handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleProjection"

	var req projectionRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	asOf, err := h.asOf(req.AsOf)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	state, err := req.ToGoalState(asOf)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	result, err := projection.Project(state)
	if err != nil {
		h.respondErrorWithOp(w, r, statusFor(err), err.Error(), op)
		return
	}

	forecast.LogProjection(h.logger, result, op)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleProjections(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleProjections"
	start := time.Now()

	var req batchRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	asOf, err := h.asOf(req.AsOf)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	resp := batchResponse{
		Projections: make([]*projection.GoalProjection, 0, len(req.Goals)),
		Errors:      []goalError{},
	}
	for _, goal := range req.Goals {
		state, err := goal.ToGoalState(asOf)
		if err == nil {
			var result *projection.GoalProjection
			result, err = projection.Project(state)
			if err == nil {
				forecast.LogProjection(h.logger, result, op)
				resp.Projections = append(resp.Projections, result)
				continue
			}
		}
		h.logger.Warn("goal could not be projected",
			zap.String("op", op),
			zap.String("goalID", goal.GoalID),
			zap.Error(err),
		)
		resp.Errors = append(resp.Errors, goalError{GoalID: goal.GoalID, Error: err.Error()})
	}

	csv, err := output.CsvString(resp.Projections)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to render csv: %v", err), op)
		return
	}
	resp.CSV = csv
	resp.Duration = time.Since(start).String()

	h.logger.Info("projections computed",
		zap.String("op", op),
		zap.String("asOf", datetime.Format(asOf)),
		zap.Int("goals", len(req.Goals)),
		zap.Int("failed", len(resp.Errors)),
		zap.String("duration", resp.Duration),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

type forecastResponse struct {
	AsOf        string                       `json:"as_of"`
	Projections []*projection.GoalProjection `json:"projections"`
	Warnings    []string                     `json:"warnings"`
	CSV         string                       `json:"csv"`
	Duration    string                       `json:"duration"`
}

// handleForecast projects every active goal of an uploaded YAML configuration.
// The as_of query parameter overrides the file's asOfDate.
func (h *handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleForecast"
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return
	}

	conf, err := config.LoadConfigurationFromReader(&buf)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	asOf, err := conf.ResolveAsOfDate(r.URL.Query().Get("as_of"), h.now())
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	warnings := conf.ValidateConfiguration(asOf)
	for _, warning := range warnings {
		h.logger.Warn(warning, zap.String("op", op))
	}

	results, err := forecast.GetProjections(h.logger, *conf, asOf)
	if err != nil {
		status := http.StatusBadRequest
		if projection.IsInvalidGoalState(err) {
			status = http.StatusUnprocessableEntity
		}
		h.respondErrorWithOp(w, r, status, err.Error(), op)
		return
	}

	csv, err := output.CsvString(results)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to render csv: %v", err), op)
		return
	}

	resp := forecastResponse{
		AsOf:        datetime.Format(asOf),
		Projections: results,
		Warnings:    warnings,
		CSV:         csv,
		Duration:    time.Since(start).String(),
	}
	if resp.Projections == nil {
		resp.Projections = []*projection.GoalProjection{}
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}

	h.logger.Info("forecast computed",
		zap.String("op", op),
		zap.String("asOf", resp.AsOf),
		zap.Int("goals", len(results)),
		zap.Int("warnings", len(warnings)),
		zap.String("duration", resp.Duration),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

// decode reads a size-capped JSON body into dst. It writes the error
// response itself and returns false when the body is unusable.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxUploadSize), op)
			return false
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) asOf(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return datetime.Truncate(h.now()), nil
	}
	asOf, err := datetime.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("as_of: %w", err)
	}
	return asOf, nil
}

func statusFor(err error) int {
	if projection.IsInvalidGoalState(err) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("projection request failed",
			zap.String("op", op),
			zap.String("requestID", middleware.GetReqID(r.Context())),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	} else {
		h.logger.Info("projection request rejected",
			zap.String("op", op),
			zap.String("requestID", middleware.GetReqID(r.Context())),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	}
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
