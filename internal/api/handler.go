package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zombar/easyread/internal/analyzer"
	"github.com/zombar/easyread/internal/models"
	"github.com/zombar/easyread/internal/notify"
	"github.com/zombar/easyread/internal/session"
	"github.com/zombar/easyread/internal/simplify"
	"github.com/zombar/easyread/internal/tracing"
	"github.com/zombar/easyread/internal/translate"
	"github.com/zombar/easyread/pkg/logging"
)

// maxBodyBytes bounds request bodies; texts are limited far below this
const maxBodyBytes = 1 << 20

// Handler handles HTTP requests
type Handler struct {
	engine     *simplify.Engine
	translator *translate.Service
	slot       *session.Slot
	gatherer   prometheus.Gatherer
	logger     *slog.Logger
	mux        *http.ServeMux
}

// Config holds the collaborators of the handler
type Config struct {
	Engine     *simplify.Engine
	Translator *translate.Service
	Slot       *session.Slot       // shared output; a new slot when nil
	Gatherer   prometheus.Gatherer // metrics source; prometheus.DefaultGatherer when nil
	Logger     *slog.Logger
}

func newHandler(cfg Config) *Handler {
	h := &Handler{
		engine:     cfg.Engine,
		translator: cfg.Translator,
		slot:       cfg.Slot,
		gatherer:   cfg.Gatherer,
		logger:     cfg.Logger,
		mux:        http.NewServeMux(),
	}
	if h.engine == nil {
		h.engine = simplify.NewEngine()
	}
	if h.translator == nil {
		h.translator = translate.NewService(nil)
	}
	if h.slot == nil {
		h.slot = session.NewSlot()
	}
	if h.gatherer == nil {
		h.gatherer = prometheus.DefaultGatherer
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	h.setupRoutes()
	return h
}

// NewHandler creates a new API handler with CORS support and metrics
func NewHandler(cfg Config) http.Handler {
	h := newHandler(cfg)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{logging.RequestIDHeader},
	})

	return c.Handler(h.mux)
}

// setupRoutes configures all API routes
func (h *Handler) setupRoutes() {
	h.mux.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	h.mux.HandleFunc("/api/simplify", h.handleSimplify)
	h.mux.HandleFunc("/api/translate", h.handleTranslate)
	h.mux.HandleFunc("/api/readability", h.handleReadability)
	h.mux.HandleFunc("/api/profiles", h.handleProfiles)
	h.mux.HandleFunc("/api/languages", h.handleLanguages)
	h.mux.HandleFunc("/api/output", h.handleOutput)
	h.mux.HandleFunc("/health", h.handleHealth)
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}, http.StatusOK)
}

type simplifyRequest struct {
	Text         string `json:"text"`
	Level        string `json:"level"`
	AddExamples  bool   `json:"add_examples"`
	ShowOriginal bool   `json:"show_original"`
}

type simplifyResponse struct {
	*simplify.Result
	Notices   []notify.Notice `json:"notices"`
	Published bool            `json:"published"`
}

// handleSimplify simplifies text and publishes the result to the output slot
func (h *Handler) handleSimplify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req simplifyRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Level == "" {
		req.Level = simplify.DefaultProfile
	}

	tracing.SetSpanAttributes(r.Context(),
		attribute.String("simplify.profile", req.Level),
		attribute.Int("text.length", len(req.Text)))

	ticket := h.slot.Begin()
	rec := &notify.Recorder{}
	result, err := h.engine.Simplify(r.Context(), req.Text, req.Level, simplify.Options{
		AddExamples:  req.AddExamples,
		ShowOriginal: req.ShowOriginal,
		Notify:       rec,
		Progress:     rec,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, simplifyResponse{
		Result:    result,
		Notices:   rec.Notices(),
		Published: h.slot.Publish(ticket, result.AsResult()),
	}, http.StatusOK)
}

type translateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
}

type translateResponse struct {
	*translate.Result
	Notices   []notify.Notice `json:"notices"`
	Published bool            `json:"published"`
}

// handleTranslate translates text and publishes the result to the output slot
func (h *Handler) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req translateRequest
	if !h.decode(w, r, &req) {
		return
	}

	tracing.SetSpanAttributes(r.Context(),
		attribute.String("translate.target", req.TargetLang),
		attribute.Int("text.length", len(req.Text)))

	ticket := h.slot.Begin()
	rec := &notify.Recorder{}
	result, err := h.translator.Translate(r.Context(), req.Text, req.TargetLang, translate.Options{
		Notify:   rec,
		Progress: rec,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, translateResponse{
		Result:    result,
		Notices:   rec.Notices(),
		Published: h.slot.Publish(ticket, result.Result),
	}, http.StatusOK)
}

type readabilityResponse struct {
	Stats     models.ReadabilityStats `json:"stats"`
	Sentences []models.ScoredSentence `json:"sentences"`
}

// handleReadability returns the readability figures and sentence scores of a text
func (h *Handler) handleReadability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	sentences := analyzer.ScoreSentences(req.Text)
	if sentences == nil {
		sentences = []models.ScoredSentence{}
	}
	respondJSON(w, readabilityResponse{
		Stats:     analyzer.Analyze(req.Text),
		Sentences: sentences,
	}, http.StatusOK)
}

func (h *Handler) handleProfiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	respondJSON(w, map[string]interface{}{
		"default":  simplify.DefaultProfile,
		"profiles": simplify.Profiles(),
	}, http.StatusOK)
}

func (h *Handler) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	respondJSON(w, map[string]interface{}{
		"source":    translate.SourceLanguage,
		"languages": translate.Languages(),
	}, http.StatusOK)
}

// handleOutput returns the most recently published result
func (h *Handler) handleOutput(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	out, ok := h.slot.Latest()
	if !ok {
		respondError(w, "No output yet", http.StatusNotFound)
		return
	}
	respondJSON(w, out, http.StatusOK)
}

// decode reads a JSON body into v, answering 400 itself on failure
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// fail maps a caller error to its status code
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logging.HTTPErrorLogger(h.logger, status, err, r)
	respondError(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, simplify.ErrEmptyInput),
		errors.Is(err, simplify.ErrUnknownProfile),
		errors.Is(err, translate.ErrEmptyInput),
		errors.Is(err, translate.ErrUnsupportedLanguage):
		return http.StatusBadRequest
	case errors.Is(err, translate.ErrTextTooLong):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, simplify.ErrTrivialInput):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
