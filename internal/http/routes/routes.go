package routes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/openmineral/confirmation/internal/config"
	"github.com/openmineral/confirmation/internal/db"
	appmw "github.com/openmineral/confirmation/internal/http/middleware"
	"github.com/openmineral/confirmation/internal/jobs"
	"github.com/openmineral/confirmation/internal/suggest"
)

type Server struct {
	Router  *chi.Mux
	Sess    *scs.SessionManager
	Q       *db.Queries
	Jobs    jobs.Enqueuer
	Suggest *suggest.Engine
	Log     zerolog.Logger

	uploadMaxBytes int64
	jobTimeout     time.Duration
}

type ServerOptions struct {
	Sess    *scs.SessionManager
	Q       *db.Queries
	Jobs    jobs.Enqueuer
	Suggest *suggest.Engine
	Cfg     config.Config
	Log     zerolog.Logger
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(opts.Log))
	r.Use(appmw.RequestID)
	r.Use(appmw.AccessLog())
	r.Use(chimw.Recoverer)

	s := &Server{
		Router:         r,
		Sess:           opts.Sess,
		Q:              opts.Q,
		Jobs:           opts.Jobs,
		Suggest:        opts.Suggest,
		Log:            opts.Log,
		uploadMaxBytes: opts.Cfg.UploadMaxBytes,
		// The worker sleeps for the delay; leave it room to write the result.
		jobTimeout: opts.Cfg.Processing.Delay + time.Minute,
	}
	if s.uploadMaxBytes <= 0 {
		s.uploadMaxBytes = 10 << 20
	}
	if s.Suggest == nil {
		s.Suggest = suggest.NewEngine(nil, suggest.WithLogger(opts.Log))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("write health check response")
		}
	})
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(api chi.Router) {
		reference[db.Material](s, api, "/materials")
		reference[db.Buyer](s, api, "/buyers")
		reference[db.DeliveryTerm](s, api, "/delivery-terms")
		reference[db.DeliveryPoint](s, api, "/delivery-points")
		reference[db.TransportMode](s, api, "/transport-modes")
		reference[db.PaymentMethod](s, api, "/payment-methods")
		reference[db.Currency](s, api, "/currencies")
		reference[db.TriggeringEvent](s, api, "/triggering-events")
		reference[db.Surveyor](s, api, "/surveyors")
		both(api, http.MethodGet, "/packaging", s.handleListPackaging)
		both(api, http.MethodPost, "/packaging", createHandler[db.Packaging](s))

		both(api, http.MethodPost, "/business-confirmations", s.handleCreateConfirmation)
		both(api, http.MethodPost, "/business-confirmations/review", s.handleReviewConfirmation)
		both(api, http.MethodGet, "/business-confirmations/{id}", s.handleGetConfirmation)

		both(api, http.MethodPost, "/trigger-processing", s.handleTriggerProcessing)
		both(api, http.MethodGet, "/task-status/{taskID}", s.handleTaskStatus)

		both(api, http.MethodPost, "/ai-suggestions", s.handleSuggestions)

		api.Group(func(up chi.Router) {
			up.Use(appmw.LimitBody(s.uploadMaxBytes))
			both(up, http.MethodPost, "/parse-assay-file", s.handleParseAssay)
		})

		both(api, http.MethodGet, "/draft", s.handleGetDraft)
		both(api, http.MethodPut, "/draft", s.handlePutDraft)
		both(api, http.MethodDelete, "/draft", s.handleDeleteDraft)
	})

	return s
}

// Handler returns the router with session loading, ready to serve.
func (s *Server) Handler() http.Handler {
	return s.Sess.LoadAndSave(s.Router)
}

// both mounts h with and without a trailing slash; the wizard calls the
// slashed form.
func both(r chi.Router, method, path string, h http.HandlerFunc) {
	r.Method(method, path, h)
	r.Method(method, path+"/", h)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.Q.Ping(r.Context()); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("readiness check failed")
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("write json response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// bodyStatus picks 413 for oversized bodies and 400 for anything else.
func bodyStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// storeError maps persistence errors onto responses. Validation errors
// use the field-keyed shape the wizard already renders.
func (s *Server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *db.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, r, http.StatusBadRequest, map[string][]string{ve.Field: {ve.Message}})
	case errors.Is(err, db.ErrForeignKey):
		writeError(w, http.StatusBadRequest, "referenced record does not exist")
	case errors.Is(err, db.ErrDuplicate):
		writeError(w, http.StatusBadRequest, "a record with this value already exists")
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("store operation failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
