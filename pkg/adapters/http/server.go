package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/formstate"
	"github.com/aretw0/formstate/api"
	"github.com/aretw0/formstate/internal/logging"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/fields"
	"github.com/aretw0/formstate/pkg/registry"
	"github.com/aretw0/formstate/pkg/schema"
	"github.com/aretw0/formstate/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server exposes form sessions over a JSON API.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager

	logger      *slog.Logger
	metrics     http.Handler
	newID       func() string
	definitions *registry.Registry
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsHandler replaces the default Prometheus handler served at /metrics.
// A nil handler disables the endpoint.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithIDGenerator overrides the session ID source (random UUIDs by default).
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithRegistry enables creating forms from named definitions.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *Server) {
		s.definitions = reg
	}
}

// FormResponse is the JSON view of a session.
type FormResponse struct {
	ID         string                  `json:"id"`
	Name       string                  `json:"name,omitempty"`
	Values     map[string]domain.Value `json:"values"`
	IsDirty    bool                    `json:"is_dirty"`
	IsSaveable bool                    `json:"is_saveable"`
	Diff       *domain.StateDiff       `json:"diff,omitempty"`
}

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Error   string        `json:"error"`
	Details []string      `json:"details,omitempty"`
	Form    *FormResponse `json:"form,omitempty"`
}

// NewServer creates a Server over the session manager.
func NewServer(manager *session.Manager, opts ...Option) *Server {
	s := &Server{
		Sessions: manager,
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
		metrics:  promhttp.Handler(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s
}

// NewHandler creates the HTTP handler for the session manager.
func NewHandler(manager *session.Manager, opts ...Option) http.Handler {
	return NewServer(manager, opts...).Routes()
}

// Routes builds the chi router. Requests to documented operations are
// validated against the embedded OpenAPI document before reaching a handler.
func (s *Server) Routes() http.Handler {
	router, err := newRouter()
	if err != nil {
		panic(fmt.Sprintf("embedded openapi document: %v", err))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)
	r.Use(s.validateRequests(router))

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(api.Spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	if s.definitions != nil {
		r.Get("/definitions", s.ListDefinitions)
		r.Post("/definitions/{name}/forms", s.CreateFormFromDefinition)
	}

	r.Route("/forms", func(r chi.Router) {
		r.Post("/", s.CreateForm)
		r.Get("/", s.ListForms)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetForm)
			r.Delete("/", s.DeleteForm)
			r.Put("/fields/{key}", s.ChangeValue)
			r.Post("/reset", s.ResetForm)
			r.Post("/reinitialize", s.ReinitializeForm)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>FormState API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := api.Document(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "formstate-http",
		"version":     strings.TrimSpace(formstate.Version),
		"api_version": apiVersion,
	})
}

// CreateForm handles POST /forms. The body is a form definition document.
func (s *Server) CreateForm(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	def, err := fields.ParseDefinition(raw, fields.FormatJSON)
	if err != nil {
		var agg *schema.AggregateError
		if errors.As(err, &agg) {
			s.writeValidation(w, agg)
			return
		}
		s.writeError(w, http.StatusBadRequest, "invalid form definition", err)
		return
	}

	form, err := formstate.FromDefinition(def)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "invalid form definition", err)
		return
	}
	s.create(w, r, form)
}

// ListDefinitions handles GET /definitions.
func (s *Server) ListDefinitions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"names": s.definitions.Names()})
}

// CreateFormFromDefinition handles POST /definitions/{name}/forms.
func (s *Server) CreateFormFromDefinition(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "name")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid definition name", err)
		return
	}

	form, err := s.definitions.New(name)
	if errors.Is(err, registry.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "definition not found", nil)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "invalid form definition", err)
		return
	}
	s.create(w, r, form)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, form *formstate.Form) {
	id := s.newID()
	sess, err := s.Sessions.Create(r.Context(), id, form)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}

	s.logger.Info("form created", "session_id", id, "form", sess.Name, "fields", len(sess.State.Data))
	w.Header().Set("Location", "/forms/"+id)
	s.writeJSON(w, http.StatusCreated, newFormResponse(sess, domain.Diff(nil, &sess.State)))
}

// ListForms handles GET /forms.
func (s *Server) ListForms(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"ids": ids})
}

// GetForm handles GET /forms/{id}.
func (s *Server) GetForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid form id", err)
		return
	}

	sess, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newFormResponse(sess, nil))
}

// DeleteForm handles DELETE /forms/{id}. Deleting a missing form succeeds.
func (s *Server) DeleteForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid form id", err)
		return
	}

	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangeValue handles PUT /forms/{id}/fields/{key} with body {"value": <scalar>}.
// The body shape is checked by validateRequests.
func (s *Server) ChangeValue(w http.ResponseWriter, r *http.Request) {
	key, err := pathParam(r, "key")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid field key", err)
		return
	}
	raw, err := readBody(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var body struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	var value domain.Value
	if err := json.Unmarshal(body.Value, &value); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "invalid value", err)
		return
	}
	value, err = fields.SanitizeValue(value)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "invalid value", err)
		return
	}

	s.apply(w, r, func(f *formstate.Form) error {
		return f.ChangeValue(r.Context(), key, value)
	})
}

// ResetForm handles POST /forms/{id}/reset.
func (s *Server) ResetForm(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, func(f *formstate.Form) error {
		return f.Reset(r.Context())
	})
}

// ReinitializeForm handles POST /forms/{id}/reinitialize with body {"values": {...}}.
func (s *Server) ReinitializeForm(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var body struct {
		Values map[string]domain.Value `json:"values"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "invalid values", err)
		return
	}
	values, err := fields.SanitizeValues(body.Values)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "invalid value", err)
		return
	}

	s.apply(w, r, func(f *formstate.Form) error {
		return f.Reinitialize(r.Context(), values)
	})
}

// apply runs a mutation through the session manager, answers with the
// resulting form and broadcasts the diff to event subscribers.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, fn func(*formstate.Form) error) {
	id, err := pathParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid form id", err)
		return
	}

	var before domain.FormState
	sess, err := s.Sessions.Apply(r.Context(), id, func(f *formstate.Form) error {
		before = f.State()
		return fn(f)
	})
	if sess == nil {
		s.writeSessionError(w, err)
		return
	}

	diff := domain.Diff(&before, &sess.State)
	if diff != nil {
		if payload, mErr := json.Marshal(diff); mErr == nil {
			s.Streams.Broadcast(id, string(payload))
		}
	}

	resp := newFormResponse(sess, diff)
	if errors.Is(err, domain.ErrUnknownField) {
		s.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Form: &resp})
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "transition failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func newFormResponse(sess *domain.Session, diff *domain.StateDiff) FormResponse {
	return FormResponse{
		ID:         sess.ID,
		Name:       sess.Name,
		Values:     sess.State.Values(),
		IsDirty:    sess.State.IsDirty,
		IsSaveable: sess.State.IsSaveable,
		Diff:       diff,
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(http.MaxBytesReader(w, r.Body, maxBodyBytes)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		s.writeError(w, http.StatusNotFound, "form not found", nil)
	case errors.Is(err, domain.ErrSessionExists):
		s.writeError(w, http.StatusConflict, "form already exists", nil)
	default:
		s.logger.Error("session operation failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}

func (s *Server) writeValidation(w http.ResponseWriter, agg *schema.AggregateError) {
	details := make([]string, len(agg.Errors))
	for i, e := range agg.Errors {
		details[i] = e.Error()
	}
	s.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:   fmt.Sprintf("invalid form definition: %d problem(s)", len(details)),
		Details: details,
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Details = []string{err.Error()}
		s.logger.Warn(msg, "status", status, "err", err)
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
