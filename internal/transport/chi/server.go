package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/similar/internal/domain"
	"github.com/kailas-cloud/similar/internal/domain/event"
	"github.com/kailas-cloud/similar/internal/domain/fieldspec"
	"github.com/kailas-cloud/similar/internal/domain/item"
	"github.com/kailas-cloud/similar/internal/domain/language"
	"github.com/kailas-cloud/similar/internal/domain/options"
	"github.com/kailas-cloud/similar/internal/metrics"
	healthuc "github.com/kailas-cloud/similar/internal/usecase/health"
	"github.com/kailas-cloud/similar/internal/usecase/similar"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the similarity HTTP API.
type Server struct {
	similar       SimilarService
	items         ItemStore
	events        EventPublisher
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. events can be nil, in which case POST /events is rejected.
func NewServer(
	similarSvc SimilarService,
	items ItemStore,
	events EventPublisher,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		similar: similarSvc,
		items:   items,
		events:  events,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrInvalidItem, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidConfiguration, http.StatusBadRequest, ErrorCodeInvalidConfiguration),
		sentinelHandler(domain.ErrUnknownEvent, http.StatusBadRequest, ErrorCodeUnknownEvent),
		sentinelHandler(domain.ErrCacheUnavailable, http.StatusServiceUnavailable, ErrorCodeCacheUnavailable),
	}
	return s
}

// Handler builds the router with the full middleware chain.
func (s *Server) Handler(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/similar", s.GetSimilar)
	r.Post("/similar", s.PostSimilar)
	r.Put("/items", s.PutItem)
	r.Get("/items", s.GetItem)
	r.Delete("/items", s.DeleteItem)
	r.Post("/events", s.PublishEvent)
	r.Delete("/cache", s.FlushCache)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "method not allowed")
	})
	return r
}

// similarParams are the query parameters of GET /similar.
type similarParams struct {
	Kind           string
	ID             string
	Fields         *[]string
	Threshold      *float64
	Delimiter      *string
	LanguageFilter *bool
	Cache          *bool
	ExpiresMinutes *int
	Lang           *string
}

func bindSimilarParams(q url.Values) (similarParams, error) {
	var p similarParams
	binds := []struct {
		name     string
		explode  bool
		required bool
		dest     any
	}{
		{"kind", true, true, &p.Kind},
		{"id", true, true, &p.ID},
		{"fields", false, false, &p.Fields},
		{"threshold", true, false, &p.Threshold},
		{"delimiter", true, false, &p.Delimiter},
		{"language_filter", true, false, &p.LanguageFilter},
		{"cache", true, false, &p.Cache},
		{"expires_minutes", true, false, &p.ExpiresMinutes},
		{"lang", true, false, &p.Lang},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", b.explode, b.required, b.name, q, b.dest); err != nil {
			return similarParams{}, fmt.Errorf("invalid parameter %s: %w", b.name, err)
		}
	}
	return p, nil
}

// fieldsFromQuery turns "tags,category" into a list and "tags:2,category:1" into weights.
func fieldsFromQuery(p *[]string) (*fieldspec.Spec, error) {
	if p == nil || len(*p) == 0 {
		return nil, nil
	}
	spec, err := fieldspec.ParseEntries(*p)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// GetSimilar handles GET /similar.
func (s *Server) GetSimilar(w http.ResponseWriter, r *http.Request) {
	p, err := bindSimilarParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	fields, err := fieldsFromQuery(p.Fields)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var lang string
	if p.Lang != nil {
		lang = *p.Lang
	}
	s.serveSimilar(w, r, SimilarRequest{
		Kind: p.Kind,
		ID:   p.ID,
		Lang: lang,
		Options: options.Overrides{
			Fields:          fields,
			Threshold:       p.Threshold,
			Delimiter:       p.Delimiter,
			LanguageFilter:  p.LanguageFilter,
			CacheEnabled:    p.Cache,
			CacheTTLMinutes: p.ExpiresMinutes,
		},
	})
}

// PostSimilar handles POST /similar.
func (s *Server) PostSimilar(w http.ResponseWriter, r *http.Request) {
	var req SimilarRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.serveSimilar(w, r, req)
}

func (s *Server) serveSimilar(w http.ResponseWriter, r *http.Request, req SimilarRequest) {
	kind, err := item.ParseKind(req.Kind)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "id is required")
		return
	}

	ctx := language.ContextWithLanguage(r.Context(), req.Lang)

	ref, err := s.items.Get(ctx, kind, req.ID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	sreq := similar.Request{Reference: &ref, Overrides: req.Options}
	if req.Index != nil {
		index, err := s.items.Resolve(ctx, kind, req.Index)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		sreq.Index = index
	}

	items, err := s.similar.Similar(ctx, sreq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SimilarResponse{
		Reference: ref.ID(),
		Items:     itemsToResponse(items),
		Count:     len(items),
	})
}

// PutItem handles PUT /items.
func (s *Server) PutItem(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	kind, err := item.ParseKind(req.Kind)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	rec, err := item.NewRecord(kind, req.ID, req.Parent, req.Fields, req.Translations)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	created, err := s.items.Put(r.Context(), &rec)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, itemToResponse(&rec))
}

// GetItem handles GET /items.
func (s *Server) GetItem(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := s.itemParams(w, r)
	if !ok {
		return
	}
	rec, err := s.items.Get(r.Context(), kind, id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemToResponse(&rec))
}

// DeleteItem handles DELETE /items.
func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := s.itemParams(w, r)
	if !ok {
		return
	}
	if err := s.items.Delete(r.Context(), kind, id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) itemParams(w http.ResponseWriter, r *http.Request) (item.Kind, string, bool) {
	var rawKind, id string
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "kind", q, &rawKind); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid parameter kind: "+err.Error())
		return "", "", false
	}
	if err := runtime.BindQueryParameter("form", true, true, "id", q, &id); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid parameter id: "+err.Error())
		return "", "", false
	}
	kind, err := item.ParseKind(rawKind)
	if err != nil {
		s.handleDomainError(w, err)
		return "", "", false
	}
	return kind, id, true
}

// PublishEvent handles POST /events.
func (s *Server) PublishEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !decodeBody(w, r, &req) {
		return
	}
	name, err := event.ParseName(req.Name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if s.events == nil {
		writeError(w, http.StatusServiceUnavailable, ErrorCodeInternal, "event bus is not configured")
		return
	}

	e := event.New(name, req.ItemID)
	s.events.Publish(r.Context(), e)
	writeJSON(w, http.StatusAccepted, EventResponse{ID: e.ID, Name: string(e.Name)})
}

// FlushCache handles DELETE /cache.
func (s *Server) FlushCache(w http.ResponseWriter, r *http.Request) {
	if err := s.similar.Flush(r.Context(), metrics.FlushReasonManual); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// Validation errors carry user input, so their full message is returned.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := sentinel.Error()
		if status == http.StatusBadRequest || status == http.StatusNotFound {
			msg = err.Error()
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("Unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternal, "internal error")
}
