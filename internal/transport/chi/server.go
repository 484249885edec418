package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/searchsync/internal/logger"
	"github.com/kailas-cloud/searchsync/internal/metrics"
	documentuc "github.com/kailas-cloud/searchsync/internal/usecase/document"
	healthuc "github.com/kailas-cloud/searchsync/internal/usecase/health"
	modeluc "github.com/kailas-cloud/searchsync/internal/usecase/model"
	searchuc "github.com/kailas-cloud/searchsync/internal/usecase/search"
)

const maxBodyBytes = 1 << 20

var errWaitAborted = errors.New("client went away before the sync signal arrived")

// Server serves the model, document and search API.
type Server struct {
	models          *modeluc.Registry
	documents       *documentuc.Service
	search          *searchuc.Service
	health          *healthuc.Service
	logger          *zap.Logger
	metricsHandler  http.Handler
	defaultPageSize int
	maxPageSize     int
}

// NewServer creates an HTTP API server.
func NewServer(
	models *modeluc.Registry,
	documents *documentuc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		models:          models,
		documents:       documents,
		search:          search,
		health:          health,
		logger:          logger,
		metricsHandler:  promhttp.Handler(),
		defaultPageSize: request.DefaultSize,
		maxPageSize:     request.MaxSize,
	}
}

// WithPagination configures search page size limits.
func (s *Server) WithPagination(defaultPageSize, maxPageSize int) *Server {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Router builds the chi router with the full middleware chain.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/models", func(r chi.Router) {
		r.Get("/", s.ListModels)
		r.Route("/{model}", func(r chi.Router) {
			r.Get("/mapping", s.GetMapping)
			r.Post("/search", s.Search)
			r.Put("/documents/{id}", s.SaveDocument)
			r.Get("/documents/{id}", s.GetDocument)
			r.Delete("/documents/{id}", s.RemoveDocument)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
	return r
}

// ListModels handles GET /models.
func (s *Server) ListModels(w http.ResponseWriter, _ *http.Request) {
	models := s.models.List()
	items := make([]ModelResponse, len(models))
	for i, m := range models {
		items[i] = modelToResponse(m, s.models.IsShared(m.Index()))
	}
	writeJSON(w, http.StatusOK, ModelListResponse{Items: items})
}

// GetMapping handles GET /models/{model}/mapping.
func (s *Server) GetMapping(w http.ResponseWriter, r *http.Request) {
	m, err := s.models.Get(chi.URLParam(r, "model"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{m.Type(): m.Mapping()})
}

// SaveDocument handles PUT /models/{model}/documents/{id}.
func (s *Server) SaveDocument(w http.ResponseWriter, r *http.Request) {
	wait, ok := parseWait(w, r)
	if !ok {
		return
	}

	var fields map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	res, err := s.documents.Save(r.Context(), chi.URLParam(r, "model"), id, fields)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	resp := SaveResponse{ID: id, Created: res.Created}
	if wait {
		ev, err := awaitSignal(r.Context(), res.Indexed)
		if err != nil {
			writeError(w, http.StatusRequestTimeout, CodeBadRequest, err.Error())
			return
		}
		resp.Indexed = indexedToResponse(ev)
	}
	writeJSON(w, status, resp)
}

// GetDocument handles GET /models/{model}/documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	m, doc, err := s.documents.Get(r.Context(), chi.URLParam(r, "model"), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc.Record(m.PrimaryKey()))
}

// RemoveDocument handles DELETE /models/{model}/documents/{id}.
func (s *Server) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	wait, ok := parseWait(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	removed, err := s.documents.Remove(r.Context(), chi.URLParam(r, "model"), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if !wait {
		writeJSON(w, http.StatusAccepted, RemoveResponse{ID: id, State: "removing"})
		return
	}
	ev, err := awaitSignal(r.Context(), removed)
	if err != nil {
		writeError(w, http.StatusRequestTimeout, CodeBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, removedToResponse(ev))
}

// Search handles POST /models/{model}/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	m, err := s.models.Get(chi.URLParam(r, "model"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var body SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil &&
		!errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sort, err := request.ParseSort(body.Sort)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}
	size := body.Size
	if size <= 0 {
		size = s.defaultPageSize
	}
	if size > s.maxPageSize {
		size = s.maxPageSize
	}
	req, err := request.New(body.Query, body.Hydrate, body.From, size, sort)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	set, err := s.search.Search(r.Context(), m, req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, setToResponse(&set))
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
	s.metricsHandler.ServeHTTP(w, r)
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func parseWait(w http.ResponseWriter, r *http.Request) (wait, ok bool) {
	raw := r.URL.Query().Get("wait")
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "wait must be a boolean")
		return false, false
	}
	return v, true
}

// awaitSignal blocks for the single completion signal of a hook.
func awaitSignal[T any](ctx context.Context, ch <-chan T) (T, error) {
	select {
	case v := <-ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, errWaitAborted
	}
}
