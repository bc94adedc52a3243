package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/wishlist/internal/metrics"
	"github.com/Kerhoff/wishlist/internal/models"
	"github.com/Kerhoff/wishlist/internal/service"
)

// Options configures the optional parts of the HTTP surface.
type Options struct {
	// AllowedOrigins is the CORS allow-list; "*" allows any origin.
	AllowedOrigins []string
	// StaticDir, when set, is served at / (the browser client bundle).
	StaticDir string
	// Metrics enables request instrumentation when non-nil.
	Metrics *metrics.Metrics
}

// Server provides the HTTP API.
type Server struct {
	svc    *service.Service
	logger *logrus.Logger
	mux    *http.ServeMux
	opts   Options
	now    func() time.Time
}

// NewServer creates a Server, registers all routes, and returns it.
func NewServer(svc *service.Service, logger *logrus.Logger, opts Options) *Server {
	s := &Server{
		svc:    svc,
		logger: logger,
		mux:    http.NewServeMux(),
		opts:   opts,
		now:    time.Now,
	}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	if s.opts.Metrics != nil {
		h = instrument(s.opts.Metrics, h)
	}
	h = cors(s.opts.AllowedOrigins)(h)
	h = requestLogger(s.logger)(h)
	return withBaseMiddleware(h)
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/data", s.handleGetData)
	s.mux.HandleFunc("GET /api/wishlists/{memberId}", s.handleGetWishlist)
	s.mux.HandleFunc("POST /api/wishlists/{memberId}/items", s.handleAddItem)
	s.mux.HandleFunc("PUT /api/wishlists/{memberId}/items/{itemId}", s.handleToggleItem)
	s.mux.HandleFunc("DELETE /api/wishlists/{memberId}/items/{itemId}", s.handleDeleteItem)

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/ready", s.handleReady)

	if s.opts.StaticDir != "" {
		s.mux.Handle("GET /", http.FileServer(http.Dir(s.opts.StaticDir)))
	}
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service error kinds to HTTP statuses. Store
// failures are logged and answered with the generic fallback message.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		s.respondError(w, http.StatusBadRequest, errorMessage(err))
	case errors.Is(err, service.ErrNotFound):
		s.respondError(w, http.StatusNotFound, errorMessage(err))
	default:
		s.logger.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error(fallback)
		s.respondError(w, http.StatusInternalServerError, fallback)
	}
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrItemRequired):
		return "Item name is required"
	case errors.Is(err, service.ErrMemberNotFound):
		return "Family member not found"
	case errors.Is(err, service.ErrWishlistNotFound):
		return "Wishlist not found"
	case errors.Is(err, service.ErrItemNotFound):
		return "Item not found"
	default:
		return err.Error()
	}
}

// decodeJSON reads the request body into dst and returns an error message on
// failure. An empty body leaves dst untouched.
func (s *Server) decodeJSON(r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil {
		return true, ""
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	return true, ""
}

// pathInt extracts a path value and converts it to int64.
func pathInt(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	if raw == "" {
		return 0, fmt.Errorf("missing %s in path", name)
	}
	return strconv.ParseInt(raw, 10, 64)
}

// requireIDs reads {memberId} and, when withItem is set, {itemId}. It writes
// a 400 response and returns ok == false on malformed values.
func (s *Server) requireIDs(w http.ResponseWriter, r *http.Request, withItem bool) (memberID, itemID int64, ok bool) {
	memberID, err := pathInt(r, "memberId")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid member id")
		return 0, 0, false
	}
	if !withItem {
		return memberID, 0, true
	}
	itemID, err = pathInt(r, "itemId")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid item id")
		return 0, 0, false
	}
	return memberID, itemID, true
}

// ---------------------------------------------------------------------------
// Wishlists
// ---------------------------------------------------------------------------

func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	state, err := s.svc.GetAll(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err, "Failed to read data")
		return
	}
	s.respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleGetWishlist(w http.ResponseWriter, r *http.Request) {
	memberID, _, ok := s.requireIDs(w, r, false)
	if !ok {
		return
	}

	var viewerID int64
	if raw := r.URL.Query().Get("viewer"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "viewer must be an integer")
			return
		}
		viewerID = v
	}

	items, err := s.svc.GetWishlist(r.Context(), memberID)
	if err != nil {
		s.respondServiceError(w, r, err, "Failed to get wishlist")
		return
	}
	s.respondJSON(w, http.StatusOK, service.VisibleWishlist(items, memberID, viewerID))
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	memberID, _, ok := s.requireIDs(w, r, false)
	if !ok {
		return
	}

	var draft models.ItemDraft
	if ok, msg := s.decodeJSON(r, &draft); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := s.svc.AddItem(r.Context(), memberID, draft)
	if err != nil {
		s.respondServiceError(w, r, err, "Failed to add item")
		return
	}
	s.respondJSON(w, http.StatusOK, created)
}

func (s *Server) handleToggleItem(w http.ResponseWriter, r *http.Request) {
	memberID, itemID, ok := s.requireIDs(w, r, true)
	if !ok {
		return
	}

	updated, err := s.svc.ToggleItem(r.Context(), memberID, itemID)
	if err != nil {
		s.respondServiceError(w, r, err, "Failed to update item")
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	memberID, itemID, ok := s.requireIDs(w, r, true)
	if !ok {
		return
	}

	if err := s.svc.RemoveItem(r.Context(), memberID, itemID); err != nil {
		s.respondServiceError(w, r, err, "Failed to delete item")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Item deleted successfully"})
}

// ---------------------------------------------------------------------------
// Probes
// ---------------------------------------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.svc.Ping(ctx); err != nil {
		s.logger.WithError(err).Warn("readiness probe failed")
		s.respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
