// Package httpapi exposes the ledger operations over HTTP. Any transport
// satisfying the operation contracts would do; JSON over chi keeps the
// surface small for the club app backends that call it.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"rallyledger/domain/entities"
	"rallyledger/domain/interfaces"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the ledger HTTP API server
type Server struct {
	grants      interfaces.GrantService
	confirmer   interfaces.ConfirmationService
	redeemer    interfaces.RedemptionService
	balances    interfaces.BalanceService
	catalog     interfaces.CatalogService
	adjustments interfaces.AdjustmentService
}

// NewServer creates a new API server
func NewServer(
	grants interfaces.GrantService,
	confirmer interfaces.ConfirmationService,
	redeemer interfaces.RedemptionService,
	balances interfaces.BalanceService,
	catalog interfaces.CatalogService,
	adjustments interfaces.AdjustmentService,
) *Server {
	return &Server{
		grants:      grants,
		confirmer:   confirmer,
		redeemer:    redeemer,
		balances:    balances,
		catalog:     catalog,
		adjustments: adjustments,
	}
}

// Handler returns the chi router with all routes mounted
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/grants", s.handleGrant)
		r.Post("/users/{userID}/confirmations", s.handleConfirm)
		r.Get("/users/{userID}/clubs/{clubID}/balance", s.handleGetBalance)
		r.Get("/users/{userID}/clubs/{clubID}/transactions", s.handleListTransactions)
		r.Get("/users/{userID}/clubs/{clubID}/redemptions", s.handleListRedemptions)
		r.Post("/redemptions", s.handleRedeem)
		r.Post("/reclaims", s.handleReclaim)
		r.Get("/clubs/{clubID}/catalog", s.handleListCatalog)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the ledger error taxonomy onto HTTP statuses. Storage
// failures come back 503 with a retry hint; everything else is terminal
// for the request.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entities.ErrStorageUnavailable):
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "temporarily unavailable, please retry"})
	case errors.Is(err, entities.ErrInsufficientBalance):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, entities.ErrItemInactive):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, entities.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, entities.ErrInvalidAmount), errors.Is(err, entities.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}
