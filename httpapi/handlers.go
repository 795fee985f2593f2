package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"rallyledger/domain/entities"
	"rallyledger/infrastructure/observability"

	"github.com/go-chi/chi/v5"
)

type grantRequest struct {
	UserID      string `json:"user_id"`
	ClubID      string `json:"club_id"`
	EventID     string `json:"event_id"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

type grantResponse struct {
	TransactionID string `json:"transaction_id"`
}

func (s *Server) handleGrant(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	txID, err := s.grants.GrantPendingCredits(r.Context(), req.UserID, req.ClubID, req.EventID, req.Amount, req.Description)
	if err != nil {
		observability.GrantsTotal.WithLabelValues(observability.OutcomeError).Inc()
		writeError(w, err)
		return
	}

	observability.GrantsTotal.WithLabelValues(observability.OutcomeGranted).Inc()
	writeJSON(w, http.StatusCreated, grantResponse{TransactionID: txID.String()})
}

type confirmResponse struct {
	ConfirmedCount int `json:"confirmed_count"`
	ForfeitedCount int `json:"forfeited_count"`
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	result, err := s.confirmer.ConfirmPending(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	observability.ConfirmationsTotal.WithLabelValues(observability.ResolutionConfirmed).Add(float64(result.ConfirmedCount))
	observability.ConfirmationsTotal.WithLabelValues(observability.ResolutionForfeited).Add(float64(result.ForfeitedCount))

	writeJSON(w, http.StatusOK, confirmResponse{
		ConfirmedCount: result.ConfirmedCount,
		ForfeitedCount: result.ForfeitedCount,
	})
}

type balanceResponse struct {
	UserID    string `json:"user_id"`
	ClubID    string `json:"club_id"`
	Available int64  `json:"available"`
	Pending   int64  `json:"pending"`
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	clubID := chi.URLParam(r, "clubID")

	balance, err := s.balances.GetBalance(r.Context(), userID, clubID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{
		UserID:    balance.UserID,
		ClubID:    balance.ClubID,
		Available: balance.Available,
		Pending:   balance.Pending,
	})
}

type transactionResponse struct {
	ID                  string    `json:"id"`
	Type                string    `json:"type"`
	Amount              int64     `json:"amount"`
	EventID             *string   `json:"event_id,omitempty"`
	RedemptionRequestID *string   `json:"redemption_request_id,omitempty"`
	Description         string    `json:"description"`
	CreatedAt           time.Time `json:"created_at"`
}

type transactionListResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	NextCursor   *string               `json:"next_cursor,omitempty"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	clubID := chi.URLParam(r, "clubID")

	var before *entities.LogCursor
	if cursor := r.URL.Query().Get("before"); cursor != "" {
		parsed, err := entities.ParseLogCursor(cursor)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid before cursor, use the next_cursor of a prior page"})
			return
		}
		before = parsed
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	txs, err := s.balances.ListTransactions(r.Context(), userID, clubID, before, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := transactionListResponse{Transactions: make([]transactionResponse, 0, len(txs))}
	for _, tx := range txs {
		resp.Transactions = append(resp.Transactions, transactionResponse{
			ID:                  tx.ID.String(),
			Type:                tx.Type.String(),
			Amount:              tx.Amount,
			EventID:             tx.EventID,
			RedemptionRequestID: tx.RedemptionRequestID,
			Description:         tx.Description,
			CreatedAt:           tx.CreatedAt,
		})
	}
	if len(txs) > 0 {
		next := entities.CursorFor(txs[len(txs)-1]).String()
		resp.NextCursor = &next
	}

	writeJSON(w, http.StatusOK, resp)
}

type redeemRequest struct {
	UserID        string `json:"user_id"`
	ClubID        string `json:"club_id"`
	CatalogItemID string `json:"catalog_item_id"`
	RequestID     string `json:"request_id"`
}

type redemptionResponse struct {
	ID            string    `json:"id"`
	RequestID     string    `json:"request_id"`
	UserID        string    `json:"user_id"`
	ClubID        string    `json:"club_id"`
	CatalogItemID string    `json:"catalog_item_id"`
	CreditsSpent  int64     `json:"credits_spent"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	start := time.Now()
	record, err := s.redeemer.Redeem(r.Context(), req.UserID, req.ClubID, req.CatalogItemID, req.RequestID)
	observability.RedeemDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, entities.ErrInsufficientBalance) || errors.Is(err, entities.ErrItemInactive) {
			observability.RedemptionsTotal.WithLabelValues(observability.OutcomeRejected).Inc()
		} else {
			observability.RedemptionsTotal.WithLabelValues(observability.OutcomeError).Inc()
		}
		writeError(w, err)
		return
	}

	observability.RedemptionsTotal.WithLabelValues(observability.OutcomeCommitted).Inc()
	writeJSON(w, http.StatusOK, toRedemptionResponse(record))
}

func (s *Server) handleListRedemptions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	clubID := chi.URLParam(r, "clubID")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	records, err := s.redeemer.ListRedemptions(r.Context(), userID, clubID, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]redemptionResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, toRedemptionResponse(record))
	}

	writeJSON(w, http.StatusOK, resp)
}

type reclaimRequest struct {
	UserID      string `json:"user_id"`
	ClubID      string `json:"club_id"`
	Amount      int64  `json:"amount"`
	Reason      string `json:"reason"` // "forfeited" or "expired"
	Description string `json:"description"`
}

func (s *Server) handleReclaim(w http.ResponseWriter, r *http.Request) {
	var req reclaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	txID, err := s.adjustments.ReclaimCredits(r.Context(), req.UserID, req.ClubID, req.Amount,
		entities.TransactionType(req.Reason), req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, grantResponse{TransactionID: txID.String()})
}

type catalogItemResponse struct {
	ID              string `json:"id"`
	ClubID          string `json:"club_id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	CreditsRequired int64  `json:"credits_required"`
	ItemType        string `json:"item_type"`
	Active          bool   `json:"active"`
}

func (s *Server) handleListCatalog(w http.ResponseWriter, r *http.Request) {
	clubID := chi.URLParam(r, "clubID")
	activeOnly := r.URL.Query().Get("active") != "false"

	items, err := s.catalog.ListItems(r.Context(), clubID, activeOnly)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]catalogItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, catalogItemResponse{
			ID:              item.ID,
			ClubID:          item.ClubID,
			Name:            item.Name,
			Description:     item.Description,
			CreditsRequired: item.CreditsRequired,
			ItemType:        item.ItemType,
			Active:          item.Active,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func toRedemptionResponse(record *entities.RedemptionRecord) redemptionResponse {
	return redemptionResponse{
		ID:            record.ID.String(),
		RequestID:     record.RequestID,
		UserID:        record.UserID,
		ClubID:        record.ClubID,
		CatalogItemID: record.CatalogItemID,
		CreditsSpent:  record.CreditsSpent,
		Status:        string(record.Status),
		CreatedAt:     record.CreatedAt,
	}
}
