package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"raspadinha/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type createUserRequest struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

type userResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

type depositRequest struct {
	Amount int64 `json:"amount"`
}

type balanceResponse struct {
	UserID  int64 `json:"user_id"`
	Balance int64 `json:"balance"`
}

type purchaseRequest struct {
	UserID     int64  `json:"user_id"`
	CategoryID string `json:"category_id"`
}

type purchaseResponse struct {
	PlayID     string `json:"play_id"`
	Stake      int64  `json:"stake"`
	NewBalance int64  `json:"new_balance"`
}

type revealRequest struct {
	UserID       int64 `json:"user_id"`
	ScratchedBps int64 `json:"scratched_bps"`
	RevealAll    bool  `json:"reveal_all"`
}

type revealResponse struct {
	PlayID      string   `json:"play_id"`
	CoverageBps int64    `json:"coverage_bps"`
	Revealed    bool     `json:"revealed"`
	Grid        []string `json:"grid,omitempty"`
}

type completeRequest struct {
	UserID  int64 `json:"user_id"`
	Claimed *struct {
		IsWin  bool   `json:"is_win"`
		TierID string `json:"tier_id"`
	} `json:"claimed"`
}

type completeResponse struct {
	PlayID         string   `json:"play_id"`
	IsWin          bool     `json:"is_win"`
	TierID         *string  `json:"tier_id,omitempty"`
	TierName       *string  `json:"tier_name,omitempty"`
	Prize          int64    `json:"prize"`
	Grid           []string `json:"grid"`
	NewBalance     int64    `json:"new_balance"`
	AlreadySettled bool     `json:"already_settled"`
}

type tierResponse struct {
	TierID      string `json:"tier_id"`
	DisplayName string `json:"display_name"`
	Symbol      string `json:"symbol"`
	Value       int64  `json:"value"`
}

type categoryResponse struct {
	CategoryID  string         `json:"category_id"`
	DisplayName string         `json:"display_name"`
	Stake       int64          `json:"stake"`
	Tiers       []tierResponse `json:"tiers"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID <= 0 || req.Username == "" {
		writeError(w, http.StatusBadRequest, "user_id and username are required")
		return
	}

	user, err := s.users.GetOrCreateUser(r.Context(), req.UserID, req.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		UserID:   user.ID,
		Username: user.Username,
		Balance:  user.Balance,
	})
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	balance, err := s.users.BalanceOf(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{UserID: userID, Balance: balance})
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	balance, err := s.users.Deposit(r.Context(), userID, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{UserID: userID, Balance: balance})
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID <= 0 || req.CategoryID == "" {
		writeError(w, http.StatusBadRequest, "user_id and category_id are required")
		return
	}

	result, err := s.plays.Purchase(r.Context(), req.UserID, req.CategoryID)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientFunds) {
			insufficientFunds.Inc()
		}
		writeServiceError(w, err)
		return
	}

	playsPurchased.WithLabelValues(req.CategoryID).Inc()

	writeJSON(w, http.StatusCreated, purchaseResponse{
		PlayID:     result.PlayID.String(),
		Stake:      result.Stake,
		NewBalance: result.NewBalance,
	})
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	playID, ok := parsePlayID(w, r)
	if !ok {
		return
	}

	var req revealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ScratchedBps < 0 {
		writeError(w, http.StatusBadRequest, "scratched_bps must not be negative")
		return
	}

	progress, err := s.plays.Reveal(r.Context(), req.UserID, playID, req.ScratchedBps, req.RevealAll)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, revealResponse{
		PlayID:      progress.PlayID.String(),
		CoverageBps: progress.CoverageBps,
		Revealed:    progress.Revealed,
		Grid:        progress.Grid,
	})
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	playID, ok := parsePlayID(w, r)
	if !ok {
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var claimed *models.ClaimedOutcome
	if req.Claimed != nil {
		claimed = &models.ClaimedOutcome{
			IsWin:  req.Claimed.IsWin,
			TierID: req.Claimed.TierID,
		}
	}

	result, err := s.plays.Complete(r.Context(), req.UserID, playID, claimed)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if !result.AlreadySettled {
		if result.IsWin {
			playsSettled.WithLabelValues("win").Inc()
			prizesPaid.Add(float64(result.Prize))
		} else {
			playsSettled.WithLabelValues("loss").Inc()
		}
	}

	writeJSON(w, http.StatusOK, completeResponse{
		PlayID:         result.PlayID.String(),
		IsWin:          result.IsWin,
		TierID:         result.TierID,
		TierName:       result.TierName,
		Prize:          result.Prize,
		Grid:           result.Grid,
		NewBalance:     result.NewBalance,
		AlreadySettled: result.AlreadySettled,
	})
}

// handleListCategories returns the catalog without weights or win-rate
// targets; those stay server-side.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories := s.plays.Categories()

	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		tiers := make([]tierResponse, 0, len(c.Tiers))
		for _, t := range c.Tiers {
			tiers = append(tiers, tierResponse{
				TierID:      t.ID,
				DisplayName: t.DisplayName,
				Symbol:      t.Symbol,
				Value:       t.Value,
			})
		}
		out = append(out, categoryResponse{
			CategoryID:  c.ID,
			DisplayName: c.DisplayName,
			Stake:       c.Stake,
			Tiers:       tiers,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return userID, true
}

func parsePlayID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	playID, err := uuid.Parse(chi.URLParam(r, "playID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid play id")
		return uuid.Nil, false
	}
	return playID, true
}

// writeServiceError maps ledger errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInsufficientFunds):
		writeError(w, http.StatusConflict, "insufficient funds")
	case errors.Is(err, models.ErrUnknownUser):
		writeError(w, http.StatusNotFound, "unknown user")
	case errors.Is(err, models.ErrUnknownCategory):
		writeError(w, http.StatusNotFound, "unknown category")
	case errors.Is(err, models.ErrUnknownPlay):
		writeError(w, http.StatusNotFound, "unknown play")
	case errors.Is(err, models.ErrNotPlayOwner):
		writeError(w, http.StatusForbidden, "play belongs to another user")
	case errors.Is(err, models.ErrAlreadySettled):
		writeError(w, http.StatusConflict, "play already settled")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
