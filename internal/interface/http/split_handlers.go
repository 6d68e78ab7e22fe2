package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	domsplit "example.com/divide-account/internal/domain/split"
	divideuc "example.com/divide-account/internal/usecase/divide"
)

var errInvalidLimit = errors.New("limit must be a positive integer")

type splitResponse struct {
	ID          string          `json:"id"`
	Total       int64           `json:"total"`
	BaseShare   int64           `json:"base_share"`
	Remainder   int64           `json:"remainder"`
	Allocations domsplit.Shares `json:"allocations"`
	CreatedAt   time.Time       `json:"created_at"`
}

func mapSplit(s *domsplit.Split) splitResponse {
	return splitResponse{
		ID:          s.ID,
		Total:       s.Allocation.Total,
		BaseShare:   s.Allocation.BaseShare,
		Remainder:   s.Allocation.Remainder,
		Allocations: domsplit.Shares(s.Allocation.Shares),
		CreatedAt:   s.CreatedAt,
	}
}

func mapSummary(s *domsplit.Summary) map[string]any {
	return map[string]any{
		"id":              s.ID,
		"total":           s.Total,
		"recipient_count": s.RecipientCount,
		"created_at":      s.CreatedAt,
	}
}

func (a *API) handleCreateSplit(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	in, err := divideuc.DecodeInput(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	created, err := a.divideSvc.Divide(r.Context(), in)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapSplit(created))
}

func (a *API) handleValidateSplit(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	in, err := divideuc.DecodeInput(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if err := a.divideSvc.Validate(in); err != nil {
		handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListSplits(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, errInvalidLimit)
			return
		}
		limit = n
	}

	summaries, err := a.historySvc.List(r.Context(), limit)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	if op := getAuthOperator(r.Context()); op != nil {
		slog.Debug("split history listed", "operator", op.Email, "count", len(summaries))
	}

	out := make([]map[string]any, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, mapSummary(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleGetSplit(w http.ResponseWriter, r *http.Request) {
	s, err := a.historySvc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, fmt.Errorf("get split: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, mapSplit(s))
}
