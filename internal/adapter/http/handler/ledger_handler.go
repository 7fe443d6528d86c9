package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/usecase"
)

// ConsistencyChecker defines the behavior needed by LedgerHandler.
type ConsistencyChecker interface {
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
}

// LedgerHandler exposes ledger-wide checks.
type LedgerHandler struct {
	checker ConsistencyChecker
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(checker ConsistencyChecker) *LedgerHandler {
	return &LedgerHandler{checker: checker}
}

// Consistency runs the conservation checks. A broken ledger is reported in
// the body with consistent=false rather than as a request failure.
func (h *LedgerHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.checker.CheckConsistency(r.Context())
	if err != nil && !(errors.Is(err, domain.ErrInconsistentLedger) && report != nil) {
		writeDomainError(w, "consistency check failed", err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
