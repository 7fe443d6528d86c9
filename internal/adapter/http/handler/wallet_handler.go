package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/energyledger/internal/adapter/http/dto"
	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/usecase"
)

// WalletService defines the behavior needed by WalletHandler.
type WalletService interface {
	Deposit(ctx context.Context, identity string, amount uint64) (*domain.Wallet, error)
	GetWallet(ctx context.Context, identity string) (*domain.Wallet, error)
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error)
	Reconcile(ctx context.Context, identity string) (*usecase.WalletReconciliation, error)
}

// WalletHandler handles wallet-related HTTP requests.
type WalletHandler struct {
	wallets WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(wallets WalletService) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

// Deposit credits the caller's wallet.
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var req dto.DepositRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_request", err.Error())
		return
	}

	wallet, err := h.wallets.Deposit(r.Context(), identity, req.Amount)
	if err != nil {
		writeDomainError(w, "deposit rejected", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// Get returns a wallet. Identities without deposits have an empty wallet.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.wallets.GetWallet(r.Context(), chi.URLParam(r, "identity"))
	if err != nil {
		writeDomainError(w, "failed to get wallet", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// Entries lists wallet movements, newest first.
func (h *WalletHandler) Entries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.wallets.ListEntries(r.Context(), usecase.ListEntriesInput{
		Identity: chi.URLParam(r, "identity"),
		Limit:    parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset:   parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListEntriesResponse{
		Entries: dto.EntriesFromDomain(entries),
		Total:   int64(len(entries)),
	})
}

// Reconcile compares the wallet balance with its entry trail.
func (h *WalletHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	rec, err := h.wallets.Reconcile(r.Context(), chi.URLParam(r, "identity"))
	if err != nil {
		writeDomainError(w, "failed to reconcile wallet", err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
