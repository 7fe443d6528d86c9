package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/energyledger/internal/adapter/http/dto"
	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/usecase"
)

// RegistrationService defines the behavior needed to register participants.
type RegistrationService interface {
	RegisterAsProsumer(ctx context.Context, identity string) (*domain.RegisteredEvent, error)
	RegisterAsConsumer(ctx context.Context, identity string) (*domain.RegisteredEvent, error)
}

// ParticipantReader defines the read side used by ParticipantHandler.
type ParticipantReader interface {
	GetAccount(ctx context.Context, identity string) (*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	ListTradesByParticipant(ctx context.Context, input usecase.ListTradesByParticipantInput) ([]*domain.Trade, error)
}

// ParticipantHandler handles participant-related HTTP requests.
type ParticipantHandler struct {
	registration RegistrationService
	reader       ParticipantReader
}

// NewParticipantHandler creates a new ParticipantHandler.
func NewParticipantHandler(registration RegistrationService, reader ParticipantReader) *ParticipantHandler {
	return &ParticipantHandler{registration: registration, reader: reader}
}

// RegisterProsumer registers the caller as a prosumer.
func (h *ParticipantHandler) RegisterProsumer(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, h.registration.RegisterAsProsumer)
}

// RegisterConsumer registers the caller as a consumer.
func (h *ParticipantHandler) RegisterConsumer(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, h.registration.RegisterAsConsumer)
}

func (h *ParticipantHandler) register(
	w http.ResponseWriter,
	r *http.Request,
	fn func(context.Context, string) (*domain.RegisteredEvent, error),
) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	event, err := fn(r.Context(), identity)
	if err != nil {
		writeDomainError(w, "registration failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.RegisteredFromDomain(event))
}

// Get returns a participant. Unknown identities are reported with role unset.
func (h *ParticipantHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	if identity == "" {
		writeError(w, http.StatusBadRequest, "missing identity", "invalid_identity", "")
		return
	}

	account, err := h.reader.GetAccount(r.Context(), identity)
	if err != nil {
		writeDomainError(w, "failed to get participant", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists registered participants.
func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.reader.ListAccounts(r.Context(), usecase.ListAccountsInput{
		Limit:  parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list participants", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// Trades lists trades the participant bought or sold.
func (h *ParticipantHandler) Trades(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	if identity == "" {
		writeError(w, http.StatusBadRequest, "missing identity", "invalid_identity", "")
		return
	}

	trades, err := h.reader.ListTradesByParticipant(r.Context(), usecase.ListTradesByParticipantInput{
		Identity: identity,
		Limit:    parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset:   parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list trades", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTradesResponse{
		Trades: dto.TradesFromDomain(trades),
		Total:  int64(len(trades)),
	})
}
