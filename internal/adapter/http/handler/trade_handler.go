package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/energyledger/internal/adapter/export"
	"github.com/iho/energyledger/internal/adapter/http/dto"
	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/usecase"
)

// SettlementService defines the behavior needed to buy energy.
type SettlementService interface {
	BuyEnergy(ctx context.Context, input usecase.BuyEnergyInput) (*domain.EnergyPurchasedEvent, error)
}

// TradeReader defines the read side used by TradeHandler.
type TradeReader interface {
	GetTradeHistory(ctx context.Context) ([]*domain.Trade, error)
	GetTrade(ctx context.Context, id string) (*domain.Trade, error)
}

// TradeHandler handles trade-related HTTP requests.
type TradeHandler struct {
	settlement SettlementService
	reader     TradeReader
	now        func() time.Time
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(settlement SettlementService, reader TradeReader) *TradeHandler {
	return &TradeHandler{settlement: settlement, reader: reader, now: time.Now}
}

// Buy settles a purchase by the calling consumer.
func (h *TradeHandler) Buy(w http.ResponseWriter, r *http.Request) {
	buyer, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var req dto.BuyEnergyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_request", err.Error())
		return
	}

	event, err := h.settlement.BuyEnergy(r.Context(), req.ToUseCaseInput(buyer))
	if err != nil {
		writeDomainError(w, "purchase rejected", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EnergyPurchasedFromDomain(event))
}

// History returns every trade in execution order.
func (h *TradeHandler) History(w http.ResponseWriter, r *http.Request) {
	trades, err := h.reader.GetTradeHistory(r.Context())
	if err != nil {
		writeDomainError(w, "failed to get trade history", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTradesResponse{
		Trades: dto.TradesFromDomain(trades),
		Total:  int64(len(trades)),
	})
}

// Get retrieves a trade by ID.
func (h *TradeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing trade ID", "invalid_request", "")
		return
	}

	trade, err := h.reader.GetTrade(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get trade", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TradeFromDomain(trade))
}

// Export renders the trade history as an xlsx or pdf statement.
func (h *TradeHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid export format", "invalid_request", err.Error())
		return
	}

	trades, err := h.reader.GetTradeHistory(r.Context())
	if err != nil {
		writeDomainError(w, "failed to get trade history", err)
		return
	}

	now := h.now()
	data, err := export.Render(format, "Energy trade statement", trades, now)
	if err != nil {
		writeDomainError(w, "failed to render statement", err)
		return
	}

	filename := fmt.Sprintf("trades-%s.%s", now.UTC().Format("20060102T150405Z"), format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
