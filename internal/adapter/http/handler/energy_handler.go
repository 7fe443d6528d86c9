package handler

import (
	"context"
	"net/http"

	"github.com/iho/energyledger/internal/adapter/http/dto"
	"github.com/iho/energyledger/internal/domain"
)

// ListingService defines the behavior needed by EnergyHandler.
type ListingService interface {
	AddEnergy(ctx context.Context, identity string, amount uint64) (*domain.EnergyListedEvent, error)
}

// EnergyHandler handles energy listing requests.
type EnergyHandler struct {
	listing ListingService
}

// NewEnergyHandler creates a new EnergyHandler.
func NewEnergyHandler(listing ListingService) *EnergyHandler {
	return &EnergyHandler{listing: listing}
}

// Add lists energy for the calling prosumer.
func (h *EnergyHandler) Add(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var req dto.AddEnergyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_request", err.Error())
		return
	}

	event, err := h.listing.AddEnergy(r.Context(), identity, req.Amount)
	if err != nil {
		writeDomainError(w, "listing rejected", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EnergyListedFromDomain(event))
}
