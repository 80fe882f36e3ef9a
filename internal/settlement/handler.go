package settlement

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/tripsplit/internal/currency"
	"github.com/fkhayef/tripsplit/pkg/response"
)

// Handler handles HTTP requests for settlement operations
type Handler struct {
	service *Service
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for settlement endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/trip/{tripId}", h.GetByTrip)
	r.Post("/trip/{tripId}/compute", h.Compute)
	r.Post("/transfers/{id}/settle", h.SettleTransfer)

	return r
}

// GetByTrip handles GET /settlements/trip/{tripId}
// @Summary      Get settlement plan for a trip
// @Description  Get per-participant balances and the minimal transfer plan. The plan is flagged stale when expenses changed after it was computed.
// @Tags         settlements
// @Produce      json
// @Param        tripId path string true "Trip ID"
// @Success      200 {object} response.APIResponse{data=SettlementResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /settlements/trip/{tripId} [get]
func (h *Handler) GetByTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")

	settlement, err := h.service.GetSettlement(r.Context(), tripID)
	if err != nil {
		h.writeError(w, err, "Failed to get settlement")
		return
	}

	h.writeSettlement(w, settlement)
}

// Compute handles POST /settlements/trip/{tripId}/compute
// @Summary      Recompute settlement plan
// @Description  Rebuild the minimal transfer plan from the trip's current expenses. Settled transfers from the previous plan are preserved.
// @Tags         settlements
// @Produce      json
// @Param        tripId path string true "Trip ID"
// @Success      200 {object} response.APIResponse{data=SettlementResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /settlements/trip/{tripId}/compute [post]
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")

	settlement, err := h.service.Recompute(r.Context(), tripID)
	if err != nil {
		h.writeError(w, err, "Failed to compute settlement")
		return
	}

	h.writeSettlement(w, settlement)
}

// SettleTransfer handles POST /settlements/transfers/{id}/settle
// @Summary      Mark a transfer as settled
// @Description  Record that a suggested payment was made. Settled transfers survive later recomputations.
// @Tags         settlements
// @Produce      json
// @Param        id path string true "Transfer ID"
// @Success      200 {object} response.APIResponse{data=TransferResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /settlements/transfers/{id}/settle [post]
func (h *Handler) SettleTransfer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	transfer, currencyCode, err := h.service.SettleTransfer(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Failed to settle transfer")
		return
	}

	response.JSON(w, http.StatusOK, transfer.ToResponse(currency.Precision(currencyCode)))
}

func (h *Handler) writeSettlement(w http.ResponseWriter, ts *TripSettlement) {
	precision := currency.Precision(ts.BaseCurrency)
	response.JSONWithMeta(w, http.StatusOK, ts.ToResponse(precision), &response.Meta{
		Stale: ts.Stale,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrTripNotFound), errors.Is(err, ErrTransferNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrTransferAlreadySettled):
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}
