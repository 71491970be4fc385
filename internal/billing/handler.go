package billing

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerlink/ledgerlink/internal/docstore"
	"github.com/ledgerlink/ledgerlink/internal/platform/httpx"
)

// Handler exposes the document lifecycle over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds the billing handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers lifecycle routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/purchase-orders", h.createPurchaseOrder)
	r.Post("/purchase-orders/{id}/convert", h.convertToBill)
	r.Post("/bills", h.createBill)
	r.Post("/bills/{id}/pay", h.payBill)
	r.Post("/orders/{orderID}/link/{poID}", h.linkOrder)
}

func (h *Handler) createPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var input CreatePurchaseOrderInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Body", err.Error())
		return
	}
	id, err := h.service.CreatePurchaseOrder(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) convertToBill(w http.ResponseWriter, r *http.Request) {
	poID := chi.URLParam(r, "id")
	billID, err := h.service.ConvertToBill(r.Context(), poID)
	if err != nil {
		var partial *PartialConversionError
		if errors.As(err, &partial) {
			// The bill is valid; only the status flip is pending. Surface
			// both so the client can show the bill and the repair state.
			httpx.JSON(w, http.StatusCreated, map[string]any{
				"id":               partial.BillID,
				"reconcilePending": true,
				"purchaseOrderId":  partial.POID,
			})
			return
		}
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"id": billID})
}

func (h *Handler) createBill(w http.ResponseWriter, r *http.Request) {
	var input CreateBillInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Body", err.Error())
		return
	}
	id, err := h.service.CreateBill(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) payBill(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkBillPaid(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "PAID"})
}

func (h *Handler) linkOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	poID := chi.URLParam(r, "poID")
	if err := h.service.LinkOrderToPurchase(r.Context(), orderID, poID); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"linked": poID})
}

// respondError maps service and store failures onto problem responses.
// Transient store failures come back as 503 so clients know a retry is
// worthwhile; write failures are never silently swallowed.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInvalidState):
		httpx.Problem(w, http.StatusConflict, "Invalid State", err.Error())
	case docstore.IsRetryable(err):
		w.Header().Set("Retry-After", "2")
		httpx.Problem(w, http.StatusServiceUnavailable, "Store Unavailable", "transient store failure, retry")
	default:
		h.logger.Error("billing request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Store Error", "")
	}
}
