package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerlink/ledgerlink/internal/platform/httpx"
)

// Handler serves the dashboard read surface.
type Handler struct {
	logger  *slog.Logger
	service *Service
	cache   *Cache
}

// NewHandler builds the dashboard handler.
func NewHandler(logger *slog.Logger, service *Service, cache *Cache) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, cache: cache}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/summary", h.handleSummary)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, err := h.cache.BuildKey(ctx, "summary")
	if err != nil {
		h.logger.Warn("dashboard cache key", slog.Any("error", err))
		httpx.JSON(w, http.StatusOK, BuildViewModel(h.service.Summary()))
		return
	}
	var vm ViewModel
	loader := func(context.Context) (any, error) {
		return BuildViewModel(h.service.Summary()), nil
	}
	if err := h.cache.FetchJSON(ctx, key, &vm, loader); err != nil {
		h.logger.Warn("dashboard cache fetch", slog.Any("error", err))
		httpx.JSON(w, http.StatusOK, BuildViewModel(h.service.Summary()))
		return
	}
	httpx.JSON(w, http.StatusOK, vm)
}
