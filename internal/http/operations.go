package http

import (
	"errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

type invalidatePayload struct {
	Targets []string `json:"targets"`
}

func (api *API) handlePriceSync(w http.ResponseWriter, r *http.Request) {
	if api.ops == nil {
		unavailable(w)
		return
	}
	if err := api.ops.SyncPrices(r.Context(), "admin"); err != nil {
		api.logger.WithContext(r.Context()).Error("http.prices.sync_failed", "error", err)
		writeMessage(w, http.StatusBadGateway, "Failed to sync prices.", nil)
		return
	}
	writeMessage(w, http.StatusOK, "Prices synced successfully.", nil)
}

func (api *API) handleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if api.ops == nil {
		unavailable(w)
		return
	}
	var payload invalidatePayload
	if err := decodeBody(r, &payload); err != nil && !errors.Is(err, errBodyRequired) {
		badRequest(w, "Invalid request body.")
		return
	}
	if err := api.ops.InvalidateCache(r.Context(), payload.Targets...); err != nil {
		if goerrors.IsCategory(err, goerrors.CategoryValidation) {
			badRequest(w, "Field targets may only contain 'categories' and 'pages'.")
			return
		}
		api.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Cache invalidated successfully.", nil)
}
