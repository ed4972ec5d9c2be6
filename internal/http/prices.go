package http

import "net/http"

func (api *API) handlePriceList(w http.ResponseWriter, r *http.Request) {
	if api.prices == nil {
		unavailable(w)
		return
	}
	items, err := api.prices.ListPrices(r.Context())
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, items)
}
