package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/abolfazlirani/asar-backend-app/internal/devices"
)

func (api *API) handleSplash(w http.ResponseWriter, r *http.Request) {
	if api.devices == nil {
		unavailable(w)
		return
	}
	var info devices.DeviceInfo
	if err := decodeBody(r, &info); err != nil && !errors.Is(err, errBodyRequired) {
		badRequest(w, "Invalid request body.")
		return
	}
	response, err := api.devices.Splash(r.Context(), userID(r), info, clientIP(r))
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, response)
}

func (api *API) handleDeviceLogs(w http.ResponseWriter, r *http.Request) {
	if api.devices == nil {
		unavailable(w)
		return
	}
	filter, err := optionalUUIDQuery(r, "userId")
	if err != nil {
		badRequest(w, "Query parameter userId must be a valid id.")
		return
	}
	page, limit := pageQuery(r)
	platform := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("platform")))
	logs, err := api.devices.ListLogs(r.Context(), filter, platform, page, limit)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, logs)
}
