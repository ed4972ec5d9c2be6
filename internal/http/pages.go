package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abolfazlirani/asar-backend-app/internal/pages"
)

func (api *API) handlePageRender(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		unavailable(w)
		return
	}
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	rendered, err := api.pages.Render(r.Context(), slug, langQuery(r))
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, rendered)
}

func (api *API) handlePageList(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		unavailable(w)
		return
	}
	page, limit := pageQuery(r)
	list, err := api.pages.List(r.Context(), page, limit)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (api *API) handlePageGet(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		unavailable(w)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Page not found", nil)
		return
	}
	record, err := api.pages.Get(r.Context(), id)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, record)
}

func (api *API) handlePageCreate(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		unavailable(w)
		return
	}
	var req pages.CreatePageRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Fields slug, language, and layout_json are required.")
		return
	}
	record, err := api.pages.Create(r.Context(), req)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Page created successfully", record)
}

func (api *API) handlePageUpdate(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		unavailable(w)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Page not found", nil)
		return
	}
	var req pages.UpdatePageRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body.")
		return
	}
	req.ID = id
	record, err := api.pages.Update(r.Context(), req)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Page updated successfully", record)
}

func (api *API) handlePageDelete(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		unavailable(w)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Page not found", nil)
		return
	}
	if err := api.pages.Delete(r.Context(), id); err != nil {
		api.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Page deleted successfully", nil)
}
