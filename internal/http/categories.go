package http

import (
	"net/http"

	"github.com/abolfazlirani/asar-backend-app/internal/content"
)

func (api *API) handleCategoryTree(w http.ResponseWriter, r *http.Request) {
	if api.content == nil {
		unavailable(w)
		return
	}
	parentID, err := optionalUUIDQuery(r, "parentId")
	if err != nil {
		badRequest(w, "Query parameter parentId must be a valid id.")
		return
	}
	tree, err := api.content.CategoryTree(r.Context(), content.CategoryTreeRequest{
		Lang:     langQuery(r),
		ParentID: parentID,
	})
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, tree)
}

func (api *API) handleCategoryListAdmin(w http.ResponseWriter, r *http.Request) {
	if api.content == nil {
		unavailable(w)
		return
	}
	list, err := api.content.ListCategoriesAdmin(r.Context(), langQuery(r))
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (api *API) handleCategoryCreate(w http.ResponseWriter, r *http.Request) {
	if api.content == nil {
		unavailable(w)
		return
	}
	var req content.CreateCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Field `name` is required.")
		return
	}
	category, err := api.content.CreateCategory(r.Context(), req)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Category created successfully", category)
}

func (api *API) handleCategoryUpdate(w http.ResponseWriter, r *http.Request) {
	if api.content == nil {
		unavailable(w)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Category not found", nil)
		return
	}
	var req content.UpdateCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body.")
		return
	}
	req.ID = id
	category, err := api.content.UpdateCategory(r.Context(), req)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Category updated successfully", category)
}

func (api *API) handleCategoryDelete(w http.ResponseWriter, r *http.Request) {
	if api.content == nil {
		unavailable(w)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Category not found", nil)
		return
	}
	if err := api.content.DeleteCategory(r.Context(), id); err != nil {
		api.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Category deleted successfully", nil)
}
