package http

import (
	"net/http"
	"strings"

	"github.com/abolfazlirani/asar-backend-app/internal/content"
)

func (api *API) handleArticleList(w http.ResponseWriter, r *http.Request) {
	if api.content == nil {
		unavailable(w)
		return
	}
	categoryID, err := optionalUUIDQuery(r, "categoryId")
	if err != nil {
		badRequest(w, "Query parameter categoryId must be a valid id.")
		return
	}
	page, limit := pageQuery(r)
	list, err := api.content.ListArticles(r.Context(), content.ListArticlesRequest{
		Lang:       langQuery(r),
		CategoryID: categoryID,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (api *API) handleArticleSearch(w http.ResponseWriter, r *http.Request) {
	if api.content == nil {
		unavailable(w)
		return
	}
	categoryID, err := optionalUUIDQuery(r, "categoryId")
	if err != nil {
		badRequest(w, "Query parameter categoryId must be a valid id.")
		return
	}
	query := r.URL.Query()
	page, limit := pageQuery(r)
	list, err := api.content.SearchArticles(r.Context(), content.SearchArticlesRequest{
		Query:      strings.TrimSpace(query.Get("q")),
		Lang:       langQuery(r),
		CategoryID: categoryID,
		PostType:   strings.TrimSpace(query.Get("post_type")),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (api *API) handleArticleGet(w http.ResponseWriter, r *http.Request) {
	if api.content == nil {
		unavailable(w)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Article not found", nil)
		return
	}
	detail, err := api.content.GetArticle(r.Context(), id, viewer(r))
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, detail)
}

func (api *API) handleArticleGetAdmin(w http.ResponseWriter, r *http.Request) {
	if api.content == nil {
		unavailable(w)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Article not found", nil)
		return
	}
	article, err := api.content.FindArticle(r.Context(), id)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, article)
}

func (api *API) handleArticleShare(w http.ResponseWriter, r *http.Request) {
	if api.content == nil {
		unavailable(w)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Article not found", nil)
		return
	}
	count, err := api.content.IncrementShare(r.Context(), id)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Share count incremented", map[string]int{"share_count": count})
}

func (api *API) handleArticleCreate(w http.ResponseWriter, r *http.Request) {
	if api.content == nil {
		unavailable(w)
		return
	}
	var req content.CreateArticleRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Field `title` is required.")
		return
	}
	article, err := api.content.CreateArticle(r.Context(), req)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Article created successfully", article)
}

func (api *API) handleArticleUpdate(w http.ResponseWriter, r *http.Request) {
	if api.content == nil {
		unavailable(w)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Article not found", nil)
		return
	}
	var req content.UpdateArticleRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body.")
		return
	}
	req.ID = id
	article, err := api.content.UpdateArticle(r.Context(), req)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Article updated successfully", article)
}

func (api *API) handleArticleDelete(w http.ResponseWriter, r *http.Request) {
	if api.content == nil {
		unavailable(w)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Article not found", nil)
		return
	}
	if err := api.content.DeleteArticle(r.Context(), id); err != nil {
		api.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Article and all related data deleted successfully", nil)
}
