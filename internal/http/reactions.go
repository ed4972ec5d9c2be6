package http

import (
	"net/http"

	"github.com/abolfazlirani/asar-backend-app/internal/engagement"
)

var toggleMessages = map[engagement.Kind][2]string{
	engagement.KindLike:     {"Article liked successfully.", "Article unliked successfully."},
	engagement.KindBookmark: {"Article bookmarked successfully.", "Bookmark removed successfully."},
}

func (api *API) handleReactionToggle(kind engagement.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api.engagement == nil {
			unavailable(w)
			return
		}
		articleID, err := pathUUID(r, "id")
		if err != nil {
			writeMessage(w, http.StatusNotFound, "Article not found or is inactive.", nil)
			return
		}
		result, err := api.engagement.Toggle(r.Context(), kind, userID(r), articleID)
		if err != nil {
			api.fail(w, r, err)
			return
		}
		messages := toggleMessages[kind]
		if result.Active {
			writeMessage(w, http.StatusCreated, messages[0], result.Reaction)
			return
		}
		writeMessage(w, http.StatusOK, messages[1], nil)
	}
}

func (api *API) handleReactionStatus(kind engagement.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api.engagement == nil {
			unavailable(w)
			return
		}
		articleID, err := pathUUID(r, "id")
		if err != nil {
			writeMessage(w, http.StatusNotFound, "Article not found", nil)
			return
		}
		active, err := api.engagement.Status(r.Context(), kind, userID(r), articleID)
		if err != nil {
			api.fail(w, r, err)
			return
		}
		key := "liked"
		if kind == engagement.KindBookmark {
			key = "bookmarked"
		}
		writeData(w, http.StatusOK, map[string]bool{key: active})
	}
}

func (api *API) handleReactionArticles(kind engagement.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api.engagement == nil {
			unavailable(w)
			return
		}
		page, limit := pageQuery(r)
		list, err := api.engagement.ListArticles(r.Context(), kind, userID(r), page, limit)
		if err != nil {
			api.fail(w, r, err)
			return
		}
		writeData(w, http.StatusOK, list)
	}
}

func (api *API) handleReactionsForArticle(kind engagement.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api.engagement == nil {
			unavailable(w)
			return
		}
		articleID, err := pathUUID(r, "id")
		if err != nil {
			writeMessage(w, http.StatusNotFound, "Article not found", nil)
			return
		}
		page, limit := pageQuery(r)
		list, err := api.engagement.ListForArticle(r.Context(), kind, articleID, page, limit)
		if err != nil {
			api.fail(w, r, err)
			return
		}
		writeData(w, http.StatusOK, list)
	}
}

func (api *API) handleReactionListAdmin(kind engagement.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api.engagement == nil {
			unavailable(w)
			return
		}
		filter, err := optionalUUIDQuery(r, "userId")
		if err != nil {
			badRequest(w, "Query parameter userId must be a valid id.")
			return
		}
		page, limit := pageQuery(r)
		list, err := api.engagement.ListAll(r.Context(), kind, filter, page, limit)
		if err != nil {
			api.fail(w, r, err)
			return
		}
		writeData(w, http.StatusOK, list)
	}
}
