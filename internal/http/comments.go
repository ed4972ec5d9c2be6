package http

import (
	"net/http"
	"strings"

	"github.com/abolfazlirani/asar-backend-app/internal/comments"
)

type votePayload struct {
	Status string `json:"status"`
}

func (api *API) handleCommentCreate(w http.ResponseWriter, r *http.Request) {
	if api.comments == nil {
		unavailable(w)
		return
	}
	var req comments.CreateCommentRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Fields `content` and `articleId` are required.")
		return
	}
	req.UserID = userID(r)
	comment, err := api.comments.Create(r.Context(), req)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Comment submitted successfully and awaiting approval.", comment)
}

func (api *API) handleCommentsForArticle(w http.ResponseWriter, r *http.Request) {
	if api.comments == nil {
		unavailable(w)
		return
	}
	articleID, err := pathUUID(r, "articleId")
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Article not found", nil)
		return
	}
	page, limit := pageQuery(r)
	threads, err := api.comments.ListForArticle(r.Context(), articleID, viewer(r), page, limit)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, threads)
}

func (api *API) handleCommentVote(w http.ResponseWriter, r *http.Request) {
	if api.comments == nil {
		unavailable(w)
		return
	}
	commentID, err := pathUUID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Comment not found", nil)
		return
	}
	var payload votePayload
	if err := decodeBody(r, &payload); err != nil {
		badRequest(w, "Field `status` must be 'like', 'dislike', or 'none'.")
		return
	}
	status := comments.VoteStatus(strings.ToLower(strings.TrimSpace(payload.Status)))
	result, err := api.comments.Vote(r.Context(), userID(r), commentID, status)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	switch result.Outcome {
	case comments.VoteCreated:
		writeMessage(w, http.StatusCreated, "Comment "+string(status)+"d successfully.", result.Vote)
	case comments.VoteUpdated:
		writeMessage(w, http.StatusOK, "Comment updated to "+string(status)+".", result.Vote)
	case comments.VoteRemoved:
		writeMessage(w, http.StatusOK, "Action removed successfully.", nil)
	default:
		writeMessage(w, http.StatusOK, "No action to remove.", nil)
	}
}

func (api *API) handleCommentVoteStatus(w http.ResponseWriter, r *http.Request) {
	if api.comments == nil {
		unavailable(w)
		return
	}
	commentID, err := pathUUID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Comment not found", nil)
		return
	}
	status, err := api.comments.VoteStatus(r.Context(), userID(r), commentID)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]comments.VoteStatus{"status": status})
}

func (api *API) handleCommentListAdmin(w http.ResponseWriter, r *http.Request) {
	if api.comments == nil {
		unavailable(w)
		return
	}
	page, limit := pageQuery(r)
	list, err := api.comments.ListAll(r.Context(), parseBoolQuery(r.URL.Query().Get("isActive")), page, limit)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (api *API) handleCommentUpdate(w http.ResponseWriter, r *http.Request) {
	if api.comments == nil {
		unavailable(w)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Comment not found", nil)
		return
	}
	var req comments.UpdateCommentRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body.")
		return
	}
	req.ID = id
	comment, err := api.comments.Update(r.Context(), req)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Comment updated successfully.", comment)
}

func (api *API) handleCommentDelete(w http.ResponseWriter, r *http.Request) {
	if api.comments == nil {
		unavailable(w)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Comment not found", nil)
		return
	}
	if err := api.comments.Delete(r.Context(), id); err != nil {
		api.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Comment and its replies deleted successfully.", nil)
}
