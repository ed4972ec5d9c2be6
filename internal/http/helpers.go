package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/abolfazlirani/asar-backend-app/internal/comments"
	"github.com/abolfazlirani/asar-backend-app/internal/content"
	"github.com/abolfazlirani/asar-backend-app/internal/engagement"
	"github.com/abolfazlirani/asar-backend-app/internal/pages"
	schemavalidation "github.com/abolfazlirani/asar-backend-app/internal/validation"
)

const maxFormMemory = 10 << 20

var errBodyRequired = errors.New("request body is required")

type envelope struct {
	Status  int                                `json:"status"`
	Message string                             `json:"message,omitempty"`
	Data    any                                `json:"data,omitempty"`
	Issues  []schemavalidation.ValidationIssue `json:"issues,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Status: status, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Status: status, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func badRequest(w http.ResponseWriter, message string) {
	writeMessage(w, http.StatusBadRequest, message, nil)
}

func mapError(err error) (int, envelope) {
	if err == nil {
		return http.StatusInternalServerError, envelope{Status: http.StatusInternalServerError, Message: "Internal server error"}
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return http.StatusBadRequest, envelope{Status: http.StatusBadRequest, Message: validationMessage(fieldErrs)}
	}

	if errors.Is(err, pages.ErrInvalidLayout) {
		return http.StatusInternalServerError, envelope{Status: http.StatusInternalServerError, Message: "Failed to parse page layout"}
	}

	if status, message, ok := notFound(err); ok {
		return status, envelope{Status: status, Message: message}
	}

	switch {
	case errors.Is(err, pages.ErrPageExists):
		return http.StatusConflict, envelope{Status: http.StatusConflict, Message: "A page with this slug and language already exists."}
	case errors.Is(err, content.ErrCategoryOwnParent):
		return http.StatusBadRequest, envelope{Status: http.StatusBadRequest, Message: "Category cannot be its own parent."}
	case errors.Is(err, content.ErrCategoryHasChildren):
		return http.StatusConflict, envelope{Status: http.StatusConflict, Message: "Category has subcategories and cannot be deleted."}
	case errors.Is(err, schemavalidation.ErrSchemaValidation):
		return http.StatusBadRequest, envelope{
			Status:  http.StatusBadRequest,
			Message: "Field layout_json does not match the layout schema.",
			Issues:  schemavalidation.Issues(err),
		}
	}

	return http.StatusInternalServerError, envelope{Status: http.StatusInternalServerError, Message: "Internal server error"}
}

func notFound(err error) (int, string, bool) {
	var contentErr *content.NotFoundError
	if errors.As(err, &contentErr) {
		return http.StatusNotFound, capitalize(contentErr.Resource) + " not found", true
	}
	var pageErr *pages.PageNotFoundError
	if errors.As(err, &pageErr) {
		return http.StatusNotFound, "Page not found", true
	}
	var commentErr *comments.NotFoundError
	if errors.As(err, &commentErr) {
		return http.StatusNotFound, capitalize(commentErr.Resource) + " not found", true
	}
	var reactionErr *engagement.NotFoundError
	if errors.As(err, &reactionErr) {
		return http.StatusNotFound, capitalize(string(reactionErr.Kind)) + " not found", true
	}
	return 0, "", false
}

// validationMessage joins the distinct field messages in field order.
func validationMessage(errs validation.Errors) string {
	keys := make([]string, 0, len(errs))
	for key := range errs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	seen := map[string]bool{}
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		if errs[key] == nil {
			continue
		}
		message := errs[key].Error()
		if seen[message] {
			continue
		}
		seen[message] = true
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "Invalid request."
	}
	return strings.Join(parts, " ")
}

func capitalize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Resource"
	}
	return strings.ToUpper(value[:1]) + value[1:]
}

// decodeBody reads a JSON body, or a urlencoded or multipart form whose
// fields are mapped onto the same JSON names. Form values "true" and
// "false" become booleans.
func decodeBody(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return errBodyRequired
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data", "application/x-www-form-urlencoded":
		return decodeForm(r, mediaType, target)
	}

	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return errBodyRequired
		}
		return err
	}
	return nil
}

func decodeForm(r *http.Request, mediaType string, target any) error {
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return err
	}
	fields := make(map[string]any, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) == 0 {
			continue
		}
		value := values[len(values)-1]
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true":
			fields[key] = true
		case "false":
			fields[key] = false
		default:
			if value == "" {
				fields[key] = nil
				continue
			}
			fields[key] = value
		}
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, target)
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return parseUUID(chi.URLParam(r, name))
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("uuid required")
	}
	return uuid.Parse(trimmed)
}

// optionalUUIDQuery returns nil for a missing value and an error for a
// malformed one.
func optionalUUIDQuery(r *http.Request, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseIntQuery(r *http.Request, name string) int {
	value, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(name)))
	if err != nil {
		return 0
	}
	return value
}

func pageQuery(r *http.Request) (int, int) {
	return parseIntQuery(r, "page"), parseIntQuery(r, "limit")
}

func parseBoolQuery(value string) *bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil
	}
	return &parsed
}

func langQuery(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("lang"))
}

// clientIP prefers the first X-Forwarded-For hop, then RemoteAddr.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return strings.Trim(host, "[]")
}
