package mockapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hyperengineering/croppriceai/internal/store"
	"github.com/hyperengineering/croppriceai/internal/validation"
)

// Problem is the RFC 7807 body every failed mock-backend call returns.
// The terminal client surfaces Detail verbatim, so it must be safe to show.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

// ProblemWithErrors adds the per-field rejections of a 422.
type ProblemWithErrors struct {
	Problem
	Errors []validation.ValidationError `json:"errors,omitempty"`
}

const problemBase = "https://croppriceai.dev/errors/"

// problemType names the statuses the handlers actually emit. Anything else
// falls back to about:blank, where RFC 7807 says the title is the reason phrase.
func problemType(status int) (typeURI, title string) {
	switch status {
	case http.StatusBadRequest:
		return problemBase + "bad-request", "Bad Request"
	case http.StatusNotFound:
		return problemBase + "not-found", "Not Found"
	case http.StatusMethodNotAllowed:
		return problemBase + "method-not-allowed", "Method Not Allowed"
	case http.StatusUnprocessableEntity:
		return problemBase + "validation-error", "Validation Error"
	case http.StatusInternalServerError:
		return problemBase + "internal-error", "Internal Server Error"
	case http.StatusServiceUnavailable:
		return problemBase + "assistant-unavailable", "Assistant Unavailable"
	}
	return "about:blank", http.StatusText(status)
}

func newProblem(r *http.Request, status int, detail string) Problem {
	typeURI, title := problemType(status)
	return Problem{
		Type:     typeURI,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}
}

func writeProblemBody(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode problem response", "component", "mockapi", "status", status, "error", err)
	}
}

// WriteProblem rejects the request with status and a client-visible detail.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	writeProblemBody(w, status, newProblem(r, status, detail))
}

// WriteProblemWithErrors rejects a form submission with 422 and the fields
// that failed, so the client can mark them on the form it is showing.
func WriteProblemWithErrors(w http.ResponseWriter, r *http.Request, detail string, errs []validation.ValidationError) {
	writeProblemBody(w, http.StatusUnprocessableEntity, ProblemWithErrors{
		Problem: newProblem(r, http.StatusUnprocessableEntity, detail),
		Errors:  errs,
	})
}

// MapStoreError translates alert store failures. Unknown errors become a
// bare 500; their text stays in the server log.
func MapStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		WriteProblem(w, r, http.StatusNotFound, "Alert not found")
	case errors.Is(err, store.ErrInvalidAlert):
		WriteProblem(w, r, http.StatusBadRequest, err.Error())
	default:
		slog.Error("alert store failed", "component", "mockapi", "path", r.URL.Path, "error", err)
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
	}
}

// notFound and methodNotAllowed keep chi's fallbacks in problem+json form.
func notFound(w http.ResponseWriter, r *http.Request) {
	WriteProblem(w, r, http.StatusNotFound, "No endpoint at "+r.URL.Path)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteProblem(w, r, http.StatusMethodNotAllowed, r.Method+" is not supported on "+r.URL.Path)
}
