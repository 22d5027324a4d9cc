package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hyperengineering/finquest/internal/banking"
	"github.com/hyperengineering/finquest/internal/tracker"
	"github.com/hyperengineering/finquest/internal/validation"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

type problemType struct {
	typeURI string
	title   string
}

// problemTypes maps HTTP status codes to RFC 7807 type URIs and titles.
var problemTypes = map[int]problemType{
	http.StatusBadRequest: {
		typeURI: "https://finquest.dev/errors/bad-request",
		title:   "Bad Request",
	},
	http.StatusUnauthorized: {
		typeURI: "https://finquest.dev/errors/unauthorized",
		title:   "Unauthorized",
	},
	http.StatusNotFound: {
		typeURI: "https://finquest.dev/errors/not-found",
		title:   "Not Found",
	},
	http.StatusInternalServerError: {
		typeURI: "https://finquest.dev/errors/internal-error",
		title:   "Internal Server Error",
	},
}

var validationProblem = problemType{
	typeURI: "https://finquest.dev/errors/validation-error",
	title:   "Validation Error",
}

// WriteProblem writes an RFC 7807 Problem Details response.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	pt, ok := problemTypes[status]
	if !ok {
		pt = problemType{
			typeURI: "https://finquest.dev/errors/unknown",
			title:   http.StatusText(status),
		}
	}

	p := Problem{
		Type:     pt.typeURI,
		Title:    pt.title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("failed to encode problem response", "error", err)
	}
}

// ProblemWithErrors extends Problem with validation error details.
type ProblemWithErrors struct {
	Problem
	Errors []validation.ValidationError `json:"errors,omitempty"`
}

// WriteProblemWithErrors writes a 400 validation problem with field errors.
func WriteProblemWithErrors(w http.ResponseWriter, r *http.Request, detail string, errs []validation.ValidationError) {
	p := ProblemWithErrors{
		Problem: Problem{
			Type:     validationProblem.typeURI,
			Title:    validationProblem.title,
			Status:   http.StatusBadRequest,
			Detail:   detail,
			Instance: r.URL.Path,
		},
		Errors: errs,
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("failed to encode problem response", "error", err)
	}
}

// MapTrackerError converts domain errors to Problem Details responses.
func MapTrackerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tracker.ErrGoalNotFound):
		WriteProblem(w, r, http.StatusNotFound, "Goal not found")
	case errors.Is(err, tracker.ErrStreakNotFound):
		WriteProblem(w, r, http.StatusNotFound, "Streak not found")
	case errors.Is(err, tracker.ErrInvalidGoal):
		WriteProblem(w, r, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, tracker.ErrDuplicateStreak):
		WriteProblem(w, r, http.StatusBadRequest, "Duplicate streak")
	case errors.Is(err, banking.ErrUnknownCustomer):
		WriteProblem(w, r, http.StatusUnauthorized, "Unknown customer")
	default:
		// Never expose internal error details to client
		slog.Error("request failed",
			"path", r.URL.Path,
			"request_id", GetRequestID(r.Context()),
			"error", err,
		)
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
	}
}
