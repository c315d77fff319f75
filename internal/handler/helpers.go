package handler

import (
	"errors"
	"net/http"

	"chatterhub/internal/domain"
	"chatterhub/internal/domain/models"
	"chatterhub/internal/httputil"
)

// handleError converts domain errors to HTTP responses. Typed errors carry
// their status; wrapped sentinels are matched after them.
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		httputil.RespondErrorWithExtras(w, conflictErr.StatusCode(), conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
		return
	}

	var httpErr domain.HTTPError
	switch {
	case errors.As(err, &httpErr):
		httputil.RespondError(w, httpErr.StatusCode(), err.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondFound writes v, or a 404 when the service reported the record absent
func respondFound[T any](w http.ResponseWriter, v *T, what string) {
	if v == nil {
		httputil.RespondError(w, http.StatusNotFound, what+" not found")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, v)
}

// pathID returns the {id} path value, writing a 400 when it is missing
func pathID(w http.ResponseWriter, r *http.Request, what string) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, what+" ID is required")
		return "", false
	}
	return id, true
}

// parseBody decodes the JSON body, writing a 400 on failure
func parseBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := httputil.ParseJSON(w, r, dest); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// optional maps a decoded PATCH field onto the domain tri-state
func optional(o httputil.OptionalString) models.OptionalString {
	return models.OptionalString{Present: o.Present, Value: o.Value}
}

// HealthCheck reports liveness
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
