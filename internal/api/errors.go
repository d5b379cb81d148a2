package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/roadmap-api/internal/api/shared"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/service"
)

// MapErrorToStatusCode maps service and domain errors to HTTP status codes.
// This is the only place where errors become statuses.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrEmailInUse):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized

	// Authenticated but not privileged is reported as 401 as well.
	case errors.Is(err, service.ErrForbidden):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Unmapped
// errors get a generic message so internal details never leak.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrEmailInUse):
		return "Email already in use"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, service.ErrUnauthenticated):
		return "Could not validate credentials"
	case errors.Is(err, service.ErrForbidden):
		return "Insufficient permissions"
	case errors.Is(err, service.ErrNotFound):
		return "Not found"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, domain.ErrValidation):
		// Domain validation messages are written for clients.
		return validationMessage(err)
	default:
		return "An unexpected error occurred"
	}
}

// validationMessage strips operation context from a domain validation error
// while keeping importer row prefixes such as "row 3: deadline: ".
func validationMessage(err error) string {
	msg := err.Error()
	i := strings.Index(msg, domain.ErrValidation.Error())
	if i <= 0 || strings.HasPrefix(msg, "row ") {
		return msg
	}
	return msg[i:]
}

// SanitizeValidationError turns validator output into a short message naming
// the failing field by its JSON name.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), validationTagMessage(fe.Tag()))
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "must be a UUID"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the mapped status and safe message for err and logs
// the full error.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, opts ...shared.ResponseOption) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err, opts...)
}

// HandleValidationError writes a 400 for a request that failed struct validation.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
}
