package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/property"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var conflictErr *shift.ConflictError
	if errors.As(err, &conflictErr) {
		Conflict(w, conflictErr.Error(), conflictErr.Conflicts)
		return
	}

	// Malformed request bodies
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		BadRequest(w, "Invalid request body", nil)
		return
	}

	switch {
	// Validation
	case errors.Is(err, shift.ErrInvalidTransition):
		InvalidTransition(w, err.Error())
	case errors.Is(err, shift.ErrInvalidServiceType),
		errors.Is(err, shift.ErrRecurrenceTooLong),
		errors.Is(err, shift.ErrRecurrenceNoMatches):
		ValidationError(w, map[string]string{"request": err.Error()})

	// Not found
	case errors.Is(err, shift.ErrShiftNotFound):
		NotFound(w, "Shift not found")
	case errors.Is(err, property.ErrPropertyNotFound):
		NotFound(w, "Property not found")
	case errors.Is(err, user.ErrStaffNotFound):
		NotFound(w, "Staff member not found")

	// Preconditions
	case errors.Is(err, shift.ErrReasonRequired),
		errors.Is(err, shift.ErrNotAwaitingAudit),
		errors.Is(err, shift.ErrUnassignNotConfirmed),
		errors.Is(err, shift.ErrCorrectionRequiresRejection),
		errors.Is(err, shift.ErrFixInProgress),
		errors.Is(err, shift.ErrStaleRead):
		PreconditionFailed(w, err.Error())

	// Authorization
	case errors.Is(err, user.ErrSchedulerRoleRequired):
		Forbidden(w, "Scheduler role required")
	case errors.Is(err, user.ErrPermissionDenied),
		errors.Is(err, shift.ErrNotAssigned):
		Forbidden(w, err.Error())

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
