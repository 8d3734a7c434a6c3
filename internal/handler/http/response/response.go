package response

import (
	"encoding/json"
	"net/http"
)

// Response is the envelope every JSON endpoint returns.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	// Conflicts lists every scheduling conflict found, not just the first.
	Conflicts any `json:"conflicts,omitempty"`
}

const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "SCHEDULE_CONFLICT"
	CodePreconditionFailed = "PRECONDITION_FAILED"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
)

// write encodes before touching the header so an unencodable payload
// still produces a clean 500.
func write(w http.ResponseWriter, status int, body Response) {
	buf, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		buf, _ = json.Marshal(Response{Error: &ErrorDetail{Code: CodeInternal, Message: "Failed to encode response"}})
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(append(buf, '\n'))
}

func ok(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Response{Success: true, Message: message, Data: data})
}

func fail(w http.ResponseWriter, status int, detail ErrorDetail) {
	write(w, status, Response{Error: &detail})
}

func Success(w http.ResponseWriter, data any) {
	ok(w, http.StatusOK, "", data)
}

func SuccessWithMessage(w http.ResponseWriter, message string, data any) {
	ok(w, http.StatusOK, message, data)
}

func Created(w http.ResponseWriter, message string, data any) {
	ok(w, http.StatusCreated, message, data)
}

func BadRequest(w http.ResponseWriter, message string, details map[string]string) {
	fail(w, http.StatusBadRequest, ErrorDetail{Code: CodeBadRequest, Message: message, Details: details})
}

// ValidationError reports field errors keyed by JSON field name.
func ValidationError(w http.ResponseWriter, details map[string]string) {
	fail(w, http.StatusUnprocessableEntity, ErrorDetail{Code: CodeValidation, Message: "Validation failed", Details: details})
}

func InvalidTransition(w http.ResponseWriter, message string) {
	fail(w, http.StatusUnprocessableEntity, ErrorDetail{Code: CodeInvalidTransition, Message: message})
}

func Unauthorized(w http.ResponseWriter, message string) {
	fail(w, http.StatusUnauthorized, ErrorDetail{Code: CodeUnauthorized, Message: message})
}

func Forbidden(w http.ResponseWriter, message string) {
	fail(w, http.StatusForbidden, ErrorDetail{Code: CodeForbidden, Message: message})
}

func NotFound(w http.ResponseWriter, message string) {
	fail(w, http.StatusNotFound, ErrorDetail{Code: CodeNotFound, Message: message})
}

func PreconditionFailed(w http.ResponseWriter, message string) {
	fail(w, http.StatusPreconditionFailed, ErrorDetail{Code: CodePreconditionFailed, Message: message})
}

func InternalServerError(w http.ResponseWriter, message string) {
	fail(w, http.StatusInternalServerError, ErrorDetail{Code: CodeInternal, Message: message})
}

// Conflict answers 409 with the full conflict list.
func Conflict(w http.ResponseWriter, message string, conflicts any) {
	fail(w, http.StatusConflict, ErrorDetail{Code: CodeConflict, Message: message, Conflicts: conflicts})
}
