package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/handler/http/response"
)

type AuditHandler interface {
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	ReportAndFix(w http.ResponseWriter, r *http.Request)
	Escalate(w http.ResponseWriter, r *http.Request)
}

type auditHandlerImpl struct {
	auditService audit.AuditService
}

func NewAuditHandler(auditService audit.AuditService) AuditHandler {
	return &auditHandlerImpl{auditService: auditService}
}

// decodeOptional decodes a JSON body that may be empty.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Approve implements AuditHandler.
func (h *auditHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	var req audit.AuditRequest
	if err := decodeOptional(r, &req); err != nil {
		response.HandleError(w, err)
		return
	}

	out, err := h.auditService.Approve(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Work authorized", audit.NewOutcomeResponse(out))
}

// Reject implements AuditHandler.
func (h *auditHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var req audit.AuditRequest
	if err := decodeOptional(r, &req); err != nil {
		response.HandleError(w, err)
		return
	}

	out, err := h.auditService.Reject(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Work reported", audit.NewOutcomeResponse(out))
}

// ReportAndFix implements AuditHandler.
func (h *auditHandlerImpl) ReportAndFix(w http.ResponseWriter, r *http.Request) {
	var req audit.ReportAndFixRequest
	if err := decodeOptional(r, &req); err != nil {
		response.HandleError(w, err)
		return
	}

	out, err := h.auditService.ReportAndFix(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Fix scheduled", audit.NewOutcomeResponse(out))
}

// Escalate implements AuditHandler.
func (h *auditHandlerImpl) Escalate(w http.ResponseWriter, r *http.Request) {
	out, err := h.auditService.EscalateToSupervisor(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Inspection requested", audit.NewOutcomeResponse(out))
}
