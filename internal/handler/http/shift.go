package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/handler/http/response"
)

type ShiftHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	CreateRecurring(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)

	// Execution side
	Start(w http.ResponseWriter, r *http.Request)
	Complete(w http.ResponseWriter, r *http.Request)

	// Service types
	ListServiceTypes(w http.ResponseWriter, r *http.Request)
	RegisterServiceType(w http.ResponseWriter, r *http.Request)
}

type shiftHandlerImpl struct {
	shiftService shift.ShiftService
	now          func() time.Time
}

func NewShiftHandler(shiftService shift.ShiftService) ShiftHandler {
	return &shiftHandlerImpl{shiftService: shiftService, now: time.Now}
}

func advisoriesOrEmpty(c []shift.Conflict) []shift.Conflict {
	if c == nil {
		return []shift.Conflict{}
	}
	return c
}

// List implements ShiftHandler.
func (h *shiftHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := shift.ListShiftRequest{
		From:       q.Get("from"),
		To:         q.Get("to"),
		StaffID:    q.Get("staff_id"),
		PropertyID: q.Get("property_id"),
		Status:     q.Get("status"),
	}
	filter, err := req.ToFilter(h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	shifts, err := h.shiftService.List(r.Context(), middleware.ActorFromContext(r.Context()), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, shift.ListShiftResponse{
		Shifts: shift.NewShiftResponses(shifts),
		Total:  len(shifts),
	})
}

// Create implements ShiftHandler.
func (h *shiftHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req shift.CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.shiftService.Create(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Shift created successfully", shift.SaveShiftResponse{
		Shift:      shift.NewShiftResponse(result.Shift),
		Advisories: advisoriesOrEmpty(result.Advisories),
	})
}

// CreateRecurring implements ShiftHandler.
func (h *shiftHandlerImpl) CreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req shift.CreateRecurringShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.shiftService.CreateRecurring(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Recurring shifts created successfully", shift.RecurringShiftResponse{
		Shifts:     shift.NewShiftResponses(result.Shifts),
		Advisories: advisoriesOrEmpty(result.Advisories),
	})
}

// Get implements ShiftHandler.
func (h *shiftHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.shiftService.Get(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, shift.NewShiftResponse(s))
}

// Update implements ShiftHandler.
func (h *shiftHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req shift.UpdateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.shiftService.Update(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift updated successfully", shift.SaveShiftResponse{
		Shift:      shift.NewShiftResponse(result.Shift),
		Advisories: advisoriesOrEmpty(result.Advisories),
	})
}

// Delete implements ShiftHandler.
func (h *shiftHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.shiftService.Delete(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Shift deleted successfully", nil)
}

func (h *shiftHandlerImpl) decodeTransition(w http.ResponseWriter, r *http.Request) (shift.TransitionRequest, bool) {
	var req shift.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return req, false
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return req, false
	}
	return req, true
}

// Start implements ShiftHandler.
func (h *shiftHandlerImpl) Start(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeTransition(w, r)
	if !ok {
		return
	}

	s, err := h.shiftService.MarkActive(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req.Timestamp)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Work started", shift.NewShiftResponse(s))
}

// Complete implements ShiftHandler.
func (h *shiftHandlerImpl) Complete(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeTransition(w, r)
	if !ok {
		return
	}

	s, err := h.shiftService.MarkCompleted(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req.Timestamp)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Work completed", shift.NewShiftResponse(s))
}

// ListServiceTypes implements ShiftHandler.
func (h *shiftHandlerImpl) ListServiceTypes(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.shiftService.ServiceTypes())
}

// RegisterServiceType implements ShiftHandler.
func (h *shiftHandlerImpl) RegisterServiceType(w http.ResponseWriter, r *http.Request) {
	var req shift.RegisterServiceTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}

	name, err := h.shiftService.RegisterServiceType(r.Context(), middleware.ActorFromContext(r.Context()), req.Name)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Service type registered", map[string]string{"name": name})
}
