package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/publish"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/handler/http/response"
)

type PublishHandler interface {
	Publish(w http.ResponseWriter, r *http.Request)
	Pending(w http.ResponseWriter, r *http.Request)
}

type publishHandlerImpl struct {
	publishService publish.PublishService
	now            func() time.Time
}

func NewPublishHandler(publishService publish.PublishService) PublishHandler {
	return &publishHandlerImpl{publishService: publishService, now: time.Now}
}

// Publish implements PublishHandler.
func (h *publishHandlerImpl) Publish(w http.ResponseWriter, r *http.Request) {
	var req publish.RangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}
	from, to, err := req.Range(h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	ids, err := h.publishService.PublishDay(r.Context(), middleware.ActorFromContext(r.Context()), from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Shifts published", publish.PublishResponse{
		From:      from,
		To:        to,
		Published: ids,
		Count:     len(ids),
	})
}

// Pending implements PublishHandler.
func (h *publishHandlerImpl) Pending(w http.ResponseWriter, r *http.Request) {
	req := publish.RangeRequest{From: r.URL.Query().Get("from"), To: r.URL.Query().Get("to")}
	from, to, err := req.Range(h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	pending, err := h.publishService.HasUnpublishedShifts(r.Context(), from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, publish.PendingResponse{From: from, To: to, HasUnpublished: pending})
}
