package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/sse"
)

const keepaliveInterval = 30 * time.Second

type EventHandler interface {
	IssueStreamToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type eventHandlerImpl struct {
	hub        *sse.Hub
	jwtService jwt.Service
}

func NewEventHandler(hub *sse.Hub, jwtService jwt.Service) EventHandler {
	return &eventHandlerImpl{hub: hub, jwtService: jwtService}
}

// IssueStreamToken hands out a short-lived token for the event stream.
func (h *eventHandlerImpl) IssueStreamToken(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	token, expiresIn, err := h.jwtService.GenerateSSEToken(actor.UserID, actor.Role)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, map[string]any{"token": token, "expires_in": expiresIn})
}

// Stream handles the SSE connection. Schedulers receive every shift event;
// staff receive events for published shifts assigned to them.
func (h *eventHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// Get token from query parameter (SSE doesn't support custom headers)
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	claims, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	channels := []string{sse.StaffChannel(claims.UserID)}
	if claims.Role.IsScheduler() {
		channels = append(channels, sse.SchedulerChannel)
	}
	events, cleanup := h.hub.Subscribe(channels...)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"user_id\":%q}\n\n", claims.UserID)
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
