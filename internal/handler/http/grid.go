package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/grid"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type GridHandler interface {
	Week(w http.ResponseWriter, r *http.Request)
	ExportWeek(w http.ResponseWriter, r *http.Request)
	StaffCalendar(w http.ResponseWriter, r *http.Request)
}

type gridHandlerImpl struct {
	gridService   grid.GridService
	exportService grid.ExportService
	now           func() time.Time
}

func NewGridHandler(gridService grid.GridService, exportService grid.ExportService) GridHandler {
	return &gridHandlerImpl{gridService: gridService, exportService: exportService, now: time.Now}
}

// weekStart reads ?week_start, defaulting to the current week.
func (h *gridHandlerImpl) weekStart(r *http.Request) (timeutil.Date, error) {
	now := h.now()
	raw := r.URL.Query().Get("week_start")
	if raw == "" {
		return timeutil.DateOf(now).StartOfWeek(), nil
	}
	d, err := timeutil.ParseDate(raw, now)
	if err != nil {
		return timeutil.Date{}, validator.ValidationErrors{{Field: "week_start", Message: "week_start must be a valid date"}}
	}
	return d.StartOfWeek(), nil
}

// Week implements GridHandler.
func (h *gridHandlerImpl) Week(w http.ResponseWriter, r *http.Request) {
	start, err := h.weekStart(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	g, err := h.gridService.Week(r.Context(), middleware.ActorFromContext(r.Context()), start)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, grid.NewGridResponse(g))
}

// ExportWeek implements GridHandler.
func (h *gridHandlerImpl) ExportWeek(w http.ResponseWriter, r *http.Request) {
	start, err := h.weekStart(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	buf, filename, err := h.exportService.WeekXLSX(r.Context(), middleware.ActorFromContext(r.Context()), start)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// StaffCalendar implements GridHandler.
func (h *gridHandlerImpl) StaffCalendar(w http.ResponseWriter, r *http.Request) {
	feed, err := h.exportService.StaffCalendar(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(feed))
}
