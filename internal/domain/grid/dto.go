package grid

import (
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
)

type CellResponse struct {
	Date              timeutil.Date         `json:"date"`
	DateLabel         string                `json:"date_label"`
	Shifts            []shift.ShiftResponse `json:"shifts"`
	OnApprovedLeave   bool                  `json:"on_approved_leave"`
	OnPendingLeave    bool                  `json:"on_pending_leave"`
	LeaveTypeName     string                `json:"leave_type_name,omitempty"`
	IsActiveSomewhere bool                  `json:"is_active_somewhere"`
	CanAddShift       bool                  `json:"can_add_shift"`
}

type RowResponse struct {
	StaffID   string         `json:"staff_id"`
	StaffName string         `json:"staff_name"`
	Role      string         `json:"role"`
	Cells     []CellResponse `json:"cells"`
}

type GridResponse struct {
	WeekStart timeutil.Date   `json:"week_start"`
	Days      []timeutil.Date `json:"days"`
	Rows      []RowResponse   `json:"rows"`
}

func NewGridResponse(g Grid) GridResponse {
	resp := GridResponse{WeekStart: g.WeekStart, Days: g.Days, Rows: make([]RowResponse, 0, len(g.Rows))}
	for _, row := range g.Rows {
		r := RowResponse{
			StaffID:   row.Staff.ID,
			StaffName: row.Staff.Name,
			Role:      string(row.Staff.Role),
			Cells:     make([]CellResponse, 0, len(row.Cells)),
		}
		for _, c := range row.Cells {
			r.Cells = append(r.Cells, CellResponse{
				Date:              c.Date,
				DateLabel:         c.Date.ShortLabel(),
				Shifts:            shift.NewShiftResponses(c.Shifts),
				OnApprovedLeave:   c.OnApprovedLeave,
				OnPendingLeave:    c.OnPendingLeave,
				LeaveTypeName:     c.LeaveTypeName,
				IsActiveSomewhere: row.IsActiveSomewhere,
				CanAddShift:       c.CanAddShift,
			})
		}
		resp.Rows = append(resp.Rows, r)
	}
	return resp
}
