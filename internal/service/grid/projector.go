package grid

import (
	"cmp"
	"slices"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/grid"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
)

// ProjectWeek lays shifts and leave out as one row per staff member and one
// cell per day of the week containing weekStart. Shifts outside the week
// only contribute to IsActiveSomewhere.
func ProjectWeek(staff []user.Staff, leaves []leave.LeaveRequest, shifts []shift.Shift, weekStart timeutil.Date) grid.Grid {
	start := weekStart.StartOfWeek()
	end := start.AddDays(grid.DaysPerWeek - 1)

	g := grid.Grid{
		WeekStart: start,
		Days:      make([]timeutil.Date, 0, grid.DaysPerWeek),
		Rows:      make([]grid.Row, 0, len(staff)),
	}
	for i := range grid.DaysPerWeek {
		g.Days = append(g.Days, start.AddDays(i))
	}

	members := slices.Clone(staff)
	slices.SortStableFunc(members, func(a, b user.Staff) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})

	for _, m := range members {
		row := grid.Row{Staff: m, Cells: make([]grid.Cell, 0, grid.DaysPerWeek)}
		var own []shift.Shift
		for _, s := range shifts {
			if !s.HasStaff(m.ID) {
				continue
			}
			if s.Status == shift.StatusActive {
				row.IsActiveSomewhere = true
			}
			if s.Date.InRange(start, end) {
				own = append(own, s)
			}
		}

		for _, day := range g.Days {
			cell := grid.Cell{Date: day, CanAddShift: true}
			for _, s := range own {
				if s.Date == day {
					cell.Shifts = append(cell.Shifts, s)
				}
			}
			slices.SortStableFunc(cell.Shifts, func(a, b shift.Shift) int {
				return cmp.Or(cmp.Compare(a.StartTime, b.StartTime), cmp.Compare(a.ID, b.ID))
			})
			markLeave(&cell, m.ID, leaves)
			row.Cells = append(row.Cells, cell)
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

// markLeave flags the cell from the staff member's leave. Approved leave
// wins over pending and closes the cell to new shifts.
func markLeave(cell *grid.Cell, staffID string, leaves []leave.LeaveRequest) {
	for _, l := range leaves {
		if l.UserID != staffID || !l.Covers(cell.Date) {
			continue
		}
		switch {
		case l.IsApproved():
			cell.OnApprovedLeave = true
			cell.OnPendingLeave = false
			cell.CanAddShift = false
			cell.LeaveTypeName = l.LeaveTypeName
			return
		case l.IsPending():
			cell.OnPendingLeave = true
			if cell.LeaveTypeName == "" {
				cell.LeaveTypeName = l.LeaveTypeName
			}
		}
	}
}
