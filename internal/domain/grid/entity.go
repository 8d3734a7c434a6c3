package grid

import (
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
)

const DaysPerWeek = 7

// Grid is a staff by day calendar for one week.
type Grid struct {
	WeekStart timeutil.Date
	Days      []timeutil.Date
	Rows      []Row
}

type Row struct {
	Staff user.Staff
	// IsActiveSomewhere is set when the staff member has any active shift.
	IsActiveSomewhere bool
	Cells             []Cell
}

type Cell struct {
	Date            timeutil.Date
	Shifts          []shift.Shift
	OnApprovedLeave bool
	OnPendingLeave  bool
	LeaveTypeName   string
	CanAddShift     bool
}
