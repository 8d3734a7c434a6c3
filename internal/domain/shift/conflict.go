package shift

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
)

type ConflictKind string

const (
	ConflictStaffDoubleBooked ConflictKind = "staff_double_booked"
	ConflictLeave             ConflictKind = "leave_conflict"
	ConflictPendingLeave      ConflictKind = "pending_leave"
)

// Conflict is a single collision found for a candidate assignment.
type Conflict struct {
	Kind    ConflictKind  `json:"kind"`
	StaffID string        `json:"staff_id"`
	Date    timeutil.Date `json:"date"`

	// set for ConflictStaffDoubleBooked
	ShiftID   string         `json:"shift_id,omitempty"`
	StartTime timeutil.Clock `json:"start_time,omitempty"`
	EndTime   timeutil.Clock `json:"end_time,omitempty"`

	// set for leave conflicts
	LeaveID       string `json:"leave_id,omitempty"`
	LeaveTypeName string `json:"leave_type_name,omitempty"`
}

func (c Conflict) Fatal() bool {
	return c.Kind != ConflictPendingLeave
}

func (c Conflict) String() string {
	switch c.Kind {
	case ConflictStaffDoubleBooked:
		return fmt.Sprintf("staff %s already booked on shift %s (%s-%s) on %s", c.StaffID, c.ShiftID, c.StartTime, c.EndTime, c.Date)
	case ConflictLeave:
		return fmt.Sprintf("staff %s is on approved %s on %s", c.StaffID, c.LeaveTypeName, c.Date)
	default:
		return fmt.Sprintf("staff %s has a pending %s request on %s", c.StaffID, c.LeaveTypeName, c.Date)
	}
}

type ConflictResult struct {
	Conflicts []Conflict
}

// Fatal returns the conflicts that block a save.
func (r ConflictResult) Fatal() []Conflict {
	var out []Conflict
	for _, c := range r.Conflicts {
		if c.Fatal() {
			out = append(out, c)
		}
	}
	return out
}

// Advisories returns the conflicts that are only surfaced to the caller.
func (r ConflictResult) Advisories() []Conflict {
	var out []Conflict
	for _, c := range r.Conflicts {
		if !c.Fatal() {
			out = append(out, c)
		}
	}
	return out
}

func (r ConflictResult) HasFatal() bool {
	for _, c := range r.Conflicts {
		if c.Fatal() {
			return true
		}
	}
	return false
}

// ConflictError refuses a save and carries every blocking conflict found.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	msgs := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		msgs = append(msgs, c.String())
	}
	return ErrScheduleConflict.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ConflictError) Unwrap() error {
	return ErrScheduleConflict
}
