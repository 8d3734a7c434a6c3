package conflict

import (
	"slices"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
)

// Candidate is an assignment about to be saved.
type Candidate struct {
	StaffIDs       []string
	Date           timeutil.Date
	StartTime      timeutil.Clock
	EndTime        timeutil.Clock
	ExcludeShiftID string

	// SkipDoubleBooking is set for remedial shifts that re-deploy the team of
	// the shift they fix. Approved leave still blocks.
	SkipDoubleBooking bool
}

// Detector finds every collision for a candidate. It holds no state.
type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

func (d *Detector) Check(c Candidate, shifts []shift.Shift, leaves []leave.LeaveRequest) shift.ConflictResult {
	var result shift.ConflictResult

	if !c.SkipDoubleBooking {
		for _, s := range shifts {
			if s.ID == c.ExcludeShiftID || s.Date != c.Date {
				continue
			}
			if !timeutil.Overlaps(c.StartTime, c.EndTime, s.StartTime, s.EndTime) {
				continue
			}
			for _, staffID := range c.StaffIDs {
				if !s.HasStaff(staffID) {
					continue
				}
				result.Conflicts = append(result.Conflicts, shift.Conflict{
					Kind:      shift.ConflictStaffDoubleBooked,
					StaffID:   staffID,
					Date:      c.Date,
					ShiftID:   s.ID,
					StartTime: s.StartTime,
					EndTime:   s.EndTime,
				})
			}
		}
	}

	for _, l := range leaves {
		if !slices.Contains(c.StaffIDs, l.UserID) || !l.Covers(c.Date) {
			continue
		}
		var kind shift.ConflictKind
		switch {
		case l.IsApproved():
			kind = shift.ConflictLeave
		case l.IsPending():
			kind = shift.ConflictPendingLeave
		default:
			continue
		}
		result.Conflicts = append(result.Conflicts, shift.Conflict{
			Kind:          kind,
			StaffID:       l.UserID,
			Date:          c.Date,
			LeaveID:       l.ID,
			LeaveTypeName: l.LeaveTypeName,
		})
	}

	return result
}
