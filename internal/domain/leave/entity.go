package leave

import (
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
)

type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

// LeaveRequest is read-only here; the leave module owns its lifecycle.
type LeaveRequest struct {
	ID            string
	UserID        string
	LeaveTypeName string
	StartDate     timeutil.Date
	EndDate       timeutil.Date // inclusive
	Status        LeaveStatus
}

// Covers reports whether the request spans the given day.
func (l LeaveRequest) Covers(d timeutil.Date) bool {
	return d.InRange(l.StartDate, l.EndDate)
}

func (l LeaveRequest) IsApproved() bool { return l.Status == LeaveStatusApproved }
func (l LeaveRequest) IsPending() bool  { return l.Status == LeaveStatusPending }
