package shift

import (
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
)

// LatestCompletedCleaning finds the most recently finished non-inspection
// shift of a property. Shifts without an ActualEndTime rank last; ties go to
// the later calendar slot. excludeID skips the shift under review.
func LatestCompletedCleaning(shifts []Shift, propertyID, excludeID string) (Shift, bool) {
	var (
		best  Shift
		found bool
	)
	for _, s := range shifts {
		if s.PropertyID != propertyID || s.ID == excludeID {
			continue
		}
		if s.Status != StatusCompleted || s.IsInspection() {
			continue
		}
		if !found || completedAfter(s, best) {
			best = s
			found = true
		}
	}
	return best, found
}

func completedAfter(a, b Shift) bool {
	switch {
	case a.ActualEndTime != nil && b.ActualEndTime == nil:
		return true
	case a.ActualEndTime == nil && b.ActualEndTime != nil:
		return false
	case a.ActualEndTime != nil && *a.ActualEndTime != *b.ActualEndTime:
		return *a.ActualEndTime > *b.ActualEndTime
	}
	if c := a.Date.Compare(b.Date); c != 0 {
		return c > 0
	}
	return a.EndTime > b.EndTime
}

// Filter selects shifts for queries. Zero fields match everything.
type Filter struct {
	From          timeutil.Date
	To            timeutil.Date
	StaffID       string
	PropertyID    string
	Status        Status
	PublishedOnly bool
}

func (f Filter) Matches(s Shift) bool {
	if !f.From.IsZero() && s.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && s.Date.After(f.To) {
		return false
	}
	if f.StaffID != "" && !s.HasStaff(f.StaffID) {
		return false
	}
	if f.PropertyID != "" && s.PropertyID != f.PropertyID {
		return false
	}
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if f.PublishedOnly && !s.IsPublished {
		return false
	}
	return true
}
