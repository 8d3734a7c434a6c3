package conflict

import (
	"sort"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
)

// Finding is a fatal conflict found on an already stored shift.
type Finding struct {
	ShiftID  string
	Conflict shift.Conflict
}

// Scan re-checks every shift that has not started yet against the rest of
// the store. Each double-booked pair is reported once. A remedial shift is
// never reported against the shift it fixes or inspects.
func (d *Detector) Scan(shifts []shift.Shift, leaves []leave.LeaveRequest) []Finding {
	sorted := make([]shift.Shift, len(shifts))
	copy(sorted, shifts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var findings []Finding
	for i, s := range sorted {
		if s.Status != shift.StatusPending {
			continue
		}
		var later []shift.Shift
		for _, other := range sorted[i+1:] {
			if other.OriginShiftID == s.ID || s.OriginShiftID == other.ID {
				continue
			}
			later = append(later, other)
		}
		res := d.Check(Candidate{
			StaffIDs:  s.StaffIDs,
			Date:      s.Date,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
		}, later, leaves)
		for _, c := range res.Fatal() {
			findings = append(findings, Finding{ShiftID: s.ID, Conflict: c})
		}
	}
	return findings
}
