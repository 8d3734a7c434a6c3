package export

import (
	"cmp"
	"slices"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
)

const calendarProductID = "-//shiftops//schedule//EN"

// StaffCalendar renders the published shifts assigned to staffID as an
// iCalendar feed. Wall-clock times are interpreted in loc.
func StaffCalendar(staffID, calendarName string, shifts []shift.Shift, loc *time.Location, stamp time.Time) string {
	if loc == nil {
		loc = time.UTC
	}

	own := make([]shift.Shift, 0, len(shifts))
	for _, s := range shifts {
		if s.IsPublished && s.HasStaff(staffID) {
			own = append(own, s)
		}
	}
	slices.SortStableFunc(own, func(a, b shift.Shift) int {
		return cmp.Or(a.Date.Compare(b.Date), cmp.Compare(a.StartTime, b.StartTime), cmp.Compare(a.ID, b.ID))
	})

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	if calendarName != "" {
		cal.SetXWRCalName(calendarName)
	}

	for _, s := range own {
		event := cal.AddEvent(s.ID + "@shiftops")
		event.SetDtStampTime(stamp)
		event.SetStartAt(wallTime(s.Date, s.StartTime, loc))
		event.SetEndAt(wallTime(s.Date, s.EndTime, loc))
		event.SetSummary(s.ServiceType + " - " + s.PropertyName)
		event.SetLocation(s.PropertyName)
		event.SetDescription("Status: " + string(s.Status))
		if !s.UpdatedAt.IsZero() {
			event.SetModifiedAt(s.UpdatedAt)
		}
	}
	return cal.Serialize()
}

func wallTime(d timeutil.Date, c timeutil.Clock, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, int(c)/60, int(c)%60, 0, 0, loc)
}
