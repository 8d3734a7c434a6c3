package shift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
)

func millis(v int64) *int64 { return &v }

func TestLatestCompletedCleaning(t *testing.T) {
	d := timeutil.NewDate(2024, time.March, 5)
	shifts := []Shift{
		{ID: "old", PropertyID: "P", ServiceType: ServiceTypeStandard, Status: StatusCompleted, Date: d, ActualEndTime: millis(100)},
		{ID: "new", PropertyID: "P", ServiceType: ServiceTypeStandard, Status: StatusCompleted, Date: d, ActualEndTime: millis(300)},
		{ID: "other-property", PropertyID: "Q", ServiceType: ServiceTypeStandard, Status: StatusCompleted, Date: d, ActualEndTime: millis(900)},
		{ID: "inspection", PropertyID: "P", ServiceType: ServiceTypeInspection, Status: StatusCompleted, Date: d, ActualEndTime: millis(800)},
		{ID: "running", PropertyID: "P", ServiceType: ServiceTypeStandard, Status: StatusActive, Date: d},
	}

	got, ok := LatestCompletedCleaning(shifts, "P", "")
	assert.True(t, ok)
	assert.Equal(t, "new", got.ID)

	got, ok = LatestCompletedCleaning(shifts, "P", "new")
	assert.True(t, ok)
	assert.Equal(t, "old", got.ID)

	_, ok = LatestCompletedCleaning(shifts, "Z", "")
	assert.False(t, ok)
}

func TestLatestCompletedCleaning_MissingEndTimeRanksLast(t *testing.T) {
	shifts := []Shift{
		{ID: "no-end", PropertyID: "P", Status: StatusCompleted, Date: timeutil.NewDate(2024, time.March, 9)},
		{ID: "with-end", PropertyID: "P", Status: StatusCompleted, Date: timeutil.NewDate(2024, time.March, 1), ActualEndTime: millis(1)},
	}
	got, ok := LatestCompletedCleaning(shifts, "P", "")
	assert.True(t, ok)
	assert.Equal(t, "with-end", got.ID)
}

func TestFilter_Matches(t *testing.T) {
	s := Shift{
		PropertyID:  "P",
		StaffIDs:    []string{"alice"},
		Date:        timeutil.NewDate(2024, time.March, 5),
		Status:      StatusPending,
		IsPublished: false,
	}

	assert.True(t, Filter{}.Matches(s))
	assert.True(t, Filter{From: s.Date, To: s.Date}.Matches(s))
	assert.False(t, Filter{From: s.Date.AddDays(1)}.Matches(s))
	assert.False(t, Filter{To: s.Date.AddDays(-1)}.Matches(s))
	assert.True(t, Filter{StaffID: "alice"}.Matches(s))
	assert.False(t, Filter{StaffID: "bob"}.Matches(s))
	assert.False(t, Filter{PropertyID: "Q"}.Matches(s))
	assert.False(t, Filter{Status: StatusActive}.Matches(s))
	assert.False(t, Filter{PublishedOnly: true}.Matches(s))
}
