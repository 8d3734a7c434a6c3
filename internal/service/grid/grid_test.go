package grid

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/grid"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/repository/memory"
)

var (
	monday = timeutil.NewDate(2024, time.March, 4)
	alice  = user.Staff{ID: "alice", Name: "Alice", Role: user.RoleCleaner, Status: user.StatusActive}
	bob    = user.Staff{ID: "bob", Name: "Bob", Role: user.RoleCleaner, Status: user.StatusActive}
)

func at(id string, staff []string, d timeutil.Date, startHour int, status shift.Status, published bool) shift.Shift {
	return shift.Shift{
		ID:          id,
		PropertyID:  "P",
		StaffIDs:    staff,
		Date:        d,
		StartTime:   timeutil.Clock(startHour * 60),
		EndTime:     timeutil.Clock((startHour + 2) * 60),
		ServiceType: shift.ServiceTypeStandard,
		Status:      status,
		IsPublished: published,
	}
}

func cell(t *testing.T, g grid.Grid, staffID string, d timeutil.Date) grid.Cell {
	t.Helper()
	for _, row := range g.Rows {
		if row.Staff.ID != staffID {
			continue
		}
		for _, c := range row.Cells {
			if c.Date == d {
				return c
			}
		}
	}
	t.Fatalf("no cell for %s on %s", staffID, d)
	return grid.Cell{}
}

func TestProjectWeek(t *testing.T) {
	wednesday := monday.AddDays(2)
	shifts := []shift.Shift{
		at("late", []string{"alice"}, monday, 14, shift.StatusPending, true),
		at("early", []string{"alice", "bob"}, monday, 8, shift.StatusPending, true),
		at("outside", []string{"bob"}, monday.AddDays(9), 8, shift.StatusActive, true),
	}
	leaves := []leave.LeaveRequest{
		{ID: "L1", UserID: "alice", LeaveTypeName: "Annual", StartDate: wednesday, EndDate: wednesday.AddDays(1), Status: leave.LeaveStatusApproved},
		{ID: "L2", UserID: "bob", LeaveTypeName: "Sick", StartDate: wednesday, EndDate: wednesday, Status: leave.LeaveStatusPending},
		{ID: "L3", UserID: "bob", StartDate: monday, EndDate: monday, Status: leave.LeaveStatusRejected},
	}

	g := ProjectWeek([]user.Staff{bob, alice}, leaves, shifts, wednesday)

	assert.Equal(t, monday, g.WeekStart)
	require.Len(t, g.Days, grid.DaysPerWeek)
	assert.Equal(t, monday.AddDays(6), g.Days[6])
	require.Len(t, g.Rows, 2)
	assert.Equal(t, "alice", g.Rows[0].Staff.ID, "rows sorted by name")

	mon := cell(t, g, "alice", monday)
	require.Len(t, mon.Shifts, 2)
	assert.Equal(t, "early", mon.Shifts[0].ID)
	assert.Equal(t, "late", mon.Shifts[1].ID)
	assert.True(t, mon.CanAddShift)

	wed := cell(t, g, "alice", wednesday)
	assert.True(t, wed.OnApprovedLeave)
	assert.False(t, wed.CanAddShift)
	assert.Equal(t, "Annual", wed.LeaveTypeName)
	assert.True(t, cell(t, g, "alice", wednesday.AddDays(1)).OnApprovedLeave)

	bobWed := cell(t, g, "bob", wednesday)
	assert.True(t, bobWed.OnPendingLeave)
	assert.False(t, bobWed.OnApprovedLeave)
	assert.True(t, bobWed.CanAddShift)

	bobMon := cell(t, g, "bob", monday)
	assert.False(t, bobMon.OnPendingLeave, "rejected leave is ignored")
	assert.Len(t, bobMon.Shifts, 1)

	assert.False(t, g.Rows[0].IsActiveSomewhere)
	assert.True(t, g.Rows[1].IsActiveSomewhere, "active shift outside the week still counts")
}

func TestWeek_HidesDraftsFromStaff(t *testing.T) {
	dir := memory.NewDirectory()
	dir.PutStaff(alice, bob, user.Staff{ID: "erin", Name: "Erin", Role: user.RoleAdmin, Status: user.StatusActive})
	repo := memory.NewShiftRepository()
	require.NoError(t, repo.ReplaceAll(context.Background(), []shift.Shift{
		at("pub", []string{"alice"}, monday, 8, shift.StatusPending, true),
		at("draft", []string{"alice"}, monday, 12, shift.StatusPending, false),
	}))
	svc := NewGridService(repo, dir, dir, []string{string(user.RoleCleaner)}, zap.NewNop())

	g, err := svc.Week(context.Background(), shift.Actor{UserID: "alice", Role: user.RoleCleaner}, monday.AddDays(3))
	require.NoError(t, err)
	require.Len(t, g.Rows, 2, "only assignable staff get rows")
	c := cell(t, g, "alice", monday)
	require.Len(t, c.Shifts, 1)
	assert.Equal(t, "pub", c.Shifts[0].ID)

	g, err = svc.Week(context.Background(), shift.Actor{UserID: "sched", Role: user.RoleScheduler}, monday)
	require.NoError(t, err)
	assert.Len(t, cell(t, g, "alice", monday).Shifts, 2)
}
