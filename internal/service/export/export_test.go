package export

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/repository/memory"
	gridsvc "github.com/cmlabs-hris/shiftops-backend-go/internal/service/grid"
)

var (
	monday = timeutil.NewDate(2024, time.March, 4)
	alice  = user.Staff{ID: "alice", Name: "Alice", Role: user.RoleCleaner, Status: user.StatusActive}
)

func sample(id string, d timeutil.Date, serviceType string, published bool) shift.Shift {
	return shift.Shift{
		ID:           id,
		PropertyID:   "P1",
		PropertyName: "Harbour View 3B",
		StaffIDs:     []string{"alice"},
		Date:         d,
		StartTime:    timeutil.Clock(10 * 60),
		EndTime:      timeutil.Clock(13 * 60),
		ServiceType:  serviceType,
		Status:       shift.StatusPending,
		IsPublished:  published,
	}
}

func TestWeekWorkbook(t *testing.T) {
	g := gridsvc.ProjectWeek(
		[]user.Staff{alice},
		[]leave.LeaveRequest{{UserID: "alice", LeaveTypeName: "Annual", StartDate: monday.AddDays(2), EndDate: monday.AddDays(2), Status: leave.LeaveStatusApproved}},
		[]shift.Shift{
			sample("s1", monday, shift.ServiceTypeStandard, true),
			sample("s2", monday.AddDays(1), shift.ServiceTypeFix, false),
		},
		monday,
	)

	buf, filename, err := WeekWorkbook(g)
	require.NoError(t, err)
	assert.Equal(t, "schedule_2024-03-04.xlsx", filename)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{weekSheet}, f.GetSheetList())

	header, err := f.GetCellValue(weekSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Mon 04 MAR", header)

	name, _ := f.GetCellValue(weekSheet, "A2")
	assert.Equal(t, "Alice", name)

	mon, _ := f.GetCellValue(weekSheet, "B2")
	assert.Equal(t, "10:00-13:00 Harbour View 3B", mon)

	tue, _ := f.GetCellValue(weekSheet, "C2")
	assert.Equal(t, "10:00-13:00 Harbour View 3B [TO FIX] (draft)", tue)

	wed, _ := f.GetCellValue(weekSheet, "D2")
	assert.Equal(t, "On leave (Annual)", wed)
}

func TestStaffCalendar(t *testing.T) {
	other := sample("s3", monday, shift.ServiceTypeStandard, true)
	other.StaffIDs = []string{"bob"}
	shifts := []shift.Shift{
		sample("s2", monday.AddDays(1), shift.ServiceTypeFix, true),
		sample("s1", monday, shift.ServiceTypeStandard, true),
		sample("draft", monday, shift.ServiceTypeStandard, false),
		other,
	}

	out := StaffCalendar("alice", "Alice shifts", shifts, time.UTC, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "X-WR-CALNAME:Alice shifts")
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "UID:s1@shiftops")
	assert.Contains(t, out, "DTSTART:20240304T100000Z")
	assert.Contains(t, out, "DTEND:20240304T130000Z")
	assert.NotContains(t, out, "draft@shiftops")
	assert.NotContains(t, out, "s3@shiftops")
	assert.Less(t, strings.Index(out, "UID:s1@"), strings.Index(out, "UID:s2@"))
}

func TestExportService_StaffCalendarAccess(t *testing.T) {
	dir := memory.NewDirectory()
	dir.PutStaff(alice)
	repo := memory.NewShiftRepository()
	require.NoError(t, repo.ReplaceAll(context.Background(), []shift.Shift{sample("s1", monday, shift.ServiceTypeStandard, true)}))
	grids := gridsvc.NewGridService(repo, dir, dir, []string{string(user.RoleCleaner)}, zap.NewNop())
	now := func() time.Time { return time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC) }
	svc := NewExportService(grids, repo, dir, time.UTC, now, zap.NewNop())
	ctx := context.Background()

	out, err := svc.StaffCalendar(ctx, shift.Actor{UserID: "alice", Role: user.RoleCleaner}, "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "UID:s1@shiftops")

	_, err = svc.StaffCalendar(ctx, shift.Actor{UserID: "bob", Role: user.RoleCleaner}, "alice")
	assert.ErrorIs(t, err, shift.ErrNotAssigned)

	_, err = svc.StaffCalendar(ctx, shift.Actor{UserID: "sched", Role: user.RoleScheduler}, "ghost")
	assert.ErrorIs(t, err, user.ErrStaffNotFound)

	buf, _, err := svc.WeekXLSX(ctx, shift.Actor{UserID: "sched", Role: user.RoleScheduler}, monday)
	require.NoError(t, err)
	assert.Positive(t, buf.Len())
}
