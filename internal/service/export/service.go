package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/grid"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
)

// calendarLookback keeps recent history in a staff feed.
const calendarLookback = 30

type ExportServiceImpl struct {
	grids grid.GridService
	repo  shift.ShiftRepository
	staff user.StaffDirectory
	loc   *time.Location
	now   func() time.Time
	log   *zap.Logger
}

func NewExportService(grids grid.GridService, repo shift.ShiftRepository, staff user.StaffDirectory, loc *time.Location, now func() time.Time, log *zap.Logger) *ExportServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &ExportServiceImpl{grids: grids, repo: repo, staff: staff, loc: loc, now: now, log: log.Named("export")}
}

// WeekXLSX exports the viewer's grid for the week containing weekStart.
func (e *ExportServiceImpl) WeekXLSX(ctx context.Context, viewer shift.Actor, weekStart timeutil.Date) (*bytes.Buffer, string, error) {
	g, err := e.grids.Week(ctx, viewer, weekStart)
	if err != nil {
		return nil, "", err
	}
	buf, filename, err := WeekWorkbook(g)
	if err != nil {
		e.log.Error("failed to render workbook", zap.Stringer("week_start", g.WeekStart), zap.Error(err))
		return nil, "", err
	}
	return buf, filename, nil
}

// StaffCalendar returns the iCalendar feed of staffID's published shifts.
// Staff may only read their own feed.
func (e *ExportServiceImpl) StaffCalendar(ctx context.Context, viewer shift.Actor, staffID string) (string, error) {
	if viewer.UserID != staffID && !viewer.Role.IsScheduler() {
		return "", shift.ErrNotAssigned
	}

	members, err := e.staff.GetByIDs(ctx, []string{staffID})
	if err != nil {
		return "", fmt.Errorf("failed to get staff: %w", err)
	}
	if len(members) == 0 {
		return "", fmt.Errorf("%w: %s", user.ErrStaffNotFound, staffID)
	}

	now := e.now()
	shifts, err := e.repo.List(ctx, shift.Filter{
		From:          timeutil.DateOf(now.In(e.loc)).AddDays(-calendarLookback),
		StaffID:       staffID,
		PublishedOnly: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to list shifts: %w", err)
	}
	return StaffCalendar(staffID, members[0].Name+" shifts", shifts, e.loc, now), nil
}

var _ grid.ExportService = (*ExportServiceImpl)(nil)
