package grid

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/grid"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
)

type GridServiceImpl struct {
	repo            shift.ShiftRepository
	staff           user.StaffDirectory
	leaves          leave.LeaveRequestReader
	assignableRoles []string
	log             *zap.Logger
}

func NewGridService(repo shift.ShiftRepository, staff user.StaffDirectory, leaves leave.LeaveRequestReader, assignableRoles []string, log *zap.Logger) *GridServiceImpl {
	return &GridServiceImpl{
		repo:            repo,
		staff:           staff,
		leaves:          leaves,
		assignableRoles: assignableRoles,
		log:             log.Named("grid"),
	}
}

// Week implements grid.GridService. Viewers without scheduling rights only
// see published shifts.
func (g *GridServiceImpl) Week(ctx context.Context, viewer shift.Actor, weekStart timeutil.Date) (grid.Grid, error) {
	start := weekStart.StartOfWeek()
	end := start.AddDays(grid.DaysPerWeek - 1)
	publishedOnly := !viewer.Role.IsScheduler()

	members, err := g.staff.ListAssignable(ctx, g.assignableRoles)
	if err != nil {
		return grid.Grid{}, fmt.Errorf("failed to list staff: %w", err)
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}

	var leaves []leave.LeaveRequest
	if len(ids) > 0 {
		leaves, err = g.leaves.ListByUsersAndRange(ctx, ids, start, end)
		if err != nil {
			return grid.Grid{}, fmt.Errorf("failed to list leave requests: %w", err)
		}
	}

	week, err := g.repo.List(ctx, shift.Filter{From: start, To: end, PublishedOnly: publishedOnly})
	if err != nil {
		return grid.Grid{}, fmt.Errorf("failed to list shifts: %w", err)
	}
	active, err := g.repo.List(ctx, shift.Filter{Status: shift.StatusActive, PublishedOnly: publishedOnly})
	if err != nil {
		return grid.Grid{}, fmt.Errorf("failed to list active shifts: %w", err)
	}

	seen := make(map[string]struct{}, len(week))
	for _, s := range week {
		seen[s.ID] = struct{}{}
	}
	for _, s := range active {
		if _, ok := seen[s.ID]; !ok {
			week = append(week, s)
		}
	}

	g.log.Debug("projecting week",
		zap.Stringer("week_start", start),
		zap.Int("staff", len(members)),
		zap.Int("shifts", len(week)),
		zap.Bool("published_only", publishedOnly))
	return ProjectWeek(members, leaves, week, start), nil
}

var _ grid.GridService = (*GridServiceImpl)(nil)
