package publish

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/repository/memory"
)

var (
	monday    = timeutil.NewDate(2024, time.March, 4)
	scheduler = shift.Actor{UserID: "sched-1", Role: user.RoleScheduler}
)

type countingSink struct {
	mu     sync.Mutex
	events []shift.Event
}

func (c *countingSink) Notify(_ context.Context, e shift.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func draft(id string, d timeutil.Date, published bool) shift.Shift {
	return shift.Shift{
		ID:          id,
		PropertyID:  "P",
		StaffIDs:    []string{"alice"},
		Date:        d,
		StartTime:   timeutil.Clock(9 * 60),
		EndTime:     timeutil.Clock(11 * 60),
		ServiceType: shift.ServiceTypeStandard,
		Status:      shift.StatusPending,
		IsPublished: published,
	}
}

func newService(t *testing.T, shifts ...shift.Shift) (*PublishServiceImpl, shift.ShiftRepository, *countingSink) {
	t.Helper()
	repo := memory.NewShiftRepository()
	require.NoError(t, repo.ReplaceAll(context.Background(), shifts))
	sink := &countingSink{}
	return NewPublishService(repo, sink, nil, zap.NewNop()), repo, sink
}

func TestPublishDay(t *testing.T) {
	svc, repo, sink := newService(t,
		draft("a", monday, false),
		draft("b", monday.AddDays(1), false),
		draft("c", monday.AddDays(1), true),
		draft("d", monday.AddDays(3), false),
	)
	ctx := context.Background()

	ids, err := svc.PublishDay(ctx, scheduler, monday, monday.AddDays(1))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
	assert.Len(t, sink.events, 2)

	d, err := repo.GetByID(ctx, "d")
	require.NoError(t, err)
	assert.False(t, d.IsPublished, "outside the range")

	pending, err := svc.HasUnpublishedShifts(ctx, monday, monday.AddDays(1))
	require.NoError(t, err)
	assert.False(t, pending)
	pending, err = svc.HasUnpublishedShifts(ctx, monday, monday.AddDays(6))
	require.NoError(t, err)
	assert.True(t, pending)
}

func TestPublishDay_IsIdempotent(t *testing.T) {
	svc, repo, sink := newService(t, draft("a", monday, false), draft("b", monday, true))
	ctx := context.Background()

	_, err := svc.PublishDay(ctx, scheduler, monday, monday)
	require.NoError(t, err)
	before, _ := repo.All(ctx)

	ids, err := svc.PublishDay(ctx, scheduler, monday, monday)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Len(t, sink.events, 1)

	after, _ := repo.All(ctx)
	assert.Equal(t, before, after)
}

func TestPublishWeek(t *testing.T) {
	svc, _, _ := newService(t,
		draft("mon", monday, false),
		draft("sun", monday.AddDays(6), false),
		draft("next", monday.AddDays(7), false),
	)

	ids, err := svc.PublishWeek(context.Background(), scheduler, monday)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"mon", "sun"}, ids)
}

func TestPublishDay_RequiresScheduler(t *testing.T) {
	svc, repo, _ := newService(t, draft("a", monday, false))

	_, err := svc.PublishDay(context.Background(), shift.Actor{UserID: "alice", Role: user.RoleCleaner}, monday, monday)
	assert.ErrorIs(t, err, user.ErrSchedulerRoleRequired)

	a, _ := repo.GetByID(context.Background(), "a")
	assert.False(t, a.IsPublished)
}
