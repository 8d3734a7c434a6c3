package publish

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/publish"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
)

type PublishServiceImpl struct {
	repo shift.ShiftRepository
	sink shift.EventSink
	now  func() time.Time
	log  *zap.Logger
}

func NewPublishService(repo shift.ShiftRepository, sink shift.EventSink, now func() time.Time, log *zap.Logger) *PublishServiceImpl {
	if sink == nil {
		sink = shift.NopSink{}
	}
	if now == nil {
		now = time.Now
	}
	return &PublishServiceImpl{repo: repo, sink: sink, now: now, log: log.Named("publish")}
}

// PublishDay implements publish.PublishService. Already published shifts are
// left alone, so repeating the call publishes nothing new.
func (p *PublishServiceImpl) PublishDay(ctx context.Context, actor shift.Actor, from, to timeutil.Date) ([]string, error) {
	if !actor.Role.IsScheduler() {
		return nil, user.ErrSchedulerRoleRequired
	}

	var published []shift.Shift
	err := p.repo.WithinTx(ctx, func(tx shift.Tx) error {
		now := p.now()
		for _, s := range tx.List(shift.Filter{From: from, To: to}) {
			if s.IsPublished {
				continue
			}
			s.IsPublished = true
			s.UpdatedAt = now
			tx.Save(s)
			published = append(published, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(published))
	for _, s := range published {
		ids = append(ids, s.ID)
		p.sink.Notify(ctx, shift.Event{Type: shift.EventShiftPublished, Shift: s, Actor: actor})
	}
	p.log.Info("shifts published",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Int("count", len(ids)),
		zap.String("actor", actor.UserID))
	return ids, nil
}

// PublishWeek publishes the seven days starting at weekStart.
func (p *PublishServiceImpl) PublishWeek(ctx context.Context, actor shift.Actor, weekStart timeutil.Date) ([]string, error) {
	return p.PublishDay(ctx, actor, weekStart, weekStart.AddDays(6))
}

func (p *PublishServiceImpl) HasUnpublishedShifts(ctx context.Context, from, to timeutil.Date) (bool, error) {
	shifts, err := p.repo.List(ctx, shift.Filter{From: from, To: to})
	if err != nil {
		return false, err
	}
	for _, s := range shifts {
		if !s.IsPublished {
			return true, nil
		}
	}
	return false, nil
}

var _ publish.PublishService = (*PublishServiceImpl)(nil)
