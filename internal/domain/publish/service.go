package publish

import (
	"context"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
)

// PublishService governs draft visibility in batches
type PublishService interface {
	// PublishDay publishes every draft dated within [from, to] and returns their ids
	PublishDay(ctx context.Context, actor shift.Actor, from, to timeutil.Date) ([]string, error)

	PublishWeek(ctx context.Context, actor shift.Actor, weekStart timeutil.Date) ([]string, error)

	HasUnpublishedShifts(ctx context.Context, from, to timeutil.Date) (bool, error)
}
