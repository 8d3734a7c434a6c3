package leave

import (
	"context"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
)

// LeaveRequestReader lists leave overlapping [from, to] for the given users.
// An empty userIDs slice means every user.
type LeaveRequestReader interface {
	ListByUsersAndRange(ctx context.Context, userIDs []string, from, to timeutil.Date) ([]LeaveRequest, error)
}
