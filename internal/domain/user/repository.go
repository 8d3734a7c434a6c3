package user

import (
	"context"
)

// StaffDirectory is the read-only personnel lookup used for assignment.
type StaffDirectory interface {
	GetByIDs(ctx context.Context, ids []string) ([]Staff, error)
	ListAssignable(ctx context.Context, roles []string) ([]Staff, error)
}
