package property

import "context"

type Directory interface {
	GetByID(ctx context.Context, id string) (Property, error)
}
