package shift

import "context"

// Tx is the staged view of the store inside a write transaction. Writes
// become visible to other callers only when the transaction commits.
type Tx interface {
	GetByID(id string) (Shift, error)
	List(filter Filter) []Shift
	Save(s Shift)
	Delete(id string) error
}

// ShiftRepository is the authoritative shift collection.
type ShiftRepository interface {
	GetByID(ctx context.Context, id string) (Shift, error)
	List(ctx context.Context, filter Filter) ([]Shift, error)
	All(ctx context.Context) ([]Shift, error)
	ReplaceAll(ctx context.Context, shifts []Shift) error

	// WithinTx runs fn under the store's write lock and applies its writes
	// only when fn returns nil.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// SnapshotStore persists the whole collection to an external store.
type SnapshotStore interface {
	SaveAll(ctx context.Context, shifts []Shift) error
	LoadAll(ctx context.Context) ([]Shift, error)
}
