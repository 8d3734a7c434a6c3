package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
)

// shiftRepositoryImpl keeps the authoritative shift collection in memory.
// Mutations are serialized by mu; readers get copies.
type shiftRepositoryImpl struct {
	mu     sync.RWMutex
	shifts map[string]shift.Shift
	order  []string
}

func NewShiftRepository() shift.ShiftRepository {
	return &shiftRepositoryImpl{shifts: make(map[string]shift.Shift)}
}

// GetByID implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.shifts[id]
	if !ok {
		return shift.Shift{}, fmt.Errorf("%w: %s", shift.ErrShiftNotFound, id)
	}
	return s.Clone(), nil
}

// List implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) List(ctx context.Context, filter shift.Filter) ([]shift.Shift, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(filter), nil
}

// All implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) All(ctx context.Context) ([]shift.Shift, error) {
	return r.List(ctx, shift.Filter{})
}

// ReplaceAll implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) ReplaceAll(ctx context.Context, shifts []shift.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shifts = make(map[string]shift.Shift, len(shifts))
	r.order = r.order[:0]
	for _, s := range shifts {
		if _, dup := r.shifts[s.ID]; !dup {
			r.order = append(r.order, s.ID)
		}
		r.shifts[s.ID] = s.Clone()
	}
	return nil
}

func (r *shiftRepositoryImpl) list(filter shift.Filter) []shift.Shift {
	out := make([]shift.Shift, 0, len(r.order))
	for _, id := range r.order {
		s := r.shifts[id]
		if filter.Matches(s) {
			out = append(out, s.Clone())
		}
	}
	return out
}

// WithinTx implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) WithinTx(ctx context.Context, fn func(tx shift.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &shiftTx{repo: r, staged: make(map[string]*shift.Shift)}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// shiftTx overlays staged writes on the committed map. A nil entry marks a delete.
type shiftTx struct {
	repo      *shiftRepositoryImpl
	staged    map[string]*shift.Shift
	additions []string
}

func (t *shiftTx) lookup(id string) (shift.Shift, bool) {
	if s, ok := t.staged[id]; ok {
		if s == nil {
			return shift.Shift{}, false
		}
		return *s, true
	}
	s, ok := t.repo.shifts[id]
	return s, ok
}

func (t *shiftTx) GetByID(id string) (shift.Shift, error) {
	s, ok := t.lookup(id)
	if !ok {
		return shift.Shift{}, fmt.Errorf("%w: %s", shift.ErrShiftNotFound, id)
	}
	return s.Clone(), nil
}

func (t *shiftTx) List(filter shift.Filter) []shift.Shift {
	var out []shift.Shift
	for _, id := range append(slices.Clone(t.repo.order), t.additions...) {
		s, ok := t.lookup(id)
		if ok && filter.Matches(s) {
			out = append(out, s.Clone())
		}
	}
	return out
}

func (t *shiftTx) Save(s shift.Shift) {
	if _, known := t.repo.shifts[s.ID]; !known && !slices.Contains(t.additions, s.ID) {
		t.additions = append(t.additions, s.ID)
	}
	c := s.Clone()
	t.staged[s.ID] = &c
}

func (t *shiftTx) Delete(id string) error {
	if _, ok := t.lookup(id); !ok {
		return fmt.Errorf("%w: %s", shift.ErrShiftNotFound, id)
	}
	t.staged[id] = nil
	return nil
}

func (t *shiftTx) commit() {
	r := t.repo
	r.order = append(r.order, t.additions...)
	for id, s := range t.staged {
		if s == nil {
			delete(r.shifts, id)
			continue
		}
		r.shifts[id] = *s
	}
	if len(r.order) != len(r.shifts) {
		r.order = slices.DeleteFunc(r.order, func(id string) bool {
			_, ok := r.shifts[id]
			return !ok
		})
	}
}
