package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/property"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
)

// Directory is an in-memory stand-in for the property, staff and leave
// collaborators. It is safe for concurrent use.
type Directory struct {
	mu         sync.RWMutex
	properties map[string]property.Property
	staff      []user.Staff
	leaves     []leave.LeaveRequest
}

func NewDirectory() *Directory {
	return &Directory{properties: make(map[string]property.Property)}
}

func (d *Directory) PutProperty(p property.Property) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.properties[p.ID] = p
}

func (d *Directory) PutStaff(s ...user.Staff) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, member := range s {
		i := slices.IndexFunc(d.staff, func(x user.Staff) bool { return x.ID == member.ID })
		if i >= 0 {
			d.staff[i] = member
			continue
		}
		d.staff = append(d.staff, member)
	}
}

func (d *Directory) PutLeave(l ...leave.LeaveRequest) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.leaves = append(d.leaves, l...)
}

// GetByID implements property.Directory.
func (d *Directory) GetByID(ctx context.Context, id string) (property.Property, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.properties[id]
	if !ok {
		return property.Property{}, fmt.Errorf("%w: %s", property.ErrPropertyNotFound, id)
	}
	return p, nil
}

// GetByIDs implements user.StaffDirectory. Unknown ids are skipped.
func (d *Directory) GetByIDs(ctx context.Context, ids []string) ([]user.Staff, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []user.Staff
	for _, s := range d.staff {
		if slices.Contains(ids, s.ID) {
			out = append(out, s)
		}
	}
	return out, nil
}

// ListAssignable implements user.StaffDirectory.
func (d *Directory) ListAssignable(ctx context.Context, roles []string) ([]user.Staff, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []user.Staff
	for _, s := range d.staff {
		if s.IsAssignable(roles) {
			out = append(out, s)
		}
	}
	return out, nil
}

// ListByUsersAndRange implements leave.LeaveRequestReader.
func (d *Directory) ListByUsersAndRange(ctx context.Context, userIDs []string, from, to timeutil.Date) ([]leave.LeaveRequest, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []leave.LeaveRequest
	for _, l := range d.leaves {
		if len(userIDs) > 0 && !slices.Contains(userIDs, l.UserID) {
			continue
		}
		if l.EndDate.Before(from) || l.StartDate.After(to) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// Properties exposes the property half of the directory.
func (d *Directory) Properties() property.Directory { return d }

// Staff exposes the staff half of the directory.
func (d *Directory) Staff() user.StaffDirectory { return d }

// Leaves exposes the leave half of the directory.
func (d *Directory) Leaves() leave.LeaveRequestReader { return d }
