package shift

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/property"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/service/conflict"
)

var (
	testNow   = time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	scheduler = shift.Actor{UserID: "sched-1", Name: "Sam", Role: user.RoleScheduler}
	alice     = shift.Actor{UserID: "alice", Name: "Alice", Role: user.RoleCleaner}
)

type recordingSink struct {
	mu     sync.Mutex
	events []shift.Event
}

func (r *recordingSink) Notify(_ context.Context, e shift.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) types() []shift.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]shift.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc  *ShiftServiceImpl
	repo shift.ShiftRepository
	dir  *memory.Directory
	sink *recordingSink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := memory.NewDirectory()
	dir.PutProperty(property.Property{ID: "P1", Name: "Harbour View 3B"})
	dir.PutProperty(property.Property{ID: "P2", Name: "Old Town Loft"})
	dir.PutStaff(
		user.Staff{ID: "alice", Name: "Alice", Role: user.RoleCleaner, Status: user.StatusActive},
		user.Staff{ID: "bob", Name: "Bob", Role: user.RoleCleaner, Status: user.StatusActive},
		user.Staff{ID: "carol", Name: "Carol", Role: user.RoleCleaner, Status: user.StatusActive},
		user.Staff{ID: "dave", Name: "Dave", Role: user.RoleCleaner, Status: user.StatusInactive},
		user.Staff{ID: "erin", Name: "Erin", Role: user.RoleAdmin, Status: user.StatusActive},
	)

	repo := memory.NewShiftRepository()
	sink := &recordingSink{}
	svc := NewShiftService(
		repo, dir, dir, dir,
		shift.NewServiceTypeRegistry(),
		conflict.NewDetector(),
		sink,
		Options{
			AutoPublish:     shift.DefaultAutoPublish,
			AssignableRoles: []string{string(user.RoleCleaner), string(user.RoleSupervisor)},
			MaxRecurrence:   10,
			Now:             func() time.Time { return testNow },
		},
		zap.NewNop(),
	)
	return &fixture{svc: svc, repo: repo, dir: dir, sink: sink}
}

func createReq(staff []string, date, start, end string) shift.CreateShiftRequest {
	return shift.CreateShiftRequest{
		PropertyID:  "P1",
		StaffIDs:    staff,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		ServiceType: shift.ServiceTypeStandard,
	}
}
