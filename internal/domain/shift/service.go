package shift

import (
	"context"
)

// SaveResult is a saved shift plus the advisories found while checking it.
type SaveResult struct {
	Shift      Shift
	Advisories []Conflict
}

type RecurringResult struct {
	Shifts     []Shift
	Advisories []Conflict
}

// ShiftService defines the shift store operations
type ShiftService interface {
	Create(ctx context.Context, actor Actor, req CreateShiftRequest) (SaveResult, error)

	// CreateRecurring expands an RRULE and creates every occurrence or none
	CreateRecurring(ctx context.Context, actor Actor, req CreateRecurringShiftRequest) (RecurringResult, error)

	Update(ctx context.Context, actor Actor, id string, req UpdateShiftRequest) (SaveResult, error)
	Delete(ctx context.Context, actor Actor, id string) error

	// Execution-side transitions
	MarkActive(ctx context.Context, actor Actor, id string, at int64) (Shift, error)
	MarkCompleted(ctx context.Context, actor Actor, id string, at int64) (Shift, error)

	Get(ctx context.Context, actor Actor, id string) (Shift, error)
	List(ctx context.Context, actor Actor, filter Filter) ([]Shift, error)

	ServiceTypes() []string
	RegisterServiceType(ctx context.Context, actor Actor, name string) (string, error)
}

type EventType string

const (
	EventShiftCreated        EventType = "shift.created"
	EventShiftUpdated        EventType = "shift.updated"
	EventShiftDeleted        EventType = "shift.deleted"
	EventShiftPublished      EventType = "shift.published"
	EventWorkStarted         EventType = "shift.started"
	EventWorkCompleted       EventType = "shift.completed"
	EventWorkAuthorized      EventType = "audit.approved"
	EventWorkReported        EventType = "audit.rejected"
	EventFixScheduled        EventType = "audit.fix_scheduled"
	EventInspectionRequested EventType = "audit.inspection_requested"
)

var eventTitles = map[EventType]string{
	EventShiftCreated:        "Shift Created",
	EventShiftUpdated:        "Shift Updated",
	EventShiftDeleted:        "Shift Deleted",
	EventShiftPublished:      "Shift Published",
	EventWorkStarted:         "Work Started",
	EventWorkCompleted:       "Work Completed",
	EventWorkAuthorized:      "Work Authorized",
	EventWorkReported:        "Work Reported",
	EventFixScheduled:        "Fix Scheduled",
	EventInspectionRequested: "Inspection Requested",
}

func (t EventType) Title() string {
	if title, ok := eventTitles[t]; ok {
		return title
	}
	return string(t)
}

// Event is emitted after a mutation commits.
type Event struct {
	Type  EventType
	Shift Shift
	Actor Actor
}

// EventSink receives events fire-and-forget. Implementations must not block.
type EventSink interface {
	Notify(ctx context.Context, e Event)
}

type NopSink struct{}

func (NopSink) Notify(context.Context, Event) {}
