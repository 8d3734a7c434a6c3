package notification

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/sse"
)

// ToastEventName is the SSE event name clients listen on.
const ToastEventName = "toast"

// Config holds sink configuration
type Config struct {
	WorkerCount int // default: 2
	QueueSize   int // default: 1000
}

// Toast is the payload pushed to subscribers.
type Toast struct {
	ID        string              `json:"id"`
	Type      shift.EventType     `json:"type"`
	Title     string              `json:"title"`
	Message   string              `json:"message"`
	ShiftID   string              `json:"shift_id"`
	Shift     shift.ShiftResponse `json:"shift"`
	ActorID   string              `json:"actor_id,omitempty"`
	ActorName string              `json:"actor_name,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// HubSink turns shift events into toasts on the SSE hub. Notify only
// enqueues; background workers fan the toast out. A full queue drops the
// event so a mutation never waits on delivery.
type HubSink struct {
	hub    *sse.Hub
	config Config
	log    *zap.Logger

	queue   chan shift.Event
	wg      sync.WaitGroup
	stopCh  chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

// NewHubSink creates the sink and starts its background workers
func NewHubSink(hub *sse.Hub, cfg Config, log *zap.Logger) *HubSink {
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	s := &HubSink{
		hub:    hub,
		config: cfg,
		log:    log.Named("notification"),
		queue:  make(chan shift.Event, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.log.Info("notification sink started",
		zap.Int("workers", cfg.WorkerCount),
		zap.Int("queue_size", cfg.QueueSize))
	return s
}

// Notify implements shift.EventSink.
func (s *HubSink) Notify(_ context.Context, e shift.Event) {
	select {
	case <-s.stopCh:
		return
	default:
	}
	select {
	case s.queue <- e:
	default:
		s.dropped.Add(1)
		s.log.Warn("notification queue full, dropping event",
			zap.String("type", string(e.Type)),
			zap.String("shift_id", e.Shift.ID))
	}
}

func (s *HubSink) worker(id int) {
	defer s.wg.Done()
	for {
		select {
		case e := <-s.queue:
			s.deliver(e)
		case <-s.stopCh:
			// drain what was accepted before the stop
			for {
				select {
				case e := <-s.queue:
					s.deliver(e)
				default:
					s.log.Debug("notification worker stopped", zap.Int("worker", id))
					return
				}
			}
		}
	}
}

func (s *HubSink) deliver(e shift.Event) {
	toast := NewToast(e, time.Now())
	s.hub.PublishToMany(Recipients(e.Shift), sse.Event{Name: ToastEventName, Data: toast})
}

// Recipients are the scheduler channel plus, once the shift is published,
// every assigned staff member.
func Recipients(s shift.Shift) []string {
	channels := []string{sse.SchedulerChannel}
	if !s.IsPublished {
		return channels
	}
	for _, id := range s.StaffIDs {
		channels = append(channels, sse.StaffChannel(id))
	}
	return channels
}

func NewToast(e shift.Event, at time.Time) Toast {
	return Toast{
		ID:        uuid.NewString(),
		Type:      e.Type,
		Title:     e.Type.Title(),
		Message:   fmt.Sprintf("%s on %s, %s-%s", e.Shift.PropertyName, e.Shift.Date.ShortLabel(), e.Shift.StartTime, e.Shift.EndTime),
		ShiftID:   e.Shift.ID,
		Shift:     shift.NewShiftResponse(e.Shift),
		ActorID:   e.Actor.UserID,
		ActorName: e.Actor.Name,
		CreatedAt: at,
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (s *HubSink) Dropped() int64 {
	return s.dropped.Load()
}

// Close stops accepting events, delivers what is queued and waits for the workers.
func (s *HubSink) Close() {
	s.once.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		s.log.Info("notification sink stopped")
	})
}

var _ shift.EventSink = (*HubSink)(nil)
