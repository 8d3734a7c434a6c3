package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
)

const SnapshotJobName = "sync_shift_snapshot"

// SnapshotJobs copies the in-memory shift store to the external snapshot store.
type SnapshotJobs struct {
	shiftRepo shift.ShiftRepository
	snapshot  shift.SnapshotStore
	log       *zap.Logger
}

func NewSnapshotJobs(shiftRepo shift.ShiftRepository, snapshot shift.SnapshotStore, log *zap.Logger) *SnapshotJobs {
	return &SnapshotJobs{
		shiftRepo: shiftRepo,
		snapshot:  snapshot,
		log:       log.Named("snapshot"),
	}
}

func (j *SnapshotJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob(SnapshotJobName, interval, j.SyncShiftSnapshot)
}

// SyncShiftSnapshot writes the committed store wholesale. Failures are
// returned for the scheduler to log; the next tick tries again.
func (j *SnapshotJobs) SyncShiftSnapshot(ctx context.Context) error {
	shifts, err := j.shiftRepo.All(ctx)
	if err != nil {
		return fmt.Errorf("read shift store: %w", err)
	}
	if err := j.snapshot.SaveAll(ctx, shifts); err != nil {
		return fmt.Errorf("save shift snapshot: %w", err)
	}
	j.log.Debug("shift snapshot saved", zap.Int("shift_count", len(shifts)))
	return nil
}

// Restore loads the last snapshot into the store. Run it before serving.
func (j *SnapshotJobs) Restore(ctx context.Context) error {
	shifts, err := j.snapshot.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load shift snapshot: %w", err)
	}
	if err := j.shiftRepo.ReplaceAll(ctx, shifts); err != nil {
		return fmt.Errorf("restore shift store: %w", err)
	}
	j.log.Info("shift store restored", zap.Int("shift_count", len(shifts)))
	return nil
}
