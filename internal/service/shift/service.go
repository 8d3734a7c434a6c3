package shift

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/property"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/service/conflict"
)

// Options carries the scheduling policy and the injectable clock.
type Options struct {
	AutoPublish     []string
	AssignableRoles []string
	MaxRecurrence   int
	Now             func() time.Time
}

type ShiftServiceImpl struct {
	repo       shift.ShiftRepository
	properties property.Directory
	staff      user.StaffDirectory
	leaves     leave.LeaveRequestReader
	registry   *shift.ServiceTypeRegistry
	detector   *conflict.Detector
	sink       shift.EventSink
	opts       Options
	log        *zap.Logger
}

func NewShiftService(
	repo shift.ShiftRepository,
	properties property.Directory,
	staff user.StaffDirectory,
	leaves leave.LeaveRequestReader,
	registry *shift.ServiceTypeRegistry,
	detector *conflict.Detector,
	sink shift.EventSink,
	opts Options,
	log *zap.Logger,
) *ShiftServiceImpl {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxRecurrence <= 0 {
		opts.MaxRecurrence = 90
	}
	if sink == nil {
		sink = shift.NopSink{}
	}
	return &ShiftServiceImpl{
		repo:       repo,
		properties: properties,
		staff:      staff,
		leaves:     leaves,
		registry:   registry,
		detector:   detector,
		sink:       sink,
		opts:       opts,
		log:        log.Named("shift"),
	}
}

func requireScheduler(actor shift.Actor) error {
	if !actor.Role.IsScheduler() {
		return user.ErrSchedulerRoleRequired
	}
	return nil
}

// prepared is a save request after every directory lookup. It is built
// before the store lock is taken.
type prepared struct {
	in           shift.Input
	serviceType  string
	propertyName string
	leaves       []leave.LeaveRequest
}

func (s *ShiftServiceImpl) prepare(ctx context.Context, in shift.Input) (prepared, error) {
	p := prepared{in: in}

	// new types are registered once the save commits
	serviceType, ok := s.registry.Resolve(in.ServiceType)
	if !ok {
		var err error
		if serviceType, err = shift.NormalizeServiceType(in.ServiceType); err != nil {
			return prepared{}, validator.ValidationErrors{{Field: "service_type", Message: err.Error()}}
		}
	}
	p.serviceType = serviceType

	prop, err := s.properties.GetByID(ctx, in.PropertyID)
	if err != nil {
		return prepared{}, fmt.Errorf("failed to get property: %w", err)
	}
	p.propertyName = prop.Name

	if err := s.checkAssignable(ctx, in.StaffIDs); err != nil {
		return prepared{}, err
	}

	if len(in.StaffIDs) > 0 {
		p.leaves, err = s.leaves.ListByUsersAndRange(ctx, in.StaffIDs, in.Date, in.Date)
		if err != nil {
			return prepared{}, fmt.Errorf("failed to list leave requests: %w", err)
		}
	}
	return p, nil
}

func (s *ShiftServiceImpl) checkAssignable(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	members, err := s.staff.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to get staff: %w", err)
	}

	var errs validator.ValidationErrors
	for _, id := range ids {
		i := slices.IndexFunc(members, func(m user.Staff) bool { return m.ID == id })
		switch {
		case i < 0:
			errs = append(errs, validator.ValidationError{
				Field:   "staff_ids",
				Message: fmt.Sprintf("%s: %s", user.ErrStaffNotFound, id),
			})
		case !members[i].IsAssignable(s.opts.AssignableRoles):
			errs = append(errs, validator.ValidationError{
				Field:   "staff_ids",
				Message: fmt.Sprintf("%s: %s", user.ErrStaffNotAssignable, members[i].Name),
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// checkConflicts runs the detector against the staged store.
func (s *ShiftServiceImpl) checkConflicts(tx shift.Tx, c conflict.Candidate, leaves []leave.LeaveRequest) shift.ConflictResult {
	sameDay := tx.List(shift.Filter{From: c.Date, To: c.Date})
	return s.detector.Check(c, sameDay, leaves)
}

// Create implements shift.ShiftService.
func (s *ShiftServiceImpl) Create(ctx context.Context, actor shift.Actor, req shift.CreateShiftRequest) (shift.SaveResult, error) {
	if err := requireScheduler(actor); err != nil {
		return shift.SaveResult{}, err
	}

	now := s.opts.Now()
	in, err := req.Normalize(now)
	if err != nil {
		return shift.SaveResult{}, err
	}

	p, err := s.prepare(ctx, in)
	if err != nil {
		return shift.SaveResult{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return shift.SaveResult{}, fmt.Errorf("failed to generate shift id: %w", err)
	}

	var result shift.SaveResult
	err = s.repo.WithinTx(ctx, func(tx shift.Tx) error {
		check := s.checkConflicts(tx, conflict.Candidate{
			StaffIDs:  in.StaffIDs,
			Date:      in.Date,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
		}, p.leaves)
		if check.HasFatal() {
			return &shift.ConflictError{Conflicts: check.Fatal()}
		}

		created := shift.Shift{
			ID:            id.String(),
			PropertyID:    in.PropertyID,
			PropertyName:  p.propertyName,
			StaffIDs:      in.StaffIDs,
			Date:          in.Date,
			StartTime:     in.StartTime,
			EndTime:       in.EndTime,
			ServiceType:   p.serviceType,
			Status:        shift.StatusPending,
			IsPublished:   shift.ResolvePublished(in.Scope, p.serviceType, nil, s.opts.AutoPublish),
			ManualPayment: in.ManualPayment,
			CreatedBy:     actor.UserID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		tx.Save(created)

		result = shift.SaveResult{Shift: created, Advisories: check.Advisories()}
		return nil
	})
	if err != nil {
		return shift.SaveResult{}, err
	}

	s.registerServiceType(result.Shift.ServiceType)
	s.log.Info("shift created",
		zap.String("shift_id", result.Shift.ID),
		zap.String("property_id", result.Shift.PropertyID),
		zap.String("date", result.Shift.Date.String()),
		zap.Bool("published", result.Shift.IsPublished),
		zap.String("actor", actor.UserID))
	s.sink.Notify(ctx, shift.Event{Type: shift.EventShiftCreated, Shift: result.Shift, Actor: actor})

	return result, nil
}

func (s *ShiftServiceImpl) registerServiceType(name string) {
	if _, ok := s.registry.Resolve(name); ok {
		return
	}
	if _, err := s.registry.Register(name); err != nil {
		s.log.Warn("service type not registered", zap.String("service_type", name), zap.Error(err))
		return
	}
	s.log.Info("service type registered", zap.String("service_type", name))
}

// Update implements shift.ShiftService.
func (s *ShiftServiceImpl) Update(ctx context.Context, actor shift.Actor, id string, req shift.UpdateShiftRequest) (shift.SaveResult, error) {
	if err := requireScheduler(actor); err != nil {
		return shift.SaveResult{}, err
	}

	now := s.opts.Now()
	in, err := req.Normalize(now)
	if err != nil {
		return shift.SaveResult{}, err
	}

	p, err := s.prepare(ctx, in)
	if err != nil {
		return shift.SaveResult{}, err
	}

	var result shift.SaveResult
	err = s.repo.WithinTx(ctx, func(tx shift.Tx) error {
		prior, err := tx.GetByID(id)
		if err != nil {
			return err
		}

		if len(in.StaffIDs) == 0 && len(prior.StaffIDs) > 0 && !req.ConfirmUnassign {
			return shift.ErrUnassignNotConfirmed
		}

		check := s.checkConflicts(tx, conflict.Candidate{
			StaffIDs:          in.StaffIDs,
			Date:              in.Date,
			StartTime:         in.StartTime,
			EndTime:           in.EndTime,
			ExcludeShiftID:    id,
			SkipDoubleBooking: reusesOriginTeam(tx, prior, in),
		}, p.leaves)
		if check.HasFatal() {
			return &shift.ConflictError{Conflicts: check.Fatal()}
		}

		updated := prior
		updated.PropertyID = in.PropertyID
		updated.PropertyName = p.propertyName
		updated.StaffIDs = in.StaffIDs
		updated.Date = in.Date
		updated.StartTime = in.StartTime
		updated.EndTime = in.EndTime
		updated.ServiceType = p.serviceType
		updated.ManualPayment = in.ManualPayment
		updated.IsPublished = shift.ResolvePublished(in.Scope, p.serviceType, &prior.IsPublished, s.opts.AutoPublish)
		updated.UpdatedAt = now
		tx.Save(updated)

		result = shift.SaveResult{Shift: updated, Advisories: check.Advisories()}
		return nil
	})
	if err != nil {
		return shift.SaveResult{}, err
	}

	s.registerServiceType(result.Shift.ServiceType)
	s.log.Info("shift updated", zap.String("shift_id", id), zap.String("actor", actor.UserID))
	s.sink.Notify(ctx, shift.Event{Type: shift.EventShiftUpdated, Shift: result.Shift, Actor: actor})

	return result, nil
}

// reusesOriginTeam keeps the double-booking bypass for a fix shift that
// stays in its slot and whose staff is still drawn from the shift it
// corrects. Moving the fix re-enables the check.
func reusesOriginTeam(tx shift.Tx, prior shift.Shift, in shift.Input) bool {
	if !prior.IsFix() || prior.OriginShiftID == "" {
		return false
	}
	if in.Date != prior.Date || in.StartTime != prior.StartTime || in.EndTime != prior.EndTime {
		return false
	}
	origin, err := tx.GetByID(prior.OriginShiftID)
	if err != nil {
		return false
	}
	for _, id := range in.StaffIDs {
		if !origin.HasStaff(id) {
			return false
		}
	}
	return true
}

// Delete implements shift.ShiftService.
func (s *ShiftServiceImpl) Delete(ctx context.Context, actor shift.Actor, id string) error {
	if err := requireScheduler(actor); err != nil {
		return err
	}

	var deleted shift.Shift
	err := s.repo.WithinTx(ctx, func(tx shift.Tx) error {
		var err error
		if deleted, err = tx.GetByID(id); err != nil {
			return err
		}
		return tx.Delete(id)
	})
	if err != nil {
		return err
	}

	s.log.Info("shift deleted", zap.String("shift_id", id), zap.String("actor", actor.UserID))
	s.sink.Notify(ctx, shift.Event{Type: shift.EventShiftDeleted, Shift: deleted, Actor: actor})
	return nil
}

// MarkActive implements shift.ShiftService.
func (s *ShiftServiceImpl) MarkActive(ctx context.Context, actor shift.Actor, id string, at int64) (shift.Shift, error) {
	return s.transition(ctx, actor, id, shift.EventWorkStarted, func(sh *shift.Shift) error {
		return sh.Start(at)
	})
}

// MarkCompleted implements shift.ShiftService.
func (s *ShiftServiceImpl) MarkCompleted(ctx context.Context, actor shift.Actor, id string, at int64) (shift.Shift, error) {
	return s.transition(ctx, actor, id, shift.EventWorkCompleted, func(sh *shift.Shift) error {
		return sh.Complete(at)
	})
}

func (s *ShiftServiceImpl) transition(ctx context.Context, actor shift.Actor, id string, event shift.EventType, apply func(*shift.Shift) error) (shift.Shift, error) {
	var out shift.Shift
	err := s.repo.WithinTx(ctx, func(tx shift.Tx) error {
		current, err := tx.GetByID(id)
		if err != nil {
			return err
		}
		if !current.VisibleTo(actor) {
			return fmt.Errorf("%w: %s", shift.ErrShiftNotFound, id)
		}
		if !actor.Role.IsScheduler() && !current.HasStaff(actor.UserID) {
			return shift.ErrNotAssigned
		}
		if err := apply(&current); err != nil {
			return err
		}
		current.UpdatedAt = s.opts.Now()
		tx.Save(current)
		out = current
		return nil
	})
	if err != nil {
		return shift.Shift{}, err
	}

	s.log.Info("shift transitioned",
		zap.String("shift_id", id),
		zap.String("status", string(out.Status)),
		zap.String("actor", actor.UserID))
	s.sink.Notify(ctx, shift.Event{Type: event, Shift: out, Actor: actor})
	return out, nil
}

// Get implements shift.ShiftService. Drafts are reported missing to staff.
func (s *ShiftServiceImpl) Get(ctx context.Context, actor shift.Actor, id string) (shift.Shift, error) {
	sh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return shift.Shift{}, err
	}
	if !sh.VisibleTo(actor) {
		return shift.Shift{}, fmt.Errorf("%w: %s", shift.ErrShiftNotFound, id)
	}
	return sh, nil
}

// List implements shift.ShiftService.
func (s *ShiftServiceImpl) List(ctx context.Context, actor shift.Actor, filter shift.Filter) ([]shift.Shift, error) {
	if !actor.Role.IsScheduler() {
		filter.PublishedOnly = true
	}
	shifts, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	sortShifts(shifts)
	return shifts, nil
}

func sortShifts(shifts []shift.Shift) {
	slices.SortStableFunc(shifts, func(a, b shift.Shift) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return int(a.StartTime - b.StartTime)
	})
}

// ServiceTypes implements shift.ShiftService.
func (s *ShiftServiceImpl) ServiceTypes() []string {
	return s.registry.List()
}

// RegisterServiceType implements shift.ShiftService.
func (s *ShiftServiceImpl) RegisterServiceType(ctx context.Context, actor shift.Actor, name string) (string, error) {
	if err := requireScheduler(actor); err != nil {
		return "", err
	}
	canonical, err := s.registry.Register(name)
	if err != nil {
		if errors.Is(err, shift.ErrInvalidServiceType) {
			return "", validator.ValidationErrors{{Field: "name", Message: err.Error()}}
		}
		return "", err
	}
	s.log.Info("service type registered", zap.String("service_type", canonical), zap.String("actor", actor.UserID))
	return canonical, nil
}

var _ shift.ShiftService = (*ShiftServiceImpl)(nil)

