package audit

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/service/conflict"
)

// maxDerivationAttempts bounds how often Report & Fix re-reads leave when
// the remedial team changed between the lookup and the store lock.
const maxDerivationAttempts = 3

var errStaleTeam = fmt.Errorf("%w: remedial team changed during lookup", shift.ErrStaleRead)

type AuditServiceImpl struct {
	repo           shift.ShiftRepository
	leaves         leave.LeaveRequestReader
	detector       *conflict.Detector
	sink           shift.EventSink
	defaultComment string
	now            func() time.Time
	log            *zap.Logger
}

func NewAuditService(
	repo shift.ShiftRepository,
	leaves leave.LeaveRequestReader,
	detector *conflict.Detector,
	sink shift.EventSink,
	defaultComment string,
	now func() time.Time,
	log *zap.Logger,
) *AuditServiceImpl {
	if defaultComment == "" {
		defaultComment = audit.DefaultApprovalComment
	}
	if now == nil {
		now = time.Now
	}
	if sink == nil {
		sink = shift.NopSink{}
	}
	return &AuditServiceImpl{
		repo:           repo,
		leaves:         leaves,
		detector:       detector,
		sink:           sink,
		defaultComment: defaultComment,
		now:            now,
		log:            log.Named("audit"),
	}
}

// loadForReview returns the shift if it is waiting for a verdict.
func loadForReview(tx shift.Tx, id string) (shift.Shift, error) {
	s, err := tx.GetByID(id)
	if err != nil {
		return shift.Shift{}, err
	}
	if !s.AwaitingAudit() {
		return shift.Shift{}, fmt.Errorf("%w: status %s, approval %q", shift.ErrNotAwaitingAudit, s.Status, s.ApprovalStatus)
	}
	return s, nil
}

// loadForFix also accepts a shift that was already rejected, so a fix can
// follow an earlier Reject.
func loadForFix(tx shift.Tx, id string) (shift.Shift, error) {
	s, err := tx.GetByID(id)
	if err != nil {
		return shift.Shift{}, err
	}
	if s.Status == shift.StatusCompleted && s.ApprovalStatus == shift.ApprovalRejected {
		return s, nil
	}
	if !s.AwaitingAudit() {
		return shift.Shift{}, fmt.Errorf("%w: status %s, approval %q", shift.ErrNotAwaitingAudit, s.Status, s.ApprovalStatus)
	}
	return s, nil
}

func applyCorrections(s *shift.Shift, req audit.AuditRequest) {
	if req.ActualStartTime != nil {
		v := *req.ActualStartTime
		s.ActualStartTime = &v
	}
	if req.ActualEndTime != nil {
		v := *req.ActualEndTime
		s.ActualEndTime = &v
	}
}

// decide records the verdict on the reviewed shift and, for inspections,
// mirrors it onto the audited cleaning shift, appending it to out.Updated.
func (a *AuditServiceImpl) decide(tx shift.Tx, reviewed *shift.Shift, v shift.Verdict, out *audit.Outcome) (cascaded bool, err error) {
	if err := reviewed.ApplyVerdict(v); err != nil {
		return false, err
	}
	reviewed.UpdatedAt = v.At

	if !reviewed.IsInspection() {
		return false, nil
	}

	target, found := shift.LatestCompletedCleaning(tx.List(shift.Filter{PropertyID: reviewed.PropertyID}), reviewed.PropertyID, reviewed.ID)
	if !found {
		a.log.Info("inspection verdict has no cleaning shift to cascade to",
			zap.String("shift_id", reviewed.ID),
			zap.String("property_id", reviewed.PropertyID))
		return false, nil
	}
	if err := target.ApplyVerdict(v); err != nil {
		return false, err
	}
	target.UpdatedAt = v.At
	tx.Save(target)
	out.Updated = append(out.Updated, target)
	return true, nil
}

// closeCorrection marks the rejected origin of an approved fix shift as corrected.
func (a *AuditServiceImpl) closeCorrection(tx shift.Tx, fix shift.Shift, v shift.Verdict, out *audit.Outcome) error {
	if !fix.IsFix() || fix.OriginShiftID == "" {
		return nil
	}
	origin, err := tx.GetByID(fix.OriginShiftID)
	if errors.Is(err, shift.ErrShiftNotFound) {
		a.log.Info("fix shift origin no longer exists", zap.String("shift_id", fix.ID), zap.String("origin_id", fix.OriginShiftID))
		return nil
	}
	if err != nil {
		return err
	}
	if origin.CorrectionStatus != shift.CorrectionFixing {
		return nil
	}
	if err := origin.MarkCorrected(v); err != nil {
		return err
	}
	origin.UpdatedAt = v.At
	tx.Save(origin)
	out.Updated = append(out.Updated, origin)
	return nil
}

// Approve implements audit.AuditService.
func (a *AuditServiceImpl) Approve(ctx context.Context, actor shift.Actor, shiftID string, req audit.AuditRequest) (audit.Outcome, error) {
	if !actor.Role.IsScheduler() {
		return audit.Outcome{}, user.ErrSchedulerRoleRequired
	}
	if err := req.Validate(); err != nil {
		return audit.Outcome{}, err
	}

	comment := req.Comment
	if comment == "" {
		comment = a.defaultComment
	}
	v := shift.Verdict{Status: shift.ApprovalApproved, DecidedBy: actor.UserID, Comment: comment, At: a.now()}

	var out audit.Outcome
	err := a.repo.WithinTx(ctx, func(tx shift.Tx) error {
		reviewed, err := loadForReview(tx, shiftID)
		if err != nil {
			return err
		}
		applyCorrections(&reviewed, req)

		if _, err := a.decide(tx, &reviewed, v, &out); err != nil {
			return err
		}
		if err := a.closeCorrection(tx, reviewed, v, &out); err != nil {
			return err
		}
		tx.Save(reviewed)
		out.Reviewed = reviewed
		return nil
	})
	if err != nil {
		return audit.Outcome{}, err
	}

	a.logDecision("approve", actor, out)
	a.sink.Notify(ctx, shift.Event{Type: shift.EventWorkAuthorized, Shift: out.Reviewed, Actor: actor})
	for _, s := range out.Updated {
		a.sink.Notify(ctx, shift.Event{Type: shift.EventWorkAuthorized, Shift: s, Actor: actor})
	}
	return out, nil
}

// Reject implements audit.AuditService.
func (a *AuditServiceImpl) Reject(ctx context.Context, actor shift.Actor, shiftID string, req audit.AuditRequest) (audit.Outcome, error) {
	if !actor.Role.IsScheduler() {
		return audit.Outcome{}, user.ErrSchedulerRoleRequired
	}
	if err := req.Validate(); err != nil {
		return audit.Outcome{}, err
	}

	var out audit.Outcome
	err := a.repo.WithinTx(ctx, func(tx shift.Tx) error {
		_, err := a.reject(tx, loadForReview, actor, shiftID, req, &out)
		return err
	})
	if err != nil {
		return audit.Outcome{}, err
	}

	a.logDecision("reject", actor, out)
	a.notifyRejected(ctx, actor, out)
	return out, nil
}

// reject stages the rejection and returns the shift that now carries the
// failed cleaning: the cascaded target for inspections, else the reviewed
// shift. The pointer refers into out and stays valid until out is appended to.
// A shift rejected before keeps its stored reason when req has none.
func (a *AuditServiceImpl) reject(tx shift.Tx, load func(shift.Tx, string) (shift.Shift, error), actor shift.Actor, shiftID string, req audit.AuditRequest, out *audit.Outcome) (origin *shift.Shift, err error) {
	reviewed, err := load(tx, shiftID)
	if err != nil {
		return nil, err
	}

	reason := req.Comment
	if reason == "" && reviewed.ApprovalStatus == shift.ApprovalRejected {
		reason = reviewed.ApprovalComment
	}
	if reason == "" {
		return nil, shift.ErrReasonRequired
	}
	applyCorrections(&reviewed, req)

	v := shift.Verdict{Status: shift.ApprovalRejected, DecidedBy: actor.UserID, Comment: reason, At: a.now()}
	cascaded, err := a.decide(tx, &reviewed, v, out)
	if err != nil {
		return nil, err
	}
	tx.Save(reviewed)
	out.Reviewed = reviewed

	if cascaded {
		return &out.Updated[len(out.Updated)-1], nil
	}
	return &out.Reviewed, nil
}

func (a *AuditServiceImpl) notifyRejected(ctx context.Context, actor shift.Actor, out audit.Outcome) {
	a.sink.Notify(ctx, shift.Event{Type: shift.EventWorkReported, Shift: out.Reviewed, Actor: actor})
	for _, s := range out.Updated {
		a.sink.Notify(ctx, shift.Event{Type: shift.EventWorkReported, Shift: s, Actor: actor})
	}
}

// remedialPlan is the fix shift's schedule and team as seen outside the lock.
type remedialPlan struct {
	date      timeutil.Date
	start     timeutil.Clock
	end       timeutil.Clock
	staffIDs  []string
	leaves    []leave.LeaveRequest
	overrides bool
}

func (a *AuditServiceImpl) planRemedial(req audit.ReportAndFixRequest) (remedialPlan, error) {
	var (
		p    remedialPlan
		errs validator.ValidationErrors
	)
	if req.Date != "" {
		d, err := timeutil.ParseDate(req.Date, a.now())
		if err != nil {
			errs.Add("date", "date must be YYYY-MM-DD or DD MMM")
		}
		p.date = d
	}
	if req.StartTime != "" {
		c, err := timeutil.ParseClock(req.StartTime)
		if err != nil {
			errs.Add("start_time", "start_time must be in HH:MM format")
		}
		p.start = c
		p.overrides = true
	}
	if req.EndTime != "" {
		c, err := timeutil.ParseClock(req.EndTime)
		if err != nil {
			errs.Add("end_time", "end_time must be in HH:MM format")
		}
		p.end = c
		p.overrides = true
	}
	if (req.StartTime == "") != (req.EndTime == "") {
		errs.Add("end_time", "start_time and end_time must be given together")
	} else if p.overrides && p.end < p.start {
		errs.Add("end_time", "end_time must not be before start_time")
	}
	if len(errs) > 0 {
		return remedialPlan{}, errs
	}
	return p, nil
}

// remedialTeam re-derives staff from the audited cleaning shift when the
// reviewed shift is an inspection.
func remedialTeam(reviewed shift.Shift, shifts []shift.Shift) []string {
	if !reviewed.IsInspection() {
		return slices.Clone(reviewed.StaffIDs)
	}
	target, ok := shift.LatestCompletedCleaning(shifts, reviewed.PropertyID, reviewed.ID)
	if !ok {
		return nil
	}
	return slices.Clone(target.StaffIDs)
}

func (p remedialPlan) schedule(reviewed shift.Shift) (timeutil.Date, timeutil.Clock, timeutil.Clock) {
	date, start, end := reviewed.Date, reviewed.StartTime, reviewed.EndTime
	if !p.date.IsZero() {
		date = p.date
	}
	if p.overrides {
		start, end = p.start, p.end
	}
	return date, start, end
}

// ReportAndFix implements audit.AuditService.
func (a *AuditServiceImpl) ReportAndFix(ctx context.Context, actor shift.Actor, shiftID string, req audit.ReportAndFixRequest) (audit.Outcome, error) {
	if !actor.Role.IsScheduler() {
		return audit.Outcome{}, user.ErrSchedulerRoleRequired
	}
	if err := req.Validate(); err != nil {
		return audit.Outcome{}, err
	}
	plan, err := a.planRemedial(req)
	if err != nil {
		return audit.Outcome{}, err
	}

	for attempt := 1; ; attempt++ {
		out, err := a.reportAndFixOnce(ctx, actor, shiftID, req, plan)
		if errors.Is(err, errStaleTeam) && attempt < maxDerivationAttempts {
			continue
		}
		if err != nil {
			return audit.Outcome{}, err
		}

		a.logDecision("report_and_fix", actor, out)
		a.notifyRejected(ctx, actor, out)
		for _, s := range out.Created {
			a.sink.Notify(ctx, shift.Event{Type: shift.EventFixScheduled, Shift: s, Actor: actor})
		}
		return out, nil
	}
}

func (a *AuditServiceImpl) reportAndFixOnce(ctx context.Context, actor shift.Actor, shiftID string, req audit.ReportAndFixRequest, plan remedialPlan) (audit.Outcome, error) {
	// Leave lookups are I/O and must happen before the store lock.
	reviewed, err := a.repo.GetByID(ctx, shiftID)
	if err != nil {
		return audit.Outcome{}, err
	}
	sameProperty, err := a.repo.List(ctx, shift.Filter{PropertyID: reviewed.PropertyID})
	if err != nil {
		return audit.Outcome{}, fmt.Errorf("failed to list property shifts: %w", err)
	}
	team := remedialTeam(reviewed, sameProperty)
	date, start, end := plan.schedule(reviewed)
	if len(team) > 0 {
		plan.leaves, err = a.leaves.ListByUsersAndRange(ctx, team, date, date)
		if err != nil {
			return audit.Outcome{}, fmt.Errorf("failed to list leave requests: %w", err)
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return audit.Outcome{}, fmt.Errorf("failed to generate shift id: %w", err)
	}

	var out audit.Outcome
	err = a.repo.WithinTx(ctx, func(tx shift.Tx) error {
		current, err := loadForFix(tx, shiftID)
		if err != nil {
			return err
		}
		staffIDs := remedialTeam(current, tx.List(shift.Filter{PropertyID: current.PropertyID}))
		if d, _, _ := plan.schedule(current); d != date || !slices.Equal(staffIDs, team) {
			return errStaleTeam
		}
		_, start, end = plan.schedule(current)

		origin, err := a.reject(tx, loadForFix, actor, shiftID, req.AuditRequest, &out)
		if err != nil {
			return err
		}
		if origin.CorrectionStatus == shift.CorrectionFixing {
			return fmt.Errorf("%w: %s is %s", shift.ErrFixInProgress, origin.ID, origin.CorrectionStatus)
		}

		check := a.detector.Check(conflict.Candidate{
			StaffIDs:          staffIDs,
			Date:              date,
			StartTime:         start,
			EndTime:           end,
			SkipDoubleBooking: true,
		}, nil, plan.leaves)
		if check.HasFatal() {
			return &shift.ConflictError{Conflicts: check.Fatal()}
		}

		if err := origin.MarkFixing(); err != nil {
			return err
		}
		tx.Save(*origin)

		now := a.now()
		fix := shift.Shift{
			ID:            id.String(),
			PropertyID:    current.PropertyID,
			PropertyName:  current.PropertyName,
			StaffIDs:      staffIDs,
			Date:          date,
			StartTime:     start,
			EndTime:       end,
			ServiceType:   shift.ServiceTypeFix,
			Status:        shift.StatusPending,
			IsPublished:   true,
			ManualPayment: req.ManualPayment,
			OriginShiftID: origin.ID,
			CreatedBy:     actor.UserID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		tx.Save(fix)
		out.Created = append(out.Created, fix)
		return nil
	})
	if err != nil {
		return audit.Outcome{}, err
	}
	return out, nil
}

// EscalateToSupervisor implements audit.AuditService.
func (a *AuditServiceImpl) EscalateToSupervisor(ctx context.Context, actor shift.Actor, shiftID string) (audit.Outcome, error) {
	if !actor.Role.IsScheduler() {
		return audit.Outcome{}, user.ErrSchedulerRoleRequired
	}

	id, err := uuid.NewV7()
	if err != nil {
		return audit.Outcome{}, fmt.Errorf("failed to generate shift id: %w", err)
	}

	var out audit.Outcome
	err = a.repo.WithinTx(ctx, func(tx shift.Tx) error {
		reviewed, err := loadForReview(tx, shiftID)
		if err != nil {
			return err
		}

		now := a.now()
		inspection := shift.Shift{
			ID:            id.String(),
			PropertyID:    reviewed.PropertyID,
			PropertyName:  reviewed.PropertyName,
			StaffIDs:      []string{},
			Date:          reviewed.Date,
			StartTime:     reviewed.StartTime,
			EndTime:       reviewed.EndTime,
			ServiceType:   shift.ServiceTypeInspection,
			Status:        shift.StatusPending,
			IsPublished:   true,
			OriginShiftID: reviewed.ID,
			CreatedBy:     actor.UserID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		tx.Save(inspection)

		out.Reviewed = reviewed
		out.Created = append(out.Created, inspection)
		return nil
	})
	if err != nil {
		return audit.Outcome{}, err
	}

	a.logDecision("escalate", actor, out)
	a.sink.Notify(ctx, shift.Event{Type: shift.EventInspectionRequested, Shift: out.Created[0], Actor: actor})
	return out, nil
}

func (a *AuditServiceImpl) logDecision(action string, actor shift.Actor, out audit.Outcome) {
	ids := func(shifts []shift.Shift) []string {
		res := make([]string, 0, len(shifts))
		for _, s := range shifts {
			res = append(res, s.ID)
		}
		return res
	}
	a.log.Info("audit decision",
		zap.String("action", action),
		zap.String("shift_id", out.Reviewed.ID),
		zap.String("approval_status", string(out.Reviewed.ApprovalStatus)),
		zap.Strings("updated", ids(out.Updated)),
		zap.Strings("created", ids(out.Created)),
		zap.String("actor", actor.UserID))
}

var _ audit.AuditService = (*AuditServiceImpl)(nil)
