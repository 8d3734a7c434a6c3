package shift

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/service/conflict"
)

// recurrenceHorizon bounds rules without COUNT or UNTIL.
const recurrenceHorizon = 366

// expandRecurrence returns the occurrence dates of rule starting at first.
func expandRecurrence(rule string, first timeutil.Date, max int) ([]timeutil.Date, error) {
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, validator.ValidationErrors{{Field: "rrule", Message: fmt.Sprintf("invalid rrule: %v", err)}}
	}

	start := first.Time()
	r.DTStart(start)
	occurrences := r.Between(start, start.AddDate(0, 0, recurrenceHorizon), true)

	var dates []timeutil.Date
	for _, o := range occurrences {
		d := timeutil.DateOf(o)
		if len(dates) > 0 && dates[len(dates)-1] == d {
			continue
		}
		dates = append(dates, d)
	}

	switch {
	case len(dates) == 0:
		return nil, shift.ErrRecurrenceNoMatches
	case len(dates) > max:
		return nil, fmt.Errorf("%w: %d occurrences, at most %d allowed", shift.ErrRecurrenceTooLong, len(dates), max)
	}
	return dates, nil
}

// CreateRecurring implements shift.ShiftService.
func (s *ShiftServiceImpl) CreateRecurring(ctx context.Context, actor shift.Actor, req shift.CreateRecurringShiftRequest) (shift.RecurringResult, error) {
	if err := requireScheduler(actor); err != nil {
		return shift.RecurringResult{}, err
	}

	now := s.opts.Now()
	in, err := req.Normalize(now)
	if err != nil {
		return shift.RecurringResult{}, err
	}

	dates, err := expandRecurrence(req.RRule, in.Date, s.opts.MaxRecurrence)
	if err != nil {
		return shift.RecurringResult{}, err
	}

	p, err := s.prepare(ctx, in)
	if err != nil {
		return shift.RecurringResult{}, err
	}
	leaves, err := s.leaves.ListByUsersAndRange(ctx, in.StaffIDs, dates[0], dates[len(dates)-1])
	if err != nil {
		return shift.RecurringResult{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	ids := make([]string, len(dates))
	for i := range dates {
		id, err := uuid.NewV7()
		if err != nil {
			return shift.RecurringResult{}, fmt.Errorf("failed to generate shift id: %w", err)
		}
		ids[i] = id.String()
	}

	var result shift.RecurringResult
	err = s.repo.WithinTx(ctx, func(tx shift.Tx) error {
		var fatal []shift.Conflict
		for i, date := range dates {
			check := s.checkConflicts(tx, conflict.Candidate{
				StaffIDs:  in.StaffIDs,
				Date:      date,
				StartTime: in.StartTime,
				EndTime:   in.EndTime,
			}, leavesOn(leaves, date))
			fatal = append(fatal, check.Fatal()...)
			result.Advisories = append(result.Advisories, check.Advisories()...)

			created := shift.Shift{
				ID:            ids[i],
				PropertyID:    in.PropertyID,
				PropertyName:  p.propertyName,
				StaffIDs:      in.StaffIDs,
				Date:          date,
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
			// staged so later occurrences are checked against it
			tx.Save(created)
			result.Shifts = append(result.Shifts, created)
		}
		if len(fatal) > 0 {
			return &shift.ConflictError{Conflicts: fatal}
		}
		return nil
	})
	if err != nil {
		return shift.RecurringResult{}, err
	}

	s.registerServiceType(p.serviceType)
	s.log.Info("recurring shifts created",
		zap.String("rrule", req.RRule),
		zap.Int("count", len(result.Shifts)),
		zap.String("actor", actor.UserID))
	for _, created := range result.Shifts {
		s.sink.Notify(ctx, shift.Event{Type: shift.EventShiftCreated, Shift: created, Actor: actor})
	}
	return result, nil
}

func leavesOn(leaves []leave.LeaveRequest, d timeutil.Date) []leave.LeaveRequest {
	var out []leave.LeaveRequest
	for _, l := range leaves {
		if l.Covers(d) {
			out = append(out, l)
		}
	}
	return out
}

