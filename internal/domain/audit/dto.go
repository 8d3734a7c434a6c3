package audit

import (
	"strings"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/validator"
)

// ========================================
// AUDIT REQUEST DTOs
// ========================================

// AuditRequest carries the reviewer's optional corrections.
type AuditRequest struct {
	ActualStartTime *int64 `json:"actual_start_time"`
	ActualEndTime   *int64 `json:"actual_end_time"`
	Comment         string `json:"comment"`
}

func (r *AuditRequest) Validate() error {
	var errs validator.ValidationErrors
	r.Comment = strings.TrimSpace(r.Comment)

	if r.ActualStartTime != nil && *r.ActualStartTime <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "actual_start_time",
			Message: "actual_start_time must be epoch milliseconds",
		})
	}
	if r.ActualEndTime != nil && *r.ActualEndTime <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "actual_end_time",
			Message: "actual_end_time must be epoch milliseconds",
		})
	}
	if r.ActualStartTime != nil && r.ActualEndTime != nil && *r.ActualEndTime < *r.ActualStartTime {
		errs = append(errs, validator.ValidationError{
			Field:   "actual_end_time",
			Message: "actual_end_time must not be before actual_start_time",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ReportAndFixRequest rejects a shift and schedules the remedial visit.
// Date and times default to the reviewed shift.
type ReportAndFixRequest struct {
	AuditRequest
	Date          string   `json:"date"`
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time"`
	ManualPayment *float64 `json:"manual_payment"`
}

func (r *ReportAndFixRequest) Validate() error {
	var errs validator.ValidationErrors
	if err := r.AuditRequest.Validate(); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}
	if r.ManualPayment != nil && *r.ManualPayment < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "manual_payment",
			Message: "manual_payment must not be negative",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// AUDIT RESPONSE DTOs
// ========================================

type OutcomeResponse struct {
	Reviewed shift.ShiftResponse   `json:"reviewed"`
	Updated  []shift.ShiftResponse `json:"updated"`
	Created  []shift.ShiftResponse `json:"created"`
}

func NewOutcomeResponse(o Outcome) OutcomeResponse {
	return OutcomeResponse{
		Reviewed: shift.NewShiftResponse(o.Reviewed),
		Updated:  shift.NewShiftResponses(o.Updated),
		Created:  shift.NewShiftResponses(o.Created),
	}
}
