package shift

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/validator"
)

// ========================================
// SHIFT REQUEST DTOs
// ========================================

type CreateShiftRequest struct {
	PropertyID    string   `json:"property_id"`
	StaffIDs      []string `json:"staff_ids"`
	Date          string   `json:"date"`
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time"`
	ServiceType   string   `json:"service_type"`
	PublishScope  string   `json:"publish_scope"`
	ManualPayment *float64 `json:"manual_payment"`
}

// Input is a validated, typed shift save request.
type Input struct {
	PropertyID    string
	StaffIDs      []string
	Date          timeutil.Date
	StartTime     timeutil.Clock
	EndTime       timeutil.Clock
	ServiceType   string
	Scope         PublishScope
	ManualPayment *float64
}

func (r *CreateShiftRequest) Normalize(now time.Time) (Input, error) {
	in, errs := normalizeInput(*r, now)
	if len(in.StaffIDs) == 0 && !errs.Has("staff_ids") {
		errs.Add("staff_ids", "at least one staff member is required")
	}
	if err := errs.Err(); err != nil {
		return Input{}, err
	}
	return in, nil
}

type UpdateShiftRequest struct {
	CreateShiftRequest
	ConfirmUnassign bool `json:"confirm_unassign"`
}

// Normalize accepts an empty staff set; the service decides whether the
// removal was confirmed.
func (r *UpdateShiftRequest) Normalize(now time.Time) (Input, error) {
	in, errs := normalizeInput(r.CreateShiftRequest, now)
	if err := errs.Err(); err != nil {
		return Input{}, err
	}
	return in, nil
}

type CreateRecurringShiftRequest struct {
	CreateShiftRequest
	// RRule is an RFC 5545 recurrence rule, e.g. "FREQ=WEEKLY;BYDAY=MO,WE;COUNT=8".
	RRule string `json:"rrule"`
}

func (r *CreateRecurringShiftRequest) Normalize(now time.Time) (Input, error) {
	in, errs := normalizeInput(r.CreateShiftRequest, now)
	if len(in.StaffIDs) == 0 && !errs.Has("staff_ids") {
		errs.Add("staff_ids", "at least one staff member is required")
	}
	errs.Required("rrule", r.RRule)
	if err := errs.Err(); err != nil {
		return Input{}, err
	}
	return in, nil
}

func normalizeInput(r CreateShiftRequest, now time.Time) (Input, validator.ValidationErrors) {
	var errs validator.ValidationErrors
	in := Input{
		PropertyID:    strings.TrimSpace(r.PropertyID),
		ServiceType:   strings.TrimSpace(r.ServiceType),
		ManualPayment: r.ManualPayment,
	}
	errs.Required("property_id", in.PropertyID)
	errs.Required("service_type", in.ServiceType)

	if errs.Required("date", r.Date) {
		d, err := timeutil.ParseDate(r.Date, now)
		if err != nil {
			errs.Add("date", "date must be YYYY-MM-DD or DD MMM")
		}
		in.Date = d
	}

	var startErr, endErr error
	if in.StartTime, startErr = timeutil.ParseClock(r.StartTime); startErr != nil {
		errs.Add("start_time", "start_time must be in HH:MM format")
	}
	if in.EndTime, endErr = timeutil.ParseClock(r.EndTime); endErr != nil {
		errs.Add("end_time", "end_time must be in HH:MM format")
	}
	if startErr == nil && endErr == nil && in.EndTime < in.StartTime {
		errs.Add("end_time", "end_time must not be before start_time")
	}

	staff, ok := validator.UniqueTrimmed(r.StaffIDs)
	if !ok {
		errs.Add("staff_ids", "staff_ids must not contain empty values")
	}
	in.StaffIDs = staff

	scope, err := ParsePublishScope(r.PublishScope)
	if err != nil {
		errs.Add("publish_scope", "publish_scope must be empty, draft or day")
	}
	in.Scope = scope

	if r.ManualPayment != nil && *r.ManualPayment < 0 {
		errs.Add("manual_payment", "manual_payment must not be negative")
	}
	return in, errs
}

type TransitionRequest struct {
	Timestamp int64 `json:"timestamp"`
}

func (r *TransitionRequest) Validate() error {
	if r.Timestamp <= 0 {
		return validator.ValidationErrors{{
			Field:   "timestamp",
			Message: "timestamp must be epoch milliseconds",
		}}
	}
	return nil
}

type RegisterServiceTypeRequest struct {
	Name string `json:"name"`
}

// ListShiftRequest carries raw query parameters.
type ListShiftRequest struct {
	From       string
	To         string
	StaffID    string
	PropertyID string
	Status     string
}

func (r ListShiftRequest) ToFilter(now time.Time) (Filter, error) {
	var (
		errs validator.ValidationErrors
		f    = Filter{StaffID: r.StaffID, PropertyID: r.PropertyID, Status: Status(r.Status)}
	)
	if r.From != "" {
		d, err := timeutil.ParseDate(r.From, now)
		if err != nil {
			errs.Add("from", "invalid date")
		}
		f.From = d
	}
	if r.To != "" {
		d, err := timeutil.ParseDate(r.To, now)
		if err != nil {
			errs.Add("to", "invalid date")
		}
		f.To = d
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		errs.Add("to", "to must not be before from")
	}
	if r.Status != "" && !validator.IsInSlice(r.Status, StatusValues) {
		errs.Add("status", "status must be pending, active or completed")
	}
	if len(errs) > 0 {
		return Filter{}, errs
	}
	return f, nil
}

// ========================================
// SHIFT RESPONSE DTOs
// ========================================

type ReportResponse struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type ShiftResponse struct {
	ID               string           `json:"id"`
	PropertyID       string           `json:"property_id"`
	PropertyName     string           `json:"property_name"`
	StaffIDs         []string         `json:"staff_ids"`
	Date             timeutil.Date    `json:"date"`
	DateLabel        string           `json:"date_label"`
	StartTime        timeutil.Clock   `json:"start_time"`
	EndTime          timeutil.Clock   `json:"end_time"`
	ServiceType      string           `json:"service_type"`
	Status           string           `json:"status"`
	ApprovalStatus   *string          `json:"approval_status"`
	WasRejected      bool             `json:"was_rejected"`
	CorrectionStatus *string          `json:"correction_status"`
	ApprovedBy       *string          `json:"approved_by"`
	ApprovalComment  *string          `json:"approval_comment"`
	DecidedAt        *time.Time       `json:"decided_at"`
	IsPublished      bool             `json:"is_published"`
	ManualPayment    *float64         `json:"manual_payment"`
	ActualStartTime  *int64           `json:"actual_start_time"`
	ActualEndTime    *int64           `json:"actual_end_time"`
	Photos           []string         `json:"photos"`
	Reports          []ReportResponse `json:"reports"`
	OriginShiftID    *string          `json:"origin_shift_id"`
	CreatedBy        string           `json:"created_by"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func NewShiftResponse(s Shift) ShiftResponse {
	resp := ShiftResponse{
		ID:               s.ID,
		PropertyID:       s.PropertyID,
		PropertyName:     s.PropertyName,
		StaffIDs:         s.StaffIDs,
		Date:             s.Date,
		DateLabel:        s.Date.ShortLabel(),
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
		ServiceType:      s.ServiceType,
		Status:           string(s.Status),
		ApprovalStatus:   optional(string(s.ApprovalStatus)),
		WasRejected:      s.WasRejected,
		CorrectionStatus: optional(string(s.CorrectionStatus)),
		ApprovedBy:       optional(s.ApprovedBy),
		ApprovalComment:  optional(s.ApprovalComment),
		DecidedAt:        s.DecidedAt,
		IsPublished:      s.IsPublished,
		ManualPayment:    s.ManualPayment,
		ActualStartTime:  s.ActualStartTime,
		ActualEndTime:    s.ActualEndTime,
		Photos:           s.Photos,
		OriginShiftID:    optional(s.OriginShiftID),
		CreatedBy:        s.CreatedBy,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
	if resp.StaffIDs == nil {
		resp.StaffIDs = []string{}
	}
	if resp.Photos == nil {
		resp.Photos = []string{}
	}
	resp.Reports = make([]ReportResponse, 0, len(s.Reports))
	for _, r := range s.Reports {
		resp.Reports = append(resp.Reports, ReportResponse{
			ID:          r.ID,
			Kind:        string(r.Kind),
			Description: r.Description,
			Status:      string(r.Status),
			CreatedAt:   r.CreatedAt,
		})
	}
	return resp
}

func NewShiftResponses(shifts []Shift) []ShiftResponse {
	out := make([]ShiftResponse, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, NewShiftResponse(s))
	}
	return out
}

type SaveShiftResponse struct {
	Shift      ShiftResponse `json:"shift"`
	Advisories []Conflict    `json:"advisories"`
}

type RecurringShiftResponse struct {
	Shifts     []ShiftResponse `json:"shifts"`
	Advisories []Conflict      `json:"advisories"`
}

type ListShiftResponse struct {
	Shifts []ShiftResponse `json:"shifts"`
	Total  int             `json:"total"`
}
