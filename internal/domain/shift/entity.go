package shift

import (
	"fmt"
	"slices"
	"time"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
)

// Status is the execution state of a shift.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

var StatusValues = []string{
	string(StatusPending),
	string(StatusActive),
	string(StatusCompleted),
}

// ApprovalStatus is the quality verdict. It stays empty until the shift is completed.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

type CorrectionStatus string

const (
	CorrectionFixing    CorrectionStatus = "fixing"
	CorrectionCorrected CorrectionStatus = "corrected"
)

type ReportKind string

const (
	ReportMaintenance ReportKind = "maintenance"
	ReportDamage      ReportKind = "damage"
	ReportMissingItem ReportKind = "missing_item"
)

type ReportStatus string

const (
	ReportOpen     ReportStatus = "open"
	ReportResolved ReportStatus = "resolved"
)

// Report is an evidence sub-record filed during execution.
type Report struct {
	ID          string
	Kind        ReportKind
	Description string
	Status      ReportStatus
	CreatedAt   time.Time
}

type Shift struct {
	ID           string
	PropertyID   string
	PropertyName string
	StaffIDs     []string

	Date        timeutil.Date
	StartTime   timeutil.Clock
	EndTime     timeutil.Clock
	ServiceType string

	Status           Status
	ApprovalStatus   ApprovalStatus
	WasRejected      bool
	CorrectionStatus CorrectionStatus
	ApprovedBy       string
	ApprovalComment  string
	DecidedAt        *time.Time

	IsPublished   bool
	ManualPayment *float64

	// epoch millis, supplied by the execution side
	ActualStartTime *int64
	ActualEndTime   *int64

	Photos  []string
	Reports []Report

	// OriginShiftID links a spawned fix or inspection shift to the shift that caused it.
	OriginShiftID string

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Actor is the identity performing a mutation.
type Actor struct {
	UserID string
	Name   string
	Role   user.Role
}

// Verdict is the outcome of an audit decision.
type Verdict struct {
	Status    ApprovalStatus
	DecidedBy string
	Comment   string
	At        time.Time
}

func (s Shift) IsInspection() bool {
	return s.ServiceType == ServiceTypeInspection
}

func (s Shift) IsFix() bool {
	return s.ServiceType == ServiceTypeFix
}

func (s Shift) HasStaff(staffID string) bool {
	return slices.Contains(s.StaffIDs, staffID)
}

// AwaitingAudit is true for a completed shift without a verdict yet.
func (s Shift) AwaitingAudit() bool {
	return s.Status == StatusCompleted && s.ApprovalStatus == ApprovalPending
}

// VisibleTo hides drafts from everyone except schedulers.
func (s Shift) VisibleTo(actor Actor) bool {
	return s.IsPublished || actor.Role.IsScheduler()
}

// Clone returns a copy that shares no slices or pointers with s.
func (s Shift) Clone() Shift {
	c := s
	c.StaffIDs = slices.Clone(s.StaffIDs)
	c.Photos = slices.Clone(s.Photos)
	c.Reports = slices.Clone(s.Reports)
	if s.ManualPayment != nil {
		v := *s.ManualPayment
		c.ManualPayment = &v
	}
	if s.ActualStartTime != nil {
		v := *s.ActualStartTime
		c.ActualStartTime = &v
	}
	if s.ActualEndTime != nil {
		v := *s.ActualEndTime
		c.ActualEndTime = &v
	}
	if s.DecidedAt != nil {
		v := *s.DecidedAt
		c.DecidedAt = &v
	}
	return c
}

// Start moves a pending shift to active.
func (s *Shift) Start(at int64) error {
	if s.Status != StatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, StatusActive)
	}
	s.Status = StatusActive
	s.ActualStartTime = &at
	return nil
}

// Complete moves an active shift to completed and opens it for audit.
func (s *Shift) Complete(at int64) error {
	if s.Status != StatusActive {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, StatusCompleted)
	}
	if s.ActualStartTime != nil && at < *s.ActualStartTime {
		return fmt.Errorf("%w: completion precedes start", ErrInvalidTransition)
	}
	s.Status = StatusCompleted
	s.ActualEndTime = &at
	s.ApprovalStatus = ApprovalPending
	return nil
}

// ApplyVerdict records an audit decision. WasRejected is sticky.
func (s *Shift) ApplyVerdict(v Verdict) error {
	if s.Status != StatusCompleted {
		return fmt.Errorf("%w: verdict on %s shift", ErrNotAwaitingAudit, s.Status)
	}
	s.ApprovalStatus = v.Status
	s.ApprovedBy = v.DecidedBy
	s.ApprovalComment = v.Comment
	at := v.At
	s.DecidedAt = &at
	if v.Status == ApprovalRejected {
		s.WasRejected = true
	}
	return nil
}

// MarkFixing flags a rejected shift as having a remedial shift in progress.
func (s *Shift) MarkFixing() error {
	if s.ApprovalStatus != ApprovalRejected {
		return ErrCorrectionRequiresRejection
	}
	s.CorrectionStatus = CorrectionFixing
	return nil
}

// MarkCorrected closes the correction loop once the fix was approved.
func (s *Shift) MarkCorrected(v Verdict) error {
	if s.CorrectionStatus != CorrectionFixing {
		return fmt.Errorf("%w: shift is not being fixed", ErrInvalidTransition)
	}
	if err := s.ApplyVerdict(v); err != nil {
		return err
	}
	s.CorrectionStatus = CorrectionCorrected
	return nil
}
