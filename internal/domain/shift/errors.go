package shift

import "errors"

// Shift domain errors
var (
	// Lookup errors
	ErrShiftNotFound = errors.New("shift not found")

	// Validation errors
	ErrInvalidTransition   = errors.New("invalid shift status transition")
	ErrInvalidServiceType  = errors.New("invalid service type")
	ErrRecurrenceTooLong   = errors.New("recurrence expands to too many occurrences")
	ErrRecurrenceNoMatches = errors.New("recurrence rule produces no occurrences")

	// Conflict errors
	ErrScheduleConflict = errors.New("schedule conflict")

	// Precondition errors
	ErrUnassignNotConfirmed        = errors.New("removing every staff member requires confirmation")
	ErrCorrectionRequiresRejection = errors.New("correction can only start on a rejected shift")
	ErrReasonRequired              = errors.New("a reason is required to reject a shift")
	ErrNotAwaitingAudit            = errors.New("shift is not awaiting audit")
	ErrFixInProgress               = errors.New("a fix shift is already scheduled for this shift")
	ErrStaleRead                   = errors.New("shift changed while the request was processed, retry")

	// Authorization errors
	ErrNotAssigned = errors.New("shift is not assigned to you")
)
