package audit

import (
	"context"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
)

// DefaultApprovalComment is stored when an approval carries no comment.
const DefaultApprovalComment = "Quality Verified"

// Outcome is the full effect set of an audit action. Reviewed is the
// addressed shift after the action; Updated lists other shifts the action
// changed and Created lists spawned shifts.
type Outcome struct {
	Reviewed shift.Shift
	Updated  []shift.Shift
	Created  []shift.Shift
}

// AuditService drives completed shifts through quality verification
type AuditService interface {
	// Approve records an approval, cascading from inspections to the audited cleaning shift
	Approve(ctx context.Context, actor shift.Actor, shiftID string, req AuditRequest) (Outcome, error)

	// Reject requires a reason and cascades like Approve
	Reject(ctx context.Context, actor shift.Actor, shiftID string, req AuditRequest) (Outcome, error)

	// ReportAndFix rejects and spawns a published TO FIX shift in one step
	ReportAndFix(ctx context.Context, actor shift.Actor, shiftID string, req ReportAndFixRequest) (Outcome, error)

	// EscalateToSupervisor spawns an unstaffed inspection shift and leaves the verdict open
	EscalateToSupervisor(ctx context.Context, actor shift.Actor, shiftID string) (Outcome, error)
}
