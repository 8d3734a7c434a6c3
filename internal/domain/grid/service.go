package grid

import (
	"bytes"
	"context"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
)

// GridService builds the read-only scheduling calendar
type GridService interface {
	// Week projects the week starting on the Monday of weekStart as seen by viewer
	Week(ctx context.Context, viewer shift.Actor, weekStart timeutil.Date) (Grid, error)
}

// ExportService renders the calendar for spreadsheets and calendar apps
type ExportService interface {
	// WeekXLSX returns the workbook and its suggested file name
	WeekXLSX(ctx context.Context, viewer shift.Actor, weekStart timeutil.Date) (*bytes.Buffer, string, error)

	StaffCalendar(ctx context.Context, viewer shift.Actor, staffID string) (string, error)
}
