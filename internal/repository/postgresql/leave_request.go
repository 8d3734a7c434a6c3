package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestReader {
	return &leaveRequestRepositoryImpl{db: db}
}

// ListByUsersAndRange implements leave.LeaveRequestReader.
func (r *leaveRequestRepositoryImpl) ListByUsersAndRange(ctx context.Context, userIDs []string, from, to timeutil.Date) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, staff_id, leave_type_name, start_date, end_date, status
		FROM leave_requests
		WHERE start_date <= $2 AND end_date >= $1
			AND (cardinality($3::text[]) = 0 OR staff_id = ANY($3))
			AND status <> 'cancelled'
		ORDER BY start_date, id
	`

	if userIDs == nil {
		userIDs = []string{}
	}
	rows, err := q.Query(ctx, query, from.Time(), to.Time(), userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		var (
			lr         leave.LeaveRequest
			start, end time.Time
			status     string
		)
		if err := rows.Scan(&lr.ID, &lr.UserID, &lr.LeaveTypeName, &start, &end, &status); err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		lr.StartDate = timeutil.DateOf(start)
		lr.EndDate = timeutil.DateOf(end)
		lr.Status = leaveStatus(status)
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leave requests: %w", err)
	}
	return requests, nil
}

// leaveStatus maps the leave module's workflow states onto the three the
// scheduler cares about.
func leaveStatus(raw string) leave.LeaveStatus {
	switch raw {
	case "approved":
		return leave.LeaveStatusApproved
	case "pending", "waiting_approval":
		return leave.LeaveStatusPending
	default:
		return leave.LeaveStatusRejected
	}
}
