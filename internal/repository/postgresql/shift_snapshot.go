package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
)

var snapshotColumns = []string{
	"id", "property_id", "property_name", "staff_ids", "date", "start_time", "end_time",
	"service_type", "status", "approval_status", "was_rejected", "correction_status",
	"approved_by", "approval_comment", "decided_at", "is_published", "manual_payment",
	"actual_start_time", "actual_end_time", "photos", "reports", "origin_shift_id",
	"created_by", "created_at", "updated_at",
}

type reportRecord struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type shiftSnapshotRepositoryImpl struct {
	db  *database.DB
	now func() time.Time
	log *zap.Logger
}

func NewShiftSnapshotRepository(db *database.DB, log *zap.Logger) shift.SnapshotStore {
	return &shiftSnapshotRepositoryImpl{db: db, now: time.Now, log: log.Named("shift_snapshot")}
}

// SaveAll implements shift.SnapshotStore. The table is replaced wholesale
// inside one transaction.
func (r *shiftSnapshotRepositoryImpl) SaveAll(ctx context.Context, shifts []shift.Shift) error {
	rows := make([][]any, 0, len(shifts))
	for _, s := range shifts {
		row, err := snapshotRow(s)
		if err != nil {
			return fmt.Errorf("encode shift %s: %w", s.ID, err)
		}
		rows = append(rows, row)
	}

	return WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM shift_snapshots`); err != nil {
			return fmt.Errorf("failed to clear shift snapshot: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"shift_snapshots"}, snapshotColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("failed to copy shift snapshot: %w", err)
		}
		if int(n) != len(rows) {
			return fmt.Errorf("copied %d of %d shifts", n, len(rows))
		}
		return nil
	})
}

func snapshotRow(s shift.Shift) ([]any, error) {
	reports := make([]reportRecord, 0, len(s.Reports))
	for _, rep := range s.Reports {
		reports = append(reports, reportRecord{
			ID:          rep.ID,
			Kind:        string(rep.Kind),
			Description: rep.Description,
			Status:      string(rep.Status),
			CreatedAt:   rep.CreatedAt,
		})
	}
	reportsJSON, err := json.Marshal(reports)
	if err != nil {
		return nil, err
	}

	staffIDs := s.StaffIDs
	if staffIDs == nil {
		staffIDs = []string{}
	}
	photos := s.Photos
	if photos == nil {
		photos = []string{}
	}

	return []any{
		s.ID, s.PropertyID, s.PropertyName, staffIDs, s.Date.String(), s.StartTime.String(), s.EndTime.String(),
		s.ServiceType, string(s.Status), string(s.ApprovalStatus), s.WasRejected, string(s.CorrectionStatus),
		s.ApprovedBy, s.ApprovalComment, s.DecidedAt, s.IsPublished, s.ManualPayment,
		s.ActualStartTime, s.ActualEndTime, photos, reportsJSON, s.OriginShiftID,
		s.CreatedBy, s.CreatedAt, s.UpdatedAt,
	}, nil
}

// LoadAll implements shift.SnapshotStore. Legacy labels such as "05 MAR"
// are accepted; unparseable dates fall back to today and are logged.
func (r *shiftSnapshotRepositoryImpl) LoadAll(ctx context.Context) ([]shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, property_id, property_name, staff_ids, date, start_time, end_time,
			service_type, status, approval_status, was_rejected, correction_status,
			approved_by, approval_comment, decided_at, is_published, manual_payment,
			actual_start_time, actual_end_time, photos, reports, origin_shift_id,
			created_by, created_at, updated_at
		FROM shift_snapshots
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift snapshot: %w", err)
	}
	defer rows.Close()

	now := r.now()
	var shifts []shift.Shift
	for rows.Next() {
		var (
			s                            shift.Shift
			rawDate, rawStart, rawEnd    string
			status, approval, correction string
			reportsJSON                  []byte
		)
		err := rows.Scan(
			&s.ID,
			&s.PropertyID,
			&s.PropertyName,
			&s.StaffIDs,
			&rawDate,
			&rawStart,
			&rawEnd,
			&s.ServiceType,
			&status,
			&approval,
			&s.WasRejected,
			&correction,
			&s.ApprovedBy,
			&s.ApprovalComment,
			&s.DecidedAt,
			&s.IsPublished,
			&s.ManualPayment,
			&s.ActualStartTime,
			&s.ActualEndTime,
			&s.Photos,
			&reportsJSON,
			&s.OriginShiftID,
			&s.CreatedBy,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift snapshot: %w", err)
		}

		s.Status = shift.Status(status)
		s.ApprovalStatus = shift.ApprovalStatus(approval)
		s.CorrectionStatus = shift.CorrectionStatus(correction)

		date, ok := timeutil.ToCanonicalDate(rawDate, now)
		if !ok {
			r.log.Warn("unparseable shift date, using today",
				zap.String("shift_id", s.ID),
				zap.String("raw_date", rawDate))
		}
		s.Date = date

		if s.StartTime, err = parseStoredClock(rawStart); err != nil {
			r.log.Warn("skipping shift with invalid start time", zap.String("shift_id", s.ID), zap.Error(err))
			continue
		}
		if s.EndTime, err = parseStoredClock(rawEnd); err != nil {
			r.log.Warn("skipping shift with invalid end time", zap.String("shift_id", s.ID), zap.Error(err))
			continue
		}

		if err := decodeReports(reportsJSON, &s); err != nil {
			return nil, fmt.Errorf("failed to decode reports of shift %s: %w", s.ID, err)
		}
		shifts = append(shifts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read shift snapshot: %w", err)
	}
	return shifts, nil
}

// parseStoredClock accepts "13:05" and the legacy "01:05 PM".
func parseStoredClock(raw string) (timeutil.Clock, error) {
	c, err := timeutil.ParseClock(raw)
	if err == nil {
		return c, nil
	}
	converted, convErr := timeutil.To24h(raw)
	if convErr != nil {
		return 0, err
	}
	return timeutil.ParseClock(converted)
}

func decodeReports(raw []byte, s *shift.Shift) error {
	if len(raw) == 0 {
		return nil
	}
	var records []reportRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return err
	}
	for _, rec := range records {
		s.Reports = append(s.Reports, shift.Report{
			ID:          rec.ID,
			Kind:        shift.ReportKind(rec.Kind),
			Description: rec.Description,
			Status:      shift.ReportStatus(rec.Status),
			CreatedAt:   rec.CreatedAt,
		})
	}
	return nil
}
