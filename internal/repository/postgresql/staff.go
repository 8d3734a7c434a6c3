package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/database"
)

type staffRepositoryImpl struct {
	db *database.DB
}

func NewStaffRepository(db *database.DB) user.StaffDirectory {
	return &staffRepositoryImpl{db: db}
}

// GetByIDs implements user.StaffDirectory. Unknown ids are skipped.
func (r *staffRepositoryImpl) GetByIDs(ctx context.Context, ids []string) ([]user.Staff, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, role, status, created_at, updated_at
		FROM staff
		WHERE id = ANY($1)
		ORDER BY name, id
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	return scanStaff(rows)
}

// ListAssignable implements user.StaffDirectory.
func (r *staffRepositoryImpl) ListAssignable(ctx context.Context, roles []string) ([]user.Staff, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, role, status, created_at, updated_at
		FROM staff
		WHERE status = $1 AND role = ANY($2)
		ORDER BY name, id
	`

	rows, err := q.Query(ctx, query, string(user.StatusActive), roles)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignable staff: %w", err)
	}
	return scanStaff(rows)
}

func scanStaff(rows pgx.Rows) ([]user.Staff, error) {
	defer rows.Close()

	var staff []user.Staff
	for rows.Next() {
		var (
			s            user.Staff
			role, status string
		)
		if err := rows.Scan(&s.ID, &s.Name, &role, &status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		s.Role = user.Role(role)
		s.Status = user.Status(status)
		staff = append(staff, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read staff: %w", err)
	}
	return staff, nil
}
