package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/property"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/database"
)

type propertyRepositoryImpl struct {
	db *database.DB
}

func NewPropertyRepository(db *database.DB) property.Directory {
	return &propertyRepositoryImpl{db: db}
}

// GetByID implements property.Directory.
func (r *propertyRepositoryImpl) GetByID(ctx context.Context, id string) (property.Property, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, address, cleaner_price, service_rates
		FROM properties
		WHERE id = $1
	`

	var p property.Property
	err := q.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Address, &p.CleanerPrice, &p.ServiceRates)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return property.Property{}, fmt.Errorf("%w: %s", property.ErrPropertyNotFound, id)
		}
		return property.Property{}, fmt.Errorf("failed to get property %s: %w", id, err)
	}
	return p, nil
}
