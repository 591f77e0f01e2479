package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dealership/internal/domain/entities"
	"dealership/internal/usecase"
	"dealership/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const vehicleColumns = `id, make, model, year, vin, color, status, price, created_at, updated_at`

// VehicleRepository persists Vehicle entities in PostgreSQL (table vehicles).
type VehicleRepository struct {
	db *sql.DB
}

var _ interfaces.IVehicleRepository = (*VehicleRepository)(nil)

func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) Create(ctx context.Context, v entities.Vehicle) (entities.Vehicle, error) {
	const q = `INSERT INTO vehicles (make, model, year, vin, color, status, price, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`

	err := r.db.QueryRowContext(ctx, q,
		v.Make, v.Model, v.Year, v.VIN, v.Color, string(v.Status), v.Price, v.CreatedAt, v.UpdatedAt,
	).Scan(&v.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return entities.Vehicle{}, fmt.Errorf("%w: %s", usecase.ErrDuplicateVIN, v.VIN)
		}
		return entities.Vehicle{}, err
	}
	return v, nil
}

func (r *VehicleRepository) GetByID(ctx context.Context, id string) (entities.Vehicle, error) {
	// Non-UUID ids can never match and would make postgres reject the query.
	if _, err := uuid.Parse(id); err != nil {
		return entities.Vehicle{}, nil
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
	return scanVehicleRow(row)
}

func (r *VehicleRepository) GetByVIN(ctx context.Context, vin string) (entities.Vehicle, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE vin = $1`, vin)
	return scanVehicleRow(row)
}

// ListByStatus returns the vehicles in status, cheapest first.
func (r *VehicleRepository) ListByStatus(ctx context.Context, status entities.VehicleStatus) ([]entities.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE status = $1 ORDER BY price, created_at`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entities.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Update never writes vin or status.
func (r *VehicleRepository) Update(ctx context.Context, v entities.Vehicle) (entities.Vehicle, error) {
	if _, err := uuid.Parse(v.ID); err != nil {
		return entities.Vehicle{}, nil
	}
	const q = `UPDATE vehicles
SET make = $1, model = $2, year = $3, color = $4, price = $5, updated_at = $6
WHERE id = $7
RETURNING ` + vehicleColumns

	row := r.db.QueryRowContext(ctx, q, v.Make, v.Model, v.Year, v.Color, v.Price, v.UpdatedAt, v.ID)
	return scanVehicleRow(row)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVehicle(s scanner) (entities.Vehicle, error) {
	var (
		v      entities.Vehicle
		status string
	)
	if err := s.Scan(&v.ID, &v.Make, &v.Model, &v.Year, &v.VIN, &v.Color, &status, &v.Price, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return entities.Vehicle{}, err
	}
	v.Status = entities.VehicleStatus(status)
	v.CreatedAt = v.CreatedAt.UTC()
	v.UpdatedAt = v.UpdatedAt.UTC()
	return v, nil
}

// scanVehicleRow maps sql.ErrNoRows to the zero Vehicle.
func scanVehicleRow(row *sql.Row) (entities.Vehicle, error) {
	v, err := scanVehicle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Vehicle{}, nil
	}
	return v, err
}
