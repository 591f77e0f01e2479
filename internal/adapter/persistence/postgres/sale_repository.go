package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dealership/internal/domain/entities"
	"dealership/internal/domain/valueobjects"
	"dealership/internal/usecase/interfaces"

	"github.com/google/uuid"
)

const saleColumns = `id, customer_name, customer_cpf, vehicle_vin, vehicle_id, sale_price, status, created_at, completed_at, updated_at`

// SaleRepository persists SaleOrder entities in PostgreSQL (table sales).
//
// Transitions use WHERE status = 'PENDING' as the compare-and-set guard.
// Completion runs in a transaction together with the vehicle update.
type SaleRepository struct {
	db *sql.DB
}

var _ interfaces.ISaleRepository = (*SaleRepository)(nil)

func NewSaleRepository(db *sql.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

func (r *SaleRepository) Create(ctx context.Context, s entities.SaleOrder) (entities.SaleOrder, error) {
	const q = `INSERT INTO sales (customer_name, customer_cpf, vehicle_vin, vehicle_id, sale_price, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`

	err := r.db.QueryRowContext(ctx, q,
		s.CustomerName, s.CustomerCPF.Value(), s.VehicleVIN, s.VehicleID, s.SalePrice, string(s.Status), s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	if err != nil {
		return entities.SaleOrder{}, err
	}
	return s, nil
}

func (r *SaleRepository) GetByID(ctx context.Context, id string) (entities.SaleOrder, error) {
	if _, err := uuid.Parse(id); err != nil {
		return entities.SaleOrder{}, nil
	}
	s, err := scanSale(r.db.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return entities.SaleOrder{}, nil
	}
	return s, err
}

func (r *SaleRepository) ListAll(ctx context.Context) ([]entities.SaleOrder, error) {
	return r.list(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY created_at`)
}

func (r *SaleRepository) ListByCustomerCPF(ctx context.Context, cpf valueobjects.CPF) ([]entities.SaleOrder, error) {
	return r.list(ctx, `SELECT `+saleColumns+` FROM sales WHERE customer_cpf = $1 ORDER BY created_at`, cpf.Value())
}

func (r *SaleRepository) list(ctx context.Context, q string, args ...any) ([]entities.SaleOrder, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entities.SaleOrder, 0)
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SaleRepository) Complete(ctx context.Context, s entities.SaleOrder) (entities.SaleOrder, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return entities.SaleOrder{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE sales SET status = $1, completed_at = $2, updated_at = $3 WHERE id = $4 AND status = $5`,
		string(entities.SaleStatusCompleted), s.CompletedAt, s.UpdatedAt, s.ID, string(entities.SaleStatusPending))
	if err := expectOneRow(res, err, fmt.Errorf("%w: sale %s", entities.ErrSaleInvalidStatus, s.ID)); err != nil {
		return entities.SaleOrder{}, err
	}

	// vehicle_id references vehicles(id), so zero rows means the vehicle is no longer AVAILABLE.
	res, err = tx.ExecContext(ctx,
		`UPDATE vehicles SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		string(entities.VehicleStatusSold), s.UpdatedAt, s.VehicleID, string(entities.VehicleStatusAvailable))
	if err := expectOneRow(res, err, fmt.Errorf("%w: %s", entities.ErrVehicleAlreadySold, s.VehicleVIN)); err != nil {
		return entities.SaleOrder{}, err
	}

	if err := tx.Commit(); err != nil {
		return entities.SaleOrder{}, err
	}
	return s, nil
}

func (r *SaleRepository) Cancel(ctx context.Context, s entities.SaleOrder) (entities.SaleOrder, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sales SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		string(entities.SaleStatusCanceled), s.UpdatedAt, s.ID, string(entities.SaleStatusPending))
	if err := expectOneRow(res, err, fmt.Errorf("%w: sale %s", entities.ErrSaleInvalidStatus, s.ID)); err != nil {
		return entities.SaleOrder{}, err
	}
	return s, nil
}

// expectOneRow returns noMatch when the statement succeeded but changed nothing.
func expectOneRow(res sql.Result, execErr error, noMatch error) error {
	if execErr != nil {
		return execErr
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return noMatch
	}
	return nil
}

func scanSale(s scanner) (entities.SaleOrder, error) {
	var (
		out         entities.SaleOrder
		cpf, status string
		completedAt sql.NullTime
	)
	err := s.Scan(&out.ID, &out.CustomerName, &cpf, &out.VehicleVIN, &out.VehicleID, &out.SalePrice,
		&status, &out.CreatedAt, &completedAt, &out.UpdatedAt)
	if err != nil {
		return entities.SaleOrder{}, err
	}

	c, err := valueobjects.NewCPF(cpf)
	if err != nil {
		return entities.SaleOrder{}, fmt.Errorf("sale %s: %w", out.ID, err)
	}
	out.CustomerCPF = c
	out.Status = entities.SaleStatus(status)
	out.CreatedAt = out.CreatedAt.UTC()
	out.UpdatedAt = out.UpdatedAt.UTC()
	if completedAt.Valid {
		out.CompletedAt = completedAt.Time.UTC()
	}
	return out, nil
}
