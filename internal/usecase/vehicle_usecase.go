package usecase

//go:generate mockgen -destination=../adapter/http/handlers/mocks/usecase_mocks.go -package=mocks dealership/internal/usecase IVehicleUseCase,ISaleUseCase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dealership/internal/domain/entities"
	"dealership/internal/infrastructure/metrics"
	"dealership/internal/usecase/interfaces"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrVehicleNotFound  = errors.New("vehicle not found")
	ErrDuplicateVIN     = errors.New("a vehicle with this VIN already exists")
	ErrInvalidVIN       = errors.New("invalid vin")
	ErrInvalidVehicleID = errors.New("invalid vehicle id")
)

// VehicleInput carries the writable attributes of a vehicle.
// VIN is ignored on update.
type VehicleInput struct {
	Make  string
	Model string
	Year  int
	VIN   string
	Color string
	Price decimal.Decimal
}

// IVehicleUseCase manages the dealership stock.
type IVehicleUseCase interface {
	CreateVehicle(ctx context.Context, in VehicleInput) (entities.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, in VehicleInput) (entities.Vehicle, error)
	GetByVIN(ctx context.Context, vin string) (entities.Vehicle, error)
	ListByStatus(ctx context.Context, status string) ([]entities.Vehicle, error)
}

type VehicleUseCase struct {
	repo    interfaces.IVehicleRepository
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

var _ IVehicleUseCase = (*VehicleUseCase)(nil)

func NewVehicleUseCase(repo interfaces.IVehicleRepository, log *zap.Logger, m *metrics.Metrics) *VehicleUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &VehicleUseCase{
		repo:    repo,
		log:     log,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (u *VehicleUseCase) CreateVehicle(ctx context.Context, in VehicleInput) (entities.Vehicle, error) {
	u.log.Debug("[vehicle][usecase] create start", zap.String("vin", in.VIN))

	v, err := entities.NewVehicle(in.Make, in.Model, in.Year, in.VIN, in.Color, in.Price, u.now())
	if err != nil {
		return entities.Vehicle{}, err
	}

	existing, err := u.repo.GetByVIN(ctx, v.VIN)
	if err != nil {
		u.log.Error("[vehicle][usecase] failed checking vin", zap.String("vin", v.VIN), zap.Error(err))
		return entities.Vehicle{}, err
	}
	if existing.ID != "" {
		return entities.Vehicle{}, fmt.Errorf("%w: %s", ErrDuplicateVIN, v.VIN)
	}

	created, err := u.repo.Create(ctx, v)
	if errors.Is(err, ErrDuplicateVIN) {
		u.log.Info("[vehicle][usecase] vin taken by a concurrent create", zap.String("vin", v.VIN))
		return entities.Vehicle{}, err
	}
	if err != nil {
		u.log.Error("[vehicle][usecase] create failed", zap.String("vin", v.VIN), zap.Error(err))
		return entities.Vehicle{}, err
	}

	u.metrics.IncrementVehiclesCreated()
	u.log.Info("[vehicle][usecase] vehicle created", zap.String("vehicle_id", created.ID), zap.String("vin", created.VIN))
	return created, nil
}

// UpdateVehicle replaces the descriptive attributes of a vehicle. VIN and
// status are kept from the stored record.
func (u *VehicleUseCase) UpdateVehicle(ctx context.Context, id string, in VehicleInput) (entities.Vehicle, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Vehicle{}, ErrInvalidVehicleID
	}

	current, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Vehicle{}, err
	}
	if current.ID == "" {
		return entities.Vehicle{}, ErrVehicleNotFound
	}

	current.Make = strings.TrimSpace(in.Make)
	current.Model = strings.TrimSpace(in.Model)
	current.Year = in.Year
	current.Color = strings.TrimSpace(in.Color)
	current.Price = in.Price
	current.UpdatedAt = u.now()
	if err := current.Validate(); err != nil {
		return entities.Vehicle{}, err
	}

	updated, err := u.repo.Update(ctx, current)
	if err != nil {
		u.log.Error("[vehicle][usecase] update failed", zap.String("vehicle_id", id), zap.Error(err))
		return entities.Vehicle{}, err
	}
	if updated.ID == "" {
		return entities.Vehicle{}, ErrVehicleNotFound
	}

	u.log.Info("[vehicle][usecase] vehicle updated", zap.String("vehicle_id", updated.ID))
	return updated, nil
}

func (u *VehicleUseCase) GetByVIN(ctx context.Context, vin string) (entities.Vehicle, error) {
	vin = strings.TrimSpace(vin)
	if vin == "" {
		return entities.Vehicle{}, ErrInvalidVIN
	}

	v, err := u.repo.GetByVIN(ctx, vin)
	if err != nil {
		return entities.Vehicle{}, err
	}
	if v.ID == "" {
		return entities.Vehicle{}, ErrVehicleNotFound
	}
	return v, nil
}

func (u *VehicleUseCase) ListByStatus(ctx context.Context, status string) ([]entities.Vehicle, error) {
	st, err := entities.ParseVehicleStatus(status)
	if err != nil {
		return nil, err
	}

	items, err := u.repo.ListByStatus(ctx, st)
	if err != nil {
		u.log.Error("[vehicle][usecase] list failed", zap.String("status", string(st)), zap.Error(err))
		return nil, err
	}
	return items, nil
}
