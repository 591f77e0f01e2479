package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dealership/internal/domain/entities"
	"dealership/internal/domain/valueobjects"
	"dealership/internal/infrastructure/metrics"
	"dealership/internal/usecase/interfaces"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrSaleNotFound  = errors.New("sale not found")
	ErrInvalidSaleID = errors.New("invalid sale id")
)

// ISaleUseCase covers the sale-payment workflow:
//   - CreateSale opens a PENDING sale for an available vehicle.
//   - CompleteSale settles it from the payment webhook, marking the vehicle SOLD on success.
type ISaleUseCase interface {
	CreateSale(ctx context.Context, customer entities.Customer, vin string, price decimal.Decimal) (entities.SaleOrder, error)
	CompleteSale(ctx context.Context, saleID string, success bool, payerCPF string) (entities.SaleOrder, error)
	GetByID(ctx context.Context, id string) (entities.SaleOrder, error)
	ListAll(ctx context.Context) ([]entities.SaleOrder, error)
	ListByCustomerCPF(ctx context.Context, cpf string) ([]entities.SaleOrder, error)
}

// SaleOptions holds the business policies of the sale workflow.
type SaleOptions struct {
	// EnforceMinPrice rejects proposals below the vehicle list price.
	EnforceMinPrice bool
}

type SaleUseCase struct {
	sales    interfaces.ISaleRepository
	vehicles interfaces.IVehicleReader
	opts     SaleOptions
	log      *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

var _ ISaleUseCase = (*SaleUseCase)(nil)

func NewSaleUseCase(sales interfaces.ISaleRepository, vehicles interfaces.IVehicleReader, opts SaleOptions, log *zap.Logger, m *metrics.Metrics) *SaleUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &SaleUseCase{
		sales:    sales,
		vehicles: vehicles,
		opts:     opts,
		log:      log,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (u *SaleUseCase) CreateSale(ctx context.Context, customer entities.Customer, vin string, price decimal.Decimal) (entities.SaleOrder, error) {
	vin = strings.TrimSpace(vin)
	log := u.log.With(zap.String("vin", vin))
	log.Debug("[sale][usecase] create start", zap.String("price", price.String()))

	if vin == "" {
		return entities.SaleOrder{}, fmt.Errorf("%w: vehicle VIN is required", entities.ErrSaleInvalid)
	}
	if !price.IsPositive() {
		return entities.SaleOrder{}, fmt.Errorf("%w: sale price must be greater than zero", entities.ErrSaleInvalid)
	}
	if strings.TrimSpace(customer.Name) == "" {
		return entities.SaleOrder{}, fmt.Errorf("%w: customer name is required", entities.ErrSaleInvalid)
	}
	customerCPF, err := valueobjects.NewCPF(customer.CPF)
	if err != nil {
		log.Info("[sale][usecase] invalid customer cpf")
		return entities.SaleOrder{}, err
	}

	vehicle, err := u.vehicles.GetByVIN(ctx, vin)
	if err != nil {
		log.Error("[sale][usecase] failed loading vehicle", zap.Error(err))
		return entities.SaleOrder{}, err
	}
	if vehicle.ID == "" {
		log.Info("[sale][usecase] vehicle not found")
		return entities.SaleOrder{}, fmt.Errorf("%w: vehicle with VIN %s does not exist", entities.ErrSaleInvalid, vin)
	}
	if !vehicle.IsAvailable() {
		log.Info("[sale][usecase] vehicle not available", zap.String("status", string(vehicle.Status)))
		return entities.SaleOrder{}, fmt.Errorf("%w: vehicle with VIN %s is not available for sale", entities.ErrSaleInvalid, vin)
	}
	if u.opts.EnforceMinPrice && price.LessThan(vehicle.Price) {
		log.Info("[sale][usecase] price below vehicle price", zap.String("vehicle_price", vehicle.Price.String()))
		return entities.SaleOrder{}, fmt.Errorf("%w: sale price cannot be lower than the vehicle price", entities.ErrSaleInvalid)
	}

	sale, err := entities.NewSaleOrder(customer.Name, customerCPF, vehicle.VIN, vehicle.ID, price, u.now())
	if err != nil {
		return entities.SaleOrder{}, err
	}

	created, err := u.sales.Create(ctx, sale)
	if err != nil {
		log.Error("[sale][usecase] create failed", zap.Error(err))
		return entities.SaleOrder{}, err
	}

	u.metrics.IncrementSalesCreated()
	log.Info("[sale][usecase] sale created", zap.String("sale_id", created.ID), zap.String("vehicle_id", created.VehicleID))
	return created, nil
}

// CompleteSale applies the payment outcome to a PENDING sale. The payer must be
// the customer of the sale. A successful payment completes the sale and marks
// the vehicle SOLD in one storage write; a failed one cancels the sale.
func (u *SaleUseCase) CompleteSale(ctx context.Context, saleID string, success bool, payerCPF string) (entities.SaleOrder, error) {
	saleID = strings.TrimSpace(saleID)
	log := u.log.With(zap.String("sale_id", saleID), zap.Bool("success", success))
	log.Debug("[sale][usecase] complete start")

	if saleID == "" {
		return entities.SaleOrder{}, ErrInvalidSaleID
	}

	sale, err := u.sales.GetByID(ctx, saleID)
	if err != nil {
		log.Error("[sale][usecase] failed loading sale", zap.Error(err))
		return entities.SaleOrder{}, err
	}
	if sale.ID == "" {
		return entities.SaleOrder{}, ErrSaleNotFound
	}

	payer, err := valueobjects.NewCPF(payerCPF)
	if err != nil {
		log.Info("[sale][usecase] invalid payer cpf")
		return entities.SaleOrder{}, err
	}
	if !sale.PaidBy(payer) {
		log.Warn("[sale][usecase] payer cpf mismatch")
		return entities.SaleOrder{}, fmt.Errorf("%w: payer CPF does not match the customer CPF", entities.ErrSaleInvalid)
	}

	now := u.now()
	var settled entities.SaleOrder
	if success {
		if err := sale.Complete(now); err != nil {
			log.Info("[sale][usecase] sale not pending", zap.String("status", string(sale.Status)))
			return entities.SaleOrder{}, err
		}
		settled, err = u.sales.Complete(ctx, sale)
	} else {
		if err := sale.Cancel(now); err != nil {
			log.Info("[sale][usecase] sale not pending", zap.String("status", string(sale.Status)))
			return entities.SaleOrder{}, err
		}
		settled, err = u.sales.Cancel(ctx, sale)
	}
	if err != nil {
		switch {
		case errors.Is(err, entities.ErrVehicleAlreadySold):
			u.metrics.IncrementDoubleSaleRejected()
			log.Warn("[sale][usecase] vehicle already sold", zap.String("vehicle_id", sale.VehicleID))
		case errors.Is(err, entities.ErrSaleInvalidStatus):
			log.Info("[sale][usecase] sale settled concurrently")
		default:
			log.Error("[sale][usecase] settle failed", zap.Error(err))
		}
		return entities.SaleOrder{}, err
	}

	u.metrics.IncrementSalesSettled(string(settled.Status))
	log.Info("[sale][usecase] sale settled", zap.String("status", string(settled.Status)))
	return settled, nil
}

func (u *SaleUseCase) GetByID(ctx context.Context, id string) (entities.SaleOrder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.SaleOrder{}, ErrInvalidSaleID
	}

	s, err := u.sales.GetByID(ctx, id)
	if err != nil {
		return entities.SaleOrder{}, err
	}
	if s.ID == "" {
		return entities.SaleOrder{}, ErrSaleNotFound
	}
	return s, nil
}

func (u *SaleUseCase) ListAll(ctx context.Context) ([]entities.SaleOrder, error) {
	return u.sales.ListAll(ctx)
}

// ListByCustomerCPF validates the filter before reaching storage.
func (u *SaleUseCase) ListByCustomerCPF(ctx context.Context, cpf string) ([]entities.SaleOrder, error) {
	c, err := valueobjects.NewCPF(cpf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrSaleInvalid, err)
	}
	return u.sales.ListByCustomerCPF(ctx, c)
}
