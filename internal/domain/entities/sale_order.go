package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dealership/internal/domain/valueobjects"

	"github.com/shopspring/decimal"
)

var (
	ErrSaleInvalid       = errors.New("invalid sale")
	ErrSaleInvalidStatus = errors.New("sale is not in PENDING status")
)

// SaleStatus represents the payment lifecycle of a sale order.
//
// PENDING is the initial state. COMPLETED and CANCELED are terminal and can only
// be reached from PENDING, through the payment webhook.
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusCanceled  SaleStatus = "CANCELED"
)

func (s SaleStatus) IsTerminal() bool {
	return s == SaleStatusCompleted || s == SaleStatusCanceled
}

// Customer is the authenticated buyer, as supplied by the caller.
type Customer struct {
	Name string
	CPF  string
}

// SaleOrder is the record of a vehicle purchase and its payment lifecycle.
//
// Storage model:
//   - PK: id (assigned by storage)
//   - index: customer_cpf
//
// VehicleVIN is informational; VehicleID is the reference resolved at creation.
type SaleOrder struct {
	ID           string
	CustomerName string
	CustomerCPF  valueobjects.CPF
	VehicleVIN   string
	VehicleID    string
	SalePrice    decimal.Decimal
	Status       SaleStatus
	CreatedAt    time.Time
	CompletedAt  time.Time
	UpdatedAt    time.Time
}

// NewSaleOrder builds a PENDING sale order for an already resolved vehicle.
func NewSaleOrder(customerName string, customerCPF valueobjects.CPF, vehicleVIN, vehicleID string, price decimal.Decimal, now time.Time) (SaleOrder, error) {
	s := SaleOrder{
		CustomerName: strings.TrimSpace(customerName),
		CustomerCPF:  customerCPF,
		VehicleVIN:   strings.TrimSpace(vehicleVIN),
		VehicleID:    strings.TrimSpace(vehicleID),
		SalePrice:    price,
		Status:       SaleStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Validate(); err != nil {
		return SaleOrder{}, err
	}
	return s, nil
}

func (s SaleOrder) Validate() error {
	switch {
	case s.CustomerName == "":
		return fmt.Errorf("%w: customer name is required", ErrSaleInvalid)
	case s.CustomerCPF.IsZero():
		return fmt.Errorf("%w: customer CPF is required", ErrSaleInvalid)
	case s.VehicleVIN == "":
		return fmt.Errorf("%w: vehicle VIN is required", ErrSaleInvalid)
	case s.VehicleID == "":
		return fmt.Errorf("%w: vehicle ID is required", ErrSaleInvalid)
	case !s.SalePrice.IsPositive():
		return fmt.Errorf("%w: sale price must be greater than zero", ErrSaleInvalid)
	case !fitsPriceScale(s.SalePrice):
		return fmt.Errorf("%w: sale price cannot have more than %d decimal places", ErrSaleInvalid, PriceScale)
	case s.Status == "":
		return fmt.Errorf("%w: sale status is required", ErrSaleInvalid)
	}
	return nil
}

func (s SaleOrder) IsPending() bool {
	return s.Status == SaleStatusPending
}

// PaidBy reports whether payer is the customer of this sale.
func (s SaleOrder) PaidBy(payer valueobjects.CPF) bool {
	return !payer.IsZero() && s.CustomerCPF.Equal(payer)
}

// Complete moves a PENDING sale to COMPLETED and records the completion time.
func (s *SaleOrder) Complete(at time.Time) error {
	if err := s.ensurePending(); err != nil {
		return err
	}
	s.Status = SaleStatusCompleted
	s.CompletedAt = at
	s.UpdatedAt = at
	return nil
}

// Cancel moves a PENDING sale to CANCELED.
func (s *SaleOrder) Cancel(at time.Time) error {
	if err := s.ensurePending(); err != nil {
		return err
	}
	s.Status = SaleStatusCanceled
	s.UpdatedAt = at
	return nil
}

func (s SaleOrder) ensurePending() error {
	if s.Status != SaleStatusPending {
		return fmt.Errorf("%w: sale %s is %s", ErrSaleInvalidStatus, s.ID, s.Status)
	}
	return nil
}
