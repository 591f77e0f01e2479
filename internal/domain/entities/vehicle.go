package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrVehicleInvalid       = errors.New("invalid vehicle")
	ErrVehicleAlreadySold   = errors.New("vehicle is already sold")
	ErrInvalidVehicleStatus = errors.New("invalid vehicle status")
)

// VehicleStatus is the availability of a vehicle in the dealership stock.
//
// Status transitions are owned by the sale workflow:
//   - new vehicles are AVAILABLE
//   - a completed sale marks the vehicle SOLD (never reverted)
type VehicleStatus string

const (
	VehicleStatusAvailable VehicleStatus = "AVAILABLE"
	VehicleStatusSold      VehicleStatus = "SOLD"
)

// ParseVehicleStatus accepts the status name in any case.
func ParseVehicleStatus(s string) (VehicleStatus, error) {
	switch VehicleStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case VehicleStatusAvailable:
		return VehicleStatusAvailable, nil
	case VehicleStatusSold:
		return VehicleStatusSold, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVehicleStatus, s)
}

// Vehicle is a car in the dealership stock.
//
// Storage model:
//   - PK: id
//   - unique: vin
//
// Price is the listed price and acts as the floor for sale negotiations.
type Vehicle struct {
	ID        string          `json:"id"`
	Make      string          `json:"make"`
	Model     string          `json:"model"`
	Year      int             `json:"year"`
	VIN       string          `json:"vin"`
	Color     string          `json:"color"`
	Status    VehicleStatus   `json:"status"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewVehicle builds an AVAILABLE vehicle. The ID is assigned by storage.
func NewVehicle(vehicleMake, model string, year int, vin, color string, price decimal.Decimal, now time.Time) (Vehicle, error) {
	v := Vehicle{
		Make:      strings.TrimSpace(vehicleMake),
		Model:     strings.TrimSpace(model),
		Year:      year,
		VIN:       strings.TrimSpace(vin),
		Color:     strings.TrimSpace(color),
		Status:    VehicleStatusAvailable,
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := v.Validate(); err != nil {
		return Vehicle{}, err
	}
	return v, nil
}

func (v Vehicle) Validate() error {
	switch {
	case v.Make == "":
		return fmt.Errorf("%w: make cannot be empty", ErrVehicleInvalid)
	case v.Model == "":
		return fmt.Errorf("%w: model cannot be empty", ErrVehicleInvalid)
	case v.Year <= 0:
		return fmt.Errorf("%w: year must be positive", ErrVehicleInvalid)
	case v.VIN == "":
		return fmt.Errorf("%w: vin cannot be empty", ErrVehicleInvalid)
	case v.Price.IsNegative():
		return fmt.Errorf("%w: price cannot be negative", ErrVehicleInvalid)
	case !fitsPriceScale(v.Price):
		return fmt.Errorf("%w: price cannot have more than %d decimal places", ErrVehicleInvalid, PriceScale)
	case v.Status != VehicleStatusAvailable && v.Status != VehicleStatusSold:
		return fmt.Errorf("%w: status %q", ErrVehicleInvalid, v.Status)
	}
	return nil
}

func (v Vehicle) IsAvailable() bool {
	return v.Status == VehicleStatusAvailable
}

// MarkAsSold fails loudly when the vehicle was already sold; callers rely on it
// to reject a second completed sale for the same vehicle.
func (v *Vehicle) MarkAsSold(at time.Time) error {
	if v.Status == VehicleStatusSold {
		return fmt.Errorf("%w: %s", ErrVehicleAlreadySold, v.VIN)
	}
	v.Status = VehicleStatusSold
	v.UpdatedAt = at
	return nil
}
