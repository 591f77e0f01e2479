package request

import (
	"dealership/internal/usecase"

	"github.com/shopspring/decimal"
)

// CreateVehicleRequest is the payload for POST /vehicles.
//
// price accepts a JSON number or a decimal string.
type CreateVehicleRequest struct {
	Make  string           `json:"make" binding:"required"`
	Model string           `json:"model" binding:"required"`
	Year  int              `json:"year" binding:"required,gt=0"`
	VIN   string           `json:"vin" binding:"required"`
	Color string           `json:"color"`
	Price *decimal.Decimal `json:"price" binding:"required" swaggertype:"number"`
}

func (r CreateVehicleRequest) ToInput() usecase.VehicleInput {
	return usecase.VehicleInput{
		Make:  r.Make,
		Model: r.Model,
		Year:  r.Year,
		VIN:   r.VIN,
		Color: r.Color,
		Price: priceOrZero(r.Price),
	}
}

// UpdateVehicleRequest is the payload for PUT /vehicles/:id. The VIN cannot change.
type UpdateVehicleRequest struct {
	Make  string           `json:"make" binding:"required"`
	Model string           `json:"model" binding:"required"`
	Year  int              `json:"year" binding:"required,gt=0"`
	Color string           `json:"color"`
	Price *decimal.Decimal `json:"price" binding:"required" swaggertype:"number"`
}

func (r UpdateVehicleRequest) ToInput() usecase.VehicleInput {
	return usecase.VehicleInput{
		Make:  r.Make,
		Model: r.Model,
		Year:  r.Year,
		Color: r.Color,
		Price: priceOrZero(r.Price),
	}
}

func priceOrZero(p *decimal.Decimal) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	return *p
}
