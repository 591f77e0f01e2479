package response

import (
	"time"

	"dealership/internal/domain/entities"

	"github.com/shopspring/decimal"
)

type VehicleResponse struct {
	ID        string          `json:"id"`
	Make      string          `json:"make"`
	Model     string          `json:"model"`
	Year      int             `json:"year"`
	VIN       string          `json:"vin"`
	Color     string          `json:"color"`
	Status    string          `json:"status"`
	Price     decimal.Decimal `json:"price" swaggertype:"string"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func FromVehicle(v entities.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:        v.ID,
		Make:      v.Make,
		Model:     v.Model,
		Year:      v.Year,
		VIN:       v.VIN,
		Color:     v.Color,
		Status:    string(v.Status),
		Price:     v.Price,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func FromVehicles(vs []entities.Vehicle) []VehicleResponse {
	out := make([]VehicleResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, FromVehicle(v))
	}
	return out
}
