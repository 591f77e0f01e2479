package response

import (
	"time"

	"dealership/internal/domain/entities"

	"github.com/shopspring/decimal"
)

// SaleResponse exposes the customer CPF in its display form.
type SaleResponse struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customer_name"`
	CustomerCPF  string          `json:"customer_cpf"`
	VehicleVIN   string          `json:"vehicle_vin"`
	VehicleID    string          `json:"vehicle_id"`
	SalePrice    decimal.Decimal `json:"sale_price" swaggertype:"string"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func FromSale(s entities.SaleOrder) SaleResponse {
	res := SaleResponse{
		ID:           s.ID,
		CustomerName: s.CustomerName,
		CustomerCPF:  s.CustomerCPF.Formatted(),
		VehicleVIN:   s.VehicleVIN,
		VehicleID:    s.VehicleID,
		SalePrice:    s.SalePrice,
		Status:       string(s.Status),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	if !s.CompletedAt.IsZero() {
		completedAt := s.CompletedAt
		res.CompletedAt = &completedAt
	}
	return res
}

func FromSales(ss []entities.SaleOrder) []SaleResponse {
	out := make([]SaleResponse, 0, len(ss))
	for _, s := range ss {
		out = append(out, FromSale(s))
	}
	return out
}
