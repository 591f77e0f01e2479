package response

import (
	"testing"
	"time"

	"dealership/internal/domain/entities"
	"dealership/internal/domain/valueobjects"

	"github.com/shopspring/decimal"
)

func TestFromVehicle(t *testing.T) {
	now := time.Now().UTC()
	v := entities.Vehicle{
		ID:        "v-1",
		Make:      "Renault",
		Model:     "Kwid",
		Year:      2022,
		VIN:       "93YRBB000NJ000001",
		Color:     "Orange",
		Status:    entities.VehicleStatusSold,
		Price:     decimal.RequireFromString("59990.90"),
		CreatedAt: now,
		UpdatedAt: now,
	}

	res := FromVehicle(v)
	if res.ID != "v-1" || res.VIN != v.VIN || res.Status != "SOLD" {
		t.Fatalf("unexpected mapped fields: %+v", res)
	}
	if !res.Price.Equal(v.Price) {
		t.Fatalf("unexpected price: %s", res.Price)
	}

	list := FromVehicles(nil)
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list")
	}
}

func TestFromSale(t *testing.T) {
	now := time.Now().UTC()
	s := entities.SaleOrder{
		ID:           "s-1",
		CustomerName: "Paula",
		CustomerCPF:  valueobjects.MustCPF("12345678909"),
		VehicleVIN:   "VIN1",
		VehicleID:    "v-1",
		SalePrice:    decimal.NewFromInt(70000),
		Status:       entities.SaleStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res := FromSale(s)
	if res.CustomerCPF != "123.456.789-09" {
		t.Fatalf("expected formatted cpf, got %q", res.CustomerCPF)
	}
	if res.CompletedAt != nil {
		t.Fatalf("pending sale must not expose completed_at")
	}

	if err := s.Complete(now.Add(time.Minute)); err != nil {
		t.Fatalf("complete: %v", err)
	}
	res = FromSale(s)
	if res.Status != "COMPLETED" || res.CompletedAt == nil || !res.CompletedAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("unexpected completed sale response: %+v", res)
	}

	if got := FromSales([]entities.SaleOrder{s, s}); len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
}
