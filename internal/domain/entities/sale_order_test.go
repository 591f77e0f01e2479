package entities

import (
	"testing"
	"time"

	"dealership/internal/domain/valueobjects"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingSale(t *testing.T) SaleOrder {
	t.Helper()
	s, err := NewSaleOrder("João Silva", valueobjects.MustCPF("12345678909"), "VIN1", "veh-1", decimal.NewFromInt(45000), time.Now().UTC())
	require.NoError(t, err)
	return s
}

func TestNewSaleOrder(t *testing.T) {
	now := time.Now().UTC()
	cpf := valueobjects.MustCPF("12345678909")

	t.Run("valid sale starts pending", func(t *testing.T) {
		s, err := NewSaleOrder(" João Silva ", cpf, "VIN1", "veh-1", decimal.RequireFromString("45000.50"), now)
		require.NoError(t, err)
		assert.Equal(t, SaleStatusPending, s.Status)
		assert.Equal(t, "João Silva", s.CustomerName)
		assert.True(t, s.IsPending())
		assert.True(t, s.CompletedAt.IsZero())
	})

	cases := []struct {
		name      string
		customer  string
		cpf       valueobjects.CPF
		vin       string
		vehicleID string
		price     decimal.Decimal
	}{
		{name: "missing name", customer: "", cpf: cpf, vin: "VIN1", vehicleID: "veh-1", price: decimal.NewFromInt(1)},
		{name: "missing cpf", customer: "A", cpf: valueobjects.CPF{}, vin: "VIN1", vehicleID: "veh-1", price: decimal.NewFromInt(1)},
		{name: "missing vin", customer: "A", cpf: cpf, vin: " ", vehicleID: "veh-1", price: decimal.NewFromInt(1)},
		{name: "missing vehicle id", customer: "A", cpf: cpf, vin: "VIN1", vehicleID: "", price: decimal.NewFromInt(1)},
		{name: "zero price", customer: "A", cpf: cpf, vin: "VIN1", vehicleID: "veh-1", price: decimal.Zero},
		{name: "negative price", customer: "A", cpf: cpf, vin: "VIN1", vehicleID: "veh-1", price: decimal.NewFromInt(-10)},
		{name: "sub-cent price", customer: "A", cpf: cpf, vin: "VIN1", vehicleID: "veh-1", price: decimal.RequireFromString("45000.999")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSaleOrder(tc.customer, tc.cpf, tc.vin, tc.vehicleID, tc.price, now)
			assert.ErrorIs(t, err, ErrSaleInvalid)
		})
	}
}

func TestSaleOrder_Transitions(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("pending to completed", func(t *testing.T) {
		s := pendingSale(t)
		require.NoError(t, s.Complete(at))
		assert.Equal(t, SaleStatusCompleted, s.Status)
		assert.Equal(t, at, s.CompletedAt)
		assert.True(t, s.Status.IsTerminal())
	})

	t.Run("pending to canceled", func(t *testing.T) {
		s := pendingSale(t)
		require.NoError(t, s.Cancel(at))
		assert.Equal(t, SaleStatusCanceled, s.Status)
		assert.True(t, s.CompletedAt.IsZero())
		assert.True(t, s.Status.IsTerminal())
	})

	t.Run("terminal states reject every transition", func(t *testing.T) {
		for _, status := range []SaleStatus{SaleStatusCompleted, SaleStatusCanceled} {
			s := pendingSale(t)
			s.Status = status
			before := s

			assert.ErrorIs(t, s.Complete(at), ErrSaleInvalidStatus)
			assert.ErrorIs(t, s.Cancel(at), ErrSaleInvalidStatus)
			assert.Equal(t, before, s)
		}
	})
}

func TestSaleOrder_PaidBy(t *testing.T) {
	s := pendingSale(t)

	assert.True(t, s.PaidBy(valueobjects.MustCPF("123.456.789-09")))
	assert.False(t, s.PaidBy(valueobjects.MustCPF("52998224725")))
	assert.False(t, s.PaidBy(valueobjects.CPF{}))
}
