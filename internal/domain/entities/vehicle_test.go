package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVehicle(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	t.Run("valid vehicle starts available", func(t *testing.T) {
		v, err := NewVehicle(" Toyota ", "Corolla", 2023, "1HGBH41JXMN109186", "Blue", decimal.NewFromInt(25000), now)
		require.NoError(t, err)
		assert.Equal(t, "Toyota", v.Make)
		assert.Equal(t, VehicleStatusAvailable, v.Status)
		assert.True(t, v.IsAvailable())
		assert.Equal(t, now, v.CreatedAt)
		assert.Empty(t, v.ID)
	})

	cases := []struct {
		name  string
		make  string
		model string
		year  int
		vin   string
		price decimal.Decimal
	}{
		{name: "empty make", make: " ", model: "Corolla", year: 2023, vin: "VIN1", price: decimal.NewFromInt(1)},
		{name: "empty model", make: "Toyota", model: "", year: 2023, vin: "VIN1", price: decimal.NewFromInt(1)},
		{name: "zero year", make: "Toyota", model: "Corolla", year: 0, vin: "VIN1", price: decimal.NewFromInt(1)},
		{name: "empty vin", make: "Toyota", model: "Corolla", year: 2023, vin: "", price: decimal.NewFromInt(1)},
		{name: "negative price", make: "Toyota", model: "Corolla", year: 2023, vin: "VIN1", price: decimal.NewFromInt(-1)},
		{name: "sub-cent price", make: "Toyota", model: "Corolla", year: 2023, vin: "VIN1", price: decimal.RequireFromString("25000.005")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewVehicle(tc.make, tc.model, tc.year, tc.vin, "", tc.price, now)
			assert.ErrorIs(t, err, ErrVehicleInvalid)
		})
	}

	t.Run("zero price is allowed", func(t *testing.T) {
		_, err := NewVehicle("Toyota", "Corolla", 2023, "VIN1", "", decimal.Zero, now)
		assert.NoError(t, err)
	})

	t.Run("trailing zeros beyond cents are allowed", func(t *testing.T) {
		v, err := NewVehicle("Toyota", "Corolla", 2023, "VIN1", "", decimal.RequireFromString("25000.500"), now)
		require.NoError(t, err)
		assert.True(t, v.Price.Equal(decimal.RequireFromString("25000.5")))
	})
}

func TestVehicle_MarkAsSold(t *testing.T) {
	now := time.Now().UTC()
	v := Vehicle{VIN: "VIN1", Status: VehicleStatusAvailable}

	require.NoError(t, v.MarkAsSold(now))
	assert.Equal(t, VehicleStatusSold, v.Status)
	assert.Equal(t, now, v.UpdatedAt)

	err := v.MarkAsSold(now.Add(time.Minute))
	assert.ErrorIs(t, err, ErrVehicleAlreadySold)
	assert.Equal(t, now, v.UpdatedAt)
}

func TestParseVehicleStatus(t *testing.T) {
	s, err := ParseVehicleStatus("available")
	require.NoError(t, err)
	assert.Equal(t, VehicleStatusAvailable, s)

	s, err = ParseVehicleStatus(" SOLD ")
	require.NoError(t, err)
	assert.Equal(t, VehicleStatusSold, s)

	_, err = ParseVehicleStatus("reserved")
	assert.ErrorIs(t, err, ErrInvalidVehicleStatus)
}

func TestSortByPrice(t *testing.T) {
	base := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	vs := []Vehicle{
		{ID: "expensive", Price: decimal.NewFromInt(90000), CreatedAt: base},
		{ID: "cheap-newer", Price: decimal.RequireFromString("30000.00"), CreatedAt: base.Add(time.Hour)},
		{ID: "mid", Price: decimal.NewFromInt(50000), CreatedAt: base},
		{ID: "cheap-older", Price: decimal.NewFromInt(30000), CreatedAt: base},
	}

	SortByPrice(vs)

	ids := make([]string, 0, len(vs))
	for _, v := range vs {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"cheap-older", "cheap-newer", "mid", "expensive"}, ids)
}
