package request

import (
	"github.com/shopspring/decimal"
)

// CreateSaleRequest is the payload for POST /sales. The buyer comes from the
// authenticated identity, never from the body.
type CreateSaleRequest struct {
	VehicleVIN string           `json:"vehicle_vin" binding:"required"`
	SalePrice  *decimal.Decimal `json:"sale_price" binding:"required" swaggertype:"number"`
}

func (r CreateSaleRequest) Price() decimal.Decimal {
	return priceOrZero(r.SalePrice)
}

// PaymentWebhookRequest is the notification sent by the payment provider.
//
// success is a pointer so that an explicit false is told apart from a missing field.
type PaymentWebhookRequest struct {
	Success  *bool  `json:"success" binding:"required"`
	PayerCPF string `json:"payer_cpf" binding:"required,cpf"`
}
