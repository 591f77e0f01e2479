package routes

import (
	"dealership/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathSales = "/sales"
)

func addSaleRoutes(rg *gin.RouterGroup, h *handlers.SaleHandler) {
	sales := rg.Group(PathSales)
	{
		sales.POST("", h.CreateSale)
		sales.GET("", h.ListSales)
		sales.GET("/:id", h.GetSale)
	}
}

// addWebhookRoutes registers the payment provider callback, which carries no
// customer identity.
func addWebhookRoutes(rg *gin.RouterGroup, h *handlers.SaleHandler) {
	rg.POST(PathSales+"/payment-webhook/:id", h.PaymentWebhook)
}
