package handlers

import (
	"net/http"
	"strings"

	request "dealership/internal/adapter/http/dto/request"
	response "dealership/internal/adapter/http/dto/response"
	"dealership/internal/adapter/http/middleware"
	"dealership/internal/domain/entities"
	"dealership/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SaleHandler handles HTTP requests for sale orders and the payment webhook.
type SaleHandler struct {
	usecase usecase.ISaleUseCase
	log     *zap.Logger
}

func NewSaleHandler(uc usecase.ISaleUseCase, log *zap.Logger) *SaleHandler {
	return &SaleHandler{usecase: uc, log: log}
}

// CreateSale godoc
//
//	@Summary		Open a sale for the authenticated customer
//	@Description	The sale starts PENDING; the vehicle is only marked SOLD when the payment webhook confirms it.
//	@Tags			sales
//	@Accept			json
//	@Produce		json
//	@Param			request	body		request.CreateSaleRequest	true	"Sale"
//	@Success		201		{object}	response.SaleResponse
//	@Failure		400		{object}	pkg.HTTPError
//	@Failure		401		{object}	pkg.HTTPError
//	@Failure		500		{object}	pkg.HTTPError
//	@Security		Bearer
//	@Router			/sales [post]
func (h *SaleHandler) CreateSale(c *gin.Context) {
	customer, ok := middleware.CustomerFrom(c)
	if !ok {
		c.JSON(errMissingIdentity.HTTPStatus, errMissingIdentity.ToHTTPError())
		return
	}

	var payload request.CreateSaleRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPayload.HTTPStatus, errInvalidPayload.ToHTTPError())
		return
	}

	sale, err := h.usecase.CreateSale(c.Request.Context(), customer, payload.VehicleVIN, payload.Price())
	if err != nil {
		h.fail(c, "create", err)
		return
	}
	c.JSON(http.StatusCreated, response.FromSale(sale))
}

// GetSale godoc
//
//	@Summary	Get a sale by ID
//	@Tags		sales
//	@Produce	json
//	@Param		id	path		string	true	"Sale ID"
//	@Success	200	{object}	response.SaleResponse
//	@Failure	404	{object}	pkg.HTTPError
//	@Security	Bearer
//	@Router		/sales/{id} [get]
func (h *SaleHandler) GetSale(c *gin.Context) {
	sale, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, response.FromSale(sale))
}

// ListSales godoc
//
//	@Summary	List sales, optionally filtered by customer CPF
//	@Tags		sales
//	@Produce	json
//	@Param		cpf	query		string	false	"Customer CPF (with or without separators)"
//	@Success	200	{array}		response.SaleResponse
//	@Failure	400	{object}	pkg.HTTPError
//	@Security	Bearer
//	@Router		/sales [get]
func (h *SaleHandler) ListSales(c *gin.Context) {
	var (
		sales []entities.SaleOrder
		err   error
	)
	if cpf, ok := c.GetQuery("cpf"); ok {
		sales, err = h.usecase.ListByCustomerCPF(c.Request.Context(), cpf)
	} else {
		sales, err = h.usecase.ListAll(c.Request.Context())
	}
	if err != nil {
		h.fail(c, "list", err)
		return
	}
	c.JSON(http.StatusOK, response.FromSales(sales))
}

// PaymentWebhook godoc
//
//	@Summary		Payment provider notification
//	@Description	success=true completes the sale and marks the vehicle SOLD; success=false cancels it.
//	@Tags			sales
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Sale ID"
//	@Param			request	body		request.PaymentWebhookRequest	true	"Payment result"
//	@Success		200		{object}	response.SaleResponse
//	@Failure		400		{object}	pkg.HTTPError
//	@Failure		404		{object}	pkg.HTTPError
//	@Failure		409		{object}	pkg.HTTPError
//	@Failure		500		{object}	pkg.HTTPError
//	@Router			/sales/payment-webhook/{id} [post]
func (h *SaleHandler) PaymentWebhook(c *gin.Context) {
	saleID := c.Param("id")
	var payload request.PaymentWebhookRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.log.Info("[sale][handler] invalid webhook payload", zap.String("sale_id", saleID), zap.Error(err))
		c.JSON(errInvalidPayload.HTTPStatus, errInvalidPayload.ToHTTPError())
		return
	}

	sale, err := h.usecase.CompleteSale(c.Request.Context(), saleID, *payload.Success, strings.TrimSpace(payload.PayerCPF))
	if err != nil {
		h.fail(c, "webhook", err)
		return
	}
	c.JSON(http.StatusOK, response.FromSale(sale))
}

func (h *SaleHandler) fail(c *gin.Context, op string, err error) {
	appErr := mapError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		h.log.Error("[sale][handler] "+op+" failed", zap.Error(err))
	} else {
		h.log.Debug("[sale][handler] "+op+" rejected", zap.String("code", appErr.Code), zap.Error(err))
	}
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}
