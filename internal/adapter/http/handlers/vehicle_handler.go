package handlers

import (
	"net/http"

	request "dealership/internal/adapter/http/dto/request"
	response "dealership/internal/adapter/http/dto/response"
	"dealership/internal/domain/entities"
	"dealership/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VehicleHandler handles HTTP requests for the vehicle stock.
type VehicleHandler struct {
	usecase usecase.IVehicleUseCase
	log     *zap.Logger
}

func NewVehicleHandler(uc usecase.IVehicleUseCase, log *zap.Logger) *VehicleHandler {
	return &VehicleHandler{usecase: uc, log: log}
}

// CreateVehicle godoc
//
//	@Summary		Add a vehicle to the stock
//	@Tags			vehicles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		request.CreateVehicleRequest	true	"Vehicle"
//	@Success		201		{object}	response.VehicleResponse
//	@Failure		400		{object}	pkg.HTTPError
//	@Failure		409		{object}	pkg.HTTPError
//	@Failure		500		{object}	pkg.HTTPError
//	@Security		Bearer
//	@Router			/vehicles [post]
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var payload request.CreateVehicleRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPayload.HTTPStatus, errInvalidPayload.ToHTTPError())
		return
	}

	v, err := h.usecase.CreateVehicle(c.Request.Context(), payload.ToInput())
	if err != nil {
		h.fail(c, "create", err)
		return
	}
	c.JSON(http.StatusCreated, response.FromVehicle(v))
}

// UpdateVehicle godoc
//
//	@Summary		Update a vehicle
//	@Description	VIN and status are not changed by this operation.
//	@Tags			vehicles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Vehicle ID"
//	@Param			request	body		request.UpdateVehicleRequest	true	"Vehicle"
//	@Success		200		{object}	response.VehicleResponse
//	@Failure		400		{object}	pkg.HTTPError
//	@Failure		404		{object}	pkg.HTTPError
//	@Failure		500		{object}	pkg.HTTPError
//	@Security		Bearer
//	@Router			/vehicles/{id} [put]
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	var payload request.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPayload.HTTPStatus, errInvalidPayload.ToHTTPError())
		return
	}

	v, err := h.usecase.UpdateVehicle(c.Request.Context(), c.Param("id"), payload.ToInput())
	if err != nil {
		h.fail(c, "update", err)
		return
	}
	c.JSON(http.StatusOK, response.FromVehicle(v))
}

// GetVehicleByVIN godoc
//
//	@Summary	Get a vehicle by VIN
//	@Tags		vehicles
//	@Produce	json
//	@Param		vin	path		string	true	"Vehicle VIN"
//	@Success	200	{object}	response.VehicleResponse
//	@Failure	404	{object}	pkg.HTTPError
//	@Security	Bearer
//	@Router		/vehicles/{vin} [get]
func (h *VehicleHandler) GetVehicleByVIN(c *gin.Context) {
	v, err := h.usecase.GetByVIN(c.Request.Context(), c.Param("vin"))
	if err != nil {
		h.fail(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, response.FromVehicle(v))
}

// ListAvailable godoc
//
//	@Summary	List vehicles available for sale
//	@Tags		vehicles
//	@Produce	json
//	@Success	200	{array}	response.VehicleResponse
//	@Security	Bearer
//	@Router		/vehicles/available [get]
func (h *VehicleHandler) ListAvailable(c *gin.Context) {
	h.listByStatus(c, entities.VehicleStatusAvailable)
}

// ListSold godoc
//
//	@Summary	List sold vehicles
//	@Tags		vehicles
//	@Produce	json
//	@Success	200	{array}	response.VehicleResponse
//	@Security	Bearer
//	@Router		/vehicles/sold [get]
func (h *VehicleHandler) ListSold(c *gin.Context) {
	h.listByStatus(c, entities.VehicleStatusSold)
}

func (h *VehicleHandler) listByStatus(c *gin.Context, status entities.VehicleStatus) {
	vs, err := h.usecase.ListByStatus(c.Request.Context(), string(status))
	if err != nil {
		h.fail(c, "list", err)
		return
	}
	c.JSON(http.StatusOK, response.FromVehicles(vs))
}

func (h *VehicleHandler) fail(c *gin.Context, op string, err error) {
	appErr := mapError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		h.log.Error("[vehicle][handler] "+op+" failed", zap.Error(err))
	}
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}
