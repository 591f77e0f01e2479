package routes

import (
	"dealership/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathVehicles = "/vehicles"
)

func addVehicleRoutes(rg *gin.RouterGroup, h *handlers.VehicleHandler) {
	vehicles := rg.Group(PathVehicles)
	{
		vehicles.POST("", h.CreateVehicle)
		vehicles.PUT("/:id", h.UpdateVehicle)
		vehicles.GET("/available", h.ListAvailable)
		vehicles.GET("/sold", h.ListSold)
		vehicles.GET("/:vin", h.GetVehicleByVIN)
	}
}
