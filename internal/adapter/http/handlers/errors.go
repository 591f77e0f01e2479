package handlers

import (
	"errors"
	"net/http"

	"dealership/internal/domain/entities"
	"dealership/internal/domain/valueobjects"
	"dealership/internal/usecase"
	"dealership/pkg"
)

var (
	errInvalidPayload  = pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request payload", http.StatusBadRequest)
	errMissingIdentity = pkg.NewDomainErrorSimple("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
)

// mapError translates use-case errors into the HTTP error contract.
// Business-rule errors keep their detailed message for the client.
func mapError(err error) *pkg.AppError {
	switch {
	// an invalid CPF filter is wrapped as an invalid sale and reported as such
	case errors.Is(err, entities.ErrSaleInvalid):
		return pkg.NewDomainError("SALE_INVALID", err.Error(), err, http.StatusBadRequest)
	case errors.Is(err, valueobjects.ErrInvalidCPF):
		return pkg.NewDomainError("INVALID_CPF", err.Error(), err, http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidVIN), errors.Is(err, usecase.ErrInvalidSaleID),
		errors.Is(err, usecase.ErrInvalidVehicleID), errors.Is(err, entities.ErrInvalidVehicleStatus):
		return pkg.NewDomainError("INVALID_REQUEST", err.Error(), err, http.StatusBadRequest)
	case errors.Is(err, entities.ErrVehicleInvalid):
		return pkg.NewDomainError("VEHICLE_INVALID", err.Error(), err, http.StatusBadRequest)
	case errors.Is(err, usecase.ErrVehicleNotFound):
		return pkg.NewDomainErrorSimple("VEHICLE_NOT_FOUND", "Vehicle not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrSaleNotFound):
		return pkg.NewDomainErrorSimple("SALE_NOT_FOUND", "Sale not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrDuplicateVIN):
		return pkg.NewDomainError("DUPLICATE_VIN", err.Error(), err, http.StatusConflict)
	case errors.Is(err, entities.ErrSaleInvalidStatus):
		return pkg.NewDomainError("SALE_NOT_PENDING", "Sale is not in PENDING status", err, http.StatusConflict)
	case errors.Is(err, entities.ErrVehicleAlreadySold):
		return pkg.NewDomainError("VEHICLE_ALREADY_SOLD", "Vehicle is already sold", err, http.StatusConflict)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
