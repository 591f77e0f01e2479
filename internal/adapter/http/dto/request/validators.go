package request

import (
	"dealership/internal/domain/valueobjects"

	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom tags used by the request DTOs.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return valueobjects.IsValidCPF(fl.Field().String())
	})
}
