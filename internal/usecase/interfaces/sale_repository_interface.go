package interfaces

//go:generate mockgen -source=sale_repository_interface.go -destination=mocks/sale_repository_interface.go -package=mock_interfaces

import (
	"context"

	"dealership/internal/domain/entities"
	"dealership/internal/domain/valueobjects"
)

// ISaleRepository abstracts persistence for SaleOrder.
//
// Contract shared by every adapter:
//   - Create assigns the sale ID.
//   - GetByID returns the zero SaleOrder and a nil error when the sale does not exist.
//   - Complete and Cancel are compare-and-set on the stored status being PENDING and
//     return entities.ErrSaleInvalidStatus when another writer got there first.
//   - Complete also flips the sale's vehicle from AVAILABLE to SOLD in the same
//     transaction and returns entities.ErrVehicleAlreadySold, persisting nothing,
//     when the vehicle was already sold.
type ISaleRepository interface {
	Create(ctx context.Context, s entities.SaleOrder) (entities.SaleOrder, error)
	GetByID(ctx context.Context, id string) (entities.SaleOrder, error)
	ListAll(ctx context.Context) ([]entities.SaleOrder, error)
	ListByCustomerCPF(ctx context.Context, cpf valueobjects.CPF) ([]entities.SaleOrder, error)
	Complete(ctx context.Context, s entities.SaleOrder) (entities.SaleOrder, error)
	Cancel(ctx context.Context, s entities.SaleOrder) (entities.SaleOrder, error)
}
