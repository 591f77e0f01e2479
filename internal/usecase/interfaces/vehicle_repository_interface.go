package interfaces

//go:generate mockgen -source=vehicle_repository_interface.go -destination=mocks/vehicle_repository_interface.go -package=mock_interfaces

import (
	"context"

	"dealership/internal/domain/entities"
)

// IVehicleReader is the read-only view of the stock used by the sale workflow.
//
// Lookups return the zero Vehicle (empty ID) and a nil error when nothing matches.
type IVehicleReader interface {
	GetByVIN(ctx context.Context, vin string) (entities.Vehicle, error)
}

// IVehicleRepository abstracts persistence for Vehicle.
//
// Create assigns the vehicle ID. Update never touches vin or status; the status
// only changes through ISaleRepository.Complete.
type IVehicleRepository interface {
	IVehicleReader
	Create(ctx context.Context, v entities.Vehicle) (entities.Vehicle, error)
	GetByID(ctx context.Context, id string) (entities.Vehicle, error)
	ListByStatus(ctx context.Context, status entities.VehicleStatus) ([]entities.Vehicle, error)
	Update(ctx context.Context, v entities.Vehicle) (entities.Vehicle, error)
}
