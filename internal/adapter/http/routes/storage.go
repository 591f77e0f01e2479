package routes

import (
	"context"
	"fmt"

	"dealership/internal/adapter/persistence/memory"
	"dealership/internal/adapter/persistence/postgres"
	"dealership/internal/adapter/persistence/repository"
	"dealership/internal/infrastructure/config"
	"dealership/internal/infrastructure/database"
	"dealership/internal/usecase/interfaces"

	"go.uber.org/zap"
)

type repositories struct {
	vehicles interfaces.IVehicleRepository
	sales    interfaces.ISaleRepository
	close    func() error
}

func noopClose() error { return nil }

func buildRepositories(ctx context.Context, cfg config.Config, log *zap.Logger) (repositories, error) {
	switch cfg.Storage.Driver {
	case config.StorageDynamoDB:
		ddb, err := database.ConnectDynamoDB(ctx, cfg.DynamoDB, log)
		if err != nil {
			return repositories{}, err
		}
		return repositories{
			vehicles: repository.NewVehicleDynamoRepository(ddb, cfg.DynamoDB.VehiclesTable),
			sales:    repository.NewSaleDynamoRepository(ddb, cfg.DynamoDB.SalesTable, cfg.DynamoDB.VehiclesTable),
			close:    noopClose,
		}, nil

	case config.StoragePostgres:
		db, err := database.ConnectPostgres(ctx, cfg.Postgres, log)
		if err != nil {
			return repositories{}, err
		}
		if cfg.Postgres.Migrate {
			m, err := database.NewMigrator(db, log)
			if err != nil {
				_ = db.Close()
				return repositories{}, err
			}
			if err := m.Up(); err != nil {
				_ = db.Close()
				return repositories{}, err
			}
		}
		return repositories{
			vehicles: postgres.NewVehicleRepository(db),
			sales:    postgres.NewSaleRepository(db),
			close:    db.Close,
		}, nil

	case config.StorageMemory:
		log.Warn("[routes] using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return repositories{vehicles: store.Vehicles(), sales: store.Sales(), close: noopClose}, nil

	default:
		return repositories{}, fmt.Errorf("%w: unknown storage driver %q", config.ErrInvalidConfig, cfg.Storage.Driver)
	}
}
