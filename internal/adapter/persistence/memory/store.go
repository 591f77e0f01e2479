package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"dealership/internal/domain/entities"
	"dealership/internal/domain/valueobjects"
	"dealership/internal/usecase"
	"dealership/internal/usecase/interfaces"

	"github.com/google/uuid"
)

// Store keeps vehicles and sales in process memory. Both repositories share
// one lock so that completing a sale and selling its vehicle happen in a
// single critical section.
type Store struct {
	mu       sync.RWMutex
	vehicles map[string]entities.Vehicle
	vinIndex map[string]string
	sales    map[string]entities.SaleOrder
}

func NewStore() *Store {
	return &Store{
		vehicles: make(map[string]entities.Vehicle),
		vinIndex: make(map[string]string),
		sales:    make(map[string]entities.SaleOrder),
	}
}

func (s *Store) Vehicles() *VehicleRepository { return &VehicleRepository{store: s} }

func (s *Store) Sales() *SaleRepository { return &SaleRepository{store: s} }

type VehicleRepository struct {
	store *Store
}

var _ interfaces.IVehicleRepository = (*VehicleRepository)(nil)

func (r *VehicleRepository) Create(_ context.Context, v entities.Vehicle) (entities.Vehicle, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.vinIndex[v.VIN]; taken {
		return entities.Vehicle{}, fmt.Errorf("%w: %s", usecase.ErrDuplicateVIN, v.VIN)
	}
	v.ID = uuid.NewString()
	s.vehicles[v.ID] = v
	s.vinIndex[v.VIN] = v.ID
	return v, nil
}

func (r *VehicleRepository) GetByID(_ context.Context, id string) (entities.Vehicle, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vehicles[id], nil
}

func (r *VehicleRepository) GetByVIN(_ context.Context, vin string) (entities.Vehicle, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.vinIndex[vin]
	if !ok {
		return entities.Vehicle{}, nil
	}
	return s.vehicles[id], nil
}

func (r *VehicleRepository) ListByStatus(_ context.Context, status entities.VehicleStatus) ([]entities.Vehicle, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Vehicle, 0)
	for _, v := range s.vehicles {
		if v.Status == status {
			out = append(out, v)
		}
	}
	entities.SortByPrice(out)
	return out, nil
}

func (r *VehicleRepository) Update(_ context.Context, v entities.Vehicle) (entities.Vehicle, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.vehicles[v.ID]
	if !ok {
		return entities.Vehicle{}, nil
	}
	current.Make = v.Make
	current.Model = v.Model
	current.Year = v.Year
	current.Color = v.Color
	current.Price = v.Price
	current.UpdatedAt = v.UpdatedAt
	s.vehicles[v.ID] = current
	return current, nil
}

type SaleRepository struct {
	store *Store
}

var _ interfaces.ISaleRepository = (*SaleRepository)(nil)

func (r *SaleRepository) Create(_ context.Context, sale entities.SaleOrder) (entities.SaleOrder, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	sale.ID = uuid.NewString()
	s.sales[sale.ID] = sale
	return sale, nil
}

func (r *SaleRepository) GetByID(_ context.Context, id string) (entities.SaleOrder, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sales[id], nil
}

func (r *SaleRepository) ListAll(_ context.Context) ([]entities.SaleOrder, error) {
	return r.filter(func(entities.SaleOrder) bool { return true }), nil
}

func (r *SaleRepository) ListByCustomerCPF(_ context.Context, cpf valueobjects.CPF) ([]entities.SaleOrder, error) {
	return r.filter(func(sale entities.SaleOrder) bool { return sale.CustomerCPF.Equal(cpf) }), nil
}

func (r *SaleRepository) filter(keep func(entities.SaleOrder) bool) []entities.SaleOrder {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.SaleOrder, 0)
	for _, sale := range s.sales {
		if keep(sale) {
			out = append(out, sale)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *SaleRepository) Complete(_ context.Context, sale entities.SaleOrder) (entities.SaleOrder, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensurePendingLocked(sale.ID); err != nil {
		return entities.SaleOrder{}, err
	}
	vehicle, ok := s.vehicles[sale.VehicleID]
	if !ok {
		return entities.SaleOrder{}, fmt.Errorf("vehicle %s of sale %s does not exist", sale.VehicleID, sale.ID)
	}
	if err := vehicle.MarkAsSold(sale.UpdatedAt); err != nil {
		return entities.SaleOrder{}, err
	}

	s.vehicles[vehicle.ID] = vehicle
	s.sales[sale.ID] = sale
	return sale, nil
}

func (r *SaleRepository) Cancel(_ context.Context, sale entities.SaleOrder) (entities.SaleOrder, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensurePendingLocked(sale.ID); err != nil {
		return entities.SaleOrder{}, err
	}
	s.sales[sale.ID] = sale
	return sale, nil
}

func (s *Store) ensurePendingLocked(id string) error {
	stored, ok := s.sales[id]
	if !ok || !stored.IsPending() {
		return fmt.Errorf("%w: sale %s", entities.ErrSaleInvalidStatus, id)
	}
	return nil
}
