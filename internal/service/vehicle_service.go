package service

import (
	"context"

	"rentdesk/internal/domain"
	"rentdesk/internal/models"

	"github.com/rs/zerolog"
)

// VehicleService exposes the catalog of rentable vehicles.
type VehicleService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewVehicleService(repo domain.Repository, logger *zerolog.Logger) *VehicleService {
	return &VehicleService{repo: repo, logger: logger}
}

func (s *VehicleService) GetVehicleByID(ctx context.Context, vehicleID int64) (*models.Vehicle, error) {
	return s.repo.GetVehicleByID(ctx, vehicleID)
}

func (s *VehicleService) GetActiveVehicles(ctx context.Context) ([]*models.Vehicle, error) {
	return s.repo.GetActiveVehicles(ctx)
}
