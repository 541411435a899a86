package service

import (
	"errors"

	"fasalbajar-api/internal/model"
	"fasalbajar-api/internal/repository"
	"fasalbajar-api/pkg/validator"

	"github.com/google/uuid"
)

var (
	ErrLocationNotFound = errors.New("supplier location not found")
	ErrNotLocationOwner = errors.New("you do not own this location")
)

type SupplierLocationService interface {
	Create(supplierID uuid.UUID, loc *model.SupplierLocation) error
	List(district string) ([]model.SupplierLocation, error)
	ListBySupplier(supplierID uuid.UUID) ([]model.SupplierLocation, error)
	Update(id, supplierID uuid.UUID, loc *model.SupplierLocation) (*model.SupplierLocation, error)
	Delete(id, supplierID uuid.UUID) error
}

type supplierLocationService struct {
	locationRepo repository.SupplierLocationRepository
}

func NewSupplierLocationService(locationRepo repository.SupplierLocationRepository) SupplierLocationService {
	return &supplierLocationService{locationRepo: locationRepo}
}

func (s *supplierLocationService) Create(supplierID uuid.UUID, loc *model.SupplierLocation) error {
	loc.SupplierID = supplierID
	if errs := validator.ValidateStruct(loc); len(errs) > 0 {
		return errors.New(validator.FirstError(errs))
	}
	return s.locationRepo.Create(loc)
}

func (s *supplierLocationService) List(district string) ([]model.SupplierLocation, error) {
	return s.locationRepo.FindAll(district)
}

func (s *supplierLocationService) ListBySupplier(supplierID uuid.UUID) ([]model.SupplierLocation, error) {
	return s.locationRepo.FindBySupplier(supplierID)
}

func (s *supplierLocationService) Update(id, supplierID uuid.UUID, req *model.SupplierLocation) (*model.SupplierLocation, error) {
	existing, err := s.locationRepo.FindByID(id)
	if err != nil {
		return nil, ErrLocationNotFound
	}
	if existing.SupplierID != supplierID {
		return nil, ErrNotLocationOwner
	}

	existing.District = req.District
	existing.Municipality = req.Municipality
	existing.Ward = req.Ward
	existing.Latitude = req.Latitude
	existing.Longitude = req.Longitude
	existing.ServiceDetails = req.ServiceDetails

	if errs := validator.ValidateStruct(existing); len(errs) > 0 {
		return nil, errors.New(validator.FirstError(errs))
	}

	if err := s.locationRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *supplierLocationService) Delete(id, supplierID uuid.UUID) error {
	existing, err := s.locationRepo.FindByID(id)
	if err != nil {
		return ErrLocationNotFound
	}
	if existing.SupplierID != supplierID {
		return ErrNotLocationOwner
	}
	return s.locationRepo.Delete(id)
}
