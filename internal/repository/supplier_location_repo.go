package repository

import (
	"fasalbajar-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierLocationRepository interface {
	Create(loc *model.SupplierLocation) error
	FindByID(id uuid.UUID) (*model.SupplierLocation, error)
	FindAll(district string) ([]model.SupplierLocation, error)
	FindBySupplier(supplierID uuid.UUID) ([]model.SupplierLocation, error)
	Update(loc *model.SupplierLocation) error
	Delete(id uuid.UUID) error
}

type supplierLocationRepo struct {
	db *gorm.DB
}

func NewSupplierLocationRepo(db *gorm.DB) SupplierLocationRepository {
	return &supplierLocationRepo{db}
}

func (r *supplierLocationRepo) Create(loc *model.SupplierLocation) error {
	return r.db.Create(loc).Error
}

func (r *supplierLocationRepo) FindByID(id uuid.UUID) (*model.SupplierLocation, error) {
	var loc model.SupplierLocation
	if err := r.db.Preload("Supplier").First(&loc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *supplierLocationRepo) FindAll(district string) ([]model.SupplierLocation, error) {
	var locs []model.SupplierLocation
	q := r.db.Preload("Supplier")
	if district != "" {
		q = q.Where("district = ?", district)
	}
	err := q.Find(&locs).Error
	return locs, err
}

func (r *supplierLocationRepo) FindBySupplier(supplierID uuid.UUID) ([]model.SupplierLocation, error) {
	var locs []model.SupplierLocation
	err := r.db.Where("supplier_id = ?", supplierID).Find(&locs).Error
	return locs, err
}

func (r *supplierLocationRepo) Update(loc *model.SupplierLocation) error {
	return r.db.Save(loc).Error
}

func (r *supplierLocationRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.SupplierLocation{}, "id = ?", id).Error
}
