package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"fasalbajar-api/internal/model"
	"fasalbajar-api/internal/repository"
	"fasalbajar-api/pkg/storage"
	"fasalbajar-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNotProductOwner = errors.New("you do not own this product")
)

type ProductService interface {
	Create(product *model.Product) error
	Update(id, ownerID uuid.UUID, product *model.Product) (*model.Product, error)
	Delete(id, ownerID uuid.UUID) error
	Get(id uuid.UUID) (*model.Product, error)
	List(filter repository.ProductFilter) ([]model.Product, error)
	UploadImage(ctx context.Context, id, ownerID uuid.UUID, filename string, file io.Reader, contentType string) (string, error)
}

type productService struct {
	productRepo repository.ProductRepository
	storage     storage.ObjectStorage
}

func NewProductService(productRepo repository.ProductRepository, store storage.ObjectStorage) ProductService {
	return &productService{productRepo: productRepo, storage: store}
}

func (s *productService) Create(product *model.Product) error {
	if errs := validator.ValidateStruct(product); len(errs) > 0 {
		return errors.New(validator.FirstError(errs))
	}
	if product.Price.LessThanOrEqual(decimal.Zero) {
		return errors.New("price must be greater than zero")
	}
	return s.productRepo.Create(product)
}

func (s *productService) Update(id, ownerID uuid.UUID, req *model.Product) (*model.Product, error) {
	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	if existing.FarmerID != ownerID {
		return nil, ErrNotProductOwner
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Category = req.Category
	existing.Price = req.Price
	existing.Quantity = req.Quantity
	existing.Unit = req.Unit

	if errs := validator.ValidateStruct(existing); len(errs) > 0 {
		return nil, errors.New(validator.FirstError(errs))
	}
	if existing.Price.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("price must be greater than zero")
	}

	if err := s.productRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *productService) Delete(id, ownerID uuid.UUID) error {
	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		return ErrProductNotFound
	}
	if existing.FarmerID != ownerID {
		return ErrNotProductOwner
	}
	return s.productRepo.Delete(id)
}

func (s *productService) Get(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *productService) List(filter repository.ProductFilter) ([]model.Product, error) {
	return s.productRepo.FindAll(filter)
}

func (s *productService) UploadImage(ctx context.Context, id, ownerID uuid.UUID, filename string, file io.Reader, contentType string) (string, error) {
	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		return "", ErrProductNotFound
	}
	if existing.FarmerID != ownerID {
		return "", ErrNotProductOwner
	}
	if s.storage == nil {
		return "", errors.New("object storage not configured")
	}

	key := fmt.Sprintf("products/%s%s", uuid.New().String(), filepath.Ext(filename))
	url, err := s.storage.Upload(ctx, key, file, contentType)
	if err != nil {
		return "", err
	}

	existing.ImageURL = url
	if err := s.productRepo.Update(existing); err != nil {
		return "", err
	}
	return url, nil
}
