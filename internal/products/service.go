package products

import (
	"context"
	"strings"

	"github.com/joao-fontenele/backoffice-api/internal/domain"
)

type Store interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error)
}

// ProductPatch carries the fields a client sent. Nil means "not supplied".
type ProductPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Category    *string  `json:"category"`
	Brand       *string  `json:"brand"`
	ImageURL    *string  `json:"imageUrl"`
}

func (p ProductPatch) validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return domain.Errorf(domain.ErrInvalid, "name must not be empty")
	}
	if p.Price != nil && *p.Price < 0 {
		return domain.Errorf(domain.ErrInvalid, "price must not be negative")
	}
	if p.Stock != nil && *p.Stock < 0 {
		return domain.Errorf(domain.ErrInvalid, "stock must not be negative")
	}
	return nil
}

func (p ProductPatch) ApplyTo(product *domain.Product) {
	if p.Name != nil {
		product.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.Brand != nil {
		product.Brand = *p.Brand
	}
	if p.ImageURL != nil {
		product.ImageURL = *p.ImageURL
	}
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "product not found")
	}
	return product, nil
}

func (s *Service) Create(ctx context.Context, patch ProductPatch) (*domain.Product, error) {
	if patch.Name == nil {
		return nil, domain.Errorf(domain.ErrInvalid, "name is required")
	}
	if err := patch.validate(); err != nil {
		return nil, err
	}

	product := &domain.Product{}
	patch.ApplyTo(product)

	if err := s.store.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *Service) Update(ctx context.Context, id string, patch ProductPatch) (*domain.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := patch.validate(); err != nil {
		return nil, err
	}

	patch.ApplyTo(product)

	updated, err := s.store.Update(ctx, product)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, domain.Errorf(domain.ErrNotFound, "product not found")
	}
	return product, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.Errorf(domain.ErrNotFound, "product not found")
	}
	return nil
}

// AdjustStock adds delta (which may be negative) to the product stock. The
// store refuses any change that would leave stock below zero.
func (s *Service) AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error) {
	if delta == 0 {
		return nil, domain.Errorf(domain.ErrInvalid, "delta must not be zero")
	}

	product, err := s.store.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	if product != nil {
		return product, nil
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return nil, domain.Errorf(domain.ErrRule, "insufficient stock")
}
