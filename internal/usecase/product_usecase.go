package usecase

import (
	"context"
	"strings"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
)

type ProductUseCase struct {
	productRepo repository.ProductRepository
}

func NewProductUseCase(productRepo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
	}
}

type CreateProductInput struct {
	Name         string
	Description  string
	Price        float64
	Image        string
	Category     string
	CountInStock int
}

func (uc *ProductUseCase) CreateProduct(ctx context.Context, input CreateProductInput) (*entity.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.Validation("Product name is required")
	}
	if input.Price < 0 {
		return nil, errors.Validation("Price cannot be negative")
	}
	if input.CountInStock < 0 {
		return nil, errors.Validation("Stock cannot be negative")
	}

	product := &entity.Product{
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		Price:        input.Price,
		Image:        input.Image,
		Category:     input.Category,
		CountInStock: input.CountInStock,
	}
	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (uc *ProductUseCase) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	return uc.productRepo.GetByID(ctx, id)
}

func (uc *ProductUseCase) ListProducts(ctx context.Context, category string) ([]*entity.Product, error) {
	return uc.productRepo.List(ctx, category)
}
