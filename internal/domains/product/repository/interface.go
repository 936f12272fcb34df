package repository

import (
	"context"

	"shopcart-backend/internal/domains/product/model"

	"github.com/google/uuid"
)

// ProductRepository defines data access for the product catalog.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter *model.ListProductsFilter) ([]*model.Product, int, error)
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
