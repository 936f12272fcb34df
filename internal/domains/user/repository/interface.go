package repository

import (
	"context"

	"shopcart-backend/internal/domains/user/model"

	"github.com/google/uuid"
)

// UserRepository defines data access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}
