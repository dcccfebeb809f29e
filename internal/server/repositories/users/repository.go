package users

import (
	"context"

	"github.com/lifecourse/lifecourse/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	IncrementTokenVersion(ctx context.Context, id int64) (int64, error)
	StampLastLogin(ctx context.Context, id int64) error
}
