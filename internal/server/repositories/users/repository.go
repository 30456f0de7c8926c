package users

import (
	"context"

	"github.com/dmitrijs2005/userdir/internal/server/models"
	"github.com/dmitrijs2005/userdir/internal/server/repositories/table"
)

type Repository interface {
	Create(ctx context.Context, params *models.CreateUserParams) (*models.User, error)
	FindMany(ctx context.Context, filter table.Fields) ([]*models.User, error)
	FindOne(ctx context.Context, filter table.Fields) (*models.User, bool, error)
	FindByID(ctx context.Context, id int64) (*models.User, bool, error)
	FindByCredentials(ctx context.Context, email, passwordHash string) (*models.User, bool, error)
	UpdateByID(ctx context.Context, params *models.UpdateUserParams, id int64) (*models.User, error)
	DeleteByID(ctx context.Context, id int64) (*models.User, error)
}
