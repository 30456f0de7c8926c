// Package services contains server-side business logic. This file implements
// UserService: credential checks, token issuance and user CRUD.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/userdir/internal/common"
	"github.com/dmitrijs2005/userdir/internal/dbx"
	"github.com/dmitrijs2005/userdir/internal/server/auth"
	"github.com/dmitrijs2005/userdir/internal/server/config"
	"github.com/dmitrijs2005/userdir/internal/server/models"
	"github.com/dmitrijs2005/userdir/internal/server/repositories/repomanager"
)

const badCredentials = "Bad credentials"

// AuthResult is returned by a successful login.
type AuthResult struct {
	UserID      int64  `json:"userId"`
	AccessToken string `json:"accessToken"`
}

type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	hasher                      auth.PasswordHasher
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
// It fails only when cfg names an unknown password scheme.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) (*UserService, error) {
	hasher, err := auth.NewPasswordHasher(cfg.PasswordScheme, cfg.SecretKey)
	if err != nil {
		return nil, err
	}
	return &UserService{
		db:                          db,
		repomanager:                 m,
		hasher:                      hasher,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}, nil
}

// AuthenticateUser checks the credentials and mints an access token. Unknown
// email and wrong password fail with the same Unauthorized message.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*AuthResult, error) {
	repo := s.repomanager.Users(s.db)

	user, found, err := repo.FindByCredentials(ctx, email, s.hasher.Hash(email, password))
	if err != nil {
		return nil, common.Wrap(common.ErrorUnauthorized, err, badCredentials)
	}
	if !found {
		return nil, common.NewError(common.ErrorUnauthorized, badCredentials)
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.Wrap(common.ErrorInternal, err, "Something went wrong")
	}
	return &AuthResult{UserID: user.ID, AccessToken: token}, nil
}

// CreateUser stores a new user with a hashed password.
func (s *UserService) CreateUser(ctx context.Context, params *models.CreateUserParams) (*models.User, error) {
	p := *params
	p.Password = s.hasher.Hash(p.Email, p.Password)

	var user *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = s.repomanager.Users(tx).Create(ctx, &p)
		return err
	})
	if err != nil {
		return nil, txError(err)
	}
	return user, nil
}

// GetUsers lists every user, newest first.
func (s *UserService) GetUsers(ctx context.Context) ([]*models.User, error) {
	return s.repomanager.Users(s.db).FindMany(ctx, nil)
}

// GetUserByID returns the user or a NotFound error.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, found, err := s.repomanager.Users(s.db).FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, common.NewError(common.ErrorNotFound, "User with ID: %d not found", id)
	}
	return user, nil
}

// UpdateUser applies a partial update. The password is never changed here.
func (s *UserService) UpdateUser(ctx context.Context, params *models.UpdateUserParams, id int64) (*models.User, error) {
	var user *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = s.repomanager.Users(tx).UpdateByID(ctx, params, id)
		return err
	})
	if err != nil {
		return nil, txError(err)
	}
	return user, nil
}

// DeleteUser removes the user and returns the deleted record.
func (s *UserService) DeleteUser(ctx context.Context, id int64) (*models.User, error) {
	var user *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = s.repomanager.Users(tx).DeleteByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, txError(err)
	}
	return user, nil
}

// txError keeps kinded errors from the repository and wraps begin/commit
// failures as internal.
func txError(err error) error {
	var e *common.Error
	if errors.As(err, &e) {
		return err
	}
	return common.Wrap(common.ErrorInternal, err, "Something went wrong")
}
