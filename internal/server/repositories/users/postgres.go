package users

import (
	"context"

	"github.com/dmitrijs2005/userdir/internal/dbx"
	"github.com/dmitrijs2005/userdir/internal/server/models"
	"github.com/dmitrijs2005/userdir/internal/server/repositories/table"
)

// Schema binds models.User to the users table. The projection never
// includes the password column.
var Schema = table.Schema[models.User]{
	Table:  "users",
	Entity: "User",
	Key:    "id",
	Columns: []string{
		"first_name", "last_name", "email", "password",
		"country", "city", "phone_number", "position",
	},
	Immutable: []string{"password"},
	Unique:    "email",
	UpdatedAt: "updated_at",
	Projection: []string{
		"id", "first_name", "last_name", "email", "country", "city",
		"phone_number", "position", "created_at", "updated_at",
	},
	Scan: scanUser,
}

func scanUser(s table.Scanner) (*models.User, error) {
	u := &models.User{}
	err := s.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Country, &u.City,
		&u.PhoneNumber, &u.Position, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

type PostgresRepository struct {
	*table.Accessor[models.User]
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{Accessor: table.New(db, Schema)}
}

func (r *PostgresRepository) Create(ctx context.Context, params *models.CreateUserParams) (*models.User, error) {
	fields, err := table.Bind(params)
	if err != nil {
		return nil, err
	}
	return r.Accessor.Create(ctx, fields)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.User, bool, error) {
	return r.FindOne(ctx, table.Fields{"id": id})
}

func (r *PostgresRepository) FindByCredentials(ctx context.Context, email, passwordHash string) (*models.User, bool, error) {
	return r.FindOne(ctx, table.Fields{"email": email, "password": passwordHash})
}

func (r *PostgresRepository) UpdateByID(ctx context.Context, params *models.UpdateUserParams, id int64) (*models.User, error) {
	fields, err := table.Bind(params)
	if err != nil {
		return nil, err
	}
	return r.Accessor.UpdateByID(ctx, fields, id)
}
