package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/userdir/internal/common"
	"github.com/dmitrijs2005/userdir/internal/dbx"
	"github.com/dmitrijs2005/userdir/internal/server/models"
	"github.com/dmitrijs2005/userdir/internal/server/repositories/table"
	usersrepo "github.com/dmitrijs2005/userdir/internal/server/repositories/users"
)

// memUsersRepo keeps users in memory and follows usersrepo.Schema for
// uniqueness and immutable columns.
type memUsersRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.User

	err error // returned by every call when set
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{rows: map[int64]models.User{}}
}

func public(u models.User) *models.User {
	u.Password = ""
	return &u
}

func (r *memUsersRepo) Create(_ context.Context, p *models.CreateUserParams) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.rows {
		if u.Email == p.Email {
			return nil, common.NewError(common.ErrorConflict, "User with email: %s already exists", p.Email)
		}
	}
	r.nextID++
	now := time.Now()
	u := models.User{
		ID: r.nextID, FirstName: p.FirstName, LastName: p.LastName, Email: p.Email, Password: p.Password,
		Country: p.Country, City: p.City, PhoneNumber: p.PhoneNumber, Position: p.Position,
		CreatedAt: now, UpdatedAt: now,
	}
	r.rows[u.ID] = u
	return public(u), nil
}

func (r *memUsersRepo) FindMany(_ context.Context, filter table.Fields) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*models.User, 0)
	for _, u := range r.rows {
		cols, err := table.Bind(u)
		if err != nil {
			return nil, err
		}
		match := true
		for c, v := range filter {
			if cols[c] != v {
				match = false
				break
			}
		}
		if match {
			out = append(out, public(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memUsersRepo) FindOne(ctx context.Context, filter table.Fields) (*models.User, bool, error) {
	items, err := r.FindMany(ctx, filter)
	if err != nil || len(items) == 0 {
		return nil, false, err
	}
	return items[0], true, nil
}

func (r *memUsersRepo) FindByID(ctx context.Context, id int64) (*models.User, bool, error) {
	return r.FindOne(ctx, table.Fields{"id": id})
}

func (r *memUsersRepo) FindByCredentials(ctx context.Context, email, hash string) (*models.User, bool, error) {
	return r.FindOne(ctx, table.Fields{"email": email, "password": hash})
}

func (r *memUsersRepo) UpdateByID(_ context.Context, p *models.UpdateUserParams, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.rows[id]
	if !ok {
		return nil, common.NewError(common.ErrorNotFound, "User with ID: %d not found", id)
	}
	fields, err := table.Bind(p)
	if err != nil {
		return nil, err
	}
	if email, ok := fields[usersrepo.Schema.Unique]; ok {
		for otherID, other := range r.rows {
			if otherID != id && other.Email == email {
				return nil, common.NewError(common.ErrorConflict, "User with email: %s already exists", email)
			}
		}
	}
	for c, v := range fields.Without(usersrepo.Schema.Immutable...) {
		s := v.(string)
		switch c {
		case "first_name":
			u.FirstName = s
		case "last_name":
			u.LastName = s
		case "email":
			u.Email = s
		case "password":
			u.Password = s
		case "country":
			u.Country = s
		case "city":
			u.City = s
		case "phone_number":
			u.PhoneNumber = s
		case "position":
			u.Position = s
		}
	}
	u.UpdatedAt = time.Now()
	r.rows[id] = u
	return public(u), nil
}

func (r *memUsersRepo) DeleteByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.rows[id]
	if !ok {
		return nil, common.NewError(common.ErrorNotFound, "User with ID: %d not found", id)
	}
	delete(r.rows, id)
	return public(u), nil
}

func (r *memUsersRepo) storedHash(id int64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id].Password
}

func (r *memUsersRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type fakeRepoManager struct {
	u usersrepo.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository       { return m.u }

var errDBDown = errors.New("db down")

var (
	_ usersrepo.Repository = (*memUsersRepo)(nil)
)
