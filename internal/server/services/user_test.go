package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/userdir/internal/common"
	"github.com/dmitrijs2005/userdir/internal/server/auth"
	"github.com/dmitrijs2005/userdir/internal/server/config"
	"github.com/dmitrijs2005/userdir/internal/server/models"
	"github.com/dmitrijs2005/userdir/internal/server/repositories/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "k"

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newUserService(t *testing.T, db *sql.DB, repo *memUsersRepo) *UserService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                   testSecret,
		AccessTokenValidityDuration: time.Hour,
		PasswordScheme:              auth.SchemeSHA256,
	}
	s, err := NewUserService(db, &fakeRepoManager{u: repo}, cfg)
	require.NoError(t, err)
	return s
}

func alice() *models.CreateUserParams {
	return &models.CreateUserParams{
		FirstName: "A", LastName: "Smith", Email: "a@x.com", Password: "p1",
		Country: "NZ", City: "Wellington", PhoneNumber: "+64 21 000", Position: "Engineer",
	}
}

func TestNewUserService_UnknownScheme(t *testing.T) {
	_, err := NewUserService(nil, &fakeRepoManager{}, &config.Config{PasswordScheme: "md5"})
	assert.Error(t, err)
}

func TestCreateUser_HashesPasswordAndHidesIt(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := newMemUsersRepo()
	s := newUserService(t, db, repo)

	u, err := s.CreateUser(context.Background(), alice())
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Empty(t, u.Password)

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password")

	assert.Equal(t, auth.NewSHA256Hasher(testSecret).Hash("a@x.com", "p1"), repo.storedHash(u.ID))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_DuplicateEmailIsConflict(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := newUserService(t, db, newMemUsersRepo())

	_, err := s.CreateUser(context.Background(), alice())
	require.NoError(t, err)

	_, err = s.CreateUser(context.Background(), alice())
	require.ErrorIs(t, err, common.ErrorConflict)
	assert.Equal(t, "User with email: a@x.com already exists", err.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_BeginFailureIsInternal(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin().WillReturnError(errDBDown)

	repo := newMemUsersRepo()
	s := newUserService(t, db, repo)

	_, err := s.CreateUser(context.Background(), alice())
	require.ErrorIs(t, err, common.ErrorInternal)
	assert.ErrorIs(t, err, errDBDown)
	assert.Equal(t, 0, repo.count())
}

func TestCreateUser_DoesNotMutateParams(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	s := newUserService(t, db, newMemUsersRepo())
	p := alice()
	_, err := s.CreateUser(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "p1", p.Password)
}

func TestAuthenticateUser(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := newMemUsersRepo()
	s := newUserService(t, db, repo)

	created, err := s.CreateUser(context.Background(), alice())
	require.NoError(t, err)

	t.Run("valid credentials yield a verifiable token", func(t *testing.T) {
		res, err := s.AuthenticateUser(context.Background(), "a@x.com", "p1")
		require.NoError(t, err)
		assert.Equal(t, created.ID, res.UserID)

		id, err := auth.GetUserIDFromToken(res.AccessToken, []byte(testSecret))
		require.NoError(t, err)
		assert.Equal(t, created.ID, id)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		_, errWrong := s.AuthenticateUser(context.Background(), "a@x.com", "wrong")
		_, errUnknown := s.AuthenticateUser(context.Background(), "nobody@x.com", "p1")

		require.ErrorIs(t, errWrong, common.ErrorUnauthorized)
		require.ErrorIs(t, errUnknown, common.ErrorUnauthorized)
		assert.Equal(t, "Bad credentials", errWrong.Error())
		assert.Equal(t, errWrong.Error(), errUnknown.Error())
	})

	t.Run("lookup failure is unauthorized", func(t *testing.T) {
		repo.err = errDBDown
		defer func() { repo.err = nil }()

		_, err := s.AuthenticateUser(context.Background(), "a@x.com", "p1")
		require.ErrorIs(t, err, common.ErrorUnauthorized)
		assert.Equal(t, "Bad credentials", err.Error())
	})
}

func TestUpdateUser_IgnoresPassword(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := newMemUsersRepo()
	s := newUserService(t, db, repo)

	u, err := s.CreateUser(context.Background(), alice())
	require.NoError(t, err)
	before := repo.storedHash(u.ID)

	city, pw := "Auckland", "new-password"
	updated, err := s.UpdateUser(context.Background(), &models.UpdateUserParams{City: &city, Password: &pw}, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Auckland", updated.City)
	assert.Equal(t, before, repo.storedHash(u.ID))

	_, err = s.AuthenticateUser(context.Background(), "a@x.com", "p1")
	assert.NoError(t, err)
	_, err = s.AuthenticateUser(context.Background(), "a@x.com", "new-password")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestUpdateUser_EmailOfAnotherUserIsConflict(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := newMemUsersRepo()
	s := newUserService(t, db, repo)

	a, err := s.CreateUser(context.Background(), alice())
	require.NoError(t, err)
	other := alice()
	other.Email = "b@x.com"
	b, err := s.CreateUser(context.Background(), other)
	require.NoError(t, err)

	email := a.Email
	_, err = s.UpdateUser(context.Background(), &models.UpdateUserParams{Email: &email}, b.ID)
	require.ErrorIs(t, err, common.ErrorConflict)
	assert.Equal(t, "User with email: a@x.com already exists", err.Error())

	same := b.Email
	_, err = s.UpdateUser(context.Background(), &models.UpdateUserParams{Email: &same}, b.ID)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAndDelete_MissingIDIsNotFound(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectRollback()

	repo := newMemUsersRepo()
	s := newUserService(t, db, repo)
	u, err := s.CreateUser(context.Background(), alice())
	require.NoError(t, err)

	name := "Z"
	_, err = s.UpdateUser(context.Background(), &models.UpdateUserParams{FirstName: &name}, 999)
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, "User with ID: 999 not found", err.Error())

	_, err = s.DeleteUser(context.Background(), 999)
	require.ErrorIs(t, err, common.ErrorNotFound)

	assert.Equal(t, 1, repo.count())
	got, err := s.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.FirstName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByID_NotFound(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, newMemUsersRepo())

	_, err := s.GetUserByID(context.Background(), 1)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetUsers_NewestFirst(t *testing.T) {
	db, mock := newSQLMockDB(t)
	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}

	s := newUserService(t, db, newMemUsersRepo())
	first, err := s.CreateUser(context.Background(), alice())
	require.NoError(t, err)
	p := alice()
	p.Email = "b@x.com"
	second, err := s.CreateUser(context.Background(), p)
	require.NoError(t, err)

	list, err := s.GetUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestCreateThenFindOne_RoundTrip(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := newMemUsersRepo()
	s := newUserService(t, db, repo)

	in := alice()
	_, err := s.CreateUser(context.Background(), in)
	require.NoError(t, err)

	got, found, err := repo.FindOne(context.Background(), table.Fields{"email": in.Email})
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, in.FirstName, got.FirstName)
	assert.Equal(t, in.LastName, got.LastName)
	assert.Equal(t, in.Email, got.Email)
	assert.Equal(t, in.Country, got.Country)
	assert.Equal(t, in.City, got.City)
	assert.Equal(t, in.PhoneNumber, got.PhoneNumber)
	assert.Equal(t, in.Position, got.Position)
	assert.Empty(t, got.Password)
}

func TestScenario_CreateLoginDelete(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	s := newUserService(t, db, newMemUsersRepo())
	ctx := context.Background()

	u, err := s.CreateUser(ctx, alice())
	require.NoError(t, err)
	require.NotZero(t, u.ID)

	_, err = s.CreateUser(ctx, alice())
	require.ErrorIs(t, err, common.ErrorConflict)

	res, err := s.AuthenticateUser(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)

	_, err = s.AuthenticateUser(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	deleted, err := s.DeleteUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, deleted.ID)
	assert.Equal(t, "a@x.com", deleted.Email)

	_, err = s.AuthenticateUser(ctx, "a@x.com", "p1")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	require.NoError(t, mock.ExpectationsWereMet())
}
