package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/andresfq/mercadito/internal/errs"
	"github.com/andresfq/mercadito/internal/model"
)

func sampleAccount() (*model.User, *model.Profile) {
	id := uuid.Must(uuid.NewV4())
	u := &model.User{ID: id, Email: "ana@tienda.co", PwdHash: []byte("h"), SaltAuth: []byte("s")}
	p := &model.Profile{ID: id, Email: u.Email, UserType: model.UserTypeVendedor, Nombre: "Ana", Negocio: "Tienda Ana"}
	return u, p
}

func TestUserRepo_CreateWithProfile_Atomic(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	u, p := sampleAccount()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(u.ID, u.Email, u.PwdHash, u.SaltAuth).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO profiles`).
		WithArgs(p.ID, p.Email, string(p.UserType), p.Nombre, p.Negocio, p.Descripcion).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, r.CreateWithProfile(context.Background(), u, p))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_CreateWithProfile_DuplicateEmail(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	u, p := sampleAccount()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(u.ID, u.Email, u.PwdHash, u.SaltAuth).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := r.CreateWithProfile(context.Background(), u, p)
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	u, _ := sampleAccount()
	mock.ExpectQuery(`FROM users WHERE email=\$1`).
		WithArgs(u.Email).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "pwd_hash", "salt_auth", "created_at"}).
			AddRow(u.ID, u.Email, u.PwdHash, u.SaltAuth, time.Now()))

	got, err := r.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	mock.ExpectQuery(`FROM users WHERE email=\$1`).
		WithArgs("nadie@nada.co").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByEmail(context.Background(), "nadie@nada.co")
	require.ErrorIs(t, err, errs.ErrNotFound)
}
