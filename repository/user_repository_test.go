package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmcconeghy/CL-backend-assessment/apperr"
	"github.com/dmcconeghy/CL-backend-assessment/model"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
)

var sampleTime = time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

func newUserRepoWithMock(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMySQLUserRepository(db), mock
}

const selectUserByIDSQL = `SELECT id, name, email, address, image, created_at, updated_at FROM users WHERE id = ?`

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "address", "image", "created_at", "updated_at"}).
		AddRow(1, "Bob Marley", "jamaica@email.com", "Sandy Beaches", "image.jpg", sampleTime, sampleTime)
}

func TestCreateUser_Success(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	insertSQL := `INSERT INTO users (name, email, address, image) VALUES (?, ?, ?, ?)`
	mock.ExpectPrepare(regexp.QuoteMeta(insertSQL)).
		ExpectExec().
		WithArgs("Bob Marley", "jamaica@email.com", "Sandy Beaches", "image.jpg").
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := repo.CreateUser(context.Background(), &model.User{
		Name: "Bob Marley", Email: "jamaica@email.com", Address: "Sandy Beaches", Image: "image.jpg",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_DuplicateEmailIsConflict(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	insertSQL := `INSERT INTO users (name, email, address, image) VALUES (?, ?, ?, ?)`
	mock.ExpectPrepare(regexp.QuoteMeta(insertSQL)).
		ExpectExec().
		WithArgs("Bob", "jamaica@email.com", "A", "i.jpg").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'jamaica@email.com' for key 'email'"})

	_, err := repo.CreateUser(context.Background(), &model.User{
		Name: "Bob", Email: "jamaica@email.com", Address: "A", Image: "i.jpg",
	})
	require.ErrorIs(t, err, apperr.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByID_Found(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByIDSQL)).
		WithArgs(int64(1)).
		WillReturnRows(userRows())

	user, err := repo.GetUserByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Bob Marley", user.Name)
	require.Equal(t, "jamaica@email.com", user.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByID_NotFound(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByIDSQL)).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByID(context.Background(), 42)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUser_OnlySuppliedFieldsAreWritten(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET address = ? WHERE id = ?`)).
		WithArgs("New Address", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	address := "New Address"
	err := repo.UpdateUser(context.Background(), 1, &model.UpdateUserRequest{Address: &address})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUser_EmptyRequestIsNoOp(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	err := repo.UpdateUser(context.Background(), 1, &model.UpdateUserRequest{})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUser_DuplicateEmailIsConflict(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET email = ? WHERE id = ?`)).
		WithArgs("taken@email.com", int64(1)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	email := "taken@email.com"
	err := repo.UpdateUser(context.Background(), 1, &model.UpdateUserRequest{Email: &email})
	require.ErrorIs(t, err, apperr.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Deleting a user removes their sessions and ticks in the same transaction.
func TestDeleteUser_CascadesSessionsAndTicks(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM ticks WHERE session_id IN (SELECT session_id FROM audio WHERE user_id = ?)`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 15))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM audio WHERE user_id = ?`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = ?`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteUser(context.Background(), 1))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUser_NotFoundRollsBack(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM ticks WHERE session_id IN (SELECT session_id FROM audio WHERE user_id = ?)`)).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM audio WHERE user_id = ?`)).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = ?`)).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.DeleteUser(context.Background(), 42)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchUser_ByNameSubstring(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, name, email, address, image, created_at, updated_at FROM users WHERE name LIKE ? LIMIT 1`)).
		WithArgs("%Marley%").
		WillReturnRows(userRows())

	user, err := repo.SearchUser(context.Background(), "name", "Marley")
	require.NoError(t, err)
	require.Equal(t, "Bob Marley", user.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchUser_NoMatch(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, name, email, address, image, created_at, updated_at FROM users WHERE email LIKE ? LIMIT 1`)).
		WithArgs("%ghost%").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.SearchUser(context.Background(), "email", "ghost")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchUser_UnknownFieldIsRejected(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	_, err := repo.SearchUser(context.Background(), "password", "x")
	require.ErrorIs(t, err, apperr.ErrInvalidValue)
	require.NoError(t, mock.ExpectationsWereMet())
}
