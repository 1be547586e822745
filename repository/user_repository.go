package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmcconeghy/CL-backend-assessment/apperr"
	"github.com/dmcconeghy/CL-backend-assessment/model"

	sq "github.com/Masterminds/squirrel"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, id int64, req *model.UpdateUserRequest) error
	DeleteUser(ctx context.Context, id int64) error
	SearchUser(ctx context.Context, field, pattern string) (*model.User, error)
}

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new mysqlUserRepository.
func NewMySQLUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{db: db}
}

const userColumns = "id, name, email, address, image, created_at, updated_at"

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Address, &user.Image, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser adds a new user to the database. A duplicate email is reported
// as a conflict, not a raw driver error.
func (r *mysqlUserRepository) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	query := "INSERT INTO users (name, email, address, image) VALUES (?, ?, ?, ?)"
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare create user statement: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, user.Name, user.Email, user.Address, user.Image)
	if err != nil {
		if isMySQLError(err, mysqlErrDuplicateEntry) {
			return 0, apperr.Wrap(apperr.ErrConflict, "a user with email %s already exists", user.Email)
		}
		return 0, fmt.Errorf("failed to execute create user statement: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for user: %w", err)
	}
	return id, nil
}

// GetUserByID retrieves a user by their ID.
func (r *mysqlUserRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.Wrap(apperr.ErrNotFound, "user %d", id)
		}
		return nil, fmt.Errorf("failed to scan user row for ID %d: %w", id, err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *mysqlUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = ?"
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.Wrap(apperr.ErrNotFound, "user with email %s", email)
		}
		return nil, fmt.Errorf("failed to scan user row for email %s: %w", email, err)
	}
	return user, nil
}

// UpdateUser applies a partial update. Only fields carried by the request
// are written; unset fields keep their current values.
func (r *mysqlUserRepository) UpdateUser(ctx context.Context, id int64, req *model.UpdateUserRequest) error {
	if req.Empty() {
		return nil
	}

	builder := sq.Update("users").Where(sq.Eq{"id": id})
	if req.Name != nil {
		builder = builder.Set("name", *req.Name)
	}
	if req.Email != nil {
		builder = builder.Set("email", *req.Email)
	}
	if req.Address != nil {
		builder = builder.Set("address", *req.Address)
	}
	if req.Image != nil {
		builder = builder.Set("image", *req.Image)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isMySQLError(err, mysqlErrDuplicateEntry) {
			// The only unique column is email.
			return apperr.Wrap(apperr.ErrConflict, "a user with that email already exists")
		}
		return fmt.Errorf("failed to execute update user statement: %w", err)
	}

	// MySQL reports zero affected rows both for a missing user and for a
	// no-op update, so verify existence explicitly on zero.
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		if _, err := r.GetUserByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// DeleteUser removes a user and cascades to their sessions and ticks in one
// transaction, so a partial delete can never persist.
func (r *mysqlUserRepository) DeleteUser(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete user transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM ticks WHERE session_id IN (SELECT session_id FROM audio WHERE user_id = ?)", id); err != nil {
		return fmt.Errorf("failed to delete ticks for user %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM audio WHERE user_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete sessions for user %d: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows for user delete: %w", err)
	}
	if affected == 0 {
		return apperr.Wrap(apperr.ErrNotFound, "user %d", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete user transaction: %w", err)
	}
	return nil
}

// SearchUser finds the first user whose field contains the pattern as a
// substring. Field must be one of name, email, or address.
func (r *mysqlUserRepository) SearchUser(ctx context.Context, field, pattern string) (*model.User, error) {
	switch field {
	case "name", "email", "address":
	default:
		return nil, apperr.Wrap(apperr.ErrInvalidValue, "unknown search field %q", field)
	}

	query := "SELECT " + userColumns + " FROM users WHERE " + field + " LIKE ? LIMIT 1"
	user, err := scanUser(r.db.QueryRowContext(ctx, query, "%"+pattern+"%"))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.Wrap(apperr.ErrNotFound, "no users found")
		}
		return nil, fmt.Errorf("failed to search users by %s: %w", field, err)
	}
	return user, nil
}
