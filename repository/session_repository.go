package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmcconeghy/CL-backend-assessment/apperr"
	"github.com/dmcconeghy/CL-backend-assessment/model"

	sq "github.com/Masterminds/squirrel"
)

// SessionRepository defines the interface for audio session data operations.
// A session row and its 15 tick rows are always written together.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *model.AudioSession) error
	GetBySessionID(ctx context.Context, sessionID int64) (*model.AudioSession, error)
	ListByUserID(ctx context.Context, userID int64) ([]*model.AudioSession, error)
	UpdateSession(ctx context.Context, sessionID int64, req *model.UpdateAudioRequest) error
}

// mysqlSessionRepository implements SessionRepository for MySQL.
type mysqlSessionRepository struct {
	db *sql.DB
}

// NewMySQLSessionRepository creates a new mysqlSessionRepository.
func NewMySQLSessionRepository(db *sql.DB) SessionRepository {
	return &mysqlSessionRepository{db: db}
}

// CreateSession inserts the audio row and its 15 tick rows in one
// transaction. Either all rows persist or none do. A racing duplicate
// session_id surfaces as a conflict.
func (r *mysqlSessionRepository) CreateSession(ctx context.Context, session *model.AudioSession) error {
	if len(session.Ticks) != model.TicksPerSession {
		return apperr.Wrap(apperr.ErrWrongCardinality, "ticks must be an array of %d values", model.TicksPerSession)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin create session transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO audio (session_id, user_id, selected_tick, step_count) VALUES (?, ?, ?, ?)",
		session.SessionID, session.UserID, session.SelectedTick, session.StepCount)
	if err != nil {
		if isMySQLError(err, mysqlErrDuplicateEntry) {
			return apperr.Wrap(apperr.ErrConflict, "session ids must be unique: %d", session.SessionID)
		}
		if isMySQLError(err, mysqlErrForeignKey) {
			return apperr.Wrap(apperr.ErrNotFound, "user %d", session.UserID)
		}
		return fmt.Errorf("failed to insert audio session %d: %w", session.SessionID, err)
	}

	if err := insertTicks(ctx, tx, session.SessionID, session.Ticks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit create session transaction: %w", err)
	}
	return nil
}

// insertTicks writes the 15 tick rows, position = input order.
func insertTicks(ctx context.Context, tx *sql.Tx, sessionID int64, ticks []float64) error {
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO ticks (ticks_id, session_id, tick) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert tick statement: %w", err)
	}
	defer stmt.Close()

	for position, tick := range ticks {
		if _, err := stmt.ExecContext(ctx, position, sessionID, tick); err != nil {
			return fmt.Errorf("failed to insert tick %d for session %d: %w", position, sessionID, err)
		}
	}
	return nil
}

// GetBySessionID retrieves a session joined with its ticks in input order.
func (r *mysqlSessionRepository) GetBySessionID(ctx context.Context, sessionID int64) (*model.AudioSession, error) {
	query := "SELECT session_id, user_id, selected_tick, step_count, created_at, updated_at FROM audio WHERE session_id = ?"
	session := &model.AudioSession{}
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&session.SessionID, &session.UserID, &session.SelectedTick, &session.StepCount,
		&session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.Wrap(apperr.ErrNotFound, "session %d", sessionID)
		}
		return nil, fmt.Errorf("failed to scan audio row for session %d: %w", sessionID, err)
	}

	ticks, err := r.loadTicks(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Ticks = ticks
	return session, nil
}

func (r *mysqlSessionRepository) loadTicks(ctx context.Context, sessionID int64) ([]float64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT tick FROM ticks WHERE session_id = ? ORDER BY ticks_id", sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticks for session %d: %w", sessionID, err)
	}
	defer rows.Close()

	ticks := make([]float64, 0, model.TicksPerSession)
	for rows.Next() {
		var tick float64
		if err := rows.Scan(&tick); err != nil {
			return nil, fmt.Errorf("failed to scan tick for session %d: %w", sessionID, err)
		}
		ticks = append(ticks, tick)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ticks for session %d: %w", sessionID, err)
	}
	return ticks, nil
}

// ListByUserID retrieves all sessions (with ticks) belonging to a user.
// The result may be empty.
func (r *mysqlSessionRepository) ListByUserID(ctx context.Context, userID int64) ([]*model.AudioSession, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT session_id, user_id, selected_tick, step_count, created_at, updated_at FROM audio WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions for user %d: %w", userID, err)
	}
	defer rows.Close()

	sessions := []*model.AudioSession{}
	for rows.Next() {
		session := &model.AudioSession{}
		if err := rows.Scan(&session.SessionID, &session.UserID, &session.SelectedTick,
			&session.StepCount, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audio row for user %d: %w", userID, err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions for user %d: %w", userID, err)
	}

	for _, session := range sessions {
		ticks, err := r.loadTicks(ctx, session.SessionID)
		if err != nil {
			return nil, err
		}
		session.Ticks = ticks
	}
	return sessions, nil
}

// UpdateSession applies the supplied fields in one transaction. When ticks
// are supplied the existing 15 rows are replaced wholesale, never merged.
func (r *mysqlSessionRepository) UpdateSession(ctx context.Context, sessionID int64, req *model.UpdateAudioRequest) error {
	if req.Empty() {
		return nil
	}
	if req.Ticks != nil && len(req.Ticks) != model.TicksPerSession {
		return apperr.Wrap(apperr.ErrWrongCardinality, "ticks must be an array of %d values", model.TicksPerSession)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin update session transaction: %w", err)
	}
	defer tx.Rollback()

	if req.SelectedTick != nil || req.StepCount != nil {
		builder := sq.Update("audio").Where(sq.Eq{"session_id": sessionID})
		if req.SelectedTick != nil {
			builder = builder.Set("selected_tick", *req.SelectedTick)
		}
		if req.StepCount != nil {
			builder = builder.Set("step_count", *req.StepCount)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update session query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to update audio session %d: %w", sessionID, err)
		}
	}

	if req.Ticks != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM ticks WHERE session_id = ?", sessionID); err != nil {
			return fmt.Errorf("failed to delete ticks for session %d: %w", sessionID, err)
		}
		if err := insertTicks(ctx, tx, sessionID, req.Ticks); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit update session transaction: %w", err)
	}
	return nil
}
