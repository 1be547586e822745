package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmcconeghy/CL-backend-assessment/apperr"
	"github.com/dmcconeghy/CL-backend-assessment/model"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
)

func newSessionRepoWithMock(t *testing.T) (SessionRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMySQLSessionRepository(db), mock
}

func testTicks() []float64 {
	ticks := make([]float64, model.TicksPerSession)
	for i := range ticks {
		ticks[i] = -40.31
	}
	return ticks
}

func testSession() *model.AudioSession {
	return &model.AudioSession{
		SessionID:    3448,
		UserID:       1,
		SelectedTick: 5,
		StepCount:    1,
		Ticks:        testTicks(),
	}
}

const (
	insertAudioSQL = `INSERT INTO audio (session_id, user_id, selected_tick, step_count) VALUES (?, ?, ?, ?)`
	insertTickSQL  = `INSERT INTO ticks (ticks_id, session_id, tick) VALUES (?, ?, ?)`
	selectAudioSQL = `SELECT session_id, user_id, selected_tick, step_count, created_at, updated_at FROM audio WHERE session_id = ?`
	selectTicksSQL = `SELECT tick FROM ticks WHERE session_id = ? ORDER BY ticks_id`
)

func TestCreateSession_InsertsSessionAndAllTicksInOneTx(t *testing.T) {
	repo, mock := newSessionRepoWithMock(t)
	session := testSession()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertAudioSQL)).
		WithArgs(session.SessionID, session.UserID, session.SelectedTick, session.StepCount).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prepared := mock.ExpectPrepare(regexp.QuoteMeta(insertTickSQL))
	for position, tick := range session.Ticks {
		prepared.ExpectExec().
			WithArgs(position, session.SessionID, tick).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.CreateSession(context.Background(), session))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSession_DuplicateKeyIsConflictAndRollsBack(t *testing.T) {
	repo, mock := newSessionRepoWithMock(t)
	session := testSession()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertAudioSQL)).
		WithArgs(session.SessionID, session.UserID, session.SelectedTick, session.StepCount).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '3448' for key 'PRIMARY'"})
	mock.ExpectRollback()

	err := repo.CreateSession(context.Background(), session)
	require.ErrorIs(t, err, apperr.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSession_MissingUserIsNotFound(t *testing.T) {
	repo, mock := newSessionRepoWithMock(t)
	session := testSession()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertAudioSQL)).
		WithArgs(session.SessionID, session.UserID, session.SelectedTick, session.StepCount).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})
	mock.ExpectRollback()

	err := repo.CreateSession(context.Background(), session)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSession_FailedTickInsertRollsBackEverything(t *testing.T) {
	repo, mock := newSessionRepoWithMock(t)
	session := testSession()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertAudioSQL)).
		WithArgs(session.SessionID, session.UserID, session.SelectedTick, session.StepCount).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prepared := mock.ExpectPrepare(regexp.QuoteMeta(insertTickSQL))
	prepared.ExpectExec().
		WithArgs(0, session.SessionID, session.Ticks[0]).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.CreateSession(context.Background(), session)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSession_RejectsWrongCardinalityBeforeTouchingStore(t *testing.T) {
	repo, mock := newSessionRepoWithMock(t)
	session := testSession()
	session.Ticks = session.Ticks[:14]

	err := repo.CreateSession(context.Background(), session)
	require.ErrorIs(t, err, apperr.ErrWrongCardinality)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBySessionID_ComposesTicksInPositionOrder(t *testing.T) {
	repo, mock := newSessionRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectAudioSQL)).
		WithArgs(int64(3448)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"session_id", "user_id", "selected_tick", "step_count", "created_at", "updated_at"}).
			AddRow(3448, 1, 5, 1, sampleTime, sampleTime))

	tickRows := sqlmock.NewRows([]string{"tick"})
	for i := 0; i < model.TicksPerSession; i++ {
		tickRows.AddRow(-100.0 + float64(i))
	}
	mock.ExpectQuery(regexp.QuoteMeta(selectTicksSQL)).
		WithArgs(int64(3448)).
		WillReturnRows(tickRows)

	session, err := repo.GetBySessionID(context.Background(), 3448)
	require.NoError(t, err)
	require.Equal(t, int64(3448), session.SessionID)
	require.Len(t, session.Ticks, model.TicksPerSession)
	require.Equal(t, -100.0, session.Ticks[0])
	require.Equal(t, -86.0, session.Ticks[14])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBySessionID_NotFound(t *testing.T) {
	repo, mock := newSessionRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectAudioSQL)).
		WithArgs(int64(8675309)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetBySessionID(context.Background(), 8675309)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSession_ScalarFieldsOnly(t *testing.T) {
	repo, mock := newSessionRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE audio SET selected_tick = ?, step_count = ? WHERE session_id = ?`)).
		WithArgs(7, 7, int64(77777)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	selectedTick, stepCount := 7, 7
	err := repo.UpdateSession(context.Background(), 77777, &model.UpdateAudioRequest{
		SelectedTick: &selectedTick,
		StepCount:    &stepCount,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSession_TicksAreReplacedWholesale(t *testing.T) {
	repo, mock := newSessionRepoWithMock(t)

	ticks := make([]float64, model.TicksPerSession)
	for i := range ticks {
		ticks[i] = -11.11
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM ticks WHERE session_id = ?`)).
		WithArgs(int64(77777)).
		WillReturnResult(sqlmock.NewResult(0, int64(model.TicksPerSession)))
	prepared := mock.ExpectPrepare(regexp.QuoteMeta(insertTickSQL))
	for position, tick := range ticks {
		prepared.ExpectExec().
			WithArgs(position, int64(77777), tick).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	err := repo.UpdateSession(context.Background(), 77777, &model.UpdateAudioRequest{Ticks: ticks})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSession_EmptyDeltaIsNoOp(t *testing.T) {
	repo, mock := newSessionRepoWithMock(t)

	err := repo.UpdateSession(context.Background(), 77777, &model.UpdateAudioRequest{})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSession_WrongCardinalityNeverTouchesStore(t *testing.T) {
	repo, mock := newSessionRepoWithMock(t)

	err := repo.UpdateSession(context.Background(), 77777, &model.UpdateAudioRequest{
		Ticks: make([]float64, 16),
	})
	require.ErrorIs(t, err, apperr.ErrWrongCardinality)
	require.NoError(t, mock.ExpectationsWereMet())
}
