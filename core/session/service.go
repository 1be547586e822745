package session

import (
	"context"
	"errors"

	"github.com/dmcconeghy/CL-backend-assessment/apperr"
	"github.com/dmcconeghy/CL-backend-assessment/cache"
	"github.com/dmcconeghy/CL-backend-assessment/logger"
	"github.com/dmcconeghy/CL-backend-assessment/model"
	"github.com/dmcconeghy/CL-backend-assessment/repository"
)

// Service orchestrates validated session reads and writes. All mutation goes
// through the repositories; each mutating call is one store transaction.
type Service struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	cache    *cache.SessionCache
}

// NewService creates a session service. The cache may be nil.
func NewService(users repository.UserRepository, sessions repository.SessionRepository, sessionCache *cache.SessionCache) *Service {
	return &Service{users: users, sessions: sessions, cache: sessionCache}
}

// Create validates the payload, checks the referenced user exists and the
// session id is fresh, then persists the session row and its 15 ticks
// atomically. Returns the created session.
func (s *Service) Create(ctx context.Context, req *model.CreateAudioRequest) (*model.AudioSession, error) {
	if err := ValidateCreate(req); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByID(ctx, *req.UserID); err != nil {
		return nil, err
	}

	// Pre-check for a friendlier error; a racing insert that slips past it
	// is still caught by the primary key and translated to a conflict.
	if _, err := s.sessions.GetBySessionID(ctx, *req.SessionID); err == nil {
		return nil, apperr.Wrap(apperr.ErrConflict, "session ids must be unique: %d", *req.SessionID)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	session := &model.AudioSession{
		SessionID:    *req.SessionID,
		UserID:       *req.UserID,
		SelectedTick: *req.SelectedTick,
		StepCount:    *req.StepCount,
		Ticks:        req.Ticks,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	logger.Info("audio session created",
		logger.Int64("sessionId", session.SessionID),
		logger.Int64("userId", session.UserID))

	created, err := s.sessions.GetBySessionID(ctx, session.SessionID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, created)
	return created, nil
}

// Update validates the delta, requires the session to exist, applies only
// the supplied fields in one transaction, and returns the updated session.
// A supplied tick array replaces all 15 values wholesale.
func (s *Service) Update(ctx context.Context, sessionID int64, req *model.UpdateAudioRequest) (*model.AudioSession, error) {
	if err := ValidateUpdate(req); err != nil {
		return nil, err
	}

	if _, err := s.sessions.GetBySessionID(ctx, sessionID); err != nil {
		return nil, err
	}

	if err := s.sessions.UpdateSession(ctx, sessionID, req); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, sessionID)

	logger.Info("audio session updated", logger.Int64("sessionId", sessionID))

	updated, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, updated)
	return updated, nil
}

// GetBySession returns the session joined with its 15 ordered ticks.
func (s *Service) GetBySession(ctx context.Context, sessionID int64) (*model.AudioSession, error) {
	if cached := s.cache.Get(ctx, sessionID); cached != nil {
		return cached, nil
	}

	session, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, session)
	return session, nil
}

// ListByUser returns all sessions (each with ticks) belonging to the user,
// possibly empty. The user must exist.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*model.AudioSession, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.sessions.ListByUserID(ctx, userID)
}
