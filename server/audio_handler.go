package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmcconeghy/CL-backend-assessment/apperr"
	"github.com/dmcconeghy/CL-backend-assessment/model"
)

// SessionService is what the audio endpoints need from the session core.
// Implemented by core/session.Service.
type SessionService interface {
	Create(ctx context.Context, req *model.CreateAudioRequest) (*model.AudioSession, error)
	Update(ctx context.Context, sessionID int64, req *model.UpdateAudioRequest) (*model.AudioSession, error)
	GetBySession(ctx context.Context, sessionID int64) (*model.AudioSession, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.AudioSession, error)
}

// AudioHandler serves the audio session endpoints.
type AudioHandler struct {
	sessions SessionService
}

// NewAudioHandler creates an audio handler.
func NewAudioHandler(sessions SessionService) *AudioHandler {
	return &AudioHandler{sessions: sessions}
}

// CreateAudioHandler creates a new audio session from a JSON body. All
// fields are required; the user must exist and the session id must be
// unused.
func (h *AudioHandler) CreateAudioHandler(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAudioRequest
	if err := decodeBody(r, &req); err != nil {
		if errors.Is(err, io.EOF) {
			err = apperr.Wrap(apperr.ErrMissingField, "request body is required")
		}
		respondError(w, err)
		return
	}

	session, err := h.sessions.Create(r.Context(), &req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

// GetAudioBySessionHandler returns one session with its 15 ordered ticks.
func (h *AudioHandler) GetAudioBySessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "session_id")
	if err != nil {
		respondError(w, err)
		return
	}

	session, err := h.sessions.GetBySession(r.Context(), sessionID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// ListAudioByUserHandler returns all of a user's sessions, possibly empty.
func (h *AudioHandler) ListAudioByUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		respondError(w, err)
		return
	}

	sessions, err := h.sessions.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessions)
}

// UpdateAudioHandler applies a partial update to a session. Accepts a JSON
// body, or the older query-parameter form where ticks arrive as a
// comma-separated list. An absent field means "keep the current value";
// zero is a legal step count and is only applied when explicitly supplied.
func (h *AudioHandler) UpdateAudioHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "session_id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req model.UpdateAudioRequest
	if err := decodeBody(r, &req); err != nil {
		if !errors.Is(err, io.EOF) {
			respondError(w, err)
			return
		}
		parsed, err := parseUpdateQuery(r)
		if err != nil {
			respondError(w, err)
			return
		}
		req = *parsed
	}

	session, err := h.sessions.Update(r.Context(), sessionID, &req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// parseUpdateQuery builds an update delta from query parameters:
// ?step_count=7&selected_tick=7&ticks=-11.11,-11.11,...
func parseUpdateQuery(r *http.Request) (*model.UpdateAudioRequest, error) {
	req := &model.UpdateAudioRequest{}

	var err error
	if req.StepCount, err = queryInt(r, "step_count"); err != nil {
		return nil, err
	}
	if req.SelectedTick, err = queryInt(r, "selected_tick"); err != nil {
		return nil, err
	}

	if raw := r.URL.Query().Get("ticks"); raw != "" {
		parts := strings.Split(raw, ",")
		ticks := make([]float64, 0, len(parts))
		for _, part := range parts {
			tick, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return nil, apperr.Wrap(apperr.ErrInvalidValue, "tick %q is not a number", strings.TrimSpace(part))
			}
			ticks = append(ticks, tick)
		}
		req.Ticks = ticks
	}
	return req, nil
}
