package model

import "time"

// Audio session constants. A session always carries exactly TicksPerSession
// tick samples; the positions 0..TicksPerSession-1 are the index space for
// SelectedTick.
const (
	TicksPerSession = 15
	MaxSelectedTick = TicksPerSession - 1
	MaxStepCount    = 9

	// Tick values are negative decibel-like readings.
	TickMin = -100.0
	TickMax = -10.0
)

// AudioSession is one audio-capture event owned by a user. It owns exactly
// 15 ticks, ordered by their original input position.
type AudioSession struct {
	SessionID    int64     `json:"session_id"`
	UserID       int64     `json:"user_id"`
	SelectedTick int       `json:"selected_tick"`
	StepCount    int       `json:"step_count"`
	Ticks        []float64 `json:"ticks"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateAudioRequest carries a session creation payload. Scalar fields are
// pointers so that an absent field can be told apart from an explicit zero.
type CreateAudioRequest struct {
	UserID       *int64    `json:"user_id"`
	SessionID    *int64    `json:"session_id"`
	SelectedTick *int      `json:"selected_tick"`
	StepCount    *int      `json:"step_count"`
	Ticks        []float64 `json:"ticks"`
}

// UpdateAudioRequest carries a partial session update. A nil field means
// "keep the current value". Zero is a legal step count, so presence is
// tracked by the pointer, never by the value.
type UpdateAudioRequest struct {
	SelectedTick *int      `json:"selected_tick"`
	StepCount    *int      `json:"step_count"`
	Ticks        []float64 `json:"ticks"` // nil means unchanged; otherwise must be all 15
}

// Empty reports whether the update carries no fields at all.
func (r *UpdateAudioRequest) Empty() bool {
	return r.SelectedTick == nil && r.StepCount == nil && r.Ticks == nil
}
