// Package session holds the audio-session domain logic: pure payload
// validation and the service that orchestrates validated reads and writes
// against the record store.
package session

import (
	"github.com/dmcconeghy/CL-backend-assessment/apperr"
	"github.com/dmcconeghy/CL-backend-assessment/model"
)

// ValidateCreate checks a session creation payload. It has no side effects
// and touches no I/O; every constraint is checked before any store mutation
// happens.
//
// The tick range is enforced here as well as on update. The two paths share
// one rule on purpose: a session may never be created with values an update
// would reject.
func ValidateCreate(req *model.CreateAudioRequest) error {
	if req.UserID == nil {
		return apperr.Wrap(apperr.ErrMissingField, "user_id is required")
	}
	if req.SessionID == nil {
		return apperr.Wrap(apperr.ErrMissingField, "session_id is required")
	}
	if req.SelectedTick == nil {
		return apperr.Wrap(apperr.ErrMissingField, "selected_tick is required")
	}
	if req.StepCount == nil {
		return apperr.Wrap(apperr.ErrMissingField, "step_count is required")
	}

	if err := checkStepCount(*req.StepCount); err != nil {
		return err
	}
	if err := checkSelectedTick(*req.SelectedTick); err != nil {
		return err
	}
	return checkTicks(req.Ticks)
}

// ValidateUpdate checks a partial session update. Nil fields mean "keep the
// current value" and are skipped; zero values carried by a non-nil pointer
// are validated like any other value.
func ValidateUpdate(req *model.UpdateAudioRequest) error {
	if req.StepCount != nil {
		if err := checkStepCount(*req.StepCount); err != nil {
			return err
		}
	}
	if req.SelectedTick != nil {
		if err := checkSelectedTick(*req.SelectedTick); err != nil {
			return err
		}
	}
	if req.Ticks != nil {
		return checkTicks(req.Ticks)
	}
	return nil
}

func checkStepCount(stepCount int) error {
	if stepCount < 0 || stepCount > model.MaxStepCount {
		return apperr.Wrap(apperr.ErrOutOfRange, "step count must be between 0 and %d", model.MaxStepCount)
	}
	return nil
}

func checkSelectedTick(selectedTick int) error {
	if selectedTick < 0 || selectedTick > model.MaxSelectedTick {
		return apperr.Wrap(apperr.ErrOutOfRange, "selected tick must be between 0 and %d", model.MaxSelectedTick)
	}
	return nil
}

// checkTicks verifies cardinality and the range of every one of the 15
// values. All positions are checked before the caller commits anything, so
// an invalid late value can never leave an array half replaced.
func checkTicks(ticks []float64) error {
	if len(ticks) != model.TicksPerSession {
		return apperr.Wrap(apperr.ErrWrongCardinality, "ticks must be an array of %d values", model.TicksPerSession)
	}
	for position, tick := range ticks {
		if tick < model.TickMin || tick > model.TickMax {
			return apperr.Wrap(apperr.ErrOutOfRange,
				"ticks must be between %.1f and %.1f (position %d is %v)", model.TickMax, model.TickMin, position, tick)
		}
	}
	return nil
}
