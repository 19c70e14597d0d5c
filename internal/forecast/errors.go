package forecast

import (
	"errors"
	"fmt"
)

// ErrDataUnavailable means the run has nothing to work with: no qualifying
// users, or no environmental history at all. Fatal for the whole run.
var ErrDataUnavailable = errors.New("no qualifying data for forecast run")

// UserComputeError marks one user's data as unusable. The batch skips that
// user and continues; it is never propagated as a run failure.
type UserComputeError struct {
	UserID string
	Err    error
}

func (e *UserComputeError) Error() string {
	return fmt.Sprintf("user %s: %v", e.UserID, e.Err)
}

func (e *UserComputeError) Unwrap() error { return e.Err }
