package model

import "errors"

// ErrModelNotFound means the artifact file is missing or unreadable. It is
// fatal for the whole run: no per-user work starts without a model.
var ErrModelNotFound = errors.New("model artifact not found")

// FeatureMismatchError means the artifact's feature layout disagrees with the
// builder's current layout. The run aborts rather than silently truncating or
// padding vectors, because a reshaped vector would feed every feature to the
// wrong tree split.
type FeatureMismatchError struct {
	Reason string
}

func (e *FeatureMismatchError) Error() string {
	return "feature layout mismatch: " + e.Reason
}
