package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// PredictionID produces a deterministic ID for a (user, date) prediction.
// Deterministic IDs make cache writes idempotent — re-running a forecast
// upserts the same document instead of inserting a duplicate.
func PredictionID(userID, date string) string {
	hash := sha256.Sum256([]byte(userID + "|" + date))
	return "pred-" + hex.EncodeToString(hash[:8])
}
