package id

import (
	"github.com/google/uuid"
)

// GetUUID returns a random (v4) UUID string. Used for media records and
// request ids, where no ordering is needed.
func GetUUID() string {
	return uuid.NewString()
}
