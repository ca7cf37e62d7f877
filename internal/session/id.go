package session

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateID returns a random (version 4) UUID string. uuid.NewRandom reads
// from crypto/rand, so ids are unpredictable; uniqueness is probabilistic.
func GenerateID() (string, error) {

	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("session: failed to generate id: %w", err)
	}

	return id.String(), nil

}
