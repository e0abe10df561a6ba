package memory

import "github.com/google/uuid"

func uuidNew() uuid.UUID {
	return uuid.New()
}
