package postgres

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

func uuidParse(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// nullablePersonID returns nil for a nil *entity.PersonID so database/sql
// writes SQL NULL instead of a zero UUID.
func nullablePersonID(id *entity.PersonID) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func nullableAssignmentID(id *entity.AssignmentID) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func nullableRotationTemplateID(id *entity.RotationTemplateID) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505), via lib/pq's *pq.Error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
