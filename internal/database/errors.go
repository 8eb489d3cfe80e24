package database

import (
	"errors"

	"github.com/lib/pq"
)

const foreignKeyViolation = pq.ErrorCode("23503")

// IsForeignKeyViolation reports whether err is a postgres FK violation
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation
}
