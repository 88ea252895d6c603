package repository

import (
	"database/sql"
	"errors"
)

// errNoRows is returned by write paths when the target row does not exist,
// mirroring the read-path sentinel so services classify both the same way.
var errNoRows = sql.ErrNoRows

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
