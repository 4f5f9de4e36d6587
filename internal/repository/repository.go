package repository

import "errors"

// ErrNoRowsAffected signals that an update or delete matched no rows.
var ErrNoRowsAffected = errors.New("no rows affected")
