// Package store implements the persistence collaborators over database/sql:
// a deadline store, a notification store and a user-settings store. The core
// logic never touches SQL; handlers and the sweep go through these types.
package store

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a row does not exist or belongs to another
// user. Handlers map it to 404.
var ErrNotFound = errors.New("store: not found")

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
