// Package repository holds the pgx/squirrel data access layer. Sentinel
// errors defined here let services and handlers distinguish failure
// scenarios without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist or belongs
// to a different conversation than the one the caller is scoped to.
// Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")
