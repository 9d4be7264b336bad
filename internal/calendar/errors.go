// Package calendar holds the event service and the sentinel errors shared
// with the identity service. Handlers translate these into HTTP status
// codes; nothing below the API layer knows about HTTP.
package calendar

import "errors"

// ErrNotFound is returned for an unknown event or user id. Handlers
// translate it into a 404 response.
var ErrNotFound = errors.New("not found")

// ErrInvalidInput is returned when a required field is missing or empty
// after trimming. Handlers translate it into a 400 response.
var ErrInvalidInput = errors.New("invalid input")

// ErrUnauthorized is returned when a mutating operation is attempted
// without a logged-in session. Handlers translate it into a 401 response.
var ErrUnauthorized = errors.New("unauthorized")
