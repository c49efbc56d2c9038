package comicshelf

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = sql.ErrNoRows

var (
	// ErrAuthRequired is returned when an action needs a signed-in user.
	ErrAuthRequired = errors.New("sign in required")
	// ErrInvalidCredentials is returned when an email/password pair does not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidRating is returned for ratings outside 1..MaxRating.
	ErrInvalidRating = errors.New("rating out of range")
)
