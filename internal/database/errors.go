package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrSelfFollow        = errors.New("user cannot follow themselves")
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"

	usersEmailKey      = "users_email_key"
	usersUsernameKey   = "users_username_key"
	followsNoSelfCheck = "follows_no_self_follow"
)

// translate maps constraint violations to package sentinels and passes
// every other error through untouched.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == usersEmailKey:
		return ErrDuplicateEmail
	case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == usersUsernameKey:
		return ErrDuplicateUsername
	case pgErr.Code == pgCheckViolation && pgErr.ConstraintName == followsNoSelfCheck:
		return ErrSelfFollow
	}
	return err
}
