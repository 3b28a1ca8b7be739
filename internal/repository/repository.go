package repository

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned when a row does not exist or is not owned by the
// requesting user. Ownership failures are deliberately indistinguishable
// from missing rows.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned by CreateUser when the email is already registered.
var ErrEmailTaken = errors.New("user already exists")

// Repository provides ownership-scoped access to users, projects and todos.
type Repository struct {
	db *sql.DB
}

// New returns a Repository backed by the given pool.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}
