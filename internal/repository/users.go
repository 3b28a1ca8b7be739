package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"taskdeck/internal/models"
	"taskdeck/pkg/logger"
)

const uniqueViolation = "23505"

// CreateUser inserts a new user with the given bcrypt hash and returns it.
func (r *Repository) CreateUser(ctx context.Context, email, passwordHash string) (models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id, email`,
		email, passwordHash).Scan(&u.ID, &u.Email)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.User{}, ErrEmailTaken
		}
		logger.Error(ctx, "Repository CreateUser failed", "error", err)
		return models.User{}, err
	}
	return u, nil
}

// UserByEmail returns the user and stored hash for the given email.
func (r *Repository) UserByEmail(ctx context.Context, email string) (models.User, string, error) {
	var u models.User
	var hash string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, "", ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "Repository UserByEmail failed", "error", err)
		return models.User{}, "", err
	}
	return u, hash, nil
}

// UserByID returns the user for the given id.
func (r *Repository) UserByID(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email FROM users WHERE id = $1`, id).Scan(&u.ID, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "Repository UserByID failed", "error", err)
		return models.User{}, err
	}
	return u, nil
}
