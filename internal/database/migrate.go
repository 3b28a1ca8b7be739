package database

import (
	"context"
	"database/sql"

	"taskdeck/pkg/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            SERIAL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id      SERIAL PRIMARY KEY,
		name    VARCHAR(255) NOT NULL,
		user_id INTEGER NOT NULL REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS todos (
		id         SERIAL PRIMARY KEY,
		content    VARCHAR(255) NOT NULL,
		completed  INTEGER NOT NULL DEFAULT 0,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		user_id    INTEGER NOT NULL REFERENCES users(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_user ON projects (user_id, id)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_project_user ON todos (project_id, user_id, id)`,
}

// Migrate creates the schema if it does not exist yet (idempotent).
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			logger.Error(ctx, "Schema statement failed", "error", err)
			return err
		}
	}
	logger.Info(ctx, "Schema ready")
	return nil
}
