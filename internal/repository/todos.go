package repository

import (
	"context"
	"database/sql"
	"errors"

	"taskdeck/internal/models"
	"taskdeck/pkg/logger"
)

// ListTodos returns the todos of one project owned by userID, ordered by id.
// A project owned by someone else simply yields an empty list.
func (r *Repository) ListTodos(ctx context.Context, userID, projectID int64) ([]models.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, content, completed, project_id, user_id FROM todos
		 WHERE project_id = $1 AND user_id = $2 ORDER BY id`, projectID, userID)
	if err != nil {
		logger.Error(ctx, "Repository ListTodos failed", "error", err)
		return nil, err
	}
	defer rows.Close()
	todos := []models.Todo{}
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.Content, &t.Completed, &t.ProjectID, &t.UserID); err != nil {
			logger.Error(ctx, "Repository scan todo failed", "error", err)
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// CreateTodo inserts a todo into a project the user owns and returns the
// created row. Inserting into a foreign project fails with ErrNotFound.
func (r *Repository) CreateTodo(ctx context.Context, userID, projectID int64, content string) (models.Todo, error) {
	var owner int64
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM projects WHERE id = $1 AND user_id = $2`, projectID, userID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Todo{}, ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "Repository CreateTodo owner check failed", "error", err)
		return models.Todo{}, err
	}
	var t models.Todo
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO todos (content, completed, project_id, user_id) VALUES ($1, 0, $2, $3)
		 RETURNING id, content, completed, project_id, user_id`,
		content, projectID, userID).Scan(&t.ID, &t.Content, &t.Completed, &t.ProjectID, &t.UserID)
	if err != nil {
		logger.Error(ctx, "Repository CreateTodo failed", "error", err)
		return models.Todo{}, err
	}
	return t, nil
}

// UpdateTodo sets the completed flag. Returns the todo's project id so the
// caller can invalidate the right cache scope, or ErrNotFound on zero rows.
func (r *Repository) UpdateTodo(ctx context.Context, userID, id int64, completed int) (int64, error) {
	var projectID int64
	err := r.db.QueryRowContext(ctx,
		`UPDATE todos SET completed = $1 WHERE id = $2 AND user_id = $3 RETURNING project_id`,
		completed, id, userID).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "Repository UpdateTodo failed", "error", err, "id", id)
		return 0, err
	}
	return projectID, nil
}

// DeleteTodo removes a todo. Returns the todo's project id, or ErrNotFound
// on zero rows.
func (r *Repository) DeleteTodo(ctx context.Context, userID, id int64) (int64, error) {
	var projectID int64
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM todos WHERE id = $1 AND user_id = $2 RETURNING project_id`,
		id, userID).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "Repository DeleteTodo failed", "error", err, "id", id)
		return 0, err
	}
	return projectID, nil
}
