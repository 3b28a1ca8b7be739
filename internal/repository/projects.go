package repository

import (
	"context"

	"taskdeck/internal/models"
	"taskdeck/pkg/logger"
)

// ListProjects returns all projects owned by userID, ordered by id.
func (r *Repository) ListProjects(ctx context.Context, userID int64) ([]models.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, user_id FROM projects WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		logger.Error(ctx, "Repository ListProjects failed", "error", err)
		return nil, err
	}
	defer rows.Close()
	projects := []models.Project{}
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.UserID); err != nil {
			logger.Error(ctx, "Repository scan project failed", "error", err)
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// CreateProject inserts a project for userID and returns the created row.
func (r *Repository) CreateProject(ctx context.Context, userID int64, name string) (models.Project, error) {
	var p models.Project
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO projects (name, user_id) VALUES ($1, $2) RETURNING id, name, user_id`,
		name, userID).Scan(&p.ID, &p.Name, &p.UserID)
	if err != nil {
		logger.Error(ctx, "Repository CreateProject failed", "error", err)
		return models.Project{}, err
	}
	return p, nil
}

// UpdateProject renames a project. Returns ErrNotFound when the row does not
// exist or belongs to another user.
func (r *Repository) UpdateProject(ctx context.Context, userID, id int64, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET name = $1 WHERE id = $2 AND user_id = $3`, name, id, userID)
	if err != nil {
		logger.Error(ctx, "Repository UpdateProject failed", "error", err, "id", id)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProject removes a project and its todos in one transaction. Returns
// ErrNotFound when the project does not exist or belongs to another user.
func (r *Repository) DeleteProject(ctx context.Context, userID, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM todos WHERE project_id = $1 AND user_id = $2`, id, userID); err != nil {
		logger.Error(ctx, "Repository DeleteProject todos failed", "error", err, "id", id)
		return err
	}
	res, err := tx.ExecContext(ctx,
		`DELETE FROM projects WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		logger.Error(ctx, "Repository DeleteProject failed", "error", err, "id", id)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}
