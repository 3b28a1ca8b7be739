package controller

import (
	"context"
	"database/sql"

	"golang.org/x/sync/singleflight"

	"taskdeck/internal/config"
	"taskdeck/internal/models"
)

// Repo is the slice of repository behavior the handlers need.
type Repo interface {
	CreateUser(ctx context.Context, email, passwordHash string) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, string, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
	ListProjects(ctx context.Context, userID int64) ([]models.Project, error)
	CreateProject(ctx context.Context, userID int64, name string) (models.Project, error)
	UpdateProject(ctx context.Context, userID, id int64, name string) error
	DeleteProject(ctx context.Context, userID, id int64) error
	ListTodos(ctx context.Context, userID, projectID int64) ([]models.Todo, error)
	CreateTodo(ctx context.Context, userID, projectID int64, content string) (models.Todo, error)
	UpdateTodo(ctx context.Context, userID, id int64, completed int) (int64, error)
	DeleteTodo(ctx context.Context, userID, id int64) (int64, error)
}

// ListCache caches serialized list responses per user scope.
type ListCache interface {
	GetProjects(ctx context.Context, userID int64) ([]byte, bool)
	SetProjects(ctx context.Context, userID int64, b []byte)
	GetTodos(ctx context.Context, userID, projectID int64) ([]byte, bool)
	SetTodos(ctx context.Context, userID, projectID int64, b []byte)
	InvalidateProjects(ctx context.Context, userID int64)
	InvalidateTodos(ctx context.Context, userID, projectID int64)
	Ready(ctx context.Context) bool
}

// Events publishes change events for cross-replica cache invalidation.
type Events interface {
	Publish(ctx context.Context, ev models.ChangeEvent)
}

// Handlers carries the dependencies of the HTTP surface.
type Handlers struct {
	cfg    *config.Config
	repo   Repo
	cache  ListCache
	events Events
	db     *sql.DB

	listGroup singleflight.Group
}

// New builds the handler set. db may be nil in tests; only Ready uses it.
func New(cfg *config.Config, repo Repo, cache ListCache, events Events, db *sql.DB) *Handlers {
	return &Handlers{cfg: cfg, repo: repo, cache: cache, events: events, db: db}
}
