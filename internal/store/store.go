// Package store implements the client-side data synchronization store: a
// cache of the authenticated user, project list and global todo list that
// overlays optimistic updates, background revalidation and persisted
// hydration on top of the remote gateway.
//
// Fetch operations never return errors; failures become sticky Error*
// fields for the view to render. Mutation operations always return the
// gateway's error after local bookkeeping. Overlapping fetches for the same
// scope both run to completion and the later-resolving response wins; no
// sequencing is applied.
package store

import (
	"context"
	"encoding/json"
	"sync"

	"taskdeck/internal/models"
	"taskdeck/internal/snapshot"
	"taskdeck/pkg/logger"
)

// SnapshotKey is the fixed key the persisted snapshot lives under.
const SnapshotKey = "todo-project-store"

// Gateway is the remote RPC surface the store synchronizes against.
type Gateway interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, name string) (models.Project, error)
	UpdateProject(ctx context.Context, id int64, name string) error
	DeleteProject(ctx context.Context, id int64) error
	ListTodos(ctx context.Context, projectID int64) ([]models.Todo, error)
	CreateTodo(ctx context.Context, content string, projectID int64) (models.Todo, error)
	UpdateTodo(ctx context.Context, id int64, completed int) error
	DeleteTodo(ctx context.Context, id int64) error
}

// State is the aggregate client-side cache. Loading* means a cold fetch is
// in flight; Revalidating* means cached data is shown while a background
// refresh runs. At most one of the pair is true per entity class.
type State struct {
	Projects []models.Project
	AllTodos []models.Todo
	User     *models.User

	LoadingProjects      bool
	RevalidatingProjects bool
	LoadingTodos         bool
	RevalidatingTodos    bool
	LoadingUser          bool

	ErrorProjects string
	ErrorTodos    string
	ErrorUser     string
}

// persistedState is the subset of State written to the snapshot store.
// Transient flags and errors are never persisted.
type persistedState struct {
	Projects []models.Project `json:"projects"`
	AllTodos []models.Todo    `json:"allTodos"`
	User     *models.User     `json:"user"`
}

type persistedDoc struct {
	State persistedState `json:"state"`
}

// Store reconciles server-authoritative state with the local cache.
// Construct one per session with New and share it with the view layer.
type Store struct {
	gateway   Gateway
	snapshots snapshot.Store

	mu    sync.Mutex
	state State
}

// New returns an empty store bound to the given gateway and snapshot store.
func New(gw Gateway, snaps snapshot.Store) *Store {
	return &Store{gateway: gw, snapshots: snaps}
}

// Snapshot returns a copy of the current state. The copy is detached;
// mutating it has no effect on the store.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Projects = append([]models.Project(nil), s.state.Projects...)
	st.AllTodos = append([]models.Todo(nil), s.state.AllTodos...)
	if s.state.User != nil {
		u := *s.state.User
		st.User = &u
	}
	return st
}

// update applies fn atomically and persists the data subset afterwards.
func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	s.persistLocked()
}

// setFlags applies fn atomically without persisting. Used for flag and
// error transitions, and for Logout's wipe, so that no deferred flag reset
// can resurrect a snapshot Logout just erased.
func (s *Store) setFlags(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

func (s *Store) persistLocked() {
	doc := persistedDoc{State: persistedState{
		Projects: s.state.Projects,
		AllTodos: s.state.AllTodos,
		User:     s.state.User,
	}}
	if doc.State.Projects == nil {
		doc.State.Projects = []models.Project{}
	}
	if doc.State.AllTodos == nil {
		doc.State.AllTodos = []models.Todo{}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		logger.Warn(context.Background(), "Persist snapshot marshal failed", "error", err)
		return
	}
	s.snapshots.Write(SnapshotKey, string(b))
}

// readPersisted parses the persisted snapshot. Malformed or absent data is
// an empty cache.
func (s *Store) readPersisted() (persistedState, bool) {
	raw, ok := s.snapshots.Read(SnapshotKey)
	if !ok {
		return persistedState{}, false
	}
	var doc persistedDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return persistedState{}, false
	}
	return doc.State, true
}

// Login authenticates and, on success, fetches the user identity.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.setFlags(func(st *State) { st.LoadingUser = true; st.ErrorUser = "" })
	defer s.setFlags(func(st *State) { st.LoadingUser = false })
	if err := s.gateway.Login(ctx, email, password); err != nil {
		s.setFlags(func(st *State) { st.ErrorUser = err.Error() })
		return err
	}
	s.FetchUser(ctx)
	return nil
}

// Register creates an account and, on success, fetches the user identity.
func (s *Store) Register(ctx context.Context, email, password string) error {
	s.setFlags(func(st *State) { st.LoadingUser = true; st.ErrorUser = "" })
	defer s.setFlags(func(st *State) { st.LoadingUser = false })
	if err := s.gateway.Register(ctx, email, password); err != nil {
		s.setFlags(func(st *State) { st.ErrorUser = err.Error() })
		return err
	}
	s.FetchUser(ctx)
	return nil
}

// Logout ends the session, clears the in-memory cache and erases the
// persisted snapshot so the next session on this device starts cold.
func (s *Store) Logout(ctx context.Context) error {
	s.setFlags(func(st *State) { st.LoadingUser = true; st.ErrorUser = "" })
	defer s.setFlags(func(st *State) { st.LoadingUser = false })
	if err := s.gateway.Logout(ctx); err != nil {
		s.setFlags(func(st *State) { st.ErrorUser = err.Error() })
		return err
	}
	s.setFlags(func(st *State) {
		st.User = nil
		st.Projects = nil
		st.AllTodos = nil
	})
	s.snapshots.Clear(SnapshotKey)
	return nil
}

// FetchUser reflects the current session into the store. It never surfaces
// an error: any failure, including "not authenticated", leaves User nil.
func (s *Store) FetchUser(ctx context.Context) {
	user, err := s.gateway.Me(ctx)
	if err != nil {
		s.update(func(st *State) { st.User = nil })
		return
	}
	s.update(func(st *State) { st.User = user })
}

// FetchProjects refreshes the project list. A cold cache first hydrates
// from the persisted snapshot, then loads; a warm cache revalidates in the
// background. The server's response replaces the list wholesale.
func (s *Store) FetchProjects(ctx context.Context) {
	s.mu.Lock()
	if len(s.state.Projects) == 0 {
		if ps, ok := s.readPersisted(); ok && len(ps.Projects) > 0 {
			s.state.Projects = ps.Projects
		}
		s.state.LoadingProjects = true
	} else {
		s.state.RevalidatingProjects = true
	}
	s.state.ErrorProjects = ""
	s.mu.Unlock()

	projects, err := s.gateway.ListProjects(ctx)
	if err != nil {
		s.setFlags(func(st *State) {
			st.ErrorProjects = err.Error()
			st.LoadingProjects = false
			st.RevalidatingProjects = false
		})
		return
	}
	s.update(func(st *State) {
		st.Projects = projects
		st.LoadingProjects = false
		st.RevalidatingProjects = false
	})
}

// FetchTodos refreshes one project's todos. A cold scope first hydrates
// that project's entries from the persisted snapshot, then loads; a warm
// scope revalidates. The response replaces only that project's subset of
// AllTodos; other projects' entries are untouched.
func (s *Store) FetchTodos(ctx context.Context, projectID int64) {
	s.mu.Lock()
	if countByProject(s.state.AllTodos, projectID) == 0 {
		if ps, ok := s.readPersisted(); ok {
			hydrated := filterByProject(ps.AllTodos, projectID)
			if len(hydrated) > 0 {
				s.state.AllTodos = append(dropProject(s.state.AllTodos, projectID), hydrated...)
			}
		}
		s.state.LoadingTodos = true
	} else {
		s.state.RevalidatingTodos = true
	}
	s.state.ErrorTodos = ""
	s.mu.Unlock()

	todos, err := s.gateway.ListTodos(ctx, projectID)
	if err != nil {
		s.setFlags(func(st *State) {
			st.ErrorTodos = err.Error()
			st.LoadingTodos = false
			st.RevalidatingTodos = false
		})
		return
	}
	s.update(func(st *State) {
		st.AllTodos = append(dropProject(st.AllTodos, projectID), todos...)
		st.LoadingTodos = false
		st.RevalidatingTodos = false
	})
}

// GetTodosByProject returns the cached todos of one project. Pure read: no
// network call, no state change.
func (s *Store) GetTodosByProject(projectID int64) []models.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterByProject(s.state.AllTodos, projectID)
}

// CreateProject creates a project, appends the returned record
// optimistically, then replaces the list with a reconciliation fetch.
func (s *Store) CreateProject(ctx context.Context, name string) error {
	s.setFlags(func(st *State) { st.RevalidatingProjects = true })
	defer s.setFlags(func(st *State) { st.RevalidatingProjects = false })

	project, err := s.gateway.CreateProject(ctx, name)
	if err != nil {
		logger.Error(ctx, "createProject failed", "error", err)
		return err
	}
	s.update(func(st *State) { st.Projects = append(st.Projects, project) })

	projects, err := s.gateway.ListProjects(ctx)
	if err != nil {
		logger.Error(ctx, "createProject revalidation failed", "error", err)
		return err
	}
	s.update(func(st *State) { st.Projects = projects })
	return nil
}

// UpdateProject renames a project, patches the name locally, then replaces
// the list with a reconciliation fetch.
func (s *Store) UpdateProject(ctx context.Context, id int64, name string) error {
	s.setFlags(func(st *State) { st.RevalidatingProjects = true })
	defer s.setFlags(func(st *State) { st.RevalidatingProjects = false })

	if err := s.gateway.UpdateProject(ctx, id, name); err != nil {
		logger.Error(ctx, "updateProject failed", "error", err, "id", id)
		return err
	}
	s.update(func(st *State) {
		for i := range st.Projects {
			if st.Projects[i].ID == id {
				st.Projects[i].Name = name
			}
		}
	})

	projects, err := s.gateway.ListProjects(ctx)
	if err != nil {
		logger.Error(ctx, "updateProject revalidation failed", "error", err, "id", id)
		return err
	}
	s.update(func(st *State) { st.Projects = projects })
	return nil
}

// DeleteProject deletes a project, removes it locally, then replaces the
// list with a reconciliation fetch.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	s.setFlags(func(st *State) { st.RevalidatingProjects = true })
	defer s.setFlags(func(st *State) { st.RevalidatingProjects = false })

	if err := s.gateway.DeleteProject(ctx, id); err != nil {
		logger.Error(ctx, "deleteProject failed", "error", err, "id", id)
		return err
	}
	s.update(func(st *State) {
		kept := st.Projects[:0]
		for _, p := range st.Projects {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		st.Projects = kept
	})

	projects, err := s.gateway.ListProjects(ctx)
	if err != nil {
		logger.Error(ctx, "deleteProject revalidation failed", "error", err, "id", id)
		return err
	}
	s.update(func(st *State) { st.Projects = projects })
	return nil
}

// CreateTodo creates a todo, appends the returned record optimistically,
// then replaces the project's subset with a reconciliation fetch.
func (s *Store) CreateTodo(ctx context.Context, content string, projectID int64) error {
	s.setFlags(func(st *State) { st.RevalidatingTodos = true })
	defer s.setFlags(func(st *State) { st.RevalidatingTodos = false })

	todo, err := s.gateway.CreateTodo(ctx, content, projectID)
	if err != nil {
		logger.Error(ctx, "createTodo failed", "error", err)
		return err
	}
	s.update(func(st *State) { st.AllTodos = append(st.AllTodos, todo) })

	return s.reconcileTodos(ctx, projectID)
}

// UpdateTodo sets a todo's completed flag. An id absent from the cache is a
// silent no-op: no gateway call, no state change.
func (s *Store) UpdateTodo(ctx context.Context, id int64, completed int) error {
	existing, ok := s.findTodo(id)
	if !ok {
		return nil
	}
	s.setFlags(func(st *State) { st.RevalidatingTodos = true })
	defer s.setFlags(func(st *State) { st.RevalidatingTodos = false })

	if err := s.gateway.UpdateTodo(ctx, id, completed); err != nil {
		logger.Error(ctx, "updateTodo failed", "error", err, "id", id)
		return err
	}
	s.update(func(st *State) {
		for i := range st.AllTodos {
			if st.AllTodos[i].ID == id {
				st.AllTodos[i].Completed = completed
			}
		}
	})

	return s.reconcileTodos(ctx, existing.ProjectID)
}

// DeleteTodo removes a todo. An id absent from the cache is a silent no-op.
func (s *Store) DeleteTodo(ctx context.Context, id int64) error {
	existing, ok := s.findTodo(id)
	if !ok {
		return nil
	}
	s.setFlags(func(st *State) { st.RevalidatingTodos = true })
	defer s.setFlags(func(st *State) { st.RevalidatingTodos = false })

	if err := s.gateway.DeleteTodo(ctx, id); err != nil {
		logger.Error(ctx, "deleteTodo failed", "error", err, "id", id)
		return err
	}
	s.update(func(st *State) {
		kept := st.AllTodos[:0]
		for _, t := range st.AllTodos {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		st.AllTodos = kept
	})

	return s.reconcileTodos(ctx, existing.ProjectID)
}

// SetProjects seeds the project list from an initial payload, bypassing the
// loading and revalidating flags. Last write wins.
func (s *Store) SetProjects(projects []models.Project) {
	s.update(func(st *State) { st.Projects = projects })
}

// SetTodosForProject seeds one project's todos from an initial payload,
// bypassing the flags. Last write wins for that project's subset.
func (s *Store) SetTodosForProject(projectID int64, todos []models.Todo) {
	s.update(func(st *State) {
		st.AllTodos = append(dropProject(st.AllTodos, projectID), todos...)
	})
}

// reconcileTodos re-fetches one project's todos and replaces that subset.
func (s *Store) reconcileTodos(ctx context.Context, projectID int64) error {
	todos, err := s.gateway.ListTodos(ctx, projectID)
	if err != nil {
		logger.Error(ctx, "todo revalidation failed", "error", err, "project_id", projectID)
		return err
	}
	s.update(func(st *State) {
		st.AllTodos = append(dropProject(st.AllTodos, projectID), todos...)
	})
	return nil
}

func (s *Store) findTodo(id int64) (models.Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.state.AllTodos {
		if t.ID == id {
			return t, true
		}
	}
	return models.Todo{}, false
}

func filterByProject(todos []models.Todo, projectID int64) []models.Todo {
	out := []models.Todo{}
	for _, t := range todos {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out
}

func dropProject(todos []models.Todo, projectID int64) []models.Todo {
	out := make([]models.Todo, 0, len(todos))
	for _, t := range todos {
		if t.ProjectID != projectID {
			out = append(out, t)
		}
	}
	return out
}

func countByProject(todos []models.Todo, projectID int64) int {
	n := 0
	for _, t := range todos {
		if t.ProjectID == projectID {
			n++
		}
	}
	return n
}
