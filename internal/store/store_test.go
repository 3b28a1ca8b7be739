package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"taskdeck/internal/models"
	"taskdeck/internal/snapshot"
	"taskdeck/internal/store"
)

// mockGateway implements store.Gateway with overridable function fields.
// Unset fields return zero values.
type mockGateway struct {
	RegisterFunc      func(ctx context.Context, email, password string) error
	LoginFunc         func(ctx context.Context, email, password string) error
	LogoutFunc        func(ctx context.Context) error
	MeFunc            func(ctx context.Context) (*models.User, error)
	ListProjectsFunc  func(ctx context.Context) ([]models.Project, error)
	CreateProjectFunc func(ctx context.Context, name string) (models.Project, error)
	UpdateProjectFunc func(ctx context.Context, id int64, name string) error
	DeleteProjectFunc func(ctx context.Context, id int64) error
	ListTodosFunc     func(ctx context.Context, projectID int64) ([]models.Todo, error)
	CreateTodoFunc    func(ctx context.Context, content string, projectID int64) (models.Todo, error)
	UpdateTodoFunc    func(ctx context.Context, id int64, completed int) error
	DeleteTodoFunc    func(ctx context.Context, id int64) error
}

func (m *mockGateway) Register(ctx context.Context, email, password string) error {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password)
	}
	return nil
}

func (m *mockGateway) Login(ctx context.Context, email, password string) error {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil
}

func (m *mockGateway) Logout(ctx context.Context) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

func (m *mockGateway) Me(ctx context.Context) (*models.User, error) {
	if m.MeFunc != nil {
		return m.MeFunc(ctx)
	}
	return nil, nil
}

func (m *mockGateway) ListProjects(ctx context.Context) ([]models.Project, error) {
	if m.ListProjectsFunc != nil {
		return m.ListProjectsFunc(ctx)
	}
	return []models.Project{}, nil
}

func (m *mockGateway) CreateProject(ctx context.Context, name string) (models.Project, error) {
	if m.CreateProjectFunc != nil {
		return m.CreateProjectFunc(ctx, name)
	}
	return models.Project{}, nil
}

func (m *mockGateway) UpdateProject(ctx context.Context, id int64, name string) error {
	if m.UpdateProjectFunc != nil {
		return m.UpdateProjectFunc(ctx, id, name)
	}
	return nil
}

func (m *mockGateway) DeleteProject(ctx context.Context, id int64) error {
	if m.DeleteProjectFunc != nil {
		return m.DeleteProjectFunc(ctx, id)
	}
	return nil
}

func (m *mockGateway) ListTodos(ctx context.Context, projectID int64) ([]models.Todo, error) {
	if m.ListTodosFunc != nil {
		return m.ListTodosFunc(ctx, projectID)
	}
	return []models.Todo{}, nil
}

func (m *mockGateway) CreateTodo(ctx context.Context, content string, projectID int64) (models.Todo, error) {
	if m.CreateTodoFunc != nil {
		return m.CreateTodoFunc(ctx, content, projectID)
	}
	return models.Todo{}, nil
}

func (m *mockGateway) UpdateTodo(ctx context.Context, id int64, completed int) error {
	if m.UpdateTodoFunc != nil {
		return m.UpdateTodoFunc(ctx, id, completed)
	}
	return nil
}

func (m *mockGateway) DeleteTodo(ctx context.Context, id int64) error {
	if m.DeleteTodoFunc != nil {
		return m.DeleteTodoFunc(ctx, id)
	}
	return nil
}

func newStore(gw *mockGateway) (*store.Store, *snapshot.Memory) {
	snaps := snapshot.NewMemory()
	return store.New(gw, snaps), snaps
}

func seedSnapshot(t *testing.T, snaps *snapshot.Memory, projects []models.Project, todos []models.Todo, user *models.User) {
	t.Helper()
	doc := map[string]interface{}{
		"state": map[string]interface{}{
			"projects": projects,
			"allTodos": todos,
			"user":     user,
		},
	}
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
	snaps.Write(store.SnapshotKey, string(b))
}

func TestFetchProjects(t *testing.T) {
	ctx := context.Background()

	t.Run("cold load replaces empty list", func(t *testing.T) {
		gw := &mockGateway{
			ListProjectsFunc: func(ctx context.Context) ([]models.Project, error) {
				return []models.Project{{ID: 1, Name: "Home", UserID: 7}}, nil
			},
		}
		s, _ := newStore(gw)
		s.FetchProjects(ctx)

		st := s.Snapshot()
		if len(st.Projects) != 1 || st.Projects[0].Name != "Home" {
			t.Errorf("projects = %+v, want [{1 Home 7}]", st.Projects)
		}
		if st.LoadingProjects || st.RevalidatingProjects {
			t.Error("flags not cleared after fetch")
		}
		if st.ErrorProjects != "" {
			t.Errorf("unexpected error %q", st.ErrorProjects)
		}
	})

	t.Run("cold load hydrates from snapshot before the response", func(t *testing.T) {
		seen := store.State{}
		gw := &mockGateway{}
		s, snaps := newStore(gw)
		seedSnapshot(t, snaps, []models.Project{{ID: 9, Name: "Cached"}}, nil, nil)
		gw.ListProjectsFunc = func(ctx context.Context) ([]models.Project, error) {
			seen = s.Snapshot()
			return []models.Project{{ID: 9, Name: "Fresh"}}, nil
		}

		s.FetchProjects(ctx)

		if len(seen.Projects) != 1 || seen.Projects[0].Name != "Cached" {
			t.Errorf("state during fetch = %+v, want hydrated [Cached]", seen.Projects)
		}
		if !seen.LoadingProjects || seen.RevalidatingProjects {
			t.Errorf("flags during cold fetch = loading=%v revalidating=%v", seen.LoadingProjects, seen.RevalidatingProjects)
		}
		if got := s.Snapshot().Projects; len(got) != 1 || got[0].Name != "Fresh" {
			t.Errorf("final projects = %+v, want server copy", got)
		}
	})

	t.Run("warm cache revalidates and keeps data on failure", func(t *testing.T) {
		gw := &mockGateway{}
		s, _ := newStore(gw)
		s.SetProjects([]models.Project{{ID: 1, Name: "Keep"}})

		seen := store.State{}
		gw.ListProjectsFunc = func(ctx context.Context) ([]models.Project, error) {
			seen = s.Snapshot()
			return nil, errors.New("network down")
		}
		s.FetchProjects(ctx)

		if !seen.RevalidatingProjects || seen.LoadingProjects {
			t.Errorf("flags during warm fetch = loading=%v revalidating=%v", seen.LoadingProjects, seen.RevalidatingProjects)
		}
		st := s.Snapshot()
		if st.ErrorProjects != "network down" {
			t.Errorf("error = %q, want network down", st.ErrorProjects)
		}
		if len(st.Projects) != 1 || st.Projects[0].Name != "Keep" {
			t.Errorf("cached projects lost on revalidation failure: %+v", st.Projects)
		}
		if st.LoadingProjects || st.RevalidatingProjects {
			t.Error("flags not cleared after failure")
		}
	})

	t.Run("malformed snapshot is treated as empty cache", func(t *testing.T) {
		gw := &mockGateway{
			ListProjectsFunc: func(ctx context.Context) ([]models.Project, error) {
				return []models.Project{{ID: 2, Name: "OK"}}, nil
			},
		}
		s, snaps := newStore(gw)
		snaps.Write(store.SnapshotKey, "{not json")

		s.FetchProjects(ctx)
		if got := s.Snapshot().Projects; len(got) != 1 || got[0].Name != "OK" {
			t.Errorf("projects = %+v", got)
		}
	})
}

func TestFetchTodos(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces only the fetched project's subset", func(t *testing.T) {
		gw := &mockGateway{}
		s, _ := newStore(gw)
		s.SetTodosForProject(1, []models.Todo{{ID: 1, Content: "stale", ProjectID: 1}})
		s.SetTodosForProject(2, []models.Todo{{ID: 5, Content: "other", ProjectID: 2}})

		gw.ListTodosFunc = func(ctx context.Context, projectID int64) ([]models.Todo, error) {
			return []models.Todo{
				{ID: 2, Content: "fresh", ProjectID: 1},
				{ID: 3, Content: "fresher", ProjectID: 1},
			}, nil
		}
		s.FetchTodos(ctx, 1)

		byProject1 := s.GetTodosByProject(1)
		if len(byProject1) != 2 {
			t.Fatalf("project 1 todos = %+v, want 2 fresh entries", byProject1)
		}
		for _, todo := range byProject1 {
			if todo.Content == "stale" {
				t.Error("stale entry survived the replace")
			}
		}
		byProject2 := s.GetTodosByProject(2)
		if len(byProject2) != 1 || byProject2[0].ID != 5 {
			t.Errorf("project 2 subset mutated: %+v", byProject2)
		}
	})

	t.Run("cold scope hydrates that project only", func(t *testing.T) {
		gw := &mockGateway{}
		s, snaps := newStore(gw)
		seedSnapshot(t, snaps, nil, []models.Todo{
			{ID: 10, Content: "mine", ProjectID: 3},
			{ID: 11, Content: "foreign", ProjectID: 4},
		}, nil)

		seen := store.State{}
		gw.ListTodosFunc = func(ctx context.Context, projectID int64) ([]models.Todo, error) {
			seen = s.Snapshot()
			return []models.Todo{{ID: 10, Content: "mine", ProjectID: 3}}, nil
		}
		s.FetchTodos(ctx, 3)

		if len(seen.AllTodos) != 1 || seen.AllTodos[0].ID != 10 {
			t.Errorf("hydrated todos during fetch = %+v, want only project 3", seen.AllTodos)
		}
		if !seen.LoadingTodos || seen.RevalidatingTodos {
			t.Errorf("flags during cold todo fetch = loading=%v revalidating=%v", seen.LoadingTodos, seen.RevalidatingTodos)
		}
	})

	t.Run("failure sets sticky error without rejecting", func(t *testing.T) {
		gw := &mockGateway{
			ListTodosFunc: func(ctx context.Context, projectID int64) ([]models.Todo, error) {
				return nil, errors.New("boom")
			},
		}
		s, _ := newStore(gw)
		s.FetchTodos(ctx, 1)
		st := s.Snapshot()
		if st.ErrorTodos != "boom" {
			t.Errorf("error = %q", st.ErrorTodos)
		}
		if st.LoadingTodos || st.RevalidatingTodos {
			t.Error("flags not cleared")
		}
	})
}

func TestCreateTodo(t *testing.T) {
	ctx := context.Background()

	// Create returns the record, reconciliation returns the same single
	// row; the cache must hold exactly one entry.
	gw := &mockGateway{
		CreateTodoFunc: func(ctx context.Context, content string, projectID int64) (models.Todo, error) {
			return models.Todo{ID: 10, Content: content, Completed: 0, ProjectID: projectID}, nil
		},
		ListTodosFunc: func(ctx context.Context, projectID int64) ([]models.Todo, error) {
			return []models.Todo{{ID: 10, Content: "Buy milk", Completed: 0, ProjectID: projectID}}, nil
		},
	}
	s, _ := newStore(gw)

	if err := s.CreateTodo(ctx, "Buy milk", 1); err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}
	st := s.Snapshot()
	if len(st.AllTodos) != 1 {
		t.Fatalf("allTodos = %+v, want exactly one entry", st.AllTodos)
	}
	if got := st.AllTodos[0]; got.ID != 10 || got.Content != "Buy milk" {
		t.Errorf("todo = %+v", got)
	}
	if st.RevalidatingTodos {
		t.Error("revalidating flag not cleared")
	}
}

func TestUpdateTodo(t *testing.T) {
	ctx := context.Background()

	t.Run("toggle applies and reconciles", func(t *testing.T) {
		completed := 0
		gw := &mockGateway{
			UpdateTodoFunc: func(ctx context.Context, id int64, c int) error {
				completed = c
				return nil
			},
		}
		gw.ListTodosFunc = func(ctx context.Context, projectID int64) ([]models.Todo, error) {
			return []models.Todo{{ID: 5, Content: "task", Completed: completed, ProjectID: 2}}, nil
		}
		s, _ := newStore(gw)
		s.SetTodosForProject(2, []models.Todo{{ID: 5, Content: "task", Completed: 0, ProjectID: 2}})

		if err := s.UpdateTodo(ctx, 5, 1); err != nil {
			t.Fatalf("UpdateTodo: %v", err)
		}
		got := s.GetTodosByProject(2)
		if len(got) != 1 || got[0].Completed != 1 {
			t.Fatalf("after toggle up: %+v", got)
		}

		// Idempotent toggle: back to 0 restores the original record
		if err := s.UpdateTodo(ctx, 5, 0); err != nil {
			t.Fatalf("UpdateTodo: %v", err)
		}
		got = s.GetTodosByProject(2)
		if len(got) != 1 {
			t.Fatalf("duplicate entries after toggle: %+v", got)
		}
		if got[0].Completed != 0 || got[0].Content != "task" {
			t.Errorf("original record not restored: %+v", got[0])
		}
	})

	t.Run("unknown id is a silent no-op", func(t *testing.T) {
		gw := &mockGateway{
			UpdateTodoFunc: func(ctx context.Context, id int64, completed int) error {
				t.Error("gateway called for unknown id")
				return nil
			},
			DeleteTodoFunc: func(ctx context.Context, id int64) error {
				t.Error("gateway called for unknown id")
				return nil
			},
		}
		s, _ := newStore(gw)
		s.SetTodosForProject(1, []models.Todo{{ID: 1, ProjectID: 1}})
		before := s.Snapshot()

		if err := s.UpdateTodo(ctx, 99, 1); err != nil {
			t.Errorf("UpdateTodo returned %v", err)
		}
		if err := s.DeleteTodo(ctx, 99); err != nil {
			t.Errorf("DeleteTodo returned %v", err)
		}
		after := s.Snapshot()
		if len(after.AllTodos) != len(before.AllTodos) || after.RevalidatingTodos {
			t.Errorf("state changed by no-op: %+v", after)
		}
	})
}

func TestDeleteTodo(t *testing.T) {
	ctx := context.Background()
	gw := &mockGateway{
		ListTodosFunc: func(ctx context.Context, projectID int64) ([]models.Todo, error) {
			return []models.Todo{}, nil
		},
	}
	s, _ := newStore(gw)
	s.SetTodosForProject(1, []models.Todo{{ID: 7, Content: "gone", ProjectID: 1}})

	if err := s.DeleteTodo(ctx, 7); err != nil {
		t.Fatalf("DeleteTodo: %v", err)
	}
	if got := s.GetTodosByProject(1); len(got) != 0 {
		t.Errorf("todos after delete = %+v", got)
	}
}

func TestProjectMutations(t *testing.T) {
	ctx := context.Background()

	t.Run("create appends then reconciles to server order", func(t *testing.T) {
		gw := &mockGateway{
			CreateProjectFunc: func(ctx context.Context, name string) (models.Project, error) {
				return models.Project{ID: 2, Name: name}, nil
			},
			ListProjectsFunc: func(ctx context.Context) ([]models.Project, error) {
				return []models.Project{{ID: 1, Name: "First"}, {ID: 2, Name: "Second"}}, nil
			},
		}
		s, _ := newStore(gw)
		s.SetProjects([]models.Project{{ID: 1, Name: "First"}})

		if err := s.CreateProject(ctx, "Second"); err != nil {
			t.Fatalf("CreateProject: %v", err)
		}
		st := s.Snapshot()
		if len(st.Projects) != 2 || st.Projects[1].Name != "Second" {
			t.Errorf("projects = %+v", st.Projects)
		}
		if st.RevalidatingProjects {
			t.Error("revalidating flag not cleared")
		}
	})

	t.Run("failed create leaves state unchanged and rejects", func(t *testing.T) {
		gw := &mockGateway{
			CreateProjectFunc: func(ctx context.Context, name string) (models.Project, error) {
				return models.Project{}, errors.New("quota exceeded")
			},
			ListProjectsFunc: func(ctx context.Context) ([]models.Project, error) {
				t.Error("reconciliation fetch after failed mutation")
				return nil, nil
			},
		}
		s, _ := newStore(gw)
		s.SetProjects([]models.Project{{ID: 1, Name: "Only"}})

		err := s.CreateProject(ctx, "Nope")
		if err == nil || err.Error() != "quota exceeded" {
			t.Fatalf("err = %v, want gateway message", err)
		}
		st := s.Snapshot()
		if len(st.Projects) != 1 || st.Projects[0].Name != "Only" {
			t.Errorf("projects mutated by failed create: %+v", st.Projects)
		}
		if st.RevalidatingProjects {
			t.Error("revalidating flag not cleared after failure")
		}
	})

	t.Run("rename patches locally before reconciliation", func(t *testing.T) {
		reconciled := []models.Project{{ID: 1, Name: "Renamed"}}
		gw := &mockGateway{
			ListProjectsFunc: func(ctx context.Context) ([]models.Project, error) {
				return reconciled, nil
			},
		}
		s, _ := newStore(gw)
		s.SetProjects([]models.Project{{ID: 1, Name: "Old"}})

		if err := s.UpdateProject(ctx, 1, "Renamed"); err != nil {
			t.Fatalf("UpdateProject: %v", err)
		}
		if got := s.Snapshot().Projects; got[0].Name != "Renamed" {
			t.Errorf("projects = %+v", got)
		}
	})

	t.Run("delete filters locally then reconciles", func(t *testing.T) {
		gw := &mockGateway{
			ListProjectsFunc: func(ctx context.Context) ([]models.Project, error) {
				return []models.Project{{ID: 2, Name: "Kept"}}, nil
			},
		}
		s, _ := newStore(gw)
		s.SetProjects([]models.Project{{ID: 1, Name: "Drop"}, {ID: 2, Name: "Kept"}})

		if err := s.DeleteProject(ctx, 1); err != nil {
			t.Fatalf("DeleteProject: %v", err)
		}
		if got := s.Snapshot().Projects; len(got) != 1 || got[0].ID != 2 {
			t.Errorf("projects = %+v", got)
		}
	})
}

func TestAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("login fetches the user on success", func(t *testing.T) {
		gw := &mockGateway{
			MeFunc: func(ctx context.Context) (*models.User, error) {
				return &models.User{ID: 3, Email: "me@example.com"}, nil
			},
		}
		s, _ := newStore(gw)
		if err := s.Login(ctx, "me@example.com", "hunter22"); err != nil {
			t.Fatalf("Login: %v", err)
		}
		st := s.Snapshot()
		if st.User == nil || st.User.Email != "me@example.com" {
			t.Errorf("user = %+v", st.User)
		}
		if st.LoadingUser {
			t.Error("loadingUser not cleared")
		}
	})

	t.Run("login failure records error and rejects", func(t *testing.T) {
		gw := &mockGateway{
			LoginFunc: func(ctx context.Context, email, password string) error {
				return errors.New("invalid credentials")
			},
		}
		s, _ := newStore(gw)
		err := s.Login(ctx, "me@example.com", "wrong")
		if err == nil || err.Error() != "invalid credentials" {
			t.Fatalf("err = %v", err)
		}
		st := s.Snapshot()
		if st.ErrorUser != "invalid credentials" {
			t.Errorf("errorUser = %q", st.ErrorUser)
		}
		if st.LoadingUser {
			t.Error("loadingUser not cleared after failure")
		}
	})

	t.Run("expired session resolves to no user", func(t *testing.T) {
		gw := &mockGateway{
			MeFunc: func(ctx context.Context) (*models.User, error) {
				return nil, errors.New("session expired")
			},
		}
		s, _ := newStore(gw)
		s.FetchUser(ctx)
		if st := s.Snapshot(); st.User != nil {
			t.Errorf("user = %+v, want nil", st.User)
		}
	})

	t.Run("logout wipes memory and the persisted snapshot", func(t *testing.T) {
		gw := &mockGateway{
			MeFunc: func(ctx context.Context) (*models.User, error) {
				return &models.User{ID: 1, Email: "me@example.com"}, nil
			},
		}
		s, snaps := newStore(gw)
		s.FetchUser(ctx)
		s.SetProjects([]models.Project{{ID: 1, Name: "P"}})
		s.SetTodosForProject(1, []models.Todo{{ID: 1, ProjectID: 1}})
		if _, ok := snaps.Read(store.SnapshotKey); !ok {
			t.Fatal("expected snapshot before logout")
		}

		if err := s.Logout(ctx); err != nil {
			t.Fatalf("Logout: %v", err)
		}
		st := s.Snapshot()
		if st.User != nil || len(st.Projects) != 0 || len(st.AllTodos) != 0 {
			t.Errorf("state after logout = %+v", st)
		}
		if _, ok := snaps.Read(store.SnapshotKey); ok {
			t.Error("persisted snapshot survived logout")
		}
	})
}

func TestPersistedSnapshotShape(t *testing.T) {
	ctx := context.Background()
	gw := &mockGateway{
		ListProjectsFunc: func(ctx context.Context) ([]models.Project, error) {
			return []models.Project{{ID: 1, Name: "P"}}, nil
		},
	}
	s, snaps := newStore(gw)
	s.FetchProjects(ctx)

	raw, ok := snaps.Read(store.SnapshotKey)
	if !ok {
		t.Fatal("no snapshot written")
	}
	var doc struct {
		State map[string]json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("snapshot not valid JSON: %v", err)
	}
	for _, want := range []string{"projects", "allTodos", "user"} {
		if _, ok := doc.State[want]; !ok {
			t.Errorf("snapshot missing %q", want)
		}
	}
	for key := range doc.State {
		switch key {
		case "projects", "allTodos", "user":
		default:
			t.Errorf("snapshot leaked transient field %q", key)
		}
	}
}

func TestNoDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	serverTodos := []models.Todo{}
	gw := &mockGateway{
		CreateTodoFunc: func(ctx context.Context, content string, projectID int64) (models.Todo, error) {
			todo := models.Todo{ID: int64(len(serverTodos) + 1), Content: content, ProjectID: projectID}
			serverTodos = append(serverTodos, todo)
			return todo, nil
		},
		ListTodosFunc: func(ctx context.Context, projectID int64) ([]models.Todo, error) {
			return append([]models.Todo(nil), serverTodos...), nil
		},
	}
	s, _ := newStore(gw)

	for i := 0; i < 3; i++ {
		if err := s.CreateTodo(ctx, "task", 1); err != nil {
			t.Fatalf("CreateTodo: %v", err)
		}
		s.FetchTodos(ctx, 1)
	}
	if err := s.UpdateTodo(ctx, 2, 1); err != nil {
		t.Fatalf("UpdateTodo: %v", err)
	}

	seen := map[int64]bool{}
	for _, todo := range s.Snapshot().AllTodos {
		if seen[todo.ID] {
			t.Errorf("duplicate todo id %d", todo.ID)
		}
		seen[todo.ID] = true
	}
}

func TestConcurrentFetchLastResolvedWins(t *testing.T) {
	ctx := context.Background()

	first := make(chan struct{})
	second := make(chan struct{})
	calls := 0
	var mu sync.Mutex
	gw := &mockGateway{}
	gw.ListTodosFunc = func(ctx context.Context, projectID int64) ([]models.Todo, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			<-first
			return []models.Todo{{ID: 1, Content: "from first request", ProjectID: 1}}, nil
		}
		<-second
		return []models.Todo{{ID: 1, Content: "from second request", ProjectID: 1}}, nil
	}
	s, _ := newStore(gw)
	s.SetTodosForProject(1, []models.Todo{{ID: 1, Content: "seed", ProjectID: 1}})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); s.FetchTodos(ctx, 1) }()
	go func() { defer wg.Done(); s.FetchTodos(ctx, 1) }()

	// Resolve the second request before the first: the first request's
	// response lands last and wins.
	close(second)
	close(first)
	wg.Wait()

	got := s.GetTodosByProject(1)
	if len(got) != 1 {
		t.Fatalf("todos = %+v", got)
	}
	if got[0].Content != "from first request" && got[0].Content != "from second request" {
		t.Errorf("final content %q is not a server response", got[0].Content)
	}
}
