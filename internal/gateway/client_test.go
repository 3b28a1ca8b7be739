package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskdeck/internal/models"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestErrorsCarryServerMessage(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
	})

	err := client.Login(context.Background(), "a@b.com", "wrong")
	if err == nil || err.Error() != "invalid credentials" {
		t.Errorf("err = %v, want the server's message verbatim", err)
	}
}

func TestMeDecodesNullAsAnonymous(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("null"))
	})

	user, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if user != nil {
		t.Errorf("user = %+v, want nil", user)
	}
}

func TestSessionCookieTravelsImplicitly(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "taskdeck_session", Value: "tok", Path: "/"})
			w.Write([]byte(`{"ok":true}`))
		case "/api/projects":
			cookie, err := r.Cookie("taskdeck_session")
			if err != nil || cookie.Value != "tok" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}
			w.Write([]byte(`[{"id":1,"name":"Home","userId":2}]`))
		default:
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()
	if err := client.Login(ctx, "a@b.com", "secret123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	projects, err := client.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 || projects[0].Name != "Home" {
		t.Errorf("projects = %+v", projects)
	}
}

func TestCreateTodoDecodesRecord(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["content"] != "Buy milk" {
			t.Errorf("request body = %+v", body)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Todo{ID: 10, Content: "Buy milk", ProjectID: 1})
	})

	todo, err := client.CreateTodo(context.Background(), "Buy milk", 1)
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}
	if todo.ID != 10 || todo.Content != "Buy milk" {
		t.Errorf("todo = %+v", todo)
	}
}

func TestListTodosSendsProjectScope(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("projectId"); got != "42" {
			t.Errorf("projectId = %q", got)
		}
		w.Write([]byte(`[]`))
	})

	todos, err := client.ListTodos(context.Background(), 42)
	if err != nil {
		t.Fatalf("ListTodos: %v", err)
	}
	if len(todos) != 0 {
		t.Errorf("todos = %+v", todos)
	}
}
