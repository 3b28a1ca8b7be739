// taskctl is an interactive client for a TaskDeck server. It drives the
// data synchronization store the way a UI would: commands map onto store
// operations and output renders from the store's state, including cached
// data served while a refresh runs in the background.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"taskdeck/internal/gateway"
	"taskdeck/internal/snapshot"
	"taskdeck/internal/store"
	"taskdeck/pkg/logger"
)

func main() {
	serverURL := flag.String("server", envOr("TASKDECK_SERVER", "http://localhost:8080"), "TaskDeck server base URL")
	stateDir := flag.String("state-dir", envOr("TASKDECK_STATE_DIR", defaultStateDir()), "directory for the persisted snapshot")
	flag.Parse()

	// Keep structured logs out of the interactive session
	logger.SetDefault(slog.New(slog.NewJSONHandler(io.Discard, nil)))

	client, err := gateway.New(*serverURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid server URL:", err)
		os.Exit(1)
	}
	snaps, err := snapshot.NewFile(*stateDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot open state dir:", err)
		os.Exit(1)
	}
	s := store.New(client, snaps)

	ctx := context.Background()
	s.FetchUser(ctx)
	if st := s.Snapshot(); st.User != nil {
		fmt.Printf("logged in as %s\n", st.User.Email)
	}

	fmt.Println(`taskctl — type "help" for commands`)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return
		}
		run(ctx, s, fields)
	}
}

func run(ctx context.Context, s *store.Store, fields []string) {
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "help":
		printHelp()
	case "register":
		if len(args) != 2 {
			fmt.Println("usage: register <email> <password>")
			return
		}
		if err := s.Register(ctx, args[0], args[1]); err != nil {
			fmt.Println("register failed:", err)
			return
		}
		fmt.Println("registered; now: login", args[0], "<password>")
	case "login":
		if len(args) != 2 {
			fmt.Println("usage: login <email> <password>")
			return
		}
		if err := s.Login(ctx, args[0], args[1]); err != nil {
			fmt.Println("login failed:", err)
			return
		}
		if st := s.Snapshot(); st.User != nil {
			fmt.Println("logged in as", st.User.Email)
		}
	case "logout":
		if err := s.Logout(ctx); err != nil {
			fmt.Println("logout failed:", err)
			return
		}
		fmt.Println("logged out")
	case "whoami":
		s.FetchUser(ctx)
		if st := s.Snapshot(); st.User != nil {
			fmt.Printf("%s (id %d)\n", st.User.Email, st.User.ID)
		} else {
			fmt.Println("not logged in")
		}
	case "projects":
		s.FetchProjects(ctx)
		st := s.Snapshot()
		if st.ErrorProjects != "" {
			fmt.Println("warning:", st.ErrorProjects)
		}
		if len(st.Projects) == 0 {
			fmt.Println("no projects")
			return
		}
		for _, p := range st.Projects {
			fmt.Printf("%4d  %s\n", p.ID, p.Name)
		}
	case "todos":
		id, ok := parseID(args, "usage: todos <project-id>")
		if !ok {
			return
		}
		s.FetchTodos(ctx, id)
		st := s.Snapshot()
		if st.ErrorTodos != "" {
			fmt.Println("warning:", st.ErrorTodos)
		}
		todos := s.GetTodosByProject(id)
		if len(todos) == 0 {
			fmt.Println("no todos")
			return
		}
		for _, t := range todos {
			mark := " "
			if t.Completed == 1 {
				mark = "x"
			}
			fmt.Printf("%4d [%s] %s\n", t.ID, mark, t.Content)
		}
	case "add-project":
		if len(args) == 0 {
			fmt.Println("usage: add-project <name>")
			return
		}
		if err := s.CreateProject(ctx, strings.Join(args, " ")); err != nil {
			fmt.Println("create failed:", err)
		}
	case "rename-project":
		if len(args) < 2 {
			fmt.Println("usage: rename-project <id> <name>")
			return
		}
		id, ok := parseID(args[:1], "")
		if !ok {
			return
		}
		if err := s.UpdateProject(ctx, id, strings.Join(args[1:], " ")); err != nil {
			fmt.Println("rename failed:", err)
		}
	case "rm-project":
		id, ok := parseID(args, "usage: rm-project <id>")
		if !ok {
			return
		}
		if err := s.DeleteProject(ctx, id); err != nil {
			fmt.Println("delete failed:", err)
		}
	case "add":
		if len(args) < 2 {
			fmt.Println("usage: add <project-id> <content>")
			return
		}
		id, ok := parseID(args[:1], "")
		if !ok {
			return
		}
		if err := s.CreateTodo(ctx, strings.Join(args[1:], " "), id); err != nil {
			fmt.Println("add failed:", err)
		}
	case "toggle":
		id, ok := parseID(args, "usage: toggle <todo-id>")
		if !ok {
			return
		}
		next := 1
		for _, t := range s.Snapshot().AllTodos {
			if t.ID == id && t.Completed == 1 {
				next = 0
			}
		}
		if err := s.UpdateTodo(ctx, id, next); err != nil {
			fmt.Println("toggle failed:", err)
		}
	case "rm":
		id, ok := parseID(args, "usage: rm <todo-id>")
		if !ok {
			return
		}
		if err := s.DeleteTodo(ctx, id); err != nil {
			fmt.Println("delete failed:", err)
		}
	default:
		fmt.Println("unknown command; try help")
	}
}

func parseID(args []string, usage string) (int64, bool) {
	if len(args) != 1 {
		if usage != "" {
			fmt.Println(usage)
		}
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Println("not a numeric id:", args[0])
		return 0, false
	}
	return id, true
}

func printHelp() {
	fmt.Print(`commands:
  register <email> <password>
  login <email> <password>
  logout
  whoami
  projects
  add-project <name>
  rename-project <id> <name>
  rm-project <id>
  todos <project-id>
  add <project-id> <content>
  toggle <todo-id>
  rm <todo-id>
  quit
`)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskdeck"
	}
	return filepath.Join(home, ".taskdeck")
}
