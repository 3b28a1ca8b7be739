// Seed creates a demo user with projects and todos. Run from project root:
// go run ./scripts/seed
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"taskdeck/internal/config"
	"taskdeck/internal/database"
	"taskdeck/internal/repository"
)

func main() {
	loadEnvFile(".env")

	ctx := context.Background()
	db, err := database.Open(ctx, config.Get())
	if err != nil {
		fmt.Fprintln(os.Stderr, "DATABASE_URL not set or DB connection failed:", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		fmt.Fprintln(os.Stderr, "Schema failed:", err)
		os.Exit(1)
	}

	repo := repository.New(db)
	start := time.Now()

	hash, _ := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	user, err := repo.CreateUser(ctx, "demo@taskdeck.local", string(hash))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Seed user failed (already seeded?):", err)
		os.Exit(1)
	}

	const projects = 5
	const todosPerProject = 200
	for p := 1; p <= projects; p++ {
		project, err := repo.CreateProject(ctx, user.ID, fmt.Sprintf("Project %d", p))
		if err != nil {
			fmt.Fprintln(os.Stderr, "Seed project failed:", err)
			os.Exit(1)
		}
		args := make([]interface{}, 0, todosPerProject*3)
		placeholders := make([]string, 0, todosPerProject)
		for i := 0; i < todosPerProject; i++ {
			placeholders = append(placeholders, fmt.Sprintf("($%d,$%d,$%d,0)", 3*i+1, 3*i+2, 3*i+3))
			args = append(args, fmt.Sprintf("Task %d of %s", i+1, project.Name), project.ID, user.ID)
		}
		q := `INSERT INTO todos (content, project_id, user_id, completed) VALUES ` +
			strings.Join(placeholders, ",")
		if _, err := db.ExecContext(ctx, q, args...); err != nil {
			fmt.Fprintln(os.Stderr, "Insert todos failed:", err)
			os.Exit(1)
		}
		fmt.Printf("\rSeeded %d / %d projects", p, projects)
	}

	fmt.Printf("\nDone: user demo@taskdeck.local (password demo-password), %d projects, %d todos in %v\n",
		projects, projects*todosPerProject, time.Since(start))
}

func loadEnvFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		if len(val) >= 2 && (val[0] == '"' || val[0] == '\'') && val[len(val)-1] == val[0] {
			val = val[1 : len(val)-1]
		}
		if key != "" && os.Getenv(key) == "" {
			_ = os.Setenv(key, val)
		}
	}
}
