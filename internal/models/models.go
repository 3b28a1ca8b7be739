package models

import "time"

// User is the authenticated identity. Password material never leaves the
// server, so the struct carries none.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Project groups todos and belongs to exactly one user.
type Project struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	UserID int64  `json:"userId"`
}

// Todo is a single task inside a project. Completed is 0 or 1 rather than a
// bool to match the wire and storage representation.
type Todo struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	Completed int    `json:"completed"`
	ProjectID int64  `json:"projectId"`
	UserID    int64  `json:"userId"`
}

// ChangeEvent is published to Kafka after every successful mutation so other
// replicas can drop their cached lists for the affected scope.
type ChangeEvent struct {
	Entity      string    `json:"entity"` // project, todo
	Action      string    `json:"action"` // create, update, delete
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ProjectID   int64     `json:"project_id,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}
