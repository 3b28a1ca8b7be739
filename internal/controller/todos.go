package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskdeck/internal/middleware"
	"taskdeck/internal/models"
	"taskdeck/internal/repository"
	"taskdeck/pkg/logger"
)

// ListTodos returns one project's todos ordered by id, scoped to the session
// user. Cache-first as raw bytes, collapsing concurrent misses per scope.
func (h *Handlers) ListTodos(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	projectID, err := strconv.ParseInt(c.Query("projectId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectId is required"})
		return
	}
	if b, ok := h.cache.GetTodos(ctx, userID, projectID); ok {
		c.Data(http.StatusOK, "application/json", b)
		return
	}
	key := fmt.Sprintf("todos:%d:%d", userID, projectID)
	v, err, _ := h.listGroup.Do(key, func() (interface{}, error) {
		todos, err := h.repo.ListTodos(context.Background(), userID, projectID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(todos)
	})
	if err != nil {
		if ctx.Err() != nil || isContextErr(err) {
			return
		}
		logger.Error(ctx, "ListTodos failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list todos"})
		return
	}
	b := v.([]byte)
	c.Data(http.StatusOK, "application/json", b)
	go h.cache.SetTodos(context.Background(), userID, projectID, b)
}

// CreateTodo inserts a todo into one of the session user's projects and
// returns the created record. A foreign project id is 404.
func (h *Handlers) CreateTodo(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var body struct {
		Content   string `json:"content" binding:"required"`
		ProjectID int64  `json:"projectId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content and projectId are required"})
		return
	}
	todo, err := h.repo.CreateTodo(ctx, userID, body.ProjectID, body.Content)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		logger.Error(ctx, "CreateTodo failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create todo"})
		return
	}
	h.todoChanged(ctx, "create", todo.ID, userID, todo.ProjectID)
	c.JSON(http.StatusCreated, todo)
}

// UpdateTodo sets the completed flag (0 or 1). Non-owned ids are 404.
func (h *Handlers) UpdateTodo(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid todo id"})
		return
	}
	var body struct {
		Completed *int `json:"completed" binding:"required,min=0,max=1"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "completed must be 0 or 1"})
		return
	}
	projectID, err := h.repo.UpdateTodo(ctx, userID, id, *body.Completed)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		logger.Error(ctx, "UpdateTodo failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update todo"})
		return
	}
	h.todoChanged(ctx, "update", id, userID, projectID)
	c.JSON(http.StatusOK, true)
}

// DeleteTodo removes a todo. Non-owned ids are 404.
func (h *Handlers) DeleteTodo(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid todo id"})
		return
	}
	projectID, err := h.repo.DeleteTodo(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		logger.Error(ctx, "DeleteTodo failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete todo"})
		return
	}
	h.todoChanged(ctx, "delete", id, userID, projectID)
	c.JSON(http.StatusOK, true)
}

func (h *Handlers) todoChanged(ctx context.Context, action string, id, userID, projectID int64) {
	h.cache.InvalidateTodos(ctx, userID, projectID)
	h.events.Publish(ctx, models.ChangeEvent{
		Entity:      "todo",
		Action:      action,
		ID:          id,
		UserID:      userID,
		ProjectID:   projectID,
		RequestedAt: time.Now(),
	})
}
