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

// ListProjects returns the session user's projects ordered by id,
// cache-first as raw bytes, collapsing concurrent misses per user.
func (h *Handlers) ListProjects(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if b, ok := h.cache.GetProjects(ctx, userID); ok {
		c.Data(http.StatusOK, "application/json", b)
		return
	}
	key := fmt.Sprintf("projects:%d", userID)
	v, err, _ := h.listGroup.Do(key, func() (interface{}, error) {
		projects, err := h.repo.ListProjects(context.Background(), userID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(projects)
	})
	if err != nil {
		if ctx.Err() != nil || isContextErr(err) {
			return
		}
		logger.Error(ctx, "ListProjects failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}
	b := v.([]byte)
	c.Data(http.StatusOK, "application/json", b)
	go h.cache.SetProjects(context.Background(), userID, b)
}

// CreateProject inserts a project and returns the created record.
func (h *Handlers) CreateProject(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project name is required"})
		return
	}
	project, err := h.repo.CreateProject(ctx, userID, body.Name)
	if err != nil {
		logger.Error(ctx, "CreateProject failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}
	h.projectChanged(ctx, "create", project.ID, userID)
	c.JSON(http.StatusCreated, project)
}

// UpdateProject renames a project. Non-owned or missing ids are 404.
func (h *Handlers) UpdateProject(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project name is required"})
		return
	}
	if err := h.repo.UpdateProject(ctx, userID, id, body.Name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		logger.Error(ctx, "UpdateProject failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update project"})
		return
	}
	h.projectChanged(ctx, "update", id, userID)
	c.JSON(http.StatusOK, true)
}

// DeleteProject removes a project and its todos. Non-owned ids are 404.
func (h *Handlers) DeleteProject(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}
	if err := h.repo.DeleteProject(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		logger.Error(ctx, "DeleteProject failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete project"})
		return
	}
	h.cache.InvalidateTodos(ctx, userID, id)
	h.projectChanged(ctx, "delete", id, userID)
	c.JSON(http.StatusOK, true)
}

func (h *Handlers) projectChanged(ctx context.Context, action string, id, userID int64) {
	h.cache.InvalidateProjects(ctx, userID)
	h.events.Publish(ctx, models.ChangeEvent{
		Entity:      "project",
		Action:      action,
		ID:          id,
		UserID:      userID,
		RequestedAt: time.Now(),
	})
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
