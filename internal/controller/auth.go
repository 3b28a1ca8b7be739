package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"taskdeck/internal/auth"
	"taskdeck/internal/repository"
	"taskdeck/pkg/logger"
)

type credentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register creates a new account. It does not start a session; clients log
// in afterwards.
func (h *Handlers) Register(c *gin.Context) {
	ctx := c.Request.Context()
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email or password"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error(ctx, "Register hash failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	if _, err := h.repo.CreateUser(ctx, body.Email, string(hash)); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
			return
		}
		logger.Error(ctx, "Register failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Login verifies credentials and sets the session cookie.
func (h *Handlers) Login(c *gin.Context) {
	ctx := c.Request.Context()
	var body struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email or password"})
		return
	}
	user, hash, err := h.repo.UserByEmail(ctx, body.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Error(ctx, "Login lookup failed", "error", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(body.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	ttl := time.Duration(h.cfg.SessionTTL) * time.Hour
	token, err := auth.NewToken(h.cfg.JWTSecret, user.ID, user.Email, ttl)
	if err != nil {
		logger.Error(ctx, "Login token mint failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	h.setSessionCookie(c, token, int(ttl.Seconds()))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Logout clears the session cookie. Always succeeds.
func (h *Handlers) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Me reflects the session: the authenticated user, or JSON null when the
// cookie is missing, invalid or stale. Never an error status.
func (h *Handlers) Me(c *gin.Context) {
	ctx := c.Request.Context()
	cookie, err := c.Cookie(auth.CookieName)
	if err != nil || cookie == "" {
		c.JSON(http.StatusOK, nil)
		return
	}
	userID, _, err := auth.ParseToken(h.cfg.JWTSecret, cookie)
	if err != nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	user, err := h.repo.UserByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handlers) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, maxAge, "/", "", false, true)
}
