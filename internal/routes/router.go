package routes

import (
	"github.com/gin-gonic/gin"

	"taskdeck/internal/controller"
	"taskdeck/internal/middleware"
)

// Router wires the RPC surface onto a gin engine.
func Router(h *controller.Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID())

	// Health for load balancers and probes
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)

	// Public: session is established (or reflected) here
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", h.Me)
	}

	// Protected: valid session cookie required
	api := router.Group("/api")
	api.Use(middleware.Session())
	{
		api.GET("/projects", h.ListProjects)
		api.POST("/projects", h.CreateProject)
		api.PUT("/projects/:id", h.UpdateProject)
		api.DELETE("/projects/:id", h.DeleteProject)

		api.GET("/todos", h.ListTodos)
		api.POST("/todos", h.CreateTodo)
		api.PUT("/todos/:id", h.UpdateTodo)
		api.DELETE("/todos/:id", h.DeleteTodo)
	}

	return router
}
