package router

import (
	"time"

	"github.com/circuit-dev/circuit/internal/handlers"
	"github.com/circuit-dev/circuit/internal/middleware"
	"github.com/circuit-dev/circuit/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:project_id", middleware.AuthMiddleware(), handlers.WebSocket)
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/logout", handlers.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.POST("", handlers.CreateProject)
			projects.GET("", handlers.ListProjects)
			projects.GET("/:project_id", handlers.GetProject)
			projects.DELETE("/:project_id", handlers.DeleteProject)

			// Membership endpoints
			projects.POST("/:project_id/members", handlers.AddMember)
			projects.DELETE("/:project_id/members", handlers.RemoveMember)
			projects.POST("/:project_id/leave", handlers.LeaveProject)

			// Task endpoints
			projects.POST("/:project_id/tasks", handlers.CreateTask)
			projects.PATCH("/:project_id/tasks/:task_id", handlers.UpdateTask)
			projects.DELETE("/:project_id/tasks/:task_id", handlers.DeleteTask)
			projects.POST("/:project_id/tasks/:task_id/assignees", handlers.AssignTask)

			// Message endpoints
			projects.POST("/:project_id/messages", handlers.PostMessage)
		}
	}

	return r
}
