package routes

import (
	"issue-tracker-api/internal/handlers"
	"issue-tracker-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes() *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204) // This depends on the implementation of the frontend
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Issue Tracker API is running",
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/users/register", handlers.Register)
		api.POST("/users/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		// User endpoints
		protectedRoutes.GET("/users", handlers.GetAllUsers)
		protectedRoutes.PUT("/users/profile", handlers.UpdateProfile)
		protectedRoutes.GET("/users/activity", handlers.GetMyActivity)

		// Project endpoints
		protectedRoutes.POST("/projects", handlers.CreateProject)
		protectedRoutes.GET("/projects", handlers.GetProjects)
		protectedRoutes.GET("/projects/dashboard-stats", handlers.GetDashboardStats)
		protectedRoutes.GET("/projects/:id", handlers.GetProject)
		protectedRoutes.PUT("/projects/:id", handlers.UpdateProject)
		protectedRoutes.DELETE("/projects/:id", handlers.DeleteProject)
		protectedRoutes.GET("/projects/:id/stats", handlers.GetProjectStats)
		protectedRoutes.GET("/projects/:id/trash", handlers.GetProjectTrash)
		protectedRoutes.GET("/projects/:id/members", handlers.GetProjectMembers)
		protectedRoutes.POST("/projects/:id/members", handlers.AddProjectMember)
		protectedRoutes.DELETE("/projects/:id/members/:userId", handlers.RemoveProjectMember)

		// Task endpoints (GET /tasks/:id lists a project's tasks)
		protectedRoutes.GET("/tasks/:id", handlers.GetProjectTasks)
		protectedRoutes.POST("/tasks", handlers.CreateTask)
		protectedRoutes.PUT("/tasks/:id", handlers.UpdateTask)
		protectedRoutes.DELETE("/tasks/:id", handlers.DeleteTask)
		protectedRoutes.POST("/tasks/:id/restore", handlers.RestoreTask)
		protectedRoutes.GET("/tasks/:id/subtasks", handlers.GetSubtasks)

		// Comments and activity trail
		protectedRoutes.GET("/tasks/:id/comments", handlers.GetComments)
		protectedRoutes.POST("/tasks/:id/comments", handlers.CreateComment)
		protectedRoutes.DELETE("/tasks/:id/comments/:commentId", handlers.DeleteComment)
		protectedRoutes.GET("/tasks/:id/activities", handlers.GetActivities)

		// Timer and work logs
		protectedRoutes.POST("/tasks/:id/timer/start", handlers.StartTimer)
		protectedRoutes.POST("/tasks/:id/timer/stop", handlers.StopTimer)
		protectedRoutes.GET("/tasks/:id/worklogs", handlers.GetWorkLogs)
		protectedRoutes.POST("/tasks/:id/worklogs", handlers.CreateWorkLog)
		protectedRoutes.DELETE("/tasks/:id/worklogs/:worklogId", handlers.DeleteWorkLog)

		// Watchers, issue links, attachments
		protectedRoutes.GET("/tasks/:id/watchers", handlers.GetWatchers)
		protectedRoutes.POST("/tasks/:id/watchers", handlers.AddWatcher)
		protectedRoutes.DELETE("/tasks/:id/watchers/:userId", handlers.RemoveWatcher)
		protectedRoutes.GET("/tasks/:id/links", handlers.GetLinks)
		protectedRoutes.POST("/tasks/:id/links", handlers.AddLink)
		protectedRoutes.DELETE("/tasks/:id/links/:linkedTaskId", handlers.RemoveLink)
		protectedRoutes.GET("/tasks/:id/attachments", handlers.GetAttachments)
		protectedRoutes.POST("/tasks/:id/attachments", handlers.AddAttachment)
		protectedRoutes.DELETE("/tasks/:id/attachments/:index", handlers.RemoveAttachment)

		// Notifications
		protectedRoutes.GET("/notifications", handlers.GetNotifications)
		protectedRoutes.PUT("/notifications/read-all", handlers.MarkAllNotificationsRead)
		protectedRoutes.PUT("/notifications/:id/read", handlers.MarkNotificationRead)
		protectedRoutes.DELETE("/notifications/:id", handlers.DeleteNotification)

		// Realtime event stream
		protectedRoutes.GET("/ws", handlers.WebSocketHandler)
	}

	return ginRouter
}
