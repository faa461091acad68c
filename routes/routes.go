package routes

import (
	"school-management-api/controllers"
	"school-management-api/middleware"
	"school-management-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "School Management API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Posts
			posts := protected.Group("/posts")
			{
				posts.GET("/:id", controllers.GetPost)

				// Students read their feed
				posts.GET("/feed", middleware.RequireRole(models.RoleStudent), controllers.GetFeed)

				// Teachers and heads author posts
				posts.POST("", middleware.RequireRole(models.RoleTeacher, models.RoleDeptHead), controllers.CreatePost)
				posts.GET("/mine", middleware.RequireRole(models.RoleTeacher, models.RoleDeptHead), controllers.GetMyPosts)
				posts.GET("/targets", middleware.RequireRole(models.RoleTeacher, models.RoleDeptHead), controllers.GetPostTargets)
				posts.PUT("/:id", middleware.RequireRole(models.RoleTeacher, models.RoleDeptHead), controllers.UpdatePost)
				posts.POST("/:id/submit", middleware.RequireRole(models.RoleTeacher, models.RoleDeptHead), controllers.SubmitPost)
				posts.POST("/:id/archive", middleware.RequireRole(models.RoleTeacher, models.RoleDeptHead, models.RoleAdmin), controllers.ArchivePost)
				posts.DELETE("/:id", middleware.RequireRole(models.RoleTeacher, models.RoleDeptHead, models.RoleAdmin), controllers.DeletePost)

				// Heads and admins run the approval queue
				posts.GET("/pending", middleware.RequireRole(models.RoleDeptHead, models.RoleAdmin), controllers.GetPendingPosts)
				posts.GET("/department", middleware.RequireRole(models.RoleDeptHead, models.RoleAdmin), controllers.GetDepartmentPosts)
				posts.POST("/:id/approve", middleware.RequireRole(models.RoleDeptHead, models.RoleAdmin), controllers.ApprovePost)
				posts.POST("/:id/reject", middleware.RequireRole(models.RoleDeptHead, models.RoleAdmin), controllers.RejectPost)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.POST("", middleware.RequireRole(models.RoleTeacher, models.RoleDeptHead, models.RoleAdmin), controllers.CreateNotification)
				notifications.GET("/unread-count", controllers.GetUnreadCount)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
				notifications.PUT("/type/:type/read", controllers.MarkNotificationTypeRead)
			}

			// Grades
			grades := protected.Group("/grades")
			{
				grades.GET("/mine", middleware.RequireRole(models.RoleStudent), controllers.GetMyGrades)
				grades.POST("", middleware.RequireRole(models.RoleTeacher, models.RoleDeptHead), controllers.CreateGrade)
				grades.PUT("/:id", middleware.RequireRole(models.RoleTeacher, models.RoleDeptHead), controllers.UpdateGrade)
			}
		}
	}

	// 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Route not found"})
	})
}
