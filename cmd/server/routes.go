package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jastrate/task-manager/internal/handlers"
	"github.com/jastrate/task-manager/internal/middleware"
	"github.com/jastrate/task-manager/internal/services"
	"github.com/jastrate/task-manager/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, a *app) {
	r.Use(middleware.RecoveryWithLog(), logger.GinLogger(), a.monitor.Middleware())
	r.Use(middleware.CORS(a.cfg.Server.AllowedOrigins))

	r.GET("/health", a.monitor.HealthHandler())
	r.GET("/healthz", a.monitor.LivenessHandler())
	r.GET("/metrics", a.monitor.MetricsHandler())

	authHandler := handlers.NewAuthHandler(a.auth, a.cfg.Auth)
	userHandler := handlers.NewUserHandler(a.users)
	groupHandler := handlers.NewGroupHandler(a.groups)
	noticeHandler := handlers.NewNotificationHandler(a.notifications)
	taskHandler := handlers.NewTaskHandler(a.tasks)

	protect := middleware.ProtectRoute(a.auth)
	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if a.limiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{a.limiter.Middleware(), h}
	}
	taskAccess := func(action services.Action) gin.HandlerFunc {
		return middleware.RequireAccess(a.authz, services.ResourceTask, action, "id")
	}
	groupAccess := func(action services.Action) gin.HandlerFunc {
		return middleware.RequireAccess(a.authz, services.ResourceGroup, action, "groupId")
	}

	api := r.Group("/api")

	user := api.Group("/user")
	{
		user.POST("/register", limited(authHandler.Register)...)
		user.POST("/login", limited(authHandler.Login)...)
		user.GET("/verify-email", authHandler.VerifyEmail)
		user.POST("/logout", authHandler.Logout)
		user.GET("/refresh-token", authHandler.Refresh)
		user.POST("/refresh-token", authHandler.Refresh)
		user.POST("/forget-password", limited(authHandler.ForgetPassword)...)
		user.POST("/reset-password", limited(authHandler.ResetPassword)...)
		user.POST("/resend-verification", limited(authHandler.ResendVerification)...)

		protected := user.Group("", protect)
		protected.GET("/me", authHandler.Me)
		protected.GET("/get-users", userHandler.GetUsers)
		protected.GET("/search-users", userHandler.SearchUsers)
		protected.GET("/get-team", userHandler.GetTeamList)
		protected.GET("/notifications", noticeHandler.GetNotifications)
		protected.PUT("/profile", userHandler.UpdateProfile)
		protected.PUT("/read-noti", noticeHandler.MarkRead)
		protected.PUT("/change-password", authHandler.ChangePassword)

		protected.POST("/create", groupHandler.CreateGroup)
		protected.GET("/my-groups", groupHandler.MyGroups)
		protected.GET("/group-members/:groupId", groupAccess(services.ActionRead), groupHandler.GroupMembers)
		protected.POST("/group/:groupId/add-user", groupAccess(services.ActionWrite), groupHandler.AddUser)
		protected.DELETE("/group/:groupId/remove-user", groupAccess(services.ActionWrite), groupHandler.RemoveUser)
		protected.PUT("/group/:groupId/role", groupAccess(services.ActionWrite), groupHandler.SetRole)
		protected.DELETE("/group/:groupId", groupAccess(services.ActionDelete), groupHandler.DeleteGroup)

		protected.GET("/:id", middleware.RequireAccess(a.authz, services.ResourceUser, services.ActionRead, "id"), userHandler.GetUser)
		protected.PUT("/:id", middleware.AdminOnly(), userHandler.ActivateUser)
		protected.DELETE("/:id", middleware.AdminOnly(), userHandler.DeleteUser)
	}

	task := api.Group("/task", protect)
	{
		task.POST("/create", taskHandler.CreateTask)
		task.POST("/duplicate/:id", taskAccess(services.ActionWrite), taskHandler.DuplicateTask)
		task.POST("/activity/:id", taskAccess(services.ActionRead), taskHandler.PostActivity)

		task.GET("", taskHandler.GetTasks)
		task.GET("/", taskHandler.GetTasks)
		task.GET("/dashboard", taskHandler.Dashboard)
		task.GET("/search", taskHandler.SearchTasks)
		task.GET("/suggestions", taskHandler.GetSuggestions)
		task.GET("/:id", taskAccess(services.ActionRead), taskHandler.GetTask)
		task.GET("/get-subtask/:id", taskAccess(services.ActionRead), taskHandler.GetSubTasks)

		task.PUT("/create-subtask/:id", taskAccess(services.ActionWrite), taskHandler.CreateSubTask)
		task.PUT("/update/:id", taskAccess(services.ActionWrite), taskHandler.UpdateTask)
		task.PUT("/:id", taskAccess(services.ActionWrite), taskHandler.TrashTask)

		task.DELETE("/delete-restore", taskHandler.DeleteRestoreTask)
		task.DELETE("/delete-restore/:id", taskAccess(services.ActionDelete), taskHandler.DeleteRestoreTask)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  false,
			"message": "Route not found: " + c.Request.URL.Path,
		})
	})
}
