package routes

import (
	"github.com/gin-gonic/gin"

	"eventhub/internal/authz"
	"eventhub/internal/handlers"
	"eventhub/internal/middleware"
	"eventhub/internal/services"
)

func SetupRoutes(
	r *gin.Engine,
	userService services.UserService,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	eventHandler *handlers.EventHandler,
	adminHandler *handlers.AdminHandler,
) *gin.Engine {

	// ---- public
	r.POST("/api/register", authHandler.Register)
	r.POST("/api/login", authHandler.Login)
	r.POST("/api/logout", authHandler.Logout)
	r.POST("/api/verify-email", authHandler.VerifyEmail)
	r.POST("/api/resend-verification", authHandler.ResendVerification)

	r.GET("/api/events", eventHandler.List)
	r.GET("/api/events/calendar", eventHandler.CalendarFeed)
	r.GET("/api/events/:id", eventHandler.Get)
	r.GET("/api/events/:id/banner", eventHandler.ServeBanner)
	r.GET("/api/events/:id/calendar", eventHandler.CalendarOne)
	r.GET("/api/events/:id/flyer", eventHandler.Flyer)

	// ---- protected
	r.Use(middleware.AuthMiddleware(userService))

	r.GET("/api/user", userHandler.Me)
	r.PUT("/api/user", userHandler.UpdateProfile)

	r.POST("/api/events", eventHandler.Create)
	r.PUT("/api/events/:id", eventHandler.Update)
	r.DELETE("/api/events/:id", eventHandler.Delete)
	r.POST("/api/events/:id/banner", eventHandler.UploadBanner)
	r.POST("/api/events/import", eventHandler.ImportCSV)
	r.GET("/api/my/events", eventHandler.MyEvents)

	// ---- admin
	admin := r.Group("/api/admin", middleware.RequireRoles(authz.RoleAdmin))
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.PATCH("/users/:id/status", adminHandler.SetUserStatus)
		admin.GET("/events", adminHandler.ListEvents)
		admin.POST("/events/:id/approve", adminHandler.ApproveEvent)
		admin.POST("/events/:id/reject", adminHandler.RejectEvent)
		admin.DELETE("/events/:id", adminHandler.DeleteEvent)
	}

	return r
}
