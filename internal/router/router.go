package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/homeboard/backend/api/handler"
)

type Handlers struct {
	Template     *apiHandler.TemplateHandler
	Task         *apiHandler.TaskHandler
	Notification *apiHandler.NotificationHandler
	Health       *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Recurrence templates
	r.GET("/api/v1/templates", authMiddleware(handlers.Template.GetTemplates))
	r.POST("/api/v1/templates", authMiddleware(handlers.Template.CreateTemplate))
	r.GET("/api/v1/templates/{id}", authMiddleware(handlers.Template.GetTemplate))
	r.PUT("/api/v1/templates/{id}", authMiddleware(handlers.Template.UpdateTemplate))
	r.DELETE("/api/v1/templates/{id}", authMiddleware(handlers.Template.DeleteTemplate))
	r.POST("/api/v1/templates/{id}/generate", authMiddleware(handlers.Template.GenerateTemplate))

	// Tasks
	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.GET("/api/v1/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	r.PUT("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	// Notifications
	r.GET("/api/v1/notifications", authMiddleware(handlers.Notification.GetNotifications))
	r.GET("/api/v1/notifications/unread", authMiddleware(handlers.Notification.GetUnreadCount))
	r.POST("/api/v1/notifications/{id}/read", authMiddleware(handlers.Notification.MarkRead))

	return r
}
