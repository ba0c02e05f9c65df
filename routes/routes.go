package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hanyam/TaskManagement-sub002/apperrors"
	"github.com/hanyam/TaskManagement-sub002/constants"
	"github.com/hanyam/TaskManagement-sub002/controllers"
	"github.com/hanyam/TaskManagement-sub002/dto"
	"github.com/hanyam/TaskManagement-sub002/middleware"
	"github.com/hanyam/TaskManagement-sub002/queries"
	"github.com/hanyam/TaskManagement-sub002/storage"
	"github.com/hanyam/TaskManagement-sub002/workflows"
)

// Deps carries everything the router needs. Resolver is nil in
// production; tests inject one to pin the current user.
type Deps struct {
	Store     storage.Store
	Workflows *workflows.Service
	Queries   *queries.Queries
	Resolver  middleware.UserResolver
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.Trace())
	r.Use(cors.Default())
	r.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse(
			[]apperrors.Error{apperrors.Internal("An unexpected error occurred")},
			middleware.TraceID(c)))
	}))

	authController := &controllers.AuthController{Store: deps.Store}
	taskController := &controllers.TaskController{Workflows: deps.Workflows, Queries: deps.Queries}
	userController := &controllers.UserController{Store: deps.Store, Queries: deps.Queries}
	dashboardController := &controllers.DashboardController{Queries: deps.Queries}

	r.POST("/register", authController.Register)
	r.POST("/login", authController.Login)

	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(deps.Resolver))

	manager := middleware.RoleMiddleware(constants.RoleManager, constants.RoleAdmin)
	admin := middleware.RoleMiddleware(constants.RoleAdmin)

	auth.GET("/tasks", taskController.GetTasks)
	auth.POST("/tasks", taskController.CreateTask)
	auth.GET("/tasks/assigned", taskController.GetAssignedTasks)
	auth.GET("/tasks/reminders", taskController.GetTasksByReminderLevel)
	auth.GET("/tasks/:id", taskController.GetTask)
	auth.PUT("/tasks/:id", taskController.UpdateTask)

	auth.POST("/tasks/:id/assign", manager, taskController.AssignTask)
	auth.PUT("/tasks/:id/reassign", manager, taskController.ReassignTask)
	auth.POST("/tasks/:id/accept", taskController.AcceptTask)
	auth.POST("/tasks/:id/reject", taskController.RejectTask)
	auth.POST("/tasks/:id/cancel", taskController.CancelTask)
	auth.POST("/tasks/:id/complete", taskController.CompleteTask)
	auth.POST("/tasks/:id/review", manager, taskController.ReviewTask)

	auth.GET("/tasks/:id/progress", taskController.GetProgressHistory)
	auth.POST("/tasks/:id/progress", taskController.UpdateProgress)
	auth.POST("/tasks/:id/progress/:progressId/accept", manager, taskController.AcceptProgress)
	auth.POST("/tasks/:id/progress/:progressId/reject", manager, taskController.RejectProgress)

	auth.GET("/extensions", taskController.GetExtensionRequests)
	auth.POST("/tasks/:id/extensions", taskController.RequestExtension)
	auth.POST("/tasks/:id/extensions/:requestId/approve", manager, taskController.ApproveExtension)
	auth.POST("/tasks/:id/extensions/:requestId/reject", manager, taskController.RejectExtension)

	auth.GET("/tasks/:id/history", taskController.GetHistory)

	auth.GET("/dashboard/stats", dashboardController.Stats)

	auth.GET("/users/search", manager, userController.SearchUsers)
	auth.GET("/users", admin, userController.GetUsers)
	auth.PUT("/users/:id", admin, userController.UpdateUser)

	return r
}
