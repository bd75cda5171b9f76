package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/glhive/hive/internal/api/handler"
	"github.com/glhive/hive/internal/api/middleware"
	"github.com/glhive/hive/internal/comment"
	"github.com/glhive/hive/internal/hive"
	"github.com/glhive/hive/internal/identity"
	"github.com/glhive/hive/internal/project"
	"github.com/glhive/hive/internal/task"
	"github.com/glhive/hive/internal/token"
)

func baseRouter(db handler.Pinger, service, version string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(db, service, version)
	r.Get("/health", healthHandler.ServeHTTP)

	return r
}

// IdentityRouterDeps holds all dependencies needed by the identity router.
type IdentityRouterDeps struct {
	DB              handler.Pinger
	Version         string
	IdentityService *identity.Service
	Codec           *token.Codec
	TokenPrefix     string
}

// NewIdentityRouter creates the identity service's router. Registration,
// login and account verification are open; everything else sits behind the
// authentication gateway filter.
func NewIdentityRouter(deps IdentityRouterDeps) *chi.Mux {
	r := baseRouter(deps.DB, "identity-service", deps.Version)

	authHandler := handler.NewAuthHandler(deps.IdentityService)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Get("/accountVerification/{token}", authHandler.VerifyAccount)
		r.Post("/accountVerification/{token}", authHandler.VerifyAccount)
	})

	auth := middleware.Auth(deps.Codec, deps.IdentityService, deps.TokenPrefix)

	intercommHandler := handler.NewIdentityIntercommHandler(deps.IdentityService, deps.TokenPrefix)
	r.Route("/api/v1/intercommunication", func(r chi.Router) {
		r.Use(auth)
		r.Get("/user-dto/{userId}", intercommHandler.GetUserDTO)
		r.Get("/current-user-dto", intercommHandler.GetCurrentUserDTO)
		r.Get("/current-user-id", intercommHandler.GetCurrentUserID)
		r.Get("/project-leader-role-id", intercommHandler.GetProjectLeaderRoleID)
		r.Post("/add-project-leader-role/{userId}", intercommHandler.AddProjectLeaderRole)
	})

	adminHandler := handler.NewAdminHandler(deps.IdentityService)
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(auth)
		r.Use(middleware.RequireRole(hive.RoleAdmin))
		r.Get("/users", adminHandler.ListUsers)
		r.Get("/users/department/{department}", adminHandler.ListUsersByDepartment)
	})

	return r
}

// ProjectRouterDeps holds all dependencies needed by the project router.
type ProjectRouterDeps struct {
	DB             handler.Pinger
	Version        string
	ProjectService *project.Service
	Codec          *token.Codec
	Resolver       middleware.IdentityResolver
	TokenPrefix    string
}

// NewProjectRouter creates the project service's router.
func NewProjectRouter(deps ProjectRouterDeps) *chi.Mux {
	r := baseRouter(deps.DB, "project-service", deps.Version)

	auth := middleware.Auth(deps.Codec, deps.Resolver, deps.TokenPrefix)

	projectHandler := handler.NewProjectHandler(deps.ProjectService)
	joinRequestHandler := handler.NewJoinRequestHandler(deps.ProjectService)
	intercommHandler := handler.NewProjectIntercommHandler(deps.ProjectService)

	r.Route("/api/v1/project", func(r chi.Router) {
		r.Use(auth)

		r.Post("/create-project", projectHandler.Create)
		r.Get("/{projectId}", projectHandler.Get)
		r.Put("/{projectId}", projectHandler.Update)
		r.Get("/{projectId}/members", projectHandler.ListMembers)
		r.Post("/{projectId}/add-member/{userId}", projectHandler.AddMember)
		r.Delete("/{projectId}/remove-member/{userId}", projectHandler.RemoveMember)

		r.Route("/intercommunication", func(r chi.Router) {
			r.Get("/is-member-of-project", intercommHandler.IsMemberOfProject)
			r.Get("/is-leader-of-project", intercommHandler.IsLeaderOfProject)
			r.Get("/project-dto/{projectId}", intercommHandler.GetProjectDTO)
		})
	})

	r.Route("/api/v1/join-request", func(r chi.Router) {
		r.Use(auth)

		r.Post("/{projectId}", joinRequestHandler.Send)
		r.Get("/requests/{projectId}", joinRequestHandler.Requests)
		r.Put("/update/{joinRequestId}", joinRequestHandler.Review)
	})

	r.Route("/api/v1/search", func(r chi.Router) {
		r.Use(auth)

		r.Get("/", projectHandler.ListAll)
		r.Get("/{projectName}", projectHandler.Search)
	})

	return r
}

// TaskRouterDeps holds all dependencies needed by the task router.
type TaskRouterDeps struct {
	DB          handler.Pinger
	Version     string
	TaskService *task.Service
	Codec       *token.Codec
	Resolver    middleware.IdentityResolver
	TokenPrefix string
}

// NewTaskRouter creates the task service's router.
func NewTaskRouter(deps TaskRouterDeps) *chi.Mux {
	r := baseRouter(deps.DB, "task-service", deps.Version)

	auth := middleware.Auth(deps.Codec, deps.Resolver, deps.TokenPrefix)

	taskHandler := handler.NewTaskHandler(deps.TaskService)
	intercommHandler := handler.NewTaskIntercommHandler(deps.TaskService)

	r.Route("/api/v1/task", func(r chi.Router) {
		r.Use(auth)

		r.Route("/management", func(r chi.Router) {
			r.Post("/new-task/{projectId}", taskHandler.Create)
			r.Put("/update-task/{taskId}", taskHandler.Update)
			r.Delete("/deleteTask/projectId/{projectId}/taskId/{taskId}", taskHandler.Delete)
			r.Post("/{taskId}/assign/{userId}", taskHandler.AssignUser)
		})

		r.Post("/progress/{taskId}/{projectId}", taskHandler.Progress)
		r.Get("/searchTasks", taskHandler.Search)

		r.Route("/intercommunication", func(r chi.Router) {
			r.Get("/task-dto/{taskId}", intercommHandler.GetTaskDTO)
		})
	})

	return r
}

// CommentRouterDeps holds all dependencies needed by the comment router.
type CommentRouterDeps struct {
	DB             handler.Pinger
	Version        string
	CommentService *comment.Service
	Codec          *token.Codec
	Resolver       middleware.IdentityResolver
	TokenPrefix    string
}

// NewCommentRouter creates the comment service's router.
func NewCommentRouter(deps CommentRouterDeps) *chi.Mux {
	r := baseRouter(deps.DB, "comment-service", deps.Version)

	auth := middleware.Auth(deps.Codec, deps.Resolver, deps.TokenPrefix)

	commentHandler := handler.NewCommentHandler(deps.CommentService)

	r.Route("/api/v1/comment", func(r chi.Router) {
		r.Use(auth)

		r.Post("/new-comment/{taskId}", commentHandler.Create)
		r.Get("/list/{taskId}", commentHandler.List)
		r.Delete("/{commentId}", commentHandler.Delete)
	})

	return r
}
