package app

import (
	"context"
	"net/http"
	"time"

	"taskhub/internal/auth"
	"taskhub/internal/config"
	"taskhub/internal/handlers"
	"taskhub/internal/logging"
	"taskhub/internal/repo"
	"taskhub/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Pinger is a dependency checked by /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the routes are built from.
type Deps struct {
	Users    repo.UserRepo
	Projects repo.ProjectRepo
	Tasks    repo.TaskRepo
	Subtasks repo.SubtaskRepo
	Sessions *auth.Store
	Checks   map[string]Pinger
}

// Setup registers all routes on the given engine under cfg.HTTP.BasePath.
func Setup(r *gin.Engine, cfg config.Config, deps Deps) {
	base := r.Group(cfg.HTTP.BasePath)

	base.GET("/", rootHandler(cfg))
	base.GET("/healthz", healthHandler(deps.Checks))
	base.GET("/version", versionHandler(cfg))
	base.GET("/swagger-doc.json", swaggerDocHandler())
	base.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, cfg.HTTP.BasePath+"/swagger/index.html") })
	base.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL(cfg.HTTP.BasePath+"/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	cookie := handlers.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure}
	requireSession := auth.RequireSession(deps.Sessions, cookie.Name)

	userSvc := service.NewUserService(deps.Users)
	authHandler := handlers.NewAuthHandler(deps.Sessions, userSvc, cookie)
	registerAuthRoutes(base, authHandler, requireSession)

	protected := base.Group("", requireSession)

	projectHandler := handlers.NewProjectHandler(service.NewProjectService(deps.Projects))
	registerProjectRoutes(protected, projectHandler)

	taskSvc := service.NewTaskService(deps.Tasks, deps.Projects, deps.Subtasks)
	taskHandler := handlers.NewTaskHandler(taskSvc, cfg.Tasks.DefaultSort)
	registerTaskRoutes(protected, taskHandler)

	subtaskHandler := handlers.NewSubtaskHandler(service.NewSubtaskService(deps.Subtasks, deps.Tasks))
	registerSubtaskRoutes(protected, subtaskHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Taskhub API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    cfg.HTTP.BasePath + "/swagger/index.html",
			"spec":    cfg.HTTP.BasePath + "/swagger-doc.json",
			"health":  cfg.HTTP.BasePath + "/healthz",
		})
	}
}

// healthHandler pings every check; any failure turns the response into a 503.
func healthHandler(checks map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code := "ok", http.StatusOK
		results := make(map[string]string, len(checks))
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				logging.FromContext(c).WithError(err).WithField("check", name).Warn("health check failed")
				results[name] = "down"
				status, code = "degraded", http.StatusServiceUnavailable
				continue
			}
			results[name] = "up"
		}
		c.JSON(code, gin.H{
			"status": status,
			"checks": results,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler, requireSession gin.HandlerFunc) {
	api.POST("/auth/signup", h.Signup)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", requireSession, h.Logout)
	api.GET("/auth/me", h.Me)
}

func registerProjectRoutes(api *gin.RouterGroup, h *handlers.ProjectHandler) {
	api.GET("/projects", h.List)
	api.POST("/projects", h.Create)
	api.GET("/projects/:id", h.Get)
	api.PATCH("/projects/:id", h.Update)
	api.DELETE("/projects/:id", h.Delete)
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.TaskHandler) {
	api.GET("/tasks", h.List)
	api.POST("/tasks", h.Create)
	api.GET("/tasks/:id", h.Get)
	api.PATCH("/tasks/:id", h.Update)
	api.DELETE("/tasks/:id", h.Delete)
}

func registerSubtaskRoutes(api *gin.RouterGroup, h *handlers.SubtaskHandler) {
	api.GET("/subtasks", h.List)
	api.POST("/subtasks", h.Create)
	api.PATCH("/subtasks/:id", h.Update)
	api.DELETE("/subtasks/:id", h.Delete)
}
