// Package web serves the to-do application over HTTP: server-rendered pages
// for the browser and a JSON API for programmatic clients.
package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/todo-app/modules/auth"
	"github.com/example/todo-app/modules/task"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis/v3"
)

// Config holds HTTP and session settings.
type Config struct {
	Addr         string
	SessionTTL   time.Duration
	CookieSecure bool
	// SessionRedisAddr selects Redis session storage when set; otherwise
	// sessions live in process memory.
	SessionRedisAddr string
}

// WebModule is the HTTP module.
type WebModule struct {
	cfg   Config
	dbErr error

	authAdapter auth.AuthPort
	taskAdapter task.TaskPort

	app          *fiber.App
	redisStorage *redis.Storage
}

// Compile-time interface checks.
var _ mono.Module = (*WebModule)(nil)
var _ mono.DependentModule = (*WebModule)(nil)
var _ mono.HealthCheckableModule = (*WebModule)(nil)

// NewModule creates a WebModule that serves the application.
func NewModule(cfg Config) *WebModule {
	return &WebModule{cfg: cfg}
}

// NewUnavailableModule creates a WebModule that answers every request with
// the database connection error page.
func NewUnavailableModule(cfg Config, dbErr error) *WebModule {
	return &WebModule{cfg: cfg, dbErr: dbErr}
}

// Name returns the module name.
func (m *WebModule) Name() string {
	return "web"
}

// Dependencies returns the list of module dependencies.
func (m *WebModule) Dependencies() []string {
	if m.dbErr != nil {
		return nil
	}
	return []string{"auth", "task"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *WebModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authAdapter = auth.NewAuthAdapter(container)
	case "task":
		m.taskAdapter = task.NewTaskAdapter(container)
	}
}

// Start builds the Fiber app and starts listening.
func (m *WebModule) Start(_ context.Context) error {
	v, err := loadViews()
	if err != nil {
		return err
	}

	if m.dbErr != nil {
		m.app = newUnavailableApp(v, m.dbErr)
	} else {
		if m.authAdapter == nil {
			return fmt.Errorf("auth dependency not set")
		}
		if m.taskAdapter == nil {
			return fmt.Errorf("task dependency not set")
		}

		var storage fiber.Storage
		if m.cfg.SessionRedisAddr != "" {
			m.redisStorage, err = newRedisStorage(m.cfg.SessionRedisAddr)
			if err != nil {
				return err
			}
			storage = m.redisStorage
		}

		store := newSessionStore(storage, m.cfg.SessionTTL, m.cfg.CookieSecure)
		m.app = newApp(m.authAdapter, m.taskAdapter, store, v)
	}

	go func() {
		if err := m.app.Listen(m.cfg.Addr); err != nil {
			log.Printf("[web] HTTP server error: %v", err)
		}
	}()

	log.Printf("[web] HTTP server started on %s", m.cfg.Addr)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *WebModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[web] Shutting down HTTP server...")
	err := m.app.Shutdown()
	if m.redisStorage != nil {
		if cerr := m.redisStorage.Close(); cerr != nil {
			log.Printf("[web] Error closing session storage: %v", cerr)
		}
	}
	return err
}

// Health returns the health status of the module.
func (m *WebModule) Health(_ context.Context) mono.HealthStatus {
	if m.dbErr != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database unavailable",
			Details: map[string]any{"error": m.dbErr.Error()},
		}
	}
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr": m.cfg.Addr,
		},
	}
}

func newFiberApp(v *views) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler(v),
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	return app
}

// newApp wires pages and API routes.
func newApp(authPort auth.AuthPort, taskPort task.TaskPort, store *session.Store, v *views) *fiber.App {
	app := newFiberApp(v)

	cmds := NewCommands(authPort, taskPort)
	pages := NewPages(cmds, taskPort, store, v)
	api := NewAPIHandlers(authPort, taskPort, cmds)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"module": "web",
		})
	})

	app.Get("/", pages.Index)
	app.Post("/login", pages.Login)
	app.Post("/signup", pages.Signup)
	app.Post("/logout", pages.Logout)
	app.Post("/tasks", pages.AddTask)
	app.Post("/tasks/clear-completed", pages.ClearCompleted)
	app.Post("/tasks/:id/toggle", pages.ToggleTask)
	app.Post("/tasks/:id/delete", pages.DeleteTask)

	v1 := app.Group("/api/v1", cors.New())

	authRoutes := v1.Group("/auth")
	authRoutes.Post("/register", api.Register)
	authRoutes.Post("/login", api.Login)
	authRoutes.Post("/refresh", api.Refresh)

	tasks := v1.Group("/tasks", AuthMiddleware(authPort))
	tasks.Get("", api.ListTasks)
	tasks.Post("", api.CreateTask)
	tasks.Post("/clear-completed", api.ClearCompleted)
	tasks.Patch("/:id", api.UpdateTask)
	tasks.Delete("/:id", api.DeleteTask)

	return app
}

// newUnavailableApp answers every request with 503 after a failed startup connection.
func newUnavailableApp(v *views, dbErr error) *fiber.App {
	app := newFiberApp(v)

	app.Use(func(c *fiber.Ctx) error {
		if isJSONPath(c.Path()) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
				Error:   "database_unavailable",
				Message: "Failed to connect to the database",
			})
		}
		return v.render(c, fiber.StatusServiceUnavailable, "unavailable", pageData{})
	})

	log.Printf("[web] Serving unavailable page: %v", dbErr)
	return app
}

func isJSONPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/api/")
}

// customErrorHandler answers API routes with JSON and pages with the error page.
func customErrorHandler(v *views) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		} else {
			log.Printf("[web] %s %s failed: %v", c.Method(), c.Path(), err)
		}

		if isJSONPath(c.Path()) {
			return c.Status(code).JSON(ErrorResponse{
				Error:   "server_error",
				Message: message,
			})
		}

		if code == fiber.StatusInternalServerError {
			message = msgSomethingWrong
		}
		if rerr := v.render(c, code, "error", pageData{Message: message}); rerr != nil {
			return c.Status(code).SendString(message)
		}
		return nil
	}
}
