package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/todo-app/config"
	"github.com/example/todo-app/database"
	"github.com/example/todo-app/modules/auth"
	"github.com/example/todo-app/modules/task"
	"github.com/example/todo-app/modules/web"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/middleware/accesslog"
	"github.com/go-monolith/mono/middleware/requestid"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== To-Do List App ===")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	jwtConfig := auth.DefaultJWTConfig()
	if cfg.JWTSecretKey != "" {
		jwtConfig.SecretKey = cfg.JWTSecretKey
	} else {
		log.Println("JWT_SECRET_KEY not set; API tokens will not survive a restart")
	}
	jwtConfig.Issuer = cfg.JWTIssuer

	webConfig := web.Config{
		Addr:             cfg.HTTPAddr,
		SessionTTL:       cfg.SessionTTL,
		CookieSecure:     cfg.CookieSecure,
		SessionRedisAddr: cfg.SessionRedisAddr,
	}

	db, dbErr := database.Connect(context.Background(), database.Config{
		Driver:       database.Driver(cfg.DatabaseDriver),
		MongoURI:     cfg.MongoURI,
		DatabaseName: cfg.DatabaseName,
		SQLitePath:   cfg.SQLitePath,
	})
	if dbErr != nil {
		log.Printf("Failed to connect to the database: %v", dbErr)
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	if dbErr != nil {
		// Without a store only the connection error page is served.
		register(app, web.NewUnavailableModule(webConfig, dbErr))
	} else {
		registerMiddleware(app)

		// Order: independent modules first, then dependent modules
		// (task depends on auth, web on both).
		register(app, auth.NewModule(db, jwtConfig, auth.NewPasswordHasher()))
		register(app, task.NewModule(db))
		register(app, web.NewModule(webConfig))
	}

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg, dbErr == nil)

	operations := map[string]gfshutdown.Operation{
		"mono-app": func(ctx context.Context) error {
			log.Println("Graceful shutdown initiated...")
			if err := app.Stop(ctx); err != nil {
				return err
			}
			if db != nil {
				return db.Close(ctx)
			}
			return nil
		},
	}

	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout, operations)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

type registrar interface {
	Register(module mono.Module) error
}

func register(app registrar, module mono.Module) {
	if err := app.Register(module); err != nil {
		log.Fatalf("Failed to register %s module: %v", module.Name(), err)
	}
}

// registerMiddleware adds request ids and an access log to inter-module
// service calls. Middleware must be registered before the modules.
func registerMiddleware(app registrar) {
	requestIDMiddleware, err := requestid.New(
		requestid.WithHeaderName("X-Request-ID"),
	)
	if err != nil {
		log.Fatalf("Failed to create requestid middleware: %v", err)
	}
	register(app, requestIDMiddleware)

	accessLogMiddleware, err := accesslog.New(
		accesslog.WithOutput(os.Stdout),
		accesslog.WithFormat(accesslog.FormatJSON),
		accesslog.WithFields([]accesslog.Field{
			accesslog.FieldTimestamp,
			accesslog.FieldRequestID,
			accesslog.FieldModule,
			accesslog.FieldService,
			accesslog.FieldDurationMS,
			accesslog.FieldStatus,
		}),
	)
	if err != nil {
		log.Fatalf("Failed to create accesslog middleware: %v", err)
	}
	register(app, accessLogMiddleware)
}

func printStartupInfo(cfg *config.Config, connected bool) {
	log.Println("")
	if !connected {
		log.Printf("Database unavailable; serving the error page on %s", cfg.HTTPAddr)
		log.Println("Press Ctrl+C to shutdown")
		return
	}

	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("Store: %s", cfg.DatabaseDriver)
	if cfg.SessionRedisAddr != "" {
		log.Printf("Sessions: redis at %s (ttl %s)", cfg.SessionRedisAddr, cfg.SessionTTL)
	} else {
		log.Printf("Sessions: in memory (ttl %s)", cfg.SessionTTL)
	}
	log.Println("")
	log.Printf("Browser: http://localhost%s/", cfg.HTTPAddr)
	log.Println("")
	log.Println("  Public Endpoints:")
	log.Println("  POST   /api/v1/auth/register              - Register a new user")
	log.Println("  POST   /api/v1/auth/login                 - Login and get tokens")
	log.Println("  POST   /api/v1/auth/refresh               - Refresh access token")
	log.Println("  GET    /health                            - Health check")
	log.Println("")
	log.Println("  Protected Endpoints (require Bearer token):")
	log.Println("  GET    /api/v1/tasks                      - List your tasks")
	log.Println("  POST   /api/v1/tasks                      - Add a task")
	log.Println("  PATCH  /api/v1/tasks/:id                  - Mark a task complete or incomplete")
	log.Println("  DELETE /api/v1/tasks/:id                  - Delete a task")
	log.Println("  POST   /api/v1/tasks/clear-completed      - Delete all completed tasks")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
