package web

import (
	"errors"
	"log"
	"strings"

	domain "github.com/example/todo-app/domain/task"
	userdomain "github.com/example/todo-app/domain/user"
	"github.com/example/todo-app/modules/auth"
	"github.com/example/todo-app/modules/task"
	"github.com/gofiber/fiber/v2"
)

// APIHandlers contains the JSON API handlers.
type APIHandlers struct {
	auth  auth.AuthPort
	tasks task.TaskPort
	cmds  *Commands
}

// NewAPIHandlers creates a new APIHandlers instance.
func NewAPIHandlers(authPort auth.AuthPort, taskPort task.TaskPort, cmds *Commands) *APIHandlers {
	return &APIHandlers{
		auth:  authPort,
		tasks: taskPort,
		cmds:  cmds,
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "bad_request", Message: msg})
}

// Register handles user registration.
func (h *APIHandlers) Register(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return badRequest(c, "Username and password are required")
	}

	user, err := h.auth.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	})
}

// Login handles token login.
func (h *APIHandlers) Login(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return badRequest(c, "Username and password are required")
	}

	tokens, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return h.handleAuthError(c, err)
	}
	return c.JSON(toTokenResponse(tokens))
}

// Refresh handles token refresh.
func (h *APIHandlers) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return badRequest(c, "Refresh token is required")
	}

	tokens, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) || errors.Is(err, auth.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired refresh token",
			})
		}
		return h.internalError(c, err)
	}
	return c.JSON(toTokenResponse(tokens))
}

// ListTasks returns the caller's tasks.
func (h *APIHandlers) ListTasks(c *fiber.Ctx) error {
	claims := claimsFrom(c)
	tasks, err := h.tasks.ListTasks(c.UserContext(), claims.UserID)
	if err != nil {
		return h.internalError(c, err)
	}

	done, total := domain.Progress(tasks)
	return c.JSON(TaskListResponse{Tasks: tasks, Completed: done, Total: total})
}

// CreateTask adds a task for the caller.
func (h *APIHandlers) CreateTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return badRequest(c, "Task title is required")
	}
	dueDate := req.DueDate
	if strings.TrimSpace(dueDate) == "" {
		dueDate = h.cmds.Today()
	}

	id, err := h.tasks.AddTask(c.UserContext(), claimsFrom(c).UserID, title, req.Description, dueDate)
	switch {
	case errors.Is(err, task.ErrDuplicateTitle):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: "conflict", Message: msgDuplicateTitle})
	case errors.Is(err, domain.ErrInvalidDueDate):
		return badRequest(c, "Due date must be YYYY-MM-DD")
	case errors.Is(err, task.ErrEmptyTitle):
		return badRequest(c, "Task title is required")
	case errors.Is(err, task.ErrUnknownOwner):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "unauthorized", Message: "User no longer exists"})
	case err != nil:
		return h.internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(CreateTaskResponse{ID: id})
}

// UpdateTask sets the completed flag of one of the caller's tasks.
func (h *APIHandlers) UpdateTask(c *fiber.Ctx) error {
	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Completed == nil {
		return badRequest(c, "completed is required")
	}

	err := h.tasks.SetCompleted(c.UserContext(), claimsFrom(c).UserID, c.Params("id"), *req.Completed, req.Version)
	if errors.Is(err, task.ErrStaleTask) {
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "Task was modified since version was read",
		})
	}
	if err != nil {
		return h.internalError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteTask deletes one of the caller's tasks. Unknown ids succeed.
func (h *APIHandlers) DeleteTask(c *fiber.Ctx) error {
	if err := h.tasks.DeleteTask(c.UserContext(), claimsFrom(c).UserID, c.Params("id")); err != nil {
		return h.internalError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ClearCompleted deletes the caller's completed tasks.
func (h *APIHandlers) ClearCompleted(c *fiber.Ctx) error {
	n, err := h.tasks.ClearCompleted(c.UserContext(), claimsFrom(c).UserID)
	if err != nil {
		return h.internalError(c, err)
	}
	return c.JSON(ClearCompletedResponse{Cleared: n})
}

// handleAuthError maps auth errors to HTTP responses without exposing internals.
func (h *APIHandlers) handleAuthError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid username or password",
		})
	case errors.Is(err, auth.ErrUserExists):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: msgUserExists,
		})
	case errors.Is(err, auth.ErrWeakPassword):
		return badRequest(c, auth.PasswordPolicy)
	case errors.Is(err, auth.ErrPasswordTooLong):
		return badRequest(c, msgPasswordTooLong)
	case errors.Is(err, auth.ErrMissingCredentials):
		return badRequest(c, "Username and password are required")
	default:
		return h.internalError(c, err)
	}
}

func (h *APIHandlers) internalError(c *fiber.Ctx, err error) error {
	log.Printf("[web] Internal error on %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// claimsFrom returns the claims stored by AuthMiddleware.
func claimsFrom(c *fiber.Ctx) *userdomain.Claims {
	claims, _ := c.Locals(UserContextKey).(*userdomain.Claims)
	if claims == nil {
		return &userdomain.Claims{}
	}
	return claims
}

func toTokenResponse(tokens *userdomain.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		TokenType:    tokens.TokenType,
	}
}
