package web

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/example/todo-app/domain/task"
	"github.com/example/todo-app/modules/auth"
	"github.com/example/todo-app/modules/task"
)

// FlashKind selects how a flash message is styled.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashInfo    FlashKind = "info"
)

// Flash is a one-shot message shown on the next page render.
type Flash struct {
	Kind    FlashKind
	Message string
}

// Outcome is what a command asks the HTTP layer to do to the session.
type Outcome struct {
	Flash Flash
	// SignIn replaces the session identity.
	SignIn *Session
	// SignOut clears the whole session before the flash is stored.
	SignOut bool
}

func success(msg string) Outcome { return Outcome{Flash: Flash{Kind: FlashSuccess, Message: msg}} }
func failure(msg string) Outcome { return Outcome{Flash: Flash{Kind: FlashError, Message: msg}} }
func info(msg string) Outcome    { return Outcome{Flash: Flash{Kind: FlashInfo, Message: msg}} }

const (
	msgMissingCredentials = "Please enter both a username and a password."
	msgInvalidCredentials = "Invalid credentials."
	msgLoggedIn           = "Logged in successfully!"
	msgUserExists         = "Username already exists."
	msgPasswordTooLong    = "Password must be at most 72 bytes long."
	msgUserCreated        = "User created! You are now logged in."
	msgLoggedOut          = "You have been logged out."
	msgTitleRequired      = "Task Title is required!"
	msgInvalidDueDate     = "Please enter a valid due date."
	msgDuplicateTitle     = "Task with this title already exists."
	msgTaskAdded          = "Task added successfully!"
	msgTaskDeleted        = "Task deleted successfully!"
	msgStaleTask          = "This task was changed in another session. The list has been refreshed."
	msgCleared            = "All completed tasks have been cleared."
	msgNothingToClear     = "There are no completed tasks to clear."
	msgAccountGone        = "Your account no longer exists. Please log in again."
	msgSomethingWrong     = "Something went wrong. Please try again."
)

// Commands implements the browser actions. Each returns the Outcome to apply;
// a non-nil error means the action could not be carried out at all.
type Commands struct {
	auth  auth.AuthPort
	tasks task.TaskPort
	now   func() time.Time
}

// NewCommands creates Commands over the auth and task ports.
func NewCommands(authPort auth.AuthPort, taskPort task.TaskPort) *Commands {
	return &Commands{
		auth:  authPort,
		tasks: taskPort,
		now:   time.Now,
	}
}

// Today returns the default due date for new tasks.
func (c *Commands) Today() string {
	return c.now().Format(time.DateOnly)
}

// Login checks the credentials and signs the user in.
func (c *Commands) Login(ctx context.Context, username, password string) (Outcome, error) {
	if username == "" || password == "" {
		return failure(msgMissingCredentials), nil
	}

	userID, ok, err := c.auth.Authenticate(ctx, username, password)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return failure(msgInvalidCredentials), nil
	}

	out := success(msgLoggedIn)
	out.SignIn = &Session{UserID: userID, Username: username}
	return out, nil
}

// Signup creates an account and signs the new user in.
func (c *Commands) Signup(ctx context.Context, username, password string) (Outcome, error) {
	if username == "" || password == "" {
		return failure(msgMissingCredentials), nil
	}
	if !auth.ValidatePasswordStrength(password) {
		return failure(auth.PasswordPolicy), nil
	}

	user, err := c.auth.Register(ctx, username, password)
	switch {
	case errors.Is(err, auth.ErrUserExists):
		return failure(msgUserExists), nil
	case errors.Is(err, auth.ErrWeakPassword):
		return failure(auth.PasswordPolicy), nil
	case errors.Is(err, auth.ErrPasswordTooLong):
		return failure(msgPasswordTooLong), nil
	case errors.Is(err, auth.ErrMissingCredentials):
		return failure(msgMissingCredentials), nil
	case err != nil:
		return Outcome{}, err
	}

	out := success(msgUserCreated)
	out.SignIn = &Session{UserID: user.ID, Username: user.Username}
	return out, nil
}

// Logout ends the session.
func (c *Commands) Logout() Outcome {
	out := success(msgLoggedOut)
	out.SignOut = true
	return out
}

// AddTask adds a task for the signed-in user. An empty due date means today.
func (c *Commands) AddTask(ctx context.Context, s Session, title, description, dueDate string) (Outcome, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return failure(msgTitleRequired), nil
	}
	if strings.TrimSpace(dueDate) == "" {
		dueDate = c.Today()
	}

	_, err := c.tasks.AddTask(ctx, s.UserID, title, description, dueDate)
	switch {
	case errors.Is(err, task.ErrDuplicateTitle):
		return failure(msgDuplicateTitle), nil
	case errors.Is(err, domain.ErrInvalidDueDate):
		return failure(msgInvalidDueDate), nil
	case errors.Is(err, task.ErrEmptyTitle):
		return failure(msgTitleRequired), nil
	case errors.Is(err, task.ErrUnknownOwner):
		out := failure(msgAccountGone)
		out.SignOut = true
		return out, nil
	case err != nil:
		return Outcome{}, err
	}
	return success(msgTaskAdded), nil
}

// ToggleTask sets a task's completed flag. version is the version the page
// was rendered with; 0 skips the check.
func (c *Commands) ToggleTask(ctx context.Context, s Session, taskID string, completed bool, version int64) (Outcome, error) {
	err := c.tasks.SetCompleted(ctx, s.UserID, taskID, completed, version)
	if errors.Is(err, task.ErrStaleTask) {
		return info(msgStaleTask), nil
	}
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{}, nil
}

// DeleteTask deletes one task. Deleting a task that is already gone still succeeds.
func (c *Commands) DeleteTask(ctx context.Context, s Session, taskID string) (Outcome, error) {
	if err := c.tasks.DeleteTask(ctx, s.UserID, taskID); err != nil {
		return Outcome{}, err
	}
	return success(msgTaskDeleted), nil
}

// ClearCompleted removes all completed tasks of the user.
func (c *Commands) ClearCompleted(ctx context.Context, s Session) (Outcome, error) {
	n, err := c.tasks.ClearCompleted(ctx, s.UserID)
	if err != nil {
		return Outcome{}, err
	}
	if n == 0 {
		return info(msgNothingToClear), nil
	}
	return success(msgCleared), nil
}
