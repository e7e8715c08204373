package web

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domain "github.com/example/todo-app/domain/task"
	userdomain "github.com/example/todo-app/domain/user"
	"github.com/example/todo-app/modules/auth"
	"github.com/example/todo-app/modules/task"
)

var errBackend = errors.New("backend down")

// fakeAuth is an in-memory auth.AuthPort. Tokens are "token-<userID>".
type fakeAuth struct {
	mu    sync.Mutex
	users map[string]userdomain.User // by username
	pass  map[string]string          // username -> password
	fail  bool
}

var _ auth.AuthPort = (*fakeAuth)(nil)

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		users: make(map[string]userdomain.User),
		pass:  make(map[string]string),
	}
}

func (f *fakeAuth) Authenticate(_ context.Context, username, password string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", false, errBackend
	}
	u, ok := f.users[username]
	if !ok || f.pass[username] != password {
		return "", false, nil
	}
	return u.ID, true, nil
}

func (f *fakeAuth) Register(_ context.Context, username, password string) (*userdomain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errBackend
	}
	if _, ok := f.users[username]; ok {
		return nil, auth.ErrUserExists
	}
	u := userdomain.User{ID: fmt.Sprintf("u%d", len(f.users)+1), Username: username, CreatedAt: time.Now()}
	f.users[username] = u
	f.pass[username] = password
	return &u, nil
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (*userdomain.TokenPair, error) {
	userID, ok, err := f.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, auth.ErrInvalidCredentials
	}
	return &userdomain.TokenPair{
		AccessToken:  "token-" + userID,
		RefreshToken: "refresh-" + userID,
		ExpiresIn:    900,
		TokenType:    "Bearer",
	}, nil
}

func (f *fakeAuth) Refresh(_ context.Context, refreshToken string) (*userdomain.TokenPair, error) {
	var userID string
	if _, err := fmt.Sscanf(refreshToken, "refresh-%s", &userID); err != nil {
		return nil, auth.ErrInvalidToken
	}
	return &userdomain.TokenPair{AccessToken: "token-" + userID, RefreshToken: refreshToken, TokenType: "Bearer"}, nil
}

func (f *fakeAuth) ValidateToken(_ context.Context, token string) (*userdomain.Claims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if token == "token-"+u.ID {
			return &userdomain.Claims{UserID: u.ID, Username: u.Username}, nil
		}
	}
	return nil, auth.ErrInvalidToken
}

func (f *fakeAuth) GetUser(_ context.Context, userID string) (*userdomain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == userID {
			return &u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (f *fakeAuth) ValidateUser(ctx context.Context, userID string) (bool, error) {
	_, err := f.GetUser(ctx, userID)
	return err == nil, nil
}

// fakeTasks is an in-memory task.TaskPort with the store's ownership and
// version rules.
type fakeTasks struct {
	mu     sync.Mutex
	tasks  []domain.Task
	nextID int
	owners interface {
		ValidateUser(context.Context, string) (bool, error)
	}
	fail bool
}

var _ task.TaskPort = (*fakeTasks)(nil)

func (f *fakeTasks) ListTasks(_ context.Context, ownerID string) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errBackend
	}
	out := []domain.Task{}
	for _, t := range f.tasks {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTasks) AddTask(ctx context.Context, ownerID, title, description, dueDate string) (string, error) {
	due, err := domain.NormalizeDueDate(dueDate)
	if err != nil {
		return "", err
	}
	if f.owners != nil {
		if ok, _ := f.owners.ValidateUser(ctx, ownerID); !ok {
			return "", task.ErrUnknownOwner
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", errBackend
	}
	for _, t := range f.tasks {
		if t.OwnerID == ownerID && t.Title == title {
			return "", task.ErrDuplicateTitle
		}
	}
	f.nextID++
	id := fmt.Sprintf("t%d", f.nextID)
	f.tasks = append(f.tasks, domain.Task{
		ID: id, OwnerID: ownerID, Title: title, Description: description, DueDate: due, Version: 1,
	})
	return id, nil
}

func (f *fakeTasks) SetCompleted(_ context.Context, ownerID, taskID string, completed bool, expectedVersion int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errBackend
	}
	for i := range f.tasks {
		t := &f.tasks[i]
		if t.ID != taskID || t.OwnerID != ownerID {
			continue
		}
		if expectedVersion > 0 && t.Version != expectedVersion {
			return task.ErrStaleTask
		}
		t.Completed = completed
		t.Version++
		return nil
	}
	return nil
}

func (f *fakeTasks) DeleteTask(_ context.Context, ownerID, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errBackend
	}
	for i, t := range f.tasks {
		if t.ID == taskID && t.OwnerID == ownerID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeTasks) ClearCompleted(_ context.Context, ownerID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return 0, errBackend
	}
	var n int64
	kept := f.tasks[:0]
	for _, t := range f.tasks {
		if t.OwnerID == ownerID && t.Completed {
			n++
			continue
		}
		kept = append(kept, t)
	}
	f.tasks = kept
	return n, nil
}

func (f *fakeTasks) byTitle(ownerID, title string) (domain.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.OwnerID == ownerID && t.Title == title {
			return t, true
		}
	}
	return domain.Task{}, false
}
