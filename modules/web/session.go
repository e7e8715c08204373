package web

import (
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis/v3"
)

const (
	sessionCookieName = "todo_session"

	keyUserID       = "user_id"
	keyUsername     = "username"
	keyFlashKind    = "flash_kind"
	keyFlashMessage = "flash_message"
)

// Session is the identity attached to one browser session. The zero value
// is an anonymous visitor.
type Session struct {
	UserID   string
	Username string
}

// Authenticated reports whether a user is logged in.
func (s Session) Authenticated() bool {
	return s.UserID != ""
}

func newSessionStore(storage fiber.Storage, ttl time.Duration, secure bool) *session.Store {
	return session.New(session.Config{
		Expiration:     ttl,
		Storage:        storage,
		KeyLookup:      "cookie:" + sessionCookieName,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   secure,
	})
}

// newRedisStorage connects session storage to Redis at addr ("host:port").
// The storage constructor panics when Redis is unreachable; that is reported
// as an error instead.
func newRedisStorage(addr string) (storage *redis.Storage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to connect to session redis at %s: %v", addr, r)
		}
	}()

	host, port := parseRedisAddr(addr)
	storage = redis.New(redis.Config{
		Host: host,
		Port: port,
	})
	log.Printf("[web] Sessions stored in Redis at %s:%d", host, port)
	return storage, nil
}

// parseRedisAddr parses "host:port" into host and port.
// Returns defaults (127.0.0.1:6379) for invalid or missing values.
func parseRedisAddr(addr string) (string, int) {
	const defaultHost = "127.0.0.1"
	const defaultPort = 6379

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return defaultHost, defaultPort
	}
	if host == "" {
		host = defaultHost
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = defaultPort
	}
	return host, port
}

func currentSession(state *session.Session) Session {
	userID, _ := state.Get(keyUserID).(string)
	username, _ := state.Get(keyUsername).(string)
	return Session{UserID: userID, Username: username}
}

// applyOutcome writes a command outcome into the browser session and saves it.
// Signing out resets the whole session; signing in moves to a new session id.
func applyOutcome(state *session.Session, out Outcome) error {
	if out.SignOut {
		if err := state.Reset(); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	if out.SignIn != nil {
		if err := state.Regenerate(); err != nil {
			return fmt.Errorf("failed to regenerate session: %w", err)
		}
		state.Set(keyUserID, out.SignIn.UserID)
		state.Set(keyUsername, out.SignIn.Username)
	}

	if out.Flash.Message != "" {
		state.Set(keyFlashKind, string(out.Flash.Kind))
		state.Set(keyFlashMessage, out.Flash.Message)
	}

	if err := state.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// popFlash removes and returns the pending flash message, if any.
func popFlash(state *session.Session) *Flash {
	msg, _ := state.Get(keyFlashMessage).(string)
	if msg == "" {
		return nil
	}
	kind, _ := state.Get(keyFlashKind).(string)
	state.Delete(keyFlashKind)
	state.Delete(keyFlashMessage)
	return &Flash{Kind: FlashKind(kind), Message: msg}
}
