package web

import (
	"context"
	"log"
	"strconv"

	domain "github.com/example/todo-app/domain/task"
	"github.com/example/todo-app/modules/task"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const progressWidth = 20

// Pages serves the browser interface. Every action is a form POST answered
// with a redirect back to the index page.
type Pages struct {
	cmds  *Commands
	tasks task.TaskPort
	store *session.Store
	views *views
}

// NewPages creates the browser handlers.
func NewPages(cmds *Commands, tasks task.TaskPort, store *session.Store, v *views) *Pages {
	return &Pages{
		cmds:  cmds,
		tasks: tasks,
		store: store,
		views: v,
	}
}

// Index renders the login form or the signed-in user's task list.
func (p *Pages) Index(c *fiber.Ctx) error {
	state, err := p.store.Get(c)
	if err != nil {
		return err
	}

	s := currentSession(state)
	flash := popFlash(state)
	if flash != nil {
		if err := state.Save(); err != nil {
			return err
		}
	}

	data := pageData{Flash: flash, Session: s}
	if !s.Authenticated() {
		return p.views.render(c, fiber.StatusOK, "login", data)
	}

	tasks, err := p.tasks.ListTasks(c.UserContext(), s.UserID)
	if err != nil {
		return err
	}
	data.Tasks = tasks
	data.Done, data.Total = domain.Progress(tasks)
	data.Percent = percent(data.Done, data.Total)
	data.Progress = progressBar(data.Done, data.Total, progressWidth)
	data.Today = p.cmds.Today()

	return p.views.render(c, fiber.StatusOK, "tasks", data)
}

func (p *Pages) Login(c *fiber.Ctx) error {
	return p.command(c, false, func(ctx context.Context, _ Session) (Outcome, error) {
		return p.cmds.Login(ctx, c.FormValue("username"), c.FormValue("password"))
	})
}

func (p *Pages) Signup(c *fiber.Ctx) error {
	return p.command(c, false, func(ctx context.Context, _ Session) (Outcome, error) {
		return p.cmds.Signup(ctx, c.FormValue("username"), c.FormValue("password"))
	})
}

func (p *Pages) Logout(c *fiber.Ctx) error {
	return p.command(c, false, func(context.Context, Session) (Outcome, error) {
		return p.cmds.Logout(), nil
	})
}

func (p *Pages) AddTask(c *fiber.Ctx) error {
	return p.command(c, true, func(ctx context.Context, s Session) (Outcome, error) {
		return p.cmds.AddTask(ctx, s, c.FormValue("title"), c.FormValue("description"), c.FormValue("due_date"))
	})
}

func (p *Pages) ToggleTask(c *fiber.Ctx) error {
	return p.command(c, true, func(ctx context.Context, s Session) (Outcome, error) {
		completed, err := strconv.ParseBool(c.FormValue("completed"))
		if err != nil {
			return Outcome{}, fiber.NewError(fiber.StatusBadRequest, "completed must be true or false")
		}
		// A missing or malformed version falls back to an unconditional write.
		version, _ := strconv.ParseInt(c.FormValue("version"), 10, 64)
		return p.cmds.ToggleTask(ctx, s, c.Params("id"), completed, version)
	})
}

func (p *Pages) DeleteTask(c *fiber.Ctx) error {
	return p.command(c, true, func(ctx context.Context, s Session) (Outcome, error) {
		return p.cmds.DeleteTask(ctx, s, c.Params("id"))
	})
}

func (p *Pages) ClearCompleted(c *fiber.Ctx) error {
	return p.command(c, true, func(ctx context.Context, s Session) (Outcome, error) {
		return p.cmds.ClearCompleted(ctx, s)
	})
}

// command loads the session, runs one action, stores its outcome and
// redirects to the index page.
func (p *Pages) command(c *fiber.Ctx, requireAuth bool, run func(context.Context, Session) (Outcome, error)) error {
	state, err := p.store.Get(c)
	if err != nil {
		return err
	}

	s := currentSession(state)
	if requireAuth && !s.Authenticated() {
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	out, err := run(c.UserContext(), s)
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			return fe
		}
		log.Printf("[web] %s %s failed: %v", c.Method(), c.Path(), err)
		out = failure(msgSomethingWrong)
	}

	if err := applyOutcome(state, out); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}
