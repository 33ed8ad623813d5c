package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/tada-remote/internal/api"
	"github.com/idilsaglam/tada-remote/internal/app"
	"github.com/idilsaglam/tada-remote/internal/auth"
	"github.com/idilsaglam/tada-remote/internal/config"
	"github.com/idilsaglam/tada-remote/internal/model"
	"github.com/idilsaglam/tada-remote/internal/store/sessionstore"
	"github.com/idilsaglam/tada-remote/internal/todolist"
	"github.com/idilsaglam/tada-remote/internal/tui"
	"github.com/idilsaglam/tada-remote/internal/ui"
)

// Options tune output behavior from root flags.
type Options struct {
	Group  bool // list grouped by pending/done
	Config config.Config

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interactive runs the terminal UI. Defaults to tui.Run.
	Interactive func(*app.State, *todolist.Controller) error
}

func (o Options) withDefaults() Options {
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Interactive == nil {
		o.Interactive = tui.Run
	}
	return o
}

type runner struct {
	opt    Options
	client *api.Client
	state  *app.State
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
// With no subcommand the interactive UI starts.
func Run(args []string, opt Options) int {
	opt = opt.withDefaults()
	if err := ui.SetTheme(opt.Config.Theme); err != nil {
		ui.Fail(opt.Stderr, err.Error())
	}
	closeLog, err := setupLogging(opt.Config.LogFile)
	if err != nil {
		ui.Fail(opt.Stderr, "log: "+err.Error())
		return 1
	}
	defer closeLog()

	cfg := opt.Config
	client := api.New(cfg.API.BaseURL, nil, cfg.API.Timeout.Duration())
	st := app.New(sessionstore.New(sessionstore.NewFileKV(cfg.Session.File)), client)
	st.Init()
	r := &runner{opt: opt, client: client, state: st}

	cmd, a := "ui", []string(nil)
	if len(args) > 0 {
		cmd, a = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Stdout)
		return 0

	case "ui":
		return r.doInteractive()

	case "login":
		if len(a) < 1 || len(a) > 2 {
			ui.Fail(opt.Stderr, "usage: todo login <username> [password]")
			return 2
		}
		return r.doLogin(ctx, a)

	case "logout":
		return r.doLogout()

	case "whoami":
		return r.doWhoami()

	case "ls":
		return r.doList(ctx, a)

	case "add":
		if len(a) == 0 {
			ui.Fail(opt.Stderr, "usage: todo add <title...>")
			return 2
		}
		return r.doAdd(ctx, strings.Join(a, " "))

	case "done":
		id, code := r.idArg("done", a)
		if code != 0 {
			return code
		}
		return r.doToggle(ctx, id)

	case "edit":
		if len(a) < 2 {
			ui.Fail(opt.Stderr, "usage: todo edit <id> <title...>")
			return 2
		}
		id, code := r.idArg("edit", a[:1])
		if code != 0 {
			return code
		}
		return r.doEdit(ctx, id, strings.Join(a[1:], " "))

	case "rm":
		id, code := r.idArg("rm", a)
		if code != 0 {
			return code
		}
		return r.doRemove(ctx, id)
	}

	ui.Fail(opt.Stderr, "unknown subcommand: "+cmd)
	fmt.Fprintln(opt.Stderr)
	PrintHelp(opt.Stderr)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `todo - a to-do client for a remote store

Usage:
  todo [subcommand] [args]

Subcommands:
  (none) | ui               Start the interactive UI
  login <user> [password]   Sign in (password is read from stdin when omitted)
  logout                    Forget the saved session
  whoami                    Show the signed-in user
  ls [-page N] [-q text]    List a page of todos, newest first
  add <title...>            Add a todo
  done <id>                 Toggle a todo's completion
  edit <id> <title...>      Rename a todo
  rm <id>                   Delete a todo

Environment:
  TODO_API_URL, TODO_HTTP_TIMEOUT, TODO_PAGE_SIZE, TODO_DEBOUNCE,
  TODO_SESSION_FILE, TODO_LOG_FILE, TODO_THEME

Examples:
  todo login bob x
  todo add "Buy milk"
  todo ls -q milk
  todo done 12
`)
}

// setupLogging sends the standard logger to path. With no path, logs are
// dropped: the interactive UI owns the terminal.
func setupLogging(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, "todo")
	if err != nil {
		return nil, err
	}
	return func() { _ = f.Close() }, nil
}

// -------------- subcommand impls ----------------

func (r *runner) doInteractive() int {
	cfg := r.opt.Config
	ctrl := todolist.New(r.client, todolist.Options{
		PageSize: cfg.List.PageSize,
		Debounce: cfg.List.Debounce.Duration(),
	})
	if err := r.opt.Interactive(r.state, ctrl); err != nil {
		ui.Fail(r.opt.Stderr, err.Error())
		return 1
	}
	return 0
}

func (r *runner) doLogin(ctx context.Context, a []string) int {
	username := a[0]
	var password string
	if len(a) == 2 {
		password = a[1]
	} else {
		fmt.Fprint(r.opt.Stderr, "Password: ")
		line, err := bufio.NewReader(r.opt.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			ui.Fail(r.opt.Stderr, "read password: "+err.Error())
			return 1
		}
		password = strings.TrimRight(line, "\r\n")
	}

	u, err := r.state.Login(ctx, username, password)
	if err != nil {
		log.Printf("login %q: %v", username, err)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			ui.Fail(r.opt.Stderr, "invalid credentials or server error")
		} else {
			ui.Fail(r.opt.Stderr, err.Error())
		}
		return 1
	}
	ui.OK(r.opt.Stdout, fmt.Sprintf("logged in as %s (id %d)", u.Username, u.ID))
	return 0
}

func (r *runner) doLogout() int {
	if err := r.state.Logout(); err != nil {
		ui.Fail(r.opt.Stderr, err.Error())
		return 1
	}
	ui.OK(r.opt.Stdout, "logged out")
	return 0
}

func (r *runner) doWhoami() int {
	u, ok := r.user()
	if !ok {
		return 1
	}
	fmt.Fprintf(r.opt.Stdout, "%s (id %d)\n", u.Username, u.ID)
	return 0
}

func (r *runner) doList(ctx context.Context, a []string) int {
	fs := newFlagSet("ls", r.opt.Stderr)
	page := fs.Int("page", 1, "page number (1-based)")
	query := fs.String("q", "", "search text")
	group := fs.Bool("group", r.opt.Group, "group output by pending/done")
	if err := fs.Parse(a); err != nil || fs.NArg() > 0 {
		ui.Fail(r.opt.Stderr, "usage: todo ls [-page N] [-q text] [-group]")
		return 2
	}
	if *page < 1 {
		ui.Fail(r.opt.Stderr, fmt.Sprintf("ls: page must be >= 1, got %d", *page))
		return 2
	}
	u, ok := r.user()
	if !ok {
		return 1
	}

	size := r.opt.Config.List.PageSize
	if size < 1 {
		size = todolist.DefaultPageSize
	}
	q := model.NormalizeQuery(*query)
	p, err := r.client.ListTodos(ctx, model.Filter{
		UserID: u.ID,
		Page:   *page,
		Limit:  size,
		Sort:   "id",
		Order:  "desc",
		Query:  q,
	})
	if err != nil {
		r.storeFailure("load todos", err)
		return 1
	}
	pages := model.TotalPages(p.TotalCount, size)
	if *page > pages {
		ui.Fail(r.opt.Stderr, fmt.Sprintf("page out of range: have %d, got %d", pages, *page))
		return 2
	}
	ui.RenderPage(r.opt.Stdout, ui.PageView{
		Username:   u.Username,
		Items:      p.Items,
		Page:       *page,
		TotalPages: pages,
		TotalCount: p.TotalCount,
		Query:      q,
	}, *group)
	return 0
}

func (r *runner) doAdd(ctx context.Context, title string) int {
	title = strings.TrimSpace(title)
	if title == "" {
		ui.Fail(r.opt.Stderr, "add: empty title")
		return 2
	}
	u, ok := r.user()
	if !ok {
		return 1
	}
	t, err := r.client.CreateTodo(ctx, model.Draft{Title: title, Completed: false, UserID: u.ID})
	if err != nil {
		r.storeFailure("add", err)
		return 1
	}
	ui.OK(r.opt.Stdout, fmt.Sprintf("added #%d", t.ID))
	return 0
}

func (r *runner) doToggle(ctx context.Context, id int64) int {
	t, code := r.ownTodo(ctx, id)
	if code != 0 {
		return code
	}
	t.Completed = !t.Completed
	if _, err := r.client.UpdateTodo(ctx, t); err != nil {
		r.storeFailure("done", err)
		return 1
	}
	if t.Completed {
		ui.OK(r.opt.Stdout, fmt.Sprintf("completed #%d", id))
	} else {
		ui.OK(r.opt.Stdout, fmt.Sprintf("reopened #%d", id))
	}
	return 0
}

func (r *runner) doEdit(ctx context.Context, id int64, title string) int {
	title = strings.TrimSpace(title)
	if title == "" {
		ui.Fail(r.opt.Stderr, "edit: empty title")
		return 2
	}
	t, code := r.ownTodo(ctx, id)
	if code != 0 {
		return code
	}
	t.Title = title
	if _, err := r.client.UpdateTodo(ctx, t); err != nil {
		r.storeFailure("edit", err)
		return 1
	}
	ui.OK(r.opt.Stdout, fmt.Sprintf("renamed #%d", id))
	return 0
}

func (r *runner) doRemove(ctx context.Context, id int64) int {
	if _, code := r.ownTodo(ctx, id); code != 0 {
		return code
	}
	if err := r.client.DeleteTodo(ctx, id); err != nil {
		r.storeFailure("rm", err)
		return 1
	}
	ui.OK(r.opt.Stdout, fmt.Sprintf("removed #%d", id))
	return 0
}

// -------------- helpers --------------

func newFlagSet(name string, w io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	return fs
}

func (r *runner) user() (model.User, bool) {
	u, ok := r.state.User()
	if !ok {
		ui.Fail(r.opt.Stderr, "not logged in")
		ui.Hint(r.opt.Stderr, "run `todo login <username>` first")
	}
	return u, ok
}

func (r *runner) idArg(cmd string, a []string) (int64, int) {
	if len(a) != 1 {
		ui.Fail(r.opt.Stderr, fmt.Sprintf("usage: todo %s <id>", cmd))
		return 0, 2
	}
	id, err := strconv.ParseInt(a[0], 10, 64)
	if err != nil || id < 1 {
		ui.Fail(r.opt.Stderr, cmd+": not a todo id: "+a[0])
		ui.Hint(r.opt.Stderr, "run `todo ls` to see ids")
		return 0, 2
	}
	return id, 0
}

// ownTodo fetches id and checks it belongs to the signed-in user. Other
// users' todos are reported as missing.
func (r *runner) ownTodo(ctx context.Context, id int64) (model.Todo, int) {
	u, ok := r.user()
	if !ok {
		return model.Todo{}, 1
	}
	t, err := r.client.GetTodo(ctx, id)
	var se *api.StatusError
	switch {
	case errors.As(err, &se) && se.Code == http.StatusNotFound, err == nil && t.UserID != u.ID:
		ui.Fail(r.opt.Stderr, fmt.Sprintf("todo #%d not found", id))
		ui.Hint(r.opt.Stderr, "run `todo ls` to see ids")
		return model.Todo{}, 1
	case err != nil:
		r.storeFailure("load todo", err)
		return model.Todo{}, 1
	}
	return t, 0
}

func (r *runner) storeFailure(what string, err error) {
	log.Printf("%s: %v", what, err)
	ui.Fail(r.opt.Stderr, fmt.Sprintf("%s failed: %v", what, err))
	if errors.Is(err, api.ErrNetwork) {
		var se *api.StatusError
		if !errors.As(err, &se) {
			ui.Hint(r.opt.Stderr, "is the store running at "+r.client.BaseURL()+"?")
		}
	}
}
