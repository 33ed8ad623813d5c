// Package tui is the interactive front end: a login screen and the paginated
// to-do list, composed in one Bubble Tea program.
package tui

import (
	"fmt"
	"log"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/tada-remote/internal/app"
	"github.com/idilsaglam/tada-remote/internal/model"
	"github.com/idilsaglam/tada-remote/internal/todolist"
)

type screen int

const (
	screenLogin screen = iota
	screenList
)

// Model switches between the login and list screens depending on whether a
// user is signed in.
type Model struct {
	app  *app.State
	ctrl *todolist.Controller

	screen screen
	login  loginModel
	list   listModel
	notice string // last sign-in/out problem, shown on the login screen

	width int
}

// New builds the root model. st must already be initialised.
func New(st *app.State, ctrl *todolist.Controller) Model {
	m := Model{
		app:   st,
		ctrl:  ctrl,
		login: newLoginModel(st.Finder()),
		list:  newListModel(ctrl),
	}
	if u, ok := st.User(); ok {
		m.screen = screenList
		m.list.prepare(u)
	} else {
		m.login.username.Focus()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if u, ok := m.app.User(); ok {
		return tea.Batch(m.ctrl.SetUser(u), m.list.spin.Tick)
	}
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.list.help.Width = msg.Width
		m.login.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.quit()
		}
		if m.screen == screenList && m.list.mode == modeBrowse {
			switch {
			case msg.String() == "q":
				return m.quit()
			case msg.String() == "L":
				return m.logout()
			}
		}
		if m.screen == screenLogin && msg.Type == tea.KeyEsc {
			return m.quit()
		}

	case loginResultMsg:
		if msg.err == nil {
			return m.signIn(msg.user)
		}
	}

	var cmd tea.Cmd
	if m.screen == screenLogin {
		m.login, cmd = m.login.update(msg)
		// Late controller results after a logout still need to be absorbed.
		return m, tea.Batch(cmd, m.ctrl.Update(msg))
	}
	m.list, cmd = m.list.update(msg)
	return m, cmd
}

func (m Model) signIn(u model.User) (tea.Model, tea.Cmd) {
	m.login.loading = false
	if err := m.app.SignIn(u); err != nil {
		log.Printf("persist session: %v", err)
		m.login.err = fmt.Sprintf("could not save session: %v", err)
		return m, nil
	}
	m.notice = ""
	m.screen = screenList
	m.login.username.Blur()
	m.login.password.Blur()
	return m, m.list.open(u)
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	if err := m.app.Logout(); err != nil {
		log.Printf("logout: %v", err)
		m.notice = err.Error()
	}
	m.ctrl.SetUser(model.User{})
	m.screen = screenLogin
	return m, m.login.reset()
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.ctrl.Close()
	return m, tea.Quit
}

func (m Model) View() string {
	if m.screen == screenLogin {
		body := m.login.view()
		if m.notice != "" {
			body += "\n" + errorStyle.Render(m.notice)
		}
		return panelString(body, m.width)
	}
	return panelString(m.list.view(), m.width)
}

// Run starts the interactive UI and blocks until the user quits. The
// controller is closed on every exit path.
func Run(st *app.State, ctrl *todolist.Controller) error {
	defer ctrl.Close()
	p := tea.NewProgram(New(st, ctrl), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
