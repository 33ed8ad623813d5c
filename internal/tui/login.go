package tui

import (
	"context"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/tada-remote/internal/auth"
	"github.com/idilsaglam/tada-remote/internal/model"
)

const loginFailed = "invalid credentials or server error"

type loginResultMsg struct {
	user model.User
	err  error
}

type loginModel struct {
	finder   auth.UserFinder
	username textinput.Model
	password textinput.Model
	focus    int // 0 username, 1 password
	loading  bool
	err      string

	keys loginKeyMap
	help help.Model
}

func newLoginModel(finder auth.UserFinder) loginModel {
	u := textinput.New()
	u.Prompt = "Username: "
	u.Placeholder = "bob"
	u.CharLimit = 64

	p := textinput.New()
	p.Prompt = "Password: "
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '•'
	p.CharLimit = 128

	m := loginModel{finder: finder, username: u, password: p, keys: newLoginKeyMap(), help: help.New()}
	m.help.Styles.ShortKey = helpStyle
	m.help.Styles.ShortDesc = helpStyle
	return m
}

// reset empties the form and focuses the username field.
func (m *loginModel) reset() tea.Cmd {
	m.username.SetValue("")
	m.password.SetValue("")
	m.loading = false
	m.err = ""
	m.focus = 0
	m.password.Blur()
	return m.username.Focus()
}

func (m *loginModel) switchFocus() tea.Cmd {
	if m.focus == 0 {
		m.focus = 1
		m.username.Blur()
		return m.password.Focus()
	}
	m.focus = 0
	m.password.Blur()
	return m.username.Focus()
}

// submit starts the credential lookup off the event loop. The result comes
// back as a loginResultMsg.
func (m *loginModel) submit() tea.Cmd {
	if m.loading {
		return nil
	}
	m.loading = true
	m.err = ""
	finder := m.finder
	username, password := strings.TrimSpace(m.username.Value()), m.password.Value()
	return func() tea.Msg {
		u, err := auth.Login(context.Background(), finder, username, password)
		return loginResultMsg{user: u, err: err}
	}
}

func (m loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.loading = false
		if msg.err != nil {
			log.Printf("login failed: %v", msg.err)
			m.err = loginFailed
			m.password.SetValue("")
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Next):
			return m, m.switchFocus()
		case key.Matches(msg, m.keys.Submit):
			if m.focus == 0 && m.password.Value() == "" {
				return m, m.switchFocus()
			}
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	if m.loading {
		return m, nil
	}
	if m.focus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m loginModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sign in") + "\n\n")
	b.WriteString(m.username.View() + "\n")
	b.WriteString(m.password.View() + "\n\n")
	if m.loading {
		b.WriteString(mutedStyle.Render("[ Logging in… ]"))
	} else {
		b.WriteString(accentStyle.Render("[ Login ]"))
	}
	if m.err != "" {
		b.WriteString("\n" + errorStyle.Render(m.err))
	}
	b.WriteString("\n\n" + m.help.View(m.keys))
	return b.String()
}
