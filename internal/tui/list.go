package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/tada-remote/internal/model"
	"github.com/idilsaglam/tada-remote/internal/todolist"
)

type listMode int

const (
	modeBrowse listMode = iota
	modeSearch
	modeAdd
	modeEdit
	modeConfirmDelete
)

type listModel struct {
	ctrl *todolist.Controller
	user model.User

	mode   listMode
	cursor int

	search textinput.Model
	input  textinput.Model // shared by add and edit

	// target is the todo being edited or confirmed for deletion.
	target    model.Todo
	editErr   string
	submitted bool // add form waiting for the create to resolve

	spin  spinner.Model
	pages paginator.Model
	keys  listKeyMap
	help  help.Model
}

func newListModel(ctrl *todolist.Controller) listModel {
	s := textinput.New()
	s.Prompt = "/ "
	s.Placeholder = "Search todos..."
	s.CharLimit = 100

	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	pg := paginator.New()
	pg.Type = paginator.Dots
	pg.ActiveDot = accentStyle.Render("•")
	pg.InactiveDot = mutedStyle.Render("•")

	h := help.New()
	h.Styles.ShortKey = helpStyle
	h.Styles.ShortDesc = helpStyle
	h.Styles.FullKey = helpStyle
	h.Styles.FullDesc = helpStyle

	return listModel{ctrl: ctrl, search: s, input: in, spin: sp, pages: pg, keys: newListKeyMap(), help: h}
}

// open scopes the screen to u and starts the first load.
func (m *listModel) open(u model.User) tea.Cmd {
	m.prepare(u)
	return tea.Batch(m.ctrl.SetUser(u), m.spin.Tick)
}

func (m *listModel) prepare(u model.User) {
	m.user = u
	m.mode = modeBrowse
	m.cursor = 0
	m.submitted = false
	m.input.Reset()
	m.search.SetValue("")
	m.search.Blur()
}

func (m listModel) selected() (model.Todo, bool) {
	items := m.ctrl.State().Items
	if m.cursor < 0 || m.cursor >= len(items) {
		return model.Todo{}, false
	}
	return items[m.cursor], true
}

// sync reconciles view-local state with the controller after any message.
func (m *listModel) sync() {
	st := m.ctrl.State()
	if m.cursor >= len(st.Items) {
		m.cursor = len(st.Items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.pages.TotalPages = st.TotalPages
	m.pages.Page = st.Page - 1

	if m.mode == modeAdd && m.submitted && !st.Creating {
		m.submitted = false
		if st.FormError == "" {
			m.closeInput()
		}
	}
}

func (m *listModel) closeInput() {
	m.mode = modeBrowse
	m.input.Reset()
	m.input.Blur()
	m.editErr = ""
}

func (m *listModel) openInput(mode listMode, value, placeholder string) tea.Cmd {
	m.mode = mode
	m.editErr = ""
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Placeholder = placeholder
	return m.input.Focus()
}

func (m listModel) update(msg tea.Msg) (listModel, tea.Cmd) {
	var cmds []tea.Cmd

	// Controller results are consumed before any view handling.
	cmds = append(cmds, m.ctrl.Update(msg))

	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		var cmd tea.Cmd
		switch m.mode {
		case modeSearch:
			cmd = m.updateSearch(msg)
		case modeAdd, modeEdit:
			cmd = m.updateInput(msg)
		case modeConfirmDelete:
			cmd = m.updateConfirm(msg)
		default:
			cmd = m.updateBrowse(msg)
		}
		cmds = append(cmds, cmd)

	default:
		var cmd tea.Cmd
		switch m.mode {
		case modeSearch:
			m.search, cmd = m.search.Update(msg)
		case modeAdd, modeEdit:
			m.input, cmd = m.input.Update(msg)
		}
		cmds = append(cmds, cmd)
	}

	m.sync()
	return m, tea.Batch(cmds...)
}

func (m *listModel) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		m.cursor++
	case key.Matches(msg, m.keys.Prev):
		m.cursor = 0
		return m.ctrl.PrevPage()
	case key.Matches(msg, m.keys.Next):
		m.cursor = 0
		return m.ctrl.NextPage()
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		return m.search.Focus()
	case key.Matches(msg, m.keys.Clear):
		m.search.SetValue("")
		return m.ctrl.ClearSearch()
	case key.Matches(msg, m.keys.Add):
		return m.openInput(modeAdd, "", "New todo title...")
	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.selected(); ok {
			m.target = t
			return m.openInput(modeEdit, t.Title, "Edit todo title...")
		}
	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selected(); ok {
			return m.ctrl.Toggle(t.ID)
		}
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok {
			m.target = t
			m.mode = modeConfirmDelete
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *listModel) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.mode = modeBrowse
		m.search.Blur()
		return nil
	case tea.KeyCtrlU:
		m.search.SetValue("")
		return m.ctrl.ClearSearch()
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return tea.Batch(cmd, m.ctrl.SetSearch(m.search.Value()))
}

func (m *listModel) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.submitted = false
		m.closeInput()
		return nil
	case tea.KeyEnter:
		if m.mode == modeAdd {
			if m.submitted {
				return nil
			}
			cmd := m.ctrl.Create(m.input.Value())
			m.submitted = cmd != nil
			return cmd
		}
		title := strings.TrimSpace(m.input.Value())
		if title == "" {
			m.editErr = "title is empty"
			return nil
		}
		id := m.target.ID
		m.closeInput()
		return m.ctrl.Edit(id, title)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *listModel) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.mode = modeBrowse
		return m.ctrl.Delete(m.target.ID)
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeBrowse
	}
	return nil
}

func (m listModel) view() string {
	st := m.ctrl.State()
	var lines []string

	done, pending := model.Stats(st.Items)
	lines = append(lines, fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Hi, "+m.user.Username),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("Total"), st.TotalCount,
	))
	lines = append(lines, "", m.search.View())

	switch {
	case st.Searching():
		lines = append(lines, m.spin.View()+" Searching…")
	case st.Loading():
		lines = append(lines, m.spin.View()+" Loading todos…")
	case model.NormalizeQuery(st.SearchTerm) != "":
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("Found %d todo(s) matching %q", st.TotalCount, model.NormalizeQuery(st.SearchTerm))))
	default:
		lines = append(lines, "")
	}
	if st.Error != "" {
		lines = append(lines, errorStyle.Render(st.Error))
	}
	lines = append(lines, "")

	if len(st.Items) == 0 && !st.Loading() {
		if q := model.NormalizeQuery(st.SearchTerm); q != "" {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("No todos found matching %q", q)))
		} else {
			lines = append(lines, mutedStyle.Render("No todos yet. Press a to add one."))
		}
	}
	for i, t := range st.Items {
		lines = append(lines, m.renderItem(i, t))
	}

	if st.TotalPages > 1 {
		lines = append(lines, "", fmt.Sprintf("%s  %s",
			m.pages.View(),
			mutedStyle.Render(fmt.Sprintf("Page %d of %d (%d items)", st.Page, st.TotalPages, st.TotalCount))))
	}

	if bar := m.barView(st); bar != "" {
		lines = append(lines, "", bar)
	}
	lines = append(lines, "", m.help.View(m.keys))
	return strings.Join(lines, "\n")
}

func (m listModel) renderItem(i int, t model.Todo) string {
	box, text := mutedStyle.Render(boxUnchecked), t.Title
	if t.Completed {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	prefix := "  "
	if i == m.cursor && m.mode != modeSearch {
		prefix = selectedStyle.Render("> ")
	}
	return fmt.Sprintf("%s%s %s", prefix, box, text)
}

func (m listModel) barView(st todolist.State) string {
	switch m.mode {
	case modeAdd:
		title := "Add new todo"
		if st.Creating {
			title += mutedStyle.Render("  adding…")
		}
		if st.FormError != "" {
			title += "  " + errorStyle.Render(st.FormError)
		}
		return barStyle.Render(title + "\n" + m.input.View())
	case modeEdit:
		title := "Edit todo"
		if m.editErr != "" {
			title += "  " + errorStyle.Render(m.editErr)
		}
		return barStyle.Render(title + "\n" + m.input.View())
	case modeConfirmDelete:
		return barStyle.Render(fmt.Sprintf("Delete %q? %s", m.target.Title, accentStyle.Render("y/n")))
	}
	if st.FormError != "" {
		return errorStyle.Render(st.FormError)
	}
	return ""
}
