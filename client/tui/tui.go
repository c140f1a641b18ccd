package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tasktracker/client"
	"tasktracker/models"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeSearch
)

const (
	progressWidth = 20
	ageRefresh    = 30 * time.Second
	helpLine      = "a add · space toggle · e edit · d delete · u undo · c clear done · f filter · / search · r reload · q quit"
)

// changedMsg tells the model to take a fresh controller snapshot.
type changedMsg struct{}

// RemoteEventMsg asks the model to refetch after a change made elsewhere.
type RemoteEventMsg struct {
	Event string
}

type tickMsg time.Time

type Model struct {
	ctrl     *client.Controller
	ctx      context.Context
	view     client.View
	cursor   int
	mode     mode
	input    textinput.Model
	priority models.Priority
	status   string
	now      func() time.Time
}

func New(ctx context.Context, ctrl *client.Controller) Model {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 40

	return Model{
		ctrl:     ctrl,
		ctx:      ctx,
		view:     ctrl.Snapshot(),
		input:    ti,
		priority: models.DefaultPriority,
		now:      time.Now,
	}
}

// Run starts the terminal UI. events, when non-nil, delivers remote task
// events that trigger a refetch.
func Run(ctx context.Context, ctrl *client.Controller, events <-chan string) error {
	program := tea.NewProgram(New(ctx, ctrl), tea.WithContext(ctx))
	// Listeners run inside Update for key-driven intents, so never block.
	ctrl.OnChange(func(client.View) { go program.Send(changedMsg{}) })

	if events != nil {
		go func() {
			for event := range events {
				program.Send(RemoteEventMsg{Event: event})
			}
		}()
	}

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh, tick())
}

func (m Model) refresh() tea.Msg {
	m.ctrl.Refresh(m.ctx)
	return changedMsg{}
}

// run performs a controller intent off the update loop.
func (m Model) run(intent func(ctx context.Context)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		intent(ctx)
		return changedMsg{}
	}
}

func tick() tea.Cmd {
	return tea.Tick(ageRefresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		return m.sync(), nil
	case RemoteEventMsg:
		m.status = fmt.Sprintf("Remote change: %s", msg.Event)
		return m, m.refresh
	case tickMsg:
		return m, tick()
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-10, 10)
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeAdd:
			return m.updateAddMode(msg)
		case modeEdit:
			return m.updateEditMode(msg)
		case modeSearch:
			return m.updateSearchMode(msg)
		default:
			return m.updateListMode(msg.String())
		}
	}
	return m, nil
}

func (m Model) selected() (models.Task, bool) {
	if len(m.view.Visible) == 0 {
		return models.Task{}, false
	}
	return m.view.Visible[clampCursor(m.cursor, len(m.view.Visible))], true
}

func (m Model) sync() Model {
	m.view = m.ctrl.Snapshot()
	m.cursor = clampCursor(m.cursor, len(m.view.Visible))
	return m
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	m.status = ""
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "j", "down":
		m.cursor = clampCursor(m.cursor+1, len(m.view.Visible))
	case "k", "up":
		m.cursor = clampCursor(m.cursor-1, len(m.view.Visible))
	case "a":
		m.mode = modeAdd
		m.priority = models.DefaultPriority
		m.input.Placeholder = "Task title"
		m.input.SetValue("")
		m.input.Focus()
	case " ", "space", "x":
		if task, ok := m.selected(); ok {
			id := task.ID.String()
			return m.sync(), m.run(func(ctx context.Context) { m.ctrl.Toggle(ctx, id) })
		}
	case "e", "enter":
		if task, ok := m.selected(); ok {
			if err := m.ctrl.StartEdit(task.ID.String()); err != nil {
				m.status = err.Error()
				break
			}
			m.mode = modeEdit
			m.input.Placeholder = "New title"
			m.input.SetValue(task.Title)
			m.input.CursorEnd()
			m.input.Focus()
		}
	case "d":
		if task, ok := m.selected(); ok {
			id := task.ID.String()
			return m.sync(), m.run(func(ctx context.Context) { m.ctrl.Delete(ctx, id) })
		}
	case "u":
		return m.sync(), m.run(func(ctx context.Context) { m.ctrl.UndoDelete(ctx) })
	case "c":
		return m.sync(), m.run(func(ctx context.Context) { m.ctrl.ClearCompleted(ctx) })
	case "f":
		m.ctrl.SetFilter(m.view.Filter.Next())
		m.cursor = 0
	case "/":
		m.mode = modeSearch
		m.input.Placeholder = "Search"
		m.input.SetValue(m.view.Search)
		m.input.CursorEnd()
		m.input.Focus()
	case "r":
		return m.sync(), m.refresh
	case "esc":
		if m.view.Search != "" {
			m.ctrl.SetSearch("")
		}
	}
	return m.sync(), nil
}

func (m Model) updateAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case "tab":
		m.priority = nextPriority(m.priority)
		return m, nil
	case "enter":
		err := m.ctrl.Add(m.ctx, m.input.Value(), m.priority)
		if errors.Is(err, client.ErrEmptyTitle) {
			m.status = "Title cannot be empty"
			return m, nil
		}
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeList
		return m.sync(), nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.ctrl.Escape()
		m.mode = modeList
		m.input.Blur()
		return m.sync(), nil
	case "enter":
		err := m.ctrl.SaveEdit(m.ctx)
		if errors.Is(err, client.ErrEmptyTitle) {
			m.status = "Title cannot be empty"
			return m.sync(), nil
		}
		if err == nil {
			m.mode = modeList
			m.input.Blur()
		}
		return m.sync(), nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.ctrl.SetDraft(m.input.Value())
		return m.sync(), cmd
	}
}

func (m Model) updateSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.ctrl.SetSearch("")
		m.mode = modeList
		m.input.Blur()
		return m.sync(), nil
	case "enter":
		m.mode = modeList
		m.input.Blur()
		return m.sync(), nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.ctrl.SetSearch(m.input.Value())
		m.cursor = 0
		return m.sync(), cmd
	}
}

func (m Model) View() string {
	var b strings.Builder
	v := m.view

	b.WriteString(fmt.Sprintf("Task Tracker  %d total · %d active · %d completed\n", v.Total, v.Active, v.Completed))
	b.WriteString(fmt.Sprintf("%s %3.0f%%\n", progressBar(v.Progress), v.Progress))
	b.WriteString(fmt.Sprintf("Filter: %s", v.Filter))
	if v.Search != "" {
		b.WriteString(fmt.Sprintf("  Search: %q", v.Search))
	}
	b.WriteString("\n\n")

	if v.Loading && len(v.Tasks) == 0 {
		b.WriteString("Loading tasks...\n")
	} else if len(v.Visible) == 0 {
		b.WriteString(emptyMessage(v))
	}

	now := m.now()
	for i, task := range v.Visible {
		prefix := " "
		if i == m.cursor {
			prefix = ">"
		}
		check := "[ ]"
		if task.Completed {
			check = "[x]"
		}
		b.WriteString(fmt.Sprintf("%s %s %-40s %-8s %s\n", prefix, check, task.Title, "("+string(task.Priority)+")", client.RelativeAge(task.CreatedAt, now)))
	}

	b.WriteString("\n")
	switch m.mode {
	case modeAdd:
		b.WriteString(fmt.Sprintf("New task [%s, tab to change]: %s\n", m.priority, m.input.View()))
	case modeEdit:
		b.WriteString(fmt.Sprintf("Edit (enter to save, esc to cancel): %s\n", m.input.View()))
	case modeSearch:
		b.WriteString(fmt.Sprintf("Search: %s\n", m.input.View()))
	}

	if v.Celebrating {
		b.WriteString("*** All tasks completed! ***\n")
	}
	if v.Toast != nil {
		b.WriteString(v.Toast.Message + "\n")
	}
	if v.Undo != nil {
		b.WriteString(fmt.Sprintf("Deleted %q. Press u to undo.\n", v.Undo.Title))
	}
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	b.WriteString(helpLine + "\n")
	return b.String()
}

func emptyMessage(v client.View) string {
	switch {
	case len(v.Tasks) == 0:
		return "No tasks yet. Press 'a' to add one.\n"
	case v.Search != "":
		return "No tasks match your search.\n"
	default:
		return fmt.Sprintf("No %s tasks.\n", v.Filter)
	}
}

func progressBar(pct float64) string {
	filled := int(pct / 100 * progressWidth)
	if filled > progressWidth {
		filled = progressWidth
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", progressWidth-filled) + "]"
}

func nextPriority(p models.Priority) models.Priority {
	switch p {
	case models.LowPriority:
		return models.MediumPriority
	case models.MediumPriority:
		return models.HighPriority
	default:
		return models.LowPriority
	}
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
