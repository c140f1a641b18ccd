package tui

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"tasktracker/client"
	"tasktracker/routes"
	"tasktracker/services"
	"tasktracker/testutils"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutils.SetupSQLiteDB(t)
	router := gin.New()
	routes.RegisterTaskRoutes(router.Group("/api"), db, &services.TaskService{})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	ctrl := client.NewController(client.NewAPIClient(server.URL, "", 5*time.Second), client.Options{})
	t.Cleanup(ctrl.Close)

	m := New(context.Background(), ctrl)
	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	return m
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

// act presses a key whose intent runs as a command and applies the result.
func act(t *testing.T, m Model, key tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(key)
	require.NotNil(t, cmd)
	next, _ = next.Update(cmd())
	var ok bool
	m, ok = next.(Model)
	require.True(t, ok)
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
)

func addTask(t *testing.T, m Model, title string) Model {
	t.Helper()
	return press(t, m, runes("a"), runes(title), enter)
}

func TestModel_EmptyState(t *testing.T) {
	m := newTestModel(t)

	out := m.View()
	assert.Contains(t, out, "0 total")
	assert.Contains(t, out, "No tasks yet")
	assert.Contains(t, out, "  0%")
}

func TestModel_AddToggleCelebrate(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, runes("a"), tab, runes("Buy milk"), enter)
	out := m.View()
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "(high)")
	assert.Contains(t, out, "2h ago")
	assert.Contains(t, out, "1 total · 1 active · 0 completed")
	assert.Contains(t, out, "Task added successfully!")

	m = act(t, m, runes("x"))
	out = m.View()
	assert.Contains(t, out, "[x] Buy milk")
	assert.Contains(t, out, "100%")
	assert.Contains(t, out, "All tasks completed!")
}

func TestModel_RejectsEmptyTitle(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, runes("a"), enter)
	assert.Equal(t, modeAdd, m.mode)
	assert.Contains(t, m.View(), "Title cannot be empty")

	m = press(t, m, esc)
	assert.Equal(t, modeList, m.mode)
	assert.Contains(t, m.View(), "0 total")
}

func TestModel_EditAndEscape(t *testing.T) {
	m := newTestModel(t)
	m = addTask(t, m, "Draft")

	m = press(t, m, runes("e"), runes(" v2"), enter)
	assert.Equal(t, modeList, m.mode)
	assert.Contains(t, m.View(), "Draft v2")

	m = press(t, m, runes("e"), runes(" never"), esc)
	assert.Equal(t, modeList, m.mode)
	assert.Nil(t, m.view.Edit)
	assert.NotContains(t, m.View(), "never")
}

func TestModel_DeleteAndUndo(t *testing.T) {
	m := newTestModel(t)
	m = addTask(t, m, "Walk dog")

	m = act(t, m, runes("d"))
	out := m.View()
	assert.Contains(t, out, `Deleted "Walk dog". Press u to undo.`)
	assert.Contains(t, out, "0 total")

	m = act(t, m, runes("u"))
	out = m.View()
	assert.Contains(t, out, "Walk dog")
	assert.Contains(t, out, "1 total")
	assert.NotContains(t, out, "Press u to undo")
}

func TestModel_FilterSearchAndClear(t *testing.T) {
	m := newTestModel(t)
	m = addTask(t, m, "Buy Milk")
	m = addTask(t, m, "Call mom")

	// newest first: "Call mom" is under the cursor
	m = act(t, m, runes("x"))

	m = press(t, m, runes("f"))
	assert.Equal(t, client.FilterActive, m.view.Filter)
	out := m.View()
	assert.Contains(t, out, "Buy Milk")
	assert.NotContains(t, out, "Call mom")

	m = press(t, m, runes("f"), runes("f"))
	assert.Equal(t, client.FilterAll, m.view.Filter)

	m = press(t, m, runes("/"), runes("MILK"), enter)
	require.Len(t, m.view.Visible, 1)
	assert.Equal(t, "Buy Milk", m.view.Visible[0].Title)

	m = press(t, m, esc)
	assert.Len(t, m.view.Visible, 2)

	m = act(t, m, runes("c"))
	require.Len(t, m.view.Tasks, 1)
	assert.Equal(t, "Buy Milk", m.view.Tasks[0].Title)
}

func TestModel_IntentsRunAsCommands(t *testing.T) {
	m := newTestModel(t)
	m = addTask(t, m, "Async")

	next, cmd := m.Update(runes("x"))
	require.NotNil(t, cmd)
	m = next.(Model)
	assert.Contains(t, m.View(), "[ ] Async", "toggle has not run before the command executes")

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.Contains(t, m.View(), "[x] Async")

	_, cmd = m.Update(runes("r"))
	require.NotNil(t, cmd)
	assert.Equal(t, changedMsg{}, cmd())
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
