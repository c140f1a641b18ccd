package client

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"tasktracker/models"
)

var (
	ErrEmptyTitle  = errors.New("title is required")
	ErrNotEditing  = errors.New("no task is being edited")
	ErrUnknownTask = errors.New("task is not in the current list")
)

const (
	timerToast       = "toast"
	timerUndo        = "undo"
	timerCelebration = "celebration"
)

// Options tunes the controller's timed effects.
type Options struct {
	UndoWindow          time.Duration
	ToastDuration       time.Duration
	CelebrationDuration time.Duration
	Now                 func() time.Time
}

func DefaultOptions() Options {
	return Options{
		UndoWindow:          5 * time.Second,
		ToastDuration:       3 * time.Second,
		CelebrationDuration: 3 * time.Second,
		Now:                 time.Now,
	}
}

// Controller owns the client-side task state and turns user intents into
// task service calls followed by a full refetch. It is safe for concurrent
// use; timers fire on their own goroutines.
type Controller struct {
	api  API
	opts Options

	mu          sync.Mutex
	state       State
	timers      map[string]*time.Timer
	closed      bool
	onChange    []func(View)
	onCelebrate []func()
}

func NewController(api API, opts Options) *Controller {
	defaults := DefaultOptions()
	if opts.UndoWindow <= 0 {
		opts.UndoWindow = defaults.UndoWindow
	}
	if opts.ToastDuration <= 0 {
		opts.ToastDuration = defaults.ToastDuration
	}
	if opts.CelebrationDuration <= 0 {
		opts.CelebrationDuration = defaults.CelebrationDuration
	}
	if opts.Now == nil {
		opts.Now = defaults.Now
	}

	return &Controller{
		api:    api,
		opts:   opts,
		state:  State{Tasks: []models.Task{}, Filter: FilterAll},
		timers: make(map[string]*time.Timer),
	}
}

// OnChange registers fn to receive a View after every state change.
func (c *Controller) OnChange(fn func(View)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// OnCelebrate registers fn to run when a toggle completes the whole list.
func (c *Controller) OnCelebrate(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCelebrate = append(c.onCelebrate, fn)
}

func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return newView(c.state)
}

// Close cancels every pending timer. Later timer fires are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	for key, t := range c.timers {
		t.Stop()
		delete(c.timers, key)
	}
}

func (c *Controller) Refresh(ctx context.Context) error {
	c.update(func(s *State) { s.Loading = true })
	return c.refetch(ctx)
}

func (c *Controller) Add(ctx context.Context, title string, priority models.Priority) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if priority == "" {
		priority = models.DefaultPriority
	}

	createdAt := c.opts.Now().UTC()
	_, err := c.api.CreateTask(ctx, models.TaskInput{
		Title:     title,
		Priority:  priority,
		CreatedAt: &createdAt,
	})
	if err != nil {
		c.fail("Failed to add task", err)
		return err
	}

	c.update(func(s *State) { c.showToastLocked(s, "Task added successfully!", false) })
	return c.refetch(ctx)
}

// Toggle flips a task and signals a celebration when it was the last
// incomplete task in the refetched list.
func (c *Controller) Toggle(ctx context.Context, id string) error {
	toggled, err := c.api.ToggleTask(ctx, id)
	if err != nil {
		c.fail("Failed to update task", err)
		return err
	}

	tasks, err := c.api.ListTasks(ctx)
	if err != nil {
		c.fail("Failed to fetch tasks", err)
		return err
	}

	celebrate := toggled.Completed && AllCompleted(tasks)
	c.update(func(s *State) {
		s.Tasks = tasks
		s.Loading = false
		if celebrate {
			s.Celebrating = true
			c.showToastLocked(s, "All tasks completed! Great job!", false)
			c.scheduleLocked(timerCelebration, c.opts.CelebrationDuration, func(s *State) {
				s.Celebrating = false
			})
		}
	})

	if celebrate {
		c.mu.Lock()
		listeners := append([]func(){}, c.onCelebrate...)
		c.mu.Unlock()
		for _, fn := range listeners {
			fn()
		}
	}
	return nil
}

// StartEdit opens the edit buffer on id, replacing any edit in progress.
func (c *Controller) StartEdit(id string) error {
	var err error
	c.update(func(s *State) {
		task, ok := findTask(s.Tasks, id)
		if !ok {
			err = ErrUnknownTask
			return
		}
		s.Edit = &EditBuffer{TaskID: id, Draft: task.Title}
	})
	return err
}

func (c *Controller) SetDraft(text string) {
	c.update(func(s *State) {
		if s.Edit != nil {
			s.Edit.Draft = text
		}
	})
}

// SaveEdit sends the draft as the task's new title. A blank draft or a
// failed update leaves the buffer open.
func (c *Controller) SaveEdit(ctx context.Context) error {
	c.mu.Lock()
	edit := c.state.Edit
	var buffer EditBuffer
	if edit != nil {
		buffer = *edit
	}
	c.mu.Unlock()

	if edit == nil {
		return ErrNotEditing
	}
	if strings.TrimSpace(buffer.Draft) == "" {
		return ErrEmptyTitle
	}

	draft := buffer.Draft
	if _, err := c.api.UpdateTask(ctx, buffer.TaskID, models.TaskUpdate{Title: &draft}); err != nil {
		c.fail("Failed to update task", err)
		return err
	}

	c.update(func(s *State) {
		if s.Edit != nil && s.Edit.TaskID == buffer.TaskID {
			s.Edit = nil
		}
		c.showToastLocked(s, "Task updated!", false)
	})
	return c.refetch(ctx)
}

func (c *Controller) CancelEdit() {
	c.update(func(s *State) { s.Edit = nil })
}

// Escape cancels an edit in progress and reports whether there was one.
func (c *Controller) Escape() bool {
	c.mu.Lock()
	editing := c.state.Edit != nil
	c.mu.Unlock()

	if editing {
		c.CancelEdit()
	}
	return editing
}

// Delete removes a task and keeps a snapshot in the undo slot for
// UndoWindow.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.update(func(s *State) {
		// The previous snapshot is replaced, so its expiry must not fire.
		c.stopLocked(timerUndo)
		if task, ok := findTask(s.Tasks, id); ok {
			s.Undo = &task
		} else {
			s.Undo = nil
		}
	})

	if err := c.api.DeleteTask(ctx, id); err != nil {
		c.update(func(s *State) {
			s.Undo = nil
			c.stopLocked(timerUndo)
			c.showToastLocked(s, "Failed to delete task", true)
		})
		log.Printf("Delete task %s failed: %v", id, err)
		return err
	}

	c.update(func(s *State) {
		if s.Edit != nil && s.Edit.TaskID == id {
			s.Edit = nil
		}
		c.showToastLocked(s, "Task deleted", false)
		c.scheduleLocked(timerUndo, c.opts.UndoWindow, func(s *State) {
			if s.Undo != nil && s.Undo.ID.String() == id {
				s.Undo = nil
			}
		})
	})
	return c.refetch(ctx)
}

// UndoDelete re-creates the task in the undo slot under a new id. It is a
// no-op when the slot is empty.
func (c *Controller) UndoDelete(ctx context.Context) error {
	c.mu.Lock()
	var snapshot models.Task
	occupied := c.state.Undo != nil
	if occupied {
		snapshot = *c.state.Undo
	}
	c.mu.Unlock()

	if !occupied {
		return nil
	}

	input := models.TaskInput{Title: snapshot.Title, Priority: snapshot.Priority}
	if !snapshot.CreatedAt.IsZero() {
		createdAt := snapshot.CreatedAt
		input.CreatedAt = &createdAt
	}
	if _, err := c.api.CreateTask(ctx, input); err != nil {
		c.fail("Failed to restore task", err)
		return err
	}

	c.update(func(s *State) {
		s.Undo = nil
		c.stopLocked(timerUndo)
		c.showToastLocked(s, "Task restored!", false)
	})
	return c.refetch(ctx)
}

// ClearCompleted deletes every completed task in the current list.
func (c *Controller) ClearCompleted(ctx context.Context) error {
	c.mu.Lock()
	var ids []string
	for _, t := range c.state.Tasks {
		if t.Completed {
			ids = append(ids, t.ID.String())
		}
	}
	c.mu.Unlock()

	if len(ids) == 0 {
		return nil
	}

	var errs []error
	for _, id := range ids {
		if err := c.api.DeleteTask(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		c.fail("Failed to clear completed tasks", err)
		c.refetch(ctx)
		return err
	}

	c.update(func(s *State) { c.showToastLocked(s, "Completed tasks cleared", false) })
	return c.refetch(ctx)
}

func (c *Controller) SetFilter(f Filter) {
	c.update(func(s *State) { s.Filter = f })
}

func (c *Controller) SetSearch(query string) {
	c.update(func(s *State) { s.Search = query })
}

// refetch replaces the task list with the service's. On failure the
// previous list is kept.
func (c *Controller) refetch(ctx context.Context) error {
	tasks, err := c.api.ListTasks(ctx)
	if err != nil {
		c.fail("Failed to fetch tasks", err)
		return err
	}

	c.update(func(s *State) {
		s.Tasks = tasks
		s.Loading = false
	})
	return nil
}

func (c *Controller) fail(message string, err error) {
	log.Printf("%s: %v", message, err)
	c.update(func(s *State) {
		s.Loading = false
		c.showToastLocked(s, message, true)
	})
}

// update applies fn under the lock and notifies listeners afterwards.
func (c *Controller) update(fn func(s *State)) {
	c.mu.Lock()
	fn(&c.state)
	view := newView(c.state)
	listeners := append([]func(View){}, c.onChange...)
	c.mu.Unlock()

	for _, l := range listeners {
		l(view)
	}
}

func (c *Controller) showToastLocked(s *State, message string, isError bool) {
	s.Toast = &Toast{Message: message, IsError: isError}
	c.scheduleLocked(timerToast, c.opts.ToastDuration, func(s *State) {
		s.Toast = nil
	})
}

// scheduleLocked replaces the timer under key with one that applies expire
// after d. Must be called with c.mu held.
func (c *Controller) scheduleLocked(key string, d time.Duration, expire func(s *State)) {
	if c.closed {
		return
	}
	c.stopLocked(key)

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		c.mu.Lock()
		if c.closed || c.timers[key] != t {
			c.mu.Unlock()
			return
		}
		delete(c.timers, key)
		expire(&c.state)
		view := newView(c.state)
		listeners := append([]func(View){}, c.onChange...)
		c.mu.Unlock()

		for _, l := range listeners {
			l(view)
		}
	})
	c.timers[key] = t
}

func (c *Controller) stopLocked(key string) {
	if t, ok := c.timers[key]; ok {
		t.Stop()
		delete(c.timers, key)
	}
}

func findTask(tasks []models.Task, id string) (models.Task, bool) {
	for _, t := range tasks {
		if t.ID.String() == id {
			return t, true
		}
	}
	return models.Task{}, false
}
