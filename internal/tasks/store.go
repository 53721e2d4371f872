// Package tasks owns the task collection of one named list: loading and
// sorting it, applying mutations, persisting the full record, and
// notifying sibling stores through the sync channel.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/nhle/tasklists/internal/model"
	"github.com/nhle/tasklists/internal/store"
	appsync "github.com/nhle/tasklists/internal/sync"
)

var (
	// ErrNotFound is returned when no task has the requested id.
	ErrNotFound = errors.New("task not found")

	// ErrInvalidTitle is returned for empty or blank titles.
	ErrInvalidTitle = errors.New("task title must not be empty")
)

// KeyPrefix prefixes every list's storage key.
const KeyPrefix = "tasks-"

// Key returns the storage key for a list name.
func Key(listName string) string {
	return KeyPrefix + listName
}

// ListNames returns the names of all lists that have a stored record.
func ListNames(ctx context.Context, backend store.Store) ([]string, error) {
	keys, err := backend.Keys(ctx, KeyPrefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, KeyPrefix))
	}
	return names, nil
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the task collection of a single list, cached in memory.
// It is not safe for concurrent use; callers serialize access.
type Store struct {
	listName string
	backend  store.Store
	channel  *appsync.Channel
	sub      appsync.Subscription
	now      func() time.Time

	tasks   []model.Task
	version uint64
	closed  bool
}

// New creates a Store for listName, loads its record, and subscribes to
// change notifications for the name. A failed initial load is logged and
// leaves the store empty.
func New(ctx context.Context, listName string, backend store.Store, ch *appsync.Channel, opts ...Option) *Store {
	s := &Store{
		listName: listName,
		backend:  backend,
		channel:  ch,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := s.Load(ctx); err != nil {
		log.Printf("tasks: initial load of list %q: %v", listName, err)
	}
	s.sub = ch.Subscribe(listName, s.onChanged)
	return s
}

// ListName returns the list this store is bound to.
func (s *Store) ListName() string { return s.listName }

// Version increases every time the cached collection is replaced.
func (s *Store) Version() uint64 { return s.version }

// Close unsubscribes the store from change notifications.
func (s *Store) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.channel.Unsubscribe(s.sub)
}

// onChanged reloads the cache after any store for the same list wrote.
func (s *Store) onChanged() {
	if _, err := s.Load(context.Background()); err != nil {
		log.Printf("tasks: reloading list %q: %v", s.listName, err)
	}
}

// Load reads the list's record, sorts it for display, and replaces the
// cache. A missing or malformed record yields an empty list.
func (s *Store) Load(ctx context.Context) ([]model.Task, error) {
	raw, ok, err := s.backend.Get(ctx, Key(s.listName))
	if err != nil {
		return nil, fmt.Errorf("loading list %q: %w", s.listName, err)
	}

	var tasks []model.Task
	if ok {
		tasks = decodeRecord(s.listName, raw)
	}
	SortForDisplay(tasks)

	s.tasks = tasks
	s.version++
	return s.Tasks(), nil
}

// Tasks returns a copy of the cached collection in display order.
func (s *Store) Tasks() []model.Task {
	return slices.Clone(s.tasks)
}

// Get returns the cached task with the given id.
func (s *Store) Get(id int) (model.Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.tasks[i], true
}

// Add creates a task with the next free id and persists the list.
func (s *Store) Add(ctx context.Context, title string) (model.Task, error) {
	if strings.TrimSpace(title) == "" {
		return model.Task{}, ErrInvalidTitle
	}

	task := model.Task{
		ID:        s.nextID(),
		Title:     title,
		Completed: false,
		CreatedAt: s.now(),
	}

	next := append(slices.Clone(s.tasks), task)
	if err := s.persist(ctx, next); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// Update merges patch onto the task with the given id and persists the
// list. A missing id is logged and reported as ErrNotFound without
// touching storage.
func (s *Store) Update(ctx context.Context, id int, patch model.TaskPatch) error {
	i := s.indexOf(id)
	if i < 0 {
		log.Printf("tasks: update of task %d in list %q: not found", id, s.listName)
		return fmt.Errorf("updating task %d in list %q: %w", id, s.listName, ErrNotFound)
	}

	next := slices.Clone(s.tasks)
	next[i] = patch.Apply(next[i])
	return s.persist(ctx, next)
}

// Edit applies a user edit to a task: patch is merged, updatedAt is
// stamped, and completedAt follows any change of the completed flag.
func (s *Store) Edit(ctx context.Context, id int, patch model.TaskPatch) (model.Task, error) {
	task, ok := s.Get(id)
	if !ok {
		log.Printf("tasks: edit of task %d in list %q: not found", id, s.listName)
		return model.Task{}, fmt.Errorf("editing task %d in list %q: %w", id, s.listName, ErrNotFound)
	}
	if title, ok := patch.Title.Get(); ok && strings.TrimSpace(title) == "" {
		return model.Task{}, ErrInvalidTitle
	}

	now := s.now()
	patch.UpdatedAt = model.Set(&now)
	if completed, ok := patch.Completed.Get(); ok && completed != task.Completed {
		var completedAt *time.Time
		if completed {
			completedAt = &now
		}
		patch.CompletedAt = model.Set(completedAt)
	}

	if err := s.Update(ctx, id, patch); err != nil {
		return model.Task{}, err
	}
	return patch.Apply(task), nil
}

// ToggleCompleted flips the completion state of a task.
func (s *Store) ToggleCompleted(ctx context.Context, id int) (model.Task, error) {
	task, ok := s.Get(id)
	if !ok {
		log.Printf("tasks: toggle of task %d in list %q: not found", id, s.listName)
		return model.Task{}, fmt.Errorf("toggling task %d in list %q: %w", id, s.listName, ErrNotFound)
	}
	return s.Edit(ctx, id, model.TaskPatch{Completed: model.Set(!task.Completed)})
}

// Rename sets a task's title and stamps updatedAt.
func (s *Store) Rename(ctx context.Context, id int, title string) error {
	_, err := s.Edit(ctx, id, model.TaskPatch{Title: model.Set(title)})
	return err
}

// Remove deletes the task with the given id, if present, and persists
// the list. Removing an unknown id is not an error.
func (s *Store) Remove(ctx context.Context, id int) error {
	next := slices.DeleteFunc(slices.Clone(s.tasks), func(t model.Task) bool {
		return t.ID == id
	})
	if len(next) == len(s.tasks) {
		log.Printf("tasks: remove of task %d in list %q: not found", id, s.listName)
	}
	return s.persist(ctx, next)
}

// persist writes next as the list's record, makes it the cache, and
// notifies every store bound to the list. On a write failure the cache
// is left unchanged and nothing is published.
func (s *Store) persist(ctx context.Context, next []model.Task) error {
	if next == nil {
		next = []model.Task{}
	}
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encoding list %q: %w", s.listName, err)
	}
	if err := s.backend.Set(ctx, Key(s.listName), string(data)); err != nil {
		return fmt.Errorf("saving list %q: %w", s.listName, err)
	}

	s.tasks = next
	s.version++
	s.channel.Publish(s.listName)
	return nil
}

func (s *Store) indexOf(id int) int {
	return slices.IndexFunc(s.tasks, func(t model.Task) bool {
		return t.ID == id
	})
}

// nextID returns max(id)+1, or 1 for an empty list.
func (s *Store) nextID() int {
	maxID := 0
	for _, t := range s.tasks {
		maxID = max(maxID, t.ID)
	}
	return maxID + 1
}

// decodeRecord parses a stored record. Anything unparseable is logged
// and treated as an empty list.
func decodeRecord(listName, raw string) []model.Task {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var tasks []model.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		log.Printf("tasks: ignoring malformed record for list %q: %v", listName, err)
		return nil
	}
	return tasks
}

// SortForDisplay orders incomplete tasks before completed ones and, within
// each group, newest createdAt first. Ties keep their original order.
func SortForDisplay(tasks []model.Task) {
	slices.SortStableFunc(tasks, func(a, b model.Task) int {
		if a.Completed != b.Completed {
			if a.Completed {
				return 1
			}
			return -1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
