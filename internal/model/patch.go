package model

import "time"

// Field is an optional update value. The zero Field means "no change".
type Field[T any] struct {
	value T
	set   bool
}

// Set returns a Field that overwrites the target with v.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

// Get returns the value and whether the field was set.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.set
}

// Value returns the field's value, or the zero value when unset.
func (f Field[T]) Value() T {
	return f.value
}

// IsSet reports whether the field carries a value.
func (f Field[T]) IsSet() bool {
	return f.set
}

// TaskPatch is a partial update to a Task. Only set fields are applied;
// the ID is never patched.
type TaskPatch struct {
	Title       Field[string]
	Completed   Field[bool]
	CreatedAt   Field[time.Time]
	UpdatedAt   Field[*time.Time]
	CompletedAt Field[*time.Time]
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return !p.Title.IsSet() &&
		!p.Completed.IsSet() &&
		!p.CreatedAt.IsSet() &&
		!p.UpdatedAt.IsSet() &&
		!p.CompletedAt.IsSet()
}

// Apply returns a copy of t with the set fields overwritten.
func (p TaskPatch) Apply(t Task) Task {
	if v, ok := p.Title.Get(); ok {
		t.Title = v
	}
	if v, ok := p.Completed.Get(); ok {
		t.Completed = v
	}
	if v, ok := p.CreatedAt.Get(); ok {
		t.CreatedAt = v
	}
	if v, ok := p.UpdatedAt.Get(); ok {
		t.UpdatedAt = cloneTime(v)
	}
	if v, ok := p.CompletedAt.Get(); ok {
		t.CompletedAt = cloneTime(v)
	}
	return t
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
