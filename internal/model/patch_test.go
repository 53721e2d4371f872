package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tasklists/internal/model"
)

func TestTaskPatch_Apply(t *testing.T) {
	created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	done := created.Add(time.Hour)
	base := model.Task{ID: 7, Title: "old", CreatedAt: created, CompletedAt: &done, Completed: true}

	t.Run("empty patch changes nothing", func(t *testing.T) {
		p := model.TaskPatch{}
		assert.True(t, p.IsEmpty())
		assert.Equal(t, base, p.Apply(base))
	})

	t.Run("only set fields are applied", func(t *testing.T) {
		got := model.TaskPatch{Title: model.Set("new")}.Apply(base)
		assert.Equal(t, "new", got.Title)
		assert.True(t, got.Completed)
		assert.Equal(t, &done, got.CompletedAt)
		assert.Equal(t, 7, got.ID)
	})

	t.Run("optional timestamp can be cleared", func(t *testing.T) {
		got := model.TaskPatch{
			Completed:   model.Set(false),
			CompletedAt: model.Set[*time.Time](nil),
		}.Apply(base)
		assert.False(t, got.Completed)
		assert.Nil(t, got.CompletedAt)
		assert.NotNil(t, base.CompletedAt, "source task is not modified")
	})
}

func TestField_Get(t *testing.T) {
	var unset model.Field[int]
	_, ok := unset.Get()
	assert.False(t, ok)

	v, ok := model.Set(0).Get()
	assert.True(t, ok)
	assert.Equal(t, 0, v)

	assert.Equal(t, "x", model.Set("x").Value())
	assert.Zero(t, unset.Value())
}

func TestTask_JSONShape(t *testing.T) {
	created := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	data, err := json.Marshal(model.Task{ID: 1, Title: "x", CreatedAt: created})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":1,"title":"x","completed":false,"createdAt":"2024-02-03T04:05:06Z"}`,
		string(data),
	)

	var back model.Task
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 1, back.ID)
	assert.True(t, created.Equal(back.CreatedAt))
	assert.Nil(t, back.UpdatedAt)
	assert.Nil(t, back.CompletedAt)
}

func TestTask_UnmarshalTimestampForms(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"rfc3339 millis", `"2024-05-01T10:00:00.000Z"`, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), false},
		{"offset", `"2024-05-01T12:00:00+02:00"`, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), false},
		{"date only", `"2024-05-01"`, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), false},
		{"epoch millis", `1714557600000`, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), false},
		{"epoch upper bound", `8.64e15`, time.UnixMilli(8_640_000_000_000_000), false},
		{"epoch overflow", `1e300`, time.Time{}, true},
		{"epoch underflow", `-9e15`, time.Time{}, true},
		{"null", `null`, time.Time{}, false},
		{"empty string", `""`, time.Time{}, false},
		{"nonsense", `"soon"`, time.Time{}, true},
		{"wrong type", `true`, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var task model.Task
			err := json.Unmarshal([]byte(`{"id":1,"title":"t","createdAt":`+tt.input+`}`), &task)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(task.CreatedAt), "got %v", task.CreatedAt)
		})
	}
}
