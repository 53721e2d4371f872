package help

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/tasklists/internal/keys"
	"github.com/nhle/tasklists/internal/ui/command"
)

func TestView_ListsBindingsAndCommands(t *testing.T) {
	k := keys.DefaultKeyMap()
	m := New(k, 120, 40)

	view := m.View()
	assert.Contains(t, view, "Keyboard Shortcuts")
	assert.Contains(t, view, k.Add.Help().Desc)
	for _, c := range command.Usage {
		assert.Contains(t, view, c)
	}
}
