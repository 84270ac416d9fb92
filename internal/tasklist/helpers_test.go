package tasklist

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testEditor returns an Editor with sequential ids (id-1, id-2, ...) and a
// clock that advances one second per call.
func testEditor() *Editor {
	n := 0
	tick := 0
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return NewEditor(
		func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
		func() string {
			tick++
			return base.Add(time.Duration(tick) * time.Second).Format("2006-01-02T15:04:05.000Z")
		},
	)
}

func item(content string, priority int, deps ...string) NewItem {
	return NewItem{Content: content, Priority: priority, Deps: deps}
}

// fixture builds: epic E (id-1) > task T (id-2) > subtask S (id-3).
func fixture(t *testing.T, ed *Editor) (*State, Epic, Task, Subtask) {
	t.Helper()
	s := CreateEmptyState()
	s, e, err := ed.AddEpic(s, item("Ship the billing system", 2))
	require.NoError(t, err)
	s, task, err := ed.AddTask(s, e.ID, item("Build invoice generator", 2))
	require.NoError(t, err)
	s, sub, err := ed.AddSubtask(s, e.ID, task.ID, item("Write PDF rendering code", 2))
	require.NoError(t, err)
	return s, e, task, sub
}

func mustFind(t *testing.T, s *State, id string) FlatItem {
	t.Helper()
	it := FindByID(s, id)
	require.NotNil(t, it, "item %s not found", id)
	return *it
}
