package tasklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEpicTaskSubtask(t *testing.T) {
	ed := testEditor()
	s, e, task, sub := fixture(t, ed)

	assert.Equal(t, "id-1", e.ID)
	assert.Equal(t, StatusPending, e.Status)
	assert.Equal(t, "2025-01-01T00:00:01.000Z", e.CreatedAt)
	assert.Empty(t, e.UpdatedAt)
	assert.Empty(t, e.CompletedAt)

	require.Len(t, s.Epics, 1)
	require.Len(t, s.Epics[0].Tasks, 1)
	assert.Equal(t, task.ID, s.Epics[0].Tasks[0].ID)
	require.Len(t, s.Epics[0].Tasks[0].Subtasks, 1)
	assert.Equal(t, sub.ID, s.Epics[0].Tasks[0].Subtasks[0].ID)
	assert.Empty(t, s.Tasks)
}

func TestAddDoesNotMutateInput(t *testing.T) {
	ed := testEditor()
	s0 := CreateEmptyState()
	s1, _, err := ed.AddEpic(s0, item("Migrate to the new cluster", 1))
	require.NoError(t, err)

	assert.Empty(t, s0.Epics)
	assert.Len(t, s1.Epics, 1)
}

func TestAddStandaloneTaskAndSubtask(t *testing.T) {
	ed := testEditor()
	s, task, err := ed.AddTask(CreateEmptyState(), "", item("Rotate the API signing keys", 3))
	require.NoError(t, err)
	require.Len(t, s.Tasks, 1)

	s, sub, err := ed.AddSubtask(s, "", task.ID, item("Generate the new key pair", 3))
	require.NoError(t, err)
	require.Len(t, s.Tasks[0].Subtasks, 1)
	assert.Equal(t, sub.ID, s.Tasks[0].Subtasks[0].ID)
}

func TestAddErrors(t *testing.T) {
	ed := testEditor()
	s, e, _, _ := fixture(t, ed)

	t.Run("unknown epic", func(t *testing.T) {
		out, _, err := ed.AddTask(s, "nope", item("Orphaned task content", 2))
		assert.ErrorIs(t, err, ErrParentNotFound)
		assert.Same(t, s, out)
	})
	t.Run("unknown task", func(t *testing.T) {
		_, _, err := ed.AddSubtask(s, e.ID, "nope", item("Orphaned subtask content", 2))
		assert.ErrorIs(t, err, ErrParentNotFound)
	})
	t.Run("missing task id", func(t *testing.T) {
		_, _, err := ed.AddSubtask(s, e.ID, "", item("Orphaned subtask content", 2))
		assert.ErrorIs(t, err, ErrMissingScope)
	})
	t.Run("short content", func(t *testing.T) {
		out, _, err := ed.AddEpic(s, item("too short", 2))
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Same(t, s, out)
	})
	t.Run("priority out of range", func(t *testing.T) {
		_, _, err := ed.AddEpic(s, item("Priority is far too high", 6))
		assert.ErrorIs(t, err, ErrInvalidInput)
		_, _, err = ed.AddEpic(s, item("Priority is far too low", 0))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestAddDedupesDeps(t *testing.T) {
	ed := testEditor()
	_, e, err := ed.AddEpic(CreateEmptyState(), item("Epic with repeated deps", 2, "a", "b", "a", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, e.Deps)
}

func TestUpdateSetsTimestamps(t *testing.T) {
	ed := testEditor()
	s, e, _, _ := fixture(t, ed)

	content := "Ship the billing system v2"
	s, err := ed.UpdateEpic(s, e.ID, Patch{Content: &content})
	require.NoError(t, err)

	got := mustFind(t, s, e.ID)
	assert.Equal(t, content, got.Content)
	assert.NotEmpty(t, got.UpdatedAt)
	assert.Empty(t, got.CompletedAt)
	assert.Equal(t, e.CreatedAt, got.CreatedAt)
}

func TestUpdateCompletedAtIsNeverCleared(t *testing.T) {
	ed := testEditor()
	s, e, _, _ := fixture(t, ed)

	s, err := ed.UpdateEpic(s, e.ID, StatusPatch(StatusCompleted))
	require.NoError(t, err)
	completedAt := mustFind(t, s, e.ID).CompletedAt
	require.NotEmpty(t, completedAt)

	s, err = ed.UpdateEpic(s, e.ID, StatusPatch(StatusPending))
	require.NoError(t, err)
	got := mustFind(t, s, e.ID)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, completedAt, got.CompletedAt)
}

func TestUpdateReplacesNotesAndDeps(t *testing.T) {
	ed := testEditor()
	s, e, task, sub := fixture(t, ed)

	notes := []string{"first", "second"}
	deps := []string{"x", "x", "y"}
	impl := "used a streaming renderer"
	s, err := ed.UpdateSubtask(s, e.ID, task.ID, sub.ID, Patch{Notes: &notes, Deps: &deps, Implementation: &impl})
	require.NoError(t, err)

	got := mustFind(t, s, sub.ID)
	assert.Equal(t, notes, got.Notes)
	assert.Equal(t, []string{"x", "y"}, got.Deps)
	assert.Equal(t, impl, got.Implementation)

	notes[0] = "mutated"
	assert.Equal(t, "first", mustFind(t, s, sub.ID).Notes[0])
}

func TestUpdateErrors(t *testing.T) {
	ed := testEditor()
	s, e, task, sub := fixture(t, ed)

	tests := []struct {
		name string
		run  func() (*State, error)
		want error
	}{
		{"unknown epic", func() (*State, error) { return ed.UpdateEpic(s, "nope", Patch{}) }, ErrNotFound},
		{"task in wrong epic", func() (*State, error) { return ed.UpdateTask(s, "nope", task.ID, Patch{}) }, ErrNotFound},
		{"task not standalone", func() (*State, error) { return ed.UpdateStandaloneTask(s, task.ID, Patch{}) }, ErrNotFound},
		{"subtask without task", func() (*State, error) { return ed.UpdateSubtask(s, e.ID, "", sub.ID, Patch{}) }, ErrMissingScope},
		{"unknown subtask", func() (*State, error) { return ed.UpdateSubtask(s, e.ID, task.ID, "nope", Patch{}) }, ErrNotFound},
		{"subtask not under standalone", func() (*State, error) { return ed.UpdateStandaloneSubtask(s, task.ID, sub.ID, Patch{}) }, ErrNotFound},
		{"bad status", func() (*State, error) { return ed.UpdateEpic(s, e.ID, StatusPatch("done")) }, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.run()
			assert.ErrorIs(t, err, tt.want)
			assert.Same(t, s, out)
		})
	}
}

func TestMarkCompleteCascades(t *testing.T) {
	ed := testEditor()
	s, e, task, sub := fixture(t, ed)

	s, changed, err := ed.MarkComplete(s, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{sub.ID, task.ID, e.ID}, changed)

	for _, id := range []string{e.ID, task.ID, sub.ID} {
		got := mustFind(t, s, id)
		assert.Equal(t, StatusCompleted, got.Status, id)
		assert.NotEmpty(t, got.CompletedAt, id)
	}
}

func TestMarkCompletePartialCascade(t *testing.T) {
	ed := testEditor()
	s, e, task, sub := fixture(t, ed)
	s, sub2, err := ed.AddSubtask(s, e.ID, task.ID, item("Write the email template", 2))
	require.NoError(t, err)

	s, changed, err := ed.MarkComplete(s, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{sub.ID}, changed)
	assert.Equal(t, StatusPending, mustFind(t, s, task.ID).Status)
	assert.Equal(t, StatusPending, mustFind(t, s, sub2.ID).Status)
	assert.Equal(t, StatusPending, mustFind(t, s, e.ID).Status)
}

func TestMarkCompleteTaskStopsAtEpicWithOpenSiblings(t *testing.T) {
	ed := testEditor()
	s, e, task, _ := fixture(t, ed)
	s, _, err := ed.AddTask(s, e.ID, item("Build payment reminders", 2))
	require.NoError(t, err)

	s, changed, err := ed.MarkComplete(s, task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{task.ID}, changed)
	assert.Equal(t, StatusPending, mustFind(t, s, e.ID).Status)
}

func TestMarkCompleteStandaloneTask(t *testing.T) {
	ed := testEditor()
	s, task, err := ed.AddTask(CreateEmptyState(), "", item("Clean up stale branches", 4))
	require.NoError(t, err)
	s, sub, err := ed.AddSubtask(s, "", task.ID, item("List merged branches", 4))
	require.NoError(t, err)

	s, changed, err := ed.MarkComplete(s, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{sub.ID, task.ID}, changed)
}

func TestMarkCompleteIsIdempotent(t *testing.T) {
	ed := testEditor()
	s, _, _, sub := fixture(t, ed)

	s, _, err := ed.MarkComplete(s, sub.ID)
	require.NoError(t, err)
	before := mustFind(t, s, sub.ID)

	s, changed, err := ed.MarkComplete(s, sub.ID)
	require.NoError(t, err)
	assert.Empty(t, changed)
	after := mustFind(t, s, sub.ID)
	assert.Equal(t, before.CompletedAt, after.CompletedAt)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestMarkCompleteUnknownID(t *testing.T) {
	ed := testEditor()
	s, _, _, _ := fixture(t, ed)
	out, changed, err := ed.MarkComplete(s, "nope")
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.Nil(t, changed)
	assert.Same(t, s, out)
}

func TestRemoveItemRemovesDescendants(t *testing.T) {
	ed := testEditor()
	s, e, task, sub := fixture(t, ed)

	out, kind, err := ed.RemoveItem(s, task.ID)
	require.NoError(t, err)
	assert.Equal(t, KindTask, kind)
	assert.Nil(t, FindByID(out, task.ID))
	assert.Nil(t, FindByID(out, sub.ID))
	assert.NotNil(t, FindByID(out, e.ID))

	// the input is untouched
	assert.NotNil(t, FindByID(s, sub.ID))

	out, kind, err = ed.RemoveItem(s, e.ID)
	require.NoError(t, err)
	assert.Equal(t, KindEpic, kind)
	assert.Empty(t, Flatten(out))
}

func TestRemoveItemKinds(t *testing.T) {
	ed := testEditor()
	s, _, _, sub := fixture(t, ed)
	s, standalone, err := ed.AddTask(s, "", item("Standalone cleanup work", 3))
	require.NoError(t, err)

	s, kind, err := ed.RemoveItem(s, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, KindSubtask, kind)

	s, kind, err = ed.RemoveItem(s, standalone.ID)
	require.NoError(t, err)
	assert.Equal(t, KindTask, kind)
	assert.Empty(t, s.Tasks)

	_, _, err = ed.RemoveItem(s, "nope")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestCloneIsDeep(t *testing.T) {
	ed := testEditor()
	s, _, _, _ := fixture(t, ed)
	s.Epics[0].Deps = []string{"a"}

	c := s.Clone()
	c.Epics[0].Deps[0] = "b"
	c.Epics[0].Tasks[0].Subtasks[0].Content = "changed in the clone"

	assert.Equal(t, "a", s.Epics[0].Deps[0])
	assert.Equal(t, "Write PDF rendering code", s.Epics[0].Tasks[0].Subtasks[0].Content)
	assert.NotNil(t, (*State)(nil).Clone())
}
