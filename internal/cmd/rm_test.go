package cmd

import (
	"errors"
	"strings"
	"testing"

	"tasktree/internal/tasklist"
)

func TestRmEpicRemovesDescendants(t *testing.T) {
	app, out := setupTestApp(t)
	seedFixture(t, app)

	if err := execute(newRmCmd(NewTestProvider(app)), "id-1"); err != nil {
		t.Fatalf("rm failed: %v", err)
	}

	s := loadState(t, app)
	for _, id := range []string{"id-1", "id-2", "id-3"} {
		if tasklist.FindByID(s, id) != nil {
			t.Errorf("%s still present", id)
		}
	}
	if tasklist.FindByID(s, "id-4") == nil {
		t.Error("standalone task id-4 was removed")
	}
	if !strings.Contains(out.String(), "Removed epic id-1 and 2 owned item(s)") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRmSubtask(t *testing.T) {
	app, out := setupTestApp(t)
	seedFixture(t, app)

	must(t, execute(newRmCmd(NewTestProvider(app)), "id-3"))
	if got := strings.TrimSpace(out.String()); got != "✓ Removed subtask id-3" {
		t.Errorf("output = %q", got)
	}
	if it := mustFind(t, app, "id-2"); it.HasChildren {
		t.Error("task id-2 still has children")
	}
}

func TestRmUnknown(t *testing.T) {
	app, _ := setupTestApp(t)
	seedFixture(t, app)

	err := execute(newRmCmd(NewTestProvider(app)), "ghost")
	if !errors.Is(err, tasklist.ErrItemNotFound) {
		t.Errorf("error = %v, want ErrItemNotFound", err)
	}
}
