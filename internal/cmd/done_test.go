package cmd

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"tasktree/internal/tasklist"
)

func TestDoneCascades(t *testing.T) {
	app, out := setupTestApp(t)
	seedFixture(t, app)

	if err := execute(newDoneCmd(NewTestProvider(app)), "id-3"); err != nil {
		t.Fatalf("done failed: %v", err)
	}

	for _, id := range []string{"id-1", "id-2", "id-3"} {
		it := mustFind(t, app, id)
		if it.Status != tasklist.StatusCompleted || it.CompletedAt == "" {
			t.Errorf("%s: status=%q completed_at=%q, want completed", id, it.Status, it.CompletedAt)
		}
	}
	if got := mustFind(t, app, "id-4").Status; got != tasklist.StatusPending {
		t.Errorf("standalone task should be untouched, got %q", got)
	}

	want := []string{
		"Completed subtask id-3",
		"also completed task id-2",
		"also completed epic id-1",
	}
	for _, w := range want {
		if !strings.Contains(out.String(), w) {
			t.Errorf("output missing %q:\n%s", w, out.String())
		}
	}
}

func TestDoneAlreadyCompleted(t *testing.T) {
	app, out := setupTestApp(t)
	seedFixture(t, app)
	provider := NewTestProvider(app)

	must(t, execute(newDoneCmd(provider), "id-4"))
	first := mustFind(t, app, "id-4").CompletedAt
	out.Reset()

	must(t, execute(newDoneCmd(provider), "id-4"))
	if !strings.Contains(out.String(), "task id-4 is already completed") {
		t.Errorf("output = %q", out.String())
	}
	if got := mustFind(t, app, "id-4").CompletedAt; got != first {
		t.Errorf("completed_at changed from %q to %q", first, got)
	}
}

func TestDoneUnknownIDSavesNothing(t *testing.T) {
	app, _ := setupTestApp(t)
	seedFixture(t, app)

	err := execute(newDoneCmd(NewTestProvider(app)), "id-4", "ghost")
	if !errors.Is(err, tasklist.ErrItemNotFound) {
		t.Fatalf("error = %v, want ErrItemNotFound", err)
	}
	if got := mustFind(t, app, "id-4").Status; got != tasklist.StatusPending {
		t.Errorf("id-4 completed despite the failed batch: %q", got)
	}
}

func TestDoneJSON(t *testing.T) {
	app, out := setupTestApp(t)
	seedFixture(t, app)
	app.JSON = true

	if err := execute(newDoneCmd(NewTestProvider(app)), "id-3", "id-3"); err != nil {
		t.Fatal(err)
	}

	var got []doneResult
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out.String(), err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if len(got[0].Cascaded) != 2 || got[0].Cascaded[0].ID != "id-2" || got[0].Cascaded[1].Kind != tasklist.KindEpic {
		t.Errorf("first result = %+v", got[0])
	}
	if !got[1].AlreadyCompleted {
		t.Errorf("repeated id should be reported as already completed: %+v", got[1])
	}
}

func TestCascadedItems(t *testing.T) {
	app, _ := setupTestApp(t)
	seedFixture(t, app)
	s := loadState(t, app)

	got, err := cascadedItems(s, []string{"id-2", "id-1"})
	if err != nil {
		t.Fatalf("cascadedItems: %v", err)
	}
	want := []cascaded{{ID: "id-2", Kind: tasklist.KindTask}, {ID: "id-1", Kind: tasklist.KindEpic}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("cascadedItems = %+v, want %+v", got, want)
	}

	if _, err := cascadedItems(s, []string{"id-2", "missing"}); !errors.Is(err, tasklist.ErrItemNotFound) {
		t.Errorf("unknown cascaded id: err = %v, want ErrItemNotFound", err)
	}
}
