package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"tasktree/internal/config"
	"tasktree/internal/idgen"
	"tasktree/internal/storage/filesystem"
	"tasktree/internal/tasklist"
)

// setupTestApp creates an App over a fresh state file with sequential ids
// (id-1, id-2, ...) and a clock that advances one second per call.
func setupTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), config.Dir)
	store := filesystem.New(filepath.Join(dir, "tasks.json"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to init storage: %v", err)
	}

	n := 0
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var out bytes.Buffer
	app := &App{
		Store: store,
		Paths: config.Paths{ConfigDir: dir, ConfigFile: filepath.Join(dir, config.ConfigFileName)},
		Out:   &out,
		Err:   &bytes.Buffer{},
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
		Now: func() string {
			clock = clock.Add(time.Second)
			return idgen.FormatTime(clock)
		},
	}
	return app, &out
}

// seedFixture stores:
//
//	id-1 epic    "Ship the billing system"
//	id-2 task    "Build invoice generator"   (in id-1)
//	id-3 subtask "Write PDF rendering code"  (in id-2)
//	id-4 task    "Tidy up the README file"   (standalone)
func seedFixture(t *testing.T, app *App) {
	t.Helper()
	ed := tasklist.NewEditor(app.NewID, app.Now)
	s := tasklist.CreateEmptyState()
	s, _, err := ed.AddEpic(s, tasklist.NewItem{Content: "Ship the billing system", Priority: 2})
	must(t, err)
	s, _, err = ed.AddTask(s, "id-1", tasklist.NewItem{Content: "Build invoice generator", Priority: 2})
	must(t, err)
	s, _, err = ed.AddSubtask(s, "id-1", "id-2", tasklist.NewItem{Content: "Write PDF rendering code", Priority: 2})
	must(t, err)
	s, _, err = ed.AddTask(s, "", tasklist.NewItem{Content: "Tidy up the README file", Priority: 4})
	must(t, err)
	must(t, app.Store.Save(context.Background(), s))
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

// execute runs cmd with args, keeping cobra's own usage output quiet.
func execute(cmd *cobra.Command, args ...string) error {
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func loadState(t *testing.T, app *App) *tasklist.State {
	t.Helper()
	s, err := app.Store.Load(context.Background())
	if err != nil {
		t.Fatalf("loading state: %v", err)
	}
	return s
}

func mustFind(t *testing.T, app *App, id string) tasklist.FlatItem {
	t.Helper()
	it := tasklist.FindByID(loadState(t, app), id)
	if it == nil {
		t.Fatalf("item %s not found", id)
	}
	return *it
}

func TestResolveRef(t *testing.T) {
	app, _ := setupTestApp(t)
	seedFixture(t, app)
	s := loadState(t, app)

	tests := []struct {
		name    string
		ref     string
		kind    tasklist.Kind
		want    string
		wantErr error
	}{
		{"exact id", "id-2", tasklist.KindTask, "id-2", nil},
		{"content substring", "invoice", tasklist.KindTask, "id-2", nil},
		{"case insensitive", "BILLING", tasklist.KindEpic, "id-1", nil},
		{"id of wrong kind", "id-3", tasklist.KindTask, "", tasklist.ErrParentNotFound},
		{"no match", "nothing like it", tasklist.KindEpic, "", tasklist.ErrParentNotFound},
		{"ambiguous", "t", tasklist.KindTask, "", errAmbiguous},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveRef(s, tt.ref, tt.kind)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("resolveRef(%q) error = %v, want %v", tt.ref, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveRef(%q): %v", tt.ref, err)
			}
			if got.ID != tt.want {
				t.Errorf("resolveRef(%q) = %s, want %s", tt.ref, got.ID, tt.want)
			}
		})
	}
}

func TestChildrenAndDescendants(t *testing.T) {
	app, _ := setupTestApp(t)
	seedFixture(t, app)
	s := loadState(t, app)

	kids := children(s, "id-1")
	if len(kids) != 1 || kids[0].ID != "id-2" {
		t.Errorf("children(id-1) = %+v, want [id-2]", kids)
	}
	if n := descendants(s, "id-1"); n != 2 {
		t.Errorf("descendants(id-1) = %d, want 2", n)
	}
	if n := descendants(s, "id-4"); n != 0 {
		t.Errorf("descendants(id-4) = %d, want 0", n)
	}
}

func TestParseStatuses(t *testing.T) {
	got, err := parseStatuses([]string{"pending", "In-Progress"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1] != tasklist.StatusInProgress {
		t.Errorf("parseStatuses = %v", got)
	}
	if _, err := parseStatuses([]string{"open"}); err == nil || !strings.Contains(err.Error(), "must be one of") {
		t.Errorf("invalid status error = %v", err)
	}
}

func TestGeneratorUsesConfig(t *testing.T) {
	app := &App{Config: &mapConfigStore{data: map[string]string{
		config.KeyIDPrefix: "web",
		config.KeyIDLength: "4",
	}}}
	s := tasklist.CreateEmptyState()

	id := app.editor(s).NewID()
	if !strings.HasPrefix(id, "web-") || len(id) != len("web-")+4 {
		t.Errorf("id = %q, want web- followed by 4 characters", id)
	}

	app.Config.Set(config.KeyIDFormat, "uuid")
	if id := app.editor(s).NewID(); len(id) != len("web-")+36 {
		t.Errorf("uuid id = %q", id)
	}
}

func TestGeneratorIgnoresBadLength(t *testing.T) {
	app := &App{Config: &mapConfigStore{data: map[string]string{config.KeyIDLength: "99"}}}
	g := app.generator(tasklist.CreateEmptyState())
	if g.Length != 0 {
		t.Errorf("Length = %d, want 0 (adaptive) for an out-of-range setting", g.Length)
	}
}

// mapConfigStore is an in-memory config.Store for tests.
type mapConfigStore struct {
	data map[string]string
}

func (m *mapConfigStore) Get(key string) (string, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *mapConfigStore) Set(key, value string) error {
	if err := config.ValidateValue(key, value); err != nil {
		return err
	}
	m.data[key] = value
	return nil
}

func (m *mapConfigStore) SetInMemory(key, value string) { m.data[key] = value }

func (m *mapConfigStore) Unset(key string) error {
	delete(m.data, key)
	return nil
}

func (m *mapConfigStore) All() map[string]string {
	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}
