package filesystem

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"tasktree/internal/fsutil"
	"tasktree/internal/storage"
	"tasktree/internal/tasklist"
)

func newTestStore(t *testing.T, opts ...Option) *FilesystemStorage {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".tasktree", "tasks.json")
	return New(path, opts...)
}

func TestContract(t *testing.T) {
	storage.RunContractTests(t, func(t *testing.T) storage.Store {
		return newTestStore(t)
	})
}

func TestInitWritesEmptyDocument(t *testing.T) {
	s := newTestStore(t)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	raw, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"version\": 1,\n  \"epics\": [],\n  \"tasks\": []\n}\n"
	if string(raw) != want {
		t.Errorf("state file = %q, want %q", raw, want)
	}
}

func TestLoadRejectsInvalidDocument(t *testing.T) {
	s := newTestStore(t)
	if err := s.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	doc := `{"version": 1, "epics": [{"id": "e1", "content": "short", "priority": 1, "status": "pending", "created_at": "2025-01-01T00:00:00.000Z"}]}`
	if err := os.WriteFile(s.Path(), []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := s.Load(context.Background())
	var ve *tasklist.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Load error = %v, want *tasklist.ValidationError", err)
	}
	if !strings.Contains(ve.Strings()[0], "epics.0.content") {
		t.Errorf("problem = %q, want it to point at epics.0.content", ve.Strings()[0])
	}
}

func TestModifyLeavesInvalidDocumentAlone(t *testing.T) {
	s := newTestStore(t)
	if err := s.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	called := false
	err := s.Modify(context.Background(), func(st *tasklist.State) (*tasklist.State, error) {
		called = true
		return st, nil
	})
	if err == nil || called {
		t.Fatalf("Modify on corrupt file: err=%v called=%v", err, called)
	}
	raw, _ := os.ReadFile(s.Path())
	if string(raw) != "not json" {
		t.Errorf("corrupt file was overwritten: %q", raw)
	}
}

func TestSaveRefusesInvalidState(t *testing.T) {
	s := newTestStore(t)
	if err := s.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	bad := tasklist.CreateEmptyState()
	bad.Tasks = append(bad.Tasks, tasklist.Task{Item: tasklist.Item{ID: "t1", Content: "tiny", Priority: 9, Status: "pending", CreatedAt: "2025-01-01T00:00:00.000Z"}})

	if err := s.Save(context.Background(), bad); err == nil {
		t.Fatal("Save should refuse a state that does not validate")
	}
	if _, err := s.Load(context.Background()); err != nil {
		t.Errorf("document damaged by refused Save: %v", err)
	}
}

func TestSaveKeepsBackup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}

	ed := tasklist.NewEditor(func() string { return "t1" }, func() string { return "2025-01-01T00:00:00.000Z" })
	st, _, err := ed.AddTask(tasklist.CreateEmptyState(), "", tasklist.NewItem{Content: "Back me up please", Priority: 2})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, st); err != nil {
		t.Fatal(err)
	}

	backup, err := os.ReadFile(s.Path() + ".bak")
	if err != nil {
		t.Fatalf("reading backup: %v", err)
	}
	if !bytes.Equal(backup, before) {
		t.Errorf("backup = %q, want previous document %q", backup, before)
	}
}

func TestModifyLockTimeout(t *testing.T) {
	s := newTestStore(t, WithLockTimeout(50*time.Millisecond))
	if err := s.Init(context.Background()); err != nil {
		t.Fatal(err)
	}

	held, err := fsutil.Acquire(s.Path()+".lock", 0)
	if err != nil {
		t.Fatal(err)
	}
	defer held.Release()

	err = s.Modify(context.Background(), func(st *tasklist.State) (*tasklist.State, error) { return st, nil })
	if !errors.Is(err, storage.ErrLockTimeout) {
		t.Errorf("Modify while locked = %v, want ErrLockTimeout", err)
	}
}

func TestModifyNilResultWritesNothing(t *testing.T) {
	s := newTestStore(t)
	if err := s.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Modify(context.Background(), func(*tasklist.State) (*tasklist.State, error) { return nil, nil }); err != nil {
		t.Fatalf("Modify: %v", err)
	}
	if _, err := os.Stat(s.Path() + ".bak"); !os.IsNotExist(err) {
		t.Errorf("nil result should not rewrite the document (backup exists: %v)", err)
	}
	after, _ := os.Stat(s.Path())
	if !after.ModTime().Equal(info.ModTime()) {
		t.Error("document was rewritten")
	}
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	s := newTestStore(t, WithLogger(logger))
	if err := s.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"initializing state file", "saved state", "loaded state"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
