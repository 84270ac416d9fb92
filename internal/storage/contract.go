package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"tasktree/internal/idgen"
	"tasktree/internal/tasklist"
)

// RunContractTests runs the contract test suite against a Store implementation.
// factory must return a fresh, uninitialized store for every call.
func RunContractTests(t *testing.T, factory func(t *testing.T) Store) {
	t.Run("LoadBeforeInit", func(t *testing.T) { testLoadBeforeInit(t, factory(t)) })
	t.Run("Init", func(t *testing.T) { testInit(t, factory(t)) })
	t.Run("SaveLoad", func(t *testing.T) { testSaveLoad(t, factory(t)) })
	t.Run("Modify", func(t *testing.T) { testModify(t, factory(t)) })
	t.Run("ModifyError", func(t *testing.T) { testModifyError(t, factory(t)) })
	t.Run("ConcurrentModify", func(t *testing.T) { testConcurrentModify(t, factory(t)) })
	t.Run("CanceledContext", func(t *testing.T) { testCanceledContext(t, factory(t)) })
}

// contractEditor returns an editor with predictable ids and a fixed clock.
func contractEditor() *tasklist.Editor {
	var mu sync.Mutex
	n := 0
	return tasklist.NewEditor(
		func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("c-%d", n)
		},
		idgen.FixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
	)
}

func testLoadBeforeInit(t *testing.T, s Store) {
	_, err := s.Load(context.Background())
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Load before Init = %v, want ErrNotInitialized", err)
	}
	err = s.Modify(context.Background(), func(st *tasklist.State) (*tasklist.State, error) { return st, nil })
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Modify before Init = %v, want ErrNotInitialized", err)
	}
}

func testInit(t *testing.T, s Store) {
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	st, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load after Init failed: %v", err)
	}
	if st.Version != tasklist.SchemaVersion || len(st.Epics) != 0 || len(st.Tasks) != 0 {
		t.Errorf("Init should produce an empty document, got %+v", st)
	}
	if err := s.Init(ctx); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second Init = %v, want ErrAlreadyInitialized", err)
	}
}

func testSaveLoad(t *testing.T, s Store) {
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	ed := contractEditor()
	st, epic, err := ed.AddEpic(tasklist.CreateEmptyState(), tasklist.NewItem{Content: "Persisted epic content", Priority: 2})
	if err != nil {
		t.Fatal(err)
	}
	st, _, err = ed.AddTask(st, epic.ID, tasklist.NewItem{Content: "Persisted task content", Priority: 3, Notes: []string{"a note"}})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, st); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Epics) != 1 || got.Epics[0].ID != epic.ID {
		t.Fatalf("Load returned %+v, want the saved epic", got.Epics)
	}
	if len(got.Epics[0].Tasks) != 1 || got.Epics[0].Tasks[0].Notes[0] != "a note" {
		t.Errorf("task not round-tripped: %+v", got.Epics[0].Tasks)
	}
}

func testModify(t *testing.T, s Store) {
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	ed := contractEditor()
	err := s.Modify(ctx, func(st *tasklist.State) (*tasklist.State, error) {
		out, _, err := ed.AddTask(st, "", tasklist.NewItem{Content: "Modified standalone task", Priority: 1})
		return out, err
	})
	if err != nil {
		t.Fatalf("Modify failed: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Tasks) != 1 {
		t.Errorf("Modify result not persisted: %+v", got.Tasks)
	}
}

func testModifyError(t *testing.T, s Store) {
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	ed := contractEditor()
	boom := errors.New("boom")
	err := s.Modify(ctx, func(st *tasklist.State) (*tasklist.State, error) {
		out, _, err := ed.AddTask(st, "", tasklist.NewItem{Content: "Never persisted task", Priority: 1})
		if err != nil {
			return nil, err
		}
		return out, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Modify error = %v, want boom", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Tasks) != 0 {
		t.Errorf("failed Modify wrote data: %+v", got.Tasks)
	}
}

func testConcurrentModify(t *testing.T, s Store) {
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	ed := contractEditor()
	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Modify(ctx, func(st *tasklist.State) (*tasklist.State, error) {
				out, _, err := ed.AddTask(st, "", tasklist.NewItem{Content: "Concurrent standalone task", Priority: 3})
				return out, err
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("goroutine %d: %v", i, err)
		}
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Tasks) != n {
		t.Errorf("got %d tasks after %d concurrent Modify calls", len(got.Tasks), n)
	}
}

func testCanceledContext(t *testing.T, s Store) {
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Load with canceled context = %v, want context.Canceled", err)
	}
	if err := s.Save(ctx, tasklist.CreateEmptyState()); !errors.Is(err, context.Canceled) {
		t.Errorf("Save with canceled context = %v, want context.Canceled", err)
	}
}
