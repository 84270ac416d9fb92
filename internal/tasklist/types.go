// Package tasklist defines the Epic -> Task -> Subtask document and the pure
// functions that validate, update, query and lint it.
//
// Nothing in this package performs I/O or mutates its inputs. Every mutation
// returns a brand-new *State; callers thread the returned value through and
// persist it themselves (see internal/storage).
package tasklist

import "slices"

// SchemaVersion is the only supported document version.
const SchemaVersion = 1

// Field limits enforced by Validate and by every Editor operation.
const (
	MinContentLength = 10
	MinPriority      = 1
	MaxPriority      = 5
)

// Status represents the lifecycle state of an epic, task or subtask.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusBlocked}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	return slices.Contains(Statuses, s)
}

// IsActionable reports whether an item with this status can be picked up.
func (s Status) IsActionable() bool {
	return s == StatusPending || s == StatusInProgress
}

// Kind tags the level of an item in the hierarchy.
type Kind string

const (
	KindEpic    Kind = "epic"
	KindTask    Kind = "task"
	KindSubtask Kind = "subtask"
)

// Kinds lists the levels from top to bottom.
var Kinds = []Kind{KindEpic, KindTask, KindSubtask}

// IsValid reports whether k is a known level.
func (k Kind) IsValid() bool {
	return slices.Contains(Kinds, k)
}

// Item holds the attributes shared by epics, tasks and subtasks.
// Timestamps are kept as sortable strings exactly as they appear on disk.
type Item struct {
	ID             string   `json:"id" yaml:"id" toml:"id"`
	Content        string   `json:"content" yaml:"content" toml:"content"`
	Priority       int      `json:"priority" yaml:"priority" toml:"priority"`
	Status         Status   `json:"status" yaml:"status" toml:"status"`
	CreatedAt      string   `json:"created_at" yaml:"created_at" toml:"created_at"`
	UpdatedAt      string   `json:"updated_at,omitempty" yaml:"updated_at,omitempty" toml:"updated_at,omitempty"`
	CompletedAt    string   `json:"completed_at,omitempty" yaml:"completed_at,omitempty" toml:"completed_at,omitempty"`
	Notes          []string `json:"notes,omitempty" yaml:"notes,omitempty" toml:"notes,omitempty"`
	Deps           []string `json:"deps,omitempty" yaml:"deps,omitempty" toml:"deps,omitempty"`
	Implementation string   `json:"implementation,omitempty" yaml:"implementation,omitempty" toml:"implementation,omitempty"`
}

// Subtask is a leaf action owned by a task.
type Subtask struct {
	Item `yaml:",inline"`
}

// Task is a deliverable, either owned by an epic or standalone.
type Task struct {
	Item     `yaml:",inline"`
	Subtasks []Subtask `json:"subtasks" yaml:"subtasks" toml:"subtasks"`
}

// Epic is a top-level initiative owning its tasks.
type Epic struct {
	Item  `yaml:",inline"`
	Tasks []Task `json:"tasks" yaml:"tasks" toml:"tasks"`
}

// State is the root of the persisted document.
type State struct {
	Version int    `json:"version" yaml:"version" toml:"version"`
	Epics   []Epic `json:"epics" yaml:"epics" toml:"epics"`
	Tasks   []Task `json:"tasks" yaml:"tasks" toml:"tasks"`
}

// CreateEmptyState returns a fresh document with no items.
func CreateEmptyState() *State {
	return &State{
		Version: SchemaVersion,
		Epics:   []Epic{},
		Tasks:   []Task{},
	}
}

// Clone returns a deep copy of s. A nil state clones to an empty one.
func (s *State) Clone() *State {
	if s == nil {
		return CreateEmptyState()
	}
	out := &State{
		Version: s.Version,
		Epics:   make([]Epic, len(s.Epics)),
		Tasks:   cloneTasks(s.Tasks),
	}
	for i, e := range s.Epics {
		out.Epics[i] = Epic{Item: e.Item.clone(), Tasks: cloneTasks(e.Tasks)}
	}
	return out
}

func cloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		subs := make([]Subtask, len(t.Subtasks))
		for j, st := range t.Subtasks {
			subs[j] = Subtask{Item: st.Item.clone()}
		}
		out[i] = Task{Item: t.Item.clone(), Subtasks: subs}
	}
	return out
}

func (it Item) clone() Item {
	it.Notes = slices.Clone(it.Notes)
	it.Deps = slices.Clone(it.Deps)
	return it
}

// normalize replaces nil child sequences with empty ones so the encoded
// document always carries explicit arrays.
func (s *State) normalize() {
	if s.Epics == nil {
		s.Epics = []Epic{}
	}
	if s.Tasks == nil {
		s.Tasks = []Task{}
	}
	for i := range s.Epics {
		if s.Epics[i].Tasks == nil {
			s.Epics[i].Tasks = []Task{}
		}
		normalizeTasks(s.Epics[i].Tasks)
	}
	normalizeTasks(s.Tasks)
}

func normalizeTasks(tasks []Task) {
	for i := range tasks {
		if tasks[i].Subtasks == nil {
			tasks[i].Subtasks = []Subtask{}
		}
	}
}
