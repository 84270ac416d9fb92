package tasklist

import (
	"fmt"
	"slices"
)

// Editor applies mutations to a State. It holds only the injected id
// generator and clock; every method copies its input and returns the new
// tree, leaving the caller's value untouched even on failure.
type Editor struct {
	NewID func() string
	Now   func() string
}

// NewEditor returns an Editor using the given id generator and clock.
func NewEditor(newID func() string, now func() string) *Editor {
	return &Editor{NewID: newID, Now: now}
}

// NewItem is the payload for the add operations.
type NewItem struct {
	Content  string
	Priority int
	Notes    []string
	Deps     []string
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Content        *string
	Priority       *int
	Status         *Status
	Notes          *[]string
	Deps           *[]string
	Implementation *string
}

// StatusPatch returns a Patch that only sets the status.
func StatusPatch(status Status) Patch {
	return Patch{Status: &status}
}

func (e *Editor) newItem(in NewItem) (Item, error) {
	if err := checkFields(&in.Content, &in.Priority, nil); err != nil {
		return Item{}, err
	}
	return Item{
		ID:        e.NewID(),
		Content:   in.Content,
		Priority:  in.Priority,
		Status:    StatusPending,
		CreatedAt: e.Now(),
		Notes:     slices.Clone(in.Notes),
		Deps:      dedupe(in.Deps),
	}, nil
}

// AddEpic appends a new pending epic.
func (e *Editor) AddEpic(s *State, in NewItem) (*State, Epic, error) {
	item, err := e.newItem(in)
	if err != nil {
		return s, Epic{}, err
	}
	out := s.Clone()
	epic := Epic{Item: item, Tasks: []Task{}}
	out.Epics = append(out.Epics, epic)
	return out, epic, nil
}

// AddTask appends a new pending task to the epic with epicID, or to the
// standalone task list when epicID is empty.
func (e *Editor) AddTask(s *State, epicID string, in NewItem) (*State, Task, error) {
	out := s.Clone()
	var tasks *[]Task
	if epicID == "" {
		tasks = &out.Tasks
	} else {
		epic := out.epic(epicID)
		if epic == nil {
			return s, Task{}, parentNotFound(KindEpic, epicID)
		}
		tasks = &epic.Tasks
	}
	item, err := e.newItem(in)
	if err != nil {
		return s, Task{}, err
	}
	task := Task{Item: item, Subtasks: []Subtask{}}
	*tasks = append(*tasks, task)
	return out, task, nil
}

// AddSubtask appends a new pending subtask to a task. An empty epicID
// addresses a standalone task.
func (e *Editor) AddSubtask(s *State, epicID, taskID string, in NewItem) (*State, Subtask, error) {
	if taskID == "" {
		return s, Subtask{}, fmt.Errorf("add subtask: %w: task id is required", ErrMissingScope)
	}
	out := s.Clone()
	var task *Task
	if epicID == "" {
		task = findTask(out.Tasks, taskID)
	} else {
		epic := out.epic(epicID)
		if epic == nil {
			return s, Subtask{}, parentNotFound(KindEpic, epicID)
		}
		task = findTask(epic.Tasks, taskID)
	}
	if task == nil {
		return s, Subtask{}, parentNotFound(KindTask, taskID)
	}
	item, err := e.newItem(in)
	if err != nil {
		return s, Subtask{}, err
	}
	sub := Subtask{Item: item}
	task.Subtasks = append(task.Subtasks, sub)
	return out, sub, nil
}

// UpdateEpic applies p to the epic with id.
func (e *Editor) UpdateEpic(s *State, id string, p Patch) (*State, error) {
	out := s.Clone()
	epic := out.epic(id)
	if epic == nil {
		return s, notFound(KindEpic, id, "")
	}
	if err := e.apply(&epic.Item, p); err != nil {
		return s, err
	}
	return out, nil
}

// UpdateTask applies p to a task. An empty epicID addresses a standalone task.
func (e *Editor) UpdateTask(s *State, epicID, taskID string, p Patch) (*State, error) {
	out := s.Clone()
	task, err := out.scopedTask(epicID, taskID)
	if err != nil {
		return s, err
	}
	if err := e.apply(&task.Item, p); err != nil {
		return s, err
	}
	return out, nil
}

// UpdateStandaloneTask applies p to a task held directly in State.Tasks.
func (e *Editor) UpdateStandaloneTask(s *State, taskID string, p Patch) (*State, error) {
	return e.UpdateTask(s, "", taskID, p)
}

// UpdateSubtask applies p to a subtask. An empty epicID addresses a subtask
// of a standalone task; the task id is always required.
func (e *Editor) UpdateSubtask(s *State, epicID, taskID, subtaskID string, p Patch) (*State, error) {
	if taskID == "" {
		return s, fmt.Errorf("update subtask %q: %w: task id is required", subtaskID, ErrMissingScope)
	}
	out := s.Clone()
	task, err := out.scopedTask(epicID, taskID)
	if err != nil {
		return s, err
	}
	sub := findSubtask(task.Subtasks, subtaskID)
	if sub == nil {
		return s, notFound(KindSubtask, subtaskID, "task "+quote(taskID))
	}
	if err := e.apply(&sub.Item, p); err != nil {
		return s, err
	}
	return out, nil
}

// UpdateStandaloneSubtask applies p to a subtask of a standalone task.
func (e *Editor) UpdateStandaloneSubtask(s *State, taskID, subtaskID string, p Patch) (*State, error) {
	return e.UpdateSubtask(s, "", taskID, subtaskID, p)
}

// apply writes the present fields of p onto it. updated_at always moves;
// completed_at is stamped only when the incoming status is completed and is
// left as-is otherwise.
func (e *Editor) apply(it *Item, p Patch) error {
	if err := checkFields(p.Content, p.Priority, p.Status); err != nil {
		return err
	}
	now := e.Now()
	if p.Content != nil {
		it.Content = *p.Content
	}
	if p.Priority != nil {
		it.Priority = *p.Priority
	}
	if p.Status != nil {
		it.Status = *p.Status
		if *p.Status == StatusCompleted {
			it.CompletedAt = now
		}
	}
	if p.Notes != nil {
		it.Notes = slices.Clone(*p.Notes)
	}
	if p.Deps != nil {
		it.Deps = dedupe(*p.Deps)
	}
	if p.Implementation != nil {
		it.Implementation = *p.Implementation
	}
	it.UpdatedAt = now
	return nil
}

// MarkComplete completes the item with id, wherever it lives, and cascades
// upward: a task whose subtasks are now all completed is completed too, and
// an epic whose tasks are now all completed follows. It returns the ids
// whose status changed, target first. An item that is already completed is
// left alone and yields no ids.
func (e *Editor) MarkComplete(s *State, id string) (*State, []string, error) {
	out := s.Clone()
	loc, ok := out.locate(id)
	if !ok {
		return s, nil, fmt.Errorf("mark complete %q: %w", id, ErrItemNotFound)
	}
	target := loc.item()
	if target.Status == StatusCompleted {
		return out, nil, nil
	}

	done := StatusPatch(StatusCompleted)
	if err := e.apply(target, done); err != nil {
		return s, nil, err
	}
	changed := []string{id}

	if loc.kind == KindSubtask {
		if !allSubtasksCompleted(loc.task.Subtasks) {
			return out, changed, nil
		}
		if loc.task.Status != StatusCompleted {
			if err := e.apply(&loc.task.Item, done); err != nil {
				return s, nil, err
			}
			changed = append(changed, loc.task.ID)
		}
	}
	if loc.kind == KindSubtask || loc.kind == KindTask {
		if loc.epic == nil || !allTasksCompleted(loc.epic.Tasks) {
			return out, changed, nil
		}
		if loc.epic.Status != StatusCompleted {
			if err := e.apply(&loc.epic.Item, done); err != nil {
				return s, nil, err
			}
			changed = append(changed, loc.epic.ID)
		}
	}
	return out, changed, nil
}

// RemoveItem deletes the item with id together with everything it owns.
func (e *Editor) RemoveItem(s *State, id string) (*State, Kind, error) {
	out := s.Clone()
	loc, ok := out.locate(id)
	if !ok {
		return s, "", fmt.Errorf("remove %q: %w", id, ErrItemNotFound)
	}
	switch loc.kind {
	case KindEpic:
		out.Epics = slices.DeleteFunc(out.Epics, func(ep Epic) bool { return ep.ID == id })
	case KindTask:
		if loc.epic != nil {
			loc.epic.Tasks = removeTask(loc.epic.Tasks, id)
		} else {
			out.Tasks = removeTask(out.Tasks, id)
		}
	case KindSubtask:
		loc.task.Subtasks = slices.DeleteFunc(loc.task.Subtasks, func(st Subtask) bool { return st.ID == id })
	}
	return out, loc.kind, nil
}

func removeTask(tasks []Task, id string) []Task {
	return slices.DeleteFunc(tasks, func(t Task) bool { return t.ID == id })
}

func allSubtasksCompleted(subs []Subtask) bool {
	for _, st := range subs {
		if st.Status != StatusCompleted {
			return false
		}
	}
	return true
}

func allTasksCompleted(tasks []Task) bool {
	for _, t := range tasks {
		if t.Status != StatusCompleted {
			return false
		}
	}
	return true
}

// location points into a State at the item with a given id and its owners.
type location struct {
	kind    Kind
	epic    *Epic
	task    *Task
	subtask *Subtask
}

func (l location) item() *Item {
	switch l.kind {
	case KindEpic:
		return &l.epic.Item
	case KindTask:
		return &l.task.Item
	default:
		return &l.subtask.Item
	}
}

// locate searches epics, their tasks and subtasks, then standalone tasks
// and their subtasks.
func (s *State) locate(id string) (location, bool) {
	for ei := range s.Epics {
		epic := &s.Epics[ei]
		if epic.ID == id {
			return location{kind: KindEpic, epic: epic}, true
		}
		for ti := range epic.Tasks {
			task := &epic.Tasks[ti]
			if task.ID == id {
				return location{kind: KindTask, epic: epic, task: task}, true
			}
			if sub := findSubtask(task.Subtasks, id); sub != nil {
				return location{kind: KindSubtask, epic: epic, task: task, subtask: sub}, true
			}
		}
	}
	for ti := range s.Tasks {
		task := &s.Tasks[ti]
		if task.ID == id {
			return location{kind: KindTask, task: task}, true
		}
		if sub := findSubtask(task.Subtasks, id); sub != nil {
			return location{kind: KindSubtask, task: task, subtask: sub}, true
		}
	}
	return location{}, false
}

func (s *State) epic(id string) *Epic {
	for i := range s.Epics {
		if s.Epics[i].ID == id {
			return &s.Epics[i]
		}
	}
	return nil
}

func (s *State) scopedTask(epicID, taskID string) (*Task, error) {
	if epicID == "" {
		task := findTask(s.Tasks, taskID)
		if task == nil {
			return nil, notFound(KindTask, taskID, "standalone tasks")
		}
		return task, nil
	}
	epic := s.epic(epicID)
	if epic == nil {
		return nil, notFound(KindEpic, epicID, "")
	}
	task := findTask(epic.Tasks, taskID)
	if task == nil {
		return nil, notFound(KindTask, taskID, "epic "+quote(epicID))
	}
	return task, nil
}

func findTask(tasks []Task, id string) *Task {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i]
		}
	}
	return nil
}

func findSubtask(subs []Subtask, id string) *Subtask {
	for i := range subs {
		if subs[i].ID == id {
			return &subs[i]
		}
	}
	return nil
}

func dedupe(ids []string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}
