package cmd

import (
	"errors"
	"fmt"
	"strings"

	"tasktree/internal/tasklist"
)

// errAmbiguous is returned when a reference matches more than one item.
var errAmbiguous = errors.New("ambiguous reference")

// resolveRef finds the single item of kind that ref names, either by exact
// id or by a case-insensitive content substring.
func resolveRef(s *tasklist.State, ref string, kind tasklist.Kind) (tasklist.FlatItem, error) {
	if it := tasklist.FindByID(s, ref); it != nil {
		if it.Kind != kind {
			return tasklist.FlatItem{}, fmt.Errorf("%s is a %s, not a %s: %w", ref, it.Kind, kind, tasklist.ErrParentNotFound)
		}
		return *it, nil
	}
	matches := tasklist.FilterItems(tasklist.FuzzyFind(s, ref), tasklist.Filter{Kinds: []tasklist.Kind{kind}})
	switch len(matches) {
	case 0:
		return tasklist.FlatItem{}, fmt.Errorf("%w: no %s matches %q", tasklist.ErrParentNotFound, kind, ref)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return tasklist.FlatItem{}, fmt.Errorf("%w: %d %ss match %q (%s)", errAmbiguous, len(matches), kind, ref, strings.Join(ids, ", "))
	}
}

// findItem returns the item with exactly this id.
func findItem(s *tasklist.State, id string) (tasklist.FlatItem, error) {
	it := tasklist.FindByID(s, id)
	if it == nil {
		return tasklist.FlatItem{}, fmt.Errorf("%q: %w", id, tasklist.ErrItemNotFound)
	}
	return *it, nil
}

// applyPatch routes p to the scoped update for the item's level.
func applyPatch(ed *tasklist.Editor, s *tasklist.State, it tasklist.FlatItem, p tasklist.Patch) (*tasklist.State, error) {
	switch it.Kind {
	case tasklist.KindEpic:
		return ed.UpdateEpic(s, it.ID, p)
	case tasklist.KindTask:
		if it.EpicID == "" {
			return ed.UpdateStandaloneTask(s, it.ID, p)
		}
		return ed.UpdateTask(s, it.EpicID, it.ID, p)
	default:
		if it.EpicID == "" {
			return ed.UpdateStandaloneSubtask(s, it.TaskID, it.ID, p)
		}
		return ed.UpdateSubtask(s, it.EpicID, it.TaskID, it.ID, p)
	}
}

// children returns the direct children of the item with id, in order.
func children(s *tasklist.State, id string) []tasklist.FlatItem {
	var out []tasklist.FlatItem
	for _, it := range tasklist.Flatten(s) {
		switch {
		case it.Kind == tasklist.KindTask && it.EpicID == id:
			out = append(out, it)
		case it.Kind == tasklist.KindSubtask && it.TaskID == id:
			out = append(out, it)
		}
	}
	return out
}

// descendants counts everything owned by the item with id.
func descendants(s *tasklist.State, id string) int {
	n := 0
	for _, it := range tasklist.Flatten(s) {
		if it.ID != id && (it.EpicID == id || it.TaskID == id) {
			n++
		}
	}
	return n
}

func parseStatuses(raw []string) ([]tasklist.Status, error) {
	out := make([]tasklist.Status, 0, len(raw))
	for _, r := range raw {
		st := tasklist.Status(strings.ReplaceAll(strings.ToLower(r), "-", "_"))
		if !st.IsValid() {
			return nil, fmt.Errorf("invalid status %q: must be one of %s", r, joinStatuses())
		}
		out = append(out, st)
	}
	return out, nil
}

func parseKinds(raw []string) ([]tasklist.Kind, error) {
	out := make([]tasklist.Kind, 0, len(raw))
	for _, r := range raw {
		k, err := parseKind(r)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

func parseKind(raw string) (tasklist.Kind, error) {
	k := tasklist.Kind(strings.ToLower(raw))
	if !k.IsValid() {
		return "", fmt.Errorf("invalid type %q: must be one of epic, task, subtask", raw)
	}
	return k, nil
}

func joinStatuses() string {
	names := make([]string, len(tasklist.Statuses))
	for i, s := range tasklist.Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// location describes where an item sits, e.g. "Ship billing › Build invoices".
func location(it tasklist.FlatItem) string {
	var parts []string
	if it.EpicContent != "" {
		parts = append(parts, it.EpicContent)
	}
	if it.TaskContent != "" {
		parts = append(parts, it.TaskContent)
	}
	return strings.Join(parts, " › ")
}

func progress(it tasklist.FlatItem) string {
	if !it.HasChildren {
		return ""
	}
	return fmt.Sprintf("%d/%d", it.CompletedChildCount, it.ChildCount)
}
