package tasklist

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "https://tasktree.dev/schema/state.json"

//go:embed state.schema.json
var stateSchema []byte

// Schema returns the embedded JSON Schema describing the state document.
func Schema() []byte {
	return bytes.Clone(stateSchema)
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, bytes.NewReader(stateSchema)); err != nil {
		return nil, fmt.Errorf("load state schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// Validate decodes an untrusted document and checks it against the state
// schema and the cross-item invariants. It returns either a usable state or
// a *ValidationError listing every problem found; never both.
func Validate(raw []byte) (*State, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &ValidationError{Problems: []Problem{{Message: fmt.Sprintf("malformed JSON: %v", err)}}}
	}
	if dec.More() {
		return nil, &ValidationError{Problems: []Problem{{Message: "malformed JSON: trailing data after document"}}}
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	var problems []Problem
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, err
		}
		problems = collectSchemaProblems(ve)
	}
	problems = append(problems, documentProblems(doc, problems)...)
	if len(problems) > 0 {
		sortProblems(problems)
		return nil, &ValidationError{Problems: problems}
	}

	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, &ValidationError{Problems: []Problem{{Message: fmt.Sprintf("decode document: %v", err)}}}
	}
	s.normalize()
	return &s, nil
}

// ValidateValue runs Validate over an already-decoded value, such as a
// map produced by another decoder.
func ValidateValue(v any) (*State, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, &ValidationError{Problems: []Problem{{Message: fmt.Sprintf("encode document: %v", err)}}}
	}
	return Validate(raw)
}

func collectSchemaProblems(root *jsonschema.ValidationError) []Problem {
	var problems []Problem
	seen := make(map[Problem]bool)
	var walk func(*jsonschema.ValidationError)
	walk = func(ve *jsonschema.ValidationError) {
		if len(ve.Causes) == 0 {
			p := Problem{Path: pointerToPath(ve.InstanceLocation), Message: ve.Message}
			if !seen[p] {
				seen[p] = true
				problems = append(problems, p)
			}
			return
		}
		for _, cause := range ve.Causes {
			walk(cause)
		}
	}
	walk(root)
	sortProblems(problems)
	return problems
}

func sortProblems(problems []Problem) {
	sort.SliceStable(problems, func(i, j int) bool {
		return problems[i].Path < problems[j].Path
	})
}

// pointerToPath turns "/epics/0/tasks/1/content" into "epics.0.tasks.1.content".
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	parts := strings.Split(ptr, "/")
	for i, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		parts[i] = strings.ReplaceAll(part, "~0", "~")
	}
	return strings.Join(parts, ".")
}

// documentProblems walks the decoded document for what the schema cannot
// express: ids repeated anywhere in the tree, and integral priorities written
// as decimals such as 2.0. It runs whether or not the schema passed, and skips
// paths the schema already reported.
func documentProblems(doc any, reported []Problem) []Problem {
	root, ok := doc.(map[string]any)
	if !ok {
		return nil
	}
	seen := make(map[string]bool, len(reported))
	for _, p := range reported {
		seen[p.Path] = true
	}
	var problems []Problem
	first := make(map[string]string)
	check := func(item map[string]any, path string) {
		if id, ok := item["id"].(string); ok {
			if prev, dup := first[id]; dup {
				problems = append(problems, Problem{
					Path:    path + ".id",
					Message: fmt.Sprintf("duplicate id %q (first used at %s)", id, prev),
				})
			} else {
				first[id] = path
			}
		}
		if n, ok := item["priority"].(json.Number); ok && !seen[path+".priority"] {
			if _, err := strconv.Atoi(n.String()); err != nil {
				problems = append(problems, Problem{
					Path:    path + ".priority",
					Message: fmt.Sprintf("priority must be an integer literal, got %s", n),
				})
			}
		}
	}
	each := func(v any, prefix string, fn func(map[string]any, string)) {
		list, _ := v.([]any)
		for i, el := range list {
			if item, ok := el.(map[string]any); ok {
				fn(item, prefix+"."+strconv.Itoa(i))
			}
		}
	}
	tasks := func(item map[string]any, path string) {
		check(item, path)
		each(item["subtasks"], path+".subtasks", check)
	}
	each(root["epics"], "epics", func(epic map[string]any, path string) {
		check(epic, path)
		each(epic["tasks"], path+".tasks", tasks)
	})
	each(root["tasks"], "tasks", tasks)
	return problems
}

func checkFields(content *string, priority *int, status *Status) error {
	var problems []string
	if content != nil && len([]rune(*content)) < MinContentLength {
		problems = append(problems, fmt.Sprintf("content must be at least %d characters", MinContentLength))
	}
	if priority != nil && (*priority < MinPriority || *priority > MaxPriority) {
		problems = append(problems, fmt.Sprintf("priority must be between %d and %d, got %d", MinPriority, MaxPriority, *priority))
	}
	if status != nil && !status.IsValid() {
		problems = append(problems, fmt.Sprintf("invalid status %q", *status))
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
}
