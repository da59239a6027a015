package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/tasker-go/internal/task"
)

const taskSchemaURL = "https://github.com/nibzard/tasker-go/task.schema.json"

// taskSchema describes one entry of the "tasks" array.
const taskSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "is_sub", "completed"],
  "additionalProperties": false,
  "properties": {
    "name": {"type": "string"},
    "description": {"type": "string"},
    "is_sub": {"type": "boolean"},
    "completed": {"type": "boolean"},
    "parent": {"type": ["integer", "null"], "minimum": 0}
  },
  "if": {"properties": {"is_sub": {"const": false}}},
  "then": {"properties": {"parent": {"type": "null"}}}
}`

type jsonDocument struct {
	Tasks []json.RawMessage `json:"tasks"`
}

type jsonTask struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsSub       bool   `json:"is_sub"`
	Completed   bool   `json:"completed"`
	Parent      *int   `json:"parent"`
}

// JSONRepository stores tasks as {"tasks": [...]}, validating each entry
// against an embedded JSON Schema.
type JSONRepository struct {
	Path   string
	Logger *log.Logger
	schema *jsonschema.Schema
}

// NewJSONRepository compiles the task schema and returns the repository.
func NewJSONRepository(path string, logger *log.Logger) (*JSONRepository, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(taskSchemaURL, strings.NewReader(taskSchema)); err != nil {
		return nil, fmt.Errorf("add task schema: %w", err)
	}
	schema, err := compiler.Compile(taskSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile task schema: %w", err)
	}
	return &JSONRepository{Path: path, Logger: logger, schema: schema}, nil
}

// Load reads the task file. A missing file yields an empty list; entries
// that fail validation are skipped.
func (r *JSONRepository) Load() ([]task.Task, error) {
	data, err := readFile(r.Path)
	if err != nil || data == nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse task file: %w", err)
	}

	var tasks []task.Task
	for i, raw := range doc.Tasks {
		t, err := r.decodeTask(raw)
		if err != nil {
			r.Logger.Warn("Skipping malformed task", "err", &ParseError{Line: i + 1, Text: string(raw), Err: err})
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (r *JSONRepository) decodeTask(raw json.RawMessage) (task.Task, error) {
	var obj interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return task.Task{}, err
	}
	if err := r.schema.Validate(obj); err != nil {
		return task.Task{}, schemaError(err)
	}

	var jt jsonTask
	if err := json.Unmarshal(raw, &jt); err != nil {
		return task.Task{}, err
	}
	t := task.Task{
		Name:        jt.Name,
		Description: jt.Description,
		IsSub:       jt.IsSub,
		Completed:   jt.Completed,
		Parent:      task.NoParent,
	}
	if jt.IsSub && jt.Parent != nil {
		t.Parent = *jt.Parent
	}
	return t, nil
}

// Save rewrites the task file with 2-space indentation.
func (r *JSONRepository) Save(tasks []task.Task) error {
	out := struct {
		Tasks []jsonTask `json:"tasks"`
	}{Tasks: make([]jsonTask, 0, len(tasks))}
	for _, t := range tasks {
		jt := jsonTask{
			Name:        t.Name,
			Description: t.Description,
			IsSub:       t.IsSub,
			Completed:   t.Completed,
		}
		if p, ok := t.ParentIndex(); ok {
			jt.Parent = &p
		}
		out.Tasks = append(out.Tasks, jt)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task file: %w", err)
	}
	data = append(data, '\n')
	return writeFile(r.Path, data)
}

// schemaError flattens a schema validation error into its leaf messages.
func schemaError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	var msgs []string
	collectSchemaMessages(ve, &msgs)
	if len(msgs) == 0 {
		return err
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func collectSchemaMessages(ve *jsonschema.ValidationError, msgs *[]string) {
	if len(ve.Causes) == 0 {
		loc := pointerPath(ve.InstanceLocation)
		if loc == "" {
			loc = "task"
		}
		*msgs = append(*msgs, fmt.Sprintf("%s: %s", loc, ve.Message))
		return
	}
	for _, cause := range ve.Causes {
		collectSchemaMessages(cause, msgs)
	}
}

// pointerPath converts a JSON Pointer such as "/tags/0" to "tags[0]".
func pointerPath(ptr string) string {
	ptr = strings.TrimPrefix(strings.TrimPrefix(ptr, "#"), "/")
	if ptr == "" {
		return ""
	}
	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
