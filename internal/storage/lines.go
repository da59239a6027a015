package storage

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasker-go/internal/task"
)

// noParentField encodes a missing parent in the lines format.
var noParentField = strconv.FormatUint(math.MaxUint, 10)

// LinesRepository stores tasks one per line as name,is_sub,completed,parent.
type LinesRepository struct {
	Path   string
	Logger *log.Logger
}

// Load reads the task file. A missing file yields an empty list.
func (r *LinesRepository) Load() ([]task.Task, error) {
	data, err := readFile(r.Path)
	if err != nil || data == nil {
		return nil, err
	}
	return decodeLines(data, r.Logger, ParseLine), nil
}

// Save rewrites the task file.
func (r *LinesRepository) Save(tasks []task.Task) error {
	var b strings.Builder
	for _, t := range tasks {
		b.WriteString(FormatLine(t))
		b.WriteByte('\n')
	}
	return writeFile(r.Path, []byte(b.String()))
}

// ValidateName rejects names containing the field separator.
func (r *LinesRepository) ValidateName(name string) error {
	return validateTextName(name)
}

// FormatLine encodes a task in the lines format.
func FormatLine(t task.Task) string {
	parent := noParentField
	if p, ok := t.ParentIndex(); ok {
		parent = strconv.Itoa(p)
	}
	return strings.Join([]string{
		t.Name,
		strconv.FormatBool(t.IsSub),
		strconv.FormatBool(t.Completed),
		parent,
	}, Separator)
}

// ParseLine decodes a lines-format record.
func ParseLine(line string) (task.Task, error) {
	fields := strings.Split(line, Separator)
	if len(fields) != 4 {
		return task.Task{}, fmt.Errorf("expected 4 fields, got %d", len(fields))
	}
	isSub, err := parseBool(fields[1])
	if err != nil {
		return task.Task{}, fmt.Errorf("is_sub: %w", err)
	}
	completed, err := parseBool(fields[2])
	if err != nil {
		return task.Task{}, fmt.Errorf("completed: %w", err)
	}
	parent, err := strconv.ParseUint(fields[3], 10, strconv.IntSize)
	if err != nil {
		return task.Task{}, fmt.Errorf("parent: invalid index %q", fields[3])
	}

	t := task.Task{
		Name:      fields[0],
		IsSub:     isSub,
		Completed: completed,
		Parent:    task.NoParent,
	}
	if isSub && parent <= math.MaxInt {
		t.Parent = int(parent)
	}
	return t, nil
}
