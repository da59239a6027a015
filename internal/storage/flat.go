package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasker-go/internal/task"
)

// FlatRepository stores a list without sub-tasks as name,description,completed.
type FlatRepository struct {
	Path   string
	Logger *log.Logger
}

// Load reads the task file. A missing file yields an empty list.
func (r *FlatRepository) Load() ([]task.Task, error) {
	data, err := readFile(r.Path)
	if err != nil || data == nil {
		return nil, err
	}
	return decodeLines(data, r.Logger, ParseFlatLine), nil
}

// Save rewrites the task file. Sub-task structure is not kept.
func (r *FlatRepository) Save(tasks []task.Task) error {
	var b strings.Builder
	for _, t := range tasks {
		b.WriteString(FormatFlatLine(t))
		b.WriteByte('\n')
	}
	return writeFile(r.Path, []byte(b.String()))
}

// ValidateName rejects names containing the field separator.
func (r *FlatRepository) ValidateName(name string) error {
	return validateTextName(name)
}

// FormatFlatLine encodes a task in the flat format.
func FormatFlatLine(t task.Task) string {
	return strings.Join([]string{t.Name, t.Description, strconv.FormatBool(t.Completed)}, Separator)
}

// ParseFlatLine decodes a flat-format record.
func ParseFlatLine(line string) (task.Task, error) {
	fields := strings.Split(line, Separator)
	if len(fields) != 3 {
		return task.Task{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	completed, err := parseBool(fields[2])
	if err != nil {
		return task.Task{}, fmt.Errorf("completed: %w", err)
	}
	return task.Task{
		Name:        fields[0],
		Description: fields[1],
		Completed:   completed,
		Parent:      task.NoParent,
	}, nil
}
