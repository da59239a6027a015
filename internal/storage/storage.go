// Package storage loads and saves task lists.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasker-go/internal/task"
)

// Separator joins fields in the text formats.
const Separator = ","

// Format names a storage codec.
type Format string

const (
	// FormatLines is the hierarchical text format: name,is_sub,completed,parent.
	FormatLines Format = "lines"
	// FormatFlat is the flat text format: name,description,completed.
	FormatFlat Format = "flat"
	// FormatJSON stores tasks as a JSON document.
	FormatJSON Format = "json"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatLines, FormatFlat, FormatJSON}
}

// ParseFormat normalizes a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatLines, FormatFlat, FormatJSON:
		return f, nil
	case "":
		return FormatLines, nil
	}
	return "", fmt.Errorf("unknown storage format %q (want lines, flat or json)", s)
}

// DefaultPath returns the file name used when none is configured.
func (f Format) DefaultPath() string {
	if f == FormatJSON {
		return "tasks.json"
	}
	return "tasks.txt"
}

// Repository persists a task list to a single backing file.
type Repository interface {
	Load() ([]task.Task, error)
	Save(tasks []task.Task) error
}

// NameValidator is implemented by repositories that restrict task names.
type NameValidator interface {
	ValidateName(name string) error
}

// ErrInvalidName is returned for names the format cannot store.
var ErrInvalidName = errors.New("invalid task name")

// ParseError describes a stored record that could not be decoded.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %s", e.Line, e.Text, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// New returns the repository for format backed by path. Diagnostics for
// skipped records go to logger; a nil logger discards them.
func New(format Format, path string, logger *log.Logger) (Repository, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	switch format {
	case FormatLines, "":
		return &LinesRepository{Path: path, Logger: logger}, nil
	case FormatFlat:
		return &FlatRepository{Path: path, Logger: logger}, nil
	case FormatJSON:
		return NewJSONRepository(path, logger)
	}
	return nil, fmt.Errorf("unknown storage format %q", format)
}

// readFile returns nil data and no error when the file does not exist yet.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read task file: %w", err)
	}
	return data, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	return nil
}

func validateTextName(name string) error {
	if strings.Contains(name, Separator) {
		return fmt.Errorf("%w: must not contain %q", ErrInvalidName, Separator)
	}
	if strings.ContainsAny(name, "\r\n") {
		return fmt.Errorf("%w: must not contain line breaks", ErrInvalidName)
	}
	return nil
}

// parseBool accepts only the literal words written by the text formats.
func parseBool(s string) (bool, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

// decodeLines runs parse over every non-blank line, logging and skipping
// the ones that fail.
func decodeLines(data []byte, logger *log.Logger, parse func(string) (task.Task, error)) []task.Task {
	var tasks []task.Task
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		t, err := parse(line)
		if err != nil {
			if logger != nil {
				logger.Warn("Skipping malformed task", "err", &ParseError{Line: i + 1, Text: line, Err: err})
			}
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks
}
