package task

import (
	"errors"
	"fmt"
)

// NoParent marks a task that is not anchored to any main task.
const NoParent = -1

var (
	// ErrIndexOutOfRange is returned when an index does not address a task.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrNoMainTask is returned when a sub-task has no main task to anchor to.
	ErrNoMainTask = errors.New("no main task to attach a sub-task to")
)

// Task is a single row in the task list.
type Task struct {
	Name string
	// Description is only carried by the flat storage format.
	Description string
	IsSub       bool
	Completed   bool
	// Parent is the index of the owning main task, or NoParent.
	Parent int
}

// NewMain returns an incomplete main task.
func NewMain(name string) Task {
	return Task{Name: name, Parent: NoParent}
}

// NewSub returns an incomplete sub-task anchored to parent.
func NewSub(name string, parent int) Task {
	return Task{Name: name, IsSub: true, Parent: parent}
}

// ParentIndex returns the parent index and whether the task has one.
func (t Task) ParentIndex() (int, bool) {
	if !t.IsSub || t.Parent < 0 {
		return NoParent, false
	}
	return t.Parent, true
}

// String renders the task the way the list view shows it.
func (t Task) String() string {
	prefix := ""
	if t.IsSub {
		prefix = " -> "
	}
	mark := " "
	if t.Completed {
		mark = "x"
	}
	line := fmt.Sprintf("%s[%s] %s", prefix, mark, t.Name)
	if t.Description != "" {
		line += " - " + t.Description
	}
	return line
}

// IndexError reports an index that does not address a task.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("task index %d out of range (have %d tasks)", e.Index, e.Len)
}

// Unwrap returns ErrIndexOutOfRange so callers can match with errors.Is.
func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}
