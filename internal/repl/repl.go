// Package repl runs the interactive command loop over a task list.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasker-go/internal/logging"
	"github.com/nibzard/tasker-go/internal/storage"
	"github.com/nibzard/tasker-go/internal/task"
)

// Variant selects the command rules of a session.
type Variant int

const (
	// Hierarchical accepts verbs in any case and supports sub-tasks.
	Hierarchical Variant = iota
	// Flat matches verbs exactly and has no sub-tasks.
	Flat
)

// VariantFor returns the variant that matches a storage format.
func VariantFor(format storage.Format) Variant {
	if format == storage.FormatFlat {
		return Flat
	}
	return Hierarchical
}

// ErrInvalidIndex is returned for a non-numeric index argument.
var ErrInvalidIndex = errors.New("invalid task index")

// Options configures a Session.
type Options struct {
	Variant   Variant
	ShowIndex bool
	Logger    *log.Logger
}

// Session is one interactive run: tasks are loaded once, mutated by
// commands, and saved after every change.
type Session struct {
	store     *task.Store
	repo      storage.Repository
	in        *bufio.Scanner
	out       io.Writer
	logger    *log.Logger
	variant   Variant
	showIndex bool
}

// New loads the task list from repo and returns a session reading commands
// from in and writing output to out.
func New(repo storage.Repository, in io.Reader, out io.Writer, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	tasks, err := repo.Load()
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	logger.Debug("Loaded tasks", "count", len(tasks))

	return &Session{
		store:     task.NewStore(tasks),
		repo:      repo,
		in:        bufio.NewScanner(in),
		out:       out,
		logger:    logger,
		variant:   opts.Variant,
		showIndex: opts.ShowIndex,
	}, nil
}

// Tasks returns the current task list.
func (s *Session) Tasks() []task.Task {
	return s.store.Tasks()
}

// ShowIndex reports whether listings include indices.
func (s *Session) ShowIndex() bool {
	return s.showIndex
}

// Run renders the list and executes commands until exit, end of input, or
// cancellation of ctx.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		for s.in.Scan() {
			select {
			case lines <- s.in.Text():
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		errc <- s.in.Err()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		Render(s.out, s.store.Tasks(), s.showIndex)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := <-errc; err != nil {
					return fmt.Errorf("read command: %w", err)
				}
				return nil
			}
			if s.Execute(line) {
				return nil
			}
		}
	}
}

// Execute runs a single command line. It returns true when the session
// should end. Command errors are reported to the output, never returned.
func (s *Session) Execute(line string) bool {
	verb, arg := parseCommand(line)
	if verb == "" {
		return false
	}
	if s.variant == Hierarchical {
		verb = strings.ToLower(verb)
	}

	var err error
	changed := true
	switch verb {
	case "add":
		if err = s.validateName(arg); err == nil {
			s.store.AddMain(arg)
		}
	case "sub":
		if s.variant == Flat {
			fmt.Fprintln(s.out, "Unknown command")
			return false
		}
		if err = s.validateName(arg); err == nil {
			err = s.store.AddSub(arg)
		}
	case "remove":
		err = s.withIndex(arg, s.store.Remove)
	case "done":
		err = s.withIndex(arg, s.store.MarkDone)
	case "undone":
		err = s.withIndex(arg, s.store.MarkUndone)
	case "doneall":
		s.store.CompleteAll()
	case "removeall":
		s.store.Clear()
	case "toggle_index":
		s.showIndex = !s.showIndex
		changed = false
	case "help":
		PrintHelp(s.out, s.variant)
		changed = false
	case "exit":
		fmt.Fprintln(s.out, "Goodbye!")
		return true
	default:
		fmt.Fprintln(s.out, "Unknown command")
		return false
	}

	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return false
	}
	if changed {
		s.save()
	}
	return false
}

func (s *Session) withIndex(arg string, op func(int) error) error {
	index, err := parseIndex(arg)
	if err != nil {
		return err
	}
	return op(index)
}

func (s *Session) validateName(name string) error {
	if v, ok := s.repo.(storage.NameValidator); ok {
		return v.ValidateName(name)
	}
	return nil
}

// save persists the list. Failures are logged and the session carries on
// with its in-memory state.
func (s *Session) save() {
	if err := s.repo.Save(s.store.Tasks()); err != nil {
		s.logger.Error("Failed to save tasks", "err", err)
		return
	}
	s.logger.Debug("Saved tasks", "count", s.store.Len())
}

// parseCommand splits a line into its verb and the remaining words joined
// by single spaces.
func parseCommand(line string) (verb, arg string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

func parseIndex(arg string) (int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("%w %q", ErrInvalidIndex, arg)
	}
	return index, nil
}

// Render writes the task list, one task per line.
func Render(w io.Writer, tasks []task.Task, showIndex bool) {
	fmt.Fprintln(w, "Here are all the items:")
	for i, t := range tasks {
		if showIndex {
			fmt.Fprintf(w, "%d %s\n", i, t)
		} else {
			fmt.Fprintln(w, t)
		}
	}
}

const rule = "--------------------------------------------------------------------------------"

// PrintHelp writes the command reference for variant.
func PrintHelp(w io.Writer, variant Variant) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "add <task> - add a new task")
	if variant == Hierarchical {
		fmt.Fprintln(w, "sub <task> - add a new subtask")
	}
	fmt.Fprintln(w, "remove <index> - remove a task")
	fmt.Fprintln(w, "done <index> - mark a task as done")
	fmt.Fprintln(w, "undone <index> - mark a task as undone")
	fmt.Fprintln(w, "removeall - remove all tasks")
	fmt.Fprintln(w, "doneall - mark all tasks as done")
	fmt.Fprintln(w, "toggle_index - toggle the index display")
	fmt.Fprintln(w, "exit - exit the program")
	fmt.Fprintln(w, "help - show this help")
	fmt.Fprintln(w, rule)
}
