package task

import "sort"

// Store owns the ordered task list for one session.
type Store struct {
	tasks []Task
}

// NewStore returns a store holding a copy of tasks.
func NewStore(tasks []Task) *Store {
	s := &Store{tasks: make([]Task, len(tasks))}
	copy(s.tasks, tasks)
	return s
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Tasks returns a copy of the task list in order.
func (s *Store) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Task returns the task at index.
func (s *Store) Task(index int) (Task, error) {
	if err := s.checkIndex(index); err != nil {
		return Task{}, err
	}
	return s.tasks[index], nil
}

// AddMain appends a new main task.
func (s *Store) AddMain(name string) {
	s.tasks = append(s.tasks, NewMain(name))
}

// AddSub appends a sub-task anchored to the nearest preceding main task.
func (s *Store) AddSub(name string) error {
	parent, ok := s.lastMain()
	if !ok {
		return ErrNoMainTask
	}
	s.tasks = append(s.tasks, NewSub(name, parent))
	return nil
}

// lastMain scans backward from the end for the first main task.
func (s *Store) lastMain() (int, bool) {
	for i := len(s.tasks) - 1; i >= 0; i-- {
		if !s.tasks[i].IsSub {
			return i, true
		}
	}
	return NoParent, false
}

// Children returns the indices of the tasks anchored directly to index,
// in ascending order.
func (s *Store) Children(index int) []int {
	var children []int
	for i, t := range s.tasks {
		if p, ok := t.ParentIndex(); ok && p == index {
			children = append(children, i)
		}
	}
	return children
}

// MarkDone completes the task at index. A main task also completes its
// direct sub-tasks.
func (s *Store) MarkDone(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.tasks[index].Completed = true
	if s.tasks[index].IsSub {
		return nil
	}
	for _, child := range s.Children(index) {
		s.tasks[child].Completed = true
	}
	return nil
}

// MarkUndone reopens the task at index. Sub-tasks are left as they are.
func (s *Store) MarkUndone(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.tasks[index].Completed = false
	return nil
}

// CompleteAll marks every task completed.
func (s *Store) CompleteAll() {
	for i := range s.tasks {
		s.tasks[i].Completed = true
	}
}

// Remove deletes the task at index along with every task anchored to it,
// directly or through another removed task.
func (s *Store) Remove(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}

	doomed := map[int]bool{index: true}
	stack := []int{index}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range s.Children(current) {
			if !doomed[child] {
				doomed[child] = true
				stack = append(stack, child)
			}
		}
	}

	order := make([]int, 0, len(doomed))
	for i := range doomed {
		order = append(order, i)
	}
	// Highest index first so pending indices never shift.
	sort.Sort(sort.Reverse(sort.IntSlice(order)))
	for _, i := range order {
		s.removeAt(i)
	}
	return nil
}

// removeAt deletes a single task and shifts parent indices above it.
func (s *Store) removeAt(index int) {
	s.tasks = append(s.tasks[:index], s.tasks[index+1:]...)
	for i := range s.tasks {
		if p, ok := s.tasks[i].ParentIndex(); ok && p > index {
			s.tasks[i].Parent = p - 1
		}
	}
}

// Clear removes every task.
func (s *Store) Clear() {
	s.tasks = nil
}

func (s *Store) checkIndex(index int) error {
	if index < 0 || index >= len(s.tasks) {
		return &IndexError{Index: index, Len: len(s.tasks)}
	}
	return nil
}
