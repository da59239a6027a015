// Package task holds the in-memory task list and its sub-task hierarchy.
//
// A list is an ordered sequence of tasks addressed by position. Index 0 is the
// oldest task; new tasks are appended at the end.
//
// # Main tasks and sub-tasks
//
// A main task stands on its own. A sub-task is anchored to the nearest main
// task preceding the end of the list at the moment it is added:
//
//	0 [ ] write report
//	1  -> [ ] collect numbers      parent 0
//	2  -> [ ] draft summary        parent 0
//	3 [ ] book flights
//	4  -> [ ] compare prices       parent 3
//
// The anchor is stored as a plain index. The Store keeps those indices
// coherent across removals: when a task is removed, every surviving parent
// index above it moves down by one.
//
// # Cascades
//
//   - MarkDone on a main task also completes its direct sub-tasks.
//   - MarkUndone never touches sub-tasks.
//   - Remove deletes the task together with every task anchored to it,
//     highest index first.
package task
