package sched

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownDependency is returned by AddTask when a dependency id does
	// not refer to a registered task.
	ErrUnknownDependency = errors.New("sched: unknown dependency id")
	// ErrTaskNotFound is returned for operations on an unregistered task id.
	ErrTaskNotFound = errors.New("sched: task not found")
	// ErrCycleDetected is returned by Execute when the dependency graph is
	// not a DAG. No task callback runs in that case.
	ErrCycleDetected = errors.New("sched: dependency cycle detected")
)

type task struct {
	id        TaskId
	name      string
	phase     Phase
	work      func()
	dependsOn []TaskId
	// order is the insertion sequence number, the second component of the
	// deterministic tie-break.
	order int
}

// Scheduler executes named units of work in dependency order, once per call to
// Execute. It is game-logic-agnostic: tasks are opaque callbacks. A Scheduler
// is not safe for concurrent use; the whole frame model is single-threaded.
type Scheduler struct {
	tasks     map[TaskId]*task
	nextId    TaskId
	nextOrder int
	lastOrder []TaskId
}

// NewScheduler returns an empty Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{tasks: make(map[TaskId]*task)}
}

// AddTask registers a task and returns its id. Every id in desc.DependsOn must
// refer to an already registered task, otherwise ErrUnknownDependency is
// returned and nothing is added.
func (s *Scheduler) AddTask(desc TaskDescriptor) (TaskId, error) {
	for _, dep := range desc.DependsOn {
		if _, ok := s.tasks[dep]; !ok {
			return InvalidTaskId, fmt.Errorf("%w: %d (task %q)", ErrUnknownDependency, dep, desc.Name)
		}
	}

	id := s.nextId
	s.nextId++
	s.tasks[id] = &task{
		id:        id,
		name:      desc.Name,
		phase:     desc.Phase,
		work:      desc.Work,
		dependsOn: slices.Clone(desc.DependsOn),
		order:     s.nextOrder,
	}
	s.nextOrder++
	return id, nil
}

// RemoveTask unregisters a task and strips its id from every other task's
// dependency list, so removal never leaves a dangling edge.
func (s *Scheduler) RemoveTask(id TaskId) error {
	if _, ok := s.tasks[id]; !ok {
		return fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	delete(s.tasks, id)
	for _, t := range s.tasks {
		t.dependsOn = slices.DeleteFunc(t.dependsOn, func(dep TaskId) bool {
			return dep == id
		})
	}
	return nil
}

// AddDependency adds an edge making id wait for dep. Both ids must refer to
// registered tasks. Adding an edge that already exists is a no-op. The edit
// can introduce a cycle; Execute reports that.
func (s *Scheduler) AddDependency(id, dep TaskId) error {
	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	if _, ok := s.tasks[dep]; !ok {
		return fmt.Errorf("%w: %d", ErrTaskNotFound, dep)
	}
	if !slices.Contains(t.dependsOn, dep) {
		t.dependsOn = append(t.dependsOn, dep)
	}
	return nil
}

// Clear drops all tasks. Id assignment continues from where it left off.
func (s *Scheduler) Clear() {
	clear(s.tasks)
	s.lastOrder = nil
}

// HasTask reports whether id refers to a registered task.
func (s *Scheduler) HasTask(id TaskId) bool {
	_, ok := s.tasks[id]
	return ok
}

// TaskName returns the diagnostic name of a registered task.
func (s *Scheduler) TaskName(id TaskId) (string, error) {
	t, ok := s.tasks[id]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	return t.name, nil
}

// TaskCount returns the number of registered tasks.
func (s *Scheduler) TaskCount() int {
	return len(s.tasks)
}

// LastExecutionOrder returns the realized order of the most recent successful
// Execute call. The returned slice is owned by the scheduler; callers must not
// modify it.
func (s *Scheduler) LastExecutionOrder() []TaskId {
	return s.lastOrder
}

// Execute runs every task's callback synchronously in a dependency-consistent
// order. Among tasks whose prerequisites are all satisfied, the one with the
// lowest (phase, insertion order) runs first. The order is planned up front, so
// on ErrCycleDetected no callback has run.
func (s *Scheduler) Execute() error {
	order, err := s.plan()
	if err != nil {
		return err
	}

	for _, id := range order {
		// A callback may remove a later task mid-run; skip ids that are gone.
		t, ok := s.tasks[id]
		if !ok {
			continue
		}
		if t.work != nil {
			t.work()
		}
	}
	s.lastOrder = order
	return nil
}

// plan performs Kahn's algorithm with the (phase, insertion order) tie-break.
func (s *Scheduler) plan() ([]TaskId, error) {
	indegree := make(map[TaskId]int, len(s.tasks))
	// dependents[d] lists tasks that wait on d.
	dependents := make(map[TaskId][]TaskId, len(s.tasks))
	for id, t := range s.tasks {
		indegree[id] = len(t.dependsOn)
		for _, dep := range t.dependsOn {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var ready []*task
	for id, t := range s.tasks {
		if indegree[id] == 0 {
			ready = append(ready, t)
		}
	}

	order := make([]TaskId, 0, len(s.tasks))
	for len(ready) > 0 {
		// The ready set is small every frame; a linear scan beats keeping a
		// heap coherent and keeps the tie-break obvious.
		best := 0
		for i := 1; i < len(ready); i++ {
			if readyBefore(ready[i], ready[best]) {
				best = i
			}
		}
		next := ready[best]
		ready[best] = ready[len(ready)-1]
		ready = ready[:len(ready)-1]

		order = append(order, next.id)
		for _, dep := range dependents[next.id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, s.tasks[dep])
			}
		}
	}

	if len(order) != len(s.tasks) {
		return nil, fmt.Errorf("%w: %d of %d tasks unschedulable", ErrCycleDetected, len(s.tasks)-len(order), len(s.tasks))
	}
	return order, nil
}

func readyBefore(a, b *task) bool {
	if a.phase != b.phase {
		return a.phase < b.phase
	}
	return a.order < b.order
}
