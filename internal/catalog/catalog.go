// Package catalog maps tasks to implementations and implementations to the
// resources they consume.
package catalog

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/errors"
)

// Impl is one concrete realization of a task.
type Impl struct {
	ID        domain.TaskImplID  `json:"id" yaml:"id"`
	Task      domain.TaskID      `json:"task" yaml:"task"`
	Duration  domain.TimeValue   `json:"duration" yaml:"duration"`
	Cost      domain.Utility     `json:"cost" yaml:"cost"`
	Resources domain.ResourceMap `json:"resources,omitempty" yaml:"resources,omitempty"`
}

// Validate checks the implementation in isolation.
func (i Impl) Validate() error {
	if err := i.ID.Validate(); err != nil {
		return err
	}
	if i.Duration < 0 {
		return errors.NewProblemInvalidError(fmt.Sprintf("implementation %s has negative duration %d", i.ID, i.Duration))
	}
	for res, q := range i.Resources {
		if q < 0 {
			return errors.NewProblemInvalidError(fmt.Sprintf("implementation %s uses negative quantity %d of %s", i.ID, q, res))
		}
	}
	return nil
}

// TaskMap is an in-memory catalog.
type TaskMap struct {
	impls    map[domain.TaskImplID]Impl
	byTask   map[domain.TaskID][]domain.TaskImplID
	capacity map[domain.ResourceID]domain.ResourceValue
}

// New creates an empty catalog.
func New() *TaskMap {
	return &TaskMap{
		impls:    make(map[domain.TaskImplID]Impl),
		byTask:   make(map[domain.TaskID][]domain.TaskImplID),
		capacity: make(map[domain.ResourceID]domain.ResourceValue),
	}
}

// AddResource declares a resource and its capacity.
func (m *TaskMap) AddResource(id domain.ResourceID, capacity domain.ResourceValue) error {
	if err := id.Validate(); err != nil {
		return err
	}
	if capacity < 0 {
		return errors.NewProblemInvalidError(fmt.Sprintf("resource %s has negative capacity %d", id, capacity))
	}
	m.capacity[id] = capacity
	return nil
}

// AddImpl registers an implementation. Every resource it uses must be
// declared first.
func (m *TaskMap) AddImpl(impl Impl) error {
	if err := impl.Validate(); err != nil {
		return err
	}
	if _, dup := m.impls[impl.ID]; dup {
		return errors.NewProblemInvalidError(fmt.Sprintf("duplicate implementation %s", impl.ID))
	}
	for res := range impl.Resources {
		if _, ok := m.capacity[res]; !ok {
			return errors.NewUnknownResourceError(string(res))
		}
	}
	m.impls[impl.ID] = impl
	m.byTask[impl.Task] = append(m.byTask[impl.Task], impl.ID)
	sort.Slice(m.byTask[impl.Task], func(i, j int) bool { return m.byTask[impl.Task][i] < m.byTask[impl.Task][j] })
	return nil
}

// AllImpls returns the implementations of task in id order.
func (m *TaskMap) AllImpls(task domain.TaskID) []domain.TaskImplID {
	return append([]domain.TaskImplID(nil), m.byTask[task]...)
}

// Impl looks up an implementation.
func (m *TaskMap) Impl(id domain.TaskImplID) (Impl, error) {
	impl, ok := m.impls[id]
	if !ok {
		return Impl{}, errors.NewUnknownImplError(string(id))
	}
	return impl, nil
}

// ResourceUsage returns how much of res impl consumes; zero when unknown.
func (m *TaskMap) ResourceUsage(impl domain.TaskImplID, res domain.ResourceID) domain.ResourceValue {
	return m.impls[impl].Resources[res]
}

// AllResources returns a copy of the resource usage of impl.
func (m *TaskMap) AllResources(impl domain.TaskImplID) domain.ResourceMap {
	out := make(domain.ResourceMap, len(m.impls[impl].Resources))
	for res, q := range m.impls[impl].Resources {
		out[res] = q
	}
	return out
}

// Capacity returns the capacity of res; zero when unknown.
func (m *TaskMap) Capacity(res domain.ResourceID) domain.ResourceValue {
	return m.capacity[res]
}

// Duration returns the duration of impl; zero when unknown.
func (m *TaskMap) Duration(impl domain.TaskImplID) domain.TimeValue {
	return m.impls[impl].Duration
}

// Cost returns the execution cost of impl; zero when unknown.
func (m *TaskMap) Cost(impl domain.TaskImplID) domain.Utility {
	return m.impls[impl].Cost
}

// Resources returns every declared resource in id order.
func (m *TaskMap) Resources() []domain.ResourceID {
	caps := make(domain.ResourceMap, len(m.capacity))
	for id, c := range m.capacity {
		caps[id] = c
	}
	return caps.Sorted()
}

// Tasks returns every task with at least one implementation, in id order.
func (m *TaskMap) Tasks() []domain.TaskID {
	out := make([]domain.TaskID, 0, len(m.byTask))
	for t := range m.byTask {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
