package service

import (
	"context"

	"github.com/rahulmohankumar24/finch-demo/internal/events"
	"github.com/rahulmohankumar24/finch-demo/internal/matter"
)

// CreateTask adds a task to a matter.
func (s *Service) CreateTask(ctx context.Context, matterID, taskID, name string, deps []matter.Dependency) (matter.Task, error) {
	if err := s.Load(ctx); err != nil {
		return matter.Task{}, err
	}

	task, err := s.registry.CreateTask(matterID, taskID, name, deps)
	if err != nil {
		return matter.Task{}, err
	}
	if err := s.persist(ctx, matterID); err != nil {
		return matter.Task{}, err
	}

	s.logger.Info("task created", "matter", matterID, "task", taskID, "dependencies", len(task.Dependencies))
	s.publish(events.NewTaskEvent(events.EventTaskCreated, matterID, taskID, task))
	return task, nil
}

// AddDependency appends a dependency to a task.
func (s *Service) AddDependency(ctx context.Context, matterID, taskID string, dep matter.Dependency) (matter.Task, error) {
	if err := s.Load(ctx); err != nil {
		return matter.Task{}, err
	}

	task, err := s.registry.AddDependency(matterID, taskID, dep)
	if err != nil {
		return matter.Task{}, err
	}
	if err := s.persist(ctx, matterID); err != nil {
		return matter.Task{}, err
	}

	s.logger.Info("dependency added", "matter", matterID, "task", taskID, "target", dep.TargetTaskID, "kind", dep.Kind)
	s.publish(events.NewTaskEvent(events.EventDependencyAdded, matterID, taskID, dep))
	return task, nil
}

// ReplaceDependencies replaces a task's dependency list. Every target must
// exist.
func (s *Service) ReplaceDependencies(ctx context.Context, matterID, taskID string, deps []matter.Dependency) (matter.Task, error) {
	if err := s.Load(ctx); err != nil {
		return matter.Task{}, err
	}

	task, err := s.registry.ReplaceDependencies(matterID, taskID, deps)
	if err != nil {
		return matter.Task{}, err
	}
	if err := s.persist(ctx, matterID); err != nil {
		return matter.Task{}, err
	}

	s.logger.Info("dependencies updated", "matter", matterID, "task", taskID, "count", len(task.Dependencies))
	s.publish(events.NewTaskEvent(events.EventDependenciesUpdated, matterID, taskID, task.Dependencies))
	return task, nil
}

// InsertTaskAfter splices a new task after an existing one.
func (s *Service) InsertTaskAfter(ctx context.Context, matterID, newTaskID, newTaskName, afterTaskID string) (matter.InsertResult, error) {
	if err := s.Load(ctx); err != nil {
		return matter.InsertResult{}, err
	}

	res, err := s.registry.InsertTaskAfter(matterID, newTaskID, newTaskName, afterTaskID)
	if err != nil {
		return matter.InsertResult{}, err
	}
	if err := s.persist(ctx, matterID); err != nil {
		return matter.InsertResult{}, err
	}

	s.logger.Info("task inserted", "matter", matterID, "task", newTaskID, "after", afterTaskID, "rewired", res.RewiredCount)
	s.publish(events.NewTaskEvent(events.EventTaskInserted, matterID, newTaskID, res))
	return res, nil
}

// ExecuteTask attempts to complete a task. Only a completed transition is
// persisted and published; already-completed and not-ready outcomes change
// nothing.
func (s *Service) ExecuteTask(ctx context.Context, matterID, taskID string) (matter.ExecuteResult, error) {
	if err := s.Load(ctx); err != nil {
		return matter.ExecuteResult{}, err
	}

	res, err := s.registry.ExecuteTask(matterID, taskID)
	if err != nil {
		return matter.ExecuteResult{}, err
	}
	if !res.Executed {
		s.logger.Debug("task not executed", "matter", matterID, "task", taskID, "outcome", res.Outcome)
		return res, nil
	}
	if err := s.persist(ctx, matterID); err != nil {
		return matter.ExecuteResult{}, err
	}

	s.logger.Info("task completed", "matter", matterID, "task", taskID)
	s.publish(events.NewTaskEvent(events.EventTaskCompleted, matterID, taskID, res))
	return res, nil
}
