package workflow

import (
	"context"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/application/uow"
	"github.com/medrent/backend/internal/domain/identity"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/workflow"
	"go.uber.org/zap"
)

// TaskService handles tasks. Admins and managers see every task; other
// users only see and change the tasks assigned to them.
type TaskService struct {
	repos     uow.Repositories
	txScope   uow.TransactionScope
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(repos uow.Repositories, txScope uow.TransactionScope, publisher shared.EventPublisher, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{repos: repos, txScope: txScope, publisher: publisher, logger: logger}
}

// Create creates a task. A task assigned to someone else notifies the assignee.
func (s *TaskService) Create(ctx context.Context, actor identity.Actor, req CreateTaskRequest) (*TaskResponse, error) {
	assignee := actor.UserID
	if req.AssignedToID != nil && *req.AssignedToID != actor.UserID {
		if !actor.CanSeeAll() {
			return nil, shared.NewDomainError("FORBIDDEN", "Only managers can assign tasks to other users")
		}
		assignee = *req.AssignedToID
	}

	var task *workflow.Task
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.Users().FindByID(ctx, assignee); err != nil {
			return err
		}
		code, err := repos.Codes().Next(ctx, shared.CodeTask)
		if err != nil {
			return err
		}
		task, err = workflow.NewTask(code, req.Title, req.Description, workflow.TaskPriority(req.Priority), req.StartDate, req.EndDate, assignee)
		if err != nil {
			return err
		}
		task.DiagnosticID = req.DiagnosticID
		if err := repos.Tasks().Save(ctx, task); err != nil {
			return err
		}
		if assignee == actor.UserID {
			return nil
		}

		due := task.EndDate
		n, err := workflow.NewNotification(assignee, workflow.NotificationTaskAssigned, task.Title, task.Description, &due)
		if err != nil {
			return err
		}
		n.Metadata = shared.JSONMap{"task_code": task.TaskCode, "assigned_by": actor.UserID.String()}
		return repos.Notifications().Save(ctx, n.About(task.ID, "task"))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task created",
		zap.String("task_code", task.TaskCode),
		zap.String("assigned_to", assignee.String()))
	response := ToTaskResponse(task)
	return &response, nil
}

// GetByID returns a task the caller may see
func (s *TaskService) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*TaskResponse, error) {
	task, err := s.visibleTask(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	response := ToTaskResponse(task)
	return &response, nil
}

// visibleTask hides other users' tasks behind ErrNotFound
func (s *TaskService) visibleTask(ctx context.Context, actor identity.Actor, id uuid.UUID) (*workflow.Task, error) {
	task, err := s.repos.Tasks().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanSeeAll() && task.AssignedToID != actor.UserID {
		return nil, shared.ErrNotFound
	}
	return task, nil
}

// List retrieves the tasks visible to the caller
func (s *TaskService) List(ctx context.Context, actor identity.Actor, filter TaskListFilter) ([]TaskResponse, int64, error) {
	domainFilter := shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search).
		With("status", filter.Status).
		With("priority", filter.Priority).
		With("assigned_to_id", filter.AssignedToID)
	if filter.OrderBy == "" {
		domainFilter.OrderBy = ""
	}
	if !actor.CanSeeAll() {
		domainFilter = domainFilter.With("assigned_to_id", actor.UserID.String())
	}

	tasks, err := s.repos.Tasks().FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repos.Tasks().Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]TaskResponse, len(tasks))
	for i := range tasks {
		out[i] = ToTaskResponse(&tasks[i])
	}
	return out, total, nil
}

// Update applies a partial update. Completing the task publishes
// TaskCompleted once saved.
func (s *TaskService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateTaskRequest) (*TaskResponse, error) {
	task, err := s.visibleTask(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, shared.NewDomainError("INVALID_TITLE", "Task title is required")
		}
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		p := workflow.TaskPriority(*req.Priority)
		if !p.IsValid() {
			return nil, shared.NewDomainError("INVALID_PRIORITY", "Invalid task priority")
		}
		task.Priority = p
	}
	if req.StartDate != nil || req.EndDate != nil {
		start, end := task.StartDate, task.EndDate
		if req.StartDate != nil {
			start = *req.StartDate
		}
		if req.EndDate != nil {
			end = *req.EndDate
		}
		if err := task.Reschedule(start, end); err != nil {
			return nil, err
		}
	}
	if req.AssignedToID != nil && *req.AssignedToID != task.AssignedToID {
		if !actor.CanSeeAll() {
			return nil, shared.NewDomainError("FORBIDDEN", "Only managers can reassign tasks")
		}
		if _, err := s.repos.Users().FindByID(ctx, *req.AssignedToID); err != nil {
			return nil, err
		}
		task.AssignedToID = *req.AssignedToID
	}
	if req.Status != nil {
		if err := task.SetStatus(workflow.TaskStatus(*req.Status), actor.UserID); err != nil {
			return nil, err
		}
	}

	if err := s.repos.Tasks().Save(ctx, task); err != nil {
		return nil, err
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, task.GetDomainEvents()...); err != nil {
			s.logger.Warn("failed to publish task events", zap.String("task_code", task.TaskCode), zap.Error(err))
		}
	}
	task.ClearDomainEvents()

	response := ToTaskResponse(task)
	return &response, nil
}

// Delete removes a task
func (s *TaskService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if _, err := s.visibleTask(ctx, actor, id); err != nil {
		return err
	}
	return s.repos.Tasks().Delete(ctx, id)
}
