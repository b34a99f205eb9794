package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/St1cky1/task-tracker/internal/log"
	"github.com/St1cky1/task-tracker/internal/metrics"
	"github.com/St1cky1/task-tracker/internal/repository"
	"github.com/jackc/pgx/v5"
)

// ListTasksOptions - параметры списка задач
type ListTasksOptions struct {
	// MineOnly - для MANAGER только созданные им задачи или где он ревьюер
	MineOnly bool
	Status   *entity.TaskStatus
}

type TaskService struct {
	taskRepo     repository.ITaskRepository
	employeeRepo repository.IEmployeeRepository
	remarkRepo   repository.IRemarkRepository
	audit        *AuditRecorder
	now          func() time.Time
}

func NewTaskService(
	taskRepo repository.ITaskRepository,
	employeeRepo repository.IEmployeeRepository,
	remarkRepo repository.IRemarkRepository,
	audit *AuditRecorder,
) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		employeeRepo: employeeRepo,
		remarkRepo:   remarkRepo,
		audit:        audit,
		now:          time.Now,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, actor entity.Actor, req *entity.CreateTaskRequest) (*entity.Task, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		return nil, entity.NewValidationError("title and description are required")
	}
	if !req.Priority.Valid() {
		return nil, entity.NewValidationError("priority must be one of HIGH, MEDIUM, LOW")
	}
	if req.ExpectedClosure.IsZero() {
		return nil, entity.NewValidationError("expected_closure is required")
	}

	// Владелец по умолчанию - вызывающий
	createdBy := actor.ID
	if req.CreatedBy != nil {
		if err := s.ensureEmployee(ctx, *req.CreatedBy, entity.ErrCreatorNotFound); err != nil {
			return nil, err
		}
		createdBy = *req.CreatedBy
	}

	task := &entity.Task{
		Title:           title,
		Description:     description,
		CreatedBy:       createdBy,
		Priority:        req.Priority,
		Status:          entity.StatusToDo,
		ExpectedClosure: req.ExpectedClosure,
	}

	if req.AssignedTo != nil {
		if err := s.ensureEmployee(ctx, *req.AssignedTo, entity.ErrAssigneeNotFound); err != nil {
			return nil, err
		}
		now := s.now().UTC()
		task.AssignedTo = req.AssignedTo
		task.AssignedBy = &actor.ID
		task.AssignedAt = &now
	}

	if req.Reviewer != nil {
		if err := s.ensureEmployee(ctx, *req.Reviewer, entity.ErrReviewerNotFound); err != nil {
			return nil, err
		}
		task.Reviewer = req.Reviewer
	}

	created, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, entity.ActionCreateTask, entity.EntityTask, created.ID, actor.ID)
	return created, nil
}

func (s *TaskService) GetTask(ctx context.Context, actor entity.Actor, taskID int) (*entity.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, entity.ErrTaskNotFound
	}

	s.audit.Record(ctx, entity.ActionGetTask, entity.EntityTask, taskID, actor.ID)
	return task, nil
}

// ListTasks - ADMIN видит все, MANAGER все (или свои с MineOnly), DEVELOPER только назначенные ему
func (s *TaskService) ListTasks(ctx context.Context, actor entity.Actor, opts ListTasksOptions) ([]entity.Task, error) {
	filter := entity.TaskFilter{}

	if opts.Status != nil {
		if !opts.Status.Valid() {
			return nil, entity.ErrInvalidTaskStatus
		}
		filter.Status = opts.Status
	}

	switch actor.Role {
	case entity.RoleAdmin:
	case entity.RoleManager:
		if opts.MineOnly {
			filter.CreatedOrReviewedBy = &actor.ID
		}
	case entity.RoleDeveloper:
		filter.AssignedTo = &actor.ID
	default:
		return nil, entity.ErrForbidden
	}

	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, entity.ActionListTasks, entity.EntityTask, 0, actor.ID)
	return tasks, nil
}

// UpdateTask - PATCH: либо смена статуса через машину состояний, либо правка полей
func (s *TaskService) UpdateTask(ctx context.Context, actor entity.Actor, taskID int, req *entity.UpdateTaskRequest) (*entity.Task, error) {
	if req.Status != nil {
		if req.HasFieldUpdates() {
			return nil, entity.NewValidationError("status cannot be changed together with other fields")
		}
		return s.UpdateStatus(ctx, actor, taskID, *req.Status, req.Remark)
	}

	if actor.Role != entity.RoleAdmin && actor.Role != entity.RoleManager {
		return nil, entity.ErrForbidden
	}

	existing, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, entity.ErrTaskNotFound
	}

	now := s.now().UTC()
	updates := make(map[string]interface{})

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, entity.NewValidationError("title must not be empty")
		}
		updates["title"] = title
	}

	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, entity.NewValidationError("description must not be empty")
		}
		updates["description"] = description
	}

	if req.Priority != nil {
		if !req.Priority.Valid() {
			return nil, entity.NewValidationError("priority must be one of HIGH, MEDIUM, LOW")
		}
		updates["priority"] = *req.Priority
	}

	if req.ExpectedClosure != nil {
		updates["expected_closure"] = *req.ExpectedClosure
	}

	if req.AssignedTo != nil {
		if err := s.ensureEmployee(ctx, *req.AssignedTo, entity.ErrAssigneeNotFound); err != nil {
			return nil, err
		}
		updates["assigned_to"] = *req.AssignedTo
		updates["assigned_by"] = actor.ID
		updates["assigned_at"] = now
	}

	if req.Reviewer != nil {
		if err := s.ensureEmployee(ctx, *req.Reviewer, entity.ErrReviewerNotFound); err != nil {
			return nil, err
		}
		updates["reviewer"] = *req.Reviewer
	}

	if len(updates) == 0 {
		return nil, entity.ErrNoFieldsToUpdate
	}
	updates["updated_by"] = actor.ID
	updates["updated_at"] = now

	task, err := s.taskRepo.Update(ctx, taskID, updates)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, entity.ErrTaskNotFound
	}

	s.audit.Record(ctx, entity.ActionPatchTask, entity.EntityTask, taskID, actor.ID)
	return task, nil
}

// UpdateStatus - переход по машине состояний. Замечание сохраняется до смены статуса,
// сама смена - условный UPDATE по текущему статусу.
func (s *TaskService) UpdateStatus(ctx context.Context, actor entity.Actor, taskID int, to entity.TaskStatus, remark *string) (*entity.Task, error) {
	if !to.Valid() {
		return nil, entity.ErrInvalidTaskStatus
	}

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, entity.ErrTaskNotFound
	}

	if err := CheckTransition(actor, task, to, remark); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	from := task.Status

	var saved *entity.Remark
	if !isBlank(remark) {
		saved, err = s.remarkRepo.Create(ctx, &entity.Remark{
			TaskID:      taskID,
			Comment:     strings.TrimSpace(*remark),
			CommentedBy: actor.ID,
			CreatedAt:   now,
		})
		if err != nil {
			return nil, err
		}
	}

	var actualClosure *time.Time
	if to == entity.StatusDone {
		actualClosure = &now
	}

	updated, err := s.taskRepo.UpdateStatus(ctx, taskID, from, to, actor.ID, now, actualClosure)
	if err != nil {
		s.discardRemark(ctx, saved)
		return nil, err
	}
	if updated == nil {
		log.GetLogger().WithField("t_id", taskID).Warnf("status changed concurrently, %s -> %s rejected", from, to)
		s.discardRemark(ctx, saved)
		return nil, entity.ErrStatusConflict
	}

	metrics.TaskTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
	s.audit.Record(ctx, entity.ActionChangeTaskStatus, entity.EntityTask, taskID, actor.ID)
	return updated, nil
}

// discardRemark убирает замечание, если переход, к которому оно относилось, не состоялся
func (s *TaskService) discardRemark(ctx context.Context, remark *entity.Remark) {
	if remark == nil || remark.ID == "" {
		return
	}
	if err := s.remarkRepo.Delete(ctx, remark.ID); err != nil {
		log.GetLogger().WithError(err).WithField("remark_id", remark.ID).Warn("failed to discard remark of rejected transition")
	}
}

// AssignTask назначает исполнителя (и, опционально, ревьюера)
func (s *TaskService) AssignTask(ctx context.Context, actor entity.Actor, taskID int, req *entity.AssignTaskRequest) (*entity.Task, error) {
	existing, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, entity.ErrTaskNotFound
	}

	if err := s.ensureEmployee(ctx, req.AssignedTo, entity.ErrAssigneeNotFound); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	updates := map[string]interface{}{
		"assigned_to": req.AssignedTo,
		"assigned_by": actor.ID,
		"assigned_at": now,
		"updated_by":  actor.ID,
		"updated_at":  now,
	}

	if req.Reviewer != nil {
		if err := s.ensureEmployee(ctx, *req.Reviewer, entity.ErrReviewerNotFound); err != nil {
			return nil, err
		}
		updates["reviewer"] = *req.Reviewer
	}

	task, err := s.taskRepo.Update(ctx, taskID, updates)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, entity.ErrTaskNotFound
	}

	s.audit.Record(ctx, entity.ActionAssignTask, entity.EntityTask, taskID, actor.ID)
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, actor entity.Actor, taskID int) error {
	existing, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if existing == nil {
		return entity.ErrTaskNotFound
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.ErrTaskNotFound
		}
		return err
	}

	s.audit.Record(ctx, entity.ActionDeleteTask, entity.EntityTask, taskID, actor.ID)
	return nil
}

func (s *TaskService) ensureEmployee(ctx context.Context, id int, notFound error) error {
	employee, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if employee == nil {
		return notFound
	}
	return nil
}
