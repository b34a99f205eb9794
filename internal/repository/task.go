package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

const taskColumns = `t_id, title, description, created_by, assigned_to, assigned_by, assigned_at, reviewer,
	priority, status, expected_closure, actual_closure, updated_by, updated_at, created_at`

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	var t entity.Task
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.CreatedBy,
		&t.AssignedTo,
		&t.AssignedBy,
		&t.AssignedAt,
		&t.Reviewer,
		&t.Priority,
		&t.Status,
		&t.ExpectedClosure,
		&t.ActualClosure,
		&t.UpdatedBy,
		&t.UpdatedAt,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	query := `
	INSERT INTO tasks (title, description, created_by, assigned_to, assigned_by, assigned_at, reviewer,
	                   priority, status, expected_closure)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING ` + taskColumns

	status := task.Status
	if status == "" {
		status = entity.StatusToDo
	}

	created, err := scanTask(r.db.QueryRow(ctx, query,
		task.Title,
		task.Description,
		task.CreatedBy,
		task.AssignedTo,
		task.AssignedBy,
		task.AssignedAt,
		task.Reviewer,
		task.Priority,
		status,
		task.ExpectedClosure,
	))
	if err != nil {
		return nil, errors.Wrap(err, "insert task")
	}

	return created, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int) (*entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE t_id = $1`

	task, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get task %d", id)
	}

	return task, nil
}

// List - список задач с фильтрацией
func (r *TaskRepository) List(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error) {
	var conditions []string
	var args []interface{}

	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		conditions = append(conditions, "assigned_to = $"+strconv.Itoa(len(args)))
	}
	if filter.CreatedOrReviewedBy != nil {
		args = append(args, *filter.CreatedOrReviewedBy)
		n := strconv.Itoa(len(args))
		conditions = append(conditions, "(created_by = $"+n+" OR reviewer = $"+n+")")
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY t_id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list tasks")
	}
	defer rows.Close()

	tasks := []entity.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan task")
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

// Update - обновление полей задачи (без статуса)
func (r *TaskRepository) Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.Task, error) {
	if len(updates) == 0 {
		return nil, entity.ErrNoFieldsToUpdate
	}
	setClause, args := buildSetClause(updates)

	query := `
	UPDATE tasks
	SET ` + setClause + `
	WHERE t_id = $` + strconv.Itoa(len(args)+1) + `
	RETURNING ` + taskColumns
	args = append(args, id)

	task, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "update task %d", id)
	}

	return task, nil
}

// UpdateStatus - переход статуса, условный по текущему статусу
func (r *TaskRepository) UpdateStatus(
	ctx context.Context,
	id int,
	from, to entity.TaskStatus,
	updatedBy int,
	at time.Time,
	actualClosure *time.Time,
) (*entity.Task, error) {
	query := `
	UPDATE tasks
	SET status = $1,
	    updated_by = $2,
	    updated_at = $3,
	    actual_closure = COALESCE($4, actual_closure)
	WHERE t_id = $5 AND status = $6
	RETURNING ` + taskColumns

	task, err := scanTask(r.db.QueryRow(ctx, query, to, updatedBy, at, actualClosure, id, from))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "update status of task %d", id)
	}

	return task, nil
}

// Delete - удаление задачи
func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM tasks WHERE t_id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return errors.Wrapf(err, "delete task %d", id)
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
