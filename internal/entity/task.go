package entity

import "time"

type TaskStatus string

const (
	StatusToDo       TaskStatus = "TO_DO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusReview     TaskStatus = "REVIEW"
	StatusDone       TaskStatus = "DONE"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// AllTaskStatuses - все статусы в порядке жизненного цикла
var AllTaskStatuses = []TaskStatus{StatusToDo, StatusInProgress, StatusReview, StatusDone}

type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

type Task struct {
	ID              int        `json:"t_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CreatedBy       int        `json:"created_by"`
	AssignedTo      *int       `json:"assigned_to"`
	AssignedBy      *int       `json:"assigned_by"`
	AssignedAt      *time.Time `json:"assigned_at"`
	Reviewer        *int       `json:"reviewer"`
	Priority        Priority   `json:"priority"`
	Status          TaskStatus `json:"status"`
	ExpectedClosure time.Time  `json:"expected_closure"`
	ActualClosure   *time.Time `json:"actual_closure"`
	UpdatedBy       *int       `json:"updated_by"`
	UpdatedAt       *time.Time `json:"updated_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// IsAssignee - является ли сотрудник исполнителем задачи
func (t *Task) IsAssignee(eID int) bool {
	return t.AssignedTo != nil && *t.AssignedTo == eID
}

// IsReviewer - является ли сотрудник ревьюером задачи
func (t *Task) IsReviewer(eID int) bool {
	return t.Reviewer != nil && *t.Reviewer == eID
}

// валидация
type CreateTaskRequest struct {
	Title           string    `json:"title" validate:"required,min=1,max=150"`
	Description     string    `json:"description" validate:"required"`
	Priority        Priority  `json:"priority" validate:"required,oneof=HIGH MEDIUM LOW"`
	ExpectedClosure time.Time `json:"expected_closure" validate:"required"`
	AssignedTo      *int      `json:"assigned_to" validate:"omitempty,min=1"`
	Reviewer        *int      `json:"reviewer" validate:"omitempty,min=1"`
	CreatedBy       *int      `json:"created_by" validate:"omitempty,min=1"`
}

// UpdateTaskRequest - PATCH задачи; status обрабатывается машиной состояний
type UpdateTaskRequest struct {
	Title           *string     `json:"title" validate:"omitempty,min=1,max=150"`
	Description     *string     `json:"description"`
	Priority        *Priority   `json:"priority" validate:"omitempty,oneof=HIGH MEDIUM LOW"`
	ExpectedClosure *time.Time  `json:"expected_closure"`
	AssignedTo      *int        `json:"assigned_to" validate:"omitempty,min=1"`
	Reviewer        *int        `json:"reviewer" validate:"omitempty,min=1"`
	Status          *TaskStatus `json:"status"`
	Remark          *string     `json:"remark"`
}

// HasFieldUpdates - есть ли в запросе изменения полей помимо статуса
func (r *UpdateTaskRequest) HasFieldUpdates() bool {
	return r.Title != nil || r.Description != nil || r.Priority != nil ||
		r.ExpectedClosure != nil || r.AssignedTo != nil || r.Reviewer != nil
}

type AssignTaskRequest struct {
	AssignedTo int  `json:"assigned_to" validate:"required,min=1"`
	Reviewer   *int `json:"reviewer" validate:"omitempty,min=1"`
}

// TaskFilter - фильтр для списка задач
type TaskFilter struct {
	AssignedTo *int
	// CreatedOrReviewedBy - задачи, созданные сотрудником или где он ревьюер
	CreatedOrReviewedBy *int
	Status              *TaskStatus
}
