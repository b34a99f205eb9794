package usecase

import (
	"strings"

	"github.com/St1cky1/task-tracker/internal/entity"
)

type transition struct {
	from, to entity.TaskStatus
}

// Разрешённые переходы по ролям. DONE - конечное состояние.
var (
	developerTransitions = map[transition]bool{
		{entity.StatusToDo, entity.StatusInProgress}:   true,
		{entity.StatusInProgress, entity.StatusReview}: true,
	}
	managerTransitions = map[transition]bool{
		{entity.StatusReview, entity.StatusDone}:       true,
		{entity.StatusReview, entity.StatusInProgress}: true,
	}
)

// CheckTransition решает, может ли actor перевести задачу в статус to.
// Сначала проверяется роль (исполнитель или ревьюер), затем сам переход.
// Возврат из REVIEW в IN_PROGRESS требует непустого замечания.
func CheckTransition(actor entity.Actor, task *entity.Task, to entity.TaskStatus, remark *string) error {
	if !to.Valid() {
		return entity.ErrInvalidTaskStatus
	}
	step := transition{from: task.Status, to: to}

	switch actor.Role {
	case entity.RoleDeveloper:
		if !task.IsAssignee(actor.ID) {
			return entity.ErrNotAssignee
		}
		if !developerTransitions[step] {
			return entity.ErrInvalidTransition
		}
		return nil

	case entity.RoleManager:
		if !task.IsReviewer(actor.ID) {
			return entity.ErrNotReviewer
		}
		if !managerTransitions[step] {
			return entity.ErrInvalidTransition
		}
		if step.to == entity.StatusInProgress && isBlank(remark) {
			return entity.ErrRemarkRequired
		}
		return nil

	default:
		return entity.ErrForbidden
	}
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
