package handlers

import (
	"net/http"
	"strings"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/St1cky1/task-tracker/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type TaskHandler struct {
	taskService TaskUsecase
}

func NewTaskHandler(taskService TaskUsecase) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// создаем новую задачу
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), actorFrom(r), &req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathInt(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	task, err := h.taskService.GetTask(r.Context(), actorFrom(r), taskID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// ListTasks - ?scope=mine для менеджера, ?status= фильтр по статусу
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	opts := usecase.ListTasksOptions{
		MineOnly: r.URL.Query().Get("scope") == "mine",
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := entity.TaskStatus(strings.ToUpper(status))
		opts.Status = &s
	}
	h.listTasks(w, r, opts)
}

// ListTasksByStatus - GET /tasks/status/{status}
func (h *TaskHandler) ListTasksByStatus(w http.ResponseWriter, r *http.Request) {
	s := entity.TaskStatus(strings.ToUpper(chi.URLParam(r, "status")))
	h.listTasks(w, r, usecase.ListTasksOptions{Status: &s})
}

func (h *TaskHandler) listTasks(w http.ResponseWriter, r *http.Request, opts usecase.ListTasksOptions) {
	tasks, err := h.taskService.ListTasks(r.Context(), actorFrom(r), opts)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []entity.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// UpdateTask - PATCH: поля задачи или смена статуса (с необязательным remark)
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathInt(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var req entity.UpdateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), actorFrom(r), taskID, &req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) AssignTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathInt(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var req entity.AssignTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	task, err := h.taskService.AssignTask(r.Context(), actorFrom(r), taskID, &req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathInt(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), actorFrom(r), taskID); err != nil {
		WriteError(w, r, err)
		return
	}
	writeMessage(w, "Task deleted successfully")
}
