package handlers

import (
	"net/http"

	"github.com/St1cky1/task-tracker/internal/entity"
)

type UserHandler struct {
	userService UserUsecase
}

func NewUserHandler(userService UserUsecase) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	user, err := h.userService.CreateUser(r.Context(), actorFrom(r).ID, &req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context(), actorFrom(r).ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	user, err := h.userService.GetUser(r.Context(), actorFrom(r).ID, id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var req entity.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), actorFrom(r).ID, id, &req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.userService.DeleteUser(r.Context(), actorFrom(r).ID, id); err != nil {
		WriteError(w, r, err)
		return
	}
	writeMessage(w, "User deleted successfully")
}
