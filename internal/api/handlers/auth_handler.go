package handlers

import (
	"net/http"
	"strconv"

	"github.com/St1cky1/task-tracker/internal/entity"
)

type AuthHandler struct {
	authService AuthUsecase
}

func NewAuthHandler(authService AuthUsecase) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login принимает e_id и password либо JSON телом, либо query параметрами
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entity.LoginRequest

	query := r.URL.Query()
	if query.Has("e_id") {
		id, err := strconv.Atoi(query.Get("e_id"))
		if err != nil {
			WriteError(w, r, entity.NewValidationError("invalid e_id"))
			return
		}
		req.EmployeeID = id
		req.Password = query.Get("password")
		if err := validateStruct(&req); err != nil {
			WriteError(w, r, err)
			return
		}
	} else if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	resp, err := h.authService.Login(r.Context(), req.EmployeeID, req.Password)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req entity.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	actor := actorFrom(r)
	if err := h.authService.ChangePassword(r.Context(), actor.ID, req.CurrentPassword, req.NewPassword); err != nil {
		WriteError(w, r, err)
		return
	}
	writeMessage(w, "Password changed successfully")
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req entity.ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	token, err := h.authService.RequestReset(r.Context(), req.EmployeeID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entity.ForgotPasswordResponse{
		Message:    "Password reset token generated",
		ResetToken: token,
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req entity.ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.authService.ConfirmReset(r.Context(), req.ResetToken, req.NewPassword); err != nil {
		WriteError(w, r, err)
		return
	}
	writeMessage(w, "Password reset successfully")
}
