package entity

import "time"

// User - учётная запись сотрудника, связана с Employee по e_id
type User struct {
	EmployeeID        int        `json:"e_id"`
	PasswordHash      string     `json:"-"` // Никогда не отправляем пароль
	Role              Role       `json:"role"`
	Status            UserStatus `json:"status"`
	PasswordChangedAt *time.Time `json:"password_changed_at"`
	ResetTokenHash    *string    `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// валидация
type CreateUserRequest struct {
	EmployeeID int    `json:"e_id" validate:"required,min=1"`
	Role       Role   `json:"role" validate:"required,oneof=ADMIN MANAGER DEVELOPER"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
}

type UpdateUserRequest struct {
	Role     *Role       `json:"role" validate:"omitempty,oneof=ADMIN MANAGER DEVELOPER"`
	Status   *UserStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	Password *string     `json:"password" validate:"omitempty,min=6,max=72"`
}

// Логин
type LoginRequest struct {
	EmployeeID int    `json:"e_id" validate:"required,min=1"`
	Password   string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	IsFirstLogin bool   `json:"is_first_login"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

type ForgotPasswordRequest struct {
	EmployeeID int `json:"e_id" validate:"required,min=1"`
}

type ForgotPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token"`
}

type ResetPasswordRequest struct {
	ResetToken  string `json:"reset_token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

// JWT Claims
type JWTClaims struct {
	EmployeeID int  `json:"e_id"`
	Role       Role `json:"role"`
}
