package entity

import "time"

type Employee struct {
	ID          int        `json:"e_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Designation string     `json:"designation"`
	ManagerID   *int       `json:"mgr_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// валидация
type CreateEmployeeRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Email       string `json:"email" validate:"required,email,max=150"`
	Designation string `json:"designation" validate:"required,min=1,max=100"`
	ManagerID   *int   `json:"mgr_id" validate:"omitempty,min=0"`
}

// UpdateEmployeeRequest - частичное обновление, nil означает "не менять"
type UpdateEmployeeRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email       *string `json:"email" validate:"omitempty,email,max=150"`
	Designation *string `json:"designation" validate:"omitempty,min=1,max=100"`
	ManagerID   *int    `json:"mgr_id" validate:"omitempty,min=0"`
}

// ProfilePicture - ссылка на файл аватарки сотрудника в файловом хранилище
type ProfilePicture struct {
	ID          int       `json:"id"`
	EmployeeID  int       `json:"e_id"`
	FileID      string    `json:"file_id"`
	FileSize    int       `json:"file_size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
