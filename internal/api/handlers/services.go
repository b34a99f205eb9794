package handlers

import (
	"context"
	"io"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/St1cky1/task-tracker/internal/usecase"
)

// Интерфейсы сервисов, которые используют хендлеры (реализации в usecase)

type AuthUsecase interface {
	Login(ctx context.Context, employeeID int, password string) (*entity.LoginResponse, error)
	ChangePassword(ctx context.Context, employeeID int, currentPassword, newPassword string) error
	RequestReset(ctx context.Context, employeeID int) (string, error)
	ConfirmReset(ctx context.Context, token, newPassword string) error
}

type UserUsecase interface {
	CreateUser(ctx context.Context, actorID int, req *entity.CreateUserRequest) (*entity.User, error)
	GetUser(ctx context.Context, actorID, employeeID int) (*entity.User, error)
	ListUsers(ctx context.Context, actorID int) ([]entity.User, error)
	UpdateUser(ctx context.Context, actorID, employeeID int, req *entity.UpdateUserRequest) (*entity.User, error)
	DeleteUser(ctx context.Context, actorID, employeeID int) error
}

type EmployeeUsecase interface {
	CreateEmployee(ctx context.Context, actorID int, req *entity.CreateEmployeeRequest) (*entity.Employee, error)
	GetEmployee(ctx context.Context, actorID, id int) (*entity.Employee, error)
	ListEmployees(ctx context.Context, actorID int) ([]entity.Employee, error)
	ListReports(ctx context.Context, managerID int) ([]entity.Employee, error)
	UpdateEmployee(ctx context.Context, actorID, id int, req *entity.UpdateEmployeeRequest) (*entity.Employee, error)
	DeleteEmployee(ctx context.Context, actorID, id int) error
	UploadProfilePicture(ctx context.Context, actorID, id int, file *entity.Attachment) (*entity.ProfilePicture, error)
	GetProfilePicture(ctx context.Context, id int) (*entity.StoredFile, io.ReadCloser, error)
}

type TaskUsecase interface {
	CreateTask(ctx context.Context, actor entity.Actor, req *entity.CreateTaskRequest) (*entity.Task, error)
	GetTask(ctx context.Context, actor entity.Actor, taskID int) (*entity.Task, error)
	ListTasks(ctx context.Context, actor entity.Actor, opts usecase.ListTasksOptions) ([]entity.Task, error)
	UpdateTask(ctx context.Context, actor entity.Actor, taskID int, req *entity.UpdateTaskRequest) (*entity.Task, error)
	AssignTask(ctx context.Context, actor entity.Actor, taskID int, req *entity.AssignTaskRequest) (*entity.Task, error)
	DeleteTask(ctx context.Context, actor entity.Actor, taskID int) error
}

type RemarkUsecase interface {
	AddRemark(ctx context.Context, actor entity.Actor, req *entity.CreateRemarkRequest, file *entity.Attachment) (*entity.Remark, error)
	ListRemarks(ctx context.Context, actor entity.Actor, taskID int) ([]entity.Remark, error)
	UpdateRemark(ctx context.Context, actor entity.Actor, id string, req *entity.UpdateRemarkRequest, file *entity.Attachment) (*entity.Remark, error)
	DeleteRemark(ctx context.Context, actor entity.Actor, id string) error
	OpenFile(ctx context.Context, actor entity.Actor, fileID string) (*entity.StoredFile, io.ReadCloser, error)
}

var (
	_ AuthUsecase     = (*usecase.AuthService)(nil)
	_ UserUsecase     = (*usecase.UserService)(nil)
	_ EmployeeUsecase = (*usecase.EmployeeService)(nil)
	_ TaskUsecase     = (*usecase.TaskService)(nil)
	_ RemarkUsecase   = (*usecase.RemarkService)(nil)
)
