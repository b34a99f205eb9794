package api

import (
	"bytes"
	"context"
	"io"

	"github.com/St1cky1/task-tracker/internal/api/handlers"
	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/St1cky1/task-tracker/internal/usecase"
)

type mockAuth struct {
	LoginFunc          func(ctx context.Context, employeeID int, password string) (*entity.LoginResponse, error)
	ChangePasswordFunc func(ctx context.Context, employeeID int, currentPassword, newPassword string) error
}

var _ handlers.AuthUsecase = (*mockAuth)(nil)

func (m *mockAuth) Login(ctx context.Context, employeeID int, password string) (*entity.LoginResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, employeeID, password)
	}
	return nil, entity.ErrInvalidCredentials
}

func (m *mockAuth) ChangePassword(ctx context.Context, employeeID int, currentPassword, newPassword string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, employeeID, currentPassword, newPassword)
	}
	return nil
}

func (m *mockAuth) RequestReset(ctx context.Context, employeeID int) (string, error) {
	return "reset-token", nil
}

func (m *mockAuth) ConfirmReset(ctx context.Context, token, newPassword string) error {
	if token != "reset-token" {
		return entity.ErrInvalidResetToken
	}
	return nil
}

type mockUsers struct{}

var _ handlers.UserUsecase = (*mockUsers)(nil)

func (m *mockUsers) CreateUser(ctx context.Context, actorID int, req *entity.CreateUserRequest) (*entity.User, error) {
	return &entity.User{EmployeeID: req.EmployeeID, Role: req.Role, Status: entity.UserStatusActive}, nil
}

func (m *mockUsers) GetUser(ctx context.Context, actorID, employeeID int) (*entity.User, error) {
	return nil, entity.ErrUserNotFound
}

func (m *mockUsers) ListUsers(ctx context.Context, actorID int) ([]entity.User, error) {
	return []entity.User{}, nil
}

func (m *mockUsers) UpdateUser(ctx context.Context, actorID, employeeID int, req *entity.UpdateUserRequest) (*entity.User, error) {
	return &entity.User{EmployeeID: employeeID}, nil
}

func (m *mockUsers) DeleteUser(ctx context.Context, actorID, employeeID int) error {
	return nil
}

type mockEmployees struct {
	ListReportsFunc func(ctx context.Context, managerID int) ([]entity.Employee, error)
}

var _ handlers.EmployeeUsecase = (*mockEmployees)(nil)

func (m *mockEmployees) CreateEmployee(ctx context.Context, actorID int, req *entity.CreateEmployeeRequest) (*entity.Employee, error) {
	return &entity.Employee{ID: 10, Name: req.Name, Email: req.Email}, nil
}

func (m *mockEmployees) GetEmployee(ctx context.Context, actorID, id int) (*entity.Employee, error) {
	return &entity.Employee{ID: id}, nil
}

func (m *mockEmployees) ListEmployees(ctx context.Context, actorID int) ([]entity.Employee, error) {
	return []entity.Employee{}, nil
}

func (m *mockEmployees) ListReports(ctx context.Context, managerID int) ([]entity.Employee, error) {
	if m.ListReportsFunc != nil {
		return m.ListReportsFunc(ctx, managerID)
	}
	return []entity.Employee{}, nil
}

func (m *mockEmployees) UpdateEmployee(ctx context.Context, actorID, id int, req *entity.UpdateEmployeeRequest) (*entity.Employee, error) {
	return &entity.Employee{ID: id}, nil
}

func (m *mockEmployees) DeleteEmployee(ctx context.Context, actorID, id int) error {
	return nil
}

func (m *mockEmployees) UploadProfilePicture(ctx context.Context, actorID, id int, file *entity.Attachment) (*entity.ProfilePicture, error) {
	return &entity.ProfilePicture{EmployeeID: id, FileID: "pic", FileSize: len(file.Data), ContentType: file.ContentType}, nil
}

func (m *mockEmployees) GetProfilePicture(ctx context.Context, id int) (*entity.StoredFile, io.ReadCloser, error) {
	return nil, nil, entity.ErrFileNotFound
}

type mockTasks struct {
	ListTasksFunc  func(ctx context.Context, actor entity.Actor, opts usecase.ListTasksOptions) ([]entity.Task, error)
	UpdateTaskFunc func(ctx context.Context, actor entity.Actor, taskID int, req *entity.UpdateTaskRequest) (*entity.Task, error)
}

var _ handlers.TaskUsecase = (*mockTasks)(nil)

func (m *mockTasks) CreateTask(ctx context.Context, actor entity.Actor, req *entity.CreateTaskRequest) (*entity.Task, error) {
	return &entity.Task{ID: 1, Title: req.Title, CreatedBy: actor.ID, Status: entity.StatusToDo}, nil
}

func (m *mockTasks) GetTask(ctx context.Context, actor entity.Actor, taskID int) (*entity.Task, error) {
	if taskID == 404 {
		return nil, entity.ErrTaskNotFound
	}
	return &entity.Task{ID: taskID}, nil
}

func (m *mockTasks) ListTasks(ctx context.Context, actor entity.Actor, opts usecase.ListTasksOptions) ([]entity.Task, error) {
	if m.ListTasksFunc != nil {
		return m.ListTasksFunc(ctx, actor, opts)
	}
	return nil, nil
}

func (m *mockTasks) UpdateTask(ctx context.Context, actor entity.Actor, taskID int, req *entity.UpdateTaskRequest) (*entity.Task, error) {
	if m.UpdateTaskFunc != nil {
		return m.UpdateTaskFunc(ctx, actor, taskID, req)
	}
	return &entity.Task{ID: taskID}, nil
}

func (m *mockTasks) AssignTask(ctx context.Context, actor entity.Actor, taskID int, req *entity.AssignTaskRequest) (*entity.Task, error) {
	return &entity.Task{ID: taskID, AssignedTo: &req.AssignedTo}, nil
}

func (m *mockTasks) DeleteTask(ctx context.Context, actor entity.Actor, taskID int) error {
	return nil
}

type mockRemarks struct {
	AddRemarkFunc func(ctx context.Context, actor entity.Actor, req *entity.CreateRemarkRequest, file *entity.Attachment) (*entity.Remark, error)
	files         map[string][]byte
}

var _ handlers.RemarkUsecase = (*mockRemarks)(nil)

func (m *mockRemarks) AddRemark(ctx context.Context, actor entity.Actor, req *entity.CreateRemarkRequest, file *entity.Attachment) (*entity.Remark, error) {
	if m.AddRemarkFunc != nil {
		return m.AddRemarkFunc(ctx, actor, req, file)
	}
	return &entity.Remark{ID: "r1", TaskID: req.TaskID, Comment: req.Comment, CommentedBy: actor.ID}, nil
}

func (m *mockRemarks) ListRemarks(ctx context.Context, actor entity.Actor, taskID int) ([]entity.Remark, error) {
	return nil, nil
}

func (m *mockRemarks) UpdateRemark(ctx context.Context, actor entity.Actor, id string, req *entity.UpdateRemarkRequest, file *entity.Attachment) (*entity.Remark, error) {
	return &entity.Remark{ID: id}, nil
}

func (m *mockRemarks) DeleteRemark(ctx context.Context, actor entity.Actor, id string) error {
	return nil
}

func (m *mockRemarks) OpenFile(ctx context.Context, actor entity.Actor, fileID string) (*entity.StoredFile, io.ReadCloser, error) {
	data, ok := m.files[fileID]
	if !ok {
		return nil, nil, entity.ErrFileNotFound
	}
	meta := &entity.StoredFile{ID: fileID, FileName: "report.txt", ContentType: "text/plain", Size: int64(len(data))}
	return meta, io.NopCloser(bytes.NewReader(data)), nil
}

type stubHealth struct {
	err error
}

func (s stubHealth) HealthCheck(ctx context.Context) error {
	return s.err
}
