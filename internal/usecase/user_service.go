package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/St1cky1/task-tracker/internal/infrastructure/auth"
	"github.com/St1cky1/task-tracker/internal/repository"
	"github.com/jackc/pgx/v5"
)

// UserService - управление учётными записями (только ADMIN)
type UserService struct {
	userRepo        repository.IUserRepository
	employeeRepo    repository.IEmployeeRepository
	passwordManager *auth.PasswordManager
	audit           *AuditRecorder
}

func NewUserService(
	userRepo repository.IUserRepository,
	employeeRepo repository.IEmployeeRepository,
	passwordManager *auth.PasswordManager,
	audit *AuditRecorder,
) *UserService {
	return &UserService{
		userRepo:        userRepo,
		employeeRepo:    employeeRepo,
		passwordManager: passwordManager,
		audit:           audit,
	}
}

// CreateUser создает учётную запись для существующего сотрудника
func (s *UserService) CreateUser(ctx context.Context, actorID int, req *entity.CreateUserRequest) (*entity.User, error) {
	if !req.Role.Valid() {
		return nil, entity.NewValidationError(fmt.Sprintf("invalid role %q", req.Role))
	}

	employee, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, entity.ErrEmployeeNotFound
	}

	existing, err := s.userRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, entity.ErrUserExists
	}

	hash, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.Create(ctx, req.EmployeeID, hash, req.Role)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, entity.ActionCreateUser, entity.EntityUser, user.EmployeeID, actorID)
	return user, nil
}

// GetUser получает учётную запись по e_id
func (s *UserService) GetUser(ctx context.Context, actorID, employeeID int) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrUserNotFound
	}

	s.audit.Record(ctx, entity.ActionGetUser, entity.EntityUser, employeeID, actorID)
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, actorID int) ([]entity.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, entity.ActionGetAllUsers, entity.EntityUser, 0, actorID)
	return users, nil
}

// UpdateUser - роль, статус и/или пароль
func (s *UserService) UpdateUser(ctx context.Context, actorID, employeeID int, req *entity.UpdateUserRequest) (*entity.User, error) {
	existing, err := s.userRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, entity.ErrUserNotFound
	}

	updates := make(map[string]interface{})

	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, entity.NewValidationError(fmt.Sprintf("invalid role %q", *req.Role))
		}
		updates["role"] = *req.Role
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, entity.NewValidationError(fmt.Sprintf("invalid status %q", *req.Status))
		}
		updates["status"] = *req.Status
	}

	if req.Password != nil {
		hash, err := s.passwordManager.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}

	if len(updates) == 0 {
		return nil, entity.ErrNoFieldsToUpdate
	}

	user, err := s.userRepo.Update(ctx, employeeID, updates)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrUserNotFound
	}

	s.audit.Record(ctx, entity.ActionUpdateUser, entity.EntityUser, employeeID, actorID)
	return user, nil
}

// DeleteUser удаляет учётную запись; сотрудник остаётся
func (s *UserService) DeleteUser(ctx context.Context, actorID, employeeID int) error {
	existing, err := s.userRepo.GetByID(ctx, employeeID)
	if err != nil {
		return err
	}
	if existing == nil {
		return entity.ErrUserNotFound
	}

	if err := s.userRepo.Delete(ctx, employeeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.ErrUserNotFound
		}
		return err
	}

	s.audit.Record(ctx, entity.ActionDeleteUser, entity.EntityUser, employeeID, actorID)
	return nil
}
