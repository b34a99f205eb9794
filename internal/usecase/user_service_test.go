package usecase

import (
	"context"
	"testing"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/St1cky1/task-tracker/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService() (*UserService, *memUserRepository, *auth.PasswordManager, *MockAuditLogRepository) {
	users := newMemUserRepository()
	employees := &MockEmployeeRepository{
		GetByIDFunc: employeesByID(entity.Employee{ID: 1}, entity.Employee{ID: 5}),
	}
	pm := auth.NewPasswordManagerWithCost(bcrypt.MinCost)
	audit := &MockAuditLogRepository{}
	return NewUserService(users, employees, pm, NewAuditRecorder(nil, audit)), users, pm, audit
}

func TestCreateUser(t *testing.T) {
	svc, users, pm, audit := newTestUserService()
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, 1, &entity.CreateUserRequest{EmployeeID: 5, Role: entity.RoleManager, Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleManager, user.Role)
	assert.Equal(t, entity.UserStatusActive, user.Status)
	assert.Nil(t, user.PasswordChangedAt)

	stored, err := users.GetByID(ctx, 5)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.True(t, pm.VerifyPassword(stored.PasswordHash, "secret1"))

	_, err = svc.CreateUser(ctx, 1, &entity.CreateUserRequest{EmployeeID: 5, Role: entity.RoleManager, Password: "secret1"})
	assert.ErrorIs(t, err, entity.ErrUserExists)

	_, err = svc.CreateUser(ctx, 1, &entity.CreateUserRequest{EmployeeID: 77, Role: entity.RoleManager, Password: "secret1"})
	assert.ErrorIs(t, err, entity.ErrEmployeeNotFound)

	_, err = svc.CreateUser(ctx, 1, &entity.CreateUserRequest{EmployeeID: 1, Role: "ROOT", Password: "secret1"})
	assert.Equal(t, entity.KindValidation, entity.KindOf(err))

	assert.Equal(t, []string{entity.ActionCreateUser}, audit.Actions())
}

func TestUpdateAndDeleteUser(t *testing.T) {
	svc, _, pm, audit := newTestUserService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, 1, &entity.CreateUserRequest{EmployeeID: 5, Role: entity.RoleDeveloper, Password: "secret1"})
	require.NoError(t, err)

	role := entity.RoleManager
	status := entity.UserStatusInactive
	updated, err := svc.UpdateUser(ctx, 1, 5, &entity.UpdateUserRequest{Role: &role, Status: &status, Password: strPtr("secret2")})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleManager, updated.Role)
	assert.Equal(t, entity.UserStatusInactive, updated.Status)
	assert.True(t, pm.VerifyPassword(updated.PasswordHash, "secret2"))

	_, err = svc.UpdateUser(ctx, 1, 5, &entity.UpdateUserRequest{})
	assert.ErrorIs(t, err, entity.ErrNoFieldsToUpdate)

	_, err = svc.UpdateUser(ctx, 1, 42, &entity.UpdateUserRequest{Role: &role})
	assert.ErrorIs(t, err, entity.ErrUserNotFound)

	require.NoError(t, svc.DeleteUser(ctx, 1, 5))
	assert.ErrorIs(t, svc.DeleteUser(ctx, 1, 5), entity.ErrUserNotFound)

	_, err = svc.GetUser(ctx, 1, 5)
	assert.ErrorIs(t, err, entity.ErrUserNotFound)

	assert.Equal(t, []string{entity.ActionCreateUser, entity.ActionUpdateUser, entity.ActionDeleteUser}, audit.Actions())
}
