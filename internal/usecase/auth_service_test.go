package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/St1cky1/task-tracker/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	svc      *AuthService
	users    *memUserRepository
	pm       *auth.PasswordManager
	jwt      *auth.JWTManager
	throttle *fakeThrottle
	notifier *fakeNotifier
	audit    *MockAuditLogRepository
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	pm := auth.NewPasswordManagerWithCost(bcrypt.MinCost)
	jwtm, err := auth.NewJWTManager("test-secret", "HS256", time.Hour)
	require.NoError(t, err)

	users := newMemUserRepository()
	employees := &MockEmployeeRepository{
		GetByIDFunc: employeesByID(entity.Employee{ID: 7, Name: "Ann", Email: "ann@example.com"}),
	}
	throttle := newFakeThrottle(3)
	notifier := &fakeNotifier{}
	auditStore := &MockAuditLogRepository{}

	svc := NewAuthService(users, employees, pm, jwtm, throttle, notifier, NewAuditRecorder(nil, auditStore), time.Hour)

	return &authFixture{
		svc:      svc,
		users:    users,
		pm:       pm,
		jwt:      jwtm,
		throttle: throttle,
		notifier: notifier,
		audit:    auditStore,
	}
}

func (f *authFixture) addUser(t *testing.T, employeeID int, password string, role entity.Role) {
	t.Helper()
	hash, err := f.pm.HashPassword(password)
	require.NoError(t, err)
	_, err = f.users.Create(context.Background(), employeeID, hash, role)
	require.NoError(t, err)
}

func TestLoginIssuesTokenAndFirstLoginFlag(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, 7, "secret1", entity.RoleDeveloper)
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, 7, "secret1")
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.True(t, resp.IsFirstLogin)

	claims, err := f.jwt.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.EmployeeID)
	assert.Equal(t, entity.RoleDeveloper, claims.Role)

	require.NoError(t, f.svc.ChangePassword(ctx, 7, "secret1", "secret2"))

	resp, err = f.svc.Login(ctx, 7, "secret2")
	require.NoError(t, err)
	assert.False(t, resp.IsFirstLogin)

	_, err = f.svc.Login(ctx, 7, "secret1")
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)

	assert.Contains(t, f.audit.Actions(), entity.ActionChangePassword)
}

func TestLoginUnknownEmployeeLooksLikeWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, 7, "secret1", entity.RoleDeveloper)

	_, errUnknown := f.svc.Login(context.Background(), 404, "secret1")
	_, errWrong := f.svc.Login(context.Background(), 7, "nope")

	assert.ErrorIs(t, errUnknown, entity.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, entity.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestLoginInactiveAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, 7, "secret1", entity.RoleDeveloper)
	_, err := f.users.Update(context.Background(), 7, map[string]interface{}{"status": entity.UserStatusInactive})
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), 7, "secret1")
	assert.ErrorIs(t, err, entity.ErrAccountInactive)
}

func TestLoginThrottledAfterRepeatedFailures(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, 7, "secret1", entity.RoleDeveloper)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Login(ctx, 7, "wrong")
		require.ErrorIs(t, err, entity.ErrInvalidCredentials)
	}

	// даже правильный пароль отклоняется, пока окно не истекло
	_, err := f.svc.Login(ctx, 7, "secret1")
	assert.ErrorIs(t, err, entity.ErrTooManyAttempts)

	require.NoError(t, f.throttle.Reset(ctx, 7))
	_, err = f.svc.Login(ctx, 7, "secret1")
	require.NoError(t, err)
}

func TestLoginSuccessResetsFailures(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, 7, "secret1", entity.RoleDeveloper)
	ctx := context.Background()

	_, _ = f.svc.Login(ctx, 7, "wrong")
	_, _ = f.svc.Login(ctx, 7, "wrong")
	_, err := f.svc.Login(ctx, 7, "secret1")
	require.NoError(t, err)
	assert.Zero(t, f.throttle.failures[7])
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, 7, "secret1", entity.RoleDeveloper)

	err := f.svc.ChangePassword(context.Background(), 7, "bad", "secret2")
	assert.ErrorIs(t, err, entity.ErrWrongCurrentPassword)

	first, err := f.svc.IsFirstLogin(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, first)
}

func TestChangePasswordMultiByteOverBcryptLimit(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, 7, "secret1", entity.RoleDeveloper)

	err := f.svc.ChangePassword(context.Background(), 7, "secret1", strings.Repeat("é", 40))
	assert.ErrorIs(t, err, entity.ErrPasswordTooLong)
	assert.Equal(t, entity.KindValidation, entity.KindOf(err))

	_, err = f.svc.Login(context.Background(), 7, "secret1")
	assert.NoError(t, err)
}

func TestPasswordResetRoundTrip(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, 7, "secret1", entity.RoleDeveloper)
	ctx := context.Background()

	token, err := f.svc.RequestReset(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, token, 43)
	assert.Equal(t, token, f.notifier.sent["ann@example.com"])

	stored, err := f.users.GetByID(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetTokenHash)
	assert.NotEqual(t, token, *stored.ResetTokenHash)
	assert.Equal(t, hashToken(token), *stored.ResetTokenHash)

	require.NoError(t, f.svc.ConfirmReset(ctx, token, "newpass"))

	// токен одноразовый
	err = f.svc.ConfirmReset(ctx, token, "another")
	assert.ErrorIs(t, err, entity.ErrInvalidResetToken)

	_, err = f.svc.Login(ctx, 7, "newpass")
	require.NoError(t, err)

	assert.Contains(t, f.audit.Actions(), entity.ActionResetPassword)
}

func TestPasswordResetNewTokenReplacesOld(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, 7, "secret1", entity.RoleDeveloper)
	ctx := context.Background()

	first, err := f.svc.RequestReset(ctx, 7)
	require.NoError(t, err)
	second, err := f.svc.RequestReset(ctx, 7)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	assert.ErrorIs(t, f.svc.ConfirmReset(ctx, first, "newpass"), entity.ErrInvalidResetToken)
	assert.NoError(t, f.svc.ConfirmReset(ctx, second, "newpass"))
}

func TestPasswordResetExpired(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, 7, "secret1", entity.RoleDeveloper)
	ctx := context.Background()

	issued := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	f.svc.now = fixedNow(issued)
	token, err := f.svc.RequestReset(ctx, 7)
	require.NoError(t, err)

	f.svc.now = fixedNow(issued.Add(time.Hour + time.Second))
	err = f.svc.ConfirmReset(ctx, token, "newpass")
	assert.ErrorIs(t, err, entity.ErrInvalidResetToken)

	_, err = f.svc.Login(ctx, 7, "secret1")
	assert.NoError(t, err)
}

func TestPasswordResetUnknownUser(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.RequestReset(context.Background(), 404)
	assert.ErrorIs(t, err, entity.ErrUserNotFound)

	assert.ErrorIs(t, f.svc.ConfirmReset(context.Background(), "", "newpass"), entity.ErrInvalidResetToken)
	assert.ErrorIs(t, f.svc.ConfirmReset(context.Background(), "garbage", "newpass"), entity.ErrInvalidResetToken)
}
