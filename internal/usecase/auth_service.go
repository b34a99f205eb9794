package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/St1cky1/task-tracker/internal/infrastructure/auth"
	"github.com/St1cky1/task-tracker/internal/log"
	"github.com/St1cky1/task-tracker/internal/metrics"
	"github.com/St1cky1/task-tracker/internal/repository"
)

const resetTokenBytes = 32

// LoginThrottle - счётчик неудачных входов (Redis)
type LoginThrottle interface {
	Allowed(ctx context.Context, employeeID int) (bool, error)
	RecordFailure(ctx context.Context, employeeID int) (int, error)
	Reset(ctx context.Context, employeeID int) error
}

// ResetNotifier - доставка токена сброса пароля (email)
type ResetNotifier interface {
	SendResetToken(ctx context.Context, toEmail, name, token string, expiresAt time.Time) error
}

type AuthService struct {
	userRepo        repository.IUserRepository
	employeeRepo    repository.IEmployeeRepository
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
	throttle        LoginThrottle
	notifier        ResetNotifier
	audit           *AuditRecorder
	resetTTL        time.Duration
	now             func() time.Time
}

// NewAuthService - throttle и notifier необязательны (nil)
func NewAuthService(
	userRepo repository.IUserRepository,
	employeeRepo repository.IEmployeeRepository,
	passwordManager *auth.PasswordManager,
	jwtManager *auth.JWTManager,
	throttle LoginThrottle,
	notifier ResetNotifier,
	audit *AuditRecorder,
	resetTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		employeeRepo:    employeeRepo,
		passwordManager: passwordManager,
		jwtManager:      jwtManager,
		throttle:        throttle,
		notifier:        notifier,
		audit:           audit,
		resetTTL:        resetTTL,
		now:             time.Now,
	}
}

// Login - проверка учётных данных, выпуск токена и признак первого входа
func (s *AuthService) Login(ctx context.Context, employeeID int, password string) (*entity.LoginResponse, error) {
	logger := log.GetLogger().WithField("e_id", employeeID)

	if s.throttle != nil {
		allowed, err := s.throttle.Allowed(ctx, employeeID)
		if err != nil {
			// Redis недоступен - не блокируем вход
			logger.WithError(err).Warn("login throttle unavailable")
		} else if !allowed {
			metrics.LoginAttemptsTotal.WithLabelValues("throttled").Inc()
			return nil, entity.ErrTooManyAttempts
		}
	}

	user, err := s.Authenticate(ctx, employeeID, password)
	if err != nil {
		switch err {
		case entity.ErrInvalidCredentials:
			metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
			s.recordFailure(ctx, employeeID)
		case entity.ErrAccountInactive:
			metrics.LoginAttemptsTotal.WithLabelValues("inactive").Inc()
		}
		return nil, err
	}

	token, err := s.jwtManager.GenerateAccessToken(user.EmployeeID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, employeeID); err != nil {
			logger.WithError(err).Warn("failed to reset login failures")
		}
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	return &entity.LoginResponse{
		AccessToken:  token,
		TokenType:    "bearer",
		IsFirstLogin: user.PasswordChangedAt == nil,
	}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, employeeID int) {
	if s.throttle == nil {
		return
	}
	n, err := s.throttle.RecordFailure(ctx, employeeID)
	if err != nil {
		log.GetLogger().WithError(err).Warn("failed to record login failure")
		return
	}
	log.GetLogger().WithField("e_id", employeeID).Debugf("failed login #%d", n)
}

// Authenticate проверяет пароль. Неизвестный e_id неотличим от неверного пароля,
// bcrypt выполняется в обоих случаях.
func (s *AuthService) Authenticate(ctx context.Context, employeeID int, password string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		s.passwordManager.BurnCompare(password)
		return nil, entity.ErrInvalidCredentials
	}

	if !s.passwordManager.VerifyPassword(user.PasswordHash, password) {
		return nil, entity.ErrInvalidCredentials
	}

	if user.Status != entity.UserStatusActive {
		return nil, entity.ErrAccountInactive
	}

	return user, nil
}

// IsFirstLogin - пароль ещё ни разу не менялся
func (s *AuthService) IsFirstLogin(ctx context.Context, employeeID int) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, employeeID)
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return false, entity.ErrUserNotFound
	}
	return user.PasswordChangedAt == nil, nil
}

// ChangePassword меняет пароль после проверки текущего
func (s *AuthService) ChangePassword(ctx context.Context, employeeID int, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return entity.ErrUserNotFound
	}

	if !s.passwordManager.VerifyPassword(user.PasswordHash, currentPassword) {
		return entity.ErrWrongCurrentPassword
	}

	hash, err := s.passwordManager.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, employeeID, hash, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.audit.Record(ctx, entity.ActionChangePassword, entity.EntityUser, employeeID, employeeID)
	return nil
}

// RequestReset выпускает токен сброса пароля. В базе хранится только SHA-256 токена,
// предыдущий токен перезаписывается.
func (s *AuthService) RequestReset(ctx context.Context, employeeID int) (string, error) {
	user, err := s.userRepo.GetByID(ctx, employeeID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", entity.ErrUserNotFound
	}

	token, err := generateResetToken()
	if err != nil {
		return "", err
	}

	expiresAt := s.now().UTC().Add(s.resetTTL)
	if err := s.userRepo.SetResetToken(ctx, employeeID, hashToken(token), expiresAt); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	s.notifyReset(ctx, employeeID, token, expiresAt)
	return token, nil
}

func (s *AuthService) notifyReset(ctx context.Context, employeeID int, token string, expiresAt time.Time) {
	if s.notifier == nil {
		return
	}
	logger := log.GetLogger().WithField("e_id", employeeID)

	employee, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil || employee == nil {
		logger.WithError(err).Warn("reset email skipped: employee not found")
		return
	}
	if err := s.notifier.SendResetToken(ctx, employee.Email, employee.Name, token, expiresAt); err != nil {
		logger.WithError(err).Warn("failed to send reset email")
	}
}

// ConfirmReset меняет пароль по токену. Токен одноразовый: проверка и
// очистка выполняются одним условным UPDATE.
func (s *AuthService) ConfirmReset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return entity.ErrInvalidResetToken
	}

	hash, err := s.passwordManager.HashPassword(newPassword)
	if err != nil {
		return err
	}

	ok, err := s.userRepo.ConsumeResetToken(ctx, hashToken(token), hash, s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	if !ok {
		return entity.ErrInvalidResetToken
	}

	s.audit.Record(ctx, entity.ActionResetPassword, entity.EntityUser, 0, entity.SystemActor)
	return nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// hashToken генерирует хеш токена для хранения в БД
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
