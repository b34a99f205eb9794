package entity

import "errors"

// ErrorKind - категория доменной ошибки, транслируется в HTTP статус только на границе
type ErrorKind string

const (
	KindUnauthorized    ErrorKind = "unauthorized"
	KindForbidden       ErrorKind = "forbidden"
	KindNotFound        ErrorKind = "not_found"
	KindValidation      ErrorKind = "validation"
	KindBusinessRule    ErrorKind = "business_rule"
	KindTooManyRequests ErrorKind = "too_many_requests"
	KindInternal        ErrorKind = "internal"
)

type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func newError(kind ErrorKind, message string) *DomainError {
	return &DomainError{Kind: kind, Message: message}
}

// NewValidationError - ошибка валидации входных данных с произвольным текстом
func NewValidationError(message string) error {
	return newError(KindValidation, message)
}

var (
	ErrUnauthorized         = newError(KindUnauthorized, "not authenticated")
	ErrInvalidToken         = newError(KindUnauthorized, "invalid or expired token")
	ErrInvalidCredentials   = newError(KindUnauthorized, "invalid credentials")
	ErrAccountInactive      = newError(KindUnauthorized, "account is inactive")
	ErrForbidden            = newError(KindForbidden, "access denied")
	ErrNotAssignee          = newError(KindForbidden, "not your task")
	ErrNotReviewer          = newError(KindForbidden, "not reviewer")
	ErrTaskNotFound         = newError(KindNotFound, "task not found")
	ErrUserNotFound         = newError(KindNotFound, "user not found")
	ErrEmployeeNotFound     = newError(KindNotFound, "employee not found")
	ErrRemarkNotFound       = newError(KindNotFound, "remark not found")
	ErrFileNotFound         = newError(KindNotFound, "file not found")
	ErrNoFieldsToUpdate     = newError(KindValidation, "no fields to update")
	ErrInvalidTaskStatus    = newError(KindValidation, "invalid task status")
	ErrPasswordTooLong      = newError(KindValidation, "password must be at most 72 bytes")
	ErrWrongCurrentPassword = newError(KindBusinessRule, "current password is incorrect")
	ErrInvalidResetToken    = newError(KindBusinessRule, "invalid or expired reset token")
	ErrUserExists           = newError(KindBusinessRule, "user already exists")
	ErrEmailTaken           = newError(KindBusinessRule, "email already in use")
	ErrManagerNotFound      = newError(KindBusinessRule, "manager does not exist")
	ErrManagerCycle         = newError(KindBusinessRule, "manager assignment would create a cycle")
	ErrAssigneeNotFound     = newError(KindBusinessRule, "assigned employee does not exist")
	ErrReviewerNotFound     = newError(KindBusinessRule, "reviewer does not exist")
	ErrCreatorNotFound      = newError(KindBusinessRule, "creator does not exist")
	ErrInvalidTransition    = newError(KindBusinessRule, "invalid status transition")
	ErrRemarkRequired       = newError(KindBusinessRule, "remark required")
	ErrStatusConflict       = newError(KindBusinessRule, "task status was changed concurrently")
	ErrInvalidFile          = newError(KindBusinessRule, "only image files allowed")
	ErrFileTooLarge         = newError(KindBusinessRule, "file size exceeds 5MB limit")
	ErrTooManyAttempts      = newError(KindTooManyRequests, "too many failed login attempts, try again later")
)

// KindOf возвращает категорию ошибки; всё, что не DomainError, считается внутренней ошибкой
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
