package auth

import (
	"errors"
	"fmt"

	"github.com/St1cky1/task-tracker/internal/entity"
	"golang.org/x/crypto/bcrypt"
)

type PasswordManager struct {
	cost      int
	dummyHash []byte
}

func NewPasswordManager() *PasswordManager {
	return NewPasswordManagerWithCost(bcrypt.DefaultCost)
}

// NewPasswordManagerWithCost - для тестов удобно использовать bcrypt.MinCost
func NewPasswordManagerWithCost(cost int) *PasswordManager {
	// Хеш-заглушка: сравнение с ним занимает столько же времени, сколько с настоящим
	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), cost)
	if err != nil {
		panic(fmt.Sprintf("bcrypt dummy hash: %v", err))
	}
	return &PasswordManager{
		cost:      cost,
		dummyHash: dummy,
	}
}

// HashPassword хеширует пароль; bcrypt ограничивает длину 72 байтами, а не символами
func (m *PasswordManager) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", entity.ErrPasswordTooLong
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword проверяет пароль против хеша
func (m *PasswordManager) VerifyPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// BurnCompare выполняет сравнение с хешем-заглушкой, когда учётной записи нет
func (m *PasswordManager) BurnCompare(password string) {
	_ = bcrypt.CompareHashAndPassword(m.dummyHash, []byte(password))
}
