package auth

import (
	"fmt"
	"time"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/golang-jwt/jwt/v5"
)

type accessClaims struct {
	jwt.RegisteredClaims
	EmployeeID int    `json:"e_id"`
	Role       string `json:"role"`
}

type JWTManager struct {
	secretKey []byte
	method    jwt.SigningMethod
	ttl       time.Duration
	now       func() time.Time
}

// NewJWTManager создает менеджер токенов; algorithm - HS256, HS384 или HS512
func NewJWTManager(secretKey, algorithm string, ttl time.Duration) (*JWTManager, error) {
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return &JWTManager{
		secretKey: []byte(secretKey),
		method:    method,
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

// WithClock подменяет источник времени (для тестов)
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	m.now = now
	return m
}

// GenerateAccessToken генерирует access token с claims e_id и role
func (m *JWTManager) GenerateAccessToken(employeeID int, role entity.Role) (string, error) {
	now := m.now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		EmployeeID: employeeID,
		Role:       string(role),
	}

	token := jwt.NewWithClaims(m.method, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ValidateAccessToken проверяет подпись, алгоритм и срок действия токена.
// Любая ошибка разбора превращается в entity.ErrInvalidToken.
// Пустая роль не считается ошибкой здесь - её отклоняет Authorize.
func (m *JWTManager) ValidateAccessToken(tokenString string) (*entity.JWTClaims, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secretKey, nil
	},
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, entity.ErrInvalidToken
	}

	if claims.EmployeeID <= 0 {
		return nil, entity.ErrInvalidToken
	}

	return &entity.JWTClaims{
		EmployeeID: claims.EmployeeID,
		Role:       entity.Role(claims.Role),
	}, nil
}
