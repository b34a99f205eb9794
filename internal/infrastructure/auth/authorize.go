package auth

import "github.com/St1cky1/task-tracker/internal/entity"

// Authorize - проверка роли по claims, без обращения к хранилищу.
// Нет claims или роли - ErrUnauthorized, роль не из списка - ErrForbidden.
func Authorize(claims *entity.JWTClaims, allowed ...entity.Role) error {
	if claims == nil || claims.Role == "" {
		return entity.ErrUnauthorized
	}
	for _, role := range allowed {
		if claims.Role == role {
			return nil
		}
	}
	return entity.ErrForbidden
}
