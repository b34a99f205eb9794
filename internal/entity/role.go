package entity

// Role - роль учётной записи, единственный источник правды для ролей
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleManager   Role = "MANAGER"
	RoleDeveloper Role = "DEVELOPER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleDeveloper:
		return true
	}
	return false
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
)

func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusInactive
}

// Actor - тот, кто выполняет операцию (берётся из claims токена)
type Actor struct {
	ID   int
	Role Role
}
