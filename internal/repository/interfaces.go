package repository

import (
	"context"
	"io"
	"time"

	"github.com/St1cky1/task-tracker/internal/entity"
)

// IEmployeeRepository - интерфейс для EmployeeRepository
type IEmployeeRepository interface {
	Create(ctx context.Context, employee *entity.CreateEmployeeRequest) (*entity.Employee, error)
	GetByID(ctx context.Context, id int) (*entity.Employee, error)
	GetByEmail(ctx context.Context, email string) (*entity.Employee, error)
	List(ctx context.Context) ([]entity.Employee, error)
	ListByManager(ctx context.Context, managerID int) ([]entity.Employee, error)
	Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.Employee, error)
	Delete(ctx context.Context, id int) error
}

// IUserRepository - интерфейс для UserRepository (учётные данные)
type IUserRepository interface {
	Create(ctx context.Context, employeeID int, passwordHash string, role entity.Role) (*entity.User, error)
	GetByID(ctx context.Context, employeeID int) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	Update(ctx context.Context, employeeID int, updates map[string]interface{}) (*entity.User, error)
	Delete(ctx context.Context, employeeID int) error
	UpdatePassword(ctx context.Context, employeeID int, passwordHash string, changedAt time.Time) error
	SetResetToken(ctx context.Context, employeeID int, tokenHash string, expiresAt time.Time) error
	// ConsumeResetToken атомарно меняет пароль по действующему токену; false - токен не найден или истёк
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (bool, error)
}

// ITaskRepository - интерфейс для TaskRepository
type ITaskRepository interface {
	Create(ctx context.Context, task *entity.Task) (*entity.Task, error)
	GetByID(ctx context.Context, id int) (*entity.Task, error)
	List(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error)
	Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.Task, error)
	// UpdateStatus меняет статус только если текущий статус равен from; (nil, nil) - статус уже другой
	UpdateStatus(ctx context.Context, id int, from, to entity.TaskStatus, updatedBy int, at time.Time, actualClosure *time.Time) (*entity.Task, error)
	Delete(ctx context.Context, id int) error
}

// IProfilePictureRepository - интерфейс для ProfilePictureRepository
type IProfilePictureRepository interface {
	Save(ctx context.Context, picture *entity.ProfilePicture) (*entity.ProfilePicture, error)
	GetByEmployeeID(ctx context.Context, employeeID int) (*entity.ProfilePicture, error)
}

// IRemarkRepository - интерфейс для RemarkRepository (MongoDB)
type IRemarkRepository interface {
	Create(ctx context.Context, remark *entity.Remark) (*entity.Remark, error)
	GetByID(ctx context.Context, id string) (*entity.Remark, error)
	ListByTask(ctx context.Context, taskID int) ([]entity.Remark, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (*entity.Remark, error)
	Delete(ctx context.Context, id string) error
}

// IAuditLogRepository - журнал действий, только запись
type IAuditLogRepository interface {
	Create(ctx context.Context, entry *entity.AuditLog) error
}

// IFileStorage - хранилище файлов (GridFS)
type IFileStorage interface {
	Upload(ctx context.Context, file *entity.Attachment) (string, error)
	// Open возвращает (nil, nil, nil), если файла нет
	Open(ctx context.Context, id string) (*entity.StoredFile, io.ReadCloser, error)
	Delete(ctx context.Context, id string) error
}
