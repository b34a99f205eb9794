package usecase

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/St1cky1/task-tracker/internal/repository"
)

// MockTaskRepository - мок для ITaskRepository
type MockTaskRepository struct {
	CreateFunc       func(ctx context.Context, task *entity.Task) (*entity.Task, error)
	GetByIDFunc      func(ctx context.Context, id int) (*entity.Task, error)
	ListFunc         func(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error)
	UpdateFunc       func(ctx context.Context, id int, updates map[string]interface{}) (*entity.Task, error)
	UpdateStatusFunc func(ctx context.Context, id int, from, to entity.TaskStatus, updatedBy int, at time.Time, actualClosure *time.Time) (*entity.Task, error)
	DeleteFunc       func(ctx context.Context, id int) error
}

var _ repository.ITaskRepository = (*MockTaskRepository)(nil)

func (m *MockTaskRepository) Create(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, task)
	}
	return nil, nil
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id int) (*entity.Task, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTaskRepository) List(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockTaskRepository) Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.Task, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, updates)
	}
	return nil, nil
}

func (m *MockTaskRepository) UpdateStatus(ctx context.Context, id int, from, to entity.TaskStatus, updatedBy int, at time.Time, actualClosure *time.Time) (*entity.Task, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, from, to, updatedBy, at, actualClosure)
	}
	return nil, nil
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockEmployeeRepository - мок для IEmployeeRepository
type MockEmployeeRepository struct {
	CreateFunc        func(ctx context.Context, employee *entity.CreateEmployeeRequest) (*entity.Employee, error)
	GetByIDFunc       func(ctx context.Context, id int) (*entity.Employee, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*entity.Employee, error)
	ListFunc          func(ctx context.Context) ([]entity.Employee, error)
	ListByManagerFunc func(ctx context.Context, managerID int) ([]entity.Employee, error)
	UpdateFunc        func(ctx context.Context, id int, updates map[string]interface{}) (*entity.Employee, error)
	DeleteFunc        func(ctx context.Context, id int) error
}

var _ repository.IEmployeeRepository = (*MockEmployeeRepository)(nil)

func (m *MockEmployeeRepository) Create(ctx context.Context, employee *entity.CreateEmployeeRequest) (*entity.Employee, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, employee)
	}
	return nil, nil
}

func (m *MockEmployeeRepository) GetByID(ctx context.Context, id int) (*entity.Employee, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockEmployeeRepository) GetByEmail(ctx context.Context, email string) (*entity.Employee, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockEmployeeRepository) List(ctx context.Context) ([]entity.Employee, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockEmployeeRepository) ListByManager(ctx context.Context, managerID int) ([]entity.Employee, error) {
	if m.ListByManagerFunc != nil {
		return m.ListByManagerFunc(ctx, managerID)
	}
	return nil, nil
}

func (m *MockEmployeeRepository) Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.Employee, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, updates)
	}
	return nil, nil
}

func (m *MockEmployeeRepository) Delete(ctx context.Context, id int) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// employeesByID - GetByIDFunc по фиксированному набору сотрудников
func employeesByID(employees ...entity.Employee) func(ctx context.Context, id int) (*entity.Employee, error) {
	return func(ctx context.Context, id int) (*entity.Employee, error) {
		for i := range employees {
			if employees[i].ID == id {
				e := employees[i]
				return &e, nil
			}
		}
		return nil, nil
	}
}

// MockRemarkRepository - мок для IRemarkRepository
type MockRemarkRepository struct {
	CreateFunc     func(ctx context.Context, remark *entity.Remark) (*entity.Remark, error)
	GetByIDFunc    func(ctx context.Context, id string) (*entity.Remark, error)
	ListByTaskFunc func(ctx context.Context, taskID int) ([]entity.Remark, error)
	UpdateFunc     func(ctx context.Context, id string, updates map[string]interface{}) (*entity.Remark, error)
	DeleteFunc     func(ctx context.Context, id string) error
}

var _ repository.IRemarkRepository = (*MockRemarkRepository)(nil)

func (m *MockRemarkRepository) Create(ctx context.Context, remark *entity.Remark) (*entity.Remark, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, remark)
	}
	return remark, nil
}

func (m *MockRemarkRepository) GetByID(ctx context.Context, id string) (*entity.Remark, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockRemarkRepository) ListByTask(ctx context.Context, taskID int) ([]entity.Remark, error) {
	if m.ListByTaskFunc != nil {
		return m.ListByTaskFunc(ctx, taskID)
	}
	return nil, nil
}

func (m *MockRemarkRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*entity.Remark, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, updates)
	}
	return nil, nil
}

func (m *MockRemarkRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockProfilePictureRepository - мок для IProfilePictureRepository
type MockProfilePictureRepository struct {
	SaveFunc            func(ctx context.Context, picture *entity.ProfilePicture) (*entity.ProfilePicture, error)
	GetByEmployeeIDFunc func(ctx context.Context, employeeID int) (*entity.ProfilePicture, error)
}

var _ repository.IProfilePictureRepository = (*MockProfilePictureRepository)(nil)

func (m *MockProfilePictureRepository) Save(ctx context.Context, picture *entity.ProfilePicture) (*entity.ProfilePicture, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, picture)
	}
	return picture, nil
}

func (m *MockProfilePictureRepository) GetByEmployeeID(ctx context.Context, employeeID int) (*entity.ProfilePicture, error) {
	if m.GetByEmployeeIDFunc != nil {
		return m.GetByEmployeeIDFunc(ctx, employeeID)
	}
	return nil, nil
}

// MockFileStorage - мок для IFileStorage, хранит файлы в памяти
type MockFileStorage struct {
	mu      sync.Mutex
	files   map[string]*entity.Attachment
	deleted []string
	nextID  int
}

var _ repository.IFileStorage = (*MockFileStorage)(nil)

func (m *MockFileStorage) Upload(ctx context.Context, file *entity.Attachment) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = map[string]*entity.Attachment{}
	}
	m.nextID++
	id := "file-" + strconv.Itoa(m.nextID)
	m.files[id] = file
	return id, nil
}

func (m *MockFileStorage) Open(ctx context.Context, id string) (*entity.StoredFile, io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.files[id]
	if !ok {
		return nil, nil, nil
	}
	meta := &entity.StoredFile{ID: id, FileName: file.FileName, ContentType: file.ContentType, Size: int64(len(file.Data))}
	return meta, io.NopCloser(bytes.NewReader(file.Data)), nil
}

func (m *MockFileStorage) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, id)
	m.deleted = append(m.deleted, id)
	return nil
}

// MockAuditLogRepository - мок для IAuditLogRepository
type MockAuditLogRepository struct {
	mu      sync.Mutex
	entries []entity.AuditLog
	err     error
}

var _ repository.IAuditLogRepository = (*MockAuditLogRepository)(nil)

func (m *MockAuditLogRepository) Create(ctx context.Context, entry *entity.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *MockAuditLogRepository) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		actions = append(actions, e.Action)
	}
	return actions
}

// MockAuditPublisher - мок для AuditPublisher
type MockAuditPublisher struct {
	PublishAuditLogFunc func(ctx context.Context, entry *entity.AuditLog) error
}

func (m *MockAuditPublisher) PublishAuditLog(ctx context.Context, entry *entity.AuditLog) error {
	if m.PublishAuditLogFunc != nil {
		return m.PublishAuditLogFunc(ctx, entry)
	}
	return nil
}

// memUserRepository - хранилище учётных записей в памяти
type memUserRepository struct {
	mu    sync.Mutex
	users map[int]*entity.User
}

var _ repository.IUserRepository = (*memUserRepository)(nil)

func newMemUserRepository() *memUserRepository {
	return &memUserRepository{users: map[int]*entity.User{}}
}

func (r *memUserRepository) Create(ctx context.Context, employeeID int, passwordHash string, role entity.Role) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := &entity.User{
		EmployeeID:   employeeID,
		PasswordHash: passwordHash,
		Role:         role,
		Status:       entity.UserStatusActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	r.users[employeeID] = u
	copied := *u
	return &copied, nil
}

func (r *memUserRepository) GetByID(ctx context.Context, employeeID int) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[employeeID]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepository) List(ctx context.Context) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := []entity.User{}
	for _, u := range r.users {
		users = append(users, *u)
	}
	return users, nil
}

func (r *memUserRepository) Update(ctx context.Context, employeeID int, updates map[string]interface{}) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[employeeID]
	if !ok {
		return nil, nil
	}
	for field, value := range updates {
		switch field {
		case "role":
			u.Role = value.(entity.Role)
		case "status":
			u.Status = value.(entity.UserStatus)
		case "password_hash":
			u.PasswordHash = value.(string)
		}
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepository) Delete(ctx context.Context, employeeID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, employeeID)
	return nil
}

func (r *memUserRepository) UpdatePassword(ctx context.Context, employeeID int, passwordHash string, changedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[employeeID]
	u.PasswordHash = passwordHash
	u.PasswordChangedAt = &changedAt
	return nil
}

func (r *memUserRepository) SetResetToken(ctx context.Context, employeeID int, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[employeeID]
	u.ResetTokenHash = &tokenHash
	u.ResetTokenExpires = &expiresAt
	return nil
}

func (r *memUserRepository) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash && u.ResetTokenExpires.After(now) {
			u.PasswordHash = passwordHash
			u.PasswordChangedAt = &now
			u.ResetTokenHash = nil
			u.ResetTokenExpires = nil
			return true, nil
		}
	}
	return false, nil
}

// fakeThrottle - счётчик неудачных входов в памяти
type fakeThrottle struct {
	max      int
	failures map[int]int
}

func newFakeThrottle(max int) *fakeThrottle {
	return &fakeThrottle{max: max, failures: map[int]int{}}
}

func (f *fakeThrottle) Allowed(ctx context.Context, employeeID int) (bool, error) {
	return f.failures[employeeID] < f.max, nil
}

func (f *fakeThrottle) RecordFailure(ctx context.Context, employeeID int) (int, error) {
	f.failures[employeeID]++
	return f.failures[employeeID], nil
}

func (f *fakeThrottle) Reset(ctx context.Context, employeeID int) error {
	delete(f.failures, employeeID)
	return nil
}

// fakeNotifier запоминает отправленные токены
type fakeNotifier struct {
	sent map[string]string
}

func (n *fakeNotifier) SendResetToken(ctx context.Context, toEmail, name, token string, expiresAt time.Time) error {
	if n.sent == nil {
		n.sent = map[string]string{}
	}
	n.sent[toEmail] = token
	return nil
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
