package usecase

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/St1cky1/task-tracker/internal/log"
	"github.com/St1cky1/task-tracker/internal/repository"
	"github.com/jackc/pgx/v5"
)

// MaxProfilePictureSize - 5 MiB
const MaxProfilePictureSize = 5 << 20

type EmployeeService struct {
	employeeRepo repository.IEmployeeRepository
	pictureRepo  repository.IProfilePictureRepository
	files        repository.IFileStorage
	audit        *AuditRecorder
}

func NewEmployeeService(
	employeeRepo repository.IEmployeeRepository,
	pictureRepo repository.IProfilePictureRepository,
	files repository.IFileStorage,
	audit *AuditRecorder,
) *EmployeeService {
	return &EmployeeService{
		employeeRepo: employeeRepo,
		pictureRepo:  pictureRepo,
		files:        files,
		audit:        audit,
	}
}

func (s *EmployeeService) CreateEmployee(ctx context.Context, actorID int, req *entity.CreateEmployeeRequest) (*entity.Employee, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Designation = strings.TrimSpace(req.Designation)
	if req.Name == "" || req.Email == "" || req.Designation == "" {
		return nil, entity.NewValidationError("name, email and designation are required")
	}

	if err := s.ensureEmailFree(ctx, req.Email, 0); err != nil {
		return nil, err
	}

	if req.ManagerID != nil && *req.ManagerID != 0 {
		if err := s.ensureManagerExists(ctx, *req.ManagerID); err != nil {
			return nil, err
		}
	}

	employee, err := s.employeeRepo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, entity.ActionCreateEmployee, entity.EntityEmployee, employee.ID, actorID)
	return employee, nil
}

func (s *EmployeeService) GetEmployee(ctx context.Context, actorID, id int) (*entity.Employee, error) {
	employee, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, entity.ErrEmployeeNotFound
	}

	s.audit.Record(ctx, entity.ActionGetEmployee, entity.EntityEmployee, id, actorID)
	return employee, nil
}

func (s *EmployeeService) ListEmployees(ctx context.Context, actorID int) ([]entity.Employee, error) {
	employees, err := s.employeeRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, entity.ActionGetAllEmployees, entity.EntityEmployee, 0, actorID)
	return employees, nil
}

// ListReports - прямые подчинённые менеджера
func (s *EmployeeService) ListReports(ctx context.Context, managerID int) ([]entity.Employee, error) {
	employees, err := s.employeeRepo.ListByManager(ctx, managerID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, entity.ActionGetMyEmployees, entity.EntityEmployee, managerID, managerID)
	return employees, nil
}

// UpdateEmployee - частичное обновление; mgr_id = 0 снимает менеджера
func (s *EmployeeService) UpdateEmployee(ctx context.Context, actorID, id int, req *entity.UpdateEmployeeRequest) (*entity.Employee, error) {
	existing, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, entity.ErrEmployeeNotFound
	}

	updates := make(map[string]interface{})

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, entity.NewValidationError("name must not be empty")
		}
		updates["name"] = name
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email == "" {
			return nil, entity.NewValidationError("email must not be empty")
		}
		if !strings.EqualFold(email, existing.Email) {
			if err := s.ensureEmailFree(ctx, email, id); err != nil {
				return nil, err
			}
		}
		updates["email"] = email
	}

	if req.Designation != nil {
		designation := strings.TrimSpace(*req.Designation)
		if designation == "" {
			return nil, entity.NewValidationError("designation must not be empty")
		}
		updates["designation"] = designation
	}

	if req.ManagerID != nil {
		if *req.ManagerID == 0 {
			updates["mgr_id"] = nil
		} else {
			if err := s.ensureManagerExists(ctx, *req.ManagerID); err != nil {
				return nil, err
			}
			if err := s.ensureNoCycle(ctx, id, *req.ManagerID); err != nil {
				return nil, err
			}
			updates["mgr_id"] = *req.ManagerID
		}
	}

	if len(updates) == 0 {
		return nil, entity.ErrNoFieldsToUpdate
	}

	employee, err := s.employeeRepo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, entity.ErrEmployeeNotFound
	}

	s.audit.Record(ctx, entity.ActionUpdateEmployee, entity.EntityEmployee, id, actorID)
	return employee, nil
}

// DeleteEmployee - удаление без каскада на задачи; файл аватарки удаляется
func (s *EmployeeService) DeleteEmployee(ctx context.Context, actorID, id int) error {
	existing, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return entity.ErrEmployeeNotFound
	}

	picture, err := s.pictureRepo.GetByEmployeeID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.employeeRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.ErrEmployeeNotFound
		}
		return err
	}

	if picture != nil {
		s.removeFile(ctx, picture.FileID)
	}

	s.audit.Record(ctx, entity.ActionDeleteEmployee, entity.EntityEmployee, id, actorID)
	return nil
}

// UploadProfilePicture сохраняет изображение в файловом хранилище и заменяет прежнее
func (s *EmployeeService) UploadProfilePicture(ctx context.Context, actorID, id int, file *entity.Attachment) (*entity.ProfilePicture, error) {
	employee, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, entity.ErrEmployeeNotFound
	}

	if file == nil || len(file.Data) == 0 || !strings.HasPrefix(file.ContentType, "image/") {
		return nil, entity.ErrInvalidFile
	}
	if len(file.Data) > MaxProfilePictureSize {
		return nil, entity.ErrFileTooLarge
	}

	previous, err := s.pictureRepo.GetByEmployeeID(ctx, id)
	if err != nil {
		return nil, err
	}

	fileID, err := s.files.Upload(ctx, file)
	if err != nil {
		return nil, err
	}

	picture, err := s.pictureRepo.Save(ctx, &entity.ProfilePicture{
		EmployeeID:  id,
		FileID:      fileID,
		FileSize:    len(file.Data),
		ContentType: file.ContentType,
	})
	if err != nil {
		s.removeFile(ctx, fileID)
		return nil, err
	}

	if previous != nil && previous.FileID != fileID {
		s.removeFile(ctx, previous.FileID)
	}

	s.audit.Record(ctx, entity.ActionUploadProfilePicture, entity.EntityEmployee, id, actorID)
	return picture, nil
}

// GetProfilePicture открывает файл аватарки; вызывающий закрывает reader
func (s *EmployeeService) GetProfilePicture(ctx context.Context, id int) (*entity.StoredFile, io.ReadCloser, error) {
	picture, err := s.pictureRepo.GetByEmployeeID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if picture == nil {
		return nil, nil, entity.ErrFileNotFound
	}

	meta, reader, err := s.files.Open(ctx, picture.FileID)
	if err != nil {
		return nil, nil, err
	}
	if meta == nil {
		return nil, nil, entity.ErrFileNotFound
	}
	meta.ContentType = picture.ContentType
	return meta, reader, nil
}

func (s *EmployeeService) ensureEmailFree(ctx context.Context, email string, selfID int) error {
	other, err := s.employeeRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if other != nil && other.ID != selfID {
		return entity.ErrEmailTaken
	}
	return nil
}

func (s *EmployeeService) ensureManagerExists(ctx context.Context, managerID int) error {
	manager, err := s.employeeRepo.GetByID(ctx, managerID)
	if err != nil {
		return err
	}
	if manager == nil {
		return entity.ErrManagerNotFound
	}
	return nil
}

// ensureNoCycle поднимается по цепочке менеджеров от нового менеджера;
// если встречаем самого сотрудника, назначение создаст цикл
func (s *EmployeeService) ensureNoCycle(ctx context.Context, employeeID, managerID int) error {
	visited := map[int]bool{}
	current := managerID

	for {
		if current == employeeID {
			return entity.ErrManagerCycle
		}
		if visited[current] {
			// цикл выше по цепочке, сотрудник в нём не участвует
			return nil
		}
		visited[current] = true

		manager, err := s.employeeRepo.GetByID(ctx, current)
		if err != nil {
			return err
		}
		if manager == nil || manager.ManagerID == nil {
			return nil
		}
		current = *manager.ManagerID
	}
}

func (s *EmployeeService) removeFile(ctx context.Context, fileID string) {
	if err := s.files.Delete(ctx, fileID); err != nil {
		log.GetLogger().WithError(err).WithField("file_id", fileID).Warn("failed to delete stored file")
	}
}
