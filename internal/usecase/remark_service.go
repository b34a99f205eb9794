package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/St1cky1/task-tracker/internal/log"
	"github.com/St1cky1/task-tracker/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
)

// MaxAttachmentSize - ограничение на вложение к замечанию
const MaxAttachmentSize = 10 << 20

type RemarkService struct {
	remarkRepo repository.IRemarkRepository
	taskRepo   repository.ITaskRepository
	files      repository.IFileStorage
	audit      *AuditRecorder
	now        func() time.Time
}

func NewRemarkService(
	remarkRepo repository.IRemarkRepository,
	taskRepo repository.ITaskRepository,
	files repository.IFileStorage,
	audit *AuditRecorder,
) *RemarkService {
	return &RemarkService{
		remarkRepo: remarkRepo,
		taskRepo:   taskRepo,
		files:      files,
		audit:      audit,
		now:        time.Now,
	}
}

// AddRemark добавляет замечание к задаче; file необязателен
func (s *RemarkService) AddRemark(ctx context.Context, actor entity.Actor, req *entity.CreateRemarkRequest, file *entity.Attachment) (*entity.Remark, error) {
	comment := strings.TrimSpace(req.Comment)
	if comment == "" {
		return nil, entity.NewValidationError("comment must not be empty")
	}
	if err := s.ensureTask(ctx, req.TaskID); err != nil {
		return nil, err
	}

	remark := &entity.Remark{
		TaskID:      req.TaskID,
		Comment:     comment,
		CommentedBy: actor.ID,
		CreatedAt:   s.now().UTC(),
	}

	action := entity.ActionCreateRemark
	if file != nil {
		fileID, err := s.storeFile(ctx, file)
		if err != nil {
			return nil, err
		}
		fileName := file.FileName
		remark.FileID = &fileID
		remark.FileName = &fileName
		action = entity.ActionCreateRemarkWithFile
	}

	created, err := s.remarkRepo.Create(ctx, remark)
	if err != nil {
		if remark.FileID != nil {
			s.removeFile(ctx, *remark.FileID)
		}
		return nil, err
	}

	s.audit.Record(ctx, action, entity.EntityTask, req.TaskID, actor.ID)
	return created, nil
}

// ListRemarks - замечания по задаче в порядке создания
func (s *RemarkService) ListRemarks(ctx context.Context, actor entity.Actor, taskID int) ([]entity.Remark, error) {
	if err := s.ensureTask(ctx, taskID); err != nil {
		return nil, err
	}

	remarks, err := s.remarkRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, entity.ActionListRemarks, entity.EntityTask, taskID, actor.ID)
	return remarks, nil
}

// UpdateRemark - автор, ADMIN или MANAGER; новый текст и/или замена файла
func (s *RemarkService) UpdateRemark(ctx context.Context, actor entity.Actor, id string, req *entity.UpdateRemarkRequest, file *entity.Attachment) (*entity.Remark, error) {
	existing, err := s.remarkRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, entity.ErrRemarkNotFound
	}

	if existing.CommentedBy != actor.ID && actor.Role != entity.RoleAdmin && actor.Role != entity.RoleManager {
		return nil, entity.ErrForbidden
	}

	updates := make(map[string]interface{})

	if req != nil && req.Comment != nil {
		comment := strings.TrimSpace(*req.Comment)
		if comment == "" {
			return nil, entity.NewValidationError("comment must not be empty")
		}
		updates["comment"] = comment
	}

	var newFileID string
	if file != nil {
		newFileID, err = s.storeFile(ctx, file)
		if err != nil {
			return nil, err
		}
		updates["file_id"] = newFileID
		updates["filename"] = file.FileName
	}

	if len(updates) == 0 {
		return nil, entity.ErrNoFieldsToUpdate
	}
	updates["updated_at"] = s.now().UTC()

	updated, err := s.remarkRepo.Update(ctx, id, updates)
	if err != nil || updated == nil {
		if newFileID != "" {
			s.removeFile(ctx, newFileID)
		}
		if err != nil {
			return nil, err
		}
		return nil, entity.ErrRemarkNotFound
	}

	if newFileID != "" && existing.FileID != nil {
		s.removeFile(ctx, *existing.FileID)
	}

	s.audit.Record(ctx, entity.ActionUpdateRemark, entity.EntityTask, existing.TaskID, actor.ID)
	return updated, nil
}

// DeleteRemark - только ADMIN и MANAGER; вложение удаляется вместе с замечанием
func (s *RemarkService) DeleteRemark(ctx context.Context, actor entity.Actor, id string) error {
	if actor.Role != entity.RoleAdmin && actor.Role != entity.RoleManager {
		return entity.ErrForbidden
	}

	existing, err := s.remarkRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return entity.ErrRemarkNotFound
	}

	if err := s.remarkRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return entity.ErrRemarkNotFound
		}
		return err
	}

	if existing.FileID != nil {
		s.removeFile(ctx, *existing.FileID)
	}

	s.audit.Record(ctx, entity.ActionDeleteRemark, entity.EntityTask, existing.TaskID, actor.ID)
	return nil
}

// OpenFile открывает вложение на чтение; вызывающий закрывает reader
func (s *RemarkService) OpenFile(ctx context.Context, actor entity.Actor, fileID string) (*entity.StoredFile, io.ReadCloser, error) {
	meta, reader, err := s.files.Open(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	if meta == nil {
		return nil, nil, entity.ErrFileNotFound
	}

	s.audit.Record(ctx, entity.ActionDownloadFile, entity.EntityFile, 0, actor.ID)
	return meta, reader, nil
}

func (s *RemarkService) ensureTask(ctx context.Context, taskID int) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return entity.ErrTaskNotFound
	}
	return nil
}

func (s *RemarkService) storeFile(ctx context.Context, file *entity.Attachment) (string, error) {
	if strings.TrimSpace(file.FileName) == "" || len(file.Data) == 0 {
		return "", entity.NewValidationError("attached file is empty")
	}
	if len(file.Data) > MaxAttachmentSize {
		return "", entity.NewValidationError("attached file exceeds 10MB limit")
	}
	return s.files.Upload(ctx, file)
}

func (s *RemarkService) removeFile(ctx context.Context, fileID string) {
	if err := s.files.Delete(ctx, fileID); err != nil {
		log.GetLogger().WithError(err).WithField("file_id", fileID).Warn("failed to delete stored file")
	}
}
