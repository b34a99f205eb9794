package entity

import "time"

type Remark struct {
	ID          string     `json:"id"`
	TaskID      int        `json:"task_id"`
	Comment     string     `json:"comment"`
	CommentedBy int        `json:"commented_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	FileID      *string    `json:"file_id,omitempty"`
	FileName    *string    `json:"filename,omitempty"`
}

type CreateRemarkRequest struct {
	TaskID  int    `json:"task_id" validate:"required,min=1"`
	Comment string `json:"comment" validate:"required"`
}

type UpdateRemarkRequest struct {
	Comment *string `json:"comment"`
}

// Attachment - загруженный файл, ещё не сохранённый в хранилище
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// StoredFile - файл из хранилища, открытый на чтение
type StoredFile struct {
	ID          string
	FileName    string
	ContentType string
	Size        int64
}
