package repository

import (
	"context"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// ProfilePictureRepository хранит ссылку на файл аватарки сотрудника в GridFS
type ProfilePictureRepository struct {
	db *pgxpool.Pool
}

func NewProfilePictureRepository(db *pgxpool.Pool) *ProfilePictureRepository {
	return &ProfilePictureRepository{
		db: db,
	}
}

// Save - создает или обновляет аватарку
func (r *ProfilePictureRepository) Save(ctx context.Context, picture *entity.ProfilePicture) (*entity.ProfilePicture, error) {
	query := `
	INSERT INTO employee_avatar (e_id, file_id, file_size, content_type)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (e_id) DO UPDATE SET
	    file_id = EXCLUDED.file_id,
	    file_size = EXCLUDED.file_size,
	    content_type = EXCLUDED.content_type,
	    updated_at = CURRENT_TIMESTAMP
	RETURNING id, e_id, file_id, file_size, content_type, created_at, updated_at
	`

	var saved entity.ProfilePicture

	err := r.db.QueryRow(ctx, query, picture.EmployeeID, picture.FileID, picture.FileSize, picture.ContentType).Scan(
		&saved.ID,
		&saved.EmployeeID,
		&saved.FileID,
		&saved.FileSize,
		&saved.ContentType,
		&saved.CreatedAt,
		&saved.UpdatedAt,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "save profile picture for %d", picture.EmployeeID)
	}

	return &saved, nil
}

// GetByEmployeeID - получает аватарку по e_id
func (r *ProfilePictureRepository) GetByEmployeeID(ctx context.Context, employeeID int) (*entity.ProfilePicture, error) {
	query := `
	SELECT id, e_id, file_id, file_size, content_type, created_at, updated_at
	FROM employee_avatar
	WHERE e_id = $1
	`

	var picture entity.ProfilePicture

	err := r.db.QueryRow(ctx, query, employeeID).Scan(
		&picture.ID,
		&picture.EmployeeID,
		&picture.FileID,
		&picture.FileSize,
		&picture.ContentType,
		&picture.CreatedAt,
		&picture.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get profile picture for %d", employeeID)
	}

	return &picture, nil
}
