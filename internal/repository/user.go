package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

const userColumns = `e_id, password_hash, role, status, password_changed_at, reset_token_hash, reset_token_expires, created_at, updated_at`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(
		&u.EmployeeID,
		&u.PasswordHash,
		&u.Role,
		&u.Status,
		&u.PasswordChangedAt,
		&u.ResetTokenHash,
		&u.ResetTokenExpires,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create - новая учётная запись: ACTIVE, password_changed_at = NULL (первый вход)
func (r *UserRepository) Create(ctx context.Context, employeeID int, passwordHash string, role entity.Role) (*entity.User, error) {
	query := `
	INSERT INTO users (e_id, password_hash, role, status)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, employeeID, passwordHash, role, entity.UserStatusActive))
	if err != nil {
		return nil, errors.Wrapf(err, "insert user %d", employeeID)
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, employeeID int) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE e_id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get user %d", employeeID)
	}

	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY e_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	defer rows.Close()

	users := []entity.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan user")
		}
		users = append(users, *user)
	}

	return users, rows.Err()
}

// Update - обновление учётной записи (role, status, password_hash...)
func (r *UserRepository) Update(ctx context.Context, employeeID int, updates map[string]interface{}) (*entity.User, error) {
	setClause, args := buildSetClause(updates)
	if setClause != "" {
		setClause += ", "
	}
	setClause += "updated_at = CURRENT_TIMESTAMP"

	query := `
	UPDATE users
	SET ` + setClause + `
	WHERE e_id = $` + strconv.Itoa(len(args)+1) + `
	RETURNING ` + userColumns
	args = append(args, employeeID)

	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "update user %d", employeeID)
	}

	return user, nil
}

// Delete - удаляет только учётную запись, сотрудник остаётся
func (r *UserRepository) Delete(ctx context.Context, employeeID int) error {
	query := `DELETE FROM users WHERE e_id = $1`
	result, err := r.db.Exec(ctx, query, employeeID)
	if err != nil {
		return errors.Wrapf(err, "delete user %d", employeeID)
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdatePassword - смена пароля; отметка password_changed_at снимает признак первого входа
func (r *UserRepository) UpdatePassword(ctx context.Context, employeeID int, passwordHash string, changedAt time.Time) error {
	query := `
	UPDATE users
	SET password_hash = $1, password_changed_at = $2, updated_at = $2
	WHERE e_id = $3
	`
	result, err := r.db.Exec(ctx, query, passwordHash, changedAt, employeeID)
	if err != nil {
		return errors.Wrapf(err, "update password for %d", employeeID)
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetResetToken - сохраняет хеш токена сброса, перезаписывая предыдущий
func (r *UserRepository) SetResetToken(ctx context.Context, employeeID int, tokenHash string, expiresAt time.Time) error {
	query := `
	UPDATE users
	SET reset_token_hash = $1, reset_token_expires = $2, updated_at = CURRENT_TIMESTAMP
	WHERE e_id = $3
	`
	result, err := r.db.Exec(ctx, query, tokenHash, expiresAt, employeeID)
	if err != nil {
		return errors.Wrapf(err, "set reset token for %d", employeeID)
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ConsumeResetToken - одним UPDATE проверяет токен и срок, меняет пароль и очищает токен.
// Повторное использование того же токена не найдёт строку.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (bool, error) {
	query := `
	UPDATE users
	SET password_hash = $1,
	    password_changed_at = $2,
	    reset_token_hash = NULL,
	    reset_token_expires = NULL,
	    updated_at = $2
	WHERE reset_token_hash = $3 AND reset_token_expires > $2
	`
	result, err := r.db.Exec(ctx, query, passwordHash, now, tokenHash)
	if err != nil {
		return false, errors.Wrap(err, "consume reset token")
	}
	return result.RowsAffected() == 1, nil
}
