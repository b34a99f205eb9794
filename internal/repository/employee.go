package repository

import (
	"context"
	"strconv"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

const employeeColumns = `e_id, name, email, designation, mgr_id, created_at, updated_at`

type EmployeeRepository struct {
	db *pgxpool.Pool
}

func NewEmployeeRepository(db *pgxpool.Pool) *EmployeeRepository {
	return &EmployeeRepository{
		db: db,
	}
}

func scanEmployee(row pgx.Row) (*entity.Employee, error) {
	var e entity.Employee
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Email,
		&e.Designation,
		&e.ManagerID,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create - mgr_id == nil или 0 сохраняется как NULL
func (r *EmployeeRepository) Create(ctx context.Context, employee *entity.CreateEmployeeRequest) (*entity.Employee, error) {
	query := `
	INSERT INTO employees (name, email, designation, mgr_id)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + employeeColumns

	var managerID *int
	if employee.ManagerID != nil && *employee.ManagerID != 0 {
		managerID = employee.ManagerID
	}

	created, err := scanEmployee(r.db.QueryRow(ctx, query,
		employee.Name,
		employee.Email,
		employee.Designation,
		managerID,
	))
	if err != nil {
		return nil, errors.Wrap(err, "insert employee")
	}

	return created, nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int) (*entity.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE e_id = $1`

	employee, err := scanEmployee(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get employee %d", id)
	}

	return employee, nil
}

func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (*entity.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE lower(email) = lower($1)`

	employee, err := scanEmployee(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get employee by email")
	}

	return employee, nil
}

func (r *EmployeeRepository) List(ctx context.Context) ([]entity.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY e_id`
	return r.list(ctx, query)
}

// ListByManager - прямые подчинённые
func (r *EmployeeRepository) ListByManager(ctx context.Context, managerID int) ([]entity.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE mgr_id = $1 ORDER BY e_id`
	return r.list(ctx, query, managerID)
}

func (r *EmployeeRepository) list(ctx context.Context, query string, args ...interface{}) ([]entity.Employee, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list employees")
	}
	defer rows.Close()

	employees := []entity.Employee{}
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan employee")
		}
		employees = append(employees, *employee)
	}

	return employees, rows.Err()
}

// Update - частичное обновление; updated_at выставляется автоматически
func (r *EmployeeRepository) Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.Employee, error) {
	setClause, args := buildSetClause(updates)
	if setClause != "" {
		setClause += ", "
	}
	setClause += "updated_at = CURRENT_TIMESTAMP"

	query := `
	UPDATE employees
	SET ` + setClause + `
	WHERE e_id = $` + strconv.Itoa(len(args)+1) + `
	RETURNING ` + employeeColumns
	args = append(args, id)

	employee, err := scanEmployee(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "update employee %d", id)
	}

	return employee, nil
}

// Delete - удаление сотрудника; подчинённые и задачи остаются (FK ON DELETE SET NULL)
func (r *EmployeeRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM employees WHERE e_id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return errors.Wrapf(err, "delete employee %d", id)
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
