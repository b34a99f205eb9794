package usecase

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// иерархия: 1 <- 2 <- 3 (3 подчиняется 2, 2 подчиняется 1)
func hierarchy() []entity.Employee {
	return []entity.Employee{
		{ID: 1, Name: "CEO", Email: "ceo@example.com"},
		{ID: 2, Name: "Lead", Email: "lead@example.com", ManagerID: intPtr(1)},
		{ID: 3, Name: "Dev", Email: "dev@example.com", ManagerID: intPtr(2)},
		{ID: 4, Name: "Solo", Email: "solo@example.com"},
	}
}

func newHierarchyRepo(updated *map[string]interface{}) *MockEmployeeRepository {
	employees := hierarchy()
	return &MockEmployeeRepository{
		GetByIDFunc: employeesByID(employees...),
		GetByEmailFunc: func(ctx context.Context, email string) (*entity.Employee, error) {
			for i := range employees {
				if strings.EqualFold(employees[i].Email, email) {
					e := employees[i]
					return &e, nil
				}
			}
			return nil, nil
		},
		CreateFunc: func(ctx context.Context, req *entity.CreateEmployeeRequest) (*entity.Employee, error) {
			return &entity.Employee{ID: 10, Name: req.Name, Email: req.Email, Designation: req.Designation, ManagerID: req.ManagerID}, nil
		},
		UpdateFunc: func(ctx context.Context, id int, u map[string]interface{}) (*entity.Employee, error) {
			if updated != nil {
				*updated = u
			}
			return &entity.Employee{ID: id}, nil
		},
	}
}

func TestCreateEmployee(t *testing.T) {
	audit := &MockAuditLogRepository{}
	svc := NewEmployeeService(newHierarchyRepo(nil), &MockProfilePictureRepository{}, &MockFileStorage{}, NewAuditRecorder(nil, audit))
	ctx := context.Background()

	employee, err := svc.CreateEmployee(ctx, 1, &entity.CreateEmployeeRequest{
		Name:        " New ",
		Email:       "new@example.com",
		Designation: "QA",
		ManagerID:   intPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, "New", employee.Name)
	assert.Equal(t, []string{entity.ActionCreateEmployee}, audit.Actions())

	_, err = svc.CreateEmployee(ctx, 1, &entity.CreateEmployeeRequest{Name: "X", Email: "DEV@example.com", Designation: "QA"})
	assert.ErrorIs(t, err, entity.ErrEmailTaken)

	_, err = svc.CreateEmployee(ctx, 1, &entity.CreateEmployeeRequest{Name: "X", Email: "x@example.com", Designation: "QA", ManagerID: intPtr(99)})
	assert.ErrorIs(t, err, entity.ErrManagerNotFound)

	// 0 - без менеджера
	_, err = svc.CreateEmployee(ctx, 1, &entity.CreateEmployeeRequest{Name: "X", Email: "x@example.com", Designation: "QA", ManagerID: intPtr(0)})
	assert.NoError(t, err)
}

func TestUpdateEmployeeManagerCycle(t *testing.T) {
	tests := []struct {
		name      string
		id        int
		managerID int
		want      error
	}{
		{"self", 2, 2, entity.ErrManagerCycle},
		{"direct report", 2, 3, entity.ErrManagerCycle},
		{"indirect report", 1, 3, entity.ErrManagerCycle},
		{"unrelated", 4, 3, nil},
		{"move up", 3, 1, nil},
		{"missing manager", 3, 99, entity.ErrManagerNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var updates map[string]interface{}
			svc := NewEmployeeService(newHierarchyRepo(&updates), &MockProfilePictureRepository{}, &MockFileStorage{}, nil)

			_, err := svc.UpdateEmployee(context.Background(), 1, tt.id, &entity.UpdateEmployeeRequest{ManagerID: intPtr(tt.managerID)})
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				assert.Nil(t, updates)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.managerID, updates["mgr_id"])
		})
	}
}

func TestUpdateEmployeeClearsManagerAndChecksEmail(t *testing.T) {
	var updates map[string]interface{}
	svc := NewEmployeeService(newHierarchyRepo(&updates), &MockProfilePictureRepository{}, &MockFileStorage{}, nil)
	ctx := context.Background()

	_, err := svc.UpdateEmployee(ctx, 1, 3, &entity.UpdateEmployeeRequest{ManagerID: intPtr(0)})
	require.NoError(t, err)
	v, ok := updates["mgr_id"]
	assert.True(t, ok)
	assert.Nil(t, v)

	// свой же адрес в другом регистре не считается занятым
	_, err = svc.UpdateEmployee(ctx, 1, 3, &entity.UpdateEmployeeRequest{Email: strPtr("Dev@Example.com")})
	require.NoError(t, err)

	_, err = svc.UpdateEmployee(ctx, 1, 3, &entity.UpdateEmployeeRequest{Email: strPtr("lead@example.com")})
	assert.ErrorIs(t, err, entity.ErrEmailTaken)

	_, err = svc.UpdateEmployee(ctx, 1, 3, &entity.UpdateEmployeeRequest{})
	assert.ErrorIs(t, err, entity.ErrNoFieldsToUpdate)

	_, err = svc.UpdateEmployee(ctx, 1, 99, &entity.UpdateEmployeeRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, entity.ErrEmployeeNotFound)
}

func TestUploadProfilePicture(t *testing.T) {
	var current *entity.ProfilePicture
	pictures := &MockProfilePictureRepository{
		GetByEmployeeIDFunc: func(ctx context.Context, employeeID int) (*entity.ProfilePicture, error) {
			return current, nil
		},
		SaveFunc: func(ctx context.Context, picture *entity.ProfilePicture) (*entity.ProfilePicture, error) {
			current = picture
			return picture, nil
		},
	}
	files := &MockFileStorage{}
	audit := &MockAuditLogRepository{}
	svc := NewEmployeeService(newHierarchyRepo(nil), pictures, files, NewAuditRecorder(nil, audit))
	ctx := context.Background()

	png := &entity.Attachment{FileName: "me.png", ContentType: "image/png", Data: []byte("png-data")}
	first, err := svc.UploadProfilePicture(ctx, 3, 3, png)
	require.NoError(t, err)
	assert.Equal(t, len("png-data"), first.FileSize)

	second, err := svc.UploadProfilePicture(ctx, 3, 3, &entity.Attachment{FileName: "me.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")})
	require.NoError(t, err)
	assert.NotEqual(t, first.FileID, second.FileID)
	assert.Equal(t, []string{first.FileID}, files.deleted)

	meta, reader, err := svc.GetProfilePicture(ctx, 3)
	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))
	assert.Equal(t, "image/jpeg", meta.ContentType)

	assert.Equal(t, []string{entity.ActionUploadProfilePicture, entity.ActionUploadProfilePicture}, audit.Actions())
}

func TestUploadProfilePictureRejects(t *testing.T) {
	svc := NewEmployeeService(newHierarchyRepo(nil), &MockProfilePictureRepository{}, &MockFileStorage{}, nil)
	ctx := context.Background()

	_, err := svc.UploadProfilePicture(ctx, 3, 3, &entity.Attachment{FileName: "a.txt", ContentType: "text/plain", Data: []byte("x")})
	assert.ErrorIs(t, err, entity.ErrInvalidFile)

	_, err = svc.UploadProfilePicture(ctx, 3, 3, &entity.Attachment{FileName: "a.png", ContentType: "image/png"})
	assert.ErrorIs(t, err, entity.ErrInvalidFile)

	big := bytes.Repeat([]byte{1}, MaxProfilePictureSize+1)
	_, err = svc.UploadProfilePicture(ctx, 3, 3, &entity.Attachment{FileName: "a.png", ContentType: "image/png", Data: big})
	assert.ErrorIs(t, err, entity.ErrFileTooLarge)

	_, err = svc.UploadProfilePicture(ctx, 3, 99, &entity.Attachment{FileName: "a.png", ContentType: "image/png", Data: []byte("x")})
	assert.ErrorIs(t, err, entity.ErrEmployeeNotFound)

	_, _, err = svc.GetProfilePicture(ctx, 3)
	assert.ErrorIs(t, err, entity.ErrFileNotFound)
}

func TestDeleteEmployeeRemovesPicture(t *testing.T) {
	deleted := 0
	employees := newHierarchyRepo(nil)
	employees.DeleteFunc = func(ctx context.Context, id int) error {
		deleted = id
		return nil
	}
	pictures := &MockProfilePictureRepository{
		GetByEmployeeIDFunc: func(ctx context.Context, employeeID int) (*entity.ProfilePicture, error) {
			return &entity.ProfilePicture{EmployeeID: employeeID, FileID: "file-9"}, nil
		},
	}
	files := &MockFileStorage{}
	svc := NewEmployeeService(employees, pictures, files, nil)

	require.NoError(t, svc.DeleteEmployee(context.Background(), 1, 4))
	assert.Equal(t, 4, deleted)
	assert.Equal(t, []string{"file-9"}, files.deleted)

	assert.ErrorIs(t, svc.DeleteEmployee(context.Background(), 1, 99), entity.ErrEmployeeNotFound)
}
