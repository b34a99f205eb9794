package main

import (
	"context"
	"fmt"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/St1cky1/task-tracker/internal/infrastructure/auth"
	"github.com/St1cky1/task-tracker/internal/infrastructure/client"
	"github.com/St1cky1/task-tracker/internal/log"
	"github.com/St1cky1/task-tracker/internal/repository"
	"github.com/St1cky1/task-tracker/internal/usecase"
	"github.com/spf13/cobra"
)

var adminFlags struct {
	name        string
	email       string
	designation string
	password    string
}

// createAdminCmd - первый сотрудник с учётной записью ADMIN, без него в систему не войти
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an employee with an ADMIN account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if adminFlags.email == "" || adminFlags.password == "" {
			return fmt.Errorf("--email and --password are required")
		}

		ctx := context.Background()
		if err := runMigrations(cfg); err != nil {
			return err
		}

		pg, err := client.NewPostgresClient(ctx, cfg.Postgres.DSN())
		if err != nil {
			return err
		}
		defer pg.Close()

		employeeRepo := repository.NewEmployeeRepository(pg.GetPool())
		userRepo := repository.NewUserRepository(pg.GetPool())

		employeeService := usecase.NewEmployeeService(employeeRepo, nil, nil, nil)
		userService := usecase.NewUserService(userRepo, employeeRepo, auth.NewPasswordManager(), nil)

		employee, err := employeeService.CreateEmployee(ctx, entity.SystemActor, &entity.CreateEmployeeRequest{
			Name:        adminFlags.name,
			Email:       adminFlags.email,
			Designation: adminFlags.designation,
		})
		if err != nil {
			return err
		}

		_, err = userService.CreateUser(ctx, entity.SystemActor, &entity.CreateUserRequest{
			EmployeeID: employee.ID,
			Role:       entity.RoleAdmin,
			Password:   adminFlags.password,
		})
		if err != nil {
			return err
		}

		log.GetLogger().WithField("e_id", employee.ID).Info("Admin account created")
		fmt.Printf("e_id=%d\n", employee.ID)
		return nil
	},
}

func init() {
	f := createAdminCmd.Flags()
	f.StringVar(&adminFlags.name, "name", "Administrator", "employee name")
	f.StringVar(&adminFlags.email, "email", "", "employee email")
	f.StringVar(&adminFlags.designation, "designation", "Administrator", "employee designation")
	f.StringVar(&adminFlags.password, "password", "", "initial password")
}
