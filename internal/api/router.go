package api

import (
	"github.com/St1cky1/task-tracker/internal/api/handlers"
	mw "github.com/St1cky1/task-tracker/internal/api/middleware"
	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services - всё, что нужно роутеру
type Services struct {
	Auth      handlers.AuthUsecase
	Users     handlers.UserUsecase
	Employees handlers.EmployeeUsecase
	Tasks     handlers.TaskUsecase
	Remarks   handlers.RemarkUsecase
	Tokens    mw.TokenVerifier
	Health    map[string]handlers.HealthChecker
}

func NewRouter(s Services) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(mw.Metrics)

	authHandler := handlers.NewAuthHandler(s.Auth)
	userHandler := handlers.NewUserHandler(s.Users)
	employeeHandler := handlers.NewEmployeeHandler(s.Employees)
	taskHandler := handlers.NewTaskHandler(s.Tasks)
	remarkHandler := handlers.NewRemarkHandler(s.Remarks)
	healthHandler := handlers.NewHealthHandler(s.Health)

	admin := mw.RequireRole(handlers.WriteError, entity.RoleAdmin)
	managers := mw.RequireRole(handlers.WriteError, entity.RoleAdmin, entity.RoleManager)
	managerOnly := mw.RequireRole(handlers.WriteError, entity.RoleManager)

	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/reset-password", authHandler.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(s.Tokens, handlers.WriteError))

			r.Post("/change-password", authHandler.ChangePassword)

			r.Route("/users", func(r chi.Router) {
				r.Use(admin)
				r.Post("/", userHandler.CreateUser)
				r.Get("/", userHandler.ListUsers)
				r.Get("/{id}", userHandler.GetUser)
				r.Put("/{id}", userHandler.UpdateUser)
				r.Delete("/{id}", userHandler.DeleteUser)
			})

			r.Route("/employees", func(r chi.Router) {
				r.With(admin).Post("/", employeeHandler.CreateEmployee)
				r.With(admin).Get("/", employeeHandler.ListEmployees)
				r.With(managerOnly).Get("/me", employeeHandler.MyEmployees)
				r.Route("/{id}", func(r chi.Router) {
					r.With(admin).Get("/", employeeHandler.GetEmployee)
					r.With(admin).Put("/", employeeHandler.UpdateEmployee)
					r.With(admin).Delete("/", employeeHandler.DeleteEmployee)
					r.With(managers).Post("/profile-picture", employeeHandler.UploadProfilePicture)
					r.Get("/profile-picture", employeeHandler.GetProfilePicture)
				})
			})

			r.Route("/tasks", func(r chi.Router) {
				r.With(managers).Post("/", taskHandler.CreateTask)
				r.Get("/", taskHandler.ListTasks)
				r.With(managers).Get("/status/{status}", taskHandler.ListTasksByStatus)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", taskHandler.GetTask)
					r.Patch("/", taskHandler.UpdateTask)
					r.With(managers).Put("/assign", taskHandler.AssignTask)
					r.With(managers).Delete("/", taskHandler.DeleteTask)
				})
			})

			r.Route("/remarks", func(r chi.Router) {
				r.Post("/", remarkHandler.CreateRemark)
				r.Post("/with-file", remarkHandler.CreateRemarkWithFile)
				r.Get("/task/{id}", remarkHandler.ListRemarks)
				r.Put("/{id}", remarkHandler.UpdateRemark)
				r.With(managers).Delete("/{id}", remarkHandler.DeleteRemark)
			})

			r.Get("/files/{id}", remarkHandler.DownloadFile)
		})
	})

	return r
}
