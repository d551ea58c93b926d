package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/xingye-dev/store-roster/backend/internal/config"
	"github.com/xingye-dev/store-roster/backend/internal/domain"
	"github.com/xingye-dev/store-roster/backend/internal/repository"
	"github.com/xingye-dev/store-roster/backend/internal/schedule"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	engine      *schedule.Engine
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, engine *schedule.Engine, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		engine:      engine,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/employees", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Post("/", h.CreateEmployee)
			r.Get("/", h.GetAllEmployees) // 店员也能看到同事的基本信息，排班表上要显示
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.employeeInfo)
				r.Get("/", h.GetEmployeeInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleManager})).Patch("/", h.UpdateEmployee)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleManager})).Delete("/", h.DeleteEmployee)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Patch("/password", h.UpdateEmployeePassword)
			})
		})

		r.Route("/shift-templates", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Post("/", h.CreateShiftTemplate)
			r.Get("/", h.GetAllShiftTemplates)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shiftTemplate)
				r.Get("/", h.GetShiftTemplate)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Patch("/", h.UpdateShiftTemplate)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Delete("/", h.DeleteShiftTemplate)
			})
		})

		r.Route("/shifts", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Post("/", h.CreateShift)
			r.Get("/", h.GetAllShifts)
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Post("/move", h.MoveAssignment)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shiftInfo)
				r.Get("/", h.GetShift)
				r.Get("/occurrences", h.GetShiftOccurrences)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Patch("/", h.UpdateShift)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Delete("/", h.DeleteShift)
				r.Route("/assignments", func(r chi.Router) {
					r.Use(h.RequiredRole([]domain.Role{domain.RoleManager}))
					r.Post("/", h.AssignEmployee)
					r.Post("/reorder", h.ReorderAssignment)
					r.Delete("/{employeeID}", h.UnassignEmployee)
				})
				r.Post("/substitute", h.RequestSubstitute) // 店员也可以为自己的班次申请替班
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Post("/per-employee-time", h.SetPerEmployeeTime)
			})
		})

		r.Route("/planner", func(r chi.Router) {
			r.Route("/week", func(r chi.Router) {
				r.Get("/", h.GetWeeklyPlan)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Post("/", h.SaveWeeklyPlan)
			})
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Post("/move", h.ApplyPlannerMove)
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Post("/auto-fill", h.AutoFillWeek)
		})

		r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Get("/reports/double-bookings", h.GetDoubleBookings)
		r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Get("/payroll", h.GetPayrollSummary)
	})
}
