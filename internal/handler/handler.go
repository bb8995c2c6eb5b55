package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-oasis/balance-planner/backend/internal/config"
	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
	"github.com/sysu-oasis/balance-planner/backend/internal/repository"
	"github.com/sysu-oasis/balance-planner/backend/internal/runs"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client
	runs        *runs.Registry

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client, registry *runs.Registry) (*Handler, error) {
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
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,
		runs:        registry,

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
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).Delete("/", h.DeleteUser)
			})
		})

		r.Route("/plans", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Post("/", h.CreatePlan)
			r.Get("/", h.GetMyPlans)
			r.Route("/{planID}", func(r chi.Router) {
				r.Use(h.plan)
				r.Get("/", h.GetPlan)
				r.Patch("/", h.UpdatePlan)
				r.Delete("/", h.DeletePlan)
				r.Route("/runs", func(r chi.Router) {
					r.Post("/", h.StartRun)
					r.Get("/", h.GetPlanRuns)
					r.Route("/{runID}", func(r chi.Router) {
						r.Use(h.run)
						r.Get("/", h.GetRun)
						r.Get("/progress", h.GetRunProgress)
						r.Post("/cancel", h.CancelRun)
					})
				})
			})
		})
	})
}
