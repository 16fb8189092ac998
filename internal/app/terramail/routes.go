package terramail

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/terramail/terramail-backend/internal/http/handlers/attempts"
	"github.com/terramail/terramail-backend/internal/http/handlers/auth/login"
	"github.com/terramail/terramail-backend/internal/http/handlers/auth/register"
	"github.com/terramail/terramail-backend/internal/http/handlers/health"
	"github.com/terramail/terramail-backend/internal/http/handlers/plan/plancreate"
	"github.com/terramail/terramail-backend/internal/http/handlers/plan/planlist"
	"github.com/terramail/terramail-backend/internal/http/handlers/plan/planlistall"
	"github.com/terramail/terramail-backend/internal/http/handlers/plan/planremove"
	"github.com/terramail/terramail-backend/internal/http/handlers/plan/planupdate"
	"github.com/terramail/terramail-backend/internal/http/handlers/purchase/purchasecreate"
	"github.com/terramail/terramail-backend/internal/http/handlers/purchase/purchaselist"
	"github.com/terramail/terramail-backend/internal/http/handlers/session/sessionget"
	"github.com/terramail/terramail-backend/internal/http/handlers/session/sessionupdate"
	statshandler "github.com/terramail/terramail-backend/internal/http/handlers/stats"
	"github.com/terramail/terramail-backend/internal/http/handlers/user/userban"
	"github.com/terramail/terramail-backend/internal/http/handlers/user/usercreate"
	"github.com/terramail/terramail-backend/internal/http/handlers/user/userget"
	"github.com/terramail/terramail-backend/internal/http/handlers/user/userlist"
	"github.com/terramail/terramail-backend/internal/http/handlers/user/userremove"
	"github.com/terramail/terramail-backend/internal/http/handlers/user/userupdate"
	"github.com/terramail/terramail-backend/internal/http/middlewarectx"
	"github.com/terramail/terramail-backend/internal/lib/jwt"
	accountservice "github.com/terramail/terramail-backend/internal/services/account"
	authservice "github.com/terramail/terramail-backend/internal/services/auth"
	planservice "github.com/terramail/terramail-backend/internal/services/plan"
	sessionservice "github.com/terramail/terramail-backend/internal/services/session"
	statsservice "github.com/terramail/terramail-backend/internal/services/stats"
	throttleservice "github.com/terramail/terramail-backend/internal/services/throttle"
)

// Services объединяет сервисы, нужные маршрутизатору.
type Services struct {
	Auth     *authservice.AuthService
	Account  *accountservice.AccountService
	Session  *sessionservice.SessionService
	Plan     *planservice.PlanService
	Stats    *statsservice.StatsService
	Throttle *throttleservice.Service
	Pinger   health.Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services, jwtMaker jwt.Maker) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, s.Auth).ServeHTTP)
		r.Get("/health", health.New(logger, s.Pinger).ServeHTTP)
		r.Get("/plans", planlist.New(logger, s.Plan).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/sessions/{userID}", sessionget.New(logger, s.Session).ServeHTTP)
			r.Put("/sessions/{id}", sessionupdate.New(logger, s.Session).ServeHTTP)
			r.Get("/purchases/{userID}", purchaselist.New(logger, s.Account).ServeHTTP)

			// Административные конечные точки
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Post("/users", usercreate.New(logger, s.Account).ServeHTTP)
				r.Get("/users", userlist.New(logger, s.Account).ServeHTTP)
				r.Get("/users/{userID}", userget.New(logger, s.Account).ServeHTTP)
				r.Put("/users/{userID}", userupdate.New(logger, s.Account).ServeHTTP)
				r.Post("/users/{userID}/ban", userban.New(logger, s.Account).ServeHTTP)
				r.Delete("/users/{userID}", userremove.New(logger, s.Account).ServeHTTP)
				r.Get("/plans/all", planlistall.New(logger, s.Plan).ServeHTTP)
				r.Post("/plans", plancreate.New(logger, s.Plan).ServeHTTP)
				r.Put("/plans/{id}", planupdate.New(logger, s.Plan).ServeHTTP)
				r.Delete("/plans/{id}", planremove.New(logger, s.Plan).ServeHTTP)
				r.Post("/purchases", purchasecreate.New(logger, s.Account).ServeHTTP)
				r.Get("/stats", statshandler.New(logger, s.Stats).ServeHTTP)
				r.Get("/attempts", attempts.New(logger, s.Throttle).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
