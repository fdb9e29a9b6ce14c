package auth

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация спецификации Swagger для /docs.
	_ "github.com/magabrotheeeer/auth-service/docs"
	"github.com/magabrotheeeer/auth-service/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/auth-service/internal/http/handlers/auth/profile"
	"github.com/magabrotheeeer/auth-service/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/auth-service/internal/http/handlers/health"
	"github.com/magabrotheeeer/auth-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auth-service/internal/lib/jwt"
	"github.com/magabrotheeeer/auth-service/internal/models"
)

// Service — операции сервиса аутентификации, нужные маршрутам.
type Service interface {
	Register(ctx context.Context, data models.NewUser) (*models.PublicUser, error)
	Login(user *models.PublicUser) (*models.AccessToken, error)
	ValidateUser(ctx context.Context, email, password string) (*models.PublicUser, error)
}

// UserStore — операции хранилища, нужные маршрутам.
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	Ping(ctx context.Context) error
}

// Deps — зависимости маршрутов.
type Deps struct {
	Logger   *slog.Logger
	Service  Service
	Users    UserStore
	JWTMaker jwt.Maker
	Registry *prometheus.Registry
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	metrics := middlewarectx.NewMetrics(d.Registry)

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		metrics.Middleware,
	)

	passwordGuard := middlewarectx.Guard(middlewarectx.NewPasswordStrategy(d.Service), d.Logger)
	tokenGuard := middlewarectx.Guard(middlewarectx.NewTokenStrategy(d.JWTMaker, d.Users), d.Logger)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", register.New(d.Logger, d.Service).ServeHTTP)
		r.With(passwordGuard).Post("/login", login.New(d.Logger, d.Service).ServeHTTP)
		r.With(tokenGuard).Get("/profile", profile.New(d.Logger).ServeHTTP)
	})

	r.Get("/health", health.New(d.Logger, d.Users).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{Registry: d.Registry}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
