// Package middlewarectx содержит HTTP middleware конвейера запросов.
//
// Guard выполняет подключаемую стратегию аутентификации (по паролю или по
// bearer-токену) и при успехе кладёт идентичность пользователя в контекст
// запроса, откуда её явно достаёт обработчик через UserFromContext.
// При ошибке стратегии возвращается 401, 400 или 500 без вызова обработчика.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/auth-service/internal/http/response"
	"github.com/magabrotheeeer/auth-service/internal/lib/sl"
	"github.com/magabrotheeeer/auth-service/internal/models"
)

var (
	// ErrUnauthorized — учётные данные или токен не прошли проверку.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBadRequest — тело запроса не удалось разобрать.
	ErrBadRequest = errors.New("bad request")
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// IdentityKey — ключ аутентифицированной идентичности в контексте.
const IdentityKey Key = "identity"

// Strategy — подключаемый способ получить идентичность из запроса.
type Strategy interface {
	// Name возвращает имя стратегии для логов.
	Name() string
	// Authenticate возвращает идентичность или ошибку, обёрнутую вокруг
	// ErrUnauthorized или ErrBadRequest; прочие ошибки считаются внутренними.
	Authenticate(r *http.Request) (models.Identity, error)
}

// WithIdentity возвращает контекст с идентичностью пользователя.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// UserFromContext достаёт идентичность, положенную Guard.
func UserFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(models.Identity)
	return id, ok && id != nil
}

// Guard возвращает middleware, который пропускает запрос дальше только
// после успешной аутентификации выбранной стратегией.
func Guard(strategy Strategy, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Guard"
			log := log.With(
				slog.String("op", op),
				slog.String("strategy", strategy.Name()),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			id, err := strategy.Authenticate(r)
			switch {
			case err == nil:
			case errors.Is(err, ErrBadRequest):
				log.Error("failed to read credentials", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("invalid request body"))
				return
			case errors.Is(err, ErrUnauthorized):
				log.Info("authentication rejected", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			default:
				log.Error("authentication failed", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
