// Package login реализует HTTP-обработчик выдачи токена доступа.
//
// Учётные данные проверяет middlewarectx.Guard с PasswordStrategy,
// поэтому обработчик получает уже аутентифицированного пользователя
// из контекста запроса и только выпускает для него JWT.
package login

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/auth-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auth-service/internal/http/response"
	"github.com/magabrotheeeer/auth-service/internal/lib/sl"
	"github.com/magabrotheeeer/auth-service/internal/models"
)

// Service описывает выпуск токена для аутентифицированного пользователя.
type Service interface {
	Login(user *models.PublicUser) (*models.AccessToken, error)
}

// Handler обрабатывает HTTP-запросы на вход.
type Handler struct {
	log     *slog.Logger // Логгер для записи операций и ошибок
	service Service      // Сервис аутентификации
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет email и пароль и возвращает JWT для заголовка Authorization.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body middlewarectx.Credentials true "Учетные данные пользователя"
// @Success 201 {object} models.AccessToken "Токен выпущен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("identity not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	user := identity.Public()

	token, err := h.service.Login(user)
	if err != nil {
		log.Error("failed to issue token", slog.Int64("user_id", user.ID), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to issue token"))
		return
	}

	log.Info("login success", slog.Int64("user_id", user.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, token)
}
