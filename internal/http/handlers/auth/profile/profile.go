// Package profile реализует HTTP-обработчик профиля текущего пользователя.
package profile

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/auth-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auth-service/internal/http/response"
)

// Handler отдаёт профиль пользователя, аутентифицированного по bearer-токену.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Профиль пользователя
// @Description Возвращает публичные данные пользователя, которому выпущен токен.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} models.PublicUser "Профиль"
// @Failure 401 {object} response.ErrorResponse "Токен отсутствует, неверен или истёк"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/profile [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.profile"

	identity, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		h.log.Error("identity not found in context",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, identity.Public())
}
