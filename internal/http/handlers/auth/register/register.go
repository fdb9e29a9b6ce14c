// Package register реализует HTTP-обработчик регистрации пользователя.
//
// Тело запроса декодируется в Request и проверяется валидатором до вызова
// сервиса: обязательные поля, длины, формат email и сложность пароля.
// При успехе возвращается 201 с публичным представлением пользователя,
// при занятом username или email — 409.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/auth-service/internal/http/response"
	"github.com/magabrotheeeer/auth-service/internal/lib/password"
	"github.com/magabrotheeeer/auth-service/internal/lib/sl"
	"github.com/magabrotheeeer/auth-service/internal/models"
	authservice "github.com/magabrotheeeer/auth-service/internal/services/auth"
)

// Request — входные данные для регистрации.
type Request struct {
	Username string `json:"username" validate:"required,max=50" example:"alice"`
	Email    string `json:"email" validate:"required,email,max=100" example:"alice@x.com"`
	Password string `json:"password" validate:"required,password" example:"Secret123!"`
	FullName string `json:"fullName" validate:"required,max=100" example:"Alice A"`
}

// Service описывает бизнес-логику регистрации.
type Service interface {
	Register(ctx context.Context, data models.NewUser) (*models.PublicUser, error)
}

// Handler обрабатывает HTTP-запросы на регистрацию.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис аутентификации
	validate *validator.Validate // Валидатор с правилом password
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: NewValidator(),
	}
}

// NewValidator возвращает валидатор, который называет поля по JSON-тегам
// и знает правило password (см. password.Strong).
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// регистрация встроенного имени не может вернуть ошибку
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return password.Strong(fl.Field().String())
	})
	return v
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создаёт пользователя с уникальными username и email. Пароль хранится только в виде bcrypt-хэша.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные нового пользователя"
// @Success 201 {object} models.PublicUser "Пользователь создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ошибка валидации"
// @Failure 409 {object} response.ErrorResponse "Username или email уже заняты"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("username", req.Username))

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request body"))
			return
		}
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	user, err := h.service.Register(r.Context(), models.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		if errors.Is(err, authservice.ErrUserExists) {
			log.Info("user already exists", slog.String("username", req.Username))
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error("username or email already exists"))
			return
		}
		log.Error("registration failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to register user"))
		return
	}

	log.Info("user registered", slog.Int64("user_id", user.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, user)
}
