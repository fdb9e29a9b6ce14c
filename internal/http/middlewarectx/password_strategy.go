package middlewarectx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/magabrotheeeer/auth-service/internal/models"
)

// CredentialsValidator проверяет пару email/пароль.
type CredentialsValidator interface {
	ValidateUser(ctx context.Context, email, password string) (*models.PublicUser, error)
}

// Credentials — учётные данные из тела запроса на вход.
type Credentials struct {
	Email    string `json:"email" example:"alice@x.com"`
	Password string `json:"password" example:"Secret123!"`
}

// PasswordStrategy аутентифицирует запрос по email и паролю из JSON-тела.
type PasswordStrategy struct {
	auth CredentialsValidator
}

// NewPasswordStrategy создаёт стратегию проверки учётных данных.
func NewPasswordStrategy(auth CredentialsValidator) *PasswordStrategy {
	return &PasswordStrategy{auth: auth}
}

// Name возвращает имя стратегии.
func (s *PasswordStrategy) Name() string { return "password" }

// Authenticate разбирает тело и проверяет учётные данные.
// Пустой email или пароль отклоняется без обращения к хранилищу;
// отсутствие пользователя и неверный пароль неразличимы.
func (s *PasswordStrategy) Authenticate(r *http.Request) (models.Identity, error) {
	const op = "middlewarectx.PasswordStrategy"

	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrBadRequest, err)
	}
	if creds.Email == "" || creds.Password == "" {
		return nil, fmt.Errorf("%s: %w: missing credentials", op, ErrUnauthorized)
	}

	user, err := s.auth.ValidateUser(r.Context(), creds.Email, creds.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%s: %w: invalid credentials", op, ErrUnauthorized)
	}
	return user, nil
}
