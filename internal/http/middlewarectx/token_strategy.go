package middlewarectx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/magabrotheeeer/auth-service/internal/lib/jwt"
	"github.com/magabrotheeeer/auth-service/internal/models"
	"github.com/magabrotheeeer/auth-service/internal/storage"
)

// UserProvider загружает пользователя по ID.
type UserProvider interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// TokenStrategy аутентифицирует запрос по bearer-токену из заголовка Authorization.
type TokenStrategy struct {
	jwtMaker jwt.Maker
	users    UserProvider
}

// NewTokenStrategy создаёт стратегию проверки bearer-токена.
func NewTokenStrategy(jwtMaker jwt.Maker, users UserProvider) *TokenStrategy {
	return &TokenStrategy{jwtMaker: jwtMaker, users: users}
}

// Name возвращает имя стратегии.
func (s *TokenStrategy) Name() string { return "bearer" }

// Authenticate проверяет подпись и срок действия токена и загружает
// пользователя по subject. В контекст кладётся полная запись пользователя.
func (s *TokenStrategy) Authenticate(r *http.Request) (models.Identity, error) {
	const op = "middlewarectx.TokenStrategy"

	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return nil, fmt.Errorf("%s: %w: missing or invalid authorization header", op, ErrUnauthorized)
	}

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrUnauthorized, err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrUnauthorized, err)
	}

	user, err := s.users.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w: unknown subject", op, ErrUnauthorized)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
