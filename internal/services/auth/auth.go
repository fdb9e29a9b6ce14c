// Package services содержит бизнес-логику аутентификации: проверку учётных
// данных, выпуск токенов доступа и регистрацию пользователей.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/auth-service/internal/lib/jwt"
	"github.com/magabrotheeeer/auth-service/internal/lib/password"
	"github.com/magabrotheeeer/auth-service/internal/lib/sl"
	"github.com/magabrotheeeer/auth-service/internal/models"
	"github.com/magabrotheeeer/auth-service/internal/storage"
)

// ErrUserExists — username или email уже заняты.
var ErrUserExists = errors.New("user already exists")

// UserRepository описывает контракт хранилища учётных записей.
type UserRepository interface {
	// GetUserByEmail возвращает пользователя по email или storage.ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// FindUsersByUsernameOrEmail возвращает всех пользователей с совпадающим username или email.
	FindUsersByUsernameOrEmail(ctx context.Context, username, email string) ([]models.User, error)

	// CreateUser сохраняет пользователя; нарушение уникальности — storage.ErrUserExists.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
}

// EventPublisher публикует события о новых пользователях.
type EventPublisher interface {
	UserRegistered(user *models.PublicUser) error
}

// AuthService отвечает за регистрацию, проверку учётных данных и выпуск токенов.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	events   EventPublisher
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, events EventPublisher, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		events:   events,
		log:      log,
	}
}

// ValidateUser ищет пользователя по email и сверяет пароль с хэшем.
//
// Возвращает (nil, nil), если пользователя нет или пароль не совпал:
// вызывающая сторона не должна различать эти случаи.
func (s *AuthService) ValidateUser(ctx context.Context, email, rawPassword string) (*models.PublicUser, error) {
	const op = "services.auth.ValidateUser"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if password.IsMismatch(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user.Public(), nil
}

// Login выпускает токен доступа для уже проверенного пользователя.
// Хранилище не используется.
func (s *AuthService) Login(user *models.PublicUser) (*models.AccessToken, error) {
	const op = "services.auth.Login"

	token, err := s.jwtMaker.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.AccessToken{AccessToken: token}, nil
}

// Register создаёт нового пользователя с хэшированным паролем.
//
// Уникальность username и email окончательно проверяет хранилище:
// его нарушение тоже возвращается как ErrUserExists.
func (s *AuthService) Register(ctx context.Context, data models.NewUser) (*models.PublicUser, error) {
	const op = "services.auth.Register"
	log := sl.Op(s.log, op)

	existing, err := s.users.FindUsersByUsernameOrEmail(ctx, data.Username, data.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrUserExists)
	}

	hashed, err := password.GetHash(data.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.users.CreateUser(ctx, models.User{
		Username:     data.Username,
		Email:        data.Email,
		PasswordHash: hashed,
		FullName:     data.FullName,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	public := created.Public()
	if err := s.events.UserRegistered(public); err != nil {
		log.Warn("failed to publish user registered event", slog.Int64("user_id", public.ID), sl.Err(err))
	}

	log.Info("user registered", slog.Int64("user_id", public.ID))
	return public, nil
}
