// Package events публикует доменные события сервиса аутентификации в RabbitMQ.
package events

import (
	"fmt"
	"time"

	"github.com/magabrotheeeer/auth-service/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/auth-service/internal/models"
)

// RoutingKeyUserRegistered — ключ маршрутизации события регистрации.
const RoutingKeyUserRegistered = "user.registered"

// UserRegistered — событие о новом пользователе. Хэш пароля не передаётся.
type UserRegistered struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
}

// Publisher отправляет события в exchange через канал RabbitMQ.
type Publisher struct {
	ch       rabbitmq.Channel
	exchange string
}

// NewPublisher создаёт Publisher поверх открытого канала.
func NewPublisher(ch rabbitmq.Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// UserRegistered публикует событие о регистрации пользователя.
func (p *Publisher) UserRegistered(user *models.PublicUser) error {
	const op = "events.UserRegistered"
	event := UserRegistered{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt,
	}
	if err := rabbitmq.PublishMessage(p.ch, p.exchange, RoutingKeyUserRegistered, event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Noop — публикатор, который ничего не отправляет. Используется, когда брокер не настроен.
type Noop struct{}

// UserRegistered ничего не делает.
func (Noop) UserRegistered(*models.PublicUser) error { return nil }
