// Package models содержит доменную модель пользователя сервиса аутентификации,
// её публичное представление и DTO ответов.
// Хэш пароля живёт только внутри User и никогда не попадает в ответы.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           int64     // Уникальный идентификатор, назначается хранилищем
	Username     string    // Имя пользователя (уникальное)
	Email        string    // Электронная почта (уникальная)
	PasswordHash string    `json:"-"` // bcrypt-хэш пароля
	FullName     string    // Полное имя
	CreatedAt    time.Time // Дата создания
	UpdatedAt    time.Time // Дата последнего обновления
}

// PublicUser — представление пользователя для ответов API.
// Не содержит хэша пароля и даты обновления.
type PublicUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUser — данные для регистрации нового пользователя.
type NewUser struct {
	Username string
	Email    string
	Password string
	FullName string
}

// AccessToken — ответ на успешный вход.
type AccessToken struct {
	AccessToken string `json:"access_token"`
}

// Identity — аутентифицированный субъект запроса, который guard кладёт в контекст.
type Identity interface {
	Public() *PublicUser
}

// Public строит новое публичное представление пользователя.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
	}
}

// Public возвращает копию публичного представления.
func (p *PublicUser) Public() *PublicUser {
	cp := *p
	return &cp
}
