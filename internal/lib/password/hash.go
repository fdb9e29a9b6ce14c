// Package password реализует функции для безопасного хеширования и проверки паролей.
//
// GetHash создает bcrypt-хеш пароля для безопасного хранения.
// CompareHash сравнивает исходный bcrypt-хеш с введённым паролем, проверяя их соответствие.
// Strong проверяет минимальную сложность пароля при регистрации.
package password

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Cost — число раундов bcrypt, с которым хэшируются пароли.
const Cost = 10

// MinLength — минимальная длина пароля для Strong.
const MinLength = 8

// MaxBytes — предел bcrypt: более длинный пароль GetHash не примет.
const MaxBytes = 72

// ErrMismatch возвращается CompareHash, когда пароль не соответствует хэшу.
var ErrMismatch = bcrypt.ErrMismatchedHashAndPassword

// GetHash принимает пароль пользователя и возвращает его bcrypt‑хэш.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// CompareHash сравнивает bcrypt‑хэш с введённым паролем.
//
// Возвращает nil при совпадении, ошибку с ErrMismatch при несовпадении
// и любую другую ошибку, если хэш повреждён.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IsMismatch сообщает, что ошибка CompareHash означает неверный пароль.
func IsMismatch(err error) bool {
	return errors.Is(err, ErrMismatch)
}

// Strong проверяет, что пароль не короче MinLength символов, не длиннее
// MaxBytes байт и содержит строчную и заглавную буквы, цифру и спецсимвол.
func Strong(password string) bool {
	if len([]rune(password)) < MinLength || len(password) > MaxBytes {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}
