package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrWrongPassword   = errors.New("auth: wrong password")
	ErrPasswordTooLong = errors.New("auth: password longer than 72 bytes")
)

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}
