// Package validation — обёртка над go-playground/validator с понятными сообщениями
// в формате {"поле": ["сообщение"]}.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Errors — ошибки по полям, как их ждёт фронтенд.
type Errors map[string][]string

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for f, msgs := range e {
		parts = append(parts, f+": "+strings.Join(msgs, ", "))
	}
	return strings.Join(parts, "; ")
}

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return usernameRe.MatchString(s) && !strings.EqualFold(s, "me")
		})
		_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugRe.MatchString(fl.Field().String())
		})
	})
	return validate
}

// Struct возвращает nil или Errors.
func Struct(s any) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := Errors{}
	for _, fe := range verrs {
		out.Add(fieldPath(fe), translate(fe))
	}
	return out
}

// ingredients[0].amount -> ingredients
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}
	if i := strings.IndexAny(ns, ".["); i > 0 {
		return ns[:i]
	}
	return ns
}

var messages = map[string]string{
	"required": "Обязательное поле.",
	"email":    "Введите правильный адрес электронной почты.",
	"username": "Логин содержит недопустимые символы или равен \"me\".",
	"slug":     "Слаг содержит недопустимые символы.",
	"unique":   "Значения не должны повторяться.",
}

func translate(fe validator.FieldError) string {
	if m, ok := messages[fe.Tag()]; ok {
		return m
	}
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "min", "gte":
		if isString {
			return fmt.Sprintf("Не меньше %s символов.", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return "Список не может быть пустым."
		}
		return fmt.Sprintf("Убедитесь, что значение больше либо равно %s.", fe.Param())
	case "max", "lte":
		if isString {
			return fmt.Sprintf("Не больше %s символов.", fe.Param())
		}
		return fmt.Sprintf("Убедитесь, что значение меньше либо равно %s.", fe.Param())
	default:
		return fmt.Sprintf("Неверное значение (%s).", fe.Tag())
	}
}
