package api

import (
	"errors"
	"net/http"

	"github.com/Spok95/foodgram/internal/auth"
	"github.com/Spok95/foodgram/internal/domain/recipes"
	"github.com/Spok95/foodgram/internal/domain/subscriptions"
	"github.com/Spok95/foodgram/internal/domain/users"
	"github.com/Spok95/foodgram/internal/infra/media"
	"github.com/Spok95/foodgram/internal/validation"
)

var (
	errNotFound         = errors.New("api: not found")
	errUnauthorized     = errors.New("api: authentication required")
	errForbidden        = errors.New("api: forbidden")
	errMethodNotAllowed = errors.New("api: method not allowed")
)

// detailError — ошибка с готовым текстом для клиента.
type detailError struct {
	status int
	msg    string
}

func (e *detailError) Error() string { return e.msg }

func badRequest(msg string) error { return &detailError{status: http.StatusBadRequest, msg: msg} }

type mapped struct {
	err    error
	status int
	msg    string
}

// Единственное место, где доменные ошибки превращаются в HTTP-статусы.
var errorTable = []mapped{
	{errNotFound, http.StatusNotFound, "Страница не найдена."},
	{errUnauthorized, http.StatusUnauthorized, "Учетные данные не были предоставлены."},
	{auth.ErrInvalidToken, http.StatusUnauthorized, "Недопустимый токен."},
	{errForbidden, http.StatusForbidden, "У вас недостаточно прав для выполнения данного действия."},
	{errMethodNotAllowed, http.StatusMethodNotAllowed, "Метод не разрешён."},
	{recipes.ErrAlreadyFavorited, http.StatusBadRequest, "Рецепт уже в избранном."},
	{recipes.ErrAlreadyInCart, http.StatusBadRequest, "Рецепт уже в списке покупок."},
	{subscriptions.ErrSelf, http.StatusBadRequest, "Нельзя подписаться на самого себя."},
	{subscriptions.ErrAlreadySubscribed, http.StatusBadRequest, "Вы уже подписаны на этого пользователя."},
	{users.ErrTaken, http.StatusBadRequest, "Пользователь с таким email или username уже существует."},
	{media.ErrBadImage, http.StatusBadRequest, "Некорректное изображение."},
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusBadRequest, verrs)
		return
	}
	var de *detailError
	if errors.As(err, &de) {
		writeJSON(w, de.status, detail(de.msg))
		return
	}
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			writeJSON(w, m.status, detail(m.msg))
			return
		}
	}
	s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	writeJSON(w, http.StatusInternalServerError, detail("Внутренняя ошибка сервера."))
}

func detail(msg string) map[string]string { return map[string]string{"detail": msg} }

func fieldError(field, msg string) error {
	return validation.Errors{field: {msg}}
}
