package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// base64-картинки бывают большими
const maxBody = 10 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"detail":"encode error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &detailError{status: http.StatusRequestEntityTooLarge, msg: "Слишком большой запрос."}
		}
		return badRequest("Некорректный JSON.")
	}
	return nil
}

// idParam: нечисловой id — это просто несуществующая страница.
func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errNotFound
	}
	return id, nil
}

const (
	defaultPageSize = 6
	maxPageSize     = 100
)

type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

type pager struct {
	page, limit int
}

func (p pager) offset() int { return (p.page - 1) * p.limit }

// parsePager читает page и limit. Кривой page — 404, кривой limit — размер по умолчанию.
func parsePager(q url.Values) (pager, error) {
	p := pager{page: 1, limit: defaultPageSize}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, errNotFound
		}
		p.page = n
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.limit = min(n, maxPageSize)
		}
	}
	return p, nil
}

// paginate собирает страницу; страница за пределами списка — 404.
func paginate[T any](host, path string, q url.Values, p pager, count int, results []T) (Page[T], error) {
	if p.page > 1 && p.offset() >= count {
		return Page[T]{}, errNotFound
	}
	page := Page[T]{Count: count, Results: results}
	if page.Results == nil {
		page.Results = []T{}
	}
	link := func(n int) *string {
		qq := url.Values{}
		for k, v := range q {
			qq[k] = v
		}
		if n == 1 {
			qq.Del("page")
		} else {
			qq.Set("page", strconv.Itoa(n))
		}
		s := host + path
		if enc := qq.Encode(); enc != "" {
			s += "?" + enc
		}
		return &s
	}
	if p.page*p.limit < count {
		page.Next = link(p.page + 1)
	}
	if p.page > 1 {
		page.Previous = link(p.page - 1)
	}
	return page, nil
}

// positiveParam: отсутствующий параметр — 0, иначе целое > 0.
func positiveParam(q url.Values, name string) (int, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fieldError(name, "Введите целое положительное число.")
	}
	return n, nil
}
