package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Spok95/foodgram/internal/auth"
	"github.com/Spok95/foodgram/internal/domain/users"
	"github.com/Spok95/foodgram/internal/infra/metrics"
)

type ctxKey struct{}

func withViewer(ctx context.Context, u *users.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func viewer(r *http.Request) *users.User {
	u, _ := r.Context().Value(ctxKey{}).(*users.User)
	return u
}

func viewerID(r *http.Request) int64 {
	if u := viewer(r); u != nil {
		return u.ID
	}
	return 0
}

// authenticate: без заголовка или с чужой схемой — аноним, с плохим токеном — 401.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.tokens == nil {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := auth.FromHeader(r.Header.Get("Authorization"))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		id, err := s.tokens.Verify(token)
		if err != nil {
			s.log.Debug("token rejected", "err", err)
			s.fail(w, r, err)
			return
		}
		u, err := s.users.GetByID(r.Context(), id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if u == nil {
			s.fail(w, r, auth.ErrInvalidToken)
			return
		}
		next.ServeHTTP(w, r.WithContext(withViewer(r.Context(), u)))
	})
}

// observe пишет лог и метрики по каждому запросу.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		metrics.RecordRequest(r.Method, route, strconv.Itoa(status), d)

		log := s.log.Info
		if status >= http.StatusInternalServerError {
			log = s.log.Error
		}
		log("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration_ms", d.Milliseconds(),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}
