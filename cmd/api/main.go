package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Spok95/foodgram/internal/api"
	"github.com/Spok95/foodgram/internal/auth"
	"github.com/Spok95/foodgram/internal/config"
	"github.com/Spok95/foodgram/internal/domain/ingredients"
	"github.com/Spok95/foodgram/internal/domain/recipes"
	"github.com/Spok95/foodgram/internal/domain/subscriptions"
	"github.com/Spok95/foodgram/internal/domain/tags"
	"github.com/Spok95/foodgram/internal/domain/users"
	"github.com/Spok95/foodgram/internal/infra/cache"
	"github.com/Spok95/foodgram/internal/infra/db"
	httpx "github.com/Spok95/foodgram/internal/infra/http"
	"github.com/Spok95/foodgram/internal/infra/logger"
	"github.com/Spok95/foodgram/internal/infra/media"
	"github.com/Spok95/foodgram/internal/infra/telegram"
)

func newCacheStore(ctx context.Context, cfg config.Config) (cache.Store, func(), error) {
	switch cfg.Cache.Backend {
	case "redis":
		rs, err := cache.NewRedisStore(ctx, cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { _ = rs.Close() }, nil
	case "memory", "":
		return cache.NewMemoryStore(time.Minute), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func newMediaStore(ctx context.Context, cfg config.Config) (media.Store, error) {
	switch cfg.Media.Backend {
	case "s3":
		opts := []func(*awsconfig.LoadOptions) error{}
		if cfg.Media.Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.Media.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		return media.NewS3Store(s3.NewFromConfig(awsCfg), cfg.Media.Bucket, cfg.Media.Prefix, cfg.Media.BaseURL), nil
	case "file", "":
		return media.NewFileStore(cfg.Media.Root, cfg.Media.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Media.Backend)
	}
}

// newNotifier возвращает нотификатор и функцию ожидания его фоновых отправок.
func newNotifier(cfg config.Config, log *slog.Logger) (api.Notifier, func()) {
	if cfg.Telegram.Token == "" {
		return telegram.Noop{}, func() {}
	}
	n, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.AdminChatID, log)
	if err != nil {
		// без уведомлений API работает
		log.Error("telegram init failed", "err", err)
		return telegram.Noop{}, func() {}
	}
	return n, n.Wait
}

func main() {
	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := db.Migrate(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	store, closeStore, err := newCacheStore(ctx, cfg)
	if err != nil {
		log.Error("cache init failed", "backend", cfg.Cache.Backend, "err", err)
		return
	}
	defer closeStore()

	mediaStore, err := newMediaStore(ctx, cfg)
	if err != nil {
		log.Error("media init failed", "backend", cfg.Media.Backend, "err", err)
		return
	}

	var tokens api.TokenVerifier
	if v, err := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer); err == nil {
		tokens = v
	} else {
		log.Warn("auth disabled, every request is anonymous", "err", err)
	}

	notifier, waitNotifier := newNotifier(cfg, log)
	srvAPI := api.New(api.Deps{
		Tags:          tags.NewRepo(pool),
		Ingredients:   ingredients.NewRepo(pool),
		Users:         users.NewRepo(pool),
		Subscriptions: subscriptions.NewRepo(pool),
		Recipes:       recipes.NewRepo(pool),
		Media:         mediaStore,
		Notifier:      notifier,
		Tokens:        tokens,
		Cache:         cache.NewReadThrough(store, cfg.Cache.Timeout, log),
		Log:           log,
		Host:          cfg.App.Host,
		CORSOrigins:   cfg.HTTP.CORSOrigins,
	})

	handler := srvAPI.Routes()
	if cfg.Media.Backend == "file" || cfg.Media.Backend == "" {
		handler = withMedia(handler, cfg.Media.Root)
	}

	srv := httpx.New(cfg.HTTP.Addr, handler, cfg.Metrics.Enabled)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr, "cache", cfg.Cache.Backend, "media", cfg.Media.Backend)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	waitNotifier()
	log.Info("graceful shutdown complete")
}

// withMedia раздаёт локально сохранённые картинки по /media/.
func withMedia(next http.Handler, root string) http.Handler {
	files := http.StripPrefix("/media/", http.FileServer(http.Dir(root)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/media/") {
			files.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
