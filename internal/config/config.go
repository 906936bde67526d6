package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env  string
		Host string // внешний адрес для коротких ссылок
	} `mapstructure:"app"`

	HTTP struct {
		Addr        string
		CORSOrigins []string `mapstructure:"cors_origins"`
	} `mapstructure:"http"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Cache struct {
		Backend string        // memory | redis
		Timeout time.Duration // 0 — кэш выключен
		Redis   struct {
			Addr     string
			Password string
			DB       int
		}
	} `mapstructure:"cache"`

	Media struct {
		Backend string // file | s3
		Root    string
		BaseURL string `mapstructure:"base_url"`
		Bucket  string
		Region  string
		Prefix  string
	} `mapstructure:"media"`

	Auth struct {
		JWTSecret string `mapstructure:"jwt_secret"`
		Issuer    string
	} `mapstructure:"auth"`

	Telegram struct {
		Token       string
		AdminChatID int64 `mapstructure:"admin_chat_id"`
	} `mapstructure:"telegram"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.host", "http://localhost:8080")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.timeout", "5m")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("media.backend", "file")
	v.SetDefault("media.root", "media")
	v.SetDefault("media.base_url", "/media")
	v.SetDefault("media.bucket", "")
	v.SetDefault("media.region", "")
	v.SetDefault("media.prefix", "media")
	// без дефолта viper не увидит ключ в окружении при Unmarshal
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_chat_id", 0)
}

// Load читает YAML-конфиг, поверх него — переменные окружения APP_* (APP_POSTGRES_DSN и т.п.).
// Если рядом лежит .env, он подгружается первым.
func Load(path string) (Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		path = p
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}
