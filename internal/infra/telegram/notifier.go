package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/foodgram/internal/infra/metrics"
)

// SendTimeout ограничивает один запрос к Telegram API.
const SendTimeout = 5 * time.Second

// Notifier шлёт оповещения о новых рецептах в админ-чат.
// Отправка идёт в фоне, RecipePublished не ждёт ответа Telegram.
type Notifier struct {
	api       *tgbotapi.BotAPI
	log       *slog.Logger
	adminChat int64
	wg        sync.WaitGroup
}

func New(token string, adminChatID int64, log *slog.Logger) (*Notifier, error) {
	return NewWithEndpoint(token, tgbotapi.APIEndpoint, adminChatID, log, &http.Client{Timeout: SendTimeout})
}

func NewWithEndpoint(token, endpoint string, adminChatID int64, log *slog.Logger, client *http.Client) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Notifier{api: api, log: log, adminChat: adminChatID}, nil
}

func (n *Notifier) RecipePublished(_ context.Context, name, link string) {
	if n.adminChat == 0 {
		return
	}
	text := fmt.Sprintf("🍲 Новый рецепт: %s\n%s", name, link)
	msg := tgbotapi.NewMessage(n.adminChat, text)
	msg.DisableWebPagePreview = true

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.send(msg)
	}()
}

// Wait дожидается фоновых отправок, вызывается при остановке.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) send(msg tgbotapi.MessageConfig) {
	if _, err := n.api.Send(msg); err != nil {
		metrics.Notifications.WithLabelValues("failed").Inc()
		n.log.Error("send failed", "chat_id", n.adminChat, "err", err)
		return
	}
	metrics.Notifications.WithLabelValues("sent").Inc()
}

// Noop используется, когда бот не настроен.
type Noop struct{}

func (Noop) RecipePublished(context.Context, string, string) {}
