// Package telegram connects the dispatcher to the Telegram Bot API using long
// polling.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ginjaninja78/sales-report-bot/internal/bot"
	"github.com/ginjaninja78/sales-report-bot/internal/types"
)

// api is the subset of *tgbotapi.BotAPI the transport uses.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Options configures the transport.
type Options struct {
	// PollTimeout is the long-poll timeout in seconds.
	PollTimeout int

	// Debug logs every API request.
	Debug bool

	Logger *slog.Logger
}

// Transport receives updates and sends replies through the Bot API.
type Transport struct {
	api     api
	timeout int
	logger  *slog.Logger

	// chats remembers the chat each user last wrote from, keyed by user ID.
	chats sync.Map
}

// New authenticates with token.
func New(token string, opts Options) (*Transport, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if err := tgbotapi.SetLogger(slog.NewLogLogger(opts.Logger.Handler(), slog.LevelDebug)); err != nil {
		return nil, fmt.Errorf("failed to set bot api logger: %w", err)
	}

	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	botAPI.Debug = opts.Debug

	opts.Logger.Info("authorized on telegram", "account", botAPI.Self.UserName)
	return newTransport(botAPI, opts), nil
}

func newTransport(a api, opts Options) *Transport {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Transport{api: a, timeout: opts.PollTimeout, logger: opts.Logger}
}

// Run polls for updates until ctx is cancelled and hands every text message
// to submit.
func (t *Transport) Run(ctx context.Context, submit func(context.Context, bot.Event) error) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.timeout

	updates := t.api.GetUpdatesChan(u)
	defer t.api.StopReceivingUpdates()

	t.logger.Info("polling for updates", "timeout", t.timeout)

	for {
		select {
		case <-ctx.Done():
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			ev, ok := t.event(upd)
			if !ok {
				continue
			}
			if err := submit(ctx, ev); err != nil {
				return fmt.Errorf("failed to dispatch update %d: %w", upd.UpdateID, err)
			}
		}
	}
}

// event converts an update into a dispatcher event. Updates without a text
// message are ignored.
func (t *Transport) event(upd tgbotapi.Update) (bot.Event, bool) {
	msg := upd.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return bot.Event{}, false
	}

	userID := strconv.FormatInt(msg.From.ID, 10)
	if msg.Chat != nil {
		t.chats.Store(userID, msg.Chat.ID)
	}
	return bot.Event{UserID: userID, Text: msg.Text}, true
}

// SendText sends text to the user's chat.
func (t *Transport) SendText(_ context.Context, userID, text string, markdown bool) error {
	chatID, err := t.chatID(userID)
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendDocument uploads doc to the user's chat. A spooled document is
// uploaded from disk.
func (t *Transport) SendDocument(_ context.Context, userID string, doc types.Document) error {
	chatID, err := t.chatID(userID)
	if err != nil {
		return err
	}

	var file tgbotapi.RequestFileData = tgbotapi.FileBytes{Name: doc.Name, Bytes: doc.Data}
	if doc.Path != "" {
		file = tgbotapi.FilePath(doc.Path)
	}

	if _, err := t.api.Send(tgbotapi.NewDocument(chatID, file)); err != nil {
		return fmt.Errorf("failed to send document: %w", err)
	}
	return nil
}

func (t *Transport) chatID(userID string) (int64, error) {
	if v, ok := t.chats.Load(userID); ok {
		return v.(int64), nil
	}
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("no chat known for user %q", userID)
	}
	return id, nil
}
