package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sales-report-bot/internal/bot"
	"github.com/ginjaninja78/sales-report-bot/internal/types"
)

type fakeAPI struct {
	mu      sync.Mutex
	sent    []tgbotapi.Chattable
	updates chan tgbotapi.Update
	stopped bool
	sendErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 8)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func textUpdate(id int, userID, chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: id,
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID},
			Chat: &tgbotapi.Chat{ID: chatID},
			Text: text,
		},
	}
}

func TestRunSubmitsTextMessages(t *testing.T) {
	fake := newFakeAPI()
	tr := newTransport(fake, Options{PollTimeout: 1})

	fake.updates <- textUpdate(1, 42, 42, "/start_report")
	fake.updates <- tgbotapi.Update{UpdateID: 2}
	fake.updates <- textUpdate(3, 42, 42, "")
	fake.updates <- textUpdate(4, 7, -100, "12")
	close(fake.updates)

	var got []bot.Event
	err := tr.Run(context.Background(), func(_ context.Context, ev bot.Event) error {
		got = append(got, ev)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []bot.Event{
		{UserID: "42", Text: "/start_report"},
		{UserID: "7", Text: "12"},
	}, got)
	assert.True(t, fake.stopped)
}

func TestRunStopsOnContext(t *testing.T) {
	fake := newFakeAPI()
	tr := newTransport(fake, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- tr.Run(ctx, func(context.Context, bot.Event) error { return nil })
	}()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunPropagatesSubmitError(t *testing.T) {
	fake := newFakeAPI()
	tr := newTransport(fake, Options{})
	fake.updates <- textUpdate(9, 1, 1, "hi")

	err := tr.Run(context.Background(), func(context.Context, bot.Event) error {
		return bot.ErrStopped
	})
	assert.ErrorIs(t, err, bot.ErrStopped)
}

func TestSendTextRepliesToLastChat(t *testing.T) {
	fake := newFakeAPI()
	tr := newTransport(fake, Options{})

	_, ok := tr.event(textUpdate(1, 7, -100, "hi"))
	require.True(t, ok)

	require.NoError(t, tr.SendText(context.Background(), "7", "*bold*", true))
	require.NoError(t, tr.SendText(context.Background(), "8", "plain", false))

	require.Len(t, fake.sent, 2)

	first, ok := fake.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(-100), first.ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, first.ParseMode)

	second, ok := fake.sent[1].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(8), second.ChatID)
	assert.Empty(t, second.ParseMode)
}

func TestSendTextUnknownUser(t *testing.T) {
	tr := newTransport(newFakeAPI(), Options{})
	assert.Error(t, tr.SendText(context.Background(), "console", "x", false))
}

func TestSendDocument(t *testing.T) {
	fake := newFakeAPI()
	tr := newTransport(fake, Options{})
	ctx := context.Background()

	require.NoError(t, tr.SendDocument(ctx, "5", types.Document{Name: "r.xlsx", Data: []byte("x")}))
	require.NoError(t, tr.SendDocument(ctx, "5", types.Document{Name: "r.xlsx", Path: "/tmp/r.xlsx"}))

	require.Len(t, fake.sent, 2)

	mem, ok := fake.sent[0].(tgbotapi.DocumentConfig)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.FileBytes{Name: "r.xlsx", Bytes: []byte("x")}, mem.File)

	disk, ok := fake.sent[1].(tgbotapi.DocumentConfig)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.FilePath("/tmp/r.xlsx"), disk.File)
}

func TestSendDocumentError(t *testing.T) {
	fake := newFakeAPI()
	fake.sendErr = errors.New("Request Entity Too Large")
	tr := newTransport(fake, Options{})

	err := tr.SendDocument(context.Background(), "5", types.Document{Name: "r.xlsx"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Request Entity Too Large")
}
