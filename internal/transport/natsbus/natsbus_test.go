package natsbus

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sales-report-bot/internal/bot"
	"github.com/ginjaninja78/sales-report-bot/internal/types"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	mu   sync.Mutex
	pubs []published
	ch   chan *nats.Msg
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pubs = append(f.pubs, published{subject, data})
	return nil
}

func (f *fakeConn) ChanSubscribe(_ string, ch chan *nats.Msg) (*nats.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ch = ch
	return nil, nil
}

func (f *fakeConn) channel() chan *nats.Msg {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ch
}

func TestDecodeInbound(t *testing.T) {
	ev, err := DecodeInbound([]byte(`{"user_id":"42","text":"12"}`))
	require.NoError(t, err)
	assert.Equal(t, bot.Event{UserID: "42", Text: "12"}, ev)

	for _, bad := range []string{`{"text":"12"}`, `{"user_id":"  "}`, `not json`} {
		_, err := DecodeInbound([]byte(bad))
		assert.ErrorIs(t, err, ErrInvalidMessage, bad)
	}
}

func TestReplySubject(t *testing.T) {
	assert.Equal(t, "reportbot.out.42", ReplySubject("reportbot.out", "42"))
	assert.Equal(t, "out.a_b_c", ReplySubject("out", "a.b*c"))
}

func TestSendDocumentEncodesBase64(t *testing.T) {
	fc := &fakeConn{}
	tr := newTransport(fc, Options{ReplyPrefix: "out"})

	err := tr.SendDocument(context.Background(), "42", types.Document{Name: "r.xlsx", Data: []byte("PK\x03\x04")})
	require.NoError(t, err)

	require.Len(t, fc.pubs, 1)
	assert.Equal(t, "out.42", fc.pubs[0].subject)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(fc.pubs[0].data, &raw))
	assert.Equal(t, "document", raw["kind"])
	assert.Equal(t, "r.xlsx", raw["file_name"])
	assert.Equal(t, "UEsDBA==", raw["data"])

	var out Outbound
	require.NoError(t, json.Unmarshal(fc.pubs[0].data, &out))
	assert.Equal(t, []byte("PK\x03\x04"), out.Data)
}

func TestSendText(t *testing.T) {
	fc := &fakeConn{}
	tr := newTransport(fc, Options{ReplyPrefix: "out"})

	require.NoError(t, tr.SendText(context.Background(), "7", "*hi*", true))

	var out Outbound
	require.NoError(t, json.Unmarshal(fc.pubs[0].data, &out))
	assert.Equal(t, Outbound{UserID: "7", Kind: KindText, Text: "*hi*", Markdown: true}, out)
}

func TestRunSubmitsValidMessages(t *testing.T) {
	fc := &fakeConn{}
	tr := newTransport(fc, Options{Subject: "in", ReplyPrefix: "out"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan bot.Event, 4)
	done := make(chan error, 1)
	go func() {
		done <- tr.Run(ctx, func(_ context.Context, ev bot.Event) error {
			got <- ev
			return nil
		})
	}()

	require.Eventually(t, func() bool { return fc.channel() != nil }, 5*time.Second, 10*time.Millisecond)
	ch := fc.channel()
	ch <- &nats.Msg{Subject: "in", Data: []byte(`garbage`)}
	ch <- &nats.Msg{Subject: "in", Data: []byte(`{"user_id":"1","text":"/start_report"}`)}

	select {
	case ev := <-got:
		assert.Equal(t, bot.Event{UserID: "1", Text: "/start_report"}, ev)
	case <-time.After(5 * time.Second):
		t.Fatal("no event submitted")
	}

	cancel()
	assert.NoError(t, <-done)
}
