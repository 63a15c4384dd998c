// =============================================================================
// Sales Report Bot - NATS Bus Transport
// =============================================================================
//
// This transport lets other services drive the report dialogue over NATS.
//
// SUBJECTS:
//   <subject>                 inbound, JSON Inbound
//   <reply_prefix>.<user_id>  outbound, JSON Outbound
//
// WIRE FORMAT:
//   {"user_id":"42","text":"12"}
//   {"user_id":"42","kind":"text","text":"...","markdown":true}
//   {"user_id":"42","kind":"document","file_name":"report_42_....xlsx","data":"<base64>"}
//
// =============================================================================

package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ginjaninja78/sales-report-bot/internal/bot"
	"github.com/ginjaninja78/sales-report-bot/internal/types"
)

// Outbound message kinds.
const (
	KindText     = "text"
	KindDocument = "document"
)

// ErrInvalidMessage is returned by DecodeInbound for unusable payloads.
var ErrInvalidMessage = errors.New("invalid inbound message")

// Inbound is a message from an operator.
type Inbound struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// Outbound is a reply to an operator. Data is base64 encoded on the wire.
type Outbound struct {
	UserID   string `json:"user_id"`
	Kind     string `json:"kind"`
	Text     string `json:"text,omitempty"`
	Markdown bool   `json:"markdown,omitempty"`
	FileName string `json:"file_name,omitempty"`
	Data     []byte `json:"data,omitempty"`
}

// DecodeInbound parses and checks an inbound payload.
func DecodeInbound(data []byte) (bot.Event, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return bot.Event{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	if strings.TrimSpace(in.UserID) == "" {
		return bot.Event{}, fmt.Errorf("%w: missing user_id", ErrInvalidMessage)
	}
	return bot.Event{UserID: in.UserID, Text: in.Text}, nil
}

// ReplySubject returns the outbound subject for userID.
func ReplySubject(prefix, userID string) string {
	return prefix + "." + sanitizeToken(userID)
}

// sanitizeToken makes userID usable as a single subject token.
func sanitizeToken(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, s)
}

// =============================================================================
// TRANSPORT
// =============================================================================

// conn is the subset of *nats.Conn the transport uses.
type conn interface {
	Publish(subject string, data []byte) error
	ChanSubscribe(subject string, ch chan *nats.Msg) (*nats.Subscription, error)
}

// Options configures the transport.
type Options struct {
	Subject     string
	ReplyPrefix string
	Logger      *slog.Logger
}

// Transport exchanges dialogue messages over NATS.
type Transport struct {
	conn   conn
	nc     *nats.Conn
	opts   Options
	logger *slog.Logger
}

// Connect dials url.
func Connect(url string, opts Options) (*Transport, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	logger := opts.Logger

	nc, err := nats.Connect(url,
		nats.Name("reportbot"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	t := newTransport(nc, opts)
	t.nc = nc
	return t, nil
}

func newTransport(c conn, opts Options) *Transport {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Transport{conn: c, opts: opts, logger: opts.Logger}
}

// Close drains the connection.
func (t *Transport) Close() error {
	if t.nc == nil {
		return nil
	}
	return t.nc.Drain()
}

// Run subscribes to the inbound subject and submits messages until ctx is
// cancelled. Malformed payloads are logged and dropped.
func (t *Transport) Run(ctx context.Context, submit func(context.Context, bot.Event) error) error {
	msgs := make(chan *nats.Msg, 256)
	sub, err := t.conn.ChanSubscribe(t.opts.Subject, msgs)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", t.opts.Subject, err)
	}
	defer func() {
		if sub != nil {
			_ = sub.Unsubscribe()
		}
	}()

	t.logger.Info("listening on nats", "subject", t.opts.Subject, "reply_prefix", t.opts.ReplyPrefix)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-msgs:
			ev, err := DecodeInbound(msg.Data)
			if err != nil {
				t.logger.Warn("dropping inbound message", "subject", msg.Subject, "error", err)
				continue
			}
			if err := submit(ctx, ev); err != nil {
				return fmt.Errorf("failed to dispatch message: %w", err)
			}
		}
	}
}

// SendText publishes a text reply.
func (t *Transport) SendText(_ context.Context, userID, text string, markdown bool) error {
	return t.publish(Outbound{UserID: userID, Kind: KindText, Text: text, Markdown: markdown})
}

// SendDocument publishes a document reply.
func (t *Transport) SendDocument(_ context.Context, userID string, doc types.Document) error {
	return t.publish(Outbound{UserID: userID, Kind: KindDocument, FileName: doc.Name, Data: doc.Data})
}

func (t *Transport) publish(out Outbound) error {
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}
	subject := ReplySubject(t.opts.ReplyPrefix, out.UserID)
	if err := t.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}
