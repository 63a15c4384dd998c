package bot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ginjaninja78/sales-report-bot/internal/collector"
	"github.com/ginjaninja78/sales-report-bot/internal/reporter"
	"github.com/ginjaninja78/sales-report-bot/internal/types"
)

// Command names, without the leading slash.
const (
	CmdStart       = "start"
	CmdHelp        = "help"
	CmdStartReport = "start_report"
	CmdCancel      = "cancel"
)

// HelpText explains the dialogue to the operator.
const HelpText = "Инструкция:\n" +
	"/start_report — начать новый отчёт\n" +
	"/cancel — отменить ввод\n\n" +
	"Во время ввода:\n" +
	"• Введи число (например 12)\n" +
	"• Введи 0 — если товара не было\n" +
	"• Напиши 'пропустить' или 'skip' — чтобы пропустить позицию\n" +
	"После завершения бот пришлёт итог и Excel-файл."

const msgGreeting = "Привет! Я бот-отчётчик.\n"

// Sender is the outbound side of a transport.
type Sender interface {
	reporter.Sink
}

// Event is one inbound message.
type Event struct {
	UserID string
	Text   string
}

// ParseCommand splits "/name@bot args" into its name. ok is false for plain
// text.
func ParseCommand(text string) (name string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	name = text[1:]
	if i := strings.IndexAny(name, " \t\n"); i >= 0 {
		name = name[:i]
	}
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return "", false
	}
	return strings.ToLower(name), true
}

// Handler maps inbound events onto the collection machine and delivers the
// resulting replies and reports.
type Handler struct {
	machine  *collector.Machine
	sender   Sender
	reporter *reporter.Reporter
	logger   *slog.Logger
}

// NewHandler creates a Handler. rep may be nil, in which case completed
// reports are only acknowledged.
func NewHandler(machine *collector.Machine, sender Sender, rep *reporter.Reporter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		machine:  machine,
		sender:   sender,
		reporter: rep,
		logger:   logger,
	}
}

// Handle processes ev to completion, including report delivery. Events of
// one user must not be handled concurrently.
func (h *Handler) Handle(ctx context.Context, ev Event) {
	if name, ok := ParseCommand(ev.Text); ok {
		switch name {
		case CmdStart:
			h.reply(ctx, ev.UserID, msgGreeting+HelpText)
			return
		case CmdHelp:
			h.reply(ctx, ev.UserID, HelpText)
			return
		case CmdStartReport:
			h.reply(ctx, ev.UserID, h.machine.Start(ev.UserID))
			return
		case CmdCancel:
			h.reply(ctx, ev.UserID, h.machine.Cancel(ev.UserID))
			return
		}
		h.logger.Debug("unknown command treated as text", "user", ev.UserID, "command", name)
	}

	out := h.machine.Handle(ev.UserID, ev.Text)
	h.reply(ctx, ev.UserID, out.Reply)

	if out.Status == collector.StatusComplete && out.Report != nil {
		h.deliver(ctx, *out.Report)
	}
}

func (h *Handler) deliver(ctx context.Context, r types.Report) {
	if h.reporter == nil {
		return
	}
	res := h.reporter.Run(ctx, r)
	if res.Error != nil {
		h.logger.Warn("report delivery incomplete",
			"user", r.UserID,
			"text_sent", res.TextSent,
			"document_sent", res.DocumentSent,
			"error", res.Error,
		)
	}
}

func (h *Handler) reply(ctx context.Context, userID, text string) {
	if text == "" {
		return
	}
	if err := h.sender.SendText(ctx, userID, text, false); err != nil {
		h.logger.Error("failed to send reply", "user", userID, "error", err)
	}
}
