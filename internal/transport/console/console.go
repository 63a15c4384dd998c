// Package console runs the report dialogue on a terminal. Every input line is
// a message from a single operator; delivered workbooks are saved into a
// directory.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ginjaninja78/sales-report-bot/internal/bot"
	"github.com/ginjaninja78/sales-report-bot/internal/types"
	"github.com/ginjaninja78/sales-report-bot/pkg/utils"
)

// DefaultUserID identifies the terminal operator.
const DefaultUserID = "console"

// Transport reads messages from in and writes replies to out.
type Transport struct {
	in     io.Reader
	dir    string
	userID string
	logger *slog.Logger

	mu  sync.Mutex
	out io.Writer
}

// New creates a console transport saving documents into dir.
func New(in io.Reader, out io.Writer, dir string, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		in:     in,
		out:    out,
		dir:    dir,
		userID: DefaultUserID,
		logger: logger,
	}
}

// Run submits every input line until EOF or ctx is cancelled.
func (t *Transport) Run(ctx context.Context, submit func(context.Context, bot.Event) error) error {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(t.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				// The reader reports before closing lines, unless cancelled.
				select {
				case err := <-errc:
					if err != nil {
						return fmt.Errorf("failed to read input: %w", err)
					}
				default:
				}
				return nil
			}
			if line == "" {
				continue
			}
			if err := submit(ctx, bot.Event{UserID: t.userID, Text: line}); err != nil {
				return fmt.Errorf("failed to dispatch input: %w", err)
			}
		}
	}
}

// SendText prints text followed by a blank line.
func (t *Transport) SendText(_ context.Context, _ string, text string, _ bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.out, "%s\n\n", text)
	return err
}

// SendDocument saves doc into the output directory and prints its path.
func (t *Transport) SendDocument(_ context.Context, _ string, doc types.Document) error {
	path, err := utils.SaveFile(t.dir, doc.Name, doc.Data)
	if err != nil {
		return err
	}
	t.logger.Info("report saved", "path", path, "bytes", len(doc.Data))

	t.mu.Lock()
	defer t.mu.Unlock()
	_, err = fmt.Fprintf(t.out, "📎 %s\n\n", path)
	return err
}
