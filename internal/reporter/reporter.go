// =============================================================================
// Sales Report Bot - Report Delivery Pipeline
// =============================================================================
//
// This module delivers a completed report to the operator who produced it.
// It runs after the session has already been removed; a failed delivery never
// brings the session back.
//
// DELIVERY PIPELINE:
//   1. Render the text summary and send it as a Markdown message
//   2. Render the XLSX workbook
//   3. Optionally spool the workbook to <spool_dir>/<uuid>/<file>
//   4. Send the workbook as a document
//   5. Remove the spooled file (on every exit path)
//
// FAILURES:
//   A failure in steps 2-4 is reported to the operator as a plain message
//   "Ошибка при отправке файла: <error>". There is no retry.
//
// CONCURRENCY:
//   A Reporter holds no per-delivery state and may be shared by any number
//   of goroutines.
//
// =============================================================================

package reporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/sales-report-bot/internal/export"
	"github.com/ginjaninja78/sales-report-bot/internal/metrics"
	"github.com/ginjaninja78/sales-report-bot/internal/types"
	"github.com/ginjaninja78/sales-report-bot/pkg/utils"
)

// ErrDelivery wraps every failure to hand a report to the transport.
var ErrDelivery = errors.New("report delivery failed")

// msgDeliveryFailed prefixes the error text sent to the operator.
const msgDeliveryFailed = "Ошибка при отправке файла: "

// =============================================================================
// SINK
// =============================================================================

// Sink is the outbound side of a transport.
type Sink interface {
	// SendText sends a message. markdown selects Markdown rendering.
	SendText(ctx context.Context, userID, text string, markdown bool) error

	// SendDocument sends a file.
	SendDocument(ctx context.Context, userID string, doc types.Document) error
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of delivering a single report.
type Result struct {
	// UserID is the recipient.
	UserID string

	// FileName is the name of the generated workbook. Empty if the workbook
	// could not be built.
	FileName string

	// TextSent indicates the summary message reached the transport.
	TextSent bool

	// DocumentSent indicates the workbook reached the transport.
	DocumentSent bool

	// Error is the first failure, wrapped in ErrDelivery. Nil on success.
	Error error

	// Stats contains delivery statistics.
	Stats DeliveryStats
}

// DeliveryStats contains statistics about one delivery.
type DeliveryStats struct {
	// Lines is the number of report lines rendered.
	Lines int

	// DocumentBytes is the size of the workbook.
	DocumentBytes int

	// ProcessingTime is the time from start of rendering to the last send.
	ProcessingTime time.Duration
}

// Success reports whether both the summary and the workbook were delivered.
func (r Result) Success() bool {
	return r.TextSent && r.DocumentSent
}

// =============================================================================
// REPORTER STRUCTURE
// =============================================================================

// Options configures a Reporter.
type Options struct {
	// Currency is the currency suffix used in both renditions.
	Currency string

	// Location is the time zone of report timestamps. Nil keeps the
	// timestamp's own zone.
	Location *time.Location

	// SpoolDir enables spooling the workbook to disk before sending.
	// Empty means the workbook is handed over from memory only.
	SpoolDir string

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics may be nil.
	Metrics *metrics.Metrics
}

// Reporter renders reports and hands them to a Sink.
type Reporter struct {
	sink    Sink
	opts    Options
	spool   *utils.Spool
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a Reporter delivering through sink.
func New(sink Sink, opts Options) *Reporter {
	r := &Reporter{
		sink:    sink,
		opts:    opts,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if opts.SpoolDir != "" {
		r.spool = utils.NewSpool(opts.SpoolDir)
	}
	return r
}

// =============================================================================
// MAIN DELIVERY FUNCTION
// =============================================================================

// Run delivers rep to rep.UserID.
func (r *Reporter) Run(ctx context.Context, rep types.Report) Result {
	startTime := time.Now()
	result := Result{UserID: rep.UserID}
	result.Stats.Lines = len(rep.Lines)

	logger := r.logger.With("user", rep.UserID, "delivery", uuid.New().String())

	// =========================================================================
	// STEP 1: TEXT SUMMARY
	// =========================================================================

	text := export.FormatText(rep, export.TextOptions{
		Currency: r.opts.Currency,
		Location: r.opts.Location,
	})
	if err := r.sink.SendText(ctx, rep.UserID, text, true); err != nil {
		result.Error = fmt.Errorf("%w: failed to send summary: %w", ErrDelivery, err)
		logger.Error("failed to send report summary", "error", err)
	} else {
		result.TextSent = true
	}

	// =========================================================================
	// STEPS 2-5: WORKBOOK
	// =========================================================================

	if err := r.sendWorkbook(ctx, rep, &result); err != nil {
		logger.Error("failed to deliver report workbook", "error", err)
		if result.Error == nil {
			result.Error = fmt.Errorf("%w: %w", ErrDelivery, err)
		}
		if notifyErr := r.sink.SendText(ctx, rep.UserID, msgDeliveryFailed+err.Error(), false); notifyErr != nil {
			logger.Error("failed to report delivery failure", "error", notifyErr)
		}
	} else {
		result.DocumentSent = true
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.Stats.ProcessingTime = time.Since(startTime)
	r.metrics.Delivery(result.Success())

	if result.Success() {
		logger.Info("report delivered",
			"file", result.FileName,
			"bytes", result.Stats.DocumentBytes,
			"duration", result.Stats.ProcessingTime,
		)
	}

	return result
}

// sendWorkbook renders, optionally spools and sends the workbook.
func (r *Reporter) sendWorkbook(ctx context.Context, rep types.Report, result *Result) (err error) {
	buf, err := export.FormatSpreadsheet(rep, export.SheetOptions{
		Currency: r.opts.Currency,
		Location: r.opts.Location,
	})
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}

	at := rep.GeneratedAt
	if r.opts.Location != nil {
		at = at.In(r.opts.Location)
	}

	doc := types.Document{
		Name: export.FileName(rep.UserID, at),
		Data: buf.Bytes(),
	}
	result.FileName = doc.Name
	result.Stats.DocumentBytes = len(doc.Data)

	if r.spool != nil {
		path, cleanup, err := r.spool.Write(doc.Name, doc.Data)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := cleanup(); cerr != nil {
				r.logger.Warn("failed to clean spooled report", "path", path, "error", cerr)
			}
		}()
		doc.Path = path
	}

	if err := r.sink.SendDocument(ctx, rep.UserID, doc); err != nil {
		return err
	}
	return nil
}
