package reporter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sales-report-bot/internal/export"
	"github.com/ginjaninja78/sales-report-bot/internal/metrics"
	"github.com/ginjaninja78/sales-report-bot/internal/report"
	"github.com/ginjaninja78/sales-report-bot/internal/types"
)

type sentText struct {
	userID   string
	text     string
	markdown bool
}

type fakeSink struct {
	mu      sync.Mutex
	texts   []sentText
	docs    []types.Document
	textErr error
	docErr  error

	// pathExisted records whether doc.Path was readable during SendDocument.
	pathExisted bool
}

func (f *fakeSink) SendText(_ context.Context, userID, text string, markdown bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, sentText{userID, text, markdown})
	if f.textErr != nil && markdown {
		return f.textErr
	}
	return nil
}

func (f *fakeSink) SendDocument(_ context.Context, _ string, doc types.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if doc.Path != "" {
		_, err := os.Stat(doc.Path)
		f.pathExisted = err == nil
	}
	f.docs = append(f.docs, doc)
	return f.docErr
}

var at = time.Date(2026, 10, 18, 19, 0, 0, 0, time.UTC)

func sample() types.Report {
	return report.Build("77", []types.Row{
		{Name: "A", Price: 100, Morning: 12, Evening: 2},
		{Name: "B", Price: 200},
	}, at)
}

func TestRunDeliversTextThenDocument(t *testing.T) {
	sink := &fakeSink{}
	r := New(sink, Options{})

	res := r.Run(context.Background(), sample())

	require.NoError(t, res.Error)
	assert.True(t, res.Success())
	assert.Equal(t, "report_77_20261018_190000.xlsx", res.FileName)
	assert.Equal(t, 2, res.Stats.Lines)

	require.Len(t, sink.texts, 1)
	assert.Equal(t, "77", sink.texts[0].userID)
	assert.True(t, sink.texts[0].markdown)
	assert.Contains(t, sink.texts[0].text, "💰 *Итого к сдаче:* 1,000 тг")

	require.Len(t, sink.docs, 1)
	doc := sink.docs[0]
	assert.Equal(t, res.FileName, doc.Name)
	assert.Empty(t, doc.Path)
	assert.Equal(t, res.Stats.DocumentBytes, len(doc.Data))

	f, err := excelize.OpenReader(bytes.NewReader(doc.Data))
	require.NoError(t, err)
	defer f.Close()
	total, err := f.GetCellValue(export.SheetName, "G5")
	require.NoError(t, err)
	assert.Equal(t, "1000", total)
}

func TestRunDocumentFailureNotifiesOperator(t *testing.T) {
	sink := &fakeSink{docErr: errors.New("file too big")}
	m := metrics.New()
	r := New(sink, Options{Metrics: m})

	res := r.Run(context.Background(), sample())

	require.Error(t, res.Error)
	assert.ErrorIs(t, res.Error, ErrDelivery)
	assert.True(t, res.TextSent)
	assert.False(t, res.DocumentSent)

	require.Len(t, sink.texts, 2)
	assert.Equal(t, "Ошибка при отправке файла: file too big", sink.texts[1].text)
	assert.False(t, sink.texts[1].markdown)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deliveries.WithLabelValues(metrics.ResultFailed)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Deliveries.WithLabelValues(metrics.ResultDelivered)))
}

func TestRunSummaryFailureStillSendsDocument(t *testing.T) {
	sink := &fakeSink{textErr: errors.New("chat not found")}
	r := New(sink, Options{})

	res := r.Run(context.Background(), sample())

	assert.ErrorIs(t, res.Error, ErrDelivery)
	assert.False(t, res.TextSent)
	assert.True(t, res.DocumentSent)
	assert.Len(t, sink.docs, 1)
}

func TestRunSpoolIsCleanedUp(t *testing.T) {
	spool := t.TempDir()

	for name, docErr := range map[string]error{
		"delivered": nil,
		"failed":    errors.New("network down"),
	} {
		t.Run(name, func(t *testing.T) {
			sink := &fakeSink{docErr: docErr}
			r := New(sink, Options{SpoolDir: spool})

			r.Run(context.Background(), sample())

			require.Len(t, sink.docs, 1)
			assert.NotEmpty(t, sink.docs[0].Path)
			assert.True(t, strings.HasPrefix(sink.docs[0].Path, spool))
			assert.True(t, sink.pathExisted, "file exists while sending")

			_, err := os.Stat(sink.docs[0].Path)
			assert.True(t, os.IsNotExist(err), "file removed after sending")

			entries, err := os.ReadDir(spool)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestRunUsesCurrencyAndLocation(t *testing.T) {
	sink := &fakeSink{}
	r := New(sink, Options{Currency: "KZT", Location: time.FixedZone("ALMT", 5*60*60)})

	r.Run(context.Background(), sample())

	require.NotEmpty(t, sink.texts)
	assert.Contains(t, sink.texts[0].text, "2026-10-19 00:00")
	assert.Contains(t, sink.texts[0].text, "1,000 KZT")

	require.Len(t, sink.docs, 1)
	assert.Equal(t, "report_77_20261019_000000.xlsx", sink.docs[0].Name)
}

func TestRunRecordsDeliveryMetric(t *testing.T) {
	m := metrics.New()
	r := New(&fakeSink{}, Options{Metrics: m})

	r.Run(context.Background(), sample())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deliveries.WithLabelValues(metrics.ResultDelivered)))
}
