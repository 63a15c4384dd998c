// =============================================================================
// Sales Report Bot - Collection State Machine
// =============================================================================
//
// This module drives one operator's session through the catalog, one product
// at a time and one field at a time.
//
// STATES:
//   AwaitingMorning  -> quantity received in the morning
//   AwaitingEvening  -> quantity remaining in the evening
//   AwaitingExchange -> quantity returned for exchange (only some products)
//   Cursor == catalog length is the terminal state.
//
// INPUT HANDLING (per message):
//   1. Trim and case-fold. A skip word moves to the next product and leaves
//      the current row at its defaults.
//   2. Otherwise parse a number, accepting ',' as the decimal separator.
//      Unparseable input changes nothing and re-asks the same field.
//   3. Store the number in the field of the current phase and follow the
//      transition table.
//   4. When the cursor passes the last product the rows are aggregated, the
//      session is removed and the report is returned to the caller.
//
// =============================================================================

package collector

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/sales-report-bot/internal/catalog"
	"github.com/ginjaninja78/sales-report-bot/internal/metrics"
	"github.com/ginjaninja78/sales-report-bot/internal/report"
	"github.com/ginjaninja78/sales-report-bot/internal/session"
	"github.com/ginjaninja78/sales-report-bot/internal/types"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoActiveSession is reported when a message arrives for a user
	// without a session.
	ErrNoActiveSession = errors.New("no active session")

	// ErrInvalidQuantity is reported when input is neither a skip word nor a
	// number.
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// =============================================================================
// OUTCOME
// =============================================================================

// Status classifies the result of handling one message.
type Status int

const (
	// StatusPrompt means a value or skip was applied and the next field is
	// being requested.
	StatusPrompt Status = iota

	// StatusRetry means the input was rejected; the same field is requested
	// again.
	StatusRetry

	// StatusNoSession means the user has no session.
	StatusNoSession

	// StatusComplete means the last product was handled. Report is set.
	StatusComplete
)

// Outcome is the result of Handle.
type Outcome struct {
	Status Status

	// Reply is the text to send back to the operator.
	Reply string

	// Complete is true when the session finished with this message.
	Complete bool

	// Report is the aggregated report of a completed session.
	Report *types.Report

	// Elapsed is how long a completed session took since its start.
	Elapsed time.Duration

	// Err is ErrNoActiveSession or ErrInvalidQuantity (possibly wrapped) for
	// the corresponding statuses, nil otherwise.
	Err error
}

// =============================================================================
// TRANSITION TABLE
// =============================================================================

type transitionKey struct {
	phase            session.Phase
	exchangeRequired bool
}

type transition struct {
	next    session.Phase
	advance bool
}

// transitions maps (phase, exchange required) to the next phase and whether
// the cursor moves to the next product.
var transitions = map[transitionKey]transition{
	{session.AwaitingMorning, false}:  {next: session.AwaitingEvening},
	{session.AwaitingMorning, true}:   {next: session.AwaitingEvening},
	{session.AwaitingEvening, false}:  {next: session.AwaitingMorning, advance: true},
	{session.AwaitingEvening, true}:   {next: session.AwaitingExchange},
	{session.AwaitingExchange, true}:  {next: session.AwaitingMorning, advance: true},
	{session.AwaitingExchange, false}: {next: session.AwaitingMorning, advance: true},
}

// fieldSetters writes a value into the row field requested by a phase.
var fieldSetters = map[session.Phase]func(r *types.Row, v float64){
	session.AwaitingMorning:  func(r *types.Row, v float64) { r.Morning = v },
	session.AwaitingEvening:  func(r *types.Row, v float64) { r.Evening = v },
	session.AwaitingExchange: func(r *types.Row, v float64) { r.Exchange = v },
}

// =============================================================================
// MACHINE
// =============================================================================

// Machine runs report sessions against a catalog. It keeps no state of its
// own besides the injected store.
type Machine struct {
	catalog  *catalog.Catalog
	store    *session.Store
	now      func() time.Time
	logger   *slog.Logger
	metrics  *metrics.Metrics
	currency string
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock sets the time source used for session start and report stamps.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Machine) { m.metrics = mt }
}

// WithCurrency sets the currency suffix shown next to prices.
func WithCurrency(c string) Option {
	return func(m *Machine) { m.currency = c }
}

// New creates a Machine.
func New(cat *catalog.Catalog, store *session.Store, opts ...Option) *Machine {
	m := &Machine{
		catalog:  cat,
		store:    store,
		now:      time.Now,
		logger:   slog.Default(),
		currency: "тг",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Catalog returns the catalog the machine walks through.
func (m *Machine) Catalog() *catalog.Catalog {
	return m.catalog
}

// Start begins a new report for userID and returns the first prompt. An
// existing session of the same user is discarded (last start wins).
func (m *Machine) Start(userID string) string {
	s := session.New(m.catalog.NewRows(), m.now())
	replaced := m.store.Put(userID, s)

	m.metrics.SessionStarted(replaced)
	if replaced {
		m.logger.Info("session restarted, previous progress discarded", "user", userID)
	} else {
		m.logger.Info("session started", "user", userID, "products", m.catalog.Len())
	}

	return msgStarted + "\n\n" + m.prompt(s)
}

// Cancel drops the user's session, if any, and returns the confirmation.
func (m *Machine) Cancel(userID string) string {
	s, ok := m.store.Get(userID)
	if ok && m.store.Delete(userID) {
		m.metrics.SessionCancelled()
		m.logger.Info("session cancelled", "user", userID, "elapsed", m.now().Sub(s.StartedAt))
	}
	return msgCancelled
}

// Handle applies one inbound message to the user's session.
func (m *Machine) Handle(userID, text string) Outcome {
	normalized := strings.ToLower(strings.TrimSpace(text))

	var out Outcome
	found := m.store.Update(userID, func(s *session.Session) bool {
		out = m.step(userID, s, normalized)
		return out.Complete
	})

	if !found {
		m.metrics.InputError(metrics.KindNoSession)
		return Outcome{
			Status: StatusNoSession,
			Reply:  msgNoSession,
			Err:    ErrNoActiveSession,
		}
	}

	switch out.Status {
	case StatusRetry:
		m.metrics.InputError(metrics.KindInvalidQuantity)
		m.logger.Debug("input rejected", "user", userID, "error", out.Err)
	case StatusComplete:
		m.metrics.SessionCompleted()
		m.logger.Info("session complete", "user", userID, "total", out.Report.Total, "elapsed", out.Elapsed)
	}

	return out
}

// step performs one transition. It runs under the store lock.
func (m *Machine) step(userID string, s *session.Session, normalized string) Outcome {
	if s.Done() {
		return m.complete(userID, s, "")
	}

	product := m.catalog.At(s.Cursor)
	var ack string

	if IsSkip(normalized) {
		ack = fmt.Sprintf(msgSkipped, product.Name)
		s.Cursor++
		s.Phase = session.AwaitingMorning
	} else {
		qty, err := ParseQuantity(normalized)
		if err != nil {
			return Outcome{
				Status: StatusRetry,
				Reply:  msgInvalid + "\n\n" + m.prompt(s),
				Err:    err,
			}
		}

		fieldSetters[s.Phase](&s.Rows[s.Cursor], qty)
		ack = fmt.Sprintf(recordedFormats[s.Phase], product.Name, formatNumber(qty))

		t := transitions[transitionKey{s.Phase, m.catalog.RequiresExchange(product.Name)}]
		s.Phase = t.next
		if t.advance {
			s.Cursor++
		}
	}

	if s.Done() {
		return m.complete(userID, s, ack)
	}

	return Outcome{
		Status: StatusPrompt,
		Reply:  ack + "\n\n" + m.prompt(s),
	}
}

func (m *Machine) complete(userID string, s *session.Session, ack string) Outcome {
	r := report.Build(userID, s.Rows, m.now())
	reply := msgComplete
	if ack != "" {
		reply = ack + "\n\n" + msgComplete
	}
	return Outcome{
		Status:   StatusComplete,
		Reply:    reply,
		Complete: true,
		Report:   &r,
		Elapsed:  m.now().Sub(s.StartedAt),
	}
}

func (m *Machine) prompt(s *session.Session) string {
	return prompt(m.catalog.At(s.Cursor), s.Cursor, m.catalog.Len(), s.Phase, m.currency)
}

// =============================================================================
// INPUT PARSING
// =============================================================================

// ParseQuantity parses a quantity, accepting ',' as decimal separator.
// Negative values are accepted; NaN and infinities are not.
func ParseQuantity(text string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, text)
	}
	return v, nil
}
