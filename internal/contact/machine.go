// Package contact implements the contact form: its field values and the
// submission phases Idle, Submitting, Submitted and Failed.
//
// A submit is accepted from Idle or Failed when the fields validate. The form
// then waits SubmitDelay, hands the fields to a Sender, and moves to Submitted
// (fields cleared) or Failed (fields kept). Either outcome returns to Idle
// after ResetDelay.
package contact

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/prafullx/webstudio/internal/clock"
)

const (
	DefaultSubmitDelay = 2 * time.Second
	DefaultResetDelay  = 5 * time.Second
)

var (
	// ErrInFlight is returned while a submission is pending or just succeeded.
	ErrInFlight     = errors.New("contact: submission in progress")
	ErrClosed       = errors.New("contact: form closed")
	ErrUnknownField = errors.New("contact: unknown field")
)

// Phase is the submission state.
type Phase int

const (
	Idle Phase = iota
	Submitting
	Submitted
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Sender delivers a validated form.
type Sender interface {
	Send(ctx context.Context, f Form) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, f Form) error

func (fn SenderFunc) Send(ctx context.Context, f Form) error { return fn(ctx, f) }

// Simulated accepts every form and transmits nothing.
type Simulated struct{}

func (Simulated) Send(context.Context, Form) error { return nil }

// Options tunes a Machine. Zero durations take the defaults.
type Options struct {
	SubmitDelay time.Duration
	ResetDelay  time.Duration
	Logger      *slog.Logger
}

// Snapshot is a consistent copy of the machine state for rendering.
type Snapshot struct {
	Form   Form
	Phase  Phase
	Errors map[Field]string
	// Failure is a user-facing message set while Failed.
	Failure string
}

// Busy reports whether the submit button should be disabled.
func (s Snapshot) Busy() bool { return s.Phase == Submitting || s.Phase == Submitted }

// Error returns the validation message for field, if any.
func (s Snapshot) Error(field Field) string { return s.Errors[field] }

// Machine is one visitor's contact form.
type Machine struct {
	sender Sender
	clock  clock.Clock
	opts   Options
	log    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	form    Form
	phase   Phase
	errs    map[Field]string
	failure string
	timer   clock.Timer
	gen     uint64
	closed  bool
}

// New returns an idle machine with empty fields.
func New(sender Sender, clk clock.Clock, opts Options) *Machine {
	if sender == nil {
		sender = Simulated{}
	}
	if clk == nil {
		clk = clock.Real()
	}
	if opts.SubmitDelay <= 0 {
		opts.SubmitDelay = DefaultSubmitDelay
	}
	if opts.ResetDelay <= 0 {
		opts.ResetDelay = DefaultResetDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Machine{
		sender: sender,
		clock:  clk,
		opts:   opts,
		log:    opts.Logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Snapshot copies the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Form:    m.form,
		Phase:   m.phase,
		Errors:  maps.Clone(m.errs),
		Failure: m.failure,
	}
}

// Set records a keystroke in field. Edits are refused while a submission is
// pending or showing its success.
func (m *Machine) Set(field Field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.editableLocked(); err != nil {
		return err
	}
	if err := m.form.set(field, value); err != nil {
		return err
	}
	delete(m.errs, field)
	return nil
}

// Update replaces all four fields at once.
func (m *Machine) Update(f Form) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.editableLocked(); err != nil {
		return err
	}
	for _, field := range Fields {
		if m.form.Get(field) != f.Get(field) {
			delete(m.errs, field)
		}
	}
	m.form = f
	return nil
}

func (m *Machine) editableLocked() error {
	if m.closed {
		return ErrClosed
	}
	if m.phase == Submitting || m.phase == Submitted {
		return ErrInFlight
	}
	return nil
}

// Submit validates the fields and, when they pass, moves to Submitting. It
// returns a *ValidationError when a field is rejected and ErrInFlight when a
// submission is already under way; in both cases nothing else changes.
func (m *Machine) Submit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.editableLocked(); err != nil {
		return err
	}

	if err := Validate(m.form); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			m.errs = maps.Clone(verr.Fields)
		}
		return err
	}

	m.stopTimerLocked()
	m.errs = nil
	m.failure = ""
	m.phase = Submitting
	m.gen++
	gen, payload := m.gen, m.form.trimmed()
	m.timer = m.clock.AfterFunc(m.opts.SubmitDelay, func() { m.deliver(gen, payload) })
	m.log.Debug("contact submission accepted", "gen", gen)
	return nil
}

func (m *Machine) deliver(gen uint64, payload Form) {
	m.mu.Lock()
	if !m.currentLocked(gen) || m.phase != Submitting {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	m.mu.Unlock()

	err := m.sender.Send(m.ctx, payload)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.currentLocked(gen) {
		return
	}
	if err != nil {
		m.log.Error("contact delivery failed", "gen", gen, "error", err)
		m.phase = Failed
		m.failure = "Sorry, your message could not be sent. Please try again."
	} else {
		m.log.Info("contact message sent", "gen", gen)
		m.phase = Submitted
		m.form = Form{}
	}
	m.timer = m.clock.AfterFunc(m.opts.ResetDelay, func() { m.reset(gen) })
}

func (m *Machine) reset(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.currentLocked(gen) {
		return
	}
	if m.phase == Submitted || m.phase == Failed {
		m.phase = Idle
		m.failure = ""
		m.timer = nil
	}
}

// currentLocked reports whether a callback scheduled for gen may still act.
func (m *Machine) currentLocked(gen uint64) bool {
	return !m.closed && gen == m.gen
}

func (m *Machine) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// Close tears the form down. Pending timers are stopped and any callback that
// still fires afterwards leaves the state untouched.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.stopTimerLocked()
	m.cancel()
}
