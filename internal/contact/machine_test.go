package contact

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prafullx/webstudio/internal/clock"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func validForm() Form {
	return Form{Name: "Ann", Email: "a@b.co", Subject: "Hi", Message: "Hello"}
}

type recordingSender struct {
	mu   sync.Mutex
	sent []Form
	err  error
}

func (s *recordingSender) Send(_ context.Context, f Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, f)
	return s.err
}

func newMachine(t *testing.T, sender Sender) (*Machine, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(epoch)
	m := New(sender, clk, Options{})
	t.Cleanup(m.Close)
	return m, clk
}

func fill(t *testing.T, m *Machine, f Form) {
	t.Helper()
	for _, field := range Fields {
		require.NoError(t, m.Set(field, f.Get(field)))
	}
}

func TestSubmitScenario(t *testing.T) {
	sender := &recordingSender{}
	m, clk := newMachine(t, sender)
	fill(t, m, validForm())

	require.NoError(t, m.Submit())
	assert.Equal(t, Submitting, m.Phase())
	assert.Equal(t, validForm(), m.Snapshot().Form)

	clk.Advance(1999 * time.Millisecond)
	assert.Equal(t, Submitting, m.Phase())
	assert.Empty(t, sender.sent)

	clk.Advance(time.Millisecond)
	snap := m.Snapshot()
	assert.Equal(t, Submitted, snap.Phase)
	assert.True(t, snap.Form.IsZero())
	require.Len(t, sender.sent, 1)
	assert.Equal(t, validForm(), sender.sent[0])

	clk.Advance(4999 * time.Millisecond)
	assert.Equal(t, Submitted, m.Phase())

	clk.Advance(time.Millisecond)
	snap = m.Snapshot()
	assert.Equal(t, Idle, snap.Phase)
	assert.True(t, snap.Form.IsZero())
	assert.Equal(t, epoch.Add(7*time.Second), clk.Now())
	assert.Zero(t, clk.Pending())
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name  string
		form  Form
		field Field
	}{
		{name: "missing name", form: Form{Email: "a@b.co", Subject: "Hi", Message: "Hello"}, field: FieldName},
		{name: "missing email", form: Form{Name: "Ann", Subject: "Hi", Message: "Hello"}, field: FieldEmail},
		{name: "missing subject", form: Form{Name: "Ann", Email: "a@b.co", Message: "Hello"}, field: FieldSubject},
		{name: "missing message", form: Form{Name: "Ann", Email: "a@b.co", Subject: "Hi"}, field: FieldMessage},
		{name: "blank name", form: Form{Name: "   ", Email: "a@b.co", Subject: "Hi", Message: "Hello"}, field: FieldName},
		{name: "malformed email", form: Form{Name: "Ann", Email: "not-an-address", Subject: "Hi", Message: "Hello"}, field: FieldEmail},
		{name: "email without domain", form: Form{Name: "Ann", Email: "ann@", Subject: "Hi", Message: "Hello"}, field: FieldEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, clk := newMachine(t, nil)
			fill(t, m, tt.form)

			err := m.Submit()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)

			snap := m.Snapshot()
			assert.Equal(t, Idle, snap.Phase)
			assert.Equal(t, tt.form, snap.Form, "fields must not be cleared")
			assert.NotEmpty(t, snap.Error(tt.field))
			assert.Zero(t, clk.Pending())
		})
	}
}

func TestValidateReportsEveryEmptyField(t *testing.T) {
	err := Validate(Form{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 4)
	assert.Contains(t, verr.Error(), "email")
	assert.NoError(t, Validate(validForm()))
}

func TestEditClearsFieldError(t *testing.T) {
	m, _ := newMachine(t, nil)
	require.Error(t, m.Submit())
	require.NotEmpty(t, m.Snapshot().Error(FieldName))

	require.NoError(t, m.Set(FieldName, "Ann"))
	snap := m.Snapshot()
	assert.Empty(t, snap.Error(FieldName))
	assert.NotEmpty(t, snap.Error(FieldEmail))
}

func TestResubmitWhileSubmittingIsNoop(t *testing.T) {
	sender := &recordingSender{}
	m, clk := newMachine(t, sender)
	fill(t, m, validForm())
	require.NoError(t, m.Submit())

	before := m.Snapshot()
	assert.ErrorIs(t, m.Submit(), ErrInFlight)
	assert.ErrorIs(t, m.Set(FieldName, "Bob"), ErrInFlight)
	assert.ErrorIs(t, m.Update(Form{}), ErrInFlight)
	assert.Equal(t, before, m.Snapshot())
	assert.Equal(t, 1, clk.Pending())

	clk.Advance(DefaultSubmitDelay)
	assert.Len(t, sender.sent, 1)
	assert.ErrorIs(t, m.Submit(), ErrInFlight, "submitted phase also refuses")
}

func TestDeliveryFailure(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	m, clk := newMachine(t, sender)
	fill(t, m, validForm())
	require.NoError(t, m.Submit())

	clk.Advance(DefaultSubmitDelay)
	snap := m.Snapshot()
	assert.Equal(t, Failed, snap.Phase)
	assert.Equal(t, validForm(), snap.Form, "failed submission keeps fields")
	assert.NotEmpty(t, snap.Failure)
	assert.False(t, snap.Busy())

	t.Run("retry from failed is accepted", func(t *testing.T) {
		sender.mu.Lock()
		sender.err = nil
		sender.mu.Unlock()

		require.NoError(t, m.Submit())
		assert.Equal(t, Submitting, m.Phase())
		clk.Advance(DefaultSubmitDelay)
		assert.Equal(t, Submitted, m.Phase())
		clk.Advance(DefaultResetDelay)
		assert.Equal(t, Idle, m.Phase())
	})
}

func TestFailedReturnsToIdleKeepingFields(t *testing.T) {
	m, clk := newMachine(t, &recordingSender{err: errors.New("boom")})
	fill(t, m, validForm())
	require.NoError(t, m.Submit())

	clk.Advance(DefaultSubmitDelay + DefaultResetDelay)
	snap := m.Snapshot()
	assert.Equal(t, Idle, snap.Phase)
	assert.Equal(t, validForm(), snap.Form)
	assert.Empty(t, snap.Failure)
}

func TestCloseSuppressesPendingTimers(t *testing.T) {
	t.Run("while submitting", func(t *testing.T) {
		sender := &recordingSender{}
		m, clk := newMachine(t, sender)
		fill(t, m, validForm())
		require.NoError(t, m.Submit())

		m.Close()
		assert.Zero(t, clk.Pending())
		clk.Advance(time.Minute)
		assert.Empty(t, sender.sent)
		assert.Equal(t, Submitting, m.Phase())
		assert.ErrorIs(t, m.Submit(), ErrClosed)
	})

	t.Run("while submitted", func(t *testing.T) {
		m, clk := newMachine(t, nil)
		fill(t, m, validForm())
		require.NoError(t, m.Submit())
		clk.Advance(DefaultSubmitDelay)
		require.Equal(t, Submitted, m.Phase())

		m.Close()
		clk.Advance(time.Minute)
		assert.Equal(t, Submitted, m.Phase())
	})

	t.Run("stale callback after close", func(t *testing.T) {
		m, _ := newMachine(t, nil)
		fill(t, m, validForm())
		require.NoError(t, m.Submit())
		m.Close()
		m.deliver(1, validForm())
		m.reset(1)
		assert.Equal(t, Submitting, m.Phase())
	})
}

func TestSetUnknownField(t *testing.T) {
	m, _ := newMachine(t, nil)
	assert.ErrorIs(t, m.Set(Field("phone"), "123"), ErrUnknownField)
}

func TestCustomDelays(t *testing.T) {
	clk := clock.NewFake(epoch)
	m := New(nil, clk, Options{SubmitDelay: 10 * time.Millisecond, ResetDelay: 20 * time.Millisecond})
	defer m.Close()
	fill(t, m, validForm())
	require.NoError(t, m.Submit())

	clk.Advance(10 * time.Millisecond)
	assert.Equal(t, Submitted, m.Phase())
	clk.Advance(20 * time.Millisecond)
	assert.Equal(t, Idle, m.Phase())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "submitting", Submitting.String())
	assert.Equal(t, "submitted", Submitted.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
