package form

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iglloo/lead-intake/internal/leads"
	"github.com/iglloo/lead-intake/pkg/logging"
)

type fakeSubmitter struct {
	mu    sync.Mutex
	calls []leads.Submission
	err   error
	block chan struct{}
}

func (f *fakeSubmitter) Submit(ctx context.Context, sub leads.Submission) error {
	f.mu.Lock()
	f.calls = append(f.calls, sub)
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return f.err
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func quietLogger() *logging.Logger {
	return logging.NewWithWriter("error", "text", io.Discard)
}

func fill(t *testing.T, c *Controller, values map[string]string) {
	t.Helper()
	for field, value := range values {
		require.NoError(t, c.OnFieldChange(field, value))
	}
}

func validValues() map[string]string {
	return map[string]string{
		FieldName:    "Ana Sousa",
		FieldEmail:   "ana@example.com",
		FieldPhone:   "+351 912 345 678",
		FieldCountry: "Portugal",
		FieldMessage: "We are thinking about retiring near Lisbon.",
	}
}

func TestControllerSubmitSuccess(t *testing.T) {
	sub := &fakeSubmitter{}
	c := NewController(sub, WithLogger(quietLogger()))
	fill(t, c, validValues())

	view := c.OnSubmit(context.Background())

	assert.Equal(t, StateSuccess, view.State)
	assert.Equal(t, MsgSuccess, view.Message)
	assert.Equal(t, leads.Submission{}, view.Values)
	require.Equal(t, 1, sub.count())
	assert.Equal(t, "Ana Sousa", sub.calls[0].Name)
	assert.Equal(t, "Portugal", sub.calls[0].Country)
}

func TestControllerSubmitFailureKeepsValues(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("status 500")}
	c := NewController(sub, WithLogger(quietLogger()))
	fill(t, c, validValues())

	view := c.OnSubmit(context.Background())

	assert.Equal(t, StateError, view.State)
	assert.Equal(t, MsgFailure, view.Message)
	assert.Equal(t, "ana@example.com", view.Values.Email)
}

func TestControllerMissingFields(t *testing.T) {
	sub := &fakeSubmitter{}
	c := NewController(sub, WithLogger(quietLogger()))
	require.NoError(t, c.OnFieldChange(FieldName, "Ana"))

	view := c.OnSubmit(context.Background())

	assert.Equal(t, StateError, view.State)
	assert.Equal(t, MsgMissing, view.Message)
	assert.Zero(t, sub.count())
}

func TestControllerInvalidEmail(t *testing.T) {
	sub := &fakeSubmitter{}
	c := NewController(sub, WithLogger(quietLogger()))
	values := validValues()
	values[FieldEmail] = "ana-at-example"
	fill(t, c, values)

	view := c.OnSubmit(context.Background())

	assert.Equal(t, StateError, view.State)
	assert.Equal(t, "Please enter a valid email address.", view.Message)
	assert.Equal(t, FieldEmail, view.Field)
	assert.Zero(t, sub.count())

	require.NoError(t, c.OnFieldChange(FieldEmail, "ana@example.com"))
	assert.Equal(t, StateIdle, c.View().State)
}

func TestControllerShortMessage(t *testing.T) {
	sub := &fakeSubmitter{}
	c := NewController(sub, WithLogger(quietLogger()))
	values := validValues()
	values[FieldMessage] = "Hi there"
	fill(t, c, values)

	view := c.OnSubmit(context.Background())

	assert.Equal(t, StateError, view.State)
	assert.Equal(t, FieldMessage, view.Field)
	assert.Zero(t, sub.count())
}

func TestControllerEditingMissingFieldClearsError(t *testing.T) {
	c := NewController(&fakeSubmitter{}, WithLogger(quietLogger()))
	require.NoError(t, c.OnFieldChange(FieldName, "Ana"))
	require.Equal(t, StateError, c.OnSubmit(context.Background()).State)

	require.NoError(t, c.OnFieldChange(FieldPhone, "123"))
	assert.Equal(t, StateError, c.View().State)

	require.NoError(t, c.OnFieldChange(FieldMessage, "Hello"))
	assert.Equal(t, StateIdle, c.View().State)
	assert.Empty(t, c.View().Message)
}

func TestControllerEditingOtherFieldKeepsError(t *testing.T) {
	c := NewController(&fakeSubmitter{}, WithLogger(quietLogger()))
	values := validValues()
	values[FieldEmail] = "bad"
	fill(t, c, values)
	c.OnSubmit(context.Background())

	require.NoError(t, c.OnFieldChange(FieldPhone, "123"))
	assert.Equal(t, StateError, c.View().State)
}

func TestControllerHoneypotFakesSuccess(t *testing.T) {
	sub := &fakeSubmitter{}
	c := NewController(sub, WithLogger(quietLogger()))
	values := validValues()
	values[FieldCompany] = "Acme Bots"
	fill(t, c, values)

	view := c.OnSubmit(context.Background())

	assert.Equal(t, StateSuccess, view.State)
	assert.Equal(t, leads.Submission{}, view.Values)
	assert.Zero(t, sub.count())
}

func TestControllerHoneypotStillValidates(t *testing.T) {
	sub := &fakeSubmitter{}
	c := NewController(sub, WithLogger(quietLogger()))
	require.NoError(t, c.OnFieldChange(FieldCompany, "Acme Bots"))

	view := c.OnSubmit(context.Background())

	assert.Equal(t, StateError, view.State)
	assert.Equal(t, MsgMissing, view.Message)
}

func TestControllerUnknownField(t *testing.T) {
	c := NewController(&fakeSubmitter{})
	err := c.OnFieldChange("budget", "lots")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestControllerIgnoresSubmitWhileInFlight(t *testing.T) {
	sub := &fakeSubmitter{block: make(chan struct{})}
	c := NewController(sub, WithLogger(quietLogger()))
	fill(t, c, validValues())

	done := make(chan View, 1)
	go func() { done <- c.OnSubmit(context.Background()) }()

	require.Eventually(t, func() bool { return c.View().State == StateSubmitting }, time.Second, 5*time.Millisecond)

	second := c.OnSubmit(context.Background())
	assert.Equal(t, StateSubmitting, second.State)

	close(sub.block)
	first := <-done
	assert.Equal(t, StateSuccess, first.State)
	assert.Equal(t, 1, sub.count())
}

func TestControllerResetAfter(t *testing.T) {
	c := NewController(&fakeSubmitter{}, WithLogger(quietLogger()), WithResetAfter(20*time.Millisecond))
	fill(t, c, validValues())

	view := c.OnSubmit(context.Background())
	require.Equal(t, StateSuccess, view.State)

	require.Eventually(t, func() bool { return c.View().State == StateIdle }, time.Second, 5*time.Millisecond)
	assert.Empty(t, c.View().Message)
}

func TestControllerResetDoesNotClobberNewerState(t *testing.T) {
	c := NewController(&fakeSubmitter{}, WithLogger(quietLogger()), WithResetAfter(200*time.Millisecond))
	require.NoError(t, c.OnFieldChange(FieldName, "Ana"))
	c.OnSubmit(context.Background())

	time.Sleep(100 * time.Millisecond)
	fill(t, c, validValues())
	view := c.OnSubmit(context.Background())
	require.Equal(t, StateSuccess, view.State)

	// the first timer fires here and must leave the newer success alone
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, StateSuccess, c.View().State)
}

func TestNewControllerPanicsWithoutSubmitter(t *testing.T) {
	assert.Panics(t, func() { NewController(nil) })
}
