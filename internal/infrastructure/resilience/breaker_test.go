package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFailed = errors.New("failed")

func run(b *Breaker, outcomes ...bool) {
	for _, ok := range outcomes {
		_ = b.Execute(func() error {
			if ok {
				return nil
			}
			return errFailed
		})
	}
}

func tripAfter(n uint32) func(Counts) bool {
	return func(c Counts) bool { return c.ConsecutiveFailures >= n }
}

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		outcomes []bool
		want     State
	}{
		{
			name:     "stays closed on successes",
			settings: Settings{Interval: time.Minute, Timeout: time.Minute},
			outcomes: []bool{true, true, true},
			want:     StateClosed,
		},
		{
			name:     "opens after consecutive failures",
			settings: Settings{Interval: time.Minute, Timeout: time.Minute, ReadyToTrip: tripAfter(3)},
			outcomes: []bool{false, false, false},
			want:     StateOpen,
		},
		{
			name:     "a success resets the streak",
			settings: Settings{Interval: time.Minute, Timeout: time.Minute, ReadyToTrip: tripAfter(2)},
			outcomes: []bool{false, true, false},
			want:     StateClosed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("test", tt.settings)
			run(b, tt.outcomes...)
			assert.Equal(t, tt.want, b.State())
		})
	}
}

func TestBreakerCounts(t *testing.T) {
	b := New("test", Settings{Interval: time.Minute, Timeout: time.Minute})

	require.NoError(t, b.Execute(func() error { return nil }))
	c := b.Counts()
	assert.Equal(t, uint32(1), c.Requests)
	assert.Equal(t, uint32(1), c.TotalSuccesses)
	assert.Equal(t, uint32(1), c.ConsecutiveSuccesses)

	assert.ErrorIs(t, b.Execute(func() error { return errFailed }), errFailed)
	c = b.Counts()
	assert.Equal(t, uint32(2), c.Requests)
	assert.Equal(t, uint32(1), c.TotalFailures)
	assert.Equal(t, uint32(1), c.ConsecutiveFailures)
	assert.Zero(t, c.ConsecutiveSuccesses)
}

func TestBreakerOpenFailsFast(t *testing.T) {
	b := New("test", Settings{Interval: time.Minute, Timeout: time.Minute, ReadyToTrip: tripAfter(2)})
	run(b, false, false)

	called := false
	err := b.Execute(func() error { called = true; return nil })

	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerHalfOpenRecovers(t *testing.T) {
	b := New("test", Settings{
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     20 * time.Millisecond,
		ReadyToTrip: tripAfter(2),
	})
	run(b, false, false)
	require.Equal(t, StateOpen, b.State())

	require.Eventually(t, func() bool { return b.State() == StateHalfOpen }, time.Second, 5*time.Millisecond)
	run(b, true, true)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	var transitions []string
	b := New("test", Settings{
		Interval:    time.Minute,
		Timeout:     10 * time.Millisecond,
		ReadyToTrip: tripAfter(1),
		OnStateChange: func(_ string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})
	run(b, false)
	require.Eventually(t, func() bool { return b.State() == StateHalfOpen }, time.Second, 5*time.Millisecond)
	run(b, false)

	assert.Equal(t, StateOpen, b.State())
	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->open"}, transitions)
}

func TestCallReturnsValueWithClassifiedError(t *testing.T) {
	errServer := errors.New("server error")
	b := New("test", Settings{
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: tripAfter(1),
		IsFailure:   func(err error) bool { return errors.Is(err, errServer) },
	})

	v, err := Call(b, func() (int, error) { return 404, errors.New("not found") })
	assert.Equal(t, 404, v)
	assert.Error(t, err)
	assert.Equal(t, StateClosed, b.State(), "errors not classified as failures do not trip")

	v, err = Call(b, func() (int, error) { return 503, errServer })
	assert.Equal(t, 503, v)
	assert.ErrorIs(t, err, errServer)
	assert.Equal(t, StateOpen, b.State())
}

func TestGroupIsolatesKeys(t *testing.T) {
	g := NewGroup(Settings{Interval: time.Minute, Timeout: time.Minute, ReadyToTrip: tripAfter(1)})

	run(g.Get("https://bad.test"), false)

	assert.Same(t, g.Get("https://bad.test"), g.Get("https://bad.test"))
	assert.Equal(t, StateOpen, g.Get("https://bad.test").State())
	assert.Equal(t, StateClosed, g.Get("https://good.test").State())
	assert.Equal(t, map[string]State{
		"https://bad.test":  StateOpen,
		"https://good.test": StateClosed,
	}, g.States())
}
