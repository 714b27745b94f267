package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPrimary = errors.New("primary down")

func TestBreaker_InitialState(t *testing.T) {
	b := New("test", DefaultConfig())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, 0, b.Failures())
}

func TestCall_PrimarySuccess(t *testing.T) {
	b := New("test", DefaultConfig())

	out, err := Call(context.Background(), b,
		func(context.Context) (string, error) { return "primary", nil },
		func(context.Context) (string, error) { return "fallback", nil },
	)
	require.NoError(t, err)
	assert.Equal(t, "primary", out)
	assert.Equal(t, StateClosed, b.State())
}

func TestCall_FallbackOnPrimaryError(t *testing.T) {
	b := New("test", DefaultConfig())

	out, err := Call(context.Background(), b,
		func(context.Context) (string, error) { return "", errPrimary },
		func(context.Context) (string, error) { return "fallback", nil },
	)
	require.NoError(t, err)
	assert.Equal(t, "fallback", out)
	assert.Equal(t, 1, b.Failures())
}

func TestCall_OpensAfterMaxFailures(t *testing.T) {
	b := New("test", Config{MaxFailures: 3, ResetTimeout: time.Minute})

	primaryCalls := 0
	primary := func(context.Context) (string, error) {
		primaryCalls++
		return "", errPrimary
	}
	fallback := func(context.Context) (string, error) { return "fallback", nil }

	for i := 0; i < 3; i++ {
		_, err := Call(context.Background(), b, primary, fallback)
		require.NoError(t, err)
	}
	assert.Equal(t, StateOpen, b.State())
	assert.Equal(t, 3, primaryCalls)

	// Open circuit: fallback without a primary attempt
	out, err := Call(context.Background(), b, primary, fallback)
	require.NoError(t, err)
	assert.Equal(t, "fallback", out)
	assert.Equal(t, 3, primaryCalls, "primary must not run while open")
}

func TestCall_HalfOpenTrialAfterResetTimeout(t *testing.T) {
	b := New("test", Config{MaxFailures: 1, ResetTimeout: 10 * time.Millisecond})

	fail := func(context.Context) (string, error) { return "", errPrimary }
	fallback := func(context.Context) (string, error) { return "fallback", nil }

	_, err := Call(context.Background(), b, fail, fallback)
	require.NoError(t, err)
	require.Equal(t, StateOpen, b.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, b.State())

	// Trial succeeds: circuit closes and the failure count resets
	out, err := Call(context.Background(), b,
		func(context.Context) (string, error) { return "recovered", nil },
		fallback,
	)
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, 0, b.Failures())
}

func TestCall_HalfOpenFailureReopens(t *testing.T) {
	b := New("test", Config{MaxFailures: 1, ResetTimeout: 10 * time.Millisecond})

	fail := func(context.Context) (string, error) { return "", errPrimary }
	fallback := func(context.Context) (string, error) { return "fallback", nil }

	_, _ = Call(context.Background(), b, fail, fallback)
	time.Sleep(20 * time.Millisecond)

	// Trial fails: straight back to open with a fresh timeout window
	out, err := Call(context.Background(), b, fail, fallback)
	require.NoError(t, err)
	assert.Equal(t, "fallback", out)
	assert.Equal(t, StateOpen, b.State())
}

func TestCall_FallbackErrorPropagates(t *testing.T) {
	b := New("test", DefaultConfig())
	errFallback := errors.New("fallback down")

	_, err := Call(context.Background(), b,
		func(context.Context) (string, error) { return "", errPrimary },
		func(context.Context) (string, error) { return "", errFallback },
	)
	assert.ErrorIs(t, err, errFallback)
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := New("test", Config{MaxFailures: 3, ResetTimeout: time.Minute})

	fail := func(context.Context) (string, error) { return "", errPrimary }
	ok := func(context.Context) (string, error) { return "ok", nil }
	fallback := func(context.Context) (string, error) { return "fallback", nil }

	_, _ = Call(context.Background(), b, fail, fallback)
	_, _ = Call(context.Background(), b, fail, fallback)
	_, _ = Call(context.Background(), b, ok, fallback)

	// Two more failures must not open it: the counter was reset
	_, _ = Call(context.Background(), b, fail, fallback)
	_, _ = Call(context.Background(), b, fail, fallback)
	assert.Equal(t, StateClosed, b.State())
}
