package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeExtractFailed, "extraction failed")

	assert.Equal(t, ErrCodeExtractFailed, err.Code)
	assert.Equal(t, "extraction failed", err.Message)
	assert.Equal(t, SeverityError, err.Severity)
	assert.False(t, err.Recoverable)
	assert.NotEmpty(t, err.Stack)
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, ErrCodeCatalogQueryFailed, "catalog query failed")

	require.NotNil(t, err)
	assert.Equal(t, cause, err.Unwrap())
	assert.Contains(t, err.Error(), "catalog query failed")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "should be nil"))
}

func TestWrapInheritsContext(t *testing.T) {
	inner := New(ErrCodeExtractFailed, "inner").WithContext("warehouse", "Sales")
	outer := Wrap(inner, ErrCodePackageFailed, "outer")

	assert.Equal(t, "Sales", outer.Context["warehouse"])
}

func TestIs(t *testing.T) {
	err := New(ErrCodeCyclicDependency, "cycle found")
	target := New(ErrCodeCyclicDependency, "different message")

	assert.True(t, errors.Is(err, target))
	assert.False(t, errors.Is(err, New(ErrCodeInternal, "other")))
}

func TestWithContext(t *testing.T) {
	err := New(ErrCodeExtractFailed, "failed").
		WithContext("warehouse", "Inventory").
		WithContext("attempt", 2)

	assert.Equal(t, "Inventory", err.Context["warehouse"])
	assert.Equal(t, 2, err.Context["attempt"])
}

func TestCatalogError(t *testing.T) {
	cause := errors.New("access denied")
	err := CatalogError("Failed to query references", "Sales", cause)

	assert.Equal(t, ErrCodeCatalogQueryFailed, err.Code)
	assert.Equal(t, "Sales", err.Context["warehouse"])
	assert.True(t, err.Recoverable)
	assert.NotEmpty(t, err.Suggestions)
}

func TestCyclicDependencyError(t *testing.T) {
	err := CyclicDependencyError([]string{"X -> Y -> X"})

	assert.Equal(t, ErrCodeCyclicDependency, err.Code)
	assert.Equal(t, SeverityCritical, err.Severity)
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(New(ErrCodeInternal, "x").AsRecoverable()))
	assert.False(t, IsRecoverable(New(ErrCodeInternal, "x")))
	assert.False(t, IsRecoverable(errors.New("plain error")))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodePublishFailed, GetErrorCode(New(ErrCodePublishFailed, "x")))
	assert.Equal(t, ErrCodeInternal, GetErrorCode(errors.New("plain error")))
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	config := &RetryConfig{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
		RetryableError: func(error) bool {
			return true
		},
	}

	attempts := 0
	err := Retry(context.Background(), config, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return New(ErrCodeTimeout, "transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	config := DefaultRetryConfig()
	config.InitialDelay = time.Millisecond

	attempts := 0
	err := Retry(context.Background(), config, func(ctx context.Context) error {
		attempts++
		return New(ErrCodeCyclicDependency, "fatal")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryExhausted(t *testing.T) {
	config := &RetryConfig{
		MaxRetries:     2,
		InitialDelay:   time.Millisecond,
		MaxDelay:       time.Millisecond,
		Multiplier:     1.0,
		RetryableError: func(error) bool { return true },
	}

	err := Retry(context.Background(), config, func(ctx context.Context) error {
		return New(ErrCodeTimeout, "always fails")
	})

	require.Error(t, err)
	assert.Equal(t, ErrCodeResourceExhausted, GetErrorCode(err))
}

func TestPollUntilCompletes(t *testing.T) {
	polls := 0
	err := PollUntil(context.Background(), time.Millisecond, time.Second, func(ctx context.Context) (bool, error) {
		polls++
		return polls >= 3, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, polls)
}

func TestPollUntilTimesOut(t *testing.T) {
	err := PollUntil(context.Background(), time.Millisecond, 5*time.Millisecond, func(ctx context.Context) (bool, error) {
		return false, nil
	})

	require.Error(t, err)
	assert.Equal(t, ErrCodeRefreshTimeout, GetErrorCode(err))
}

func TestPollUntilPropagatesError(t *testing.T) {
	boom := fmt.Errorf("poll failed")
	err := PollUntil(context.Background(), time.Millisecond, time.Second, func(ctx context.Context) (bool, error) {
		return false, boom
	})

	assert.Equal(t, boom, err)
}

func TestCircuitBreakerOpens(t *testing.T) {
	cb := NewCircuitBreaker("catalog", 2, time.Minute)
	fail := func() error { return New(ErrCodeCatalogUnavailable, "down") }

	ctx := context.Background()
	assert.Error(t, cb.Execute(ctx, fail))
	assert.Error(t, cb.Execute(ctx, fail))
	assert.Equal(t, "open", cb.GetState())

	// Calls are rejected while the circuit is open
	err := cb.Execute(ctx, func() error { return nil })
	require.Error(t, err)
	assert.Equal(t, ErrCodeServiceUnavailable, GetErrorCode(err))
}

func TestCircuitBreakerRecovers(t *testing.T) {
	cb := NewCircuitBreaker("catalog", 1, time.Millisecond)
	ctx := context.Background()

	assert.Error(t, cb.Execute(ctx, func() error { return New(ErrCodeTimeout, "x") }))
	assert.Equal(t, "open", cb.GetState())

	time.Sleep(5 * time.Millisecond)

	assert.NoError(t, cb.Execute(ctx, func() error { return nil }))
	assert.Equal(t, "closed", cb.GetState())
}
