package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUntil_AcceptsFirstMatch(t *testing.T) {
	calls := 0
	v, err := Until(context.Background(), 3,
		func(_ context.Context, attempt int) (int, error) {
			calls++
			return attempt * 10, nil
		},
		func(_ context.Context, v int) (bool, error) { return v >= 10, nil },
	)

	require.NoError(t, err)
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, calls)
}

func TestUntil_Exhausted(t *testing.T) {
	calls := 0
	v, err := Until(context.Background(), 3,
		func(_ context.Context, _ int) (string, error) {
			calls++
			return "dup", nil
		},
		func(_ context.Context, _ string) (bool, error) { return false, nil },
	)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExhausted))
	var exh *ExhaustedError[string]
	require.True(t, errors.As(err, &exh))
	assert.Equal(t, 3, exh.Attempts)
	assert.Equal(t, "dup", exh.Last)
	assert.Equal(t, "dup", v)
	assert.Equal(t, 3, calls)
}

func TestUntil_ProduceErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	_, err := Until(context.Background(), 5,
		func(_ context.Context, _ int) (int, error) {
			calls++
			return 0, boom
		},
		func(_ context.Context, _ int) (bool, error) { return true, nil },
	)

	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, ErrExhausted))
	assert.Equal(t, 1, calls)
}

func TestUntil_PredicateErrorAborts(t *testing.T) {
	boom := errors.New("lookup failed")
	_, err := Until(context.Background(), 5,
		func(_ context.Context, a int) (int, error) { return a, nil },
		func(_ context.Context, _ int) (bool, error) { return false, boom },
	)
	assert.ErrorIs(t, err, boom)
}

func TestUntil_ZeroAttempts(t *testing.T) {
	_, err := Until(context.Background(), 0,
		func(_ context.Context, _ int) (int, error) {
			t.Fatal("produce must not be called")
			return 0, nil
		},
		func(_ context.Context, _ int) (bool, error) { return true, nil },
	)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestUntil_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Until(ctx, 3,
		func(_ context.Context, _ int) (int, error) { return 1, nil },
		func(_ context.Context, _ int) (bool, error) { return true, nil },
	)
	assert.ErrorIs(t, err, context.Canceled)
}
