package retryutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDoSucceedsAfterRetries(t *testing.T) {
	calls := 0
	out, err := Do(context.Background(), 3, NoDelay, nil, func() (string, error) {
		calls++
		if calls < 3 {
			return "", fmt.Errorf("transient %d", calls)
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "ok", out)
	require.Equal(t, 3, calls)
}

func TestDoExhaustsBudget(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), 3, NoDelay, nil, func() (string, error) {
		calls++
		return "", fmt.Errorf("transient %d", calls)
	})
	require.EqualError(t, err, "transient 3")
	require.Equal(t, 3, calls)
}

func TestDoFailsImmediatelyOnClassifier(t *testing.T) {
	fatal := fmt.Errorf("rejected")
	classify := func(err error) Decision {
		if err == fatal {
			return Fail
		}
		return Retry
	}

	calls := 0
	start := time.Now()
	_, err := Do(context.Background(), 3, LinearDelay(time.Second), classify, func() (int, error) {
		calls++
		return 0, fatal
	})
	require.Equal(t, fatal, err)
	require.Equal(t, 1, calls)
	// a Fail decision must not consume a backoff delay
	require.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestDoHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Do(ctx, 3, LinearDelay(time.Hour), nil, func() (int, error) {
		calls++
		return 0, fmt.Errorf("transient")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}
