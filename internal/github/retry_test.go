package github

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResets struct {
	resets []time.Time
	err    error
	calls  int
}

func (f *fakeResets) CoreReset(context.Context) (time.Time, error) {
	f.calls++
	if f.err != nil {
		return time.Time{}, f.err
	}
	idx := f.calls - 1
	if idx >= len(f.resets) {
		idx = len(f.resets) - 1
	}
	return f.resets[idx], nil
}

type recordedSleeps struct {
	waits []time.Duration
}

func (r *recordedSleeps) sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRetrier(source ResetSource) (*Retrier, *recordedSleeps) {
	sleeps := &recordedSleeps{}
	return &Retrier{
		Policy: DefaultRetryPolicy(),
		Source: source,
		Clock:  func() time.Time { return fixedNow },
		Sleep:  sleeps.sleep,
	}, sleeps
}

func rateLimited() error {
	return &RateLimitError{StatusCode: http.StatusForbidden, Message: "API rate limit exceeded"}
}

func TestDoReturnsResultOfFirstSuccessfulAttempt(t *testing.T) {
	for k := 1; k <= 3; k++ {
		source := &fakeResets{resets: []time.Time{fixedNow.Add(10 * time.Second)}}
		r, sleeps := newTestRetrier(source)

		calls := 0
		got, err := Do(context.Background(), r, "test", func(context.Context) (int, error) {
			calls++
			if calls < k {
				return 0, rateLimited()
			}
			return 42, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.Equal(t, k, calls, "attempts for success on attempt %d", k)
		assert.Len(t, sleeps.waits, k-1)
	}
}

func TestDoDoesNotRetryFatalErrors(t *testing.T) {
	source := &fakeResets{resets: []time.Time{fixedNow}}
	r, sleeps := newTestRetrier(source)
	notFound := &APIError{StatusCode: http.StatusNotFound, Message: "Not Found"}

	calls := 0
	_, err := Do(context.Background(), r, "test", func(context.Context) (string, error) {
		calls++
		return "", notFound
	})

	require.ErrorIs(t, err, notFound)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeps.waits)
	assert.Zero(t, source.calls)
}

func TestDoExhaustsAttemptsAndReturnsOriginalError(t *testing.T) {
	source := &fakeResets{resets: []time.Time{fixedNow.Add(10 * time.Second)}}
	r, sleeps := newTestRetrier(source)
	original := rateLimited()

	calls := 0
	_, err := Do(context.Background(), r, "test", func(context.Context) (int, error) {
		calls++
		return 0, original
	})

	require.Error(t, err)
	assert.Same(t, original, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, sleeps.waits, 2)
}

func TestDoWaitsUntilResetPlusBuffer(t *testing.T) {
	source := &fakeResets{resets: []time.Time{
		fixedNow.Add(10 * time.Second),
		fixedNow.Add(2 * time.Second),
	}}
	r, sleeps := newTestRetrier(source)

	_, _ = Do(context.Background(), r, "test", func(context.Context) (int, error) {
		return 0, rateLimited()
	})

	assert.Equal(t, []time.Duration{15 * time.Second, 7 * time.Second}, sleeps.waits)
	assert.Equal(t, 2, source.calls)
}

func TestDoCapsWaitAtMaximum(t *testing.T) {
	source := &fakeResets{resets: []time.Time{fixedNow.Add(10 * time.Minute)}}
	r, sleeps := newTestRetrier(source)

	calls := 0
	_, err := Do(context.Background(), r, "test", func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, rateLimited()
		}
		return 1, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{60 * time.Second}, sleeps.waits)
}

func TestDoClampsPassedResetToMinimumWait(t *testing.T) {
	source := &fakeResets{resets: []time.Time{fixedNow.Add(-30 * time.Second)}}
	r, sleeps := newTestRetrier(source)

	calls := 0
	_, err := Do(context.Background(), r, "test", func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, rateLimited()
		}
		return 1, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second}, sleeps.waits)
}

func TestDoGenericForbiddenRateLimitWaitsFixedDuration(t *testing.T) {
	source := &fakeResets{resets: []time.Time{fixedNow.Add(10 * time.Second)}}
	r, sleeps := newTestRetrier(source)

	calls := 0
	_, err := Do(context.Background(), r, "test", func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, &APIError{StatusCode: http.StatusForbidden, Message: "API rate limit exceeded for user"}
		}
		return 1, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{60 * time.Second}, sleeps.waits)
	assert.Zero(t, source.calls, "generic rate limit must not query the window")
}

func TestDoForbiddenWithoutRateLimitIsFatal(t *testing.T) {
	r, sleeps := newTestRetrier(&fakeResets{resets: []time.Time{fixedNow}})

	calls := 0
	_, err := Do(context.Background(), r, "test", func(context.Context) (int, error) {
		calls++
		return 0, &APIError{StatusCode: http.StatusForbidden, Message: "Forbidden: insufficient scope"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeps.waits)
}

func TestDoFallsBackToMaxWaitWhenWindowQueryFails(t *testing.T) {
	source := &fakeResets{err: errors.New("network down")}
	r, sleeps := newTestRetrier(source)

	calls := 0
	_, err := Do(context.Background(), r, "test", func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, rateLimited()
		}
		return 1, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{60 * time.Second}, sleeps.waits)
}

func TestDoStopsWhenContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Retrier{
		Policy: DefaultRetryPolicy(),
		Source: &fakeResets{resets: []time.Time{fixedNow.Add(10 * time.Second)}},
		Clock:  func() time.Time { return fixedNow },
	}
	original := rateLimited()

	calls := 0
	_, err := Do(ctx, r, "test", func(context.Context) (int, error) {
		calls++
		return 0, original
	})

	require.ErrorIs(t, err, original)
	assert.Contains(t, err.Error(), "interrupted")
	assert.Equal(t, 1, calls)
}

func TestClassify(t *testing.T) {
	policy := DefaultRetryPolicy()

	tests := []struct {
		name      string
		err       error
		outcome   Outcome
		wantAfter *time.Duration
	}{
		{name: "success", err: nil, outcome: OutcomeSuccess},
		{name: "explicit signal", err: rateLimited(), outcome: OutcomeRetryableRateLimit},
		{name: "wrapped explicit signal", err: errors.Join(errors.New("ctx"), rateLimited()), outcome: OutcomeRetryableRateLimit},
		{name: "generic forbidden rate limit", err: &APIError{StatusCode: 403, Message: "You have exceeded a secondary RATE LIMIT"}, outcome: OutcomeRetryableRateLimit, wantAfter: &policy.GenericWait},
		{name: "rate limit text on other status", err: &APIError{StatusCode: 422, Message: "rate limit"}, outcome: OutcomeFatal},
		{name: "forbidden scope", err: &APIError{StatusCode: 403, Message: "Forbidden: insufficient scope"}, outcome: OutcomeFatal},
		{name: "plain error", err: errors.New("boom"), outcome: OutcomeFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err, policy)
			assert.Equal(t, tt.outcome, got.Outcome)
			if tt.wantAfter == nil {
				assert.Nil(t, got.RetryAfter)
			} else {
				require.NotNil(t, got.RetryAfter)
				assert.Equal(t, *tt.wantAfter, *got.RetryAfter)
			}
		})
	}
}

func TestRetryPolicyNormalizesZeroValues(t *testing.T) {
	p := RetryPolicy{}.normalized()
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, 60*time.Second, p.MaxWait)
}

func TestRetryPolicyClampsMinimumWaitToMaximum(t *testing.T) {
	p := RetryPolicy{MaxWait: 500 * time.Millisecond, MinWait: 2 * time.Second}.normalized()
	assert.Equal(t, 500*time.Millisecond, p.MinWait)
}

func TestDoNeverWaitsLongerThanMaximum(t *testing.T) {
	for name, reset := range map[string]time.Time{
		"passed reset": fixedNow.Add(-30 * time.Second),
		"future reset": fixedNow.Add(10 * time.Minute),
	} {
		t.Run(name, func(t *testing.T) {
			r, sleeps := newTestRetrier(&fakeResets{resets: []time.Time{reset}})
			r.Policy.MaxWait = 500 * time.Millisecond
			r.Policy.MinWait = 2 * time.Second

			_, _ = Do(context.Background(), r, "test", func(context.Context) (int, error) {
				return 0, rateLimited()
			})

			assert.Equal(t, []time.Duration{500 * time.Millisecond, 500 * time.Millisecond}, sleeps.waits)
		})
	}
}
