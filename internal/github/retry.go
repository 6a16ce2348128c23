package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"
)

// RetryPolicy bounds how the client waits out rate-limit rejections.
type RetryPolicy struct {
	// MaxAttempts counts the initial call.
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts" validate:"min=1,max=10"`
	// ResetBuffer is added to the time remaining until the window resets.
	ResetBuffer time.Duration `mapstructure:"reset_buffer" yaml:"reset_buffer" validate:"min=0"`
	// MaxWait caps a single sleep.
	MaxWait time.Duration `mapstructure:"max_wait" yaml:"max_wait" validate:"gt=0"`
	// GenericWait is used when the failure only mentions a rate limit.
	GenericWait time.Duration `mapstructure:"generic_wait" yaml:"generic_wait" validate:"min=0"`
	// MinWait floors computed waits so an already-passed reset never busy-loops.
	MinWait time.Duration `mapstructure:"min_wait" yaml:"min_wait" validate:"min=0"`
}

// DefaultRetryPolicy returns three attempts, a five second reset buffer and
// a sixty second cap.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		ResetBuffer: 5 * time.Second,
		MaxWait:     60 * time.Second,
		GenericWait: 60 * time.Second,
		MinWait:     time.Second,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.MaxWait <= 0 {
		p.MaxWait = def.MaxWait
	}
	if p.ResetBuffer < 0 {
		p.ResetBuffer = 0
	}
	if p.GenericWait < 0 {
		p.GenericWait = 0
	}
	if p.MinWait < 0 {
		p.MinWait = 0
	}
	// MaxWait bounds every wait, including the floor.
	if p.MinWait > p.MaxWait {
		p.MinWait = p.MaxWait
	}
	return p
}

// Outcome is the result of classifying a single attempt.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeRetryableRateLimit
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetryableRateLimit:
		return "retryable_rate_limit"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Classification describes what the retry loop should do after an attempt.
//
// For OutcomeRetryableRateLimit a nil RetryAfter means the wait must be
// derived from the remote window's reset time.
type Classification struct {
	Outcome    Outcome
	RetryAfter *time.Duration
	Message    string
}

// Classify maps an attempt error to an outcome. It performs no I/O.
func Classify(err error, policy RetryPolicy) Classification {
	if err == nil {
		return Classification{Outcome: OutcomeSuccess}
	}
	policy = policy.normalized()

	var rle *RateLimitError
	if errors.As(err, &rle) {
		return Classification{Outcome: OutcomeRetryableRateLimit, Message: err.Error()}
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden &&
		strings.Contains(strings.ToLower(apiErr.Message), "rate limit") {
		wait := policy.GenericWait
		return Classification{Outcome: OutcomeRetryableRateLimit, RetryAfter: &wait, Message: err.Error()}
	}

	return Classification{Outcome: OutcomeFatal, Message: err.Error()}
}

// ResetSource reports when the core rate-limit window replenishes.
type ResetSource interface {
	CoreReset(ctx context.Context) (time.Time, error)
}

// Retrier executes hosting-API operations under a RetryPolicy.
type Retrier struct {
	Policy RetryPolicy
	Source ResetSource
	Logger *logging.Logger
	Clock  func() time.Time
	Sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetrier returns a retrier using the wall clock.
func NewRetrier(policy RetryPolicy, source ResetSource, logger *logging.Logger) *Retrier {
	return &Retrier{Policy: policy, Source: source, Logger: logger}
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// policy's attempts are exhausted. The last error is returned unchanged.
func Do[T any](ctx context.Context, r *Retrier, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	if r == nil {
		r = &Retrier{}
	}
	policy := r.Policy.normalized()

	var (
		result T
		err    error
	)
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		result, err = fn(ctx)
		class := Classify(err, policy)
		switch class.Outcome {
		case OutcomeSuccess:
			return result, nil
		case OutcomeFatal:
			return result, err
		}

		if attempt == policy.MaxAttempts {
			r.logError("Rate limit exceeded, no retries left",
				zap.String("operation", op),
				zap.Int("attempts", attempt),
				zap.Error(err))
			return result, err
		}

		wait := r.waitFor(ctx, class, policy)
		r.logWarn(fmt.Sprintf("Rate limit exceeded. Waiting %s before retry", wait.Round(time.Second)),
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", policy.MaxAttempts),
			zap.Duration("wait", wait))

		if sleepErr := r.sleep(ctx, wait); sleepErr != nil {
			return result, fmt.Errorf("%w (retry wait interrupted: %v)", err, sleepErr)
		}
	}
	return result, err
}

func (r *Retrier) waitFor(ctx context.Context, class Classification, policy RetryPolicy) time.Duration {
	var wait time.Duration
	switch {
	case class.RetryAfter != nil:
		wait = *class.RetryAfter
	case r.Source == nil:
		wait = policy.MaxWait
	default:
		reset, err := r.Source.CoreReset(ctx)
		if err != nil {
			r.logWarn("Could not read rate limit window, using maximum wait", zap.Error(err))
			wait = policy.MaxWait
			break
		}
		wait = reset.Sub(r.now()) + policy.ResetBuffer
	}

	if wait > policy.MaxWait {
		wait = policy.MaxWait
	}
	if wait < policy.MinWait {
		wait = policy.MinWait
	}
	return wait
}

func (r *Retrier) now() time.Time {
	if r.Clock != nil {
		return r.Clock()
	}
	return time.Now()
}

func (r *Retrier) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
	return sleepContext(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Retrier) logWarn(msg string, fields ...zap.Field) {
	if r.Logger != nil {
		r.Logger.Warn(msg, fields...)
	}
}

func (r *Retrier) logError(msg string, fields ...zap.Field) {
	if r.Logger != nil {
		r.Logger.Error(msg, fields...)
	}
}
