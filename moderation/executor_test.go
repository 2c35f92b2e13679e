package moderation

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"mod-bot/model"

	"github.com/bwmarrin/discordgo"
)

func restError(status int) error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: status}}
}

// testExecutor returns an executor with a controllable clock and a sleep
// stub that records requested delays instead of waiting.
func testExecutor(cfg model.ExecutorConfig) (*Executor, *[]time.Duration, *time.Time) {
	e := NewExecutor(cfg)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var slept []time.Duration
	e.now = func() time.Time { return current }
	e.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return e, &slept, &current
}

func TestExecuteRetriesTransientErrors(t *testing.T) {
	e, slept, _ := testExecutor(model.ExecutorConfig{MaxRetries: 3})

	calls := 0
	err := e.Execute(context.Background(), OpBanKick, "corr-1", func() error {
		calls++
		if calls < 3 {
			return restError(500)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if len(*slept) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", len(*slept))
	}
	// Exponential with ±10% jitter: attempt 1 near 1s, attempt 2 near 2s.
	if d := (*slept)[0]; d < 900*time.Millisecond || d > 1100*time.Millisecond {
		t.Fatalf("first backoff out of range: %v", d)
	}
	if d := (*slept)[1]; d < 1800*time.Millisecond || d > 2200*time.Millisecond {
		t.Fatalf("second backoff out of range: %v", d)
	}
}

func TestExecutePermanentErrorIsNotRetried(t *testing.T) {
	for _, status := range []int{403, 404} {
		e, slept, _ := testExecutor(model.ExecutorConfig{})

		calls := 0
		err := e.Execute(context.Background(), OpBanKick, "corr-1", func() error {
			calls++
			return restError(status)
		})
		if err == nil {
			t.Fatalf("status %d: expected error", status)
		}
		if calls != 1 {
			t.Fatalf("status %d: expected single attempt, got %d", status, calls)
		}
		if len(*slept) != 0 {
			t.Fatalf("status %d: expected no backoff, slept %v", status, *slept)
		}
	}
}

func TestExecuteHonorsRateLimitRetryAfter(t *testing.T) {
	e, slept, _ := testExecutor(model.ExecutorConfig{})

	calls := 0
	err := e.Execute(context.Background(), OpMessages, "corr-1", func() error {
		calls++
		if calls == 1 {
			return &discordgo.RateLimitError{
				RateLimit: &discordgo.RateLimit{
					TooManyRequests: &discordgo.TooManyRequests{RetryAfter: 5 * time.Second},
				},
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after rate limit, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
	if len(*slept) != 1 {
		t.Fatalf("expected one sleep, got %d", len(*slept))
	}
	// RetryAfter floors the backoff (5s >> 1s base), jitter within ±10%.
	if d := (*slept)[0]; d < 4500*time.Millisecond || d > 5500*time.Millisecond {
		t.Fatalf("expected retry-after to floor the delay, got %v", d)
	}
}

func TestExecuteRateLimitWithoutDetailsUsesBackoff(t *testing.T) {
	e, slept, _ := testExecutor(model.ExecutorConfig{})

	calls := 0
	err := e.Execute(context.Background(), OpMessages, "corr-1", func() error {
		calls++
		if calls == 1 {
			// A rate-limit error with no parsed body still classifies
			// as rate-limited instead of panicking.
			return &discordgo.RateLimitError{}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after rate limit, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
	if len(*slept) != 1 {
		t.Fatalf("expected one sleep, got %d", len(*slept))
	}
	// No retry-after to floor the delay, so the base backoff applies.
	if d := (*slept)[0]; d < 900*time.Millisecond || d > 1100*time.Millisecond {
		t.Fatalf("expected base backoff delay, got %v", d)
	}
}

func TestExecuteExhaustsRetries(t *testing.T) {
	e, _, _ := testExecutor(model.ExecutorConfig{MaxRetries: 3})

	calls := 0
	wantErr := restError(500)
	err := e.Execute(context.Background(), OpTimeout, "corr-1", func() error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected last error returned, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	e, _, clock := testExecutor(model.ExecutorConfig{
		MaxRetries:       1,
		FailureThreshold: 3,
		RecoveryTimeout:  60 * time.Second,
	})

	fail := func() error { return restError(500) }

	for i := 0; i < 3; i++ {
		if err := e.Execute(context.Background(), OpBanKick, "corr-1", fail); err == nil {
			t.Fatalf("attempt %d: expected failure", i)
		}
	}

	// Threshold reached: calls short-circuit without touching the API.
	calls := 0
	err := e.Execute(context.Background(), OpBanKick, "corr-1", func() error {
		calls++
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if calls != 0 {
		t.Fatal("call ran while breaker was open")
	}

	// Other buckets are unaffected.
	if err := e.Execute(context.Background(), OpTimeout, "corr-1", func() error { return nil }); err != nil {
		t.Fatalf("independent bucket tripped: %v", err)
	}

	// After the recovery window the breaker closes and calls flow again.
	*clock = clock.Add(61 * time.Second)
	err = e.Execute(context.Background(), OpBanKick, "corr-1", func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("expected breaker to recover, got %v", err)
	}
	if calls != 1 {
		t.Fatal("call did not run after recovery")
	}
}

func TestExecuteCanceledContextStopsRetrying(t *testing.T) {
	e := NewExecutor(model.ExecutorConfig{MaxRetries: 3, BaseDelay: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := e.Execute(ctx, OpMessages, "corr-1", func() error {
		calls++
		cancel()
		return restError(500)
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected single attempt, got %d", calls)
	}
}

func TestOpTypeFor(t *testing.T) {
	cases := map[model.CaseType]OpType{
		model.CaseTypeBan:       OpBanKick,
		model.CaseTypeTempBan:   OpBanKick,
		model.CaseTypeUnban:     OpBanKick,
		model.CaseTypeKick:      OpBanKick,
		model.CaseTypeTimeout:   OpTimeout,
		model.CaseTypeUntimeout: OpTimeout,
		model.CaseTypeWarn:      OpMessages,
		model.CaseTypeJail:      OpMessages,
	}
	for caseType, want := range cases {
		if got := OpTypeFor(caseType); got != want {
			t.Fatalf("%s: expected %s, got %s", caseType, want, got)
		}
	}
}
