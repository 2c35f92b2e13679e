package moderation

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"mod-bot/model"

	"github.com/bwmarrin/discordgo"
)

// OpType is the coarse bucket an external action falls into. Buckets
// share retry/breaker state: repeated ban failures open the circuit for
// every ban/kick/tempban/unban call, not just the one that failed.
type OpType string

const (
	OpBanKick  OpType = "ban_kick"
	OpTimeout  OpType = "timeout"
	OpMessages OpType = "messages"
)

// OpTypeFor maps a case type to its operation bucket.
func OpTypeFor(t model.CaseType) OpType {
	switch t {
	case model.CaseTypeBan, model.CaseTypeUnban, model.CaseTypeTempBan, model.CaseTypeKick:
		return OpBanKick
	case model.CaseTypeTimeout, model.CaseTypeUntimeout:
		return OpTimeout
	default:
		return OpMessages
	}
}

// ErrCircuitOpen is returned without attempting the call while the
// bucket's breaker is open and the recovery window has not elapsed.
var ErrCircuitOpen = errors.New("circuit breaker is open")

const (
	defaultMaxRetries       = 3
	defaultBaseDelay        = 1 * time.Second
	defaultMaxDelay         = 30 * time.Second
	defaultFailureThreshold = 5
	defaultRecoveryTimeout  = 60 * time.Second
)

type errClass int

const (
	classTransient errClass = iota // unknown errors, retried with backoff
	classRateLimited
	classServer
	classPermanent // forbidden / not found, never retried
)

// classify sorts a Discord API error into a retry class. The second
// return value is the server-advertised retry delay, when known.
func classify(err error) (errClass, time.Duration) {
	var rateErr *discordgo.RateLimitError
	if errors.As(err, &rateErr) {
		var retryAfter time.Duration
		if rateErr.RateLimit != nil && rateErr.RateLimit.TooManyRequests != nil {
			retryAfter = rateErr.RetryAfter
		}
		return classRateLimited, retryAfter
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch code := restErr.Response.StatusCode; {
		case code == 403 || code == 404:
			return classPermanent, 0
		case code == 429:
			return classRateLimited, 0
		case code >= 500:
			return classServer, 0
		}
	}

	return classTransient, 0
}

// Executor runs external moderation actions with bounded retries and a
// per-bucket circuit breaker.
type Executor struct {
	maxRetries       int
	baseDelay        time.Duration
	maxDelay         time.Duration
	failureThreshold int
	recoveryTimeout  time.Duration

	mu       sync.Mutex
	failures map[OpType]int
	openedAt map[OpType]time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an executor; zero config fields fall back to the
// defaults (3 retries, 1s base delay, 30s cap, threshold 5, 60s recovery).
func NewExecutor(cfg model.ExecutorConfig) *Executor {
	e := &Executor{
		maxRetries:       cfg.MaxRetries,
		baseDelay:        cfg.BaseDelay,
		maxDelay:         cfg.MaxDelay,
		failureThreshold: cfg.FailureThreshold,
		recoveryTimeout:  cfg.RecoveryTimeout,
		failures:         make(map[OpType]int),
		openedAt:         make(map[OpType]time.Time),
		now:              time.Now,
		sleep:            sleepContext,
	}
	if e.maxRetries <= 0 {
		e.maxRetries = defaultMaxRetries
	}
	if e.baseDelay <= 0 {
		e.baseDelay = defaultBaseDelay
	}
	if e.maxDelay <= 0 {
		e.maxDelay = defaultMaxDelay
	}
	if e.failureThreshold <= 0 {
		e.failureThreshold = defaultFailureThreshold
	}
	if e.recoveryTimeout <= 0 {
		e.recoveryTimeout = defaultRecoveryTimeout
	}
	return e
}

// Execute attempts the call until it succeeds, exhausts retries, or
// fails permanently. Transient and server errors back off
// exponentially with jitter; rate limits honor the advertised delay.
func (e *Executor) Execute(ctx context.Context, op OpType, correlationID string, call func() error) error {
	if err := e.allow(op); err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		err := call()
		if err == nil {
			e.recordSuccess(op)
			return nil
		}

		class, retryAfter := classify(err)
		if class == classPermanent {
			e.recordFailure(op)
			return err
		}

		lastErr = err
		if attempt == e.maxRetries {
			break
		}

		delay := e.backoff(attempt, retryAfter)
		log.Printf("Action %s (%s) attempt %d/%d failed, retrying in %v: %v",
			correlationID, op, attempt, e.maxRetries, delay, err)
		if serr := e.sleep(ctx, delay); serr != nil {
			e.recordFailure(op)
			return serr
		}
	}

	e.recordFailure(op)
	return lastErr
}

// backoff computes the delay before the next attempt: exponential from
// the base delay, floored by any server-advertised retry-after, capped
// at maxDelay, with ±10% jitter.
func (e *Executor) backoff(attempt int, retryAfter time.Duration) time.Duration {
	delay := e.baseDelay << uint(attempt-1)
	if retryAfter > delay {
		delay = retryAfter
	}
	if delay > e.maxDelay {
		delay = e.maxDelay
	}
	jitter := time.Duration((rand.Float64()*0.2 - 0.1) * float64(delay))
	return delay + jitter
}

// allow checks the breaker for the bucket. An open breaker whose
// recovery window has elapsed closes again with its counter reset.
func (e *Executor) allow(op OpType) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.failures[op] < e.failureThreshold {
		return nil
	}
	if e.now().Sub(e.openedAt[op]) >= e.recoveryTimeout {
		e.failures[op] = 0
		delete(e.openedAt, op)
		return nil
	}
	return ErrCircuitOpen
}

func (e *Executor) recordFailure(op OpType) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.failures[op]++
	if e.failures[op] == e.failureThreshold {
		e.openedAt[op] = e.now()
		log.Printf("Circuit breaker opened for operation type %s after %d consecutive failures", op, e.failures[op])
	}
}

func (e *Executor) recordSuccess(op OpType) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.failures[op] = 0
	delete(e.openedAt, op)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
