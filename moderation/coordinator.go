package moderation

import (
	"context"
	"log"
	"time"

	"mod-bot/model"

	"github.com/google/uuid"
)

const defaultDMTimeout = 3 * time.Second

// Action is one external side effect of a moderation request, already
// bound to its session call.
type Action struct {
	Op  OpType
	Run func() error
}

// Request describes a single moderation action end to end.
type Request struct {
	GuildID     string
	GuildName   string
	TargetID    string
	ModeratorID string
	Reason      string
	CaseType    model.CaseType
	ExpiresAt   *time.Time
	Actions     []Action
	// DMLabel is the past-tense wording for the target's notification
	// ("banned", "warned"). Empty skips the DM entirely.
	DMLabel string
	// Report receives the final outcome; exactly one call per request.
	Report func(Outcome)
}

// Outcome is what happened to one moderation request.
type Outcome struct {
	// Err is set when execution aborted; no case exists then.
	Err error
	// Case is the audit record, nil when persistence failed after a
	// successful action (CaseErr holds why).
	Case    *model.Case
	CaseErr error
	DMSent  bool
}

// Coordinator sequences one moderation action: DM timing by action
// class, execution through the retry/breaker executor, audit case
// creation, then reporting. Dependencies are injected; the coordinator
// itself never touches Discord or the database directly.
type Coordinator struct {
	executor  *Executor
	notifier  DMSender
	cases     CaseCreator
	dmTimeout time.Duration
}

// NewCoordinator wires a coordinator from its services. A zero
// dmTimeout falls back to 3 seconds.
func NewCoordinator(executor *Executor, notifier DMSender, cases CaseCreator, dmTimeout time.Duration) *Coordinator {
	if dmTimeout <= 0 {
		dmTimeout = defaultDMTimeout
	}
	return &Coordinator{
		executor:  executor,
		notifier:  notifier,
		cases:     cases,
		dmTimeout: dmTimeout,
	}
}

// Execute runs the request to completion and returns its outcome. The
// outcome is also delivered to req.Report when set.
//
// Removal actions (ban, tempban, kick) get their DM before execution
// since the target is unreachable afterwards; everything else is
// notified after success. DM failure never blocks the pipeline. A
// permanent or exhausted execution error aborts with no case; a case
// persistence failure after a successful action is logged as a critical
// inconsistency but still reported to the moderator.
func (c *Coordinator) Execute(ctx context.Context, req Request) Outcome {
	correlationID := uuid.NewString()
	var out Outcome

	if req.CaseType.IsRemoval() && req.DMLabel != "" {
		out.DMSent = c.sendDMBounded(req)
	}

	for _, action := range req.Actions {
		if err := c.executor.Execute(ctx, action.Op, correlationID, action.Run); err != nil {
			log.Printf("Action %s (%s on %s) aborted: %v", correlationID, req.CaseType, req.TargetID, err)
			out.Err = err
			c.report(req, out)
			return out
		}
	}

	if !req.CaseType.IsRemoval() && req.DMLabel != "" {
		out.DMSent = c.sendDMBounded(req)
	}

	newCase, err := c.cases.Create(CaseParams{
		GuildID:     req.GuildID,
		TargetID:    req.TargetID,
		ModeratorID: req.ModeratorID,
		Reason:      req.Reason,
		CaseType:    req.CaseType,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		// The external action already happened; losing the audit row is
		// an inconsistency a human has to reconcile, not a reason to
		// leave the moderator without feedback.
		log.Printf("CRITICAL: action %s (%s on %s in guild %s) executed but case creation failed: %v",
			correlationID, req.CaseType, req.TargetID, req.GuildID, err)
		out.CaseErr = err
	} else {
		out.Case = newCase
	}

	c.report(req, out)
	return out
}

// sendDMBounded runs the DM attempt under the configured timeout. The
// session call is not context-aware, so the slow path is abandoned
// rather than cancelled; the goroutine finishes on its own.
func (c *Coordinator) sendDMBounded(req Request) bool {
	done := make(chan bool, 1)
	go func() {
		done <- c.notifier.SendDM(req.TargetID, req.GuildName, req.DMLabel, req.Reason)
	}()

	timer := time.NewTimer(c.dmTimeout)
	defer timer.Stop()
	select {
	case sent := <-done:
		return sent
	case <-timer.C:
		log.Printf("DM to user %s timed out after %v", req.TargetID, c.dmTimeout)
		return false
	}
}

func (c *Coordinator) report(req Request, out Outcome) {
	if req.Report != nil {
		req.Report(out)
	}
}
