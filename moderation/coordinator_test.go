package moderation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mod-bot/model"
)

// eventLog records pipeline steps in order; the DM fake appends from a
// goroutine, so every access is guarded.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(ev string) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

func (l *eventLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (l *eventLog) expect(t *testing.T, want ...string) {
	t.Helper()
	got := l.list()
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, got)
		}
	}
}

type fakeDM struct {
	log    *eventLog
	result bool
	block  time.Duration
}

func (f *fakeDM) SendDM(userID, guildName, actionLabel, reason string) bool {
	if f.block > 0 {
		time.Sleep(f.block)
	}
	f.log.add("dm")
	return f.result
}

type fakeCases struct {
	log     *eventLog
	mu      sync.Mutex
	created []CaseParams
	err     error
}

func (f *fakeCases) Create(params CaseParams) (*model.Case, error) {
	f.log.add("case")
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.created = append(f.created, params)
	n := int64(len(f.created))
	f.mu.Unlock()
	return &model.Case{CaseNumber: n, CaseType: params.CaseType, GuildID: params.GuildID}, nil
}

func (f *fakeCases) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func newTestCoordinator(dm *fakeDM, cases *fakeCases, dmTimeout time.Duration) *Coordinator {
	e := NewExecutor(model.ExecutorConfig{MaxRetries: 1})
	e.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return NewCoordinator(e, dm, cases, dmTimeout)
}

func TestExecuteRemovalSendsDMBeforeAction(t *testing.T) {
	log := &eventLog{}
	dm := &fakeDM{log: log, result: true}
	cases := &fakeCases{log: log}
	c := newTestCoordinator(dm, cases, time.Second)

	out := c.Execute(context.Background(), Request{
		GuildID:  "guild-1",
		TargetID: "user-1",
		CaseType: model.CaseTypeBan,
		DMLabel:  "banned",
		Actions: []Action{{Op: OpBanKick, Run: func() error {
			log.add("action")
			return nil
		}}},
	})

	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}
	if !out.DMSent {
		t.Fatal("DM not reported as sent")
	}
	log.expect(t, "dm", "action", "case")
}

func TestExecuteNonRemovalSendsDMAfterAction(t *testing.T) {
	log := &eventLog{}
	dm := &fakeDM{log: log, result: true}
	cases := &fakeCases{log: log}
	c := newTestCoordinator(dm, cases, time.Second)

	c.Execute(context.Background(), Request{
		GuildID:  "guild-1",
		TargetID: "user-1",
		CaseType: model.CaseTypeWarn,
		DMLabel:  "warned",
		Actions: []Action{{Op: OpMessages, Run: func() error {
			log.add("action")
			return nil
		}}},
	})

	log.expect(t, "action", "dm", "case")
}

func TestExecuteDMFailureDoesNotBlockAction(t *testing.T) {
	log := &eventLog{}
	dm := &fakeDM{log: log, result: false}
	cases := &fakeCases{log: log}
	c := newTestCoordinator(dm, cases, time.Second)

	actionRan := false
	out := c.Execute(context.Background(), Request{
		GuildID:  "guild-1",
		TargetID: "user-1",
		CaseType: model.CaseTypeBan,
		DMLabel:  "banned",
		Actions:  []Action{{Op: OpBanKick, Run: func() error { actionRan = true; return nil }}},
	})

	if out.DMSent {
		t.Fatal("failed DM reported as sent")
	}
	if !actionRan {
		t.Fatal("action skipped after DM failure")
	}
	if out.Case == nil {
		t.Fatal("case not created after DM failure")
	}
}

func TestExecuteSlowDMIsAbandoned(t *testing.T) {
	log := &eventLog{}
	dm := &fakeDM{log: log, result: true, block: 500 * time.Millisecond}
	cases := &fakeCases{log: log}
	c := newTestCoordinator(dm, cases, 20*time.Millisecond)

	start := time.Now()
	out := c.Execute(context.Background(), Request{
		GuildID:  "guild-1",
		TargetID: "user-1",
		CaseType: model.CaseTypeBan,
		DMLabel:  "banned",
		Actions:  []Action{{Op: OpBanKick, Run: func() error { return nil }}},
	})

	if out.DMSent {
		t.Fatal("timed-out DM reported as sent")
	}
	if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
		t.Fatalf("pipeline waited on the slow DM: %v", elapsed)
	}
	if out.Case == nil {
		t.Fatal("case not created after DM timeout")
	}
}

func TestExecuteAbortsOnActionFailure(t *testing.T) {
	log := &eventLog{}
	dm := &fakeDM{log: log, result: true}
	cases := &fakeCases{log: log}
	c := newTestCoordinator(dm, cases, time.Second)

	var reported *Outcome
	wantErr := restError(403)
	out := c.Execute(context.Background(), Request{
		GuildID:  "guild-1",
		TargetID: "user-1",
		CaseType: model.CaseTypeWarn,
		DMLabel:  "warned",
		Actions:  []Action{{Op: OpMessages, Run: func() error { return wantErr }}},
		Report:   func(o Outcome) { reported = &o },
	})

	if !errors.Is(out.Err, wantErr) {
		t.Fatalf("expected action error, got %v", out.Err)
	}
	if out.Case != nil {
		t.Fatal("case created for an aborted action")
	}
	if cases.count() != 0 {
		t.Fatal("case service called for an aborted action")
	}
	if out.DMSent {
		t.Fatal("non-removal DM sent despite aborted action")
	}
	if reported == nil || !errors.Is(reported.Err, wantErr) {
		t.Fatalf("outcome not reported: %+v", reported)
	}
}

func TestExecuteReportsCasePersistenceFailure(t *testing.T) {
	log := &eventLog{}
	dm := &fakeDM{log: log, result: true}
	wantErr := errors.New("disk full")
	cases := &fakeCases{log: log, err: wantErr}
	c := newTestCoordinator(dm, cases, time.Second)

	var reported *Outcome
	out := c.Execute(context.Background(), Request{
		GuildID:  "guild-1",
		TargetID: "user-1",
		CaseType: model.CaseTypeWarn,
		Actions:  []Action{{Op: OpMessages, Run: func() error { return nil }}},
		Report:   func(o Outcome) { reported = &o },
	})

	if out.Err != nil {
		t.Fatalf("action should have succeeded, got %v", out.Err)
	}
	if !errors.Is(out.CaseErr, wantErr) {
		t.Fatalf("expected persistence error surfaced, got %v", out.CaseErr)
	}
	if out.Case != nil {
		t.Fatal("case set despite persistence failure")
	}
	if reported == nil || !errors.Is(reported.CaseErr, wantErr) {
		t.Fatalf("moderator left without feedback: %+v", reported)
	}
}

func TestExecuteSkipsDMWithoutLabel(t *testing.T) {
	log := &eventLog{}
	dm := &fakeDM{log: log, result: true}
	cases := &fakeCases{log: log}
	c := newTestCoordinator(dm, cases, time.Second)

	out := c.Execute(context.Background(), Request{
		GuildID:  "guild-1",
		TargetID: "user-1",
		CaseType: model.CaseTypeBan,
		Actions:  []Action{{Op: OpBanKick, Run: func() error { return nil }}},
	})

	if out.DMSent {
		t.Fatal("DM sent without a label")
	}
	for _, ev := range log.list() {
		if ev == "dm" {
			t.Fatal("notifier called without a label")
		}
	}
}
