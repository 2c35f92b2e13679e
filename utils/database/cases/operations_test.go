package cases

import (
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"mod-bot/model"
	"mod-bot/utils/database"

	"github.com/jmoiron/sqlx"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "cases.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := Init(db); err != nil {
		t.Fatalf("init case tables: %v", err)
	}
	return db
}

func mustCreate(t *testing.T, db *sqlx.DB, c model.Case) *model.Case {
	t.Helper()
	created, err := CreateCase(db, c)
	if err != nil {
		t.Fatalf("create case: %v", err)
	}
	return created
}

func TestCreateCaseAssignsSequentialNumbers(t *testing.T) {
	db := newTestDB(t)

	for want := int64(1); want <= 3; want++ {
		c := mustCreate(t, db, model.Case{
			CaseType:        model.CaseTypeWarn,
			CaseUserID:      "user-1",
			CaseModeratorID: "mod-1",
			CaseReason:      "test",
			GuildID:         "guild-1",
		})
		if c.CaseNumber != want {
			t.Fatalf("expected case number %d, got %d", want, c.CaseNumber)
		}
		if !c.CaseStatus {
			t.Fatal("new case not active")
		}
	}

	// Each guild has its own counter.
	other := mustCreate(t, db, model.Case{
		CaseType:   model.CaseTypeWarn,
		CaseUserID: "user-1",
		GuildID:    "guild-2",
	})
	if other.CaseNumber != 1 {
		t.Fatalf("expected independent counter, got %d", other.CaseNumber)
	}

	count, err := GetCaseCount(db, "guild-1")
	if err != nil {
		t.Fatalf("get case count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected counter 3, got %d", count)
	}
	if count, _ := GetCaseCount(db, "guild-unknown"); count != 0 {
		t.Fatalf("expected 0 for unknown guild, got %d", count)
	}
}

func TestCreateCaseConcurrentNumbering(t *testing.T) {
	db := newTestDB(t)
	const workers = 20

	var wg sync.WaitGroup
	numbers := make(chan int64, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := CreateCase(db, model.Case{
				CaseType:        model.CaseTypeWarn,
				CaseUserID:      "user-1",
				CaseModeratorID: "mod-1",
				GuildID:         "guild-1",
			})
			if err != nil {
				errs <- err
				return
			}
			numbers <- c.CaseNumber
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent create: %v", err)
	}

	var got []int64
	for n := range numbers {
		got = append(got, n)
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	if len(got) != workers {
		t.Fatalf("expected %d cases, got %d", workers, len(got))
	}
	for i, n := range got {
		if n != int64(i+1) {
			t.Fatalf("case numbers not contiguous and distinct: %v", got)
		}
	}
}

func TestGetCaseByNumber(t *testing.T) {
	db := newTestDB(t)

	created := mustCreate(t, db, model.Case{
		CaseType:        model.CaseTypeBan,
		CaseUserID:      "user-1",
		CaseModeratorID: "mod-1",
		CaseReason:      "spam",
		GuildID:         "guild-1",
	})

	got, err := GetCaseByNumber(db, "guild-1", created.CaseNumber)
	if err != nil {
		t.Fatalf("get by number: %v", err)
	}
	if got.CaseType != model.CaseTypeBan || got.CaseUserID != "user-1" || got.CaseReason != "spam" {
		t.Fatalf("unexpected case: %+v", got)
	}

	if _, err := GetCaseByNumber(db, "guild-1", 999); err == nil {
		t.Fatal("expected error for missing case")
	}

	byMod, err := GetCasesByModeratorID(db, "guild-1", "mod-1")
	if err != nil {
		t.Fatalf("get by moderator: %v", err)
	}
	if len(byMod) != 1 || byMod[0].CaseID != created.CaseID {
		t.Fatalf("unexpected moderator cases: %+v", byMod)
	}
	if byOther, _ := GetCasesByModeratorID(db, "guild-1", "mod-2"); len(byOther) != 0 {
		t.Fatalf("expected no cases for other moderator, got %d", len(byOther))
	}
}

func TestCloseActiveCasesOnlyTouchesMatchingTypes(t *testing.T) {
	db := newTestDB(t)

	ban := mustCreate(t, db, model.Case{CaseType: model.CaseTypeBan, CaseUserID: "user-1", GuildID: "guild-1"})
	warn := mustCreate(t, db, model.Case{CaseType: model.CaseTypeWarn, CaseUserID: "user-1", GuildID: "guild-1"})
	otherUser := mustCreate(t, db, model.Case{CaseType: model.CaseTypeBan, CaseUserID: "user-2", GuildID: "guild-1"})

	err := CloseActiveCases(db, "guild-1", "user-1", model.CaseTypeUnban.Reverses())
	if err != nil {
		t.Fatalf("close active cases: %v", err)
	}

	check := func(caseNumber int64, wantActive bool) {
		t.Helper()
		c, err := GetCaseByNumber(db, "guild-1", caseNumber)
		if err != nil {
			t.Fatalf("get case %d: %v", caseNumber, err)
		}
		if c.CaseStatus != wantActive {
			t.Fatalf("case %d (%s): active=%v, want %v", caseNumber, c.CaseType, c.CaseStatus, wantActive)
		}
	}
	check(ban.CaseNumber, false)
	check(warn.CaseNumber, true)
	check(otherUser.CaseNumber, true)
}

func TestHasActiveCase(t *testing.T) {
	db := newTestDB(t)

	created := mustCreate(t, db, model.Case{CaseType: model.CaseTypeJail, CaseUserID: "user-1", GuildID: "guild-1"})

	jailed, err := HasActiveCase(db, "guild-1", "user-1", []model.CaseType{model.CaseTypeJail})
	if err != nil {
		t.Fatalf("has active case: %v", err)
	}
	if !jailed {
		t.Fatal("expected active jail case")
	}

	if banned, _ := HasActiveCase(db, "guild-1", "user-1", []model.CaseType{model.CaseTypeBan}); banned {
		t.Fatal("wrong type reported active")
	}
	if any, _ := HasActiveCase(db, "guild-1", "user-1", nil); any {
		t.Fatal("empty type list must report false")
	}

	if err := CloseCase(db, created.CaseID); err != nil {
		t.Fatalf("close case: %v", err)
	}
	if jailed, _ := HasActiveCase(db, "guild-1", "user-1", []model.CaseType{model.CaseTypeJail}); jailed {
		t.Fatal("closed case still reported active")
	}
}

func TestGetExpiredActiveCases(t *testing.T) {
	db := newTestDB(t)

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	expired := mustCreate(t, db, model.Case{CaseType: model.CaseTypeTempBan, CaseUserID: "user-1", GuildID: "guild-1", CaseExpiresAt: &past})
	mustCreate(t, db, model.Case{CaseType: model.CaseTypeTempBan, CaseUserID: "user-2", GuildID: "guild-1", CaseExpiresAt: &future})
	mustCreate(t, db, model.Case{CaseType: model.CaseTypeBan, CaseUserID: "user-3", GuildID: "guild-1"})

	records, err := GetExpiredActiveCases(db, now)
	if err != nil {
		t.Fatalf("get expired: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 expired case, got %d", len(records))
	}
	if records[0].CaseID != expired.CaseID {
		t.Fatalf("wrong case returned: %+v", records[0])
	}

	// Closed cases are never re-expired.
	if err := CloseCase(db, expired.CaseID); err != nil {
		t.Fatalf("close case: %v", err)
	}
	records, err = GetExpiredActiveCases(db, now)
	if err != nil {
		t.Fatalf("get expired after close: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("closed case still listed as expired: %+v", records)
	}
}

func TestCloseCaseMissing(t *testing.T) {
	db := newTestDB(t)
	if err := CloseCase(db, 12345); err == nil {
		t.Fatal("expected error closing a nonexistent case")
	}
}
