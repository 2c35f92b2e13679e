package moderation

import (
	"path/filepath"
	"testing"

	"mod-bot/model"
	"mod-bot/utils/database"
	casedb "mod-bot/utils/database/cases"
)

func TestStatusChecker(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "status.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := casedb.Init(db); err != nil {
		t.Fatalf("init case tables: %v", err)
	}

	cases := NewCaseService(db)
	status := NewStatusChecker(db)
	const guild, user = "guild-1", "user-1"

	mustStatus := func(got bool, err error, want bool, what string) {
		t.Helper()
		if err != nil {
			t.Fatalf("%s: %v", what, err)
		}
		if got != want {
			t.Fatalf("%s: got %v, want %v", what, got, want)
		}
	}

	jailed, err := status.IsJailed(guild, user)
	mustStatus(jailed, err, false, "fresh user jailed")

	if _, err := cases.Create(CaseParams{GuildID: guild, TargetID: user, CaseType: model.CaseTypePollBan}); err != nil {
		t.Fatalf("create pollban: %v", err)
	}

	pollBanned, err := status.IsPollBanned(guild, user)
	mustStatus(pollBanned, err, true, "pollban active")

	// Poll and snippet restrictions are tracked independently; neither
	// rides on jail state.
	snippetBanned, err := status.IsSnippetBanned(guild, user)
	mustStatus(snippetBanned, err, false, "snippetban after pollban")
	jailed, err = status.IsJailed(guild, user)
	mustStatus(jailed, err, false, "jailed after pollban")

	// The reversing action closes the restriction.
	if _, err := cases.Create(CaseParams{GuildID: guild, TargetID: user, CaseType: model.CaseTypePollUnban}); err != nil {
		t.Fatalf("create pollunban: %v", err)
	}
	pollBanned, err = status.IsPollBanned(guild, user)
	mustStatus(pollBanned, err, false, "pollban after pollunban")

	if _, err := cases.Create(CaseParams{GuildID: guild, TargetID: user, CaseType: model.CaseTypeTempBan}); err != nil {
		t.Fatalf("create tempban: %v", err)
	}
	banned, err := status.IsBanned(guild, user)
	mustStatus(banned, err, true, "banned after tempban")

	if _, err := cases.Create(CaseParams{GuildID: guild, TargetID: user, CaseType: model.CaseTypeUnban}); err != nil {
		t.Fatalf("create unban: %v", err)
	}
	banned, err = status.IsBanned(guild, user)
	mustStatus(banned, err, false, "banned after unban")
}
