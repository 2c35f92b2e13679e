package moderation

import (
	"mod-bot/model"
	casedb "mod-bot/utils/database/cases"

	"github.com/jmoiron/sqlx"
)

// StatusChecker answers whether a user is currently under a reversible
// restriction. Each restriction is queried by its own case type pair;
// jail state is deliberately not reused as a proxy for poll or snippet
// bans.
type StatusChecker struct {
	db *sqlx.DB
}

// NewStatusChecker creates a status checker over the given database.
func NewStatusChecker(db *sqlx.DB) *StatusChecker {
	return &StatusChecker{db: db}
}

// IsJailed reports whether the user has an open JAIL case.
func (s *StatusChecker) IsJailed(guildID, userID string) (bool, error) {
	return casedb.HasActiveCase(s.db, guildID, userID, []model.CaseType{model.CaseTypeJail})
}

// IsPollBanned reports whether the user has an open POLLBAN case.
func (s *StatusChecker) IsPollBanned(guildID, userID string) (bool, error) {
	return casedb.HasActiveCase(s.db, guildID, userID, []model.CaseType{model.CaseTypePollBan})
}

// IsSnippetBanned reports whether the user has an open SNIPPETBAN case.
func (s *StatusChecker) IsSnippetBanned(guildID, userID string) (bool, error) {
	return casedb.HasActiveCase(s.db, guildID, userID, []model.CaseType{model.CaseTypeSnippetBan})
}

// IsBanned reports whether the user has an open BAN or TEMPBAN case.
func (s *StatusChecker) IsBanned(guildID, userID string) (bool, error) {
	return casedb.HasActiveCase(s.db, guildID, userID, []model.CaseType{model.CaseTypeBan, model.CaseTypeTempBan})
}
