package model

import "time"

// CaseType identifies the moderation action a case records.
type CaseType string

const (
	CaseTypeBan          CaseType = "BAN"
	CaseTypeUnban        CaseType = "UNBAN"
	CaseTypeTempBan      CaseType = "TEMPBAN"
	CaseTypeKick         CaseType = "KICK"
	CaseTypeTimeout      CaseType = "TIMEOUT"
	CaseTypeUntimeout    CaseType = "UNTIMEOUT"
	CaseTypeWarn         CaseType = "WARN"
	CaseTypeJail         CaseType = "JAIL"
	CaseTypeUnjail       CaseType = "UNJAIL"
	CaseTypePollBan      CaseType = "POLLBAN"
	CaseTypePollUnban    CaseType = "POLLUNBAN"
	CaseTypeSnippetBan   CaseType = "SNIPPETBAN"
	CaseTypeSnippetUnban CaseType = "SNIPPETUNBAN"
)

// IsRemoval reports whether the action removes the target from the
// guild. Removal actions get their DM before execution; once the user
// is gone the bot shares no guild and the DM would fail.
func (t CaseType) IsRemoval() bool {
	switch t {
	case CaseTypeBan, CaseTypeTempBan, CaseTypeKick:
		return true
	}
	return false
}

// Reverses returns the case type this type closes, if any. UNBAN closes
// BAN/TEMPBAN restrictions, UNJAIL closes JAIL, and so on.
func (t CaseType) Reverses() []CaseType {
	switch t {
	case CaseTypeUnban:
		return []CaseType{CaseTypeBan, CaseTypeTempBan}
	case CaseTypeUntimeout:
		return []CaseType{CaseTypeTimeout}
	case CaseTypeUnjail:
		return []CaseType{CaseTypeJail}
	case CaseTypePollUnban:
		return []CaseType{CaseTypePollBan}
	case CaseTypeSnippetUnban:
		return []CaseType{CaseTypeSnippetBan}
	}
	return nil
}

// Case is an immutable audit record of one executed moderation action.
// Later actions (e.g. an UNBAN) never mutate prior cases; closure only
// flips case_status on reversible restriction types.
type Case struct {
	CaseID          int64      `db:"case_id"` // Primary Key, Auto-increment
	CaseNumber      int64      `db:"case_number"`
	CaseType        CaseType   `db:"case_type"`
	CaseUserID      string     `db:"case_user_id"`
	CaseModeratorID string     `db:"case_moderator_id"`
	CaseReason      string     `db:"case_reason"`
	CaseStatus      bool       `db:"case_status"`
	CaseExpiresAt   *time.Time `db:"case_expires_at"`
	GuildID         string     `db:"guild_id"`
	CreatedAt       time.Time  `db:"created_at"`
}

// Guild owns the running case counter; case_count is the source of the
// next case_number and is incremented transactionally with each insert.
type Guild struct {
	GuildID   string `db:"guild_id"`
	CaseCount int64  `db:"case_count"`
}
