package moderation

import (
	"time"

	"mod-bot/model"
	casedb "mod-bot/utils/database/cases"

	"github.com/jmoiron/sqlx"
)

// CaseParams describe the audit record for one executed action.
type CaseParams struct {
	GuildID     string
	TargetID    string
	ModeratorID string
	Reason      string
	CaseType    model.CaseType
	ExpiresAt   *time.Time
}

// CaseCreator persists audit cases.
type CaseCreator interface {
	Create(params CaseParams) (*model.Case, error)
}

// CaseService owns the audit trail: one immutable case per executed
// moderation action, numbered sequentially per guild.
type CaseService struct {
	db *sqlx.DB
}

// NewCaseService creates a case service over the given database.
func NewCaseService(db *sqlx.DB) *CaseService {
	return &CaseService{db: db}
}

// Create inserts a new case with the guild's next case number. When the
// case type reverses an earlier restriction (UNBAN after BAN, UNJAIL
// after JAIL), the open cases it reverses are closed first; their rows
// are otherwise untouched.
func (c *CaseService) Create(params CaseParams) (*model.Case, error) {
	if reversed := params.CaseType.Reverses(); len(reversed) > 0 {
		if err := casedb.CloseActiveCases(c.db, params.GuildID, params.TargetID, reversed); err != nil {
			return nil, err
		}
	}

	return casedb.CreateCase(c.db, model.Case{
		CaseType:        params.CaseType,
		CaseUserID:      params.TargetID,
		CaseModeratorID: params.ModeratorID,
		CaseReason:      params.Reason,
		CaseExpiresAt:   params.ExpiresAt,
		GuildID:         params.GuildID,
	})
}

// GetByNumber retrieves a case by its per-guild case number.
func (c *CaseService) GetByNumber(guildID string, caseNumber int64) (*model.Case, error) {
	return casedb.GetCaseByNumber(c.db, guildID, caseNumber)
}

// ListForUser retrieves a user's cases in a guild, newest first.
func (c *CaseService) ListForUser(guildID, userID string) ([]model.Case, error) {
	return casedb.GetCasesByUserID(c.db, guildID, userID)
}
