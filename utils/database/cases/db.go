package cases

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Init ensures the guild counter and case tables exist.
func Init(db *sqlx.DB) error {
	guildsSchema := `CREATE TABLE IF NOT EXISTS guilds (
	          guild_id TEXT NOT NULL PRIMARY KEY,
	          case_count INTEGER NOT NULL DEFAULT 0
	      );`
	if _, err := db.Exec(guildsSchema); err != nil {
		return fmt.Errorf("failed to create guilds table: %w", err)
	}

	casesSchema := `CREATE TABLE IF NOT EXISTS cases (
	          case_id INTEGER PRIMARY KEY AUTOINCREMENT,
	          case_number INTEGER NOT NULL,
	          case_type TEXT NOT NULL,
	          case_user_id TEXT NOT NULL,
	          case_moderator_id TEXT NOT NULL,
	          case_reason TEXT NOT NULL,
	          case_status INTEGER NOT NULL DEFAULT 1,
	          case_expires_at DATETIME,
	          guild_id TEXT NOT NULL,
	          created_at DATETIME NOT NULL,
	          UNIQUE(guild_id, case_number)
	      );`
	if _, err := db.Exec(casesSchema); err != nil {
		return fmt.Errorf("failed to create cases table: %w", err)
	}

	indexSQL := `CREATE INDEX IF NOT EXISTS idx_cases_guild_user ON cases (guild_id, case_user_id);`
	if _, err := db.Exec(indexSQL); err != nil {
		return fmt.Errorf("failed to create cases index: %w", err)
	}

	return nil
}
