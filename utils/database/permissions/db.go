package permissions

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Init ensures the permission tables exist.
func Init(db *sqlx.DB) error {
	ranksSchema := `CREATE TABLE IF NOT EXISTS permission_ranks (
	          id INTEGER PRIMARY KEY AUTOINCREMENT,
	          guild_id TEXT NOT NULL,
	          rank INTEGER NOT NULL,
	          name TEXT NOT NULL,
	          description TEXT NOT NULL DEFAULT '',
	          UNIQUE(guild_id, rank)
	      );`
	if _, err := db.Exec(ranksSchema); err != nil {
		return fmt.Errorf("failed to create permission_ranks table: %w", err)
	}

	assignmentsSchema := `CREATE TABLE IF NOT EXISTS permission_assignments (
	          id INTEGER PRIMARY KEY AUTOINCREMENT,
	          guild_id TEXT NOT NULL,
	          role_id TEXT NOT NULL,
	          rank INTEGER NOT NULL,
	          assigned_by TEXT NOT NULL DEFAULT '',
	          UNIQUE(guild_id, role_id)
	      );`
	if _, err := db.Exec(assignmentsSchema); err != nil {
		return fmt.Errorf("failed to create permission_assignments table: %w", err)
	}

	commandsSchema := `CREATE TABLE IF NOT EXISTS permission_commands (
	          id INTEGER PRIMARY KEY AUTOINCREMENT,
	          guild_id TEXT NOT NULL,
	          command_name TEXT NOT NULL,
	          required_rank INTEGER NOT NULL,
	          UNIQUE(guild_id, command_name)
	      );`
	if _, err := db.Exec(commandsSchema); err != nil {
		return fmt.Errorf("failed to create permission_commands table: %w", err)
	}

	return nil
}
