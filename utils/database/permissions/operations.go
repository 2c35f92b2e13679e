package permissions

import (
	"database/sql"
	"errors"
	"fmt"

	"mod-bot/model"

	"github.com/jmoiron/sqlx"
)

// GetRanks retrieves all permission ranks for a guild, ordered by rank.
func GetRanks(db *sqlx.DB, guildID string) ([]model.PermissionRank, error) {
	var ranks []model.PermissionRank
	query := "SELECT * FROM permission_ranks WHERE guild_id = ? ORDER BY rank ASC"
	if err := db.Select(&ranks, query, guildID); err != nil {
		return nil, fmt.Errorf("failed to get permission ranks for guild %s: %w", guildID, err)
	}
	return ranks, nil
}

// RankExists reports whether the given rank value is defined for the guild.
func RankExists(db *sqlx.DB, guildID string, rank int) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM permission_ranks WHERE guild_id = ? AND rank = ?"
	if err := db.Get(&count, query, guildID, rank); err != nil {
		return false, fmt.Errorf("failed to check rank %d for guild %s: %w", rank, guildID, err)
	}
	return count > 0, nil
}

// InsertRanks bulk-inserts rank definitions inside one transaction.
// Existing (guild_id, rank) rows are left untouched.
func InsertRanks(db *sqlx.DB, guildID string, ranks []model.DefaultRank) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin rank insert transaction: %w", err)
	}

	query := `INSERT OR IGNORE INTO permission_ranks (guild_id, rank, name, description) VALUES (?, ?, ?, ?)`
	for _, r := range ranks {
		if _, err := tx.Exec(query, guildID, r.Rank, r.Name, r.Description); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert rank %d for guild %s: %w", r.Rank, guildID, err)
		}
	}

	return tx.Commit()
}

// CreateRank inserts a single custom rank definition.
func CreateRank(db *sqlx.DB, guildID string, rank int, name, description string) error {
	query := `INSERT INTO permission_ranks (guild_id, rank, name, description) VALUES (?, ?, ?, ?)`
	if _, err := db.Exec(query, guildID, rank, name, description); err != nil {
		return fmt.Errorf("failed to create rank %d for guild %s: %w", rank, guildID, err)
	}
	return nil
}

// UpsertRank creates or updates a rank definition. Used by bulk config
// ingestion, which must be re-applicable without failing on ranks it
// created the last time around.
func UpsertRank(db *sqlx.DB, guildID string, rank int, name, description string) error {
	query := `INSERT INTO permission_ranks (guild_id, rank, name, description) VALUES (?, ?, ?, ?)
			  ON CONFLICT(guild_id, rank) DO UPDATE SET name = excluded.name, description = excluded.description`
	if _, err := db.Exec(query, guildID, rank, name, description); err != nil {
		return fmt.Errorf("failed to upsert rank %d for guild %s: %w", rank, guildID, err)
	}
	return nil
}

// UpsertAssignment binds a role to a rank. A prior assignment for the
// same (guild, role) is removed first so only one stays active.
func UpsertAssignment(db *sqlx.DB, guildID, roleID string, rank int, assignedBy string) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin assignment transaction: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM permission_assignments WHERE guild_id = ? AND role_id = ?", guildID, roleID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to remove prior assignment for role %s in guild %s: %w", roleID, guildID, err)
	}

	query := `INSERT INTO permission_assignments (guild_id, role_id, rank, assigned_by) VALUES (?, ?, ?, ?)`
	if _, err := tx.Exec(query, guildID, roleID, rank, assignedBy); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to assign rank %d to role %s in guild %s: %w", rank, roleID, guildID, err)
	}

	return tx.Commit()
}

// DeleteAssignment removes the rank assignment for a role.
func DeleteAssignment(db *sqlx.DB, guildID, roleID string) error {
	result, err := db.Exec("DELETE FROM permission_assignments WHERE guild_id = ? AND role_id = ?", guildID, roleID)
	if err != nil {
		return fmt.Errorf("failed to delete assignment for role %s in guild %s: %w", roleID, guildID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for role %s: %w", roleID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no assignment found for role %s in guild %s", roleID, guildID)
	}
	return nil
}

// ListAssignments retrieves all role assignments for a guild.
func ListAssignments(db *sqlx.DB, guildID string) ([]model.PermissionAssignment, error) {
	var assignments []model.PermissionAssignment
	query := "SELECT * FROM permission_assignments WHERE guild_id = ? ORDER BY rank DESC"
	if err := db.Select(&assignments, query, guildID); err != nil {
		return nil, fmt.Errorf("failed to list assignments for guild %s: %w", guildID, err)
	}
	return assignments, nil
}

// HighestRankForRoles returns the highest rank assigned to any of the
// given roles, or 0 when none of them carries an assignment.
func HighestRankForRoles(db *sqlx.DB, guildID string, roleIDs []string) (int, error) {
	if len(roleIDs) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(
		"SELECT COALESCE(MAX(rank), 0) FROM permission_assignments WHERE guild_id = ? AND role_id IN (?)",
		guildID, roleIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to build role rank query: %w", err)
	}

	var rank int
	if err := db.Get(&rank, db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("failed to get highest rank for guild %s: %w", guildID, err)
	}
	return rank, nil
}

// UpsertCommandPermission creates or updates the rank override for a command.
func UpsertCommandPermission(db *sqlx.DB, guildID, commandName string, requiredRank int) error {
	query := `INSERT INTO permission_commands (guild_id, command_name, required_rank) VALUES (?, ?, ?)
			  ON CONFLICT(guild_id, command_name) DO UPDATE SET required_rank = excluded.required_rank`
	if _, err := db.Exec(query, guildID, commandName, requiredRank); err != nil {
		return fmt.Errorf("failed to upsert command permission %q in guild %s: %w", commandName, guildID, err)
	}
	return nil
}

// DeleteCommandPermission removes the rank override for a command.
func DeleteCommandPermission(db *sqlx.DB, guildID, commandName string) error {
	result, err := db.Exec("DELETE FROM permission_commands WHERE guild_id = ? AND command_name = ?", guildID, commandName)
	if err != nil {
		return fmt.Errorf("failed to delete command permission %q in guild %s: %w", commandName, guildID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for command %q: %w", commandName, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no permission override found for command %q in guild %s", commandName, guildID)
	}
	return nil
}

// GetCommandPermission retrieves the override for one exact command
// name, or nil when none is configured.
func GetCommandPermission(db *sqlx.DB, guildID, commandName string) (*model.PermissionCommand, error) {
	var cmd model.PermissionCommand
	query := "SELECT * FROM permission_commands WHERE guild_id = ? AND command_name = ?"
	err := db.Get(&cmd, query, guildID, commandName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get command permission %q in guild %s: %w", commandName, guildID, err)
	}
	return &cmd, nil
}

// GetCommandPermissions fetches all overrides whose name is in the
// candidate set, in one round trip.
func GetCommandPermissions(db *sqlx.DB, guildID string, commandNames []string) ([]model.PermissionCommand, error) {
	if len(commandNames) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(
		"SELECT * FROM permission_commands WHERE guild_id = ? AND command_name IN (?)",
		guildID, commandNames)
	if err != nil {
		return nil, fmt.Errorf("failed to build command permission query: %w", err)
	}

	var cmds []model.PermissionCommand
	if err := db.Select(&cmds, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get command permissions for guild %s: %w", guildID, err)
	}
	return cmds, nil
}

// ListCommandPermissions retrieves every override configured for a guild.
func ListCommandPermissions(db *sqlx.DB, guildID string) ([]model.PermissionCommand, error) {
	var cmds []model.PermissionCommand
	query := "SELECT * FROM permission_commands WHERE guild_id = ? ORDER BY command_name ASC"
	if err := db.Select(&cmds, query, guildID); err != nil {
		return nil, fmt.Errorf("failed to list command permissions for guild %s: %w", guildID, err)
	}
	return cmds, nil
}
