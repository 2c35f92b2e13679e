package cases

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mod-bot/model"

	"github.com/jmoiron/sqlx"
)

// CreateCase allocates the next case number for the guild and inserts
// the case row as one transaction. The counter update is the first
// statement so the write lock is taken up front; concurrent calls for
// the same guild serialize on it and each gets a distinct number.
func CreateCase(db *sqlx.DB, c model.Case) (*model.Case, error) {
	tx, err := db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin case transaction: %w", err)
	}

	if _, err := tx.Exec("INSERT OR IGNORE INTO guilds (guild_id, case_count) VALUES (?, 0)", c.GuildID); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to ensure guild row for %s: %w", c.GuildID, err)
	}

	if _, err := tx.Exec("UPDATE guilds SET case_count = case_count + 1 WHERE guild_id = ?", c.GuildID); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to increment case count for guild %s: %w", c.GuildID, err)
	}

	var caseNumber int64
	if err := tx.Get(&caseNumber, "SELECT case_count FROM guilds WHERE guild_id = ?", c.GuildID); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to read case count for guild %s: %w", c.GuildID, err)
	}

	c.CaseNumber = caseNumber
	c.CaseStatus = true
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO cases (case_number, case_type, case_user_id, case_moderator_id, case_reason, case_status, case_expires_at, guild_id, created_at)
			  VALUES (:case_number, :case_type, :case_user_id, :case_moderator_id, :case_reason, :case_status, :case_expires_at, :guild_id, :created_at)`
	result, err := tx.NamedExec(query, c)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to insert case for guild %s: %w", c.GuildID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to get case insert ID: %w", err)
	}
	c.CaseID = id

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit case for guild %s: %w", c.GuildID, err)
	}
	return &c, nil
}

// GetCaseByNumber retrieves a case by its per-guild number.
func GetCaseByNumber(db *sqlx.DB, guildID string, caseNumber int64) (*model.Case, error) {
	var c model.Case
	query := "SELECT * FROM cases WHERE guild_id = ? AND case_number = ?"
	if err := db.Get(&c, query, guildID, caseNumber); err != nil {
		return nil, fmt.Errorf("failed to get case %d in guild %s: %w", caseNumber, guildID, err)
	}
	return &c, nil
}

// GetCasesByUserID retrieves all cases recorded against a user in a
// guild, newest first.
func GetCasesByUserID(db *sqlx.DB, guildID, userID string) ([]model.Case, error) {
	var records []model.Case
	query := "SELECT * FROM cases WHERE guild_id = ? AND case_user_id = ? ORDER BY case_number DESC"
	if err := db.Select(&records, query, guildID, userID); err != nil {
		return nil, fmt.Errorf("failed to get cases for user %s in guild %s: %w", userID, guildID, err)
	}
	return records, nil
}

// GetCasesByModeratorID retrieves all cases created by a moderator in a guild.
func GetCasesByModeratorID(db *sqlx.DB, guildID, moderatorID string) ([]model.Case, error) {
	var records []model.Case
	query := "SELECT * FROM cases WHERE guild_id = ? AND case_moderator_id = ? ORDER BY case_number DESC"
	if err := db.Select(&records, query, guildID, moderatorID); err != nil {
		return nil, fmt.Errorf("failed to get cases for moderator %s in guild %s: %w", moderatorID, guildID, err)
	}
	return records, nil
}

// HasActiveCase reports whether the user has an open case of any of the
// given types in the guild.
func HasActiveCase(db *sqlx.DB, guildID, userID string, types []model.CaseType) (bool, error) {
	if len(types) == 0 {
		return false, nil
	}

	query, args, err := sqlx.In(
		"SELECT COUNT(*) FROM cases WHERE guild_id = ? AND case_user_id = ? AND case_status = 1 AND case_type IN (?)",
		guildID, userID, types)
	if err != nil {
		return false, fmt.Errorf("failed to build active case query: %w", err)
	}

	var count int
	if err := db.Get(&count, db.Rebind(query), args...); err != nil {
		return false, fmt.Errorf("failed to check active cases for user %s in guild %s: %w", userID, guildID, err)
	}
	return count > 0, nil
}

// CloseActiveCases marks every open case of the given types against the
// user as closed. Used when a reversing action (unban, unjail, ...)
// lands; the closed rows themselves are never rewritten.
func CloseActiveCases(db *sqlx.DB, guildID, userID string, types []model.CaseType) error {
	if len(types) == 0 {
		return nil
	}

	query, args, err := sqlx.In(
		"UPDATE cases SET case_status = 0 WHERE guild_id = ? AND case_user_id = ? AND case_status = 1 AND case_type IN (?)",
		guildID, userID, types)
	if err != nil {
		return fmt.Errorf("failed to build close case query: %w", err)
	}

	if _, err := db.Exec(db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to close cases for user %s in guild %s: %w", userID, guildID, err)
	}
	return nil
}

// GetExpiredActiveCases retrieves open cases whose expiry has passed.
func GetExpiredActiveCases(db *sqlx.DB, now time.Time) ([]model.Case, error) {
	var records []model.Case
	query := `SELECT * FROM cases
			  WHERE case_status = 1
			  AND case_expires_at IS NOT NULL
			  AND case_expires_at <= ?`
	if err := db.Select(&records, query, now); err != nil {
		return nil, fmt.Errorf("failed to get expired cases: %w", err)
	}
	return records, nil
}

// CloseCase marks a single case as closed by primary key.
func CloseCase(db *sqlx.DB, caseID int64) error {
	result, err := db.Exec("UPDATE cases SET case_status = 0 WHERE case_id = ?", caseID)
	if err != nil {
		return fmt.Errorf("failed to close case %d: %w", caseID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for case %d: %w", caseID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no case found with ID %d", caseID)
	}
	return nil
}

// GetCaseCount returns the guild's running case counter.
func GetCaseCount(db *sqlx.DB, guildID string) (int64, error) {
	var count int64
	err := db.Get(&count, "SELECT case_count FROM guilds WHERE guild_id = ?", guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get case count for guild %s: %w", guildID, err)
	}
	return count, nil
}
