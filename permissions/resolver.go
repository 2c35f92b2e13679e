package permissions

import (
	"fmt"
	"strings"

	"mod-bot/model"
	permdb "mod-bot/utils/database/permissions"

	"github.com/jmoiron/sqlx"
)

// restrictedCommands can never be rank-gated; they stay owner/sysadmin
// only by construction. Matched case-insensitively on the exact name.
var restrictedCommands = map[string]struct{}{
	"eval":     {},
	"dev":      {},
	"sync":     {},
	"shutdown": {},
	"reload":   {},
}

// IsRestrictedCommand reports whether the command name is on the
// immutable deny-list.
func IsRestrictedCommand(commandName string) bool {
	_, ok := restrictedCommands[strings.ToLower(commandName)]
	return ok
}

// CommandCandidates builds the ordered fallback list for a command
// name: the full name first, then each whitespace-delimited prefix from
// most specific to least. "config ranks init" yields
// ["config ranks init", "config ranks", "config"].
func CommandCandidates(commandName string) []string {
	parts := strings.Fields(commandName)
	if len(parts) == 0 {
		return nil
	}
	candidates := make([]string, 0, len(parts))
	for i := len(parts); i >= 1; i-- {
		candidates = append(candidates, strings.Join(parts[:i], " "))
	}
	return candidates
}

// System resolves whether an actor may run a command in a guild and
// manages the rank lifecycle. One instance is constructed at startup
// and handed to every consumer.
type System struct {
	db    *sqlx.DB
	cache *Cache
}

// NewSystem creates a resolver over the given database.
func NewSystem(db *sqlx.DB) *System {
	return &System{db: db, cache: NewCache()}
}

// InitializeGuild seeds the eight default ranks for a guild. Existing
// ranks are never touched, so re-running it preserves customization.
func (p *System) InitializeGuild(guildID string) error {
	existing, err := permdb.GetRanks(p.db, guildID)
	if err != nil {
		return err
	}

	present := make(map[int]bool, len(existing))
	for _, r := range existing {
		present[r.Rank] = true
	}

	var missing []model.DefaultRank
	for _, def := range model.DefaultRanks {
		if !present[def.Rank] {
			missing = append(missing, def)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return permdb.InsertRanks(p.db, guildID, missing)
}

// GetUserPermissionRank returns the highest rank among the actor's role
// assignments, or 0 outside a guild context or when nothing matches.
func (p *System) GetUserPermissionRank(guildID string, actorRoles []string) (int, error) {
	if guildID == "" || len(actorRoles) == 0 {
		return 0, nil
	}
	return permdb.HighestRankForRoles(p.db, guildID, actorRoles)
}

// AssignPermissionRank binds a role to an existing rank. The rank must
// already be defined for the guild.
func (p *System) AssignPermissionRank(guildID string, rank int, roleID, assignedBy string) error {
	exists, err := permdb.RankExists(p.db, guildID, rank)
	if err != nil {
		return err
	}
	if !exists {
		return newValidationError("rank %d does not exist in this guild; create it or run rank initialization first", rank)
	}
	return permdb.UpsertAssignment(p.db, guildID, roleID, rank, assignedBy)
}

// UnassignPermissionRank removes the rank assignment for a role.
func (p *System) UnassignPermissionRank(guildID, roleID string) error {
	return permdb.DeleteAssignment(p.db, guildID, roleID)
}

// CreateCustomPermissionRank defines a new rank for the guild. An
// already-defined rank value is a user error, not a silent overwrite.
func (p *System) CreateCustomPermissionRank(guildID string, rank int, name, description string) error {
	if rank < model.MinRank || rank > model.MaxRank {
		return newValidationError("rank must be between %d and %d, got %d", model.MinRank, model.MaxRank, rank)
	}
	exists, err := permdb.RankExists(p.db, guildID, rank)
	if err != nil {
		return err
	}
	if exists {
		return newValidationError("rank %d already exists in this guild", rank)
	}
	return permdb.CreateRank(p.db, guildID, rank, name, description)
}

// ListRanks returns the guild's rank definitions.
func (p *System) ListRanks(guildID string) ([]model.PermissionRank, error) {
	return permdb.GetRanks(p.db, guildID)
}

// ListAssignments returns the guild's role assignments.
func (p *System) ListAssignments(guildID string) ([]model.PermissionAssignment, error) {
	return permdb.ListAssignments(p.db, guildID)
}

// SetCommandPermission upserts the rank override for a command and
// invalidates the cache for the command plus every ancestor prefix.
// Restricted commands are rejected outright.
func (p *System) SetCommandPermission(guildID, commandName string, requiredRank int) error {
	if IsRestrictedCommand(commandName) {
		return newValidationError("command %q is restricted and cannot be rank-gated", commandName)
	}
	if requiredRank < model.MinRank || requiredRank > model.MaxRank {
		return newValidationError("required rank must be between %d and %d, got %d", model.MinRank, model.MaxRank, requiredRank)
	}

	if err := permdb.UpsertCommandPermission(p.db, guildID, commandName, requiredRank); err != nil {
		return err
	}
	p.invalidateCommand(guildID, commandName)
	return nil
}

// RemoveCommandPermission deletes the override for a command.
func (p *System) RemoveCommandPermission(guildID, commandName string) error {
	if err := permdb.DeleteCommandPermission(p.db, guildID, commandName); err != nil {
		return err
	}
	p.invalidateCommand(guildID, commandName)
	return nil
}

// invalidateCommand drops exactly the keys a write could affect: the
// command itself and its ancestor prefixes. Never a guild-wide flush.
func (p *System) invalidateCommand(guildID, commandName string) {
	for _, candidate := range CommandCandidates(commandName) {
		p.cache.Invalidate(CacheKey(guildID, candidate))
	}
}

// GetCommandPermission resolves the override applying to a command,
// walking parent prefixes until one is configured. Returns nil when no
// override exists anywhere on the path; the nil is cached too.
func (p *System) GetCommandPermission(guildID, commandName string) (*model.PermissionCommand, error) {
	key := CacheKey(guildID, commandName)
	if cmd, ok := p.cache.Get(key); ok {
		return cmd, nil
	}

	candidates := CommandCandidates(commandName)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("empty command name")
	}

	var resolved *model.PermissionCommand
	if len(candidates) == 1 {
		cmd, err := permdb.GetCommandPermission(p.db, guildID, candidates[0])
		if err != nil {
			return nil, err
		}
		resolved = cmd
	} else {
		rows, err := permdb.GetCommandPermissions(p.db, guildID, candidates)
		if err != nil {
			return nil, err
		}
		resolved = firstMatch(candidates, rows)
	}

	p.cache.Set(key, resolved)
	return resolved, nil
}

// BatchGetCommandPermissions resolves N commands in one round trip; the
// union of every command's candidate set is fetched once and each input
// is then resolved independently, first match wins.
func (p *System) BatchGetCommandPermissions(guildID string, commandNames []string) (map[string]*model.PermissionCommand, error) {
	results := make(map[string]*model.PermissionCommand, len(commandNames))

	var missing []string
	for _, name := range commandNames {
		if cmd, ok := p.cache.Get(CacheKey(guildID, name)); ok {
			results[name] = cmd
		} else {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return results, nil
	}

	seen := make(map[string]bool)
	var union []string
	for _, name := range missing {
		for _, candidate := range CommandCandidates(name) {
			if !seen[candidate] {
				seen[candidate] = true
				union = append(union, candidate)
			}
		}
	}

	rows, err := permdb.GetCommandPermissions(p.db, guildID, union)
	if err != nil {
		return nil, err
	}

	for _, name := range missing {
		resolved := firstMatch(CommandCandidates(name), rows)
		p.cache.Set(CacheKey(guildID, name), resolved)
		results[name] = resolved
	}
	return results, nil
}

// RequiredRank returns the effective rank needed to run a command,
// falling back to the given default when no override applies.
func (p *System) RequiredRank(guildID, commandName string, defaultRank int) (int, error) {
	cmd, err := p.GetCommandPermission(guildID, commandName)
	if err != nil {
		return 0, err
	}
	if cmd == nil {
		return defaultRank, nil
	}
	return cmd.RequiredRank, nil
}

func firstMatch(candidates []string, rows []model.PermissionCommand) *model.PermissionCommand {
	byName := make(map[string]model.PermissionCommand, len(rows))
	for _, row := range rows {
		byName[row.CommandName] = row
	}
	for _, candidate := range candidates {
		if row, ok := byName[candidate]; ok {
			match := row
			return &match
		}
	}
	return nil
}
