package permissions

import (
	"log"

	"mod-bot/model"
	permdb "mod-bot/utils/database/permissions"
)

// RankConfig is one rank definition in a bulk setup payload.
type RankConfig struct {
	Rank        int    `json:"rank"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AssignmentConfig binds a role to a rank in a bulk setup payload.
type AssignmentConfig struct {
	Rank   int    `json:"rank"`
	RoleID string `json:"role_id"`
}

// CommandPermConfig is one command override in a bulk setup payload.
type CommandPermConfig struct {
	Command string `json:"command"`
	Rank    int    `json:"rank"`
}

// GuildPermissionConfig is the structured payload for self-hosted setup.
type GuildPermissionConfig struct {
	PermissionRanks    []RankConfig        `json:"permission_ranks"`
	RoleAssignments    []AssignmentConfig  `json:"role_assignments"`
	CommandPermissions []CommandPermConfig `json:"command_permissions"`
}

// LoadFromConfig applies a bulk payload: ranks first, then role
// assignments validated against the ranks just created (one in-memory
// map instead of a lookup per row), then command overrides. Restricted
// command names are skipped with a warning rather than failing the
// whole batch. Re-applying the same payload is safe: ranks are
// upserted, not re-created.
func (p *System) LoadFromConfig(guildID string, cfg GuildPermissionConfig) error {
	for _, rc := range cfg.PermissionRanks {
		if rc.Rank < model.MinRank || rc.Rank > model.MaxRank {
			return newValidationError("rank must be between %d and %d, got %d", model.MinRank, model.MaxRank, rc.Rank)
		}
		if err := permdb.UpsertRank(p.db, guildID, rc.Rank, rc.Name, rc.Description); err != nil {
			return err
		}
	}

	ranks, err := permdb.GetRanks(p.db, guildID)
	if err != nil {
		return err
	}
	known := make(map[int]bool, len(ranks))
	for _, r := range ranks {
		known[r.Rank] = true
	}

	for _, ac := range cfg.RoleAssignments {
		if !known[ac.Rank] {
			return newValidationError("role assignment references rank %d, which is not defined for this guild", ac.Rank)
		}
		if err := permdb.UpsertAssignment(p.db, guildID, ac.RoleID, ac.Rank, "config"); err != nil {
			return err
		}
	}

	for _, cc := range cfg.CommandPermissions {
		if IsRestrictedCommand(cc.Command) {
			log.Printf("Skipping restricted command %q in permission config for guild %s", cc.Command, guildID)
			continue
		}
		if err := p.SetCommandPermission(guildID, cc.Command, cc.Rank); err != nil {
			return err
		}
	}

	return nil
}
