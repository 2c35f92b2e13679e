package model

// PermissionRank is a guild-scoped permission level. Two guilds may both
// define rank 3 with different names; (guild_id, rank) is unique.
type PermissionRank struct {
	ID          int64  `db:"id"` // Primary Key, Auto-increment
	GuildID     string `db:"guild_id"`
	Rank        int    `db:"rank"`
	Name        string `db:"name"`
	Description string `db:"description"`
}

// PermissionAssignment binds a Discord role to a permission rank.
// At most one active assignment exists per (guild_id, role_id).
type PermissionAssignment struct {
	ID         int64  `db:"id"`
	GuildID    string `db:"guild_id"`
	RoleID     string `db:"role_id"`
	Rank       int    `db:"rank"`
	AssignedBy string `db:"assigned_by"`
}

// PermissionCommand is a per-guild rank override for a command. The
// command name may be multi-word ("config ranks init"); resolution walks
// whitespace-delimited prefixes from most specific to least.
type PermissionCommand struct {
	ID           int64  `db:"id"`
	GuildID      string `db:"guild_id"`
	CommandName  string `db:"command_name"`
	RequiredRank int    `db:"required_rank"`
}

// RankBounds for custom ranks and command overrides.
const (
	MinRank = 0
	MaxRank = 10
)

// DefaultRank describes one of the eight ranks seeded at guild init.
type DefaultRank struct {
	Rank        int
	Name        string
	Description string
}

// DefaultRanks are created by guild initialization when absent. Init is
// idempotent: existing ranks, customized or not, are never overwritten.
var DefaultRanks = []DefaultRank{
	{0, "Member", "Regular server member"},
	{1, "Support", "Support staff"},
	{2, "Junior Moderator", "Moderator in training"},
	{3, "Moderator", "Full moderator"},
	{4, "Senior Moderator", "Senior moderator"},
	{5, "Administrator", "Server administrator"},
	{6, "Head Administrator", "Head administrator"},
	{7, "Server Owner", "Server owner"},
}
