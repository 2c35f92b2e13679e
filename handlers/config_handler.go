package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"mod-bot/bot"
	"mod-bot/commands/defs"
	"mod-bot/permissions"
	"mod-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleConfig routes the /config subcommands.
func HandleConfig(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	data := i.ApplicationCommandData()
	path := commandPath(data)
	opts := optionMap(leafOptions(data))

	switch path {
	case "config ranks init":
		handleRanksInit(s, i, b)
	case "config ranks create":
		handleRanksCreate(s, i, b, opts)
	case "config ranks assign":
		handleRanksAssign(s, i, b, opts)
	case "config ranks unassign":
		handleRanksUnassign(s, i, b, opts)
	case "config ranks list":
		handleRanksList(s, i, b)
	case "config command-perms set":
		handleCommandPermsSet(s, i, b, opts)
	case "config command-perms get":
		handleCommandPermsGet(s, i, b, opts)
	case "config command-perms remove":
		handleCommandPermsRemove(s, i, b, opts)
	case "config command-perms overview":
		handleCommandPermsOverview(s, i, b)
	default:
		utils.SendErrorResponse(s, i, "Unknown config subcommand.")
	}
}

// respondConfigError distinguishes user-fixable validation errors from
// internal failures.
func respondConfigError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	var verr *permissions.ValidationError
	if errors.As(err, &verr) {
		utils.SendErrorResponse(s, i, verr.Message)
		return
	}
	log.Printf("Config command failed: %v", err)
	utils.SendErrorResponse(s, i, "An internal error occurred.")
}

func handleRanksInit(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := b.Permissions.InitializeGuild(i.GuildID); err != nil {
		respondConfigError(s, i, err)
		return
	}
	utils.SendSimpleResponse(s, i, "Default ranks (0-7) are set up. Existing ranks were left untouched.")
}

func handleRanksCreate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	rank := int(opts["rank"].IntValue())
	name := opts["name"].StringValue()
	description := ""
	if opt, ok := opts["description"]; ok {
		description = opt.StringValue()
	}

	if err := b.Permissions.CreateCustomPermissionRank(i.GuildID, rank, name, description); err != nil {
		respondConfigError(s, i, err)
		return
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("Created rank %d (%s).", rank, name))
}

func handleRanksAssign(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	rank := int(opts["rank"].IntValue())
	role := opts["role"].RoleValue(s, i.GuildID)

	if err := b.Permissions.AssignPermissionRank(i.GuildID, rank, role.ID, i.Member.User.ID); err != nil {
		respondConfigError(s, i, err)
		return
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("Assigned <@&%s> to rank %d.", role.ID, rank))
}

func handleRanksUnassign(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	role := opts["role"].RoleValue(s, i.GuildID)

	if err := b.Permissions.UnassignPermissionRank(i.GuildID, role.ID); err != nil {
		respondConfigError(s, i, err)
		return
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("Removed the rank assignment for <@&%s>.", role.ID))
}

func handleRanksList(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	ranks, err := b.Permissions.ListRanks(i.GuildID)
	if err != nil {
		respondConfigError(s, i, err)
		return
	}
	assignments, err := b.Permissions.ListAssignments(i.GuildID)
	if err != nil {
		respondConfigError(s, i, err)
		return
	}

	if len(ranks) == 0 {
		utils.SendSimpleResponse(s, i, "No ranks configured. Run `/config ranks init` first.")
		return
	}

	rolesByRank := make(map[int][]string)
	for _, a := range assignments {
		rolesByRank[a.Rank] = append(rolesByRank[a.Rank], fmt.Sprintf("<@&%s>", a.RoleID))
	}

	var lines []string
	for _, r := range ranks {
		line := fmt.Sprintf("`%2d` **%s**", r.Rank, r.Name)
		if roles := rolesByRank[r.Rank]; len(roles) > 0 {
			line += " — " + strings.Join(roles, ", ")
		}
		lines = append(lines, line)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Permission ranks",
		Description: strings.Join(lines, "\n"),
		Color:       0x5865F2,
	}
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func handleCommandPermsSet(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	command := opts["command"].StringValue()
	rank := int(opts["rank"].IntValue())

	if err := b.Permissions.SetCommandPermission(i.GuildID, command, rank); err != nil {
		respondConfigError(s, i, err)
		return
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("Command `%s` now requires rank %d.", command, rank))
}

func handleCommandPermsGet(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	command := opts["command"].StringValue()

	cmd, err := b.Permissions.GetCommandPermission(i.GuildID, command)
	if err != nil {
		respondConfigError(s, i, err)
		return
	}
	if cmd == nil {
		utils.SendSimpleResponse(s, i, fmt.Sprintf("No override configured for `%s` or its parents; the built-in default applies.", command))
		return
	}
	if cmd.CommandName == command {
		utils.SendSimpleResponse(s, i, fmt.Sprintf("Command `%s` requires rank %d.", command, cmd.RequiredRank))
		return
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("Command `%s` requires rank %d (inherited from `%s`).", command, cmd.RequiredRank, cmd.CommandName))
}

func handleCommandPermsRemove(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	command := opts["command"].StringValue()

	if err := b.Permissions.RemoveCommandPermission(i.GuildID, command); err != nil {
		respondConfigError(s, i, err)
		return
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("Removed the override for `%s`.", command))
}

// handleCommandPermsOverview renders the effective rank of every
// registered command in one batched resolution.
func handleCommandPermsOverview(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	names := allCommandNames()
	resolved, err := b.Permissions.BatchGetCommandPermissions(i.GuildID, names)
	if err != nil {
		respondConfigError(s, i, err)
		return
	}

	var lines []string
	for _, name := range names {
		rank := defaultRequiredRanks[CommandIDFor(name)]
		source := "default"
		if cmd := resolved[name]; cmd != nil {
			rank = cmd.RequiredRank
			source = "override"
		}
		lines = append(lines, fmt.Sprintf("`%s` — rank %d (%s)", name, rank, source))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Command permissions",
		Description: strings.Join(lines, "\n"),
		Color:       0x5865F2,
	}
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func allCommandNames() []string {
	var names []string
	for _, cmd := range []*discordgo.ApplicationCommand{
		defs.Ban, defs.TempBan, defs.Unban, defs.Kick, defs.Warn,
		defs.Timeout, defs.Untimeout, defs.Jail, defs.Unjail,
		defs.PollBan, defs.PollUnban, defs.SnippetBan, defs.SnippetUnban,
		defs.Cases, defs.Config,
	} {
		names = append(names, cmd.Name)
	}
	return names
}
