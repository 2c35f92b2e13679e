package commands

import (
	"mod-bot/commands/defs"

	"github.com/bwmarrin/discordgo"
)

// GenerateCommands returns every slash command the bot registers per guild.
func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Ban,
		defs.TempBan,
		defs.Unban,
		defs.Kick,
		defs.Warn,
		defs.Timeout,
		defs.Untimeout,
		defs.Jail,
		defs.Unjail,
		defs.PollBan,
		defs.PollUnban,
		defs.SnippetBan,
		defs.SnippetUnban,
		defs.Cases,
		defs.Config,
		defs.SysInfo,
	}
}
