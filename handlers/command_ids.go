package handlers

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// CommandID identifies a slash command. Dispatch goes through this
// enum and the registry below rather than raw name strings; only
// permission resolution still uses the space-joined command path, since
// overrides fall back through parent prefixes.
type CommandID int

const (
	CmdUnknown CommandID = iota
	CmdBan
	CmdTempBan
	CmdUnban
	CmdKick
	CmdWarn
	CmdTimeout
	CmdUntimeout
	CmdJail
	CmdUnjail
	CmdPollBan
	CmdPollUnban
	CmdSnippetBan
	CmdSnippetUnban
	CmdCases
	CmdConfig
	CmdSysInfo
)

var commandIDsByName = map[string]CommandID{
	"ban":          CmdBan,
	"tempban":      CmdTempBan,
	"unban":        CmdUnban,
	"kick":         CmdKick,
	"warn":         CmdWarn,
	"timeout":      CmdTimeout,
	"untimeout":    CmdUntimeout,
	"jail":         CmdJail,
	"unjail":       CmdUnjail,
	"pollban":      CmdPollBan,
	"pollunban":    CmdPollUnban,
	"snippetban":   CmdSnippetBan,
	"snippetunban": CmdSnippetUnban,
	"cases":        CmdCases,
	"config":       CmdConfig,
	"sysinfo":      CmdSysInfo,
}

// defaultRequiredRanks apply when no per-guild override is configured
// for the command or any of its parent prefixes.
var defaultRequiredRanks = map[CommandID]int{
	CmdWarn:         2,
	CmdTimeout:      2,
	CmdUntimeout:    2,
	CmdJail:         2,
	CmdUnjail:       2,
	CmdPollBan:      2,
	CmdPollUnban:    2,
	CmdSnippetBan:   2,
	CmdSnippetUnban: 2,
	CmdCases:        2,
	CmdKick:         3,
	CmdBan:          3,
	CmdTempBan:      3,
	CmdUnban:        3,
	CmdConfig:       5,
	CmdSysInfo:      7,
}

// CommandIDFor looks up the enum value for a top-level command name.
func CommandIDFor(name string) CommandID {
	return commandIDsByName[name]
}

// commandPath builds the full space-joined path of the invoked command,
// descending through a subcommand group and subcommand when present:
// "config" / "ranks" / "init" becomes "config ranks init".
func commandPath(data discordgo.ApplicationCommandInteractionData) string {
	parts := []string{data.Name}
	options := data.Options
	for len(options) == 1 {
		opt := options[0]
		if opt.Type != discordgo.ApplicationCommandOptionSubCommandGroup &&
			opt.Type != discordgo.ApplicationCommandOptionSubCommand {
			break
		}
		parts = append(parts, opt.Name)
		options = opt.Options
	}
	return strings.Join(parts, " ")
}

// leafOptions returns the options of the invoked (sub)command.
func leafOptions(data discordgo.ApplicationCommandInteractionData) []*discordgo.ApplicationCommandInteractionDataOption {
	options := data.Options
	for len(options) == 1 {
		opt := options[0]
		if opt.Type != discordgo.ApplicationCommandOptionSubCommandGroup &&
			opt.Type != discordgo.ApplicationCommandOptionSubCommand {
			break
		}
		options = opt.Options
	}
	return options
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}
