package defs

import "github.com/bwmarrin/discordgo"

var reasonOption = &discordgo.ApplicationCommandOption{
	Type:        discordgo.ApplicationCommandOptionString,
	Name:        "reason",
	Description: "Reason for the action",
	Required:    true,
}

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    true,
	}
}

var Ban = &discordgo.ApplicationCommand{
	Name:        "ban",
	Description: "Ban a user from the server",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The user to ban"),
		reasonOption,
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "purge_days",
			Description: "Days of messages to delete (0-7)",
			Required:    false,
		},
	},
}

var TempBan = &discordgo.ApplicationCommand{
	Name:        "tempban",
	Description: "Ban a user for a limited time",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The user to ban"),
		reasonOption,
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duration",
			Description: "Ban duration, e.g. 2h, 7d, 1w",
			Required:    true,
		},
	},
}

var Unban = &discordgo.ApplicationCommand{
	Name:        "unban",
	Description: "Remove a user's ban",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "user_id",
			Description: "ID of the banned user",
			Required:    true,
		},
		reasonOption,
	},
}

var Kick = &discordgo.ApplicationCommand{
	Name:        "kick",
	Description: "Kick a user from the server",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The user to kick"),
		reasonOption,
	},
}

var Warn = &discordgo.ApplicationCommand{
	Name:        "warn",
	Description: "Warn a user",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The user to warn"),
		reasonOption,
	},
}

var Timeout = &discordgo.ApplicationCommand{
	Name:        "timeout",
	Description: "Time a user out",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The user to time out"),
		reasonOption,
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duration",
			Description: "Timeout duration, e.g. 10m, 2h, 7d (max 28d)",
			Required:    true,
		},
	},
}

var Untimeout = &discordgo.ApplicationCommand{
	Name:        "untimeout",
	Description: "Remove a user's timeout",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The user to release"),
		reasonOption,
	},
}

var Jail = &discordgo.ApplicationCommand{
	Name:        "jail",
	Description: "Jail a user (assigns the jail role)",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The user to jail"),
		reasonOption,
	},
}

var Unjail = &discordgo.ApplicationCommand{
	Name:        "unjail",
	Description: "Release a user from jail",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The user to release"),
		reasonOption,
	},
}

var PollBan = &discordgo.ApplicationCommand{
	Name:        "pollban",
	Description: "Forbid a user from creating polls",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The user to restrict"),
		reasonOption,
	},
}

var PollUnban = &discordgo.ApplicationCommand{
	Name:        "pollunban",
	Description: "Lift a user's poll restriction",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The user to release"),
		reasonOption,
	},
}

var SnippetBan = &discordgo.ApplicationCommand{
	Name:        "snippetban",
	Description: "Forbid a user from using snippets",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The user to restrict"),
		reasonOption,
	},
}

var SnippetUnban = &discordgo.ApplicationCommand{
	Name:        "snippetunban",
	Description: "Lift a user's snippet restriction",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The user to release"),
		reasonOption,
	},
}

var Cases = &discordgo.ApplicationCommand{
	Name:        "cases",
	Description: "Look up moderation cases",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "list",
			Description: "List a user's cases",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("The user to look up"),
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "view",
			Description: "View one case by number",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "number",
					Description: "The case number",
					Required:    true,
				},
			},
		},
	},
}
