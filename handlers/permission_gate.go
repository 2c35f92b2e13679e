package handlers

import (
	"fmt"
	"log"

	"mod-bot/bot"
	"mod-bot/permissions"
	"mod-bot/utils"

	"github.com/bwmarrin/discordgo"
)

func isSysadmin(b *bot.Bot, userID string) bool {
	for _, id := range b.GetConfig().SysadminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// checkCommandPermission gates a command invocation on the actor's
// permission rank. Restricted commands never reach the rank system;
// they stay sysadmin-only regardless of configuration.
func checkCommandPermission(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) bool {
	if i.GuildID == "" || i.Member == nil {
		utils.SendSimpleResponse(s, i, "This command can only be used in a server.")
		return false
	}

	data := i.ApplicationCommandData()
	cmdID := CommandIDFor(data.Name)
	if permissions.IsRestrictedCommand(data.Name) {
		if !isSysadmin(b, i.Member.User.ID) {
			utils.SendErrorResponse(s, i, "This command is restricted.")
			return false
		}
		return true
	}
	if isSysadmin(b, i.Member.User.ID) {
		return true
	}

	path := commandPath(data)
	required, err := b.Permissions.RequiredRank(i.GuildID, path, defaultRequiredRanks[cmdID])
	if err != nil {
		log.Printf("Error resolving permission for %q in guild %s: %v", path, i.GuildID, err)
		utils.SendErrorResponse(s, i, "Failed to resolve command permissions.")
		return false
	}

	userRank, err := b.Permissions.GetUserPermissionRank(i.GuildID, i.Member.Roles)
	if err != nil {
		log.Printf("Error resolving rank for user %s in guild %s: %v", i.Member.User.ID, i.GuildID, err)
		utils.SendErrorResponse(s, i, "Failed to resolve your permission rank.")
		return false
	}

	if userRank < required {
		utils.SendErrorResponse(s, i, fmt.Sprintf("You need rank %d to use this command (you have rank %d).", required, userRank))
		return false
	}
	return true
}
