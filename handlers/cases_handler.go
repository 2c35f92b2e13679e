package handlers

import (
	"fmt"
	"log"
	"strings"
	"time"

	"mod-bot/bot"
	"mod-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleCases serves /cases list and /cases view.
func HandleCases(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	data := i.ApplicationCommandData()
	path := commandPath(data)
	opts := optionMap(leafOptions(data))

	switch path {
	case "cases list":
		handleCasesList(s, i, b, opts)
	case "cases view":
		handleCasesView(s, i, b, opts)
	default:
		utils.SendErrorResponse(s, i, "Unknown cases subcommand.")
	}
}

func handleCasesList(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	target := opts["user"].UserValue(s)

	records, err := b.Cases.ListForUser(i.GuildID, target.ID)
	if err != nil {
		log.Printf("Error listing cases for user %s: %v", target.ID, err)
		utils.SendErrorResponse(s, i, "Failed to load cases.")
		return
	}
	if len(records) == 0 {
		utils.SendSimpleResponse(s, i, fmt.Sprintf("<@%s> has no cases.", target.ID))
		return
	}

	const maxListed = 20
	var lines []string
	for idx, c := range records {
		if idx == maxListed {
			lines = append(lines, fmt.Sprintf("… and %d more", len(records)-maxListed))
			break
		}
		status := "closed"
		if c.CaseStatus {
			status = "active"
		}
		lines = append(lines, fmt.Sprintf("`#%d` **%s** (%s) — %s", c.CaseNumber, c.CaseType, status, c.CaseReason))
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Cases for %s", target.Username),
		Description: strings.Join(lines, "\n"),
		Color:       0x5865F2,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d total", len(records)),
		},
	}
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func handleCasesView(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	number := opts["number"].IntValue()

	c, err := b.Cases.GetByNumber(i.GuildID, number)
	if err != nil {
		utils.SendErrorResponse(s, i, fmt.Sprintf("Case #%d not found.", number))
		return
	}

	status := "closed"
	if c.CaseStatus {
		status = "active"
	}
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Case #%d — %s", c.CaseNumber, c.CaseType),
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("<@%s>", c.CaseUserID), Inline: true},
			{Name: "Moderator", Value: fmt.Sprintf("<@%s>", c.CaseModeratorID), Inline: true},
			{Name: "Status", Value: status, Inline: true},
			{Name: "Reason", Value: c.CaseReason},
		},
		Timestamp: c.CreatedAt.Format(time.RFC3339),
	}
	if c.CaseExpiresAt != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Expires", Value: fmt.Sprintf("<t:%d:R>", c.CaseExpiresAt.Unix()), Inline: true,
		})
	}

	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}
