package handlers

import (
	"mod-bot/bot"

	"github.com/bwmarrin/discordgo"
)

// Register wires the interaction handler and the command registry.
func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		handleInteractionCreate(s, i, b)
	})
}

func handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	}
}
