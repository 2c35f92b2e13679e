package handlers

import (
	"log"

	"mod-bot/bot"

	"github.com/bwmarrin/discordgo"
)

type handlerFunc func(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot)

// registry maps command identifiers to their handlers.
var registry = map[CommandID]handlerFunc{
	CmdBan:          HandleBan,
	CmdTempBan:      HandleTempBan,
	CmdUnban:        HandleUnban,
	CmdKick:         HandleKick,
	CmdWarn:         HandleWarn,
	CmdTimeout:      HandleTimeout,
	CmdUntimeout:    HandleUntimeout,
	CmdJail:         HandleJail,
	CmdUnjail:       HandleUnjail,
	CmdPollBan:      HandlePollBan,
	CmdPollUnban:    HandlePollUnban,
	CmdSnippetBan:   HandleSnippetBan,
	CmdSnippetUnban: HandleSnippetUnban,
	CmdCases:        HandleCases,
	CmdConfig:       HandleConfig,
	CmdSysInfo:      HandleSystemInfo,
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	handlers := make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate), len(commandIDsByName))
	for name, id := range commandIDsByName {
		h, ok := registry[id]
		if !ok {
			log.Printf("No handler registered for command %q", name)
			continue
		}
		handler := h
		handlers[name] = func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if !checkCommandPermission(s, i, b) {
				return
			}
			handler(s, i, b)
		}
	}
	return handlers
}
