package bot

import (
	"log"
	"sync/atomic"

	"mod-bot/commands"
	"mod-bot/model"
	"mod-bot/moderation"
	"mod-bot/permissions"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// Bot wires the Discord session to the permission and moderation
// services. All services are constructed once here and injected into
// their consumers; there is no package-level singleton.
type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)

	DB          *sqlx.DB
	Permissions *permissions.System
	Coordinator *moderation.Coordinator
	Executor    *moderation.Executor
	Cases       *moderation.CaseService
	Status      *moderation.StatusChecker

	config    atomic.Value // *model.Config
	scheduler *Scheduler
}

var _ model.Bot = (*Bot)(nil)

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetDB() *sqlx.DB {
	return b.DB
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func New(cfg *model.Config, db *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentGuildModeration
	dg.StateEnabled = false

	executor := moderation.NewExecutor(cfg.Executor)
	caseService := moderation.NewCaseService(db)
	notifier := moderation.NewNotifier(dg)

	b := &Bot{
		Session:     dg,
		DB:          db,
		Permissions: permissions.NewSystem(db),
		Executor:    executor,
		Cases:       caseService,
		Status:      moderation.NewStatusChecker(db),
		Coordinator: moderation.NewCoordinator(executor, notifier, caseService, cfg.DMTimeout),
	}
	b.config.Store(cfg)
	b.scheduler = NewScheduler(b)
	return b, nil
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.scheduler.Stop()
	b.Session.Close()
	b.DB.Close()
}

// RefreshCommands bulk-overwrites the slash commands for one guild.
func (b *Bot) RefreshCommands(guildID string) {
	cmds := commands.GenerateCommands()
	log.Printf("Registering %d commands for guild %s...", len(cmds), guildID)
	registeredCmds, err := b.Session.ApplicationCommandBulkOverwrite(b.GetConfig().AppID, guildID, cmds)
	if err != nil {
		log.Printf("cannot update commands for guild '%s': %v", guildID, err)
		return
	}
	b.RegisteredCommands = append(b.RegisteredCommands, registeredCmds...)
}

// UnregisterCommands removes all registered commands from a guild.
func (b *Bot) UnregisterCommands(guildID string) {
	cmds, err := b.Session.ApplicationCommands(b.GetConfig().AppID, guildID)
	if err != nil {
		log.Printf("Could not fetch commands for guild %s: %v", guildID, err)
		return
	}
	for _, cmd := range cmds {
		if err := b.Session.ApplicationCommandDelete(b.GetConfig().AppID, guildID, cmd.ID); err != nil {
			log.Printf("Cannot delete command %s in guild %s: %v", cmd.Name, guildID, err)
		}
	}
}
