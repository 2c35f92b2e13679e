package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mod-bot/utils"
)

func (b *Bot) Run() {
	err := b.Session.Open()
	if err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	cfg := b.GetConfig()
	if !cfg.DisableCommandUnregister {
		log.Println("Unregistering stale commands from all guilds...")
		guilds, err := b.Session.UserGuilds(100, "", "", false)
		if err != nil {
			log.Printf("Could not fetch guilds: %v", err)
		} else {
			for _, guild := range guilds {
				if _, ok := cfg.ServerConfigs[guild.ID]; !ok {
					b.UnregisterCommands(guild.ID)
				}
			}
		}
	}

	log.Println("Registering commands for enabled guilds...")
	for _, serverCfg := range cfg.ServerConfigs {
		if serverCfg.Enable {
			b.RefreshCommands(serverCfg.GuildID)
		}
	}

	b.scheduler.Start()

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	utils.LogInfo(b.Session, cfg.LogChannelID, "System", "Startup", "Bot has started successfully.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}
