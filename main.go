package main

import (
	"log"

	"mod-bot/bot"
	"mod-bot/config"
	"mod-bot/handlers"
	"mod-bot/logger"
	"mod-bot/utils/database"
	casedb "mod-bot/utils/database/cases"
	permdb "mod-bot/utils/database/permissions"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if err := logger.Setup(cfg.Logger); err != nil {
		log.Fatalf("Error initializing logging: %v", err)
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	if err := permdb.Init(db); err != nil {
		log.Fatalf("Error creating permission tables: %v", err)
	}
	if err := casedb.Init(db); err != nil {
		log.Fatalf("Error creating case tables: %v", err)
	}

	b, err := bot.New(cfg, db)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	defer b.Close()

	handlers.Register(b)

	b.Run()
}
