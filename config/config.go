package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"mod-bot/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from the environment (.env supported) and an
// optional servers.yaml next to the data directory.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("DATABASE_PATH", "data/mod-bot.db")
	v.SetDefault("DM_TIMEOUT", "3s")
	v.SetDefault("CASE_EXPIRY_INTERVAL", "1m")
	v.SetDefault("EXECUTOR_MAX_RETRIES", 3)
	v.SetDefault("EXECUTOR_BASE_DELAY", "1s")
	v.SetDefault("EXECUTOR_MAX_DELAY", "30s")
	v.SetDefault("EXECUTOR_FAILURE_THRESHOLD", 5)
	v.SetDefault("EXECUTOR_RECOVERY_TIMEOUT", "60s")
	v.SetDefault("LOG_DIRECTORY", "logs")
	v.SetDefault("LOG_MAX_SIZE", 50)
	v.SetDefault("LOG_MAX_BACKUPS", 5)
	v.SetDefault("LOG_MAX_AGE", 30)

	token := v.GetString("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	appID := v.GetString("APP_ID")
	if appID == "" {
		log.Fatal("Error: APP_ID environment variable not set")
	}

	logChannelID := v.GetString("LOG_CHANNEL_ID")
	if logChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, log-channel reporting will be disabled")
	}

	var sysadmins []string
	if raw := v.GetString("SYSADMIN_USER_IDS"); raw != "" {
		sysadmins = strings.Split(raw, ",")
	}

	cfg := &model.Config{
		BotToken:                 token,
		AppID:                    appID,
		LogChannelID:             logChannelID,
		DatabasePath:             v.GetString("DATABASE_PATH"),
		SysadminUserIDs:          sysadmins,
		DisableCommandUnregister: v.GetBool("DISABLE_COMMAND_UNREGISTER"),
		DMTimeout:                v.GetDuration("DM_TIMEOUT"),
		CaseExpiryInterval:       v.GetDuration("CASE_EXPIRY_INTERVAL"),
		Executor: model.ExecutorConfig{
			MaxRetries:       v.GetInt("EXECUTOR_MAX_RETRIES"),
			BaseDelay:        v.GetDuration("EXECUTOR_BASE_DELAY"),
			MaxDelay:         v.GetDuration("EXECUTOR_MAX_DELAY"),
			FailureThreshold: v.GetInt("EXECUTOR_FAILURE_THRESHOLD"),
			RecoveryTimeout:  v.GetDuration("EXECUTOR_RECOVERY_TIMEOUT"),
		},
		Logger: model.LoggerConfig{
			Directory: v.GetString("LOG_DIRECTORY"),
			Rotation: model.LogRotation{
				MaxSize:    v.GetInt("LOG_MAX_SIZE"),
				MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
				MaxAge:     v.GetInt("LOG_MAX_AGE"),
				Compress:   v.GetBool("LOG_COMPRESS"),
			},
		},
		ServerConfigs: make(map[string]model.ServerConfig),
	}

	if err := loadServerConfigs(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadServerConfigs reads per-guild settings from data/servers.yaml.
// The file is optional; a fresh install has no guilds yet.
func loadServerConfigs(cfg *model.Config) error {
	v := viper.New()
	v.SetConfigName("servers")
	v.SetConfigType("yaml")
	v.AddConfigPath("data")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Println("Warning: data/servers.yaml not found, no guilds configured")
			return nil
		}
		return fmt.Errorf("failed to read server config: %w", err)
	}

	var servers []model.ServerConfig
	if err := v.UnmarshalKey("servers", &servers); err != nil {
		return fmt.Errorf("failed to parse server config: %w", err)
	}
	for _, sc := range servers {
		cfg.ServerConfigs[sc.GuildID] = sc
	}

	for _, d := range []*time.Duration{&cfg.DMTimeout, &cfg.CaseExpiryInterval} {
		if *d <= 0 {
			return fmt.Errorf("invalid non-positive duration in config")
		}
	}
	return nil
}
