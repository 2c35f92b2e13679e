package model

import "time"

// ServerConfig holds per-guild settings.
type ServerConfig struct {
	Name         string `json:"name" mapstructure:"name"`
	GuildID      string `json:"guild_id" mapstructure:"guild_id"`
	JailRoleID   string `json:"jail_role_id" mapstructure:"jail_role_id"`
	LogChannelID string `json:"log_channel_id" mapstructure:"log_channel_id"`
	Enable       bool   `json:"enable" mapstructure:"enable"`
}

// ExecutorConfig tunes the retry and circuit-breaker behaviour of the
// moderation executor.
type ExecutorConfig struct {
	MaxRetries       int           `mapstructure:"max_retries"`
	BaseDelay        time.Duration `mapstructure:"base_delay"`
	MaxDelay         time.Duration `mapstructure:"max_delay"`
	FailureThreshold int           `mapstructure:"failure_threshold"`
	RecoveryTimeout  time.Duration `mapstructure:"recovery_timeout"`
}

// LogRotation mirrors lumberjack's knobs.
type LogRotation struct {
	MaxSize    int  `mapstructure:"max_size"` // megabytes
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"` // days
	Compress   bool `mapstructure:"compress"`
}

// LoggerConfig controls file logging.
type LoggerConfig struct {
	Directory string      `mapstructure:"directory"`
	Rotation  LogRotation `mapstructure:"rotation"`
}

// Config stores the application configuration.
type Config struct {
	BotToken                 string
	AppID                    string
	LogChannelID             string
	DatabasePath             string
	SysadminUserIDs          []string
	DisableCommandUnregister bool
	DMTimeout                time.Duration
	CaseExpiryInterval       time.Duration
	Executor                 ExecutorConfig
	Logger                   LoggerConfig
	ServerConfigs            map[string]ServerConfig
}
