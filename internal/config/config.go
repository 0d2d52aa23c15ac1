package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	AppName  string         `mapstructure:"APP_NAME"`
	Env      string         `mapstructure:"ENV"`
	LogLevel string         `mapstructure:"LOG_LEVEL"`
	Database DatabaseConfig `mapstructure:"DATABASE"`
	Chat     ChatConfig     `mapstructure:"CHAT"`
}

// DatabaseConfig holds configuration for the database.
// Type 为 "sqlite" 时只使用 Path；为 "postgres" 时使用其余字段。
type DatabaseConfig struct {
	Type     string `mapstructure:"TYPE"`
	Path     string `mapstructure:"PATH"`
	Host     string `mapstructure:"HOST"`
	Port     int    `mapstructure:"PORT"`
	User     string `mapstructure:"USER"`
	Password string `mapstructure:"PASSWORD"`
	DBName   string `mapstructure:"DB_NAME"`
	SSLMode  string `mapstructure:"SSL_MODE"`
}

// ChatConfig holds chat-domain settings.
type ChatConfig struct {
	// BroadcastName 是广播室的显示名称。
	BroadcastName string `mapstructure:"BROADCAST_NAME"`
	// SeedWelcome 控制首次启动时是否向广播室写入系统欢迎消息。
	SeedWelcome bool `mapstructure:"SEED_WELCOME"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()

	v.SetDefault("APP_NAME", "studychat")
	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")

	// Database Defaults：默认使用本地 sqlite 文件，桌面部署无需外部服务。
	v.SetDefault("DATABASE.TYPE", "sqlite")
	v.SetDefault("DATABASE.PATH", "data/studychat.db")
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "password")
	v.SetDefault("DATABASE.DB_NAME", "studychat_db")
	v.SetDefault("DATABASE.SSL_MODE", "disable")

	// Chat Defaults
	v.SetDefault("CHAT.BROADCAST_NAME", "中考加油广播室")
	v.SetDefault("CHAT.SEED_WELCOME", true)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		// 配置文件缺失时使用默认值即可。
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}
