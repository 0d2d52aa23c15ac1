package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	os.Unsetenv("ENV")
	os.Unsetenv("DATABASE_TYPE")
	os.Unsetenv("DATABASE_PATH")
	os.Unsetenv("CHAT_BROADCAST_NAME")
	os.Unsetenv("CHAT_SEED_WELCOME")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "studychat", cfg.AppName)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "data/studychat.db", cfg.Database.Path)
	assert.Equal(t, "中考加油广播室", cfg.Chat.BroadcastName)
	assert.True(t, cfg.Chat.SeedWelcome)
}

func TestLoadConfigFromEnv(t *testing.T) {
	os.Setenv("ENV", "prod")
	os.Setenv("DATABASE_TYPE", "postgres")
	os.Setenv("DATABASE_DB_NAME", "chat_test")
	os.Setenv("CHAT_BROADCAST_NAME", "自习室")
	os.Setenv("CHAT_SEED_WELCOME", "false")
	defer func() {
		os.Unsetenv("ENV")
		os.Unsetenv("DATABASE_TYPE")
		os.Unsetenv("DATABASE_DB_NAME")
		os.Unsetenv("CHAT_BROADCAST_NAME")
		os.Unsetenv("CHAT_SEED_WELCOME")
	}()

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "chat_test", cfg.Database.DBName)
	assert.Equal(t, "自习室", cfg.Chat.BroadcastName)
	assert.False(t, cfg.Chat.SeedWelcome)
}
