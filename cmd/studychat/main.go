package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"studychat/internal/config"
	applog "studychat/internal/log"
	"studychat/internal/services"
	"studychat/internal/storage"
)

// studychat 进程引导：加载配置、打开存储、迁移表结构、
// 准备广播室与欢迎消息，然后打印一份存储概况。
// 桌面前端作为外部调用方使用 internal/services 暴露的四个组件。
func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatal().Err(err).Msg("无法加载配置")
	}
	applog.Init(cfg.Env, cfg.LogLevel)
	log.Info().Str("app", cfg.AppName).Str("db", cfg.Database.Type).Msg("配置加载成功")

	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("无法初始化数据库")
	}
	if err := storage.AutoMigrateTables(db); err != nil {
		log.Fatal().Err(err).Msg("数据库迁移失败")
	}

	ctx := context.Background()

	userRepo := storage.NewGormUserRepository(db)
	friendRepo := storage.NewGormFriendRepository(db)
	groupRepo := storage.NewGormGroupRepository(db)
	msgRepo := storage.NewGormMessageRepository(db)

	if err := groupRepo.EnsureBroadcast(ctx, cfg.Chat.BroadcastName); err != nil {
		log.Fatal().Err(err).Msg("初始化广播室失败")
	}

	// 组件之间的依赖在这里显式注入，没有任何按名字查找的注册表。
	userService := services.NewUserService(userRepo)
	relationshipService := services.NewRelationshipService(friendRepo, groupRepo)
	resolver := services.NewConversationResolver(friendRepo, groupRepo, msgRepo, cfg.Chat.BroadcastName)
	messageService := services.NewMessageService(msgRepo, resolver)

	if cfg.Chat.SeedWelcome {
		if err := messageService.SeedWelcome(ctx); err != nil {
			log.Fatal().Err(err).Msg("写入欢迎消息失败")
		}
	}

	users, err := userService.Count(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("统计用户失败")
	}
	groups, err := relationshipService.AllGroups(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("统计群组失败")
	}
	messages, err := messageService.Count(ctx, "")
	if err != nil {
		log.Fatal().Err(err).Msg("统计消息失败")
	}
	broadcast, err := messageService.Count(ctx, resolver.BroadcastID())
	if err != nil {
		log.Fatal().Err(err).Msg("统计广播室消息失败")
	}

	log.Info().
		Int64("users", users).
		Int("groups", len(groups)).
		Int64("messages", messages).
		Int64("broadcast_messages", broadcast).
		Msg("存储就绪")
}
