package services

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studychat/internal/storage"
)

const testBroadcastName = "中考加油广播室"

// testEnv 把四个核心组件和底层仓库装配在一个内存 sqlite 上。
type testEnv struct {
	db         *gorm.DB
	userRepo   storage.UserRepository
	friendRepo storage.FriendRepository
	groupRepo  storage.GroupRepository
	msgRepo    storage.MessageRepository

	users UserService
	rel   RelationshipService
	res   ConversationResolver
	msgs  MessageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 每个 :memory: 连接是独立的数据库，连接池必须收缩到一个连接。
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, storage.AutoMigrateTables(db))

	env := &testEnv{
		db:         db,
		userRepo:   storage.NewGormUserRepository(db),
		friendRepo: storage.NewGormFriendRepository(db),
		groupRepo:  storage.NewGormGroupRepository(db),
		msgRepo:    storage.NewGormMessageRepository(db),
	}
	require.NoError(t, env.groupRepo.EnsureBroadcast(context.Background(), testBroadcastName))

	env.users = NewUserService(env.userRepo)
	env.rel = NewRelationshipService(env.friendRepo, env.groupRepo)
	env.res = NewConversationResolver(env.friendRepo, env.groupRepo, env.msgRepo, testBroadcastName)
	env.msgs = NewMessageService(env.msgRepo, env.res)
	return env
}

func (e *testEnv) register(t *testing.T, username, password string) {
	t.Helper()
	_, err := e.users.Register(context.Background(), username, password)
	require.NoError(t, err)
}

func (e *testEnv) befriend(t *testing.T, a, b string) {
	t.Helper()
	require.NoError(t, e.rel.AddFriend(context.Background(), a, b))
}
