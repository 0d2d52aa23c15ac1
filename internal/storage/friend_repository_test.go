package storage

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studychat/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, AutoMigrateTables(db))
	return db
}

func TestAddEdgeWritesBothDirections(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormFriendRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.AddEdge(ctx, "alice", "bob"))

	var count int64
	require.NoError(t, db.Model(&models.FriendEdge{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	are, err := repo.AreFriends(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, are)
	are, err = repo.AreFriends(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, are)
}

func TestRemoveEdgeRemovesBothDirections(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormFriendRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.AddEdge(ctx, "alice", "bob"))
	require.NoError(t, repo.RemoveEdge(ctx, "bob", "alice"))

	var count int64
	require.NoError(t, db.Model(&models.FriendEdge{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestFriendsOfInsertionOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormFriendRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.AddEdge(ctx, "alice", "carol"))
	require.NoError(t, repo.AddEdge(ctx, "alice", "bob"))

	friends, err := repo.FriendsOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol", "bob"}, friends)
}

func TestDuplicateEdgeRejected(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormFriendRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.AddEdge(ctx, "alice", "bob"))
	// 唯一索引挡住重复写入，事务回滚后仍是两行。
	require.Error(t, repo.AddEdge(ctx, "alice", "bob"))

	var count int64
	require.NoError(t, db.Model(&models.FriendEdge{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
