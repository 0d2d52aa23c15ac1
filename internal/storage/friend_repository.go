package storage

import (
	"context"

	"gorm.io/gorm"

	"studychat/internal/models"
)

// FriendRepository defines the interface for friend-graph data operations.
// 每条好友关系存两行（两个方向），增删都在一个事务里同时写两个方向。
type FriendRepository interface {
	AddEdge(ctx context.Context, a, b string) error
	RemoveEdge(ctx context.Context, a, b string) error
	FriendsOf(ctx context.Context, user string) ([]string, error)
	AreFriends(ctx context.Context, a, b string) (bool, error)
}

// gormFriendRepository implements FriendRepository using GORM.
type gormFriendRepository struct {
	db *gorm.DB
}

// NewGormFriendRepository creates a new GORM-based FriendRepository.
func NewGormFriendRepository(db *gorm.DB) FriendRepository {
	return &gormFriendRepository{db: db}
}

// AddEdge 在一个事务内建立 a→b 与 b→a 两个方向。
func (r *gormFriendRepository) AddEdge(ctx context.Context, a, b string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.FriendEdge{UserID: a, FriendID: b}).Error; err != nil {
			return err
		}
		return tx.Create(&models.FriendEdge{UserID: b, FriendID: a}).Error
	})
}

// RemoveEdge 在一个事务内解除两个方向。
func (r *gormFriendRepository) RemoveEdge(ctx context.Context, a, b string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND friend_id = ?", a, b).
			Delete(&models.FriendEdge{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND friend_id = ?", b, a).
			Delete(&models.FriendEdge{}).Error
	})
}

// FriendsOf 按添加顺序返回用户的好友列表；未知用户返回空列表。
func (r *gormFriendRepository) FriendsOf(ctx context.Context, user string) ([]string, error) {
	var friends []string
	err := r.db.WithContext(ctx).Model(&models.FriendEdge{}).
		Where("user_id = ?", user).
		Order("id ASC").
		Pluck("friend_id", &friends).Error
	return friends, err
}

// AreFriends checks if two users are already friends.
func (r *gormFriendRepository) AreFriends(ctx context.Context, a, b string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.FriendEdge{}).
		Where("user_id = ? AND friend_id = ?", a, b).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
