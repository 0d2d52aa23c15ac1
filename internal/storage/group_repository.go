package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"studychat/internal/models"
)

// GroupRepository 定义了群组数据操作的接口。
type GroupRepository interface {
	// Create 在一个事务内创建群组并把创建者写入成员名单。
	Create(ctx context.Context, group *models.Group) error
	GetByGroupID(ctx context.Context, groupID string) (*models.Group, error)
	AddMember(ctx context.Context, member *models.GroupMember) error
	RemoveMember(ctx context.Context, groupID, username string) error
	IsMember(ctx context.Context, groupID, username string) (bool, error)
	// GroupsOf 返回用户加入的所有普通群组，不含广播室。
	GroupsOf(ctx context.Context, username string) ([]*models.Group, error)
	// All 返回所有群组，含广播室。
	All(ctx context.Context) ([]*models.Group, error)
	// EnsureBroadcast 保证广播室存在；首次访问时以空成员名单创建。
	EnsureBroadcast(ctx context.Context, name string) error
}

// gormGroupRepository 使用 GORM 实现 GroupRepository。
type gormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository 创建一个新的基于 GORM 的 GroupRepository。
func NewGormGroupRepository(db *gorm.DB) GroupRepository {
	return &gormGroupRepository{db: db}
}

// Create 创建群组，创建者作为第一个成员一并写入。
func (r *gormGroupRepository) Create(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		member := &models.GroupMember{
			GroupID:  group.GroupID,
			Username: group.Creator,
			JoinedAt: group.CreatedAt,
		}
		return tx.Create(member).Error
	})
}

// GetByGroupID 通过群组ID检索群组，成员按加入顺序预加载。
func (r *gormGroupRepository) GetByGroupID(ctx context.Context, groupID string) (*models.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("group_members.id ASC")
		}).
		Where("group_id = ?", groupID).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// AddMember 向群组中添加成员。
func (r *gormGroupRepository) AddMember(ctx context.Context, member *models.GroupMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// RemoveMember 从群组中移除成员。
func (r *gormGroupRepository) RemoveMember(ctx context.Context, groupID, username string) error {
	return r.db.WithContext(ctx).
		Where("group_id = ? AND username = ?", groupID, username).
		Delete(&models.GroupMember{}).Error
}

// IsMember 报告用户是否在群组成员名单中。
func (r *gormGroupRepository) IsMember(ctx context.Context, groupID, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND username = ?", groupID, username).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GroupsOf 查询用户作为成员的所有普通群组。
func (r *gormGroupRepository) GroupsOf(ctx context.Context, username string) ([]*models.Group, error) {
	var groups []*models.Group
	err := r.db.WithContext(ctx).Model(&models.Group{}).
		Joins("JOIN group_members gm ON gm.group_id = groups.group_id").
		Where("gm.username = ? AND groups.kind = ?", username, models.NormalKind).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("group_members.id ASC")
		}).
		Find(&groups).Error
	return groups, err
}

// All 返回所有群组。
func (r *gormGroupRepository) All(ctx context.Context) ([]*models.Group, error) {
	var groups []*models.Group
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("group_members.id ASC")
		}).
		Find(&groups).Error
	return groups, err
}

// EnsureBroadcast 在广播室缺失时创建它，创建者为系统哨兵，成员名单为空。
func (r *gormGroupRepository) EnsureBroadcast(ctx context.Context, name string) error {
	var group models.Group
	err := r.db.WithContext(ctx).
		Where("group_id = ?", models.BroadcastRoomID).
		First(&group).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	broadcast := &models.Group{
		GroupID:   models.BroadcastRoomID,
		Name:      name,
		Creator:   models.SystemSender,
		Kind:      models.BroadcastKind,
		CreatedAt: time.Now().Truncate(time.Second),
	}
	return r.db.WithContext(ctx).Create(broadcast).Error
}
