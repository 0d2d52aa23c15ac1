package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studychat/internal/models"
)

// MessageRepository 定义了消息数据操作的接口。
// 消息只追加不修改；自增主键 == 时间顺序。
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	CreateBatch(ctx context.Context, messages []*models.Message) error
	ListByConversation(ctx context.Context, conversationID string) ([]*models.Message, error)
	// Search 做大小写不敏感的子串匹配；conversationID 为空时全局搜索。
	Search(ctx context.Context, keyword, conversationID string) ([]*models.Message, error)
	// ListBySender 返回某个发送者的消息；conversationID 为空时不限会话。
	ListBySender(ctx context.Context, sender, conversationID string) ([]*models.Message, error)
	DeleteByConversation(ctx context.Context, conversationID string) error
	DeleteAll(ctx context.Context) error
	// Count 统计消息数；conversationID 为空时统计全部。
	Count(ctx context.Context, conversationID string) (int64, error)
	LastByConversation(ctx context.Context, conversationID string) (*models.Message, error)
	// CountUnread 统计 after 之后由他人发送的消息数。
	CountUnread(ctx context.Context, conversationID, reader string, after time.Time) (int64, error)
	GetReadMark(ctx context.Context, username, conversationID string) (*models.ReadMark, error)
	UpsertReadMark(ctx context.Context, username, conversationID string, at time.Time) error
}

// gormMessageRepository 使用 GORM 实现 MessageRepository。
type gormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository 创建一个新的基于 GORM 的 MessageRepository。
func NewGormMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

// Create 在数据库中追加一条消息记录。
func (r *gormMessageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// CreateBatch 在一个事务内追加多条消息，要么全部写入要么全部不写。
func (r *gormMessageRepository) CreateBatch(ctx context.Context, messages []*models.Message) error {
	if len(messages) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range messages {
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListByConversation 按追加顺序返回某个会话的全部消息。
func (r *gormMessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id ASC").
		Find(&messages).Error
	return messages, err
}

// Search 在消息内容上做大小写不敏感的模糊匹配。
func (r *gormMessageRepository) Search(ctx context.Context, keyword, conversationID string) ([]*models.Message, error) {
	var messages []*models.Message
	searchTerm := "%" + strings.ToLower(keyword) + "%"
	query := r.db.WithContext(ctx).Where("LOWER(content) LIKE ?", searchTerm)
	if conversationID != "" {
		query = query.Where("conversation_id = ?", conversationID)
	}
	err := query.Order("id ASC").Find(&messages).Error
	return messages, err
}

// ListBySender 按追加顺序返回某个发送者的消息。
func (r *gormMessageRepository) ListBySender(ctx context.Context, sender, conversationID string) ([]*models.Message, error) {
	var messages []*models.Message
	query := r.db.WithContext(ctx).Where("sender = ?", sender)
	if conversationID != "" {
		query = query.Where("conversation_id = ?", conversationID)
	}
	err := query.Order("id ASC").Find(&messages).Error
	return messages, err
}

// DeleteByConversation 删除某个会话的全部消息。单条 DELETE 语句本身是
// 原子的，失败时不会留下半删的状态。
func (r *gormMessageRepository) DeleteByConversation(ctx context.Context, conversationID string) error {
	return r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&models.Message{}).Error
}

// DeleteAll 清空整个消息日志。
func (r *gormMessageRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Message{}).Error
}

// Count 统计消息数。
func (r *gormMessageRepository) Count(ctx context.Context, conversationID string) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Message{})
	if conversationID != "" {
		query = query.Where("conversation_id = ?", conversationID)
	}
	err := query.Count(&count).Error
	return count, err
}

// LastByConversation 返回某个会话最新的一条消息；没有消息时返回 nil。
func (r *gormMessageRepository) LastByConversation(ctx context.Context, conversationID string) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id DESC").
		First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

// CountUnread 统计 after 之后由 reader 以外的人发送的消息数。
func (r *gormMessageRepository) CountUnread(ctx context.Context, conversationID, reader string, after time.Time) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND sender != ?", conversationID, reader)
	if !after.IsZero() {
		query = query.Where("sent_at > ?", after)
	}
	err := query.Count(&count).Error
	return count, err
}

// GetReadMark 获取阅读标记；不存在时返回 nil。
func (r *gormMessageRepository) GetReadMark(ctx context.Context, username, conversationID string) (*models.ReadMark, error) {
	var mark models.ReadMark
	err := r.db.WithContext(ctx).
		Where("username = ? AND conversation_id = ?", username, conversationID).
		First(&mark).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mark, nil
}

// UpsertReadMark 写入或推进阅读标记。
func (r *gormMessageRepository) UpsertReadMark(ctx context.Context, username, conversationID string, at time.Time) error {
	mark := &models.ReadMark{
		Username:       username,
		ConversationID: conversationID,
		LastReadAt:     at,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}, {Name: "conversation_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_read_at"}),
	}).Create(mark).Error
}
