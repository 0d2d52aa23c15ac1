package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"studychat/internal/models"
	"studychat/internal/storage"
)

// MessageService 是追加式的消息日志。每条消息带一个会话ID，
// 追加路径必须经过 ConversationResolver 的访问检查，不得绕开。
type MessageService interface {
	// Send 向会话追加一条消息。conversationID 为空时默认发到广播室。
	Send(ctx context.Context, sender, content, conversationID string) error
	// MessagesFor 返回 user 在指定会话中可见的消息；无权访问时返回
	// 空列表而不是错误。conversationID 为空时默认读广播室。
	// 成功读取会推进该用户在此会话的阅读标记。
	MessagesFor(ctx context.Context, user, conversationID string) ([]*models.Message, error)
	// Messages 返回某个会话的全部消息，不做访问过滤。
	Messages(ctx context.Context, conversationID string) ([]*models.Message, error)
	// Search 按关键词搜索消息内容（大小写不敏感的子串匹配）；
	// conversationID 为空时全局搜索。
	Search(ctx context.Context, keyword, conversationID string) ([]*models.Message, error)
	// MessagesBySender 返回某个发送者的消息；conversationID 为空时不限会话。
	MessagesBySender(ctx context.Context, sender, conversationID string) ([]*models.Message, error)
	// Clear 删除某个会话的全部消息；重复调用是幂等的。
	Clear(ctx context.Context, conversationID string) error
	// ClearAll 清空整个消息日志。
	ClearAll(ctx context.Context) error
	// Count 统计消息数；conversationID 为空时统计全部。
	Count(ctx context.Context, conversationID string) (int64, error)
	// MarkRead 把用户在某个会话的阅读标记推进到当前时刻。
	MarkRead(ctx context.Context, user, conversationID string) error
	// SeedWelcome 在消息日志为空时向广播室写入系统欢迎消息。
	SeedWelcome(ctx context.Context) error
}

// messageService 是 MessageService 的实现。
type messageService struct {
	mu       sync.Mutex
	msgRepo  storage.MessageRepository
	resolver ConversationResolver
}

// NewMessageService 创建一个新的 MessageService 实例。
func NewMessageService(msgRepo storage.MessageRepository, resolver ConversationResolver) MessageService {
	return &messageService{msgRepo: msgRepo, resolver: resolver}
}

// Send 实现消息发送：先校验，再做访问检查，最后落盘。
func (s *messageService) Send(ctx context.Context, sender, content, conversationID string) error {
	if strings.TrimSpace(sender) == "" || strings.TrimSpace(content) == "" {
		return ErrEmptyMessage
	}
	if conversationID == "" {
		conversationID = s.resolver.BroadcastID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.resolver.CanAccess(ctx, sender, conversationID)
	if err != nil {
		return fmt.Errorf("检查会话权限失败: %w", err)
	}
	if !ok {
		return ErrAccessDenied
	}

	message := &models.Message{
		Sender:         sender,
		ConversationID: conversationID,
		Content:        content,
		SentAt:         time.Now().Truncate(time.Second),
	}
	if err := s.msgRepo.Create(ctx, message); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// MessagesFor 实现带访问过滤的消息读取。
func (s *messageService) MessagesFor(ctx context.Context, user, conversationID string) ([]*models.Message, error) {
	if conversationID == "" {
		conversationID = s.resolver.BroadcastID()
	}

	ok, err := s.resolver.CanAccess(ctx, user, conversationID)
	if err != nil {
		return nil, fmt.Errorf("检查会话权限失败: %w", err)
	}
	if !ok {
		return []*models.Message{}, nil
	}

	messages, err := s.msgRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	// 阅读标记推进失败不影响读取结果。
	if err := s.msgRepo.UpsertReadMark(ctx, user, conversationID, time.Now()); err != nil {
		log.Warn().Err(err).Str("user", user).Str("conversation", conversationID).
			Msg("推进阅读标记失败")
	}
	return messages, nil
}

// Messages 返回某个会话的全部消息。
func (s *messageService) Messages(ctx context.Context, conversationID string) ([]*models.Message, error) {
	return s.msgRepo.ListByConversation(ctx, conversationID)
}

// Search 搜索消息。
func (s *messageService) Search(ctx context.Context, keyword, conversationID string) ([]*models.Message, error) {
	return s.msgRepo.Search(ctx, keyword, conversationID)
}

// MessagesBySender 返回某个发送者的消息。
func (s *messageService) MessagesBySender(ctx context.Context, sender, conversationID string) ([]*models.Message, error) {
	return s.msgRepo.ListBySender(ctx, sender, conversationID)
}

// Clear 清空某个会话的消息，其它会话不受影响。
func (s *messageService) Clear(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.msgRepo.DeleteByConversation(ctx, conversationID); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// ClearAll 清空所有消息。
func (s *messageService) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.msgRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// Count 统计消息数。
func (s *messageService) Count(ctx context.Context, conversationID string) (int64, error) {
	return s.msgRepo.Count(ctx, conversationID)
}

// MarkRead 推进阅读标记。
func (s *messageService) MarkRead(ctx context.Context, user, conversationID string) error {
	if conversationID == "" {
		conversationID = s.resolver.BroadcastID()
	}
	return s.msgRepo.UpsertReadMark(ctx, user, conversationID, time.Now())
}

// SeedWelcome 写入首次启动的欢迎消息，两条在同一事务内落盘。
func (s *messageService) SeedWelcome(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	total, err := s.msgRepo.Count(ctx, "")
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	now := time.Now().Truncate(time.Second)
	welcome := []*models.Message{
		{
			Sender:         models.SystemSender,
			ConversationID: s.resolver.BroadcastID(),
			Content:        "欢迎来到中考加油聊天室！",
			SentAt:         now,
		},
		{
			Sender:         models.SystemSender,
			ConversationID: s.resolver.BroadcastID(),
			Content:        "在这里你可以和战友们交流学习心得，互相鼓励！",
			SentAt:         now,
		},
	}
	if err := s.msgRepo.CreateBatch(ctx, welcome); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
