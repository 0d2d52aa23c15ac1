package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"studychat/internal/models"
	"studychat/internal/storage"
)

// personalChatPrefix 是个人会话ID的固定前缀。
// 完整格式：PM_<u1>_<u2>，两个用户名按字典序升序排列，
// 因此同一对用户无论谁发起都得到同一个会话ID。
const personalChatPrefix = "PM_"

// ConversationKind 标识会话的三种形态。
type ConversationKind string

const (
	KindBroadcast ConversationKind = "broadcast"
	KindPersonal  ConversationKind = "personal"
	KindGroup     ConversationKind = "group"
)

// ConversationSummary 是会话列表中的一项。
type ConversationSummary struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Kind        ConversationKind `json:"kind"`
	LastMessage *models.Message  `json:"lastMessage,omitempty"`
	Unread      int64            `json:"unread"`
}

// ConversationResolver 为任意 (用户, 会话) 组合回答两个问题：
// 这个会话叫什么，以及这个用户能不能碰它。它自身不持有任何状态，
// 只是好友图、群组名单和消息日志之上的纯逻辑。
type ConversationResolver interface {
	// PersonalChatID 为一对用户生成确定性的个人会话ID，与参数顺序无关。
	PersonalChatID(u1, u2 string) string
	IsPersonalChatID(id string) bool
	// PersonalChatUsers 从个人会话ID解析出两个用户名；
	// 格式不对时返回 nil，调用方应视作"不是有效的个人会话"。
	PersonalChatUsers(id string) []string
	// CanAccess 判定用户是否可以读写指定会话。广播室对所有人开放；
	// 个人会话要求用户是两个参与者之一且双方当前是好友；
	// 群组会话要求用户在成员名单中；其余一律拒绝。
	CanAccess(ctx context.Context, user, conversationID string) (bool, error)
	// ConversationName 返回会话对 viewer 的显示名称；
	// 未知ID原样返回，这是兜底而不是错误。
	ConversationName(ctx context.Context, viewer, conversationID string) (string, error)
	// RecentConversations 返回用户可见的会话列表：广播室固定在首位，
	// 其余按最后一条消息时间降序，时间相同按会话ID升序。
	RecentConversations(ctx context.Context, user string) ([]ConversationSummary, error)
	BroadcastID() string
}

// conversationResolver 是 ConversationResolver 的实现。
type conversationResolver struct {
	friendRepo    storage.FriendRepository
	groupRepo     storage.GroupRepository
	msgRepo       storage.MessageRepository
	broadcastName string
}

// NewConversationResolver 创建一个新的 ConversationResolver 实例。
// 依赖在构造时显式注入，不做任何运行期按名字查找。
func NewConversationResolver(
	friendRepo storage.FriendRepository,
	groupRepo storage.GroupRepository,
	msgRepo storage.MessageRepository,
	broadcastName string,
) ConversationResolver {
	return &conversationResolver{
		friendRepo:    friendRepo,
		groupRepo:     groupRepo,
		msgRepo:       msgRepo,
		broadcastName: broadcastName,
	}
}

// PersonalChatID 生成个人会话ID。纯函数：相同的一对输入，
// 任意顺序，输出相同。
func (r *conversationResolver) PersonalChatID(u1, u2 string) string {
	if u1 > u2 {
		u1, u2 = u2, u1
	}
	return personalChatPrefix + u1 + "_" + u2
}

// IsPersonalChatID 检查是否为个人会话ID。
func (r *conversationResolver) IsPersonalChatID(id string) bool {
	return strings.HasPrefix(id, personalChatPrefix)
}

// PersonalChatUsers 解析个人会话ID。用户名本身含下划线时切分数不为3，
// 按格式错误处理。
func (r *conversationResolver) PersonalChatUsers(id string) []string {
	if !r.IsPersonalChatID(id) {
		return nil
	}
	parts := strings.Split(id, "_")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return nil
	}
	return []string{parts[1], parts[2]}
}

// CanAccess 实现统一的会话访问检查。
func (r *conversationResolver) CanAccess(ctx context.Context, user, conversationID string) (bool, error) {
	if conversationID == models.BroadcastRoomID {
		return true, nil
	}

	if r.IsPersonalChatID(conversationID) {
		users := r.PersonalChatUsers(conversationID)
		if users == nil {
			return false, nil
		}
		if user != users[0] && user != users[1] {
			return false, nil
		}
		// 个人会话要求双方当前是好友；任意两个用户名都能拼出
		// 合法形态的ID，单靠参与者检查挡不住陌生人对话。
		return r.friendRepo.AreFriends(ctx, users[0], users[1])
	}

	group, err := r.groupRepo.GetByGroupID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("查找群组失败: %w", err)
	}
	return group.HasMember(user), nil
}

// ConversationName 解析会话的显示名称。
func (r *conversationResolver) ConversationName(ctx context.Context, viewer, conversationID string) (string, error) {
	if conversationID == models.BroadcastRoomID {
		return r.broadcastName, nil
	}

	if users := r.PersonalChatUsers(conversationID); users != nil {
		// 个人会话以对方的用户名命名。
		if viewer == users[0] {
			return users[1], nil
		}
		if viewer == users[1] {
			return users[0], nil
		}
		return conversationID, nil
	}

	group, err := r.groupRepo.GetByGroupID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return conversationID, nil
		}
		return "", fmt.Errorf("查找群组失败: %w", err)
	}
	return group.Name, nil
}

// RecentConversations 组装用户的会话列表。
func (r *conversationResolver) RecentConversations(ctx context.Context, user string) ([]ConversationSummary, error) {
	summaries := make([]ConversationSummary, 0, 8)

	broadcast, err := r.summarize(ctx, user, models.BroadcastRoomID, r.broadcastName, KindBroadcast)
	if err != nil {
		return nil, err
	}
	summaries = append(summaries, broadcast)

	friends, err := r.friendRepo.FriendsOf(ctx, user)
	if err != nil {
		return nil, err
	}
	for _, friend := range friends {
		s, err := r.summarize(ctx, user, r.PersonalChatID(user, friend), friend, KindPersonal)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	groups, err := r.groupRepo.GroupsOf(ctx, user)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		s, err := r.summarize(ctx, user, g.GroupID, g.Name, KindGroup)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	// 广播室钉在首位，其余按最后消息时间降序，同刻按ID升序保证确定性。
	rest := summaries[1:]
	sort.SliceStable(rest, func(i, j int) bool {
		ti, tj := lastMessageTime(rest[i]), lastMessageTime(rest[j])
		if ti.Equal(tj) {
			return rest[i].ID < rest[j].ID
		}
		return ti.After(tj)
	})
	return summaries, nil
}

// BroadcastID 返回广播室的固定会话ID。
func (r *conversationResolver) BroadcastID() string {
	return models.BroadcastRoomID
}

func (r *conversationResolver) summarize(ctx context.Context, user, id, name string, kind ConversationKind) (ConversationSummary, error) {
	last, err := r.msgRepo.LastByConversation(ctx, id)
	if err != nil {
		return ConversationSummary{}, err
	}
	unread, err := r.countUnread(ctx, user, id)
	if err != nil {
		return ConversationSummary{}, err
	}
	return ConversationSummary{ID: id, Name: name, Kind: kind, LastMessage: last, Unread: unread}, nil
}

// zeroTime 表示"从未读过"。
var zeroTime time.Time

func lastMessageTime(s ConversationSummary) time.Time {
	if s.LastMessage == nil {
		return zeroTime
	}
	return s.LastMessage.SentAt
}

func (r *conversationResolver) countUnread(ctx context.Context, user, conversationID string) (int64, error) {
	mark, err := r.msgRepo.GetReadMark(ctx, user, conversationID)
	if err != nil {
		return 0, err
	}
	since := zeroTime
	if mark != nil {
		since = mark.LastReadAt
	}
	return r.msgRepo.CountUnread(ctx, conversationID, user, since)
}
