package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"studychat/internal/models"
	"studychat/internal/storage"
)

// RelationshipService 统一管理好友关系与群组名单。
// 原客户端把几乎相同的逻辑散落在三个模块里，这里收敛为一个组件。
type RelationshipService interface {
	AddFriend(ctx context.Context, user, friend string) error
	RemoveFriend(ctx context.Context, user, friend string) error
	// FriendsOf 返回用户的好友列表；未知用户返回空列表而不是错误。
	FriendsOf(ctx context.Context, user string) ([]string, error)
	AreFriends(ctx context.Context, a, b string) (bool, error)

	// CreateGroup 创建群组并返回生成的群组ID，创建者自动成为第一个成员。
	CreateGroup(ctx context.Context, creator, name string) (string, error)
	AddMember(ctx context.Context, groupID, username, actingAdmin string) error
	RemoveMember(ctx context.Context, groupID, username, actingAdmin string) error
	// DisbandGroup 是显式的未实现操作，始终返回 ErrDisbandUnimplemented。
	DisbandGroup(ctx context.Context, groupID, actingAdmin string) error
	// GroupsOf 返回用户加入的普通群组，不含广播室。
	GroupsOf(ctx context.Context, user string) (map[string]*models.Group, error)
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	// AllGroups 返回所有群组，含广播室。
	AllGroups(ctx context.Context) (map[string]*models.Group, error)
	BroadcastID() string
}

// relationshipService 是 RelationshipService 的实现。
type relationshipService struct {
	mu         sync.Mutex
	friendRepo storage.FriendRepository
	groupRepo  storage.GroupRepository
}

// NewRelationshipService 创建一个新的 RelationshipService 实例。
func NewRelationshipService(friendRepo storage.FriendRepository, groupRepo storage.GroupRepository) RelationshipService {
	return &relationshipService{friendRepo: friendRepo, groupRepo: groupRepo}
}

// AddFriend 建立双向好友关系，两个方向在同一事务内写入。
func (s *relationshipService) AddFriend(ctx context.Context, user, friend string) error {
	if user == friend {
		return ErrSelfFriend
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	already, err := s.friendRepo.AreFriends(ctx, user, friend)
	if err != nil {
		return fmt.Errorf("检查好友关系失败: %w", err)
	}
	if already {
		return ErrAlreadyFriends
	}
	if err := s.friendRepo.AddEdge(ctx, user, friend); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// RemoveFriend 解除双向好友关系。
func (s *relationshipService) RemoveFriend(ctx context.Context, user, friend string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	are, err := s.friendRepo.AreFriends(ctx, user, friend)
	if err != nil {
		return fmt.Errorf("检查好友关系失败: %w", err)
	}
	if !are {
		return ErrNotFriends
	}
	if err := s.friendRepo.RemoveEdge(ctx, user, friend); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// FriendsOf 返回用户的好友列表。
func (s *relationshipService) FriendsOf(ctx context.Context, user string) ([]string, error) {
	return s.friendRepo.FriendsOf(ctx, user)
}

// AreFriends 检查两个用户是否是好友。
func (s *relationshipService) AreFriends(ctx context.Context, a, b string) (bool, error) {
	return s.friendRepo.AreFriends(ctx, a, b)
}

// CreateGroup 创建群组。
func (s *relationshipService) CreateGroup(ctx context.Context, creator, name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrEmptyGroupName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	group := &models.Group{
		GroupID:   uuid.New().String(),
		Name:      trimmed,
		Creator:   creator,
		Kind:      models.NormalKind,
		CreatedAt: time.Now().Truncate(time.Second),
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return group.GroupID, nil
}

// AddMember 向群组中添加成员，只有创建者有此权限。
func (s *relationshipService) AddMember(ctx context.Context, groupID, username, actingAdmin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.Creator != actingAdmin {
		return ErrNotCreator
	}
	if group.HasMember(username) {
		return ErrAlreadyMember
	}

	member := &models.GroupMember{
		GroupID:  groupID,
		Username: username,
		JoinedAt: time.Now().Truncate(time.Second),
	}
	if err := s.groupRepo.AddMember(ctx, member); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// RemoveMember 从群组中移除成员。创建者不能移除自己，解散群组
// 是另一个（未实现的）操作。
func (s *relationshipService) RemoveMember(ctx context.Context, groupID, username, actingAdmin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.Creator != actingAdmin {
		return ErrNotCreator
	}
	if !group.HasMember(username) {
		return ErrNotMember
	}
	if username == actingAdmin {
		return ErrCreatorSelfLeave
	}
	if err := s.groupRepo.RemoveMember(ctx, groupID, username); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// DisbandGroup 未实现。
func (s *relationshipService) DisbandGroup(ctx context.Context, groupID, actingAdmin string) error {
	return ErrDisbandUnimplemented
}

// GroupsOf 返回用户加入的普通群组。
func (s *relationshipService) GroupsOf(ctx context.Context, user string) (map[string]*models.Group, error) {
	groups, err := s.groupRepo.GroupsOf(ctx, user)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.Group, len(groups))
	for _, g := range groups {
		out[g.GroupID] = g
	}
	return out, nil
}

// GetGroup 通过群组ID获取群组信息。
func (s *relationshipService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.getGroup(ctx, groupID)
}

// AllGroups 返回所有群组。
func (s *relationshipService) AllGroups(ctx context.Context) (map[string]*models.Group, error) {
	groups, err := s.groupRepo.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.Group, len(groups))
	for _, g := range groups {
		out[g.GroupID] = g
	}
	return out, nil
}

// BroadcastID 返回广播室的固定会话ID。
func (s *relationshipService) BroadcastID() string {
	return models.BroadcastRoomID
}

func (s *relationshipService) getGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := s.groupRepo.GetByGroupID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("查找群组失败: %w", err)
	}
	return group, nil
}
