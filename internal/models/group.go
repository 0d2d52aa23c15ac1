package models

import "time"

// GroupKind 定义了群组的类型。
type GroupKind string

const (
	// BroadcastKind 是唯一的公共广播室，所有用户无需成员资格即可读写。
	BroadcastKind GroupKind = "broadcast"
	// NormalKind 是普通群组，按成员名单控制访问。
	NormalKind GroupKind = "group"
)

const (
	// BroadcastRoomID 是广播室的固定会话ID。
	BroadcastRoomID = "BROADCAST_ROOM"
	// SystemSender 是系统消息使用的发送者哨兵值，广播室的"创建者"。
	SystemSender = "系统"
)

// Group 代表一个聊天群组。创建者永远是成员且不可转让；
// 只有创建者可以增删成员，创建者不能把自己移出群组。
type Group struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	GroupID   string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"groupId"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Creator   string    `gorm:"type:varchar(100);not null" json:"creator"`
	Kind      GroupKind `gorm:"type:varchar(20);not null;default:'group'" json:"kind"`
	CreatedAt time.Time `json:"createdAt"`

	// 成员名单，按加入顺序。
	Members []GroupMember `gorm:"foreignKey:GroupID;references:GroupID" json:"members,omitempty"`
}

// TableName 指定 Group 模型的表名。
func (Group) TableName() string {
	return "groups"
}

// MemberNames 按加入顺序返回成员用户名。
func (g *Group) MemberNames() []string {
	names := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		names = append(names, m.Username)
	}
	return names
}

// HasMember 报告用户是否在成员名单中。
func (g *Group) HasMember(username string) bool {
	for _, m := range g.Members {
		if m.Username == username {
			return true
		}
	}
	return false
}

// GroupMember 将用户链接到群组，自增主键保留加入顺序。
type GroupMember struct {
	ID       uint      `gorm:"primarykey" json:"id"`
	GroupID  string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_group_member" json:"groupId"`
	Username string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_group_member" json:"username"`
	JoinedAt time.Time `json:"joinedAt"`
}

// TableName 指定 GroupMember 模型的表名。
func (GroupMember) TableName() string {
	return "group_members"
}
