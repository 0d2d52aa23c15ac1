package models

import "time"

// FriendEdge 是好友关系的一个方向。关系本身是无向的：
// 每条关系在表中占两行（A→B 和 B→A），建立与解除必须在同一个
// 事务内同时写两个方向，保证任一时刻对称性成立。
type FriendEdge struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_friend_edge" json:"userId"`
	FriendID  string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_friend_edge" json:"friendId"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName 指定 FriendEdge 模型的表名。
func (FriendEdge) TableName() string {
	return "friend_edges"
}
