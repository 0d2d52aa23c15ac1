package models

import "time"

// Message 代表一条聊天消息。消息创建后不可变，只追加；
// 删除只能以"清空某个会话"的粒度进行。
type Message struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Sender         string    `gorm:"type:varchar(100);index;not null" json:"sender"`
	ConversationID string    `gorm:"type:varchar(255);index;not null" json:"conversationId"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	SentAt         time.Time `gorm:"not null;index" json:"sentAt"`
}

// TableName 指定 Message 模型的表名。
func (Message) TableName() string {
	return "messages"
}

// ReadMark 记录某个用户在某个会话中最后一次阅读的时间，
// 用于计算未读数。
type ReadMark struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Username       string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_read_mark" json:"username"`
	ConversationID string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_read_mark" json:"conversationId"`
	LastReadAt     time.Time `json:"lastReadAt"`
}

// TableName 指定 ReadMark 模型的表名。
func (ReadMark) TableName() string {
	return "read_marks"
}
