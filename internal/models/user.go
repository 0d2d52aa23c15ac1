package models

import "time"

// User 代表系统中的一个注册用户。
// 密码按原样存储并以明文比较，这是单机桌面应用刻意保留的行为，
// 本核心不做任何认证加固。
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Username  string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName 指定 User 模型的表名。
func (User) TableName() string {
	return "users"
}
