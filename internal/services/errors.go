package services

import "errors"

// 业务错误按类别给出哨兵值，调用方用 errors.Is 区分并把文案原样展示给用户。
// 提示语沿用原客户端的措辞。
var (
	// 校验类
	ErrEmptyCredentials = errors.New("用户名和密码不能为空")
	ErrUsernameTooShort = errors.New("用户名至少需要3个字符")
	ErrPasswordTooShort = errors.New("密码至少需要4个字符")
	ErrEmptyGroupName   = errors.New("群组名称不能为空")
	ErrEmptyMessage     = errors.New("发送者或内容不能为空")

	// 未找到类
	ErrUserNotFound  = errors.New("用户名不存在，请先注册")
	ErrGroupNotFound = errors.New("群组不存在")
	ErrNotFriends    = errors.New("你们不是好友")
	ErrNotMember     = errors.New("用户不在群组中")

	// 冲突类
	ErrUserAlreadyExists = errors.New("用户名已存在，请选择其他用户名")
	ErrAlreadyFriends    = errors.New("你们已经是好友了")
	ErrAlreadyMember     = errors.New("用户已经在群组中")

	// 鉴权与权限类
	ErrWrongPassword = errors.New("密码错误，请重试")
	ErrNotCreator    = errors.New("只有群主才能管理成员")
	ErrAccessDenied  = errors.New("您没有权限访问这个会话")

	// 自引用类
	ErrSelfFriend       = errors.New("不能添加自己为好友")
	ErrCreatorSelfLeave = errors.New("群主不能移除自己，如需解散群组请使用解散功能")

	// ErrDisbandUnimplemented：解散群组在错误提示里被引用但从未实现，
	// 保持为显式的未实现操作，而不是默默放行群主自删。
	ErrDisbandUnimplemented = errors.New("解散群组功能暂未开放")

	// ErrPersistence 表示持久化写入失败；失败时存储的可观测状态
	// 与调用前一致（事务回滚）。
	ErrPersistence = errors.New("数据保存失败，请稍后重试")
)
