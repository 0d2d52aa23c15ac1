package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"studychat/internal/models"
	"studychat/internal/storage"
)

// UserService 定义了用户注册与登录相关服务的接口。
type UserService interface {
	// Register 注册新用户，成功时返回欢迎语。
	Register(ctx context.Context, username, password string) (string, error)
	// Login 校验用户名密码，成功时返回欢迎语。密码按明文精确比较。
	Login(ctx context.Context, username, password string) (string, error)
	Exists(ctx context.Context, username string) (bool, error)
	Count(ctx context.Context) (int64, error)
	ListUsernames(ctx context.Context) ([]string, error)
	// SearchUsers 按关键词搜索用户名（大小写不敏感的子串匹配），
	// 排除 current 自己，结果升序。
	SearchUsers(ctx context.Context, current, keyword string) ([]string, error)
}

// userService 是 UserService 的实现。
type userService struct {
	mu       sync.Mutex
	userRepo storage.UserRepository
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo storage.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// Register 处理用户注册逻辑。检查-写入序列持锁执行，
// 避免并发调用者重复注册同一个用户名。
func (s *userService) Register(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", ErrEmptyCredentials
	}
	if len([]rune(username)) < 3 {
		return "", ErrUsernameTooShort
	}
	if len([]rune(password)) < 4 {
		return "", ErrPasswordTooShort
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	taken, err := s.userRepo.Exists(ctx, username)
	if err != nil {
		return "", fmt.Errorf("检查用户名时出错: %w", err)
	}
	if taken {
		return "", ErrUserAlreadyExists
	}

	newUser := &models.User{Username: username, Password: password}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return fmt.Sprintf("注册成功！欢迎 %s 加入中考加油大家庭！", username), nil
}

// Login 处理用户登录逻辑。
func (s *userService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", ErrEmptyCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("查找用户失败: %w", err)
	}
	if user.Password != password {
		return "", ErrWrongPassword
	}
	return fmt.Sprintf("登录成功！欢迎回来，%s！", username), nil
}

// Exists 检查用户是否已注册。
func (s *userService) Exists(ctx context.Context, username string) (bool, error) {
	return s.userRepo.Exists(ctx, username)
}

// Count 返回当前注册用户数量。
func (s *userService) Count(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx)
}

// ListUsernames 返回所有注册用户名，顺序不保证有业务含义。
func (s *userService) ListUsernames(ctx context.Context) ([]string, error) {
	return s.userRepo.ListUsernames(ctx)
}

// SearchUsers 实现用户搜索。
func (s *userService) SearchUsers(ctx context.Context, current, keyword string) ([]string, error) {
	return s.userRepo.Search(ctx, keyword, current)
}
