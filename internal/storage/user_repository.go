package storage

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"studychat/internal/models"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Exists(ctx context.Context, username string) (bool, error)
	Count(ctx context.Context) (int64, error)
	ListUsernames(ctx context.Context) ([]string, error)
	Search(ctx context.Context, keyword, exclude string) ([]string, error)
}

// gormUserRepository implements UserRepository using GORM.
type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based UserRepository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create creates a new user record in the database.
func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByUsername retrieves a user by their username.
func (r *gormUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Exists reports whether a user with the given username is registered.
func (r *gormUserRepository) Exists(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Count returns the number of registered users.
func (r *gormUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

// ListUsernames returns every registered username.
func (r *gormUserRepository) ListUsernames(ctx context.Context) ([]string, error) {
	var usernames []string
	err := r.db.WithContext(ctx).Model(&models.User{}).Pluck("username", &usernames).Error
	return usernames, err
}

// Search 在用户名上做大小写不敏感的模糊匹配，排除 exclude 指定的用户，
// 结果按用户名升序。
func (r *gormUserRepository) Search(ctx context.Context, keyword, exclude string) ([]string, error) {
	var usernames []string
	searchTerm := "%" + strings.ToLower(keyword) + "%"
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(username) LIKE ? AND username != ?", searchTerm, exclude).
		Order("username ASC").
		Pluck("username", &usernames).Error
	if err != nil {
		return nil, err
	}
	return usernames, nil
}
