package repository

import (
	"context"
	"strings"

	"yatube/models"

	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations.
type FollowRepository interface {
	Create(ctx context.Context, follow *models.Follow) error
	GetByID(ctx context.Context, id uint) (*models.Follow, error)
	ListByUser(ctx context.Context, userID uint, search string, limit, offset int) ([]*models.Follow, error)
	CountByUser(ctx context.Context, userID uint, search string) (int64, error)
	Exists(ctx context.Context, userID, followingID uint) (bool, error)
	Delete(ctx context.Context, id uint) error
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, follow *models.Follow) error {
	return r.db.WithContext(ctx).Create(follow).Error
}

func (r *followRepository) GetByID(ctx context.Context, id uint) (*models.Follow, error) {
	var follow models.Follow
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Following").
		First(&follow, id).Error
	if err != nil {
		return nil, err
	}
	return &follow, nil
}

// scoped narrows follows to the given follower, optionally filtering by a
// case-insensitive substring of the followed user's username.
func (r *followRepository) scoped(ctx context.Context, userID uint, search string) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follows.user_id = ?", userID)
	if search != "" {
		q = q.Joins("JOIN users ON users.id = follows.following_id").
			Where("LOWER(users.username) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	return q
}

func (r *followRepository) ListByUser(ctx context.Context, userID uint, search string, limit, offset int) ([]*models.Follow, error) {
	follows := make([]*models.Follow, 0)
	err := r.scoped(ctx, userID, search).
		Preload("User").
		Preload("Following").
		Order("follows.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&follows).Error
	return follows, err
}

func (r *followRepository) CountByUser(ctx context.Context, userID uint, search string) (int64, error) {
	var count int64
	err := r.scoped(ctx, userID, search).Count(&count).Error
	return count, err
}

func (r *followRepository) Exists(ctx context.Context, userID, followingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ? AND following_id = ?", userID, followingID).
		Count(&count).Error
	return count > 0, err
}

func (r *followRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Follow{}, id).Error
}
