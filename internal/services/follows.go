package services

import (
	"context"
	"fmt"

	"blogroll/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowService struct {
	db *gorm.DB
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// Follow 让 userID 关注 authorID，已关注时什么都不做
// created 表示本次是否新建了关注关系
func (s *FollowService) Follow(ctx context.Context, userID, authorID uint) (created bool, err error) {
	if userID == authorID {
		return false, ErrSelfFollow
	}
	follow := models.Follow{UserID: userID, AuthorID: authorID}
	res := s.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&follow)
	if res.Error != nil {
		return false, fmt.Errorf("follow: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Unfollow 删除关注关系，不存在时返回 ErrNotFound
func (s *FollowService) Unfollow(ctx context.Context, userID, authorID uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return fmt.Errorf("unfollow: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("follow %d->%d: %w", userID, authorID, ErrNotFound)
	}
	return nil
}

func (s *FollowService) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, err
}

// Counts returns how many users follow userID and how many authors userID follows.
func (s *FollowService) Counts(ctx context.Context, userID uint) (followers, following int64, err error) {
	tx := s.db.WithContext(ctx)
	if err = tx.Model(&models.Follow{}).Where("author_id = ?", userID).Count(&followers).Error; err != nil {
		return 0, 0, err
	}
	if err = tx.Model(&models.Follow{}).Where("user_id = ?", userID).Count(&following).Error; err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}
