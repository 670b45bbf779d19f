package repositories

import (
	"context"
	"time"

	"github.com/anonto42/socialcore/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoryRepository defines the interface for story operations
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetStoryByID(ctx context.Context, id uint) (*models.Story, error)
	// GetVisibleStories returns unexpired stories owned by any of ownerIDs,
	// newest first.
	GetVisibleStories(ctx context.Context, ownerIDs []uint, now time.Time, limit int) ([]models.Story, error)
	// MarkSeen reports false when the view was already recorded.
	MarkSeen(ctx context.Context, view *models.StoryView) (bool, error)
	GetSeenStoryIDs(ctx context.Context, userID uint, storyIDs []uint) (map[uint]bool, error)
	// AddLike reports false when the like already exists.
	AddLike(ctx context.Context, like *models.StoryLike) (bool, error)
	RemoveLike(ctx context.Context, storyID, userID uint) (bool, error)
	GetLikedStoryIDs(ctx context.Context, userID uint, storyIDs []uint) (map[uint]bool, error)
	// DeleteExpiredStories removes stories that expired before cutoff along
	// with their views and likes.
	DeleteExpiredStories(ctx context.Context, cutoff time.Time) (int64, error)
}

type PostgresStoryRepository struct {
	db *gorm.DB
}

func NewPostgresStoryRepository(db *gorm.DB) *PostgresStoryRepository {
	return &PostgresStoryRepository{db: db}
}

func (r *PostgresStoryRepository) CreateStory(ctx context.Context, story *models.Story) error {
	return dbFor(ctx, r.db).Create(story).Error
}

func (r *PostgresStoryRepository) GetStoryByID(ctx context.Context, id uint) (*models.Story, error) {
	var story models.Story
	if err := dbFor(ctx, r.db).First(&story, id).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *PostgresStoryRepository) GetVisibleStories(ctx context.Context, ownerIDs []uint, now time.Time, limit int) ([]models.Story, error) {
	stories := []models.Story{}
	if len(ownerIDs) == 0 {
		return stories, nil
	}
	err := dbFor(ctx, r.db).
		Where("user_id IN ? AND expires_at > ?", ownerIDs, now).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&stories).Error
	return stories, err
}

func (r *PostgresStoryRepository) MarkSeen(ctx context.Context, view *models.StoryView) (bool, error) {
	res := dbFor(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(view)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PostgresStoryRepository) GetSeenStoryIDs(ctx context.Context, userID uint, storyIDs []uint) (map[uint]bool, error) {
	return storyIDSet(ctx, r.db, &models.StoryView{}, userID, storyIDs)
}

func (r *PostgresStoryRepository) AddLike(ctx context.Context, like *models.StoryLike) (bool, error) {
	res := dbFor(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(like)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PostgresStoryRepository) RemoveLike(ctx context.Context, storyID, userID uint) (bool, error) {
	res := dbFor(ctx, r.db).Where("story_id = ? AND user_id = ?", storyID, userID).Delete(&models.StoryLike{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresStoryRepository) GetLikedStoryIDs(ctx context.Context, userID uint, storyIDs []uint) (map[uint]bool, error) {
	return storyIDSet(ctx, r.db, &models.StoryLike{}, userID, storyIDs)
}

func (r *PostgresStoryRepository) DeleteExpiredStories(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		expired := tx.Model(&models.Story{}).Select("id").Where("expires_at <= ?", cutoff)
		if err := tx.Where("story_id IN (?)", expired).Delete(&models.StoryView{}).Error; err != nil {
			return err
		}
		if err := tx.Where("story_id IN (?)", expired).Delete(&models.StoryLike{}).Error; err != nil {
			return err
		}
		res := tx.Where("expires_at <= ?", cutoff).Delete(&models.Story{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

func storyIDSet(ctx context.Context, db *gorm.DB, model interface{}, userID uint, storyIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(storyIDs))
	if len(storyIDs) == 0 {
		return result, nil
	}
	var ids []uint
	err := dbFor(ctx, db).Model(model).
		Where("user_id = ? AND story_id IN ?", userID, storyIDs).
		Pluck("story_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}
