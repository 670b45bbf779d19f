package repositories

import (
	"context"

	"github.com/anonto42/socialcore/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID string, limit int) ([]models.Comment, error)
	GetCommentsCountByPostID(ctx context.Context, postID string) (int64, error)
	CountByPostIDs(ctx context.Context, postIDs []string) (map[string]int64, error)
	DeleteComment(ctx context.Context, id uint) error
	DeleteByPostID(ctx context.Context, postID string) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment creates a new comment in PostgreSQL
func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return dbFor(ctx, r.db).Create(comment).Error
}

// GetCommentByID retrieves a comment by ID from PostgreSQL
func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := dbFor(ctx, r.db).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByPostID retrieves the oldest comments of a post first
func (r *PostgresCommentRepository) GetCommentsByPostID(ctx context.Context, postID string, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := dbFor(ctx, r.db).Where("post_id = ?", postID).
		Order("created_at ASC").Order("id ASC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (r *PostgresCommentRepository) GetCommentsCountByPostID(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := dbFor(ctx, r.db).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

func (r *PostgresCommentRepository) CountByPostIDs(ctx context.Context, postIDs []string) (map[string]int64, error) {
	return countByPostIDs(ctx, r.db, &models.Comment{}, postIDs)
}

// DeleteComment deletes a comment by ID from PostgreSQL
func (r *PostgresCommentRepository) DeleteComment(ctx context.Context, id uint) error {
	return dbFor(ctx, r.db).Delete(&models.Comment{}, id).Error
}

func (r *PostgresCommentRepository) DeleteByPostID(ctx context.Context, postID string) error {
	return dbFor(ctx, r.db).Where("post_id = ?", postID).Delete(&models.Comment{}).Error
}
