package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrPostNotFound is returned by every PostRepository implementation.
var ErrPostNotFound = errors.New("post not found")

// PostRepository defines the interface for post data operations. Listing
// methods order by created_at then id, both descending.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []string) (map[string]models.Post, error)
	GetPostsByUserIDs(ctx context.Context, userIDs []uint, limit int) ([]models.Post, error)
	GetAllPosts(ctx context.Context, limit int) ([]models.Post, error)
	DeletePost(ctx context.Context, id string) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost assigns a time-ordered UUID when the post has no id yet.
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		post.ID = id.String()
	}
	return dbFor(ctx, r.db).Create(post).Error
}

func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := dbFor(ctx, r.db).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *PostgresPostRepository) GetPostsByIDs(ctx context.Context, ids []string) (map[string]models.Post, error) {
	result := make(map[string]models.Post, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var posts []models.Post
	if err := dbFor(ctx, r.db).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, err
	}
	for _, p := range posts {
		result[p.ID] = p
	}
	return result, nil
}

func (r *PostgresPostRepository) GetPostsByUserIDs(ctx context.Context, userIDs []uint, limit int) ([]models.Post, error) {
	posts := []models.Post{}
	if len(userIDs) == 0 {
		return posts, nil
	}
	err := dbFor(ctx, r.db).Where("user_id IN ?", userIDs).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *PostgresPostRepository) GetAllPosts(ctx context.Context, limit int) ([]models.Post, error) {
	posts := []models.Post{}
	err := dbFor(ctx, r.db).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *PostgresPostRepository) DeletePost(ctx context.Context, id string) error {
	res := dbFor(ctx, r.db).Where("id = ?", id).Delete(&models.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}
