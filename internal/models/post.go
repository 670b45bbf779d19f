package models

import "time"

type PostKind string

const (
	PostKindPost PostKind = "post"
	PostKindReel PostKind = "reel"
)

// Post is stored either in the relational store or in MongoDB, so it carries
// both tag sets. IDs are strings in both backends.
type Post struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64" bson:"_id"`
	UserID    uint      `json:"user_id" gorm:"index" bson:"user_id"`
	Kind      PostKind  `json:"kind" gorm:"size:10;default:'post'" bson:"kind"`
	Content   string    `json:"content" bson:"content"`
	MediaURL  string    `json:"media_url,omitempty" bson:"media_url,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"index" bson:"created_at"`
}

// PostStats are the read-time aggregates attached to feed rows.
type PostStats struct {
	LikeCount    int64 `json:"like_count"`
	CommentCount int64 `json:"comment_count"`
	LikedByMe    bool  `json:"liked_by_me"`
}

// FeedPost is a post with author info and viewer-specific flags
type FeedPost struct {
	Post
	PostStats
	Author UserCompact `json:"author"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Kind     PostKind `json:"kind" validate:"omitempty,oneof=post reel"`
	Content  string   `json:"content" validate:"required,min=1,max=2200"`
	MediaURL string   `json:"media_url" validate:"omitempty,url"`
}
