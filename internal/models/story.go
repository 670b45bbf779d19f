package models

import "time"

// Story is visible until ExpiresAt to its owner and the owner's followers.
type Story struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	MediaRef  string    `json:"media"`
	MediaType string    `json:"media_type" gorm:"size:10"`
	Audio     string    `json:"audio,omitempty"`
	Caption   string    `json:"caption,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
}

// StoryView tracks which stories a user has seen
type StoryView struct {
	StoryID  uint      `json:"story_id" gorm:"primaryKey"`
	UserID   uint      `json:"user_id" gorm:"primaryKey"`
	ViewedAt time.Time `json:"viewed_at"`
}

// StoryLike is one like per (story, user).
type StoryLike struct {
	StoryID   uint      `json:"story_id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

// StoryFeedItem is the list projection for a viewer.
type StoryFeedItem struct {
	Story
	Author     UserCompact `json:"author"`
	ViewedByMe bool        `json:"viewed_by_me"`
	LikedByMe  bool        `json:"liked_by_me"`
}

// CreateStoryRequest defines the request body for creating a story
type CreateStoryRequest struct {
	Media     string `json:"media" validate:"required"`
	MediaType string `json:"media_type" validate:"required,oneof=image video"`
	Audio     string `json:"audio"`
	Caption   string `json:"caption" validate:"max=2200"`
}
