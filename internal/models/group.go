package models

import "time"

type GroupRole string

const (
	RoleAdmin  GroupRole = "admin"
	RoleMember GroupRole = "member"
)

type Group struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CreatedBy   uint      `json:"created_by" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description string    `json:"description" gorm:"size:255"`
	Picture     string    `json:"picture"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"index"`
}

type GroupMember struct {
	GroupID  uint      `json:"group_id" gorm:"primaryKey"`
	UserID   uint      `json:"user_id" gorm:"primaryKey;index"`
	Role     GroupRole `json:"role" gorm:"type:varchar(20);default:'member'"`
	JoinedAt time.Time `json:"joined_at"`
}

type GroupMessage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	GroupID   uint      `json:"group_id" gorm:"index"`
	SenderID  uint      `json:"sender_id" gorm:"index"`
	Content   string    `json:"content" gorm:"type:text"`
	File      string    `json:"file,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupReadCursor tracks per-user read progress in a group.
// LastReadMessageID never decreases.
type GroupReadCursor struct {
	UserID            uint      `json:"user_id" gorm:"primaryKey"`
	GroupID           uint      `json:"group_id" gorm:"primaryKey;index"`
	LastReadMessageID uint      `json:"last_read_message_id" gorm:"not null;default:0"`
	LastReadAt        time.Time `json:"last_read_at"`
}

// GroupSummary is a group as seen by one member.
type GroupSummary struct {
	Group
	Role              GroupRole `json:"role"`
	HasUnread         bool      `json:"has_unread"`
	LastReadMessageID uint      `json:"last_read_message_id"`
	CanManage         bool      `json:"can_manage"`
}

// GroupMemberView is a member joined with display data.
type GroupMemberView struct {
	GroupMember
	User UserCompact `json:"user"`
}

type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=255"`
	Picture     string `json:"picture" validate:"omitempty,url"`
}

type UpdateGroupRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=255"`
	Picture     *string `json:"picture" validate:"omitempty,url"`
}

type AddMemberRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

type SetRoleRequest struct {
	Role GroupRole `json:"role" validate:"required,oneof=admin member"`
}

type SendGroupMessageRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
	File    string `json:"file" validate:"omitempty,url"`
}

type AdvanceCursorRequest struct {
	MessageID uint `json:"message_id" validate:"required"`
}
