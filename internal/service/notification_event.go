package service

import (
	"fmt"

	"github.com/anonto42/socialcore/backend/internal/models"
)

// Event is a notification payload. Each variant carries exactly the
// references its type needs.
type Event interface {
	Type() models.NotificationType
	apply(n *models.Notification)
}

type FollowEvent struct{}

type LikeEvent struct {
	PostID string
}

type CommentEvent struct {
	PostID    string
	CommentID uint
}

type GroupAddedEvent struct {
	GroupID   uint
	GroupName string
}

type GroupAdminEvent struct {
	GroupID   uint
	GroupName string
}

func (FollowEvent) Type() models.NotificationType     { return models.NotificationFollow }
func (LikeEvent) Type() models.NotificationType       { return models.NotificationLike }
func (CommentEvent) Type() models.NotificationType    { return models.NotificationComment }
func (GroupAddedEvent) Type() models.NotificationType { return models.NotificationGroupAdded }
func (GroupAdminEvent) Type() models.NotificationType { return models.NotificationGroupAdmin }

func (FollowEvent) apply(*models.Notification) {}

func (e LikeEvent) apply(n *models.Notification) {
	n.PostID = &e.PostID
}

func (e CommentEvent) apply(n *models.Notification) {
	n.PostID = &e.PostID
	n.CommentID = &e.CommentID
}

func (e GroupAddedEvent) apply(n *models.Notification) {
	n.GroupID = &e.GroupID
	n.Message = fmt.Sprintf("added you to %s", e.GroupName)
}

func (e GroupAdminEvent) apply(n *models.Notification) {
	n.GroupID = &e.GroupID
	n.Message = fmt.Sprintf("made you an admin of %s", e.GroupName)
}
