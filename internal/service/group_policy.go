package service

import (
	"github.com/anonto42/socialcore/backend/internal/apperrors"
	"github.com/anonto42/socialcore/backend/internal/models"
)

// GroupAction is an operation checked by the group policy.
type GroupAction string

const (
	ActionViewGroup    GroupAction = "view"
	ActionSendMessage  GroupAction = "send_message"
	ActionLeave        GroupAction = "leave"
	ActionAddMember    GroupAction = "add_member"
	ActionRemoveMember GroupAction = "remove_member"
	ActionPromote      GroupAction = "promote"
	ActionDemote       GroupAction = "demote"
	ActionUpdateGroup  GroupAction = "update"
	ActionDeleteGroup  GroupAction = "delete"
)

var memberActions = map[GroupAction]bool{
	ActionViewGroup:   true,
	ActionSendMessage: true,
	ActionLeave:       true,
}

// Authorize is the single group policy. actor is nil when the caller is not a
// member. Checks run in order: membership, the creator guard, then role.
// targetID is ignored by actions that have no target member.
func Authorize(group *models.Group, actor *models.GroupMember, action GroupAction, targetID uint) error {
	if actor == nil {
		return apperrors.Forbidden("you are not a member of this group")
	}
	if targetsCreator(group, action, targetID) {
		return apperrors.Conflict("the group creator cannot be removed or demoted")
	}
	if actor.Role == models.RoleAdmin || memberActions[action] {
		return nil
	}
	return apperrors.Forbidden("only group admins can do that")
}

// CanPerform is Authorize as a predicate.
func CanPerform(group *models.Group, actor *models.GroupMember, action GroupAction, targetID uint) bool {
	return Authorize(group, actor, action, targetID) == nil
}

func targetsCreator(group *models.Group, action GroupAction, targetID uint) bool {
	switch action {
	case ActionLeave, ActionRemoveMember, ActionDemote:
		return targetID == group.CreatedBy
	}
	return false
}
