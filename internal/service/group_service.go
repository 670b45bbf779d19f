package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/anonto42/socialcore/backend/internal/apperrors"
	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/anonto42/socialcore/backend/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const GroupMessageLimit = 200

// GroupService is the group channel: membership, roles, messages and read
// cursors. Every mutation goes through Authorize.
type GroupService struct {
	tx       repositories.Transactor
	groups   repositories.GroupRepository
	messages repositories.GroupMessageRepository
	cursors  repositories.GroupReadCursorRepository
	users    repositories.UserRepository
	notifier *NotificationService
	logger   *zap.Logger
	now      Clock
}

func NewGroupService(
	tx repositories.Transactor,
	groups repositories.GroupRepository,
	messages repositories.GroupMessageRepository,
	cursors repositories.GroupReadCursorRepository,
	users repositories.UserRepository,
	notifier *NotificationService,
	logger *zap.Logger,
	clock Clock,
) *GroupService {
	return &GroupService{
		tx:       tx,
		groups:   groups,
		messages: messages,
		cursors:  cursors,
		users:    users,
		notifier: notifier,
		logger:   logger,
		now:      clockOrDefault(clock),
	}
}

// Create inserts the group and makes the creator its admin atomically.
func (s *GroupService) Create(ctx context.Context, actorID uint, req models.CreateGroupRequest) (*models.Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Invalid("group name is required")
	}
	now := s.now()
	group := &models.Group{
		CreatedBy:   actorID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Picture:     req.Picture,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.groups.CreateWithCreator(ctx, group); err != nil {
		return nil, apperrors.Server(err, "failed to create group")
	}
	s.logger.Info("group created", zap.Uint("group_id", group.ID), zap.Uint("created_by", actorID))
	return group, nil
}

// List returns the caller's groups, most recently active first, each flagged
// with whether it has messages past the caller's read cursor.
func (s *GroupService) List(ctx context.Context, userID uint) ([]models.GroupSummary, error) {
	memberships, err := s.groups.GetUserMemberships(ctx, userID)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load memberships")
	}
	groupIDs := make([]uint, 0, len(memberships))
	for _, m := range memberships {
		groupIDs = append(groupIDs, m.GroupID)
	}

	groups, err := s.groups.FindByIDs(ctx, groupIDs)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load groups")
	}
	latest, err := s.messages.GetLatestMessageIDs(ctx, groupIDs)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load latest messages")
	}
	cursors, err := s.cursors.GetForUser(ctx, userID, groupIDs)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load read cursors")
	}

	summaries := make([]models.GroupSummary, 0, len(memberships))
	for _, m := range memberships {
		group, ok := groups[m.GroupID]
		if !ok {
			continue
		}
		cursor, hasCursor := cursors[m.GroupID]
		summaries = append(summaries, models.GroupSummary{
			Group:             group,
			Role:              m.Role,
			HasUnread:         !hasCursor || latest[m.GroupID] > cursor,
			LastReadMessageID: cursor,
			CanManage:         CanPerform(&group, &m, ActionUpdateGroup, 0),
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		if !summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
		}
		return summaries[i].ID > summaries[j].ID
	})
	return summaries, nil
}

func (s *GroupService) Get(ctx context.Context, actorID, groupID uint) (*models.GroupSummary, error) {
	group, actor, err := s.load(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(group, actor, ActionViewGroup, 0); err != nil {
		return nil, err
	}

	summary := &models.GroupSummary{
		Group:     *group,
		Role:      actor.Role,
		HasUnread: true,
		CanManage: CanPerform(group, actor, ActionUpdateGroup, 0),
	}
	cursor, err := s.cursors.Get(ctx, actorID, groupID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, apperrors.Server(err, "failed to load read cursor")
	default:
		latest, err := s.messages.GetLatestMessageIDs(ctx, []uint{groupID})
		if err != nil {
			return nil, apperrors.Server(err, "failed to load latest messages")
		}
		summary.LastReadMessageID = cursor.LastReadMessageID
		summary.HasUnread = latest[groupID] > cursor.LastReadMessageID
	}
	return summary, nil
}

func (s *GroupService) Update(ctx context.Context, actorID, groupID uint, req models.UpdateGroupRequest) (*models.Group, error) {
	group, actor, err := s.load(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(group, actor, ActionUpdateGroup, 0); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Invalid("group name cannot be empty")
		}
		fields["name"] = name
		group.Name = name
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
		group.Description = fields["description"].(string)
	}
	if req.Picture != nil {
		fields["picture"] = *req.Picture
		group.Picture = *req.Picture
	}
	if len(fields) == 0 {
		return group, nil
	}
	group.UpdatedAt = s.now()
	fields["updated_at"] = group.UpdatedAt

	if err := s.groups.Update(ctx, groupID, fields); err != nil {
		return nil, apperrors.Server(err, "failed to update group")
	}
	return group, nil
}

// Delete removes the group with its members, messages and cursors.
func (s *GroupService) Delete(ctx context.Context, actorID, groupID uint) error {
	group, actor, err := s.load(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if err := Authorize(group, actor, ActionDeleteGroup, 0); err != nil {
		return err
	}
	if err := s.groups.Delete(ctx, groupID); err != nil {
		return apperrors.Server(err, "failed to delete group")
	}
	s.logger.Info("group deleted", zap.Uint("group_id", groupID), zap.Uint("actor_id", actorID))
	return nil
}

func (s *GroupService) Members(ctx context.Context, actorID, groupID uint) ([]models.GroupMemberView, error) {
	group, actor, err := s.load(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(group, actor, ActionViewGroup, 0); err != nil {
		return nil, err
	}

	members, err := s.groups.GetMembers(ctx, groupID)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load members")
	}
	userIDs := make([]uint, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}
	users, err := s.users.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load users")
	}

	views := make([]models.GroupMemberView, 0, len(members))
	for _, m := range members {
		view := models.GroupMemberView{GroupMember: m, User: models.UserCompact{ID: m.UserID}}
		if u, ok := users[m.UserID]; ok {
			view.User = u.ToCompact()
		}
		views = append(views, view)
	}
	return views, nil
}

// AddMember adds userID as a member. Adding someone who is already a member
// is a conflict, not a no-op.
func (s *GroupService) AddMember(ctx context.Context, actorID, groupID, userID uint) (*models.GroupMember, error) {
	group, actor, err := s.load(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(group, actor, ActionAddMember, userID); err != nil {
		return nil, err
	}
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load user")
	}
	if !exists {
		return nil, apperrors.NotFound("user not found")
	}

	member := &models.GroupMember{
		GroupID:  groupID,
		UserID:   userID,
		Role:     models.RoleMember,
		JoinedAt: s.now(),
	}
	var note *models.Notification
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		added, err := s.groups.AddMember(ctx, member)
		if err != nil {
			return err
		}
		if !added {
			return apperrors.Conflict("user is already a member of this group")
		}
		note, err = s.notifier.Record(ctx, userID, actorID, GroupAddedEvent{GroupID: groupID, GroupName: group.Name})
		return err
	})
	if err != nil {
		return nil, apperrors.Server(err, "failed to add member")
	}
	s.notifier.Published(ctx, note)
	return member, nil
}

// RemoveMember removes targetID. Removing yourself is leaving, which any
// member may do except the creator.
func (s *GroupService) RemoveMember(ctx context.Context, actorID, groupID, targetID uint) error {
	group, actor, err := s.load(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	action := ActionRemoveMember
	if targetID == actorID {
		action = ActionLeave
	}
	if err := Authorize(group, actor, action, targetID); err != nil {
		return err
	}

	removed, err := s.groups.RemoveMember(ctx, groupID, targetID)
	if err != nil {
		return apperrors.Server(err, "failed to remove member")
	}
	if !removed {
		return apperrors.NotFound("member not found")
	}
	return nil
}

// SetRole changes targetID's role. Promoting a member notifies them; setting
// a role the member already has is a no-op.
func (s *GroupService) SetRole(ctx context.Context, actorID, groupID, targetID uint, role models.GroupRole) error {
	if role != models.RoleAdmin && role != models.RoleMember {
		return apperrors.Invalid("role must be admin or member")
	}
	group, actor, err := s.load(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	action := ActionPromote
	if role == models.RoleMember {
		action = ActionDemote
	}
	if err := Authorize(group, actor, action, targetID); err != nil {
		return err
	}

	target, err := s.member(ctx, groupID, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperrors.NotFound("member not found")
	}
	if target.Role == role {
		return nil
	}
	var note *models.Notification
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.groups.SetRole(ctx, groupID, targetID, role); err != nil {
			return err
		}
		if role != models.RoleAdmin {
			return nil
		}
		var err error
		note, err = s.notifier.Record(ctx, targetID, actorID, GroupAdminEvent{GroupID: groupID, GroupName: group.Name})
		return err
	})
	if err != nil {
		return apperrors.Server(err, "failed to change role")
	}
	s.notifier.Published(ctx, note)
	return nil
}

// Messages returns the newest messages, oldest first. Reading does not move
// the read cursor.
func (s *GroupService) Messages(ctx context.Context, actorID, groupID uint) ([]models.GroupMessage, error) {
	group, actor, err := s.load(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(group, actor, ActionViewGroup, 0); err != nil {
		return nil, err
	}
	messages, err := s.messages.FindByGroup(ctx, groupID, GroupMessageLimit)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load messages")
	}
	return messages, nil
}

// SendMessage posts to the group, bumps its activity time and moves the
// sender's cursor to the new message.
func (s *GroupService) SendMessage(ctx context.Context, actorID, groupID uint, req models.SendGroupMessageRequest) (*models.GroupMessage, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.Invalid("message content is required")
	}
	group, actor, err := s.load(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(group, actor, ActionSendMessage, 0); err != nil {
		return nil, err
	}

	msg := &models.GroupMessage{
		GroupID:   groupID,
		SenderID:  actorID,
		Content:   content,
		File:      req.File,
		CreatedAt: s.now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.Server(err, "failed to send message")
	}
	return msg, nil
}

// AdvanceCursor moves the caller's read cursor forward to messageID. A lower
// id than the stored one leaves the cursor unchanged.
func (s *GroupService) AdvanceCursor(ctx context.Context, actorID, groupID, messageID uint) error {
	group, actor, err := s.load(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if err := Authorize(group, actor, ActionViewGroup, 0); err != nil {
		return err
	}
	inGroup, err := s.messages.IsMessageInGroup(ctx, messageID, groupID)
	if err != nil {
		return apperrors.Server(err, "failed to load message")
	}
	if !inGroup {
		return apperrors.NotFound("message not found")
	}
	if err := s.cursors.UpsertMonotonic(ctx, actorID, groupID, messageID, s.now()); err != nil {
		return apperrors.Server(err, "failed to update read cursor")
	}
	return nil
}

func (s *GroupService) load(ctx context.Context, groupID, actorID uint) (*models.Group, *models.GroupMember, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, nil, apperrors.Lookup(err, "group")
	}
	actor, err := s.member(ctx, groupID, actorID)
	if err != nil {
		return nil, nil, err
	}
	return group, actor, nil
}

// member returns nil, nil when userID is not in the group.
func (s *GroupService) member(ctx context.Context, groupID, userID uint) (*models.GroupMember, error) {
	m, err := s.groups.GetMember(ctx, groupID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Server(err, "failed to load membership")
	}
	return m, nil
}
