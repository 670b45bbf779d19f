package repositories

import (
	"context"

	"github.com/anonto42/socialcore/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GroupRepository stores groups and their memberships.
type GroupRepository interface {
	// CreateWithCreator inserts the group and the creator's admin membership
	// in one transaction.
	CreateWithCreator(ctx context.Context, group *models.Group) error
	FindByID(ctx context.Context, id uint) (*models.Group, error)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]models.Group, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	// Delete removes the group with its members, messages and read cursors.
	Delete(ctx context.Context, id uint) error

	GetMember(ctx context.Context, groupID, userID uint) (*models.GroupMember, error)
	// AddMember reports false when the membership already exists.
	AddMember(ctx context.Context, member *models.GroupMember) (bool, error)
	// RemoveMember deletes the membership and the member's read cursor.
	RemoveMember(ctx context.Context, groupID, userID uint) (bool, error)
	SetRole(ctx context.Context, groupID, userID uint, role models.GroupRole) error
	GetMembers(ctx context.Context, groupID uint) ([]models.GroupMember, error)
	GetUserMemberships(ctx context.Context, userID uint) ([]models.GroupMember, error)
}

type PostgresGroupRepository struct {
	db *gorm.DB
}

func NewPostgresGroupRepository(db *gorm.DB) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db}
}

func (r *PostgresGroupRepository) CreateWithCreator(ctx context.Context, group *models.Group) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		return tx.Create(&models.GroupMember{
			GroupID:  group.ID,
			UserID:   group.CreatedBy,
			Role:     models.RoleAdmin,
			JoinedAt: group.CreatedAt,
		}).Error
	})
}

func (r *PostgresGroupRepository) FindByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := dbFor(ctx, r.db).First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *PostgresGroupRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]models.Group, error) {
	result := make(map[uint]models.Group, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var groups []models.Group
	if err := dbFor(ctx, r.db).Where("id IN ?", ids).Find(&groups).Error; err != nil {
		return nil, err
	}
	for _, g := range groups {
		result[g.ID] = g
	}
	return result, nil
}

func (r *PostgresGroupRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return dbFor(ctx, r.db).Model(&models.Group{}).Where("id = ?", id).Updates(fields).Error
}

func (r *PostgresGroupRepository) Delete(ctx context.Context, id uint) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupReadCursor{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, id).Error
	})
}

func (r *PostgresGroupRepository) GetMember(ctx context.Context, groupID, userID uint) (*models.GroupMember, error) {
	var member models.GroupMember
	err := dbFor(ctx, r.db).Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *PostgresGroupRepository) AddMember(ctx context.Context, member *models.GroupMember) (bool, error) {
	res := dbFor(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(member)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PostgresGroupRepository) RemoveMember(ctx context.Context, groupID, userID uint) (bool, error) {
	removed := false
	err := dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupMember{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected > 0
		return tx.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupReadCursor{}).Error
	})
	return removed, err
}

func (r *PostgresGroupRepository) SetRole(ctx context.Context, groupID, userID uint, role models.GroupRole) error {
	return dbFor(ctx, r.db).Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("role", role).Error
}

func (r *PostgresGroupRepository) GetMembers(ctx context.Context, groupID uint) ([]models.GroupMember, error) {
	members := []models.GroupMember{}
	err := dbFor(ctx, r.db).Where("group_id = ?", groupID).
		Order("joined_at ASC").Order("user_id ASC").
		Find(&members).Error
	return members, err
}

func (r *PostgresGroupRepository) GetUserMemberships(ctx context.Context, userID uint) ([]models.GroupMember, error) {
	memberships := []models.GroupMember{}
	err := dbFor(ctx, r.db).Where("user_id = ?", userID).Find(&memberships).Error
	return memberships, err
}
