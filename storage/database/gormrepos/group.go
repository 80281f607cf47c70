package gormrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/bigplans/backend/core/group"
	"github.com/bigplans/backend/storage/database"
)

type groupRepository struct {
	db *gorm.DB
}

var _ group.Repository = (*groupRepository)(nil)

func NewGroupRepository(db *gorm.DB) *groupRepository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) CreateGroup(ctx context.Context, g group.Group, creator group.Membership) (group.Group, error) {
	row := groupRow{Name: g.Name, InviteCode: g.InviteCode, CreatedAt: g.CreatedAt}
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return group.ErrInviteCodeTaken
			}
			return errors.Wrap(err, "inserting group")
		}
		creator.GroupID = row.ID
		mrow := newMemberRow(creator)
		return errors.Wrap(tx.Create(&mrow).Error, "inserting creator membership")
	})
	if err != nil {
		return group.Group{}, err
	}
	return row.group(), nil
}

func (repo *groupRepository) getGroup(ctx context.Context, query string, args ...interface{}) (group.Group, error) {
	var row groupRow
	if err := repo.db.WithContext(ctx).Where(query, args...).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return group.Group{}, group.ErrNotFound
		}
		return group.Group{}, errors.Wrap(err, "selecting group")
	}
	return row.group(), nil
}

func (repo *groupRepository) GetGroup(ctx context.Context, id int) (group.Group, error) {
	return repo.getGroup(ctx, "id = ?", id)
}

func (repo *groupRepository) GetGroupByInviteCode(ctx context.Context, code string) (group.Group, error) {
	return repo.getGroup(ctx, "invite_code = ?", code)
}

func (repo *groupRepository) AddMember(ctx context.Context, m group.Membership) (group.Membership, error) {
	row := newMemberRow(m)
	if err := repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return group.Membership{}, group.ErrAlreadyMember
		}
		return group.Membership{}, errors.Wrap(err, "inserting membership")
	}
	return row.membership(), nil
}

func (repo *groupRepository) GetMembership(ctx context.Context, groupID, userID int) (group.Membership, error) {
	var row memberRow
	err := repo.db.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return group.Membership{}, group.ErrNotMember
		}
		return group.Membership{}, errors.Wrap(err, "selecting membership")
	}
	return row.membership(), nil
}

func (repo *groupRepository) UpdateMembership(ctx context.Context, m group.Membership) (group.Membership, error) {
	res := repo.db.WithContext(ctx).Model(&memberRow{}).Where("id = ?", m.ID).Update("show_kiss", m.ShowKiss)
	if res.Error != nil {
		return group.Membership{}, errors.Wrap(res.Error, "updating membership")
	}
	if res.RowsAffected == 0 {
		return group.Membership{}, group.ErrNotMember
	}
	return m, nil
}

func (repo *groupRepository) QueryUserGroups(ctx context.Context, userID int) ([]group.UserGroup, error) {
	var rows []struct {
		ID         int
		Name       string
		InviteCode string
		CreatedAt  time.Time
		JoinedAt   time.Time
		ShowKiss   bool
	}
	err := repo.db.WithContext(ctx).
		Table("group_members AS gm").
		Select("g.id, g.name, g.invite_code, g.created_at, gm.joined_at, gm.show_kiss").
		Joins("JOIN groups AS g ON g.id = gm.group_id").
		Where("gm.user_id = ?", userID).
		Order("gm.joined_at, g.id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "selecting user groups")
	}

	groups := make([]group.UserGroup, len(rows))
	for i, row := range rows {
		g := groupRow{ID: row.ID, Name: row.Name, InviteCode: row.InviteCode, CreatedAt: row.CreatedAt}
		groups[i] = group.UserGroup{Group: g.group(), JoinedAt: row.JoinedAt.UTC(), ShowKiss: row.ShowKiss}
	}
	return groups, nil
}

func (repo *groupRepository) QueryMembers(ctx context.Context, groupID int) ([]group.Member, error) {
	var rows []struct {
		ID        int
		UserID    int
		Username  string
		AvatarURL *string
		JoinedAt  time.Time
		ShowKiss  bool
	}
	err := repo.db.WithContext(ctx).
		Table("group_members AS gm").
		Select("gm.id, u.id AS user_id, u.username, u.avatar_url, gm.joined_at, gm.show_kiss").
		Joins("JOIN users AS u ON u.id = gm.user_id").
		Where("gm.group_id = ?", groupID).
		Order("gm.joined_at, gm.id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "selecting members")
	}

	members := make([]group.Member, len(rows))
	for i, row := range rows {
		members[i] = group.Member{
			ID:        row.ID,
			UserID:    row.UserID,
			Username:  row.Username,
			AvatarURL: row.AvatarURL,
			JoinedAt:  row.JoinedAt.UTC(),
			ShowKiss:  row.ShowKiss,
		}
	}
	return members, nil
}

func (repo *groupRepository) SharesGroup(ctx context.Context, userA, userB int, kissOnly bool) (bool, error) {
	q := repo.db.WithContext(ctx).
		Table("group_members AS a").
		Joins("JOIN group_members AS b ON b.group_id = a.group_id").
		Where("a.user_id = ? AND b.user_id = ?", userA, userB)
	if kissOnly {
		q = q.Where("b.show_kiss = ?", true)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "checking shared groups")
	}
	return count > 0, nil
}
