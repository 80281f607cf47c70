package gormrepos

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/bigplans/backend/core/user"
	"github.com/bigplans/backend/storage/database"
)

type userRepository struct {
	db *gorm.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := newUserRow(usr)
	if err := repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return row.user(), nil
}

func (repo *userRepository) getUser(ctx context.Context, query string, args ...interface{}) (user.User, error) {
	var row userRow
	err := repo.db.WithContext(ctx).Where(query, args...).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return row.user(), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	return repo.getUser(ctx, "id = ?", id)
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, uname string) (user.User, error) {
	return repo.getUser(ctx, "username = ?", uname)
}

func (repo *userRepository) UsernameExists(ctx context.Context, uname string) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&userRow{}).Where("username = ?", uname).Count(&count).Error
	return count > 0, errors.Wrap(err, "counting users")
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := newUserRow(usr)
	res := repo.db.WithContext(ctx).Model(&userRow{ID: usr.ID}).Select("username", "password_hash", "avatar_url", "updated_at").Updates(&row)
	if res.Error != nil {
		if database.IsUniqueViolation(res.Error) {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(res.Error, "updating user")
	}
	if res.RowsAffected == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}
