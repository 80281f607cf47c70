package gormrepos

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bigplans/backend/core/kiss"
)

type kissRepository struct {
	db *gorm.DB
}

var _ kiss.Repository = (*kissRepository)(nil)

func NewKissRepository(db *gorm.DB) *kissRepository {
	return &kissRepository{db: db}
}

func (repo *kissRepository) GetReflection(ctx context.Context, userID int, date string) (kiss.Reflection, error) {
	var row reflectionRow
	err := repo.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return kiss.Reflection{}, kiss.ErrNotFound
		}
		return kiss.Reflection{}, errors.Wrap(err, "selecting reflection")
	}
	return row.reflection(), nil
}

func (repo *kissRepository) UpsertReflection(ctx context.Context, r kiss.Reflection) (kiss.Reflection, bool, error) {
	_, err := repo.GetReflection(ctx, r.UserID, r.Date)
	created := errors.Cause(err) == kiss.ErrNotFound
	if err != nil && !created {
		return kiss.Reflection{}, false, err
	}

	row := newReflectionRow(r)
	err = repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"keep", "improve", "start", "stop", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return kiss.Reflection{}, false, errors.Wrap(err, "upserting reflection")
	}

	saved, err := repo.GetReflection(ctx, r.UserID, r.Date)
	return saved, created, err
}

func (repo *kissRepository) DeleteReflection(ctx context.Context, id, userID int) error {
	res := repo.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&reflectionRow{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting reflection")
	}
	if res.RowsAffected == 0 {
		return kiss.ErrNotFound
	}
	return nil
}
