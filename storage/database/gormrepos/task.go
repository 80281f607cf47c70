package gormrepos

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bigplans/backend/core/task"
)

var (
	errAlreadyMaterialized = errors.New("occurrence already materialized")
	errCapReached          = errors.New("max occurrences reached")
	errTemplateGone        = errors.New("template deleted")
)

type taskRepository struct {
	db *gorm.DB
}

var _ task.Repository = (*taskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *taskRepository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	row := newTaskRow(t)
	if err := repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		return task.Task{}, errors.Wrap(err, "inserting task")
	}
	return row.task(), nil
}

func (repo *taskRepository) GetTask(ctx context.Context, id, userID int) (task.Task, error) {
	q := repo.db.WithContext(ctx).Where("id = ?", id)
	if userID > 0 {
		q = q.Where("user_id = ?", userID)
	}
	var row taskRow
	if err := q.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, errors.Wrap(err, "selecting task")
	}
	return row.task(), nil
}

func (repo *taskRepository) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	row := newTaskRow(t)
	res := repo.db.WithContext(ctx).
		Model(&taskRow{}).
		Where("id = ? AND user_id = ?", t.ID, t.UserID).
		Select("title", "description", "date", "progress_type", "progress_value", "max_progress",
			"is_recurring", "recurrence_pattern", "updated_at").
		Updates(&row)
	if res.Error != nil {
		return task.Task{}, errors.Wrap(res.Error, "updating task")
	}
	if res.RowsAffected == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return repo.GetTask(ctx, t.ID, t.UserID)
}

func (repo *taskRepository) DeleteTask(ctx context.Context, id, userID int) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row taskRow
		if err := tx.Where("id = ? AND user_id = ?", id, userID).Take(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return task.ErrNotFound
			}
			return errors.Wrap(err, "selecting task")
		}

		if row.IsRecurring {
			if err := tx.Where("template_id = ?", id).Delete(&occurrenceRow{}).Error; err != nil {
				return errors.Wrap(err, "deleting occurrences")
			}
			if err := tx.Model(&taskRow{}).Where("template_id = ?", id).Update("template_id", nil).Error; err != nil {
				return errors.Wrap(err, "detaching instances")
			}
		} else if row.TemplateID != nil {
			// the occurrence stays recorded so the instance is not materialized again
			if err := tx.Model(&occurrenceRow{}).Where("task_id = ?", id).Update("task_id", nil).Error; err != nil {
				return errors.Wrap(err, "detaching occurrence")
			}
		}

		if err := tx.Delete(&taskRow{}, id).Error; err != nil {
			return errors.Wrap(err, "deleting task")
		}
		return nil
	})
}

func (repo *taskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]task.Task, error) {
	var rows []taskRow
	if err := repo.db.WithContext(ctx).Where(query, args...).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "selecting tasks")
	}
	tasks := make([]task.Task, len(rows))
	for i, row := range rows {
		tasks[i] = row.task()
	}
	return tasks, nil
}

func (repo *taskRepository) QueryTasksForDate(ctx context.Context, userID int, date string) ([]task.Task, error) {
	return repo.queryTasks(ctx, "user_id = ? AND date = ? AND is_recurring = ?", userID, date, false)
}

func (repo *taskRepository) QueryTemplates(ctx context.Context, userID int) ([]task.Task, error) {
	return repo.queryTasks(ctx, "user_id = ? AND is_recurring = ?", userID, true)
}

func (repo *taskRepository) MaterializeOccurrence(ctx context.Context, tmpl task.Task, inst task.Task, maxOccurrences *int) (task.Task, bool, error) {
	var created task.Task
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if maxOccurrences != nil {
			// serialize capped templates on their row so concurrent dates cannot overshoot the cap
			var locked taskRow
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Where("id = ?", tmpl.ID).Take(&locked).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errTemplateGone
				}
				return errors.Wrap(err, "locking template")
			}
		}

		occ := occurrenceRow{TemplateID: tmpl.ID, UserID: tmpl.UserID, Date: inst.Date, CreatedAt: inst.CreatedAt}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "template_id"}, {Name: "date"}},
			DoNothing: true,
		}).Create(&occ)
		if res.Error != nil {
			return errors.Wrap(res.Error, "inserting occurrence")
		}
		if res.RowsAffected == 0 {
			return errAlreadyMaterialized
		}

		if maxOccurrences != nil {
			var count int64
			if err := tx.Model(&occurrenceRow{}).Where("template_id = ?", tmpl.ID).Count(&count).Error; err != nil {
				return errors.Wrap(err, "counting occurrences")
			}
			if count > int64(*maxOccurrences) {
				return errCapReached
			}
		}

		row := newTaskRow(inst)
		if err := tx.Create(&row).Error; err != nil {
			return errors.Wrap(err, "inserting instance")
		}
		if err := tx.Model(&occurrenceRow{}).Where("id = ?", occ.ID).Update("task_id", row.ID).Error; err != nil {
			return errors.Wrap(err, "linking occurrence")
		}
		created = row.task()
		return nil
	})

	switch errors.Cause(err) {
	case nil:
		return created, true, nil
	case errAlreadyMaterialized, errCapReached, errTemplateGone:
		return task.Task{}, false, nil
	}
	return task.Task{}, false, err
}
