package gormrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/bigplans/backend/core/comment"
	"github.com/bigplans/backend/core/user"
)

type commentRepository struct {
	db *gorm.DB
}

var _ comment.Repository = (*commentRepository)(nil)

func NewCommentRepository(db *gorm.DB) *commentRepository {
	return &commentRepository{db: db}
}

// commentWithAuthor is a comment joined with its author.
type commentWithAuthor struct {
	ID             int
	UserID         int
	TargetUserID   int
	TaskID         *int
	Date           string
	Content        string
	IsDailyComment bool
	CreatedAt      time.Time
	Username       string
	AvatarURL      *string
}

func (r commentWithAuthor) comment() comment.Comment {
	return comment.Comment{
		ID:             r.ID,
		UserID:         r.UserID,
		TargetUserID:   r.TargetUserID,
		TaskID:         r.TaskID,
		Date:           r.Date,
		Content:        r.Content,
		IsDailyComment: r.IsDailyComment,
		CreatedAt:      r.CreatedAt.UTC(),
		User:           user.Public{ID: r.UserID, Username: r.Username, AvatarURL: r.AvatarURL},
	}
}

func (repo *commentRepository) queryComments(ctx context.Context, query string, args ...interface{}) ([]comment.Comment, error) {
	var rows []commentWithAuthor
	err := repo.db.WithContext(ctx).
		Table("comments AS c").
		Select("c.id, c.user_id, c.target_user_id, c.task_id, c.date, c.content, c.is_daily_comment, c.created_at, " +
			"u.username, u.avatar_url").
		Joins("JOIN users AS u ON u.id = c.user_id").
		Where(query, args...).
		Order("c.created_at, c.id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "selecting comments")
	}

	comments := make([]comment.Comment, len(rows))
	for i, row := range rows {
		comments[i] = row.comment()
	}
	return comments, nil
}

func (repo *commentRepository) CreateComment(ctx context.Context, c comment.Comment) (comment.Comment, error) {
	row := newCommentRow(c)
	if err := repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		return comment.Comment{}, errors.Wrap(err, "inserting comment")
	}
	return repo.GetComment(ctx, row.ID)
}

func (repo *commentRepository) GetComment(ctx context.Context, id int) (comment.Comment, error) {
	comments, err := repo.queryComments(ctx, "c.id = ?", id)
	if err != nil {
		return comment.Comment{}, err
	}
	if len(comments) == 0 {
		return comment.Comment{}, comment.ErrNotFound
	}
	return comments[0], nil
}

func (repo *commentRepository) QueryTaskComments(ctx context.Context, taskID int) ([]comment.Comment, error) {
	return repo.queryComments(ctx, "c.task_id = ?", taskID)
}

func (repo *commentRepository) QueryDailyComments(ctx context.Context, targetUserID int, date string) ([]comment.Comment, error) {
	return repo.queryComments(ctx, "c.target_user_id = ? AND c.date = ? AND c.is_daily_comment = ?", targetUserID, date, true)
}

func (repo *commentRepository) DeleteComment(ctx context.Context, id int) error {
	res := repo.db.WithContext(ctx).Delete(&commentRow{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting comment")
	}
	if res.RowsAffected == 0 {
		return comment.ErrNotFound
	}
	return nil
}
