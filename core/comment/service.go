package comment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/bigplans/backend/core/task"
	"github.com/bigplans/backend/core/user"
)

var (
	// errors
	ErrNotFound       = errors.New("comment not found")
	ErrTargetNotFound = errors.New("target user not found")
	ErrTaskNotFound   = errors.New("task not found")
	ErrTaskNotOwned   = errors.New("task does not belong to target user")
	ErrDateMismatch   = errors.New("task date does not match comment date")
	ErrNotInGroup     = errors.New("you can only comment on users in your groups")
	ErrCannotView     = errors.New("you can only view comments for users in your groups")
	ErrNotAuthor      = errors.New("you can only delete your own comments")
)

type (
	Repository interface {
		// CreateComment inserts c and returns it with its author profile.
		CreateComment(ctx context.Context, c Comment) (Comment, error)
		GetComment(ctx context.Context, id int) (Comment, error)
		QueryTaskComments(ctx context.Context, taskID int) ([]Comment, error)
		QueryDailyComments(ctx context.Context, targetUserID int, date string) ([]Comment, error)
		DeleteComment(ctx context.Context, id int) error
	}

	UserGetter interface {
		GetByID(ctx context.Context, id int) (user.User, error)
	}

	TaskGetter interface {
		GetAny(ctx context.Context, id int) (task.Task, error)
	}

	GroupChecker interface {
		SharesGroup(ctx context.Context, userA, userB int) (bool, error)
	}

	Service struct {
		repo    Repository
		users   UserGetter
		tasks   TaskGetter
		groups  GroupChecker
		NowFunc func() time.Time // mockable
	}
)

func NewService(repo Repository, users UserGetter, tasks TaskGetter, groups GroupChecker) *Service {
	return &Service{
		repo:    repo,
		users:   users,
		tasks:   tasks,
		groups:  groups,
		NowFunc: time.Now,
	}
}

// Create posts a Comment from authorID. The target must share a group with the author,
// and a commented task must belong to the target on the comment's date.
func (svc *Service) Create(ctx context.Context, authorID int, nc NewComment) (Comment, error) {
	if _, err := svc.users.GetByID(ctx, nc.TargetUserID); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return Comment{}, ErrTargetNotFound
		}
		return Comment{}, errors.Wrap(err, "getting target user")
	}

	if err := svc.checkShared(ctx, authorID, nc.TargetUserID, ErrNotInGroup); err != nil {
		return Comment{}, err
	}

	if nc.TaskID != nil {
		t, err := svc.tasks.GetAny(ctx, *nc.TaskID)
		if err != nil {
			if errors.Cause(err) == task.ErrNotFound {
				return Comment{}, ErrTaskNotFound
			}
			return Comment{}, errors.Wrap(err, "getting task")
		}
		if t.UserID != nc.TargetUserID {
			return Comment{}, ErrTaskNotOwned
		}
		if t.Date != nc.Date {
			return Comment{}, ErrDateMismatch
		}
	}

	c := Comment{
		UserID:         authorID,
		TargetUserID:   nc.TargetUserID,
		TaskID:         nc.TaskID,
		Date:           nc.Date,
		Content:        nc.Content,
		IsDailyComment: nc.IsDailyComment,
		CreatedAt:      svc.NowFunc().UTC(),
	}
	c, err := svc.repo.CreateComment(ctx, c)
	return c, errors.Wrap(err, "creating comment")
}

// ListForTask lists the comments of a task visible to viewerID.
func (svc *Service) ListForTask(ctx context.Context, viewerID, taskID int) ([]Comment, error) {
	t, err := svc.tasks.GetAny(ctx, taskID)
	if err != nil {
		if errors.Cause(err) == task.ErrNotFound {
			return nil, ErrTaskNotFound
		}
		return nil, errors.Wrap(err, "getting task")
	}
	if err := svc.checkShared(ctx, viewerID, t.UserID, ErrCannotView); err != nil {
		return nil, err
	}
	return svc.repo.QueryTaskComments(ctx, taskID)
}

// ListDaily lists the daily comments left to targetID on date.
func (svc *Service) ListDaily(ctx context.Context, viewerID, targetID int, date string) ([]Comment, error) {
	if err := svc.checkShared(ctx, viewerID, targetID, ErrCannotView); err != nil {
		return nil, err
	}
	return svc.repo.QueryDailyComments(ctx, targetID, date)
}

// Delete deletes a Comment of authorID.
func (svc *Service) Delete(ctx context.Context, id, authorID int) error {
	c, err := svc.repo.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if c.UserID != authorID {
		return ErrNotAuthor
	}
	return svc.repo.DeleteComment(ctx, id)
}

func (svc *Service) checkShared(ctx context.Context, userA, userB int, denied error) error {
	ok, err := svc.groups.SharesGroup(ctx, userA, userB)
	if err != nil {
		return errors.Wrap(err, "checking shared groups")
	}
	if !ok {
		return denied
	}
	return nil
}
