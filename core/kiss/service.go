package kiss

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/bigplans/backend/core"
	"github.com/bigplans/backend/core/task"
)

var (
	// errors
	ErrNotFound  = errors.New("reflection not found")
	ErrForbidden = errors.New("reflections of this user are not shared with you")
)

type (
	Repository interface {
		// GetReflection returns ErrNotFound when the user has no reflection on date.
		GetReflection(ctx context.Context, userID int, date string) (Reflection, error)
		// UpsertReflection writes the reflection keyed by (UserID, Date).
		UpsertReflection(ctx context.Context, r Reflection) (saved Reflection, created bool, err error)
		DeleteReflection(ctx context.Context, id, userID int) error
	}

	// TaskLister lists the tasks of a day, materializing due recurring instances first.
	TaskLister interface {
		ListForDate(ctx context.Context, userID int, date string) ([]task.Task, error)
	}

	// KissVisibility tells whether viewerID may read the reflections of targetID.
	KissVisibility interface {
		CanViewKiss(ctx context.Context, viewerID, targetID int) (bool, error)
	}

	Service struct {
		repo    Repository
		tasks   TaskLister
		groups  KissVisibility
		policy  Policy
		NowFunc func() time.Time // mockable
	}
)

func NewService(repo Repository, tasks TaskLister, groups KissVisibility, policy Policy) *Service {
	return &Service{
		repo:    repo,
		tasks:   tasks,
		groups:  groups,
		policy:  policy,
		NowFunc: time.Now,
	}
}

// Get returns the Reflection of userID on date, nil if there is none.
func (svc *Service) Get(ctx context.Context, userID int, date string) (*Reflection, error) {
	r, err := svc.repo.GetReflection(ctx, userID, date)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, "getting reflection")
	}
	return &r, nil
}

// GetForMember returns the Reflection of targetID when it is shared with viewerID.
func (svc *Service) GetForMember(ctx context.Context, viewerID, targetID int, date string) (*Reflection, error) {
	if viewerID != targetID {
		ok, err := svc.groups.CanViewKiss(ctx, viewerID, targetID)
		if err != nil {
			return nil, errors.Wrap(err, "checking kiss visibility")
		}
		if !ok {
			return nil, ErrForbidden
		}
	}
	return svc.Get(ctx, targetID, date)
}

// CheckUnlock evaluates the unlock gate of userID on date against the live task rows.
func (svc *Service) CheckUnlock(ctx context.Context, userID int, date string) (UnlockStatus, error) {
	target, err := core.ParseDate(date)
	if err != nil {
		return UnlockStatus{}, err
	}
	now := svc.NowFunc()
	if today := core.Today(now, svc.policy.Location); target.After(today) {
		// nothing to list for a day not reached yet
		return UnlockStatus{}, ErrFutureDate
	}

	tasks, err := svc.tasks.ListForDate(ctx, userID, date)
	if err != nil {
		return UnlockStatus{}, errors.Wrap(err, "listing tasks")
	}
	return svc.policy.Evaluate(now, target, tasks)
}

// Save writes the Reflection of userID after re-running the unlock gate.
// A locked day returns a *LockedError and writes nothing.
func (svc *Service) Save(ctx context.Context, userID int, sr SaveReflection) (Reflection, bool, error) {
	status, err := svc.CheckUnlock(ctx, userID, sr.Date)
	if err != nil {
		return Reflection{}, false, err
	}
	if !status.IsUnlocked {
		return Reflection{}, false, &LockedError{Reason: status.Reason(), Status: status}
	}

	now := svc.NowFunc().UTC()
	r := Reflection{
		UserID:    userID,
		Date:      sr.Date,
		Keep:      sr.Keep,
		Improve:   sr.Improve,
		Start:     sr.Start,
		Stop:      sr.Stop,
		CreatedAt: now,
		UpdatedAt: now,
	}
	saved, created, err := svc.repo.UpsertReflection(ctx, r)
	if err != nil {
		return Reflection{}, false, errors.Wrap(err, "saving reflection")
	}
	return saved, created, nil
}

// Delete deletes the Reflection of userID.
func (svc *Service) Delete(ctx context.Context, id, userID int) error {
	return svc.repo.DeleteReflection(ctx, id, userID)
}
