package task

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/bigplans/backend/core"
)

const maxGenerateRange = 366 // days

var (
	// errors
	ErrNotFound     = errors.New("task not found")
	ErrRangeTooWide = errors.Errorf("date range cannot exceed %d days", maxGenerateRange)
)

type (
	Repository interface {
		CreateTask(ctx context.Context, t Task) (Task, error)
		// GetTask returns the Task with the given ID. userID scopes the lookup when > 0.
		GetTask(ctx context.Context, id, userID int) (Task, error)
		UpdateTask(ctx context.Context, t Task) (Task, error)
		// DeleteTask deletes the Task. Instances of a deleted template are kept and detached.
		DeleteTask(ctx context.Context, id, userID int) error
		// QueryTasksForDate returns the plain tasks and instances of a day, templates excluded.
		QueryTasksForDate(ctx context.Context, userID int, date string) ([]Task, error)
		QueryTemplates(ctx context.Context, userID int) ([]Task, error)
		// MaterializeOccurrence atomically records the (template, date) occurrence and inserts inst.
		// created is false when the occurrence was already recorded or maxOccurrences is reached.
		MaterializeOccurrence(ctx context.Context, tmpl Task, inst Task, maxOccurrences *int) (created Task, ok bool, err error)
	}

	Service struct {
		repo      Repository
		logger    core.Logger
		locker    core.Locker // optional
		loc       *time.Location
		batchDays int
		inflight  singleflight.Group
		NowFunc   func() time.Time // mockable
	}
)

// NewService returns a task Service. locker may be nil when a single process serves the API.
func NewService(repo Repository, logger core.Logger, conf *core.Config, locker core.Locker) *Service {
	return &Service{
		repo:      repo,
		logger:    logger,
		locker:    locker,
		loc:       conf.Location(),
		batchDays: conf.Tasks.InitialBatchDays,
		NowFunc:   time.Now,
	}
}

func (svc *Service) today() time.Time {
	return core.Today(svc.NowFunc(), svc.loc)
}

// Create creates a Task. A recurring template gets its initial batch of instances right away.
func (svc *Service) Create(ctx context.Context, userID int, nt NewTask) (Task, error) {
	t := nt.task(userID, svc.NowFunc().UTC())
	t.normalize()
	if err := t.checkInvariants(); err != nil {
		return Task{}, err
	}

	t, err := svc.repo.CreateTask(ctx, t)
	if err != nil {
		return Task{}, errors.Wrap(err, "creating task")
	}

	if t.IsRecurring && svc.batchDays > 0 {
		start, _ := core.ParseDate(t.Date)
		if today := svc.today(); start.Before(today) {
			start = today
		}
		to := core.AddDays(start, svc.batchDays-1)
		if _, err := svc.GenerateForRange(ctx, userID, core.FormatDate(start), core.FormatDate(to)); err != nil {
			// the template exists; missing days are filled on read
			svc.logger.Error(fmt.Sprintf("generating initial instances of template %d: %v", t.ID, err), err)
		}
	}
	return t, nil
}

// Get returns the Task of userID.
func (svc *Service) Get(ctx context.Context, id, userID int) (Task, error) {
	return svc.repo.GetTask(ctx, id, userID)
}

// GetAny returns the Task with the given ID whoever owns it.
func (svc *Service) GetAny(ctx context.Context, id int) (Task, error) {
	return svc.repo.GetTask(ctx, id, 0)
}

// ListForDate materializes the due recurring instances of the day, then lists the day's tasks.
func (svc *Service) ListForDate(ctx context.Context, userID int, date string) ([]Task, error) {
	if _, err := svc.GenerateForDate(ctx, userID, date); err != nil {
		return nil, errors.Wrap(err, "generating recurring tasks")
	}
	tasks, err := svc.repo.QueryTasksForDate(ctx, userID, date)
	return tasks, errors.Wrap(err, "querying tasks")
}

func (svc *Service) ListTemplates(ctx context.Context, userID int) ([]Task, error) {
	return svc.repo.QueryTemplates(ctx, userID)
}

// GenerateForDate materializes the instances due on date for every template of userID
// and returns the newly created ones. Calling it again for the same date creates nothing.
func (svc *Service) GenerateForDate(ctx context.Context, userID int, date string) ([]Task, error) {
	target, err := core.ParseDate(date)
	if err != nil {
		return nil, err
	}

	// concurrent callers for the same user & day share one run,
	// which must outlive the caller that started it
	key := strconv.Itoa(userID) + ":" + date
	shared := context.WithoutCancel(ctx)
	ch := svc.inflight.DoChan(key, func() (interface{}, error) {
		if svc.locker != nil {
			release, err := svc.locker.Acquire(shared, "bigplans:generate:"+key)
			if err != nil {
				return nil, errors.Wrap(err, "acquiring generation lock")
			}
			defer release()
		}
		return svc.generate(shared, userID, target)
	})
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "waiting for recurring generation")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Task), nil
	}
}

func (svc *Service) generate(ctx context.Context, userID int, target time.Time) ([]Task, error) {
	templates, err := svc.repo.QueryTemplates(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying templates")
	}

	created := make([]Task, 0)
	for _, tmpl := range templates {
		if tmpl.RecurrencePattern == nil {
			svc.logger.Warn(fmt.Sprintf("skipping template %d of user %d: invalid recurrence pattern %q", tmpl.ID, userID, tmpl.RawPattern))
			continue
		}
		start, err := core.ParseDate(tmpl.Date)
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("skipping template %d of user %d: invalid start date %q", tmpl.ID, userID, tmpl.Date))
			continue
		}
		if !IsDue(start, target, *tmpl.RecurrencePattern) {
			continue
		}

		inst, ok, err := svc.materializeForDate(ctx, tmpl, target)
		if err != nil {
			return nil, errors.Wrapf(err, "materializing template %d", tmpl.ID)
		}
		if ok {
			created = append(created, inst)
		}
	}
	return created, nil
}

// materializeForDate creates the instance of tmpl on date unless it was already materialized.
func (svc *Service) materializeForDate(ctx context.Context, tmpl Task, date time.Time) (Task, bool, error) {
	now := svc.NowFunc().UTC()
	tid := tmpl.ID
	inst := Task{
		UserID:       tmpl.UserID,
		TemplateID:   &tid,
		Title:        tmpl.Title,
		Description:  tmpl.Description,
		Date:         core.FormatDate(date),
		ProgressType: tmpl.ProgressType,
		MaxProgress:  tmpl.MaxProgress,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.MaterializeOccurrence(ctx, tmpl, inst, tmpl.RecurrencePattern.MaxOccurrences)
}

// GenerateForRange runs GenerateForDate on every day of [from, to].
func (svc *Service) GenerateForRange(ctx context.Context, userID int, from, to string) ([]Task, error) {
	start, err := core.ParseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := core.ParseDate(to)
	if err != nil {
		return nil, err
	}
	days := core.DaysBetween(start, end)
	if days >= maxGenerateRange {
		return nil, ErrRangeTooWide
	}

	created := make([]Task, 0)
	for d := 0; d <= days; d++ {
		tasks, err := svc.GenerateForDate(ctx, userID, core.FormatDate(core.AddDays(start, d)))
		if err != nil {
			return created, err
		}
		created = append(created, tasks...)
	}
	return created, nil
}

// Update applies ut to the Task of userID.
func (svc *Service) Update(ctx context.Context, id, userID int, ut UpdateTask) (Task, error) {
	t, err := svc.repo.GetTask(ctx, id, userID)
	if err != nil {
		return Task{}, err
	}
	t = ut.apply(t)
	return svc.save(ctx, t)
}

// UpdateProgress sets the progress of the Task of userID.
func (svc *Service) UpdateProgress(ctx context.Context, id, userID int, pu ProgressUpdate) (Task, error) {
	t, err := svc.repo.GetTask(ctx, id, userID)
	if err != nil {
		return Task{}, err
	}
	t.ProgressValue = *pu.ProgressValue
	return svc.save(ctx, t)
}

func (svc *Service) save(ctx context.Context, t Task) (Task, error) {
	t.normalize()
	if err := t.checkInvariants(); err != nil {
		return Task{}, err
	}
	t.UpdatedAt = svc.NowFunc().UTC()
	t, err := svc.repo.UpdateTask(ctx, t)
	return t, errors.Wrap(err, "updating task")
}

// Delete deletes the Task of userID.
func (svc *Service) Delete(ctx context.Context, id, userID int) error {
	return svc.repo.DeleteTask(ctx, id, userID)
}
