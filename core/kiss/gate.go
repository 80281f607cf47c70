package kiss

import (
	"time"

	"github.com/bigplans/backend/core"
	"github.com/bigplans/backend/core/task"
)

const (
	ReasonFutureDate = "future date"
	ReasonIncomplete = "not all tasks completed"
)

// ErrFutureDate is returned on both the read and write paths for dates not reached yet.
var ErrFutureDate = &LockedError{Reason: ReasonFutureDate}

// LockedError means the reflection of a day cannot be written.
type LockedError struct {
	Reason string
	Status UnlockStatus
}

func (e *LockedError) Error() string {
	return "reflection locked: " + e.Reason
}

// UnlockStatus is recomputed from the day's tasks on every call.
type UnlockStatus struct {
	IsUnlocked           bool `json:"isUnlocked"`
	TotalTasks           int  `json:"totalTasks"`
	CompletedTasks       int  `json:"completedTasks"`
	CanRetroactivelyFill bool `json:"canRetroactivelyFill"`
}

// Policy tunes the gate for the current day.
// With EndOfDayAutoUnlock, today unlocks once the local hour reaches EndOfDayHour even if tasks remain.
type Policy struct {
	EndOfDayAutoUnlock bool
	EndOfDayHour       int
	Location           *time.Location
}

func NewPolicy(conf *core.Config) Policy {
	return Policy{
		EndOfDayAutoUnlock: conf.Kiss.EndOfDayAutoUnlock,
		EndOfDayHour:       conf.Kiss.EndOfDayHour,
		Location:           conf.Location(),
	}
}

// Evaluate decides whether the reflection of target may be written at now.
// Past days are always unlocked, future days return ErrFutureDate.
// Today unlocks with no tasks or with every task complete. Templates are not counted.
func (p Policy) Evaluate(now, target time.Time, tasks []task.Task) (UnlockStatus, error) {
	var status UnlockStatus
	for _, t := range tasks {
		if t.IsRecurring {
			continue
		}
		status.TotalTasks++
		if t.IsComplete() {
			status.CompletedTasks++
		}
	}

	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	today := core.Today(now, loc)
	target = core.Today(target, time.UTC)

	switch {
	case target.After(today):
		return status, ErrFutureDate
	case target.Before(today):
		status.IsUnlocked = true
		status.CanRetroactivelyFill = true
		return status, nil
	}

	status.IsUnlocked = status.TotalTasks == 0 || status.CompletedTasks == status.TotalTasks
	if !status.IsUnlocked && p.EndOfDayAutoUnlock && now.In(loc).Hour() >= p.EndOfDayHour {
		status.IsUnlocked = true
	}
	return status, nil
}

// Reason explains a locked status.
func (s UnlockStatus) Reason() string {
	if s.IsUnlocked {
		return ""
	}
	return ReasonIncomplete
}
