package task

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bigplans/backend/core"
)

type ProgressType string

const (
	Boolean    ProgressType = "boolean"
	Numeric    ProgressType = "numeric"
	Percentage ProgressType = "percentage"
)

var ProgressTypes = []ProgressType{Boolean, Numeric, Percentage}

func (pt ProgressType) IsValid() bool {
	switch pt {
	case Boolean, Numeric, Percentage:
		return true
	}
	return false
}

// Task is either a plain task, a recurring template (IsRecurring) or an instance spawned by a template (TemplateID).
type Task struct {
	ID                int                `json:"id"`
	UserID            int                `json:"userId"`
	TemplateID        *int               `json:"templateId"`
	Title             string             `json:"title"`
	Description       *string            `json:"description"`
	Date              string             `json:"date"` // YYYY-MM-DD
	ProgressType      ProgressType       `json:"progressType"`
	ProgressValue     int                `json:"progressValue"`
	MaxProgress       *int               `json:"maxProgress"`
	IsRecurring       bool               `json:"isRecurring"`
	RecurrencePattern *RecurrencePattern `json:"recurrencePattern"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`

	// RawPattern is the stored pattern, kept when it could not be parsed into RecurrencePattern.
	RawPattern string `json:"-"`
}

// IsComplete reports whether the task counts as done for the day.
// Templates are never complete.
func (t Task) IsComplete() bool {
	if t.IsRecurring {
		return false
	}
	switch t.ProgressType {
	case Boolean:
		return t.ProgressValue == 1
	case Numeric, Percentage:
		return t.MaxProgress != nil && t.ProgressValue >= *t.MaxProgress
	}
	return false
}

// normalize enforces the shape implied by ProgressType and IsRecurring.
func (t *Task) normalize() {
	if t.ProgressType == "" {
		t.ProgressType = Boolean
	}
	switch t.ProgressType {
	case Boolean:
		t.MaxProgress = nil
	case Percentage:
		if t.MaxProgress == nil {
			t.MaxProgress = core.IntPtr(100)
		}
	}
	if !t.IsRecurring {
		t.RecurrencePattern = nil
	}
	if t.Description != nil && core.CleanString(*t.Description) == "" {
		t.Description = nil
	}
}

// checkInvariants validates the Task as a whole, after normalization.
func (t Task) checkInvariants() error {
	var flds []core.FieldError
	add := func(field, msg string) { flds = append(flds, core.FieldError{Field: field, Error: msg}) }

	if _, err := core.ParseDate(t.Date); err != nil {
		add("date", err.Error())
	}
	switch t.ProgressType {
	case Boolean:
		if t.ProgressValue != 0 && t.ProgressValue != 1 {
			add("progressValue", "progressValue must be 0 or 1 for boolean tasks")
		}
	case Numeric, Percentage:
		if t.MaxProgress == nil || *t.MaxProgress < 1 {
			add("maxProgress", "maxProgress must be a positive integer for numeric and percentage tasks")
		}
		if t.ProgressValue < 0 {
			add("progressValue", "progressValue cannot be negative")
		}
	default:
		add("progressType", "progressType must be one of: boolean, numeric, percentage")
	}
	if t.IsRecurring {
		if t.RecurrencePattern == nil {
			add("recurrencePattern", "recurrence pattern is required for recurring tasks")
		} else if err := t.RecurrencePattern.Validate(); err != nil {
			add("recurrencePattern", err.Error())
		}
	}

	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// NewTask contains information needed to create a new Task.
type NewTask struct {
	Title             string             `json:"title" validate:"required,notblank,max=200"`
	Description       *string            `json:"description" validate:"omitempty,max=2000"`
	Date              string             `json:"date" validate:"required,isodate"`
	ProgressType      ProgressType       `json:"progressType" validate:"omitempty,progresstype"`
	ProgressValue     int                `json:"progressValue" validate:"min=0"`
	MaxProgress       *int               `json:"maxProgress" validate:"omitempty,min=1"`
	IsRecurring       bool               `json:"isRecurring"`
	RecurrencePattern *RecurrencePattern `json:"recurrencePattern"`
	MaxOccurrences    *int               `json:"maxOccurrences" validate:"omitempty,min=1"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	if err := validate.Struct(nt); err != nil {
		return err
	}
	// a top-level maxOccurrences is folded into the pattern
	if nt.MaxOccurrences != nil && nt.RecurrencePattern != nil && nt.RecurrencePattern.MaxOccurrences == nil {
		nt.RecurrencePattern.MaxOccurrences = nt.MaxOccurrences
	}
	return nil
}

// task builds the Task owned by userID.
func (nt NewTask) task(userID int, now time.Time) Task {
	return Task{
		UserID:            userID,
		Title:             nt.Title,
		Description:       nt.Description,
		Date:              nt.Date,
		ProgressType:      nt.ProgressType,
		ProgressValue:     nt.ProgressValue,
		MaxProgress:       nt.MaxProgress,
		IsRecurring:       nt.IsRecurring,
		RecurrencePattern: nt.RecurrencePattern,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// UpdateTask defines what information may be provided to modify an existing Task.
// nil fields are left untouched.
type UpdateTask struct {
	Title             *string            `json:"title" validate:"omitempty,notblank,max=200"`
	Description       *string            `json:"description" validate:"omitempty,max=2000"`
	Date              *string            `json:"date" validate:"omitempty,isodate"`
	ProgressType      *ProgressType      `json:"progressType" validate:"omitempty,progresstype"`
	ProgressValue     *int               `json:"progressValue" validate:"omitempty,min=0"`
	MaxProgress       *int               `json:"maxProgress" validate:"omitempty,min=1"`
	IsRecurring       *bool              `json:"isRecurring"`
	RecurrencePattern *RecurrencePattern `json:"recurrencePattern"`
}

func (ut *UpdateTask) Validate(validate *validator.Validate) error {
	if ut.Title != nil {
		title := core.CleanString(*ut.Title)
		ut.Title = &title
	}
	return validate.Struct(ut)
}

func (ut UpdateTask) apply(t Task) Task {
	if ut.Title != nil {
		t.Title = *ut.Title
	}
	if ut.Description != nil {
		t.Description = ut.Description
	}
	if ut.Date != nil {
		t.Date = *ut.Date
	}
	if ut.ProgressType != nil {
		t.ProgressType = *ut.ProgressType
	}
	if ut.ProgressValue != nil {
		t.ProgressValue = *ut.ProgressValue
	}
	if ut.MaxProgress != nil {
		t.MaxProgress = ut.MaxProgress
	}
	if ut.IsRecurring != nil {
		t.IsRecurring = *ut.IsRecurring
	}
	if ut.RecurrencePattern != nil {
		t.RecurrencePattern = ut.RecurrencePattern
	}
	return t
}

// ProgressUpdate sets the progress of a Task.
type ProgressUpdate struct {
	ProgressValue *int `json:"progressValue" validate:"required"`
}

func (pu *ProgressUpdate) Validate(validate *validator.Validate) error {
	return validate.Struct(pu)
}

// GenerateRequest asks for the recurring instances of a date.
type GenerateRequest struct {
	Date string `json:"date" validate:"required,isodate"`
}

func (gr *GenerateRequest) Validate(validate *validator.Validate) error {
	gr.Date = core.CleanString(gr.Date)
	return validate.Struct(gr)
}
