package comment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bigplans/backend/core"
	"github.com/bigplans/backend/core/user"
)

// Comment is left by a user on a task or on the whole day of another user.
type Comment struct {
	ID             int         `json:"id"`
	UserID         int         `json:"userId"` // author
	TargetUserID   int         `json:"targetUserId"`
	TaskID         *int        `json:"taskId"`
	Date           string      `json:"date"`
	Content        string      `json:"content"`
	IsDailyComment bool        `json:"isDailyComment"`
	CreatedAt      time.Time   `json:"createdAt"`
	User           user.Public `json:"user"`
}

type NewComment struct {
	TargetUserID   int    `json:"targetUserId" validate:"required,min=1"`
	TaskID         *int   `json:"taskId" validate:"omitempty,min=1"`
	Date           string `json:"date" validate:"required,isodate"`
	Content        string `json:"content" validate:"required,notblank,max=1000"`
	IsDailyComment bool   `json:"isDailyComment"`
}

func (nc *NewComment) Validate(validate *validator.Validate) error {
	nc.Date = core.CleanString(nc.Date)
	nc.Content = core.CleanString(nc.Content)
	return validate.Struct(nc)
}
