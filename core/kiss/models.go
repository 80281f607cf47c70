package kiss

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bigplans/backend/core"
)

// Reflection is the Keep/Improve/Start/Stop retrospective of a user's day.
type Reflection struct {
	ID        int       `json:"id"`
	UserID    int       `json:"userId"`
	Date      string    `json:"date"`
	Keep      *string   `json:"keep"`
	Improve   *string   `json:"improve"`
	Start     *string   `json:"start"`
	Stop      *string   `json:"stop"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SaveReflection creates or replaces the Reflection of a day.
type SaveReflection struct {
	Date    string  `json:"date" validate:"required,isodate"`
	Keep    *string `json:"keep" validate:"omitempty,max=5000"`
	Improve *string `json:"improve" validate:"omitempty,max=5000"`
	Start   *string `json:"start" validate:"omitempty,max=5000"`
	Stop    *string `json:"stop" validate:"omitempty,max=5000"`
}

func (sr *SaveReflection) Validate(validate *validator.Validate) error {
	sr.Date = core.CleanString(sr.Date)
	for _, s := range []**string{&sr.Keep, &sr.Improve, &sr.Start, &sr.Stop} {
		if *s != nil {
			*s = core.StringPtr(core.CleanString(**s))
		}
	}
	return validate.Struct(sr)
}
