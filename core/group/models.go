package group

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bigplans/backend/core"
)

// Group is a circle of users sharing their days. Users join it with InviteCode.
type Group struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"inviteCode"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Membership links a user to a Group.
// ShowKiss tells whether the user's reflections are visible to the other members.
type Membership struct {
	ID       int       `json:"id"`
	GroupID  int       `json:"groupId"`
	UserID   int       `json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
	ShowKiss bool      `json:"showKiss"`
}

// UserGroup is a Group as seen by one of its members.
type UserGroup struct {
	Group
	JoinedAt time.Time `json:"joinedAt"`
	ShowKiss bool      `json:"showKiss"`
}

// Member is a group member with its public profile.
type Member struct {
	ID        int       `json:"id"` // membership id
	UserID    int       `json:"userId"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatarUrl"`
	JoinedAt  time.Time `json:"joinedAt"`
	ShowKiss  bool      `json:"showKiss"`
}

type NewGroup struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	return validate.Struct(ng)
}

type JoinGroup struct {
	InviteCode string `json:"inviteCode" validate:"required"`
}

func (jg *JoinGroup) Validate(validate *validator.Validate) error {
	jg.InviteCode = strings.ToUpper(core.CleanString(jg.InviteCode))
	return validate.Struct(jg)
}

// UpdateSettings holds the per-member settings of a group. nil fields are left untouched.
type UpdateSettings struct {
	ShowKiss *bool `json:"showKiss"`
}

func (us UpdateSettings) IsEmpty() bool {
	return us.ShowKiss == nil
}

// Invite asks for the invite code of a group to be emailed to someone.
type Invite struct {
	Email string `json:"email" validate:"required,email"`
}

func (inv *Invite) Validate(validate *validator.Validate) error {
	inv.Email = core.CleanString(inv.Email, true)
	return validate.Struct(inv)
}
