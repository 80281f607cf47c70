package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/bigplans/backend/core"
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	AvatarURL    *string   `json:"avatarUrl"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
	UpdatedAt    time.Time `json:"-"`         // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// Public is the subset of a User exposed to other users (comment authors, group members).
type Public struct {
	ID        int     `json:"id"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatarUrl"`
}

func (u User) Public() Public {
	return Public{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Username  string `json:"username" validate:"required,min=3,max=30,alphanum_"`
	Password  string `json:"password" validate:"required"`
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.AvatarURL = core.CleanString(nu.AvatarURL)
	return validate.Struct(nu)
}

// PasswordChange is used by operators to set a User's password.
type PasswordChange struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (pc *PasswordChange) Validate(validate *validator.Validate) error {
	pc.Username = core.CleanString(pc.Username, true /* lower */)
	return validate.Struct(pc)
}
