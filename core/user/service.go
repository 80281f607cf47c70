package user

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/bigplans/backend/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByUsername(ctx context.Context, uname string) (User, error)
		UsernameExists(ctx context.Context, uname string) (bool, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo    Repository
		NowFunc func() time.Time // mockable
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, NowFunc: time.Now}
}

// Create registers a new User. nu must be validated.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	exists, err := svc.repo.UsernameExists(ctx, nu.Username)
	if err != nil {
		return User{}, errors.Wrap(err, "checking username uniqueness")
	}
	if exists {
		return User{}, ErrUsernameExists
	}

	now := svc.NowFunc().UTC()
	usr := User{
		Username:  nu.Username,
		AvatarURL: core.StringPtr(nu.AvatarURL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Authenticate returns the User matching uname & pwd, or ErrInvalidCredentials.
func (svc *Service) Authenticate(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by username")
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

// SetPassword replaces the password of the User. pc must be validated.
func (svc *Service) SetPassword(ctx context.Context, pc PasswordChange) error {
	usr, err := svc.GetByUsername(ctx, pc.Username)
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pc.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = svc.NowFunc().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return errors.Wrap(err, "updating user")
}
