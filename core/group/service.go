package group

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/bigplans/backend/core"
)

var (
	// errors
	ErrNotFound          = errors.New("group not found")
	ErrInvalidInviteCode = errors.New("invalid invite code")
	ErrInviteCodeTaken   = errors.New("invite code already in use")
	ErrNoUniqueCode      = errors.New("failed to generate unique invite code")
	ErrAlreadyMember     = errors.New("you are already a member of this group")
	ErrNotMember         = errors.New("you are not a member of this group")
	ErrTargetNotMember   = errors.New("target user is not a member of this group")
	ErrNoSettings        = errors.New("no settings to update")
)

type (
	Repository interface {
		// CreateGroup inserts g and the membership of its creator in one transaction.
		// It returns ErrInviteCodeTaken when g.InviteCode is already used.
		CreateGroup(ctx context.Context, g Group, creator Membership) (Group, error)
		GetGroup(ctx context.Context, id int) (Group, error)
		GetGroupByInviteCode(ctx context.Context, code string) (Group, error)
		// AddMember returns ErrAlreadyMember when the user is already in the group.
		AddMember(ctx context.Context, m Membership) (Membership, error)
		// GetMembership returns ErrNotMember when userID is not in the group.
		GetMembership(ctx context.Context, groupID, userID int) (Membership, error)
		UpdateMembership(ctx context.Context, m Membership) (Membership, error)
		QueryUserGroups(ctx context.Context, userID int) ([]UserGroup, error)
		QueryMembers(ctx context.Context, groupID int) ([]Member, error)
		// SharesGroup reports whether both users are members of at least one common group.
		// With kissOnly, the common group must also have ShowKiss set for userB.
		SharesGroup(ctx context.Context, userA, userB int, kissOnly bool) (bool, error)
	}

	Service struct {
		repo        Repository
		emailSvc    core.EmailService
		conf        *core.Config
		NowFunc     func() time.Time       // mockable
		GenCodeFunc func() (string, error) // mockable
	}
)

func NewService(repo Repository, emailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:        repo,
		emailSvc:    emailSvc,
		conf:        conf,
		NowFunc:     time.Now,
		GenCodeFunc: GenerateInviteCode,
	}
}

// Create creates a Group owned by userID, who joins it right away.
func (svc *Service) Create(ctx context.Context, userID int, ng NewGroup) (Group, error) {
	now := svc.NowFunc().UTC()
	for i := 0; i < inviteCodeAttempts; i++ {
		code, err := svc.GenCodeFunc()
		if err != nil {
			return Group{}, errors.Wrap(err, "generating invite code")
		}
		g := Group{Name: ng.Name, InviteCode: code, CreatedAt: now}
		creator := Membership{UserID: userID, JoinedAt: now, ShowKiss: true}

		g, err = svc.repo.CreateGroup(ctx, g, creator)
		if err == nil {
			return g, nil
		}
		if errors.Cause(err) != ErrInviteCodeTaken {
			return Group{}, errors.Wrap(err, "creating group")
		}
	}
	return Group{}, ErrNoUniqueCode
}

// Join adds userID to the Group with the given invite code.
func (svc *Service) Join(ctx context.Context, userID int, jg JoinGroup) (Group, Membership, error) {
	g, err := svc.repo.GetGroupByInviteCode(ctx, jg.InviteCode)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Group{}, Membership{}, ErrInvalidInviteCode
		}
		return Group{}, Membership{}, err
	}

	m := Membership{GroupID: g.ID, UserID: userID, JoinedAt: svc.NowFunc().UTC(), ShowKiss: true}
	m, err = svc.repo.AddMember(ctx, m)
	if err != nil {
		return Group{}, Membership{}, err
	}
	return g, m, nil
}

// Membership returns the membership of userID in a Group.
func (svc *Service) Membership(ctx context.Context, groupID, userID int) (Membership, error) {
	return svc.repo.GetMembership(ctx, groupID, userID)
}

func (svc *Service) ListForUser(ctx context.Context, userID int) ([]UserGroup, error) {
	return svc.repo.QueryUserGroups(ctx, userID)
}

// Members lists the members of a Group. userID must be one of them.
func (svc *Service) Members(ctx context.Context, groupID, userID int) ([]Member, error) {
	if _, err := svc.repo.GetMembership(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return svc.repo.QueryMembers(ctx, groupID)
}

// UpdateSettings changes the settings of userID in a Group.
func (svc *Service) UpdateSettings(ctx context.Context, groupID, userID int, us UpdateSettings) (Membership, error) {
	m, err := svc.repo.GetMembership(ctx, groupID, userID)
	if err != nil {
		return Membership{}, err
	}
	if us.IsEmpty() {
		return Membership{}, ErrNoSettings
	}
	m.ShowKiss = *us.ShowKiss
	return svc.repo.UpdateMembership(ctx, m)
}

// CheckMembers makes sure both the requester and the target are members of a Group.
func (svc *Service) CheckMembers(ctx context.Context, groupID, requesterID, targetID int) error {
	if _, err := svc.repo.GetMembership(ctx, groupID, requesterID); err != nil {
		return err
	}
	if _, err := svc.repo.GetMembership(ctx, groupID, targetID); err != nil {
		if errors.Cause(err) == ErrNotMember {
			return ErrTargetNotMember
		}
		return err
	}
	return nil
}

// SharesGroup reports whether two users are in a common group. A user always shares with itself.
func (svc *Service) SharesGroup(ctx context.Context, userA, userB int) (bool, error) {
	if userA == userB {
		return true, nil
	}
	return svc.repo.SharesGroup(ctx, userA, userB, false)
}

// CanViewKiss reports whether viewerID may read the reflections of targetID.
func (svc *Service) CanViewKiss(ctx context.Context, viewerID, targetID int) (bool, error) {
	if viewerID == targetID {
		return true, nil
	}
	return svc.repo.SharesGroup(ctx, viewerID, targetID, true)
}

// SendInvite emails the invite code of a Group on behalf of one of its members.
func (svc *Service) SendInvite(ctx context.Context, groupID, userID int, inviterName string, inv Invite) error {
	if _, err := svc.repo.GetMembership(ctx, groupID, userID); err != nil {
		return err
	}
	g, err := svc.repo.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Address: inv.Email}},
		Subject:      fmt.Sprintf("%s invited you to join %s on %s", inviterName, g.Name, svc.conf.AppName),
		TemplateName: "group_invite",
		TemplateData: map[string]string{
			"InviterName": inviterName,
			"GroupName":   g.Name,
			"InviteCode":  g.InviteCode,
		},
	}
	svc.emailSvc.SendMessages(msg)
	return nil
}
