package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bigplans/backend/core/group"
	"github.com/bigplans/backend/core/task"
)

type groupApi struct {
	svc      *group.Service
	taskSvc  *task.Service
	validate *validator.Validate
}

func registerGroupAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *group.Service,
	taskSvc *task.Service,
	validate *validator.Validate,
) {
	api := groupApi{
		svc:      svc,
		taskSvc:  taskSvc,
		validate: validate,
	}

	gg := g.Group("/groups", jwt)
	gg.POST("", api.create)
	gg.POST("/join", api.join)
	gg.GET("", api.query)

	// detail endpoints
	gg.GET("/:id/members", api.members)
	gg.PUT("/:id/settings", api.updateSettings)
	gg.GET("/:id/member/:userId/tasks", api.memberTasks)
	gg.POST("/:id/invite", api.invite)
}

type (
	GroupResponse struct {
		Message string           `json:"message"`
		Group   group.Group      `json:"group"`
		Member  group.Membership `json:"member"`
	}

	GroupsResponse struct {
		Groups []group.UserGroup `json:"groups"`
	}

	MembersResponse struct {
		Members []group.Member `json:"members"`
	}

	MemberResponse struct {
		Member group.Membership `json:"member"`
	}
)

// Handlers

func (api *groupApi) create(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	var data group.NewGroup
	if err := bindAndValidate(ctx, api.validate, &data, "NewGroup"); err != nil {
		return err
	}

	rctx := ctx.Request().Context()
	g, err := api.svc.Create(rctx, userID, data)
	if err != nil {
		return errors.Wrap(err, "creating group")
	}
	m, err := api.svc.Membership(rctx, g.ID, userID)
	if err != nil {
		return errors.Wrap(err, "getting creator membership")
	}
	return ctx.JSON(http.StatusCreated, GroupResponse{Message: "Group created successfully", Group: g, Member: m})
}

func (api *groupApi) join(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	var data group.JoinGroup
	if err := bindAndValidate(ctx, api.validate, &data, "JoinGroup"); err != nil {
		return err
	}

	g, m, err := api.svc.Join(ctx.Request().Context(), userID, data)
	if err != nil {
		return errors.Wrap(err, "joining group")
	}
	return ctx.JSON(http.StatusCreated, GroupResponse{Message: "Joined group successfully", Group: g, Member: m})
}

func (api *groupApi) query(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	groups, err := api.svc.ListForUser(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "listing groups")
	}
	if groups == nil {
		groups = []group.UserGroup{}
	}
	return ctx.JSON(http.StatusOK, GroupsResponse{Groups: groups})
}

func (api *groupApi) members(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	groupID, err := paramID(ctx, "id", "group")
	if err != nil {
		return err
	}

	members, err := api.svc.Members(ctx.Request().Context(), groupID, userID)
	if err != nil {
		return errors.Wrap(err, "listing members")
	}
	if members == nil {
		members = []group.Member{}
	}
	return ctx.JSON(http.StatusOK, MembersResponse{Members: members})
}

func (api *groupApi) updateSettings(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	groupID, err := paramID(ctx, "id", "group")
	if err != nil {
		return err
	}
	var data group.UpdateSettings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSettings")
	}

	m, err := api.svc.UpdateSettings(ctx.Request().Context(), groupID, userID, data)
	if err != nil {
		return errors.Wrap(err, "updating settings")
	}
	return ctx.JSON(http.StatusOK, MemberResponse{Member: m})
}

func (api *groupApi) memberTasks(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	groupID, err := paramID(ctx, "id", "group")
	if err != nil {
		return err
	}
	targetID, err := paramID(ctx, "userId", "user")
	if err != nil {
		return err
	}
	date, err := queryDate(ctx)
	if err != nil {
		return err
	}

	rctx := ctx.Request().Context()
	if err := api.svc.CheckMembers(rctx, groupID, userID, targetID); err != nil {
		return errors.Wrap(err, "checking members")
	}
	tasks, err := api.taskSvc.ListForDate(rctx, targetID, date)
	if err != nil {
		return errors.Wrap(err, "listing member tasks")
	}
	return ctx.JSON(http.StatusOK, tasksResponse(tasks))
}

func (api *groupApi) invite(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	groupID, err := paramID(ctx, "id", "group")
	if err != nil {
		return err
	}
	var data group.Invite
	if err := bindAndValidate(ctx, api.validate, &data, "Invite"); err != nil {
		return err
	}

	if err := api.svc.SendInvite(ctx.Request().Context(), groupID, claims.UserID(), claims.Username, data); err != nil {
		return errors.Wrap(err, "sending invite")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Invitation sent to " + data.Email})
}
