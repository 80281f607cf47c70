package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bigplans/backend/core/comment"
)

type commentApi struct {
	svc      *comment.Service
	validate *validator.Validate
}

func registerCommentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *comment.Service, validate *validator.Validate) {
	api := commentApi{svc: svc, validate: validate}

	cg := g.Group("/comments", jwt)
	cg.POST("", api.create)
	cg.GET("/task/:taskId", api.queryTask)
	cg.GET("/daily", api.queryDaily)
	cg.DELETE("/:id", api.destroy)
}

type (
	CommentResponse struct {
		Message string          `json:"message"`
		Comment comment.Comment `json:"comment"`
	}

	CommentsResponse struct {
		Comments []comment.Comment `json:"comments"`
	}
)

func commentsResponse(comments []comment.Comment) CommentsResponse {
	if comments == nil {
		comments = []comment.Comment{}
	}
	return CommentsResponse{Comments: comments}
}

// Handlers

func (api *commentApi) create(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	var data comment.NewComment
	if err := bindAndValidate(ctx, api.validate, &data, "NewComment"); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), userID, data)
	if err != nil {
		return errors.Wrap(err, "creating comment")
	}
	return ctx.JSON(http.StatusCreated, CommentResponse{Message: "Comment created successfully", Comment: c})
}

func (api *commentApi) queryTask(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	taskID, err := paramID(ctx, "taskId", "task")
	if err != nil {
		return err
	}

	comments, err := api.svc.ListForTask(ctx.Request().Context(), userID, taskID)
	if err != nil {
		return errors.Wrap(err, "listing task comments")
	}
	return ctx.JSON(http.StatusOK, commentsResponse(comments))
}

func (api *commentApi) queryDaily(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	targetID, err := queryUserID(ctx)
	if err != nil {
		return err
	}
	date, err := queryDate(ctx)
	if err != nil {
		return err
	}

	comments, err := api.svc.ListDaily(ctx.Request().Context(), userID, targetID, date)
	if err != nil {
		return errors.Wrap(err, "listing daily comments")
	}
	return ctx.JSON(http.StatusOK, commentsResponse(comments))
}

func (api *commentApi) destroy(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id", "comment")
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), id, userID); err != nil {
		return errors.Wrap(err, "deleting comment")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Comment deleted successfully"})
}
