package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bigplans/backend/core/group"
	"github.com/bigplans/backend/core/task"
)

type taskApi struct {
	svc      *task.Service
	groupSvc *group.Service
	validate *validator.Validate
}

func registerTaskAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *task.Service,
	groupSvc *group.Service,
	validate *validator.Validate,
) {
	api := taskApi{
		svc:      svc,
		groupSvc: groupSvc,
		validate: validate,
	}

	tg := g.Group("/tasks", jwt)
	tg.GET("", api.listForDate)
	tg.POST("", api.create)
	tg.POST("/generate-recurring", api.generateRecurring)
	tg.GET("/recurring", api.listTemplates)

	// detail endpoints
	tg.PUT("/:id", api.update)
	tg.PATCH("/:id/progress", api.updateProgress)
	tg.DELETE("/:id", api.destroy)

	g.GET("/users/:userId/tasks", api.listForUser, jwt)
}

type (
	TasksResponse struct {
		Tasks []task.Task `json:"tasks"`
	}

	TaskResponse struct {
		Message string    `json:"message"`
		Task    task.Task `json:"task"`
	}

	GenerateResponse struct {
		Message string      `json:"message"`
		Count   int         `json:"count"`
		Tasks   []task.Task `json:"tasks"`
	}
)

func tasksResponse(tasks []task.Task) TasksResponse {
	if tasks == nil {
		tasks = []task.Task{}
	}
	return TasksResponse{Tasks: tasks}
}

// Handlers

func (api *taskApi) listForDate(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	date, err := queryDate(ctx)
	if err != nil {
		return err
	}

	tasks, err := api.svc.ListForDate(ctx.Request().Context(), userID, date)
	if err != nil {
		return errors.Wrap(err, "listing tasks")
	}
	return ctx.JSON(http.StatusOK, tasksResponse(tasks))
}

func (api *taskApi) listForUser(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
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
	shared, err := api.groupSvc.SharesGroup(rctx, userID, targetID)
	if err != nil {
		return errors.Wrap(err, "checking shared groups")
	}
	if !shared {
		return errCannotViewUser
	}

	tasks, err := api.svc.ListForDate(rctx, targetID, date)
	if err != nil {
		return errors.Wrap(err, "listing user tasks")
	}
	return ctx.JSON(http.StatusOK, tasksResponse(tasks))
}

func (api *taskApi) listTemplates(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	tasks, err := api.svc.ListTemplates(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "listing recurring tasks")
	}
	return ctx.JSON(http.StatusOK, tasksResponse(tasks))
}

func (api *taskApi) create(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	var data task.NewTask
	if err := bindAndValidate(ctx, api.validate, &data, "NewTask"); err != nil {
		return err
	}

	t, err := api.svc.Create(ctx.Request().Context(), userID, data)
	if err != nil {
		return errors.Wrap(err, "creating task")
	}
	return ctx.JSON(http.StatusCreated, TaskResponse{Message: "Task created successfully", Task: t})
}

func (api *taskApi) generateRecurring(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	var data task.GenerateRequest
	if err := bindAndValidate(ctx, api.validate, &data, "GenerateRequest"); err != nil {
		return err
	}

	created, err := api.svc.GenerateForDate(ctx.Request().Context(), userID, data.Date)
	if err != nil {
		return errors.Wrap(err, "generating recurring tasks")
	}
	return ctx.JSON(http.StatusOK, GenerateResponse{
		Message: fmt.Sprintf("Generated %d recurring task(s)", len(created)),
		Count:   len(created),
		Tasks:   tasksResponse(created).Tasks,
	})
}

func (api *taskApi) update(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id", "task")
	if err != nil {
		return err
	}
	var data task.UpdateTask
	if err := bindAndValidate(ctx, api.validate, &data, "UpdateTask"); err != nil {
		return err
	}

	t, err := api.svc.Update(ctx.Request().Context(), id, userID, data)
	if err != nil {
		return errors.Wrap(err, "updating task")
	}
	return ctx.JSON(http.StatusOK, TaskResponse{Message: "Task updated successfully", Task: t})
}

func (api *taskApi) updateProgress(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id", "task")
	if err != nil {
		return err
	}
	var data task.ProgressUpdate
	if err := bindAndValidate(ctx, api.validate, &data, "ProgressUpdate"); err != nil {
		return err
	}

	t, err := api.svc.UpdateProgress(ctx.Request().Context(), id, userID, data)
	if err != nil {
		return errors.Wrap(err, "updating task progress")
	}
	return ctx.JSON(http.StatusOK, TaskResponse{Message: "Task progress updated successfully", Task: t})
}

func (api *taskApi) destroy(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id", "task")
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), id, userID); err != nil {
		return errors.Wrap(err, "deleting task")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}
