package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bigplans/backend/core/kiss"
)

type kissApi struct {
	svc      *kiss.Service
	validate *validator.Validate
}

func registerKissAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *kiss.Service, validate *validator.Validate) {
	api := kissApi{svc: svc, validate: validate}

	kg := g.Group("/kiss", jwt)
	kg.GET("", api.retrieve)
	kg.GET("/check-unlock", api.checkUnlock)
	kg.POST("", api.save)
	kg.DELETE("/:id", api.destroy)
	kg.GET("/user/:userId", api.retrieveForMember)
}

type (
	ReflectionResponse struct {
		Reflection *kiss.Reflection `json:"reflection"`
	}

	SaveReflectionResponse struct {
		Message    string          `json:"message"`
		Reflection kiss.Reflection `json:"reflection"`
	}
)

// Handlers

func (api *kissApi) retrieve(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	date, err := queryDate(ctx)
	if err != nil {
		return err
	}

	r, err := api.svc.Get(ctx.Request().Context(), userID, date)
	if err != nil {
		return errors.Wrap(err, "getting reflection")
	}
	return ctx.JSON(http.StatusOK, ReflectionResponse{Reflection: r})
}

func (api *kissApi) retrieveForMember(ctx echo.Context) error {
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

	r, err := api.svc.GetForMember(ctx.Request().Context(), userID, targetID, date)
	if err != nil {
		return errors.Wrap(err, "getting member reflection")
	}
	return ctx.JSON(http.StatusOK, ReflectionResponse{Reflection: r})
}

func (api *kissApi) checkUnlock(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	date, err := queryDate(ctx)
	if err != nil {
		return err
	}

	status, err := api.svc.CheckUnlock(ctx.Request().Context(), userID, date)
	if err != nil {
		return errors.Wrap(err, "checking unlock status")
	}
	return ctx.JSON(http.StatusOK, status)
}

func (api *kissApi) save(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	var data kiss.SaveReflection
	if err := bindAndValidate(ctx, api.validate, &data, "SaveReflection"); err != nil {
		return err
	}

	r, created, err := api.svc.Save(ctx.Request().Context(), userID, data)
	if err != nil {
		return errors.Wrap(err, "saving reflection")
	}
	if created {
		return ctx.JSON(http.StatusCreated, SaveReflectionResponse{Message: "KISS reflection created successfully", Reflection: r})
	}
	return ctx.JSON(http.StatusOK, SaveReflectionResponse{Message: "KISS reflection updated successfully", Reflection: r})
}

func (api *kissApi) destroy(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id", "reflection")
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), id, userID); err != nil {
		return errors.Wrap(err, "deleting reflection")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "KISS reflection deleted successfully"})
}
