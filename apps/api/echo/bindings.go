package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bigplans/backend/core"
)

// validatable is implemented by every request payload of the core packages.
type validatable interface {
	Validate(validate *validator.Validate) error
}

// bindAndValidate binds the request body to data, then validates it.
func bindAndValidate(ctx echo.Context, validate *validator.Validate, data validatable, name string) error {
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding to "+name)
	}
	return data.Validate(validate)
}

// paramID parses the path param `name` as a positive integer ID.
// what names the resource in the error message ("task" -> "Invalid task ID").
func paramID(ctx echo.Context, name, what string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+what+" ID")
	}
	return id, nil
}

// queryDate returns the required `date` query param.
func queryDate(ctx echo.Context) (string, error) {
	date := core.CleanString(ctx.QueryParam("date"))
	if date == "" {
		return "", errDateRequired
	}
	if !core.IsDate(date) {
		return "", errInvalidDate
	}
	return date, nil
}

// queryUserID returns the required `userId` query param.
func queryUserID(ctx echo.Context) (int, error) {
	raw := ctx.QueryParam("userId")
	if raw == "" {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "userId parameter is required")
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid userId")
	}
	return id, nil
}
