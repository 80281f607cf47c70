package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/bigplans/backend/core"
	"github.com/bigplans/backend/core/comment"
	"github.com/bigplans/backend/core/group"
	"github.com/bigplans/backend/core/kiss"
	"github.com/bigplans/backend/core/task"
	"github.com/bigplans/backend/core/user"
)

var (
	errUnauthorized   = echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	errRefreshExpired = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errInvalidDate    = echo.NewHTTPError(http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
	errDateRequired   = echo.NewHTTPError(http.StatusBadRequest, "Date parameter is required")
	errCannotViewUser = echo.NewHTTPError(http.StatusForbidden, "You can only view tasks of users in your groups")
)

// domainErrors maps the sentinel errors of the core packages to their HTTP response.
var domainErrors = map[error]*echo.HTTPError{
	core.ErrInvalidDate: errInvalidDate,

	user.ErrNotFound:           echo.NewHTTPError(http.StatusNotFound, "User not found"),
	user.ErrUsernameExists:     echo.NewHTTPError(http.StatusConflict, "Username already exists"),
	user.ErrInvalidCredentials: echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password"),

	task.ErrNotFound:     echo.NewHTTPError(http.StatusNotFound, "Task not found"),
	task.ErrRangeTooWide: echo.NewHTTPError(http.StatusBadRequest, task.ErrRangeTooWide.Error()),

	kiss.ErrNotFound:  echo.NewHTTPError(http.StatusNotFound, "KISS reflection not found"),
	kiss.ErrForbidden: echo.NewHTTPError(http.StatusForbidden, "This user does not share KISS reflections with you"),

	group.ErrNotFound:          echo.NewHTTPError(http.StatusNotFound, "Group not found"),
	group.ErrInvalidInviteCode: echo.NewHTTPError(http.StatusNotFound, "Invalid invite code"),
	group.ErrNoUniqueCode:      echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate unique invite code"),
	group.ErrAlreadyMember:     echo.NewHTTPError(http.StatusConflict, "You are already a member of this group"),
	group.ErrNotMember:         echo.NewHTTPError(http.StatusForbidden, "You are not a member of this group"),
	group.ErrTargetNotMember:   echo.NewHTTPError(http.StatusNotFound, "Target user is not a member of this group"),
	group.ErrNoSettings:        echo.NewHTTPError(http.StatusBadRequest, "No settings to update"),

	comment.ErrNotFound:       echo.NewHTTPError(http.StatusNotFound, "Comment not found"),
	comment.ErrTargetNotFound: echo.NewHTTPError(http.StatusNotFound, "Target user not found"),
	comment.ErrTaskNotFound:   echo.NewHTTPError(http.StatusNotFound, "Task not found"),
	comment.ErrTaskNotOwned:   echo.NewHTTPError(http.StatusBadRequest, "Task does not belong to target user"),
	comment.ErrDateMismatch:   echo.NewHTTPError(http.StatusBadRequest, "Task date does not match comment date"),
	comment.ErrNotInGroup:     echo.NewHTTPError(http.StatusForbidden, "You can only comment on users in your groups"),
	comment.ErrCannotView:     echo.NewHTTPError(http.StatusForbidden, "You can only view comments for users in your groups"),
	comment.ErrNotAuthor:      echo.NewHTTPError(http.StatusForbidden, "You can only delete your own comments"),
}

// lockedResponse is sent when the unlock gate refuses a reflection.
type lockedResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		// ValidationErrors is a slice, it cannot be a map key
		if _, ok := cause.(validator.ValidationErrors); !ok {
			if herr, ok := domainErrors[cause]; ok {
				cause = herr
			}
		}

		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *kiss.LockedError:
			code = http.StatusForbidden
			message = lockedResponse{Error: "reflection locked", Reason: origErr.Reason}
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var usr core.LogUser
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.UserID()
				usr.Username = claims.Username
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
