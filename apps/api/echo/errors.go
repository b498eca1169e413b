package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/user"
)

type (
	ErrorResponse struct {
		OK    bool        `json:"ok"`
		Error interface{} `json:"error"`
	}

	errorPage struct {
		Code    int
		Title   string
		Message string
		Fields  map[string]string
	}
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors, *core.ValidationError:
			code = http.StatusBadRequest
			if flds := core.FieldErrors(cause, translator); len(flds) > 0 {
				message = flds
			} else {
				message = cause.Error()
			}
		case *core.NotFoundError:
			code = http.StatusNotFound
			message = origErr.Error()
		default:
			switch {
			case cause == core.ErrForbidden:
				code = http.StatusForbidden
				message = cause.Error()
			case cause == user.ErrAuthenticationFailed:
				code = http.StatusBadRequest
				message = cause.Error()
			case cause == user.ErrAccountDeactivated:
				code = http.StatusForbidden
				message = cause.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				var usr user.User
				if viewer := contextViewer(ctx); viewer != nil {
					usr = viewer.User
				}
				logger.Error(msg, errors.Wrap(err, msg), usr)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}

		// Send response
		if ctx.Response().Committed {
			return
		}
		switch {
		case ctx.Request().Method == http.MethodHead: // Issue #608
			err = ctx.NoContent(code)
		case wantsJSON(ctx):
			err = ctx.JSON(code, ErrorResponse{Error: message})
		default:
			page := errorPage{Code: code, Title: http.StatusText(code)}
			switch m := message.(type) {
			case map[string]string:
				page.Fields = m
			case string:
				page.Message = m
			}
			err = ctx.Render(code, "error", newPageData(ctx, 0, page))
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}
