package handler

import (
	"context"
	stdErrors "errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/telemetry"
	"github.com/johnquangdev/meeting-agent/pkg/requestctx"
)

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// getTraceID returns the trace id of the request, preferring the active span
func getTraceID(c echo.Context) string {
	ctx := c.Request().Context()
	if id := telemetry.TraceID(ctx); id != "" {
		return id
	}
	return requestctx.GetTraceID(ctx)
}

// withTimeout derives the handler context; a non-positive timeout only
// adds cancellation
func withTimeout(c echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(c.Request().Context())
	}
	return context.WithTimeout(c.Request().Context(), timeout)
}

// HandleSuccess writes data as the response body and logs the outcome
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("trace_id", getTraceID(c)),
			zap.String("path", c.Path()),
		)
	}
	return c.JSON(http.StatusOK, data)
}

// HandleError centralizes error handling and logging. The raw cause is only
// exposed as info outside production.
func HandleError(logger *zap.Logger, c echo.Context, err error, production bool) error {
	reqID := getRequestID(c)
	traceID := getTraceID(c)

	var appErr errors.AppError
	if !stdErrors.As(err, &appErr) {
		var httpErr *echo.HTTPError
		if stdErrors.As(err, &httpErr) {
			appErr = errors.AppError{
				HTTPCode: httpErr.Code,
				Code:     codeForStatus(httpErr.Code),
				Message:  http.StatusText(httpErr.Code),
				Raw:      err,
			}
		} else {
			appErr = errors.ErrInternal(err)
		}
	}

	if logger != nil {
		log := logger.Warn
		if appErr.HTTPCode >= http.StatusInternalServerError {
			log = logger.Error
		}
		log("http.response.error",
			zap.String("request_id", reqID),
			zap.String("trace_id", traceID),
			zap.String("path", c.Path()),
			zap.String("app_code", appErr.Code.String()),
			zap.Error(err),
		)
	}

	body := common.ErrorResponse{
		Code:    appErr.Code.String(),
		Message: appErr.Message,
		Details: appErr.Details,
		TraceID: traceID,
	}
	if !production && appErr.Raw != nil {
		body.Info = appErr.Raw.Error()
	}

	return c.JSON(appErr.HTTPCode, body)
}

// NewHTTPErrorHandler renders errors returned by handlers and middleware
func NewHTTPErrorHandler(logger *zap.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if herr := HandleError(logger, c, err, production); herr != nil && logger != nil {
			logger.Error("failed to write error response", zap.Error(herr))
		}
	}
}

func codeForStatus(status int) errors.ErrorCode {
	switch status {
	case http.StatusUnauthorized:
		return errors.ErrorCode_UNAUTHENTICATED
	case http.StatusForbidden:
		return errors.ErrorCode_FORBIDDEN
	case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		return errors.ErrorCode_INVALID_PAYLOAD
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return errors.ErrorCode_INVALID_ARGUMENT
	}
	return errors.ErrorCode_INTERNAL
}
