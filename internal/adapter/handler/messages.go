package handler

import (
	"context"
	stdErrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/internal/usecase/meeting"
)

// MaxBodySize caps request bodies on the API routes
const MaxBodySize = "5M"

// MeetingService is what the messages endpoint needs from the orchestrator
type MeetingService interface {
	HandleDirect(ctx context.Context, raw []byte) (*entities.ResponsePayload, error)
	HandleActivity(ctx context.Context, a *entities.Activity) *entities.Activity
}

// Messages serves POST /api/messages for both activity envelopes and direct
// JSON requests
type Messages struct {
	svc        MeetingService
	auth       echo.MiddlewareFunc
	timeout    time.Duration
	production bool
	logger     *zap.Logger
}

// NewMessages creates the messages handler. auth guards direct requests
// only; nil disables bearer checks.
func NewMessages(svc MeetingService, auth echo.MiddlewareFunc, timeout time.Duration, production bool, logger *zap.Logger) *Messages {
	return &Messages{svc: svc, auth: auth, timeout: timeout, production: production, logger: logger}
}

// Post handles an inbound message
// @Summary      Process a meeting transcript
// @Description  Accepts either an activity envelope or a direct ExtractionRequest. Direct requests require a bearer token; envelopes always receive a reply activity.
// @Tags         Messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      entities.ExtractionRequest  true  "Meeting request or activity envelope"
// @Success      200      {object}  entities.ResponsePayload
// @Failure      400      {object}  common.ErrorResponse
// @Failure      401      {object}  common.ErrorResponse
// @Failure      403      {object}  common.ErrorResponse
// @Failure      413      {object}  common.ErrorResponse
// @Failure      502      {object}  common.ErrorResponse
// @Failure      503      {object}  common.ErrorResponse
// @Router       /api/messages [post]
func (h *Messages) Post(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		// body limit overruns surface as 413 from the middleware reader
		var httpErr *echo.HTTPError
		if stdErrors.As(err, &httpErr) {
			return HandleError(h.logger, c, err, h.production)
		}
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err), h.production)
	}

	inbound, err := meeting.Detect(body)
	if err != nil {
		return HandleError(h.logger, c, err, h.production)
	}

	if inbound.Kind == meeting.KindActivity {
		ctx, cancel := withTimeout(c, h.timeout)
		defer cancel()
		return c.JSON(http.StatusOK, h.svc.HandleActivity(ctx, inbound.Activity))
	}

	direct := func(c echo.Context) error {
		ctx, cancel := withTimeout(c, h.timeout)
		defer cancel()
		resp, err := h.svc.HandleDirect(ctx, inbound.Raw)
		if err != nil {
			return HandleError(h.logger, c, err, h.production)
		}
		return HandleSuccess(h.logger, c, resp)
	}
	if h.auth == nil {
		return direct(c)
	}
	return h.auth(direct)(c)
}
