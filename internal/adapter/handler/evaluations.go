package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-agent/errors"
	evaluationDTO "github.com/johnquangdev/meeting-agent/internal/adapter/dto/evaluation"
	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/internal/usecase/evaluation"
	"github.com/johnquangdev/meeting-agent/pkg/validator"
)

// Evaluator compares models on one request
type Evaluator interface {
	Evaluate(ctx context.Context, req *entities.ExtractionRequest, models []string) (*evaluation.Report, error)
}

// Evaluations serves POST /api/evaluations
type Evaluations struct {
	svc        Evaluator
	timeout    time.Duration
	production bool
	logger     *zap.Logger
}

// NewEvaluations creates the evaluations handler. timeout bounds the whole
// model comparison.
func NewEvaluations(svc Evaluator, timeout time.Duration, production bool, logger *zap.Logger) *Evaluations {
	return &Evaluations{svc: svc, timeout: timeout, production: production, logger: logger}
}

// Post runs an evaluation
// @Summary      Compare extraction across models
// @Description  Runs the same meeting request against each model sequentially and recommends the best scoring one
// @Tags         Evaluations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      evaluation.EvaluateRequest  true  "Meeting request and optional model list"
// @Success      200      {object}  evaluation.Report
// @Failure      400      {object}  common.ErrorResponse
// @Failure      401      {object}  common.ErrorResponse
// @Failure      413      {object}  common.ErrorResponse
// @Router       /api/evaluations [post]
func (h *Evaluations) Post(c echo.Context) error {
	var req evaluationDTO.EvaluateRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err), h.production)
	}
	if err := c.Validate(&req); err != nil {
		if fields := validator.FieldErrors(err); len(fields) > 0 {
			return HandleError(h.logger, c, errors.ErrValidation(fields), h.production)
		}
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err), h.production)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()
	report, err := h.svc.Evaluate(ctx, &req.Request, req.Models)
	if err != nil {
		return HandleError(h.logger, c, err, h.production)
	}
	return HandleSuccess(h.logger, c, report)
}
