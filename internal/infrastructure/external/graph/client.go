package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	apperrors "github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/pkg/config"
)

const serviceName = "microsoft-graph"

// TaskInput describes a Planner task to create. Assignee is the meeting
// owner; Planner only accepts directory object ids, so other values are
// recorded on the span but not sent.
type TaskInput struct {
	Title    string
	DueDate  string // YYYY-MM-DD, optional
	Assignee string
}

// TaskRef identifies a created task
type TaskRef struct {
	ID    string
	Title string
	URL   string
}

// MessageRef identifies a posted channel message
type MessageRef struct {
	ID string
}

// Client calls the Planner and Teams endpoints of Microsoft Graph. The
// HTTP client is expected to attach the bearer token.
type Client struct {
	baseURL  string
	planID   string
	bucketID string
	http     *http.Client
	limiter  *rate.Limiter
	tracer   trace.Tracer
	logger   *zap.Logger
}

// NewClient creates a Graph client throttled to cfg.RateLimit requests per second
func NewClient(cfg config.GraphConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		planID:   cfg.PlanID,
		bucketID: cfg.BucketID,
		http:     httpClient,
		limiter:  rate.NewLimiter(limit, burst),
		tracer:   otel.Tracer("graph-client"),
		logger:   logger,
	}
}

type plannerAssignment struct {
	ODataType string `json:"@odata.type"`
	OrderHint string `json:"orderHint"`
}

type plannerTaskRequest struct {
	PlanID      string                       `json:"planId"`
	BucketID    string                       `json:"bucketId"`
	Title       string                       `json:"title"`
	DueDateTime string                       `json:"dueDateTime,omitempty"`
	Assignments map[string]plannerAssignment `json:"assignments,omitempty"`
}

type plannerTaskResponse struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	WebLink string `json:"webLink,omitempty"`
}

// CreateTask creates a Planner task in the configured plan and bucket
func (c *Client) CreateTask(ctx context.Context, in TaskInput) (*TaskRef, error) {
	ctx, span := c.tracer.Start(ctx, "graph.createPlannerTask", trace.WithAttributes(
		attribute.String("planner.plan_id", c.planID),
		attribute.String("planner.bucket_id", c.bucketID),
	))
	defer span.End()

	body := plannerTaskRequest{
		PlanID:   c.planID,
		BucketID: c.bucketID,
		Title:    in.Title,
	}
	if in.DueDate != "" {
		body.DueDateTime = in.DueDate + "T23:59:59Z"
	}
	if in.Assignee != "" {
		span.SetAttributes(attribute.String("task.assignee", in.Assignee))
		if id, err := uuid.Parse(in.Assignee); err == nil {
			body.Assignments = map[string]plannerAssignment{
				id.String(): {ODataType: "#microsoft.graph.plannerAssignment", OrderHint: " !"},
			}
		} else {
			c.logger.Debug("🔍 Owner is not a directory id, task left unassigned",
				zap.String("owner", in.Assignee),
			)
		}
	}

	var out plannerTaskResponse
	if err := c.post(ctx, "/planner/tasks", body, &out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("task.id", out.ID))
	span.SetStatus(codes.Ok, "")
	return &TaskRef{ID: out.ID, Title: out.Title, URL: out.WebLink}, nil
}

type itemBody struct {
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
}

type channelMessageRequest struct {
	Body    itemBody `json:"body"`
	Subject string   `json:"subject,omitempty"`
}

type channelMessageResponse struct {
	ID string `json:"id"`
}

// SendMessage posts an HTML message to a Teams channel
func (c *Client) SendMessage(ctx context.Context, channel entities.ChannelRef, html, subject string) (*MessageRef, error) {
	ctx, span := c.tracer.Start(ctx, "graph.sendChannelMessage", trace.WithAttributes(
		attribute.String("teams.team_id", channel.TeamID),
		attribute.String("teams.channel_id", channel.ChannelID),
	))
	defer span.End()

	path := fmt.Sprintf("/teams/%s/channels/%s/messages", url.PathEscape(channel.TeamID), url.PathEscape(channel.ChannelID))
	body := channelMessageRequest{
		Body:    itemBody{Content: html, ContentType: "html"},
		Subject: subject,
	}

	var out channelMessageResponse
	if err := c.post(ctx, path, body, &out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("message.id", out.ID))
	span.SetStatus(codes.Ok, "")
	return &MessageRef{ID: out.ID}, nil
}

// post sends one JSON request and maps the response status onto the
// retryable and terminal dependency errors
func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	b, err := json.Marshal(in)
	if err != nil {
		return apperrors.ErrInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return apperrors.ErrInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperrors.ErrDependencyTransient(serviceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		statusErr := fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
		c.logger.Warn("⚠️ Graph request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return apperrors.ErrDependencyTransient(serviceName, statusErr)
		}
		return apperrors.ErrDependencyTerminal(serviceName, statusErr)
	}

	// the resource already exists at this point, a retry would duplicate it
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.ErrDependencyTerminal(serviceName, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
