// Package extract derives structured issue records from free-form text
// using the Anthropic API.
package extract

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/tobyfield/glint/internal/debug"
	"github.com/tobyfield/glint/internal/retry"
	"github.com/tobyfield/glint/internal/snapshot"
	"github.com/tobyfield/glint/internal/telemetry"
	"github.com/tobyfield/glint/internal/types"
)

// DefaultModel is the extraction model. Extraction is a small structured
// task; a fast model is the right tradeoff.
const DefaultModel = "claude-3-5-haiku-latest"

// DefaultTimeout bounds a single model request.
const DefaultTimeout = 10 * time.Second

const defaultMaxTokens = 1024

// errAPIKeyRequired is returned when an API key is needed but not provided.
var errAPIKeyRequired = errors.New("API key required")

// ErrAuth marks authentication/configuration failures from the model API.
// These are never retried.
var ErrAuth = errors.New("model API authentication failed")

// Error is a data-quality extraction failure: the model's reply could not
// be turned into a usable record. It carries the raw reply for debugging.
type Error struct {
	Reason string
	Raw    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
	}
	return "extraction failed: " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// Client wraps the Anthropic API for record extraction.
type Client struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	retryOpts retry.Options
	now       func() time.Time
}

// New creates an extraction client. Env var ANTHROPIC_API_KEY takes
// precedence over the explicit apiKey. Extra request options (base URL
// overrides in tests) are appended last.
func New(apiKey string, reqOpts ...option.RequestOption) (*Client, error) {
	envKey := os.Getenv("ANTHROPIC_API_KEY")
	if envKey != "" {
		apiKey = envKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY or the anthropic_api_key config value", errAPIKeyRequired)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(DefaultTimeout),
		// Retry is handled by our executor, not the SDK.
		option.WithMaxRetries(0),
	}
	opts = append(opts, reqOpts...)

	aiMetricsOnce.Do(initAIMetrics)

	return &Client{
		client:    anthropic.NewClient(opts...),
		model:     anthropic.Model(DefaultModel),
		maxTokens: defaultMaxTokens,
		retryOpts: retryOptions(),
		now:       time.Now,
	}, nil
}

// WithModel overrides the extraction model.
func (c *Client) WithModel(model string) *Client {
	if model != "" {
		c.model = anthropic.Model(model)
	}
	return c
}

// WithRetryOptions overrides the retry tuning (tests use tiny delays).
func (c *Client) WithRetryOptions(opts retry.Options) *Client {
	opts.IsRetryable = modelCallRetryable
	c.retryOpts = opts
	return c
}

func retryOptions() retry.Options {
	opts := retry.DefaultOptions()
	opts.IsRetryable = modelCallRetryable
	return opts
}

// modelCallRetryable classifies Anthropic API errors: 429 and 5xx are
// transient, 401 is a configuration problem and must surface immediately,
// timeouts are transient.
func modelCallRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return retry.Retryable(err)
}

// Issue extracts a new-issue record from free-form text. The optional
// snapshot supplies workspace context so the model prefers existing
// identifiers over inventing new ones.
func (c *Client) Issue(ctx context.Context, rawText string, snap *snapshot.Snapshot) (*types.ExtractedIssue, error) {
	sanitized := Sanitize(rawText)
	if sanitized == "" {
		return nil, &Error{Reason: "input is empty after sanitization"}
	}

	reply, err := c.complete(ctx, "issue", issueSystemPrompt, buildIssuePrompt(sanitized, snap))
	if err != nil {
		return nil, err
	}

	record, warnings, err := parseIssue(reply, c.now())
	for _, w := range warnings {
		debug.Logf("extract: %s\n", w)
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Update extracts an update record from free-form text describing a
// change to an existing issue.
func (c *Client) Update(ctx context.Context, rawText, issueContext string, snap *snapshot.Snapshot) (*types.ExtractedUpdate, error) {
	sanitized := Sanitize(rawText)
	if sanitized == "" {
		return nil, &Error{Reason: "input is empty after sanitization"}
	}

	reply, err := c.complete(ctx, "update", updateSystemPrompt, buildUpdatePrompt(sanitized, issueContext, snap))
	if err != nil {
		return nil, err
	}

	update, warnings, err := parseUpdate(reply, c.now())
	for _, w := range warnings {
		debug.Logf("extract: %s\n", w)
	}
	if err != nil {
		return nil, err
	}
	return update, nil
}

// complete sends one prompt through the retry executor and returns the
// model's text reply.
func (c *Client) complete(ctx context.Context, operation, systemPrompt, userPrompt string) (string, error) {
	tracer := telemetry.Tracer("github.com/tobyfield/glint/ai")
	ctx, span := tracer.Start(ctx, "anthropic.messages.new")
	defer span.End()
	span.SetAttributes(
		attribute.String("glint.ai.model", string(c.model)),
		attribute.String("glint.ai.operation", operation),
	)

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	attempts := 0
	message, err := retry.Do(ctx, c.retryOpts, func() (*anthropic.Message, error) {
		attempts++
		t0 := time.Now()
		msg, err := c.client.Messages.New(ctx, params)
		ms := float64(time.Since(t0).Milliseconds())

		if err == nil && aiMetrics.inputTokens != nil {
			modelAttr := attribute.String("glint.ai.model", string(c.model))
			aiMetrics.inputTokens.Add(ctx, msg.Usage.InputTokens, metric.WithAttributes(modelAttr))
			aiMetrics.outputTokens.Add(ctx, msg.Usage.OutputTokens, metric.WithAttributes(modelAttr))
			aiMetrics.duration.Record(ctx, ms, metric.WithAttributes(modelAttr))
		}
		return msg, err
	})
	span.SetAttributes(attribute.Int("glint.ai.attempts", attempts))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && (apiErr.StatusCode == 401 || apiErr.StatusCode == 403) {
			return "", fmt.Errorf("%w: %v", ErrAuth, err)
		}
		return "", fmt.Errorf("model call failed after %d attempts: %w", attempts, err)
	}

	span.SetAttributes(
		attribute.Int64("glint.ai.input_tokens", message.Usage.InputTokens),
		attribute.Int64("glint.ai.output_tokens", message.Usage.OutputTokens),
	)

	if len(message.Content) == 0 {
		return "", &Error{Reason: "model reply has no content blocks"}
	}
	content := message.Content[0]
	if content.Type != "text" {
		return "", &Error{Reason: fmt.Sprintf("model reply is not a text block (type=%s)", content.Type)}
	}
	return content.Text, nil
}

// aiMetrics holds lazily-initialized OTel instruments for Anthropic API calls.
var aiMetrics struct {
	inputTokens  metric.Int64Counter
	outputTokens metric.Int64Counter
	duration     metric.Float64Histogram
}

var aiMetricsOnce sync.Once

func initAIMetrics() {
	m := telemetry.Meter("github.com/tobyfield/glint/ai")
	aiMetrics.inputTokens, _ = m.Int64Counter("glint.ai.input_tokens",
		metric.WithDescription("Anthropic API input tokens consumed"),
		metric.WithUnit("{token}"),
	)
	aiMetrics.outputTokens, _ = m.Int64Counter("glint.ai.output_tokens",
		metric.WithDescription("Anthropic API output tokens generated"),
		metric.WithUnit("{token}"),
	)
	aiMetrics.duration, _ = m.Float64Histogram("glint.ai.request.duration",
		metric.WithDescription("Anthropic API request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
}
