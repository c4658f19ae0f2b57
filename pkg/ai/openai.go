package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	gradingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sparkiq",
		Subsystem: "ai",
		Name:      "grading_duration_seconds",
		Help:      "Duration of AI grading requests",
	}, []string{"model"})

	gradingFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sparkiq",
		Subsystem: "ai",
		Name:      "grading_failures_total",
		Help:      "Number of AI grading attempts that produced no usable grade",
	}, []string{"model", "reason"})
)

// OpenAIConfig defines configuration options for the OpenAI grader.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIGrader implements Grader against the OpenAI chat completion API.
type OpenAIGrader struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGrader builds a grader using the provided configuration.
func NewOpenAIGrader(cfg OpenAIConfig) (*OpenAIGrader, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 768
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIGrader{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/spark-iq/spark-iq-api/pkg/ai/openai"),
		logger: logger.With().Str("component", "openai_grader").Logger(),
	}, nil
}

// Grade sends the grading prompt to OpenAI and parses the response. A
// transport failure is returned as an error; a response the model produced
// but that cannot be parsed yields an Ungraded outcome with a nil error.
func (g *OpenAIGrader) Grade(parent context.Context, input GradeInput) (Outcome, error) {
	ctx, span := g.tracer.Start(parent, "openai.grade", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.Int("grading.max_points", input.MaxPoints),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: graderSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildGradingPrompt(input),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := g.client.CreateChatCompletion(ctx, request)
	gradingDuration.WithLabelValues(g.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		gradingFailures.WithLabelValues(g.cfg.Model, "transport").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, fmt.Errorf("openai grade: %w", err)
	}

	if len(resp.Choices) == 0 {
		gradingFailures.WithLabelValues(g.cfg.Model, "empty").Inc()
		span.SetStatus(codes.Error, "no choices returned")
		return Ungraded("model returned no choices"), nil
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	outcome := parseGradingResponse(content, input.MaxPoints)
	if !outcome.IsGraded() {
		gradingFailures.WithLabelValues(g.cfg.Model, "parse").Inc()
		span.SetAttributes(attribute.String("grading.reason", outcome.Reason))
		g.logger.Warn().Str("reason", outcome.Reason).Msg("grading response unusable")
		return outcome, nil
	}

	span.SetAttributes(attribute.Float64("grading.grade", outcome.Graded.Grade))
	return outcome, nil
}

func graderSystemPrompt() string {
	return "You are an expert educator grading student submissions. Evaluate the work against the assignment instructions and" +
		" respond with a JSON object containing grade (a number between 0 and the stated maximum points), feedback (a concis" +
		"e paragraph), and suggestions (an array of short improvement tips)."
}

func buildGradingPrompt(input GradeInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Assignment\n")
	builder.WriteString(input.AssignmentTitle)
	builder.WriteString("\n\n## Instructions\n")
	builder.WriteString(input.Instructions)
	builder.WriteString("\n\n## Maximum Points\n")
	builder.WriteString(strconv.Itoa(input.MaxPoints))
	builder.WriteString("\n\n## Submitted File\n")
	builder.WriteString(input.FileName)
	builder.WriteString(" (")
	builder.WriteString(input.FileType)
	builder.WriteString(")\n\n## Submission Content\n")
	builder.WriteString(input.Content)
	builder.WriteString("\n\nReturn JSON with grade, feedback, and suggestions.")
	return builder.String()
}

func parseGradingResponse(content string, maxPoints int) Outcome {
	trimmed := stripCodeFence(content)

	var evaluation Evaluation
	if err := json.Unmarshal([]byte(trimmed), &evaluation); err != nil {
		return Ungraded(fmt.Sprintf("response is not valid JSON: %v", err))
	}

	if strings.TrimSpace(evaluation.Feedback) == "" {
		return Ungraded("response contained no feedback")
	}

	if maxPoints <= 0 {
		maxPoints = 100
	}
	if evaluation.Grade < 0 {
		evaluation.Grade = 0
	}
	if evaluation.Grade > float64(maxPoints) {
		evaluation.Grade = float64(maxPoints)
	}

	return Outcome{Graded: &evaluation}
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
