package generate

// remote.go - Anthropic-backed remote generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = string(anthropic.ModelClaude3_5Haiku20241022)

const defaultMaxTokens = 1024

const systemPromptTemplate = `You are an expert data analyst. Convert natural language questions into Starlark query expressions over a tabular dataset.

Environment:
- The dataset is bound as 'df'. Columns: %s
- The 'date' column holds time values with .year, .month, .day attributes
- A frame library is bound as 'tab' and a time module as 'time'
- Frame operations: head(n), select(cols...), col(name), filter(pred), sort_by(col, reverse=False), nlargest(n, col), groupby(col), group_by_month(col), count()
- Grouped operations: sum(col), mean(col), count()
- Series operations: sum(), mean(), min(), max()

Rules:
1. Use only the df, tab, and time bindings; never load modules
2. Always assign the final output to a variable named 'result'
3. Prefer frames over scalars for aggregations
4. For time filters use lambda predicates over row["date"]

Examples:
Question: "total sales by region"
Code: result = df.groupby("region").sum("sales")

Question: "sales in July 2023"
Code: result = df.filter(lambda row: row["date"].year == 2023 and row["date"].month == 7)

Question: "average sales per month"
Code: result = df.group_by_month("date").mean("sales")

Respond with a JSON object containing the expression:
{"code": "expression here"}`

// AnthropicGenerator generates expressions with one Anthropic Messages
// call per query.
type AnthropicGenerator struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	logger    *slog.Logger
}

// NewAnthropicGenerator creates a generator. The API key is read from the
// environment by the SDK. An empty model selects DefaultModel.
func NewAnthropicGenerator(model string, maxTokens int64, logger *slog.Logger) *AnthropicGenerator {
	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AnthropicGenerator{
		client:    anthropic.NewClient(),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Generate asks the model for an expression. The response must be a JSON
// object with a "code" field; anything else is an error for the caller to
// recover from.
func (g *AnthropicGenerator) Generate(ctx context.Context, query string, columns []string) (string, error) {
	start := time.Now()

	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: fmt.Sprintf(systemPromptTemplate, strings.Join(columns, ", "))},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("Generate the expression for: " + query)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	code, err := extractCode(text)
	if err != nil {
		return "", err
	}

	g.logger.Debug("remote generation completed", "model", g.model, "elapsed", time.Since(start))
	return code, nil
}

// extractCode parses the model response into the expression. The response
// must be valid JSON with a non-empty "code" field; a fenced code block
// around the JSON is tolerated.
func extractCode(text string) (string, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return "", fmt.Errorf("response is not valid JSON: %w", err)
	}
	if strings.TrimSpace(payload.Code) == "" {
		return "", fmt.Errorf("response does not contain a 'code' field")
	}
	return payload.Code, nil
}
