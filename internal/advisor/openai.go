package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hyperengineering/finquest/internal/types"
)

// Compile-time interface check
var _ Generator = (*OpenAI)(nil)

// ChatService defines the chat completion call the generator needs.
// This abstraction enables testing without calling the real OpenAI API.
type ChatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

const systemPrompt = "You are a budgeting coach for students. Reply with a single JSON object and no other text."

// OpenAI generates recommendations with a chat completion model.
type OpenAI struct {
	chat    ChatService
	model   openai.ChatModel
	timeout time.Duration
}

// NewOpenAI creates a generator backed by the OpenAI API.
func NewOpenAI(apiKey, model string, timeout time.Duration) *OpenAI {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return newOpenAI(client.Chat.Completions, model, timeout)
}

func newOpenAI(chat ChatService, model string, timeout time.Duration) *OpenAI {
	return &OpenAI{
		chat:    chat,
		model:   openai.ChatModel(model),
		timeout: timeout,
	}
}

// Generate asks the model for recommendations and decodes its JSON reply.
func (o *OpenAI) Generate(ctx context.Context, summary types.SpendingSummary) (*types.Recommendations, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	resp, err := o.chat.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildPrompt(summary)),
		}),
		Model: openai.F(o.model),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", ErrUpstreamUnavailable)
	}

	recs, err := parseRecommendations(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return recs, nil
}

// ModelName returns the chat model name.
func (o *OpenAI) ModelName() string {
	return string(o.model)
}

// buildPrompt renders the spending summary and the expected reply shape.
func buildPrompt(s types.SpendingSummary) string {
	names := make([]string, 0, len(s.Categories))
	for name := range s.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Analyze this user's spending data and provide personalized financial recommendations.\n\n")
	fmt.Fprintf(&b, "Monthly income: $%.2f\n", s.MonthlyIncome)
	fmt.Fprintf(&b, "Monthly expenses: $%.2f\n", s.MonthlyExpenses)
	fmt.Fprintf(&b, "Savings rate: %.2f%%\n", s.SavingsRate)
	b.WriteString("Spending by category:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: $%.2f\n", name, s.Categories[name])
	}
	b.WriteString(`
Provide 2-3 specific spending reductions with their potential savings and a short reason each,
and suggest financial products (credit cards, savings accounts) that would suit this user.
Use exactly this JSON shape:
{"recommendations":[{"title":"","description":"","savings":0,"period":"","category":"","reason":""}],
"financial_products":[{"title":"","category":"","benefit":"","description":""}]}`)
	return b.String()
}

// parseRecommendations decodes a model reply, tolerating a fenced code block.
func parseRecommendations(content string) (*types.Recommendations, error) {
	body := strings.TrimSpace(content)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}

	var recs types.Recommendations
	if err := json.Unmarshal([]byte(body), &recs); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	if len(recs.Recommendations) == 0 {
		return nil, fmt.Errorf("reply has no recommendations")
	}
	if recs.FinancialProducts == nil {
		recs.FinancialProducts = []types.FinancialProduct{}
	}
	return &recs, nil
}
