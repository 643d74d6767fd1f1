// Package llm drives the conversation with the Anthropic API, including the
// bounded tool-use loop.
package llm

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultModel     = anthropic.ModelClaude4Sonnet20250514
	DefaultMaxTokens = 800

	// maxToolIterations caps the number of follow-up requests after the
	// initial one, so a query issues at most 1+maxToolIterations calls.
	maxToolIterations = 3

	fallbackNoContent = "I was unable to generate a response. Please try rephrasing your question."
	fallbackNoText    = "I was unable to generate a text response. Please try again."
)

// ToolExecutor dispatches a tool_use block to a capability by name and
// returns the text to feed back as the tool result. A returned error aborts
// the query; handled conditions come back as strings.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, input json.RawMessage) (string, error)
}

// messageCreator is the slice of the SDK the client calls, split out so
// tests can stub responses.
type messageCreator interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type Client struct {
	messages  messageCreator
	model     anthropic.Model
	maxTokens int64
	log       *slog.Logger
}

type Option func(*Client)

func WithModel(model anthropic.Model) Option {
	return func(c *Client) { c.model = model }
}

func WithMaxTokens(n int64) Option {
	return func(c *Client) { c.maxTokens = n }
}

func NewClient(apiKey string, log *slog.Logger, opts ...Option) *Client {
	api := anthropic.NewClient(option.WithAPIKey(apiKey))
	c := &Client{
		messages:  &api.Messages,
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
		log:       log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Generate answers a single query. history, when non-empty, is appended to
// the system prompt verbatim and never parsed. When tools and an executor
// are supplied and the model asks for a tool, the loop executes every
// tool_use block, feeds the results back, and reissues with the tools still
// enabled so multi-step chains work. Model and tool errors propagate
// unmodified; there are no retries here.
func (c *Client) Generate(ctx context.Context, query, history string, tools []anthropic.ToolParam, executor ToolExecutor) (string, error) {
	system := SystemPrompt
	if history != "" {
		system += "\n\nPrevious conversation:\n" + history
	}

	params := anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(0),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(query)),
		},
	}
	if len(tools) > 0 {
		params.Tools = toolUnions(tools)
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}

	resp, err := c.messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	if resp.StopReason == anthropic.StopReasonToolUse && executor != nil {
		resp, err = c.runToolLoop(ctx, params, resp, executor)
		if err != nil {
			return "", err
		}
	}

	return finalText(resp), nil
}

// runToolLoop is the iterate-execute-reissue state machine. Each pass
// appends the assistant turn, answers every tool_use block with exactly one
// tool_result carrying the same id (order preserved), and reissues with the
// full accumulated history. It exits when the model stops asking for tools
// or the iteration cap is hit, returning the last response either way.
func (c *Client) runToolLoop(ctx context.Context, params anthropic.MessageNewParams, resp *anthropic.Message, executor ToolExecutor) (*anthropic.Message, error) {
	for i := 0; i < maxToolIterations; i++ {
		params.Messages = append(params.Messages, assistantTurn(resp))

		results := make([]anthropic.ContentBlockParamUnion, 0, len(resp.Content))
		for _, block := range resp.Content {
			if block.Type != "tool_use" {
				continue
			}
			out, err := executor.Execute(ctx, block.Name, block.Input)
			if err != nil {
				return nil, err
			}
			c.log.Info("tool executed", "tool", block.Name, "iter", i)
			results = append(results, anthropic.ContentBlockParamUnion{
				OfToolResult: &anthropic.ToolResultBlockParam{
					ToolUseID: block.ID,
					Content: []anthropic.ToolResultBlockParamContentUnion{
						{OfText: &anthropic.TextBlockParam{Text: out}},
					},
				},
			})
		}
		if len(results) > 0 {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(results...))
		}

		next, err := c.messages.New(ctx, params)
		if err != nil {
			return nil, err
		}
		resp = next

		if resp.StopReason != anthropic.StopReasonToolUse {
			break
		}
	}
	return resp, nil
}

// finalText extracts the first text-bearing block, with fixed fallbacks for
// empty or text-free responses.
func finalText(resp *anthropic.Message) string {
	if len(resp.Content) == 0 {
		return fallbackNoContent
	}
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text
		}
	}
	return fallbackNoText
}

// assistantTurn converts a response back into a request message, keeping
// text and tool_use blocks in their original order.
func assistantTurn(resp *anthropic.Message) anthropic.MessageParam {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(resp.Content))
	for _, b := range resp.Content {
		switch b.Type {
		case "text":
			blocks = append(blocks, anthropic.ContentBlockParamUnion{
				OfText: &anthropic.TextBlockParam{Text: b.Text},
			})
		case "tool_use":
			blocks = append(blocks, anthropic.ContentBlockParamUnion{
				OfToolUse: &anthropic.ToolUseBlockParam{ID: b.ID, Name: b.Name, Input: b.Input},
			})
		}
	}
	return anthropic.NewAssistantMessage(blocks...)
}

func toolUnions(tools []anthropic.ToolParam) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for i := range tools {
		out = append(out, anthropic.ToolUnionParam{OfTool: &tools[i]})
	}
	return out
}
