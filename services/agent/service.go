package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ToolExecutor dispatches one tool invocation by name and returns its result
// as a string in all cases.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args map[string]any) string
}

// messageCreator is the slice of the Anthropic client the generator needs.
type messageCreator interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Generator drives the bounded multi-round tool-calling loop against Claude.
// Each round the model may request tool executions; after at most maxRounds
// such rounds one final tool-free call produces the synthesized answer.
type Generator struct {
	messages  messageCreator
	model     anthropic.Model
	maxTokens int64
	maxRounds int
}

func NewGenerator(apiKey, model string, maxRounds int) *Generator {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	if model == "" {
		model = string(anthropic.ModelClaude4Sonnet20250514)
	}
	if maxRounds < 1 {
		maxRounds = 1
	}

	return &Generator{
		messages:  &client.Messages,
		model:     anthropic.Model(model),
		maxTokens: 800,
		maxRounds: maxRounds,
	}
}

// GenerateResponse answers a user query, optionally letting the model chain
// tool calls across rounds. Tool-level failures come back as answer text;
// transport failures from the Anthropic API are returned as errors.
func (g *Generator) GenerateResponse(ctx context.Context, query, conversationHistory string, tools []anthropic.ToolUnionParam, executor ToolExecutor) (string, error) {
	systemContent := SystemPrompt
	if conversationHistory != "" {
		systemContent = SystemPrompt + "\n\nPrevious conversation:\n" + conversationHistory
	}

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(query)),
	}

	for round := 1; round <= g.maxRounds; round++ {
		response, err := g.callModel(ctx, messages, systemContent, tools)
		if err != nil {
			return "", err
		}

		if response.StopReason != anthropic.StopReasonToolUse {
			return textContent(response), nil
		}

		if executor == nil {
			// Tool use requested but nothing can dispatch it. Prefer any text
			// the model produced over the generic fallback.
			if text := textContent(response); text != "" {
				return text, nil
			}
			return "Tool requested but no tool manager available", nil
		}

		log.Printf("[INFO] Tool round %d/%d", round, g.maxRounds)

		updated, err := g.dispatchTools(ctx, messages, response, executor)
		if err != nil {
			log.Printf("[ERROR] Tool dispatch failed in round %d: %v", round, err)
			return fmt.Sprintf("Tool execution failed: %v. Unable to provide complete response.", err), nil
		}
		messages = updated

		if round == g.maxRounds {
			return g.finalResponse(ctx, messages, systemContent)
		}
	}

	// Unreachable: the loop always returns, maxRounds is at least 1.
	return "", fmt.Errorf("tool round loop exited without a response")
}

func (g *Generator) callModel(ctx context.Context, messages []anthropic.MessageParam, systemContent string, tools []anthropic.ToolUnionParam) (*anthropic.Message, error) {
	params := anthropic.MessageNewParams{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: anthropic.Float(0),
		System: []anthropic.TextBlockParam{
			{Text: systemContent},
		},
		Messages: messages,
	}

	if len(tools) > 0 {
		params.Tools = tools
		params.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfAuto: &anthropic.ToolChoiceAutoParam{},
		}
	}

	response, err := g.messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to call Anthropic API: %w", err)
	}

	return response, nil
}

// dispatchTools appends the assistant's tool-use turn and one batched
// tool-result turn answering every invocation, in invocation order. A panic
// escaping the executor is returned as an error and aborts the run.
func (g *Generator) dispatchTools(ctx context.Context, messages []anthropic.MessageParam, response *anthropic.Message, executor ToolExecutor) (updated []anthropic.MessageParam, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			updated = nil
			err = fmt.Errorf("%v", rec)
		}
	}()

	updated = append(messages, response.ToParam())

	var resultBlocks []anthropic.ContentBlockParamUnion
	for _, block := range response.Content {
		toolUse, ok := block.AsAny().(anthropic.ToolUseBlock)
		if !ok {
			continue
		}

		args := map[string]any{}
		if inputJSON, marshalErr := json.Marshal(toolUse.Input); marshalErr == nil {
			json.Unmarshal(inputJSON, &args)
		}

		log.Printf("[INFO] Executing tool %s with arguments: %v", toolUse.Name, args)
		output := executor.Execute(ctx, toolUse.Name, args)

		resultBlocks = append(resultBlocks, anthropic.ContentBlockParamUnion{
			OfToolResult: &anthropic.ToolResultBlockParam{
				ToolUseID: toolUse.ID,
				Content: []anthropic.ToolResultBlockParamContentUnion{
					{OfText: &anthropic.TextBlockParam{Text: output}},
				},
			},
		})
	}

	if len(resultBlocks) > 0 {
		updated = append(updated, anthropic.NewUserMessage(resultBlocks...))
	}

	return updated, nil
}

// finalResponse makes one more model call without tools, forcing a text-only
// synthesized answer.
func (g *Generator) finalResponse(ctx context.Context, messages []anthropic.MessageParam, systemContent string) (string, error) {
	response, err := g.callModel(ctx, messages, systemContent, nil)
	if err != nil {
		return "", err
	}
	return textContent(response), nil
}

func textContent(response *anthropic.Message) string {
	var sb strings.Builder
	for _, block := range response.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String()
}
