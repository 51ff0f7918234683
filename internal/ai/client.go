package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"collabboard-backend/internal/config"
	"collabboard-backend/internal/model"
)

const anthropicVersion = "2023-06-01"

const systemPrompt = `You are an AI assistant for CollabBoard, a collaborative whiteboard application.
You help users create, arrange, and manipulate objects on a shared whiteboard.

You have access to tools for creating sticky notes, shapes, frames, text, connectors, and for
modifying existing objects (move, resize, recolor, update text, delete).

When creating layouts or templates:
- Space objects with adequate padding (at least 20px gap)
- Use consistent sizing for similar objects
- Use meaningful colors to group related items
- Center layouts around position (0, 0) or use the context of existing objects

For templates like SWOT analysis, retrospective boards, journey maps, etc:
- Create a frame for each section
- Add appropriate sticky notes within frames
- Use colors to differentiate categories
- Add title text labels

The board coordinate system has (0,0) at the center. Positive X is right, positive Y is down.
A typical sticky note is 200x200. A frame is usually 400-600 wide.

When you receive the current board state, use it to understand existing objects and avoid overlapping.
Always use the tools provided. Execute multiple tool calls for complex commands.`

// CommandResult is the pipeline's answer: the ordered action list plus a
// human-readable summary for the prompt panel.
type CommandResult struct {
	Actions []Action `json:"actions"`
	Message string   `json:"message"`
}

// Client talks to a hosted model's messages API with the fixed board tool
// catalogue. One Command call may span several model turns when the model
// keeps requesting tools.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	maxTurns   int
}

// NewClient Client 생성
func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		maxTurns:   cfg.MaxTurns,
	}
}

type contentBlock struct {
	Type  string                 `json:"type"`
	Text  string                 `json:"text,omitempty"`
	ID    string                 `json:"id,omitempty"`
	Name  string                 `json:"name,omitempty"`
	Input map[string]interface{} `json:"input,omitempty"`

	// tool_result 블록 전용
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system"`
	Tools     []toolSchema `json:"tools"`
	Messages  []message    `json:"messages"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Command sends one free-text instruction plus the board snapshot and
// collects the model's requested actions across tool-use turns. The snapshot
// is context only; nothing from it is persisted here.
func (c *Client) Command(ctx context.Context, prompt string, boardState []model.BoardObject) (*CommandResult, error) {
	userText := prompt
	if len(boardState) > 0 {
		stateJSON, err := json.MarshalIndent(boardState, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal board state: %w", err)
		}
		userText = fmt.Sprintf("%s\n\nCurrent board objects:\n%s", prompt, stateJSON)
	}

	messages := []message{{
		Role:    "user",
		Content: []contentBlock{{Type: "text", Text: userText}},
	}}

	result := &CommandResult{Actions: []Action{}}

	for turn := 0; turn < c.maxTurns; turn++ {
		resp, err := c.send(ctx, messages)
		if err != nil {
			return nil, err
		}

		var toolResults []contentBlock
		for _, block := range resp.Content {
			switch block.Type {
			case "text":
				result.Message += block.Text
			case "tool_use":
				result.Actions = append(result.Actions, Action{
					Name:   ActionName(block.Name),
					Params: block.Input,
				})
				ack, _ := json.Marshal(map[string]interface{}{
					"success": true,
					"message": fmt.Sprintf("%s executed", block.Name),
				})
				toolResults = append(toolResults, contentBlock{
					Type:      "tool_result",
					ToolUseID: block.ID,
					Content:   string(ack),
				})
			}
		}

		if resp.StopReason != "tool_use" {
			break
		}

		messages = append(messages,
			message{Role: "assistant", Content: resp.Content},
			message{Role: "user", Content: toolResults},
		)
	}

	if result.Message == "" {
		result.Message = fmt.Sprintf("Executed %d action(s)", len(result.Actions))
	}
	return result, nil
}

func (c *Client) send(ctx context.Context, messages []message) (*messagesResponse, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    systemPrompt,
		Tools:     boardTools,
		Messages:  messages,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read model response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Error bodies are not always the API's JSON envelope: gateways and
		// proxies answer with HTML or truncated text.
		var failure messagesResponse
		if err := json.Unmarshal(data, &failure); err == nil && failure.Error != nil {
			return nil, fmt.Errorf("model API error (%d, %s): %s", resp.StatusCode, failure.Error.Type, failure.Error.Message)
		}
		return nil, fmt.Errorf("model API error: status %d", resp.StatusCode)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("malformed model response: %w", err)
	}

	return &parsed, nil
}
