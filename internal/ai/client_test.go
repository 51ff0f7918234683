package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabboard-backend/internal/config"
	"collabboard-backend/internal/model"
)

func testClient(serverURL string) *Client {
	return NewClient(config.AIConfig{
		BaseURL:   serverURL,
		APIKey:    "test-key",
		Model:     "test-model",
		MaxTokens: 1024,
		MaxTurns:  5,
		Timeout:   5 * time.Second,
	})
}

func TestCommandCollectsToolUseAcrossTurns(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Tools, 10)

		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			// 첫 턴: tool_use 두 건
			json.NewEncoder(w).Encode(messagesResponse{
				StopReason: "tool_use",
				Content: []contentBlock{
					{Type: "tool_use", ID: "t1", Name: "createStickyNote",
						Input: map[string]interface{}{"text": "a", "x": 0.0, "y": 0.0}},
					{Type: "tool_use", ID: "t2", Name: "moveObject",
						Input: map[string]interface{}{"objectId": "obj-1", "x": 10.0, "y": 10.0}},
				},
			})
			return
		}
		// 두 번째 턴: tool_result가 전달됐는지 확인 후 종료
		last := req.Messages[len(req.Messages)-1]
		require.Equal(t, "user", last.Role)
		require.Len(t, last.Content, 2)
		assert.Equal(t, "tool_result", last.Content[0].Type)
		assert.Equal(t, "t1", last.Content[0].ToolUseID)

		json.NewEncoder(w).Encode(messagesResponse{
			StopReason: "end_turn",
			Content:    []contentBlock{{Type: "text", Text: "Done."}},
		})
	}))
	defer server.Close()

	client := testClient(server.URL)
	result, err := client.Command(context.Background(), "make a note", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, result.Actions, 2)
	assert.Equal(t, ActionCreateStickyNote, result.Actions[0].Name)
	assert.Equal(t, ActionMoveObject, result.Actions[1].Name)
	assert.Equal(t, "Done.", result.Message)
}

func TestCommandSendsBoardStateContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		text := req.Messages[0].Content[0].Text
		assert.Contains(t, text, "arrange everything")
		assert.Contains(t, text, "Current board objects:")
		assert.Contains(t, text, "obj-1")

		json.NewEncoder(w).Encode(messagesResponse{
			StopReason: "end_turn",
			Content:    []contentBlock{{Type: "text", Text: "ok"}},
		})
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.Command(context.Background(), "arrange everything", []model.BoardObject{
		{ID: "obj-1", Type: model.ObjectStickyNote},
	})
	require.NoError(t, err)
}

func TestCommandSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"type": "rate_limit_error", "message": "slow down"},
		})
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.Command(context.Background(), "hi", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit_error")
}

// 게이트웨이가 JSON이 아닌 본문으로 실패하면 상태 코드가 드러나야 한다
func TestCommandSurfacesNonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html><body>502 Bad Gateway</body></html>"))
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.Command(context.Background(), "hi", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.NotContains(t, err.Error(), "malformed")
}

func TestCommandDefaultMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(messagesResponse{
			StopReason: "end_turn",
			Content: []contentBlock{
				{Type: "tool_use", ID: "t1", Name: "deleteObject",
					Input: map[string]interface{}{"objectId": "obj-1"}},
			},
		})
	}))
	defer server.Close()

	client := testClient(server.URL)
	result, err := client.Command(context.Background(), "delete it", nil)
	require.NoError(t, err)
	assert.Equal(t, "Executed 1 action(s)", result.Message)
}
