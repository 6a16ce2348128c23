package anthropic

import (
	"fmt"
	"strings"

	"github.com/ghassist/gh-assist/internal/ailink/content"
	"github.com/ghassist/gh-assist/internal/ailink/driver"
)

type messagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// buildMessagesRequest lifts system messages into the top-level system field.
func buildMessagesRequest(req *driver.Request) (*messagesRequest, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}

	payload := &messagesRequest{
		Model:       req.Model,
		MaxTokens:   defaultMaxTokens,
		Temperature: req.Temperature,
	}
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		payload.MaxTokens = *req.MaxTokens
	}

	var system []string
	for _, msg := range req.Messages {
		text := content.JoinText(msg.Content)
		switch msg.Role {
		case content.RoleSystem:
			if text != "" {
				system = append(system, text)
			}
		case content.RoleUser, content.RoleAssistant:
			payload.Messages = append(payload.Messages, message{Role: msg.Role, Content: text})
		default:
			return nil, fmt.Errorf("unsupported message role: %s", msg.Role)
		}
	}
	if len(payload.Messages) == 0 {
		return nil, fmt.Errorf("messages are required")
	}
	payload.System = strings.Join(system, "\n\n")
	return payload, nil
}
