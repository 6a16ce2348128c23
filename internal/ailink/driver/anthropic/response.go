package anthropic

import (
	"fmt"

	"github.com/ghassist/gh-assist/internal/ailink/content"
	"github.com/ghassist/gh-assist/internal/ailink/driver"
)

type messagesResponse struct {
	ID         string          `json:"id"`
	Model      string          `json:"model"`
	Content    []responseBlock `json:"content"`
	StopReason string          `json:"stop_reason"`
	Usage      *usage          `json:"usage,omitempty"`
}

type responseBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func toDriverResponse(resp *messagesResponse) (*driver.Response, error) {
	if resp == nil {
		return nil, fmt.Errorf("empty response")
	}
	out := &driver.Response{FinishReason: resp.StopReason, Model: resp.Model}
	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		out.Content = append(out.Content, content.ContentBlock{Type: content.ContentTypeText, Text: block.Text})
	}
	if len(out.Content) == 0 {
		return nil, fmt.Errorf("response contained no text content")
	}
	if resp.Usage != nil {
		out.Usage = &driver.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		}
	}
	return out, nil
}
