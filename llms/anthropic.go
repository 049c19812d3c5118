package llms

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/climatevia/pathway/config"
	"github.com/climatevia/pathway/errs"
)

// AnthropicGateway implements Gateway against the Anthropic messages API
// over a raw HTTP client, mirroring the teacher's hand-rolled provider.
type AnthropicGateway struct {
	cfg    config.LLMProviderConfig
	client *http.Client
}

// NewAnthropicGateway constructs a gateway from a validated provider config.
func NewAnthropicGateway(cfg config.LLMProviderConfig) *AnthropicGateway {
	return &AnthropicGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	Stream      bool               `json:"stream"`
	Tools       []anthropicTool    `json:"tools,omitempty"`
	ToolChoice  *anthropicToolPick `json:"tool_choice,omitempty"`
}

type anthropicToolPick struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

type anthropicContentBlock struct {
	Type  string          `json:"type"` // "text" or "tool_use"
	Text  string          `json:"text,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *openAIAPIError `json:"error,omitempty"`
}

type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type        string `json:"type"`
		Text        string `json:"text"`
		PartialJSON string `json:"partial_json"`
	} `json:"delta"`
	Usage struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func splitSystem(msgs []Message) (string, []anthropicMessage) {
	var system strings.Builder
	converted := make([]anthropicMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == "system" {
			if system.Len() > 0 {
				system.WriteString("\n")
			}
			system.WriteString(m.Content)
			continue
		}
		converted = append(converted, anthropicMessage{Role: m.Role, Content: m.Content})
	}
	return system.String(), converted
}

// ChatCompletion implements Gateway.
func (g *AnthropicGateway) ChatCompletion(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if g == nil {
		return ChatResponse{}, errs.New(errs.Unavailable, "llms: no anthropic client configured")
	}

	ctx, cancel := withTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = g.cfg.MaxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = g.cfg.Temperature
	}

	system, messages := splitSystem(req.Messages)
	body := anthropicRequest{
		Model:       g.cfg.Model,
		System:      system,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	start := time.Now()
	var resp anthropicResponse
	if err := g.doJSON(ctx, body, &resp); err != nil {
		return ChatResponse{}, err
	}
	if resp.Error != nil {
		return ChatResponse{}, errs.New(errs.Unavailable, "anthropic: "+resp.Error.Message)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return ChatResponse{
		Text:       text.String(),
		TokensUsed: resp.Usage.InputTokens + resp.Usage.OutputTokens,
		Latency:    time.Since(start),
	}, nil
}

// Embedding implements Gateway. Anthropic has no embeddings endpoint; a
// gateway configured with an Anthropic backend cannot serve this call.
func (g *AnthropicGateway) Embedding(ctx context.Context, text string) ([]float64, error) {
	return nil, errs.New(errs.Unavailable, "llms: anthropic gateway does not support embeddings")
}

// StructuredOutput implements Gateway by forcing a single tool call whose
// input_schema is reflected from req.SchemaValue, then decoding the tool's
// input as the structured result.
func (g *AnthropicGateway) StructuredOutput(ctx context.Context, req StructuredRequest, out any) error {
	if g == nil {
		return errs.New(errs.Unavailable, "llms: no anthropic client configured")
	}

	ctx, cancel := withTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	schemaJSON, err := schemaFor(req.SchemaName, req.SchemaValue)
	if err != nil {
		return err
	}

	system, messages := splitSystem(req.Messages)
	body := anthropicRequest{
		Model:       g.cfg.Model,
		System:      system,
		Messages:    messages,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Tools: []anthropicTool{{
			Name:        req.SchemaName,
			Description: "Return the result conforming to this schema.",
			InputSchema: json.RawMessage(schemaJSON),
		}},
		ToolChoice: &anthropicToolPick{Type: "tool", Name: req.SchemaName},
	}

	var resp anthropicResponse
	if err := g.doJSON(ctx, body, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return errs.New(errs.BadStructuredOutput, "anthropic: "+resp.Error.Message)
	}

	for _, block := range resp.Content {
		if block.Type == "tool_use" && block.Name == req.SchemaName {
			return decodeStructured(string(block.Input), out)
		}
	}
	return errs.New(errs.BadStructuredOutput, "anthropic: model did not call the structured-output tool")
}

// StreamChat implements Gateway, relaying Anthropic's server-sent-event
// stream as a finite channel of text chunks terminated by a Done chunk.
func (g *AnthropicGateway) StreamChat(ctx context.Context, req ChatRequest) (<-chan StreamChunk, error) {
	if g == nil {
		return nil, errs.New(errs.Unavailable, "llms: no anthropic client configured")
	}

	system, messages := splitSystem(req.Messages)
	body := anthropicRequest{
		Model:       g.cfg.Model,
		System:      system,
		Messages:    messages,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Stream:      true,
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, errs.Wrap(errs.InternalInvariant, "llms: marshal stream request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Host+"/v1/messages", bytes.NewReader(raw))
	if err != nil {
		return nil, errs.Wrap(errs.InternalInvariant, "llms: build stream request", err)
	}
	g.setHeaders(httpReq)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		if cerr := classifyContextErr(ctx.Err()); cerr != nil {
			return nil, cerr
		}
		return nil, errs.Wrap(errs.Transport, "llms: stream request failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, errs.New(errs.Unavailable, fmt.Sprintf("anthropic: status %d: %s", resp.StatusCode, string(respBody)))
	}

	out := make(chan StreamChunk, 16)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		reader := bufio.NewReader(resp.Body)
		totalTokens := 0
		for {
			line, err := reader.ReadBytes('\n')
			if err != nil {
				if err != io.EOF {
					out <- StreamChunk{Err: errs.Wrap(errs.Transport, "llms: read stream", err)}
				}
				break
			}
			line = bytes.TrimSpace(line)
			if len(line) == 0 || !bytes.HasPrefix(line, []byte("data: ")) {
				continue
			}
			line = line[len("data: "):]

			var event anthropicStreamEvent
			if err := json.Unmarshal(line, &event); err != nil {
				continue
			}
			switch event.Type {
			case "content_block_delta":
				if event.Delta.Text != "" {
					out <- StreamChunk{Text: event.Delta.Text}
				}
			case "message_delta":
				if event.Usage.OutputTokens > 0 {
					totalTokens = event.Usage.OutputTokens
				}
			case "message_stop":
				out <- StreamChunk{Done: true, TokensUsed: totalTokens}
				return
			}
		}
		out <- StreamChunk{Done: true, TokensUsed: totalTokens}
	}()

	return out, nil
}

func (g *AnthropicGateway) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", g.cfg.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")
}

func (g *AnthropicGateway) doJSON(ctx context.Context, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return errs.Wrap(errs.InternalInvariant, "llms: marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Host+"/v1/messages", bytes.NewReader(raw))
	if err != nil {
		return errs.Wrap(errs.InternalInvariant, "llms: build request", err)
	}
	g.setHeaders(httpReq)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		if cerr := classifyContextErr(ctx.Err()); cerr != nil {
			return cerr
		}
		if strings.Contains(err.Error(), "Client.Timeout") {
			return errs.Wrap(errs.Timeout, "llms: request timed out", err)
		}
		return errs.Wrap(errs.Transport, "llms: request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Wrap(errs.Transport, "llms: read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return errs.New(errs.Unavailable, fmt.Sprintf("anthropic: status %d: %s", resp.StatusCode, string(respBody)))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errs.Wrap(errs.Transport, "llms: unmarshal response", err)
	}
	return nil
}
