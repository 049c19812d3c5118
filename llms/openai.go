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

// OpenAIGateway implements Gateway against the OpenAI chat-completions and
// embeddings APIs over a raw HTTP client (no SDK), mirroring the teacher's
// hand-rolled provider.
type OpenAIGateway struct {
	cfg    config.LLMProviderConfig
	client *http.Client
}

// NewOpenAIGateway constructs a gateway from a validated provider config.
func NewOpenAIGateway(cfg config.LLMProviderConfig) *OpenAIGateway {
	return &OpenAIGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type openAIChatRequest struct {
	Model          string              `json:"model"`
	Messages       []openAIMessage     `json:"messages"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	Temperature    float64             `json:"temperature"`
	Stream         bool                `json:"stream"`
	ResponseFormat *openAIRespFormat   `json:"response_format,omitempty"`
}

type openAIRespFormat struct {
	Type       string            `json:"type"`
	JSONSchema openAIJSONSchema  `json:"json_schema"`
}

type openAIJSONSchema struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *openAIAPIError `json:"error,omitempty"`
}

type openAIAPIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type openAIStreamChunk struct {
	Choices []struct {
		Delta        openAIMessage `json:"delta"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type openAIEmbeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Error *openAIAPIError `json:"error,omitempty"`
}

func toOpenAIMessages(msgs []Message) []openAIMessage {
	out := make([]openAIMessage, len(msgs))
	for i, m := range msgs {
		out[i] = openAIMessage{Role: m.Role, Content: m.Content}
	}
	return out
}

// ChatCompletion implements Gateway.
func (g *OpenAIGateway) ChatCompletion(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if g == nil {
		return ChatResponse{}, errs.New(errs.Unavailable, "llms: no openai client configured")
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

	body := openAIChatRequest{
		Model:       g.cfg.Model,
		Messages:    toOpenAIMessages(req.Messages),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	start := time.Now()
	var resp openAIChatResponse
	if err := g.doJSON(ctx, "/chat/completions", body, &resp); err != nil {
		return ChatResponse{}, err
	}
	if resp.Error != nil {
		return ChatResponse{}, errs.New(errs.Unavailable, "openai: "+resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return ChatResponse{}, errs.New(errs.Unavailable, "openai: no choices returned")
	}

	return ChatResponse{
		Text:       resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
		Latency:    time.Since(start),
	}, nil
}

// Embedding implements Gateway.
func (g *OpenAIGateway) Embedding(ctx context.Context, text string) ([]float64, error) {
	if g == nil {
		return nil, errs.New(errs.Unavailable, "llms: no openai client configured")
	}

	ctx, cancel := withTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	body := openAIEmbeddingRequest{Model: g.cfg.Model, Input: text}

	var resp openAIEmbeddingResponse
	if err := g.doJSON(ctx, "/embeddings", body, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, errs.New(errs.Unavailable, "openai: "+resp.Error.Message)
	}
	if len(resp.Data) == 0 {
		return nil, errs.New(errs.Unavailable, "openai: no embedding returned")
	}
	return resp.Data[0].Embedding, nil
}

// StructuredOutput implements Gateway using OpenAI's json_schema response
// format, reflecting the schema from req.SchemaValue's type.
func (g *OpenAIGateway) StructuredOutput(ctx context.Context, req StructuredRequest, out any) error {
	if g == nil {
		return errs.New(errs.Unavailable, "llms: no openai client configured")
	}

	ctx, cancel := withTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	schemaJSON, err := schemaFor(req.SchemaName, req.SchemaValue)
	if err != nil {
		return err
	}

	body := openAIChatRequest{
		Model:       g.cfg.Model,
		Messages:    toOpenAIMessages(req.Messages),
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		ResponseFormat: &openAIRespFormat{
			Type: "json_schema",
			JSONSchema: openAIJSONSchema{
				Name:   req.SchemaName,
				Strict: true,
				Schema: json.RawMessage(schemaJSON),
			},
		},
	}

	var resp openAIChatResponse
	if err := g.doJSON(ctx, "/chat/completions", body, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return errs.New(errs.BadStructuredOutput, "openai: "+resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return errs.New(errs.BadStructuredOutput, "openai: no choices returned")
	}

	return decodeStructured(resp.Choices[0].Message.Content, out)
}

// StreamChat implements Gateway, relaying OpenAI's server-sent-event stream
// as a finite channel of text chunks terminated by a Done chunk.
func (g *OpenAIGateway) StreamChat(ctx context.Context, req ChatRequest) (<-chan StreamChunk, error) {
	if g == nil {
		return nil, errs.New(errs.Unavailable, "llms: no openai client configured")
	}

	body := openAIChatRequest{
		Model:       g.cfg.Model,
		Messages:    toOpenAIMessages(req.Messages),
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Stream:      true,
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, errs.Wrap(errs.InternalInvariant, "llms: marshal stream request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Host+"/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return nil, errs.Wrap(errs.InternalInvariant, "llms: build stream request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

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
		return nil, errs.New(errs.Unavailable, fmt.Sprintf("openai: status %d: %s", resp.StatusCode, string(respBody)))
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
			if bytes.Equal(line, []byte("[DONE]")) {
				break
			}

			var chunk openAIStreamChunk
			if err := json.Unmarshal(line, &chunk); err != nil {
				continue
			}
			if chunk.Usage != nil {
				totalTokens = chunk.Usage.TotalTokens
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if text := chunk.Choices[0].Delta.Content; text != "" {
				out <- StreamChunk{Text: text}
			}
			if chunk.Choices[0].FinishReason != "" {
				break
			}
		}
		out <- StreamChunk{Done: true, TokensUsed: totalTokens}
	}()

	return out, nil
}

// doJSON performs one non-streaming request/response round trip, classifying
// transport and context errors into the gateway's failure taxonomy.
func (g *OpenAIGateway) doJSON(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return errs.Wrap(errs.InternalInvariant, "llms: marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Host+path, bytes.NewReader(raw))
	if err != nil {
		return errs.Wrap(errs.InternalInvariant, "llms: build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

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
		return errs.New(errs.Unavailable, fmt.Sprintf("openai: status %d: %s", resp.StatusCode, string(respBody)))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errs.Wrap(errs.Transport, "llms: unmarshal response", err)
	}
	return nil
}
