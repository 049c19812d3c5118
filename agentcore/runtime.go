package agentcore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/climatevia/pathway/config"
	"github.com/climatevia/pathway/errs"
	"github.com/climatevia/pathway/llms"
	"github.com/climatevia/pathway/memory"
	"github.com/climatevia/pathway/prompts"
	"github.com/climatevia/pathway/reflection"
	"github.com/climatevia/pathway/utils"
)

// maxPromptTokens bounds the rolling history fed into a live chat-completion
// call. MaxContextMessages already caps the window by message count; this
// is a second guard against a handful of unusually long messages blowing
// past a provider's context window even with few messages in play.
const maxPromptTokens = 6000

// conservativeIntent is the fallback intent used when classification fails:
// it never triggers a crisis template and never over-claims a specific need.
const conservativeIntent = "general_coordination"

// intentClassification is the schema the classify call is steered towards.
// The intent vocabulary mirrors the Finding types the graph layer records.
type intentClassification struct {
	Intent     string  `json:"intent" jsonschema:"enum=greeting,enum=initial_discovery,enum=specialist_analysis,enum=partner_matches,enum=confidence_assessment,enum=application_guidance,enum=conversation_continuation"`
	Confidence float64 `json:"confidence" jsonschema:"minimum=0,maximum=1"`
	Reasoning  string  `json:"reasoning"`
}

// confidenceAssessment is the schema the second, scoring-only call is
// steered towards.
type confidenceAssessment struct {
	Score     float64 `json:"score" jsonschema:"minimum=0,maximum=1"`
	Reasoning string  `json:"reasoning"`
}

// Runtime runs the eight-step Agent Contract pipeline shared by every
// specialist: classify, respond, score, derive next actions, remember,
// reflect. Specialists differ only in their config and prompt bundle.
type Runtime struct {
	cfg        config.AgentConfig
	bundle     prompts.Bundle
	gateway    llms.Gateway
	memory     *memory.Store
	reflection *reflection.Engine

	mu      sync.Mutex
	history map[string][]Message // conversation id -> rolling window
}

// NewRuntime constructs a Runtime for one specialist.
func NewRuntime(cfg config.AgentConfig, bundle prompts.Bundle, gateway llms.Gateway, mem *memory.Store, refl *reflection.Engine) *Runtime {
	return &Runtime{
		cfg:        cfg,
		bundle:     bundle,
		gateway:    gateway,
		memory:     mem,
		reflection: refl,
		history:    make(map[string][]Message),
	}
}

// SpecialistType returns the bundle's specialist type tag.
func (r *Runtime) SpecialistType() string {
	return r.bundle.SpecialistType
}

// HandleInteraction runs the full pipeline described in the Agent Contract.
func (r *Runtime) HandleInteraction(ctx context.Context, in Interaction) (Response, error) {
	start := time.Now()

	// Step 1: validate.
	if strings.TrimSpace(in.Message) == "" {
		return Response{}, errs.New(errs.InvalidInput, "agentcore: message must not be empty")
	}
	if in.UserID == "" || in.ConversationID == "" {
		return Response{}, errs.New(errs.InvalidInput, "agentcore: user_id and conversation_id are required")
	}

	// Step 2: build context.
	history := r.historyFor(in.ConversationID)
	agentCtx := buildContext(in, history, r.cfg.MaxContextMessages)

	// Step 3: classify intent.
	intent, method := r.classifyIntent(ctx, in.Message, agentCtx)

	// Step 4: select a templated response for that intent.
	content := r.respond(ctx, in.Message, agentCtx, intent)

	// Step 5: score confidence.
	confidence := r.scoreConfidence(ctx, in.Message, content, intent)

	// Step 6: derive next actions.
	nextActions := r.cfg.NextActionsByIntent[intent]

	resp := Response{
		Content:          content,
		SpecialistType:   r.bundle.SpecialistType,
		ConfidenceScore:  confidence,
		NextActions:      nextActions,
		Sources:          nil,
		Success:          true,
		ProcessingTimeMS: 0, // filled below
		Metadata: map[string]any{
			"method": method,
			"intent": intent,
		},
	}

	r.appendHistory(in.ConversationID, Message{Kind: Human, Content: in.Message, Timestamp: start})
	r.appendHistory(in.ConversationID, Message{Kind: AI, Content: content, Timestamp: time.Now()})

	// Step 7: record episode and reflect, fire-and-forget.
	if r.memory != nil {
		r.memory.StoreEpisode(ctx, in.Message+" -> "+content, map[string]string{
			"conversation_id": in.ConversationID,
			"intent":          intent,
		})
	}
	if r.reflection != nil {
		go r.reflection.ReflectOnInteraction(context.Background(), in.ConversationID, content)
	}

	// Step 8: return with processing time measured around the pipeline.
	resp.ProcessingTimeMS = float64(time.Since(start).Microseconds()) / 1000.0
	return resp, nil
}

func (r *Runtime) historyFor(conversationID string) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.history[conversationID]
	out := make([]Message, len(h))
	copy(out, h)
	return out
}

func (r *Runtime) appendHistory(conversationID string, msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := append(r.history[conversationID], msg)
	max := r.cfg.MaxContextMessages
	if max > 0 && len(h) > max {
		h = h[len(h)-max:]
	}
	r.history[conversationID] = h
}

// classifyIntent runs the first structured-output call. On any gateway
// failure it falls back to the conservative default intent — this is the
// one place keyword logic would belong, and the contract has none: the
// fallback is a fixed intent, never a keyword match.
func (r *Runtime) classifyIntent(ctx context.Context, message string, agentCtx Context) (string, string) {
	if r.gateway == nil {
		return conservativeIntent, "fallback"
	}

	var result intentClassification
	req := llms.StructuredRequest{
		Messages: []llms.Message{
			{Role: "system", Content: r.bundle.SystemPrompt + "\n\nClassify the user's message into one intent."},
			{Role: "user", Content: message},
		},
		SchemaName:  "intent_classification",
		SchemaValue: &intentClassification{},
	}
	if err := r.gateway.StructuredOutput(ctx, req, &result); err != nil || result.Intent == "" {
		return conservativeIntent, "fallback"
	}
	return result.Intent, "classified"
}

// respond selects a templated response for intent, falling back to a live
// chat-completion call when no template covers it.
func (r *Runtime) respond(ctx context.Context, message string, agentCtx Context, intent string) string {
	if intent == "greeting" {
		if tpl, ok := r.bundle.Templates["greeting"]; ok {
			return tpl
		}
	}
	if tpl, ok := r.bundle.Templates["crisis_referral"]; ok && intent == "confidence_assessment" && r.bundle.SpecialistType == "empathy_specialist" {
		return tpl
	}

	if r.gateway == nil {
		if tpl, ok := r.bundle.Templates["followup"]; ok {
			return tpl
		}
		return "I'm here to help — could you tell me a bit more about what you need?"
	}

	history := truncateHistoryByTokens(agentCtx.ConversationHistory, maxPromptTokens-utils.EstimateTokens(r.bundle.SystemPrompt+message))

	messages := make([]llms.Message, 0, len(history)+2)
	messages = append(messages, llms.Message{Role: "system", Content: r.bundle.SystemPrompt})
	for _, m := range history {
		role := "user"
		if m.Kind == AI {
			role = "assistant"
		}
		messages = append(messages, llms.Message{Role: role, Content: m.Content})
	}
	messages = append(messages, llms.Message{Role: "user", Content: message})

	resp, err := r.gateway.ChatCompletion(ctx, llms.ChatRequest{Messages: messages})
	if err != nil {
		if tpl, ok := r.bundle.Templates["followup"]; ok {
			return tpl
		}
		return "I'm having trouble reaching my usual tools right now, but I'm still here — tell me more about what you need."
	}
	return resp.Text
}

// scoreConfidence runs the second structured-output call and applies the
// agent's per-intent adjustment, bounded to [0, 1].
func (r *Runtime) scoreConfidence(ctx context.Context, message, content, intent string) float64 {
	score := r.cfg.BaseConfidence

	if r.gateway != nil {
		var result confidenceAssessment
		req := llms.StructuredRequest{
			Messages: []llms.Message{
				{Role: "system", Content: "Score how confident you are that this response correctly addresses the user's message, from 0.0 to 1.0."},
				{Role: "user", Content: "Message: " + message + "\n\nResponse: " + content},
			},
			SchemaName:  "confidence_assessment",
			SchemaValue: &confidenceAssessment{},
		}
		if err := r.gateway.StructuredOutput(ctx, req, &result); err == nil {
			score = result.Score
		}
	}

	if adj, ok := r.cfg.ConfidenceByIntent[intent]; ok {
		score += adj
	}
	return clampConfidence(score)
}

// truncateHistoryByTokens drops the oldest messages until the remaining
// tail's estimated token count fits budget, keeping the most recent turns.
func truncateHistoryByTokens(history []Message, budget int) []Message {
	if budget <= 0 {
		return nil
	}
	total := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		total += utils.EstimateTokens(history[i].Content)
		if total > budget {
			break
		}
		start = i
	}
	return history[start:]
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
