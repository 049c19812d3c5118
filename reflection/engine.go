// Package reflection implements the Reflection Engine: a post-hoc, LLM-scored
// assessment of each specialist turn that never surfaces as an error to the
// caller — every failure mode degrades to a safe default instead.
package reflection

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/climatevia/pathway/llms"
)

const (
	defaultQualityScore = 0.8
	trendWindow         = 5
)

var (
	defaultStrengths    = []string{"Clear communication", "Helpful information"}
	defaultImprovements = []string{"Could be more concise", "Could add more specific examples"}
)

// Reflection is the recorded self-assessment of one specialist turn.
type Reflection struct {
	InteractionID string
	Agent         string
	Timestamp     time.Time
	QualityScore  float64
	Strengths     []string
	Improvements  []string
	LessonsLearned []string
}

// qualityAssessment is the schema the gateway's structured-output call is
// steered towards.
type qualityAssessment struct {
	Clarity         float64  `json:"clarity" jsonschema:"minimum=0,maximum=1"`
	Actionability   float64  `json:"actionability" jsonschema:"minimum=0,maximum=1"`
	Personalization float64  `json:"personalization" jsonschema:"minimum=0,maximum=1"`
	Empathy         float64  `json:"empathy" jsonschema:"minimum=0,maximum=1"`
	Overall         float64  `json:"overall" jsonschema:"minimum=0,maximum=1"`
	Strengths       []string `json:"strengths" jsonschema:"minItems=1,maxItems=3"`
	Improvements    []string `json:"improvements" jsonschema:"minItems=1,maxItems=3"`
}

// Engine runs reflection for one specialist, accumulating history used to
// compute trend-aware performance metrics.
type Engine struct {
	agentName string
	gateway   llms.Gateway

	mu      sync.Mutex
	history []Reflection
}

// NewEngine constructs a reflection engine for agentName. gateway may be
// nil; reflection then always falls back to defaults.
func NewEngine(agentName string, gateway llms.Gateway) *Engine {
	return &Engine{agentName: agentName, gateway: gateway}
}

// ReflectOnInteraction scores responseContent and records a Reflection.
// It never returns an error: an unavailable gateway or a malformed
// structured-output response both fall back to the engine's defaults, and
// the reflection is recorded either way.
func (e *Engine) ReflectOnInteraction(ctx context.Context, interactionID, responseContent string) Reflection {
	quality, strengths, improvements := e.assess(ctx, responseContent)

	reflection := Reflection{
		InteractionID:  interactionID,
		Agent:          e.agentName,
		Timestamp:      time.Now(),
		QualityScore:   quality,
		Strengths:      strengths,
		Improvements:   improvements,
		LessonsLearned: deriveLessons(strengths, improvements),
	}

	e.mu.Lock()
	e.history = append(e.history, reflection)
	e.mu.Unlock()

	return reflection
}

func (e *Engine) assess(ctx context.Context, responseContent string) (float64, []string, []string) {
	if responseContent == "" || e.gateway == nil {
		return defaultQualityScore, defaultStrengths, defaultImprovements
	}

	var result qualityAssessment
	req := llms.StructuredRequest{
		Messages: []llms.Message{
			{Role: "system", Content: "You are an expert at evaluating AI responses for a career guidance assistant. Score clarity, actionability, personalization, and empathy from 0.0 to 1.0, then give an overall score and 1-3 strengths and 1-3 improvements."},
			{Role: "user", Content: responseContent},
		},
		SchemaName:  "quality_assessment",
		SchemaValue: &qualityAssessment{},
	}

	if err := e.gateway.StructuredOutput(ctx, req, &result); err != nil {
		return defaultQualityScore, defaultStrengths, defaultImprovements
	}

	quality := clamp01(result.Overall)
	strengths := result.Strengths
	if len(strengths) == 0 {
		strengths = defaultStrengths
	}
	improvements := result.Improvements
	if len(improvements) == 0 {
		improvements = defaultImprovements
	}
	return quality, strengths, improvements
}

// deriveLessons mechanically turns strengths into reinforcement lessons and
// improvements into should-do lessons, mirroring the original reflection
// engine's heuristic.
func deriveLessons(strengths, improvements []string) []string {
	lessons := make([]string, 0, 4)

	for i, s := range strengths {
		if i >= 2 {
			break
		}
		lessons = append(lessons, "Continue to "+strings.ToLower(s))
	}

	for i, imp := range improvements {
		if i >= 2 {
			break
		}
		lower := strings.ToLower(imp)
		if strings.HasPrefix(lower, "could ") {
			lessons = append(lessons, "Should "+strings.TrimPrefix(lower, "could "))
		} else {
			lessons = append(lessons, "Should improve: "+lower)
		}
	}

	return lessons
}

// PerformanceMetrics summarizes an engine's reflection history.
type PerformanceMetrics struct {
	ResponseQuality   float64
	UserSatisfaction  float64
	TaskCompletion    float64
	Efficiency        float64
	ImprovementTrend  float64
}

// AssessPerformance averages the engine's reflection history into a
// PerformanceMetrics snapshot, including an improvement_trend comparing the
// last five scores against everything before them.
func (e *Engine) AssessPerformance() PerformanceMetrics {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.history) == 0 {
		return PerformanceMetrics{
			ResponseQuality:  0.8,
			UserSatisfaction: 0.75,
			TaskCompletion:   0.85,
			Efficiency:       0.9,
		}
	}

	scores := make([]float64, len(e.history))
	var sum float64
	for i, r := range e.history {
		scores[i] = r.QualityScore
		sum += r.QualityScore
	}
	avgQuality := sum / float64(len(scores))

	trend := 0.5
	if len(scores) >= trendWindow {
		recentAvg := average(scores[len(scores)-trendWindow:])
		var earlierAvg float64
		if len(scores) > trendWindow {
			earlierAvg = average(scores[:len(scores)-trendWindow])
		} else {
			earlierAvg = 0.7
		}
		trend = clampRange((recentAvg-earlierAvg)+0.5, 0.1, 1.0)
	}

	return PerformanceMetrics{
		ResponseQuality:  avgQuality,
		UserSatisfaction: 0.9 * avgQuality,
		TaskCompletion:   minFloat(1.0, 0.75+0.25*avgQuality),
		Efficiency:       0.7 + 0.2*trend,
		ImprovementTrend: trend,
	}
}

func average(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func clamp01(v float64) float64 { return clampRange(v, 0, 1) }

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
