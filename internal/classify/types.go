package classify

import "context"

// Category buckets a question by how much investigation it warrants.
type Category string

const (
	CategoryDirectAdvice          Category = "direct_advice"
	CategorySimpleLookup          Category = "simple_lookup"
	CategoryModerateInvestigation Category = "moderate_investigation"
	CategoryDeepAnalysis          Category = "deep_analysis"
)

// Classification method markers. A degraded (heuristic) classification is
// informational, never an error.
const (
	MethodLLM       = "llm"
	MethodHeuristic = "heuristic"
)

// Classification sizes the investigation for one turn. Immutable once
// produced; the orchestrator treats SuggestedMaxCommands as an upper bound.
type Classification struct {
	Category             Category `json:"type"`
	ComplexityScore      float64  `json:"complexity_score"`
	Confidence           float64  `json:"confidence"`
	Method               string   `json:"method"`
	SuggestedMaxCommands int      `json:"max_commands_suggested"`
	FollowUpAllowed      bool     `json:"follow_up_allowed"`
	Reasoning            string   `json:"reasoning"`
}

// Message is one prior conversation entry, in chronological order.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Classifier produces a classification for a user message. Implementations
// must always return a value; a failed model call degrades to a heuristic
// result instead of failing the turn.
type Classifier interface {
	Classify(ctx context.Context, message string, history []Message) Classification
}

// Advisor is a model-backed classification source. Errors are expected and
// handled by falling back to the heuristic path.
type Advisor interface {
	SuggestClassification(ctx context.Context, message string, history []Message) (Classification, error)
}
