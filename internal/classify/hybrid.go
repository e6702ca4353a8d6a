package classify

import (
	"context"

	"github.com/mehdi-chebbi/k8s-chat/pkg/logging"
)

// Hybrid asks a model-backed advisor first and falls back to the keyword
// heuristic when the advisor fails or returns an unusable result. The
// fallback classification is marked MethodHeuristic so callers can surface
// the degradation without treating it as an error.
type Hybrid struct {
	advisor  Advisor
	fallback HeuristicClassifier
	logger   *logging.Logger
}

var _ Classifier = (*Hybrid)(nil)

func NewHybrid(advisor Advisor, logger *logging.Logger) *Hybrid {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hybrid{advisor: advisor, logger: logger}
}

func (h *Hybrid) Classify(ctx context.Context, message string, history []Message) Classification {
	if h.advisor != nil {
		c, err := h.advisor.SuggestClassification(ctx, message, history)
		if err == nil && validCategory(c.Category) {
			c.Method = MethodLLM
			clampBudget(&c)
			return c
		}
		if err != nil {
			h.logger.Warn("classification model call failed, using heuristic",
				"error", err)
		} else {
			h.logger.Warn("classification model returned unknown category, using heuristic",
				"category", string(c.Category))
		}
	}
	return h.fallback.Classify(ctx, message, history)
}

func validCategory(c Category) bool {
	switch c {
	case CategoryDirectAdvice, CategorySimpleLookup,
		CategoryModerateInvestigation, CategoryDeepAnalysis:
		return true
	}
	return false
}

func clampBudget(c *Classification) {
	if c.SuggestedMaxCommands < 0 {
		c.SuggestedMaxCommands = 0
	}
	if c.SuggestedMaxCommands > 3 {
		c.SuggestedMaxCommands = 3
	}
	if c.Category == CategoryDirectAdvice {
		c.SuggestedMaxCommands = 0
		c.FollowUpAllowed = false
	}
}
