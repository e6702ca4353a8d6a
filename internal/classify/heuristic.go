package classify

import (
	"context"
	"fmt"
	"strings"
)

// Keyword groups scored by the heuristic. Matching is substring based on the
// lowercased message, so "CrashLoopBackOff" hits "crash".
var (
	adviceSignals = []string{
		"best practice", "how do i", "how to", "should i", "recommend",
		"what is a", "what does", "explain", "difference between",
	}
	lookupSignals = []string{
		"list", "show", "get", "which pods", "what pods", "how many",
		"status of", "version",
	}
	investigationSignals = []string{
		"why", "wrong", "issue", "problem", "fail", "crash", "error",
		"broken", "not working", "restart", "pending", "stuck", "slow",
		"oom", "evicted", "unhealthy",
	}
	deepSignals = []string{
		"debug", "investigate", "troubleshoot", "root cause", "diagnose",
		"intermittent", "sometimes", "degraded", "across", "cluster-wide",
	}
)

// HeuristicClassifier is the deterministic fallback path. It never errors
// and never calls out, so a model outage degrades classification quality
// without blocking the turn.
type HeuristicClassifier struct{}

var _ Classifier = (*HeuristicClassifier)(nil)

func (HeuristicClassifier) Classify(_ context.Context, message string, history []Message) Classification {
	lower := strings.ToLower(message)

	advice := countSignals(lower, adviceSignals)
	lookup := countSignals(lower, lookupSignals)
	invest := countSignals(lower, investigationSignals)
	deep := countSignals(lower, deepSignals)

	// Longer conversations tend to be drill-downs on an earlier problem.
	if len(history) >= 4 {
		invest++
	}

	score := complexityScore(lookup, invest, deep)

	c := Classification{
		ComplexityScore: score,
		Confidence:      0.6,
		Method:          MethodHeuristic,
		Reasoning: fmt.Sprintf(
			"keyword heuristic: advice=%d lookup=%d investigation=%d deep=%d",
			advice, lookup, invest, deep),
	}

	switch {
	case advice > 0 && invest == 0 && deep == 0:
		c.Category = CategoryDirectAdvice
		c.SuggestedMaxCommands = 0
	case deep > 0 || (invest >= 2 && score >= 0.6):
		c.Category = CategoryDeepAnalysis
		c.SuggestedMaxCommands = 3
		c.FollowUpAllowed = true
	case invest > 0:
		c.Category = CategoryModerateInvestigation
		c.SuggestedMaxCommands = 3
		c.FollowUpAllowed = true
	default:
		c.Category = CategorySimpleLookup
		c.SuggestedMaxCommands = 1
	}
	return c
}

func countSignals(lower string, signals []string) int {
	n := 0
	for _, s := range signals {
		if strings.Contains(lower, s) {
			n++
		}
	}
	return n
}

func complexityScore(lookup, invest, deep int) float64 {
	score := 0.2 + 0.15*float64(invest) + 0.25*float64(deep) - 0.05*float64(lookup)
	if score < 0.05 {
		score = 0.05
	}
	if score > 1 {
		score = 1
	}
	return score
}
