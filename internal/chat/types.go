package chat

import (
	"time"

	"github.com/mehdi-chebbi/k8s-chat/internal/classify"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Analysis types reported in responses. advice_only means the turn was
// answered without touching the cluster.
const (
	AnalysisAdviceOnly   = "advice_only"
	AnalysisCommandBased = "command_based"
)

// Turn is one conversation entry. Assistant turns carry the commands that
// produced the answer and the classification snapshot of the question.
type Turn struct {
	Role             string                   `json:"role"`
	Message          string                   `json:"message"`
	Timestamp        time.Time                `json:"timestamp"`
	CommandsExecuted []string                 `json:"commands_executed,omitempty"`
	Classification   *classify.Classification `json:"classification,omitempty"`
}

// Request is one user message to process. UserID comes from the transport
// layer, not the JSON body.
type Request struct {
	SessionID   string `json:"session_id"`
	Message     string `json:"message"`
	MaxCommands int    `json:"max_commands,omitempty"`
	UserID      string `json:"-"`
}

// Response is the structured result of a processed turn.
type Response struct {
	SessionID        string                  `json:"session_id"`
	Response         string                  `json:"response"`
	CommandsExecuted []string                `json:"commands_executed"`
	Classification   classify.Classification `json:"classification"`
	AnalysisType     string                  `json:"analysis_type"`
	Timestamp        time.Time               `json:"timestamp"`
}
