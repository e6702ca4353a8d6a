package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mehdi-chebbi/k8s-chat/internal/classify"
	"github.com/mehdi-chebbi/k8s-chat/internal/kube"
	"github.com/mehdi-chebbi/k8s-chat/internal/observability/metrics"
	"github.com/mehdi-chebbi/k8s-chat/pkg/logging"
)

// Execution phases recorded in the activity log and metrics.
const (
	phaseInitial  = "initial"
	phaseFollowUp = "follow_up"
)

var ErrEmptyMessage = errors.New("chat: message required")

// Provider is the model surface the orchestrator consumes. A fresh instance
// is resolved per turn so configuration changes take effect immediately.
type Provider interface {
	SuggestCommands(ctx context.Context, question string, history []Turn) []string
	AnalyzeOutputs(ctx context.Context, question string, outputs *kube.OutputSet, history []Turn) string
	SuggestFollowUps(ctx context.Context, question string, outputs *kube.OutputSet, history []Turn) []string
	SuggestClassification(ctx context.Context, message string, history []classify.Message) (classify.Classification, error)
}

// CommandRunner executes one vetted kubectl invocation.
type CommandRunner interface {
	Run(ctx context.Context, args []string) kube.CommandResult
}

// Store is the persistence collaborator the orchestrator needs. The concrete
// store carries more (configuration lookups used by the factories below).
type Store interface {
	SaveTurn(ctx context.Context, userID, sessionID string, turn Turn) error
	LoadTurns(ctx context.Context, sessionID string) ([]Turn, error)
	DeleteHistory(ctx context.Context, userID, sessionID string) error
	MaxCommandsPreference(ctx context.Context, userID string) (int, error)
	LogActivity(ctx context.Context, userID, actionType string, success bool, detail string) error
}

// ProviderFactory resolves the active LLM configuration into a provider.
type ProviderFactory func(ctx context.Context) (Provider, error)

// RunnerFactory resolves the active kubeconfig into a command runner.
type RunnerFactory func(ctx context.Context) (CommandRunner, error)

// Orchestrator drives one user message through classification, bounded
// command execution, analysis, and persistence.
type Orchestrator struct {
	providers ProviderFactory
	runners   RunnerFactory
	store     Store
	logger    *logging.Logger
	metrics   *metrics.PipelineMetrics
	sessions  *sessionCache
	followUps map[classify.Category]bool
}

type OrchestratorOption func(*Orchestrator)

func WithLogger(l *logging.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.logger = l }
}

func WithMetrics(m *metrics.PipelineMetrics) OrchestratorOption {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithFollowUpCategories overrides which classification categories may run a
// follow-up phase.
func WithFollowUpCategories(categories []string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.followUps = make(map[classify.Category]bool, len(categories))
		for _, c := range categories {
			o.followUps[classify.Category(c)] = true
		}
	}
}

func NewOrchestrator(providers ProviderFactory, runners RunnerFactory, store Store, opts ...OrchestratorOption) *Orchestrator {
	if providers == nil {
		panic("chat: provider factory cannot be nil")
	}
	if runners == nil {
		panic("chat: runner factory cannot be nil")
	}
	if store == nil {
		panic("chat: store cannot be nil")
	}
	o := &Orchestrator{
		providers: providers,
		runners:   runners,
		store:     store,
		logger:    logging.Default(),
		sessions:  newSessionCache(),
		followUps: map[classify.Category]bool{
			classify.CategoryModerateInvestigation: true,
			classify.CategoryDeepAnalysis:          true,
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ProcessTurn runs the full pipeline for one user message. External failures
// (model, kubectl) degrade inside the pipeline; only persistence failures and
// an unresolvable provider configuration surface as errors.
func (o *Orchestrator) ProcessTurn(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	start := time.Now()

	sess := o.sessions.get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	o.hydrate(ctx, sessionID, sess)
	history := sess.snapshot()

	provider, err := o.providers(ctx)
	if err != nil {
		return nil, fmt.Errorf("chat: resolve provider: %w", err)
	}

	classification := o.classify(ctx, provider, req.Message, history)
	budget := o.budget(ctx, req, classification)

	var suggestions []string
	if budget > 0 {
		suggestions = provider.SuggestCommands(ctx, req.Message, history)
		if len(suggestions) > budget {
			suggestions = suggestions[:budget]
		}
	}

	outputs := kube.NewOutputSet()
	var executed []string
	if len(suggestions) > 0 {
		if runner := o.runner(ctx); runner != nil {
			executed = o.execute(ctx, runner, req.UserID, phaseInitial, suggestions, outputs)

			if o.followUpEligible(classification, executed) {
				followUps := provider.SuggestFollowUps(ctx, req.Message, outputs, history)
				executed = append(executed, o.execute(ctx, runner, req.UserID, phaseFollowUp, followUps, outputs)...)
			}
		}
	}

	analysisType := AnalysisAdviceOnly
	if len(executed) > 0 {
		analysisType = AnalysisCommandBased
	}

	answer := provider.AnalyzeOutputs(ctx, req.Message, outputs, history)

	now := time.Now().UTC()
	userTurn := Turn{Role: RoleUser, Message: req.Message, Timestamp: now}
	assistantTurn := Turn{
		Role:             RoleAssistant,
		Message:          answer,
		Timestamp:        now,
		CommandsExecuted: executed,
		Classification:   &classification,
	}
	if err := o.persist(ctx, req.UserID, sessionID, userTurn, assistantTurn); err != nil {
		o.metrics.ObserveTurn(analysisType, "error", time.Since(start).Seconds())
		return nil, err
	}
	sess.turns = append(sess.turns, userTurn, assistantTurn)

	o.metrics.ObserveTurn(analysisType, "ok", time.Since(start).Seconds())
	o.logActivity(ctx, req.UserID, "chat_message", true, fmt.Sprintf("session=%s commands=%d", sessionID, len(executed)))

	return &Response{
		SessionID:        sessionID,
		Response:         answer,
		CommandsExecuted: executed,
		Classification:   classification,
		AnalysisType:     analysisType,
		Timestamp:        now,
	}, nil
}

// History returns the stored turns for a session, hydrating the in-memory
// cache on first touch.
func (o *Orchestrator) History(ctx context.Context, sessionID string) ([]Turn, error) {
	sess := o.sessions.get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.loaded {
		turns, err := o.store.LoadTurns(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("chat: load history: %w", err)
		}
		sess.turns = turns
		sess.loaded = true
	}
	return sess.snapshot(), nil
}

// ClearHistory deletes a session's turns and drops the cached instance.
func (o *Orchestrator) ClearHistory(ctx context.Context, userID, sessionID string) error {
	if err := o.store.DeleteHistory(ctx, userID, sessionID); err != nil {
		return fmt.Errorf("chat: delete history: %w", err)
	}
	o.sessions.invalidate(sessionID)
	o.logActivity(ctx, userID, "history_cleared", true, "session="+sessionID)
	return nil
}

func (o *Orchestrator) hydrate(ctx context.Context, sessionID string, sess *session) {
	if sess.loaded {
		return
	}
	turns, err := o.store.LoadTurns(ctx, sessionID)
	if err != nil {
		// Start fresh rather than failing the turn; history is a cache of
		// context, not a correctness requirement.
		o.logger.Warn("failed to load session history",
			"session_id", sessionID,
			"error", err)
	} else {
		sess.turns = turns
	}
	sess.loaded = true
}

func (o *Orchestrator) classify(ctx context.Context, provider Provider, message string, history []Turn) classify.Classification {
	msgs := make([]classify.Message, 0, len(history))
	for _, t := range history {
		msgs = append(msgs, classify.Message{Role: t.Role, Content: t.Message})
	}
	return classify.NewHybrid(provider, o.logger).Classify(ctx, message, msgs)
}

// budget caps the classifier's suggestion with the user's preference when one
// is set.
func (o *Orchestrator) budget(ctx context.Context, req Request, c classify.Classification) int {
	budget := c.SuggestedMaxCommands
	pref := req.MaxCommands
	if pref <= 0 {
		stored, err := o.store.MaxCommandsPreference(ctx, req.UserID)
		if err != nil {
			o.logger.Warn("failed to load max commands preference",
				"user_id", req.UserID,
				"error", err)
		} else {
			pref = stored
		}
	}
	if pref > 0 && pref < budget {
		budget = pref
	}
	return budget
}

func (o *Orchestrator) runner(ctx context.Context) CommandRunner {
	runner, err := o.runners(ctx)
	if err != nil {
		o.logger.Warn("failed to resolve command runner, skipping execution",
			"error", err)
		return nil
	}
	return runner
}

// execute gates and runs each command in order. Rejected commands are logged
// and dropped; results land in the shared output set under phase-qualified
// keys when command text repeats.
func (o *Orchestrator) execute(ctx context.Context, runner CommandRunner, userID, phase string, commands []string, outputs *kube.OutputSet) []string {
	var executed []string
	for _, cmd := range commands {
		ok, reason := kube.CheckCommand(cmd)
		if !ok {
			o.logger.Warn("command rejected by safety gate",
				"command", cmd,
				"reason", reason)
			o.metrics.ObserveRejection()
			o.logActivity(ctx, userID, "command_rejected", false, cmd+": "+reason)
			continue
		}

		result := runner.Run(ctx, kube.CommandArgs(cmd))
		outputs.Add(cmd, phase, result)
		executed = append(executed, cmd)
		o.metrics.ObserveCommand(phase, result.Success)
		o.logActivity(ctx, userID, "command_executed", result.Success, cmd)
	}
	return executed
}

func (o *Orchestrator) followUpEligible(c classify.Classification, executed []string) bool {
	return c.FollowUpAllowed && o.followUps[c.Category] && len(executed) > 0
}

func (o *Orchestrator) persist(ctx context.Context, userID, sessionID string, turns ...Turn) error {
	for _, turn := range turns {
		if err := o.store.SaveTurn(ctx, userID, sessionID, turn); err != nil {
			return fmt.Errorf("chat: persist turn: %w", err)
		}
	}
	return nil
}

// logActivity is best effort; an audit write failure must not fail the turn.
func (o *Orchestrator) logActivity(ctx context.Context, userID, actionType string, success bool, detail string) {
	if err := o.store.LogActivity(ctx, userID, actionType, success, detail); err != nil {
		o.logger.Warn("failed to write activity log",
			"action", actionType,
			"error", err)
	}
}
