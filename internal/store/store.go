// Package store persists conversation turns and runtime configuration.
// Postgres is the durable source of truth; Redis mirrors recent session
// history so hot sessions rehydrate without a database round trip.
package store

import (
	"context"
	"errors"

	"github.com/mehdi-chebbi/k8s-chat/internal/chat"
	"github.com/mehdi-chebbi/k8s-chat/internal/llm"
	"github.com/mehdi-chebbi/k8s-chat/pkg/logging"
)

// ErrNoActiveLLMConfig means no LLM backend has been activated yet.
var ErrNoActiveLLMConfig = errors.New("store: no active llm configuration")

// KubeconfigProfile names a kubeconfig file the executor should use. A zero
// profile means the default environment kubeconfig.
type KubeconfigProfile struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Store layers the Redis mirror over Postgres. All writes go to Postgres
// first; mirror failures are logged and ignored because the mirror is a
// cache, not a source of truth.
type Store struct {
	pg     *Postgres
	mirror *Mirror
	logger *logging.Logger
}

func New(pg *Postgres, mirror *Mirror, logger *logging.Logger) *Store {
	if pg == nil {
		panic("store: postgres store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{pg: pg, mirror: mirror, logger: logger}
}

func (s *Store) SaveTurn(ctx context.Context, userID, sessionID string, turn chat.Turn) error {
	if err := s.pg.SaveTurn(ctx, userID, sessionID, turn); err != nil {
		return err
	}
	s.refreshMirror(ctx, sessionID, turn)
	return nil
}

func (s *Store) LoadTurns(ctx context.Context, sessionID string) ([]chat.Turn, error) {
	if s.mirror != nil {
		turns, err := s.mirror.Load(ctx, sessionID)
		if err != nil {
			s.logger.Warn("session mirror read failed",
				"session_id", sessionID,
				"error", err)
		} else if turns != nil {
			return turns, nil
		}
	}

	turns, err := s.pg.LoadTurns(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.mirror != nil && len(turns) > 0 {
		if err := s.mirror.Save(ctx, sessionID, turns); err != nil {
			s.logger.Warn("session mirror write failed",
				"session_id", sessionID,
				"error", err)
		}
	}
	return turns, nil
}

func (s *Store) DeleteHistory(ctx context.Context, userID, sessionID string) error {
	if err := s.pg.DeleteHistory(ctx, userID, sessionID); err != nil {
		return err
	}
	if s.mirror != nil {
		if err := s.mirror.Delete(ctx, sessionID); err != nil {
			s.logger.Warn("session mirror delete failed",
				"session_id", sessionID,
				"error", err)
		}
	}
	return nil
}

func (s *Store) ActiveLLMConfig(ctx context.Context) (llm.Config, error) {
	return s.pg.ActiveLLMConfig(ctx)
}

func (s *Store) ActiveKubeconfig(ctx context.Context) (KubeconfigProfile, error) {
	return s.pg.ActiveKubeconfig(ctx)
}

func (s *Store) MaxCommandsPreference(ctx context.Context, userID string) (int, error) {
	return s.pg.MaxCommandsPreference(ctx, userID)
}

func (s *Store) LogActivity(ctx context.Context, userID, actionType string, success bool, detail string) error {
	return s.pg.LogActivity(ctx, userID, actionType, success, detail)
}

// refreshMirror appends the new turn to the mirrored session if one exists.
// A mirror miss is left alone; the next LoadTurns rebuilds it from Postgres.
func (s *Store) refreshMirror(ctx context.Context, sessionID string, turn chat.Turn) {
	if s.mirror == nil {
		return
	}
	turns, err := s.mirror.Load(ctx, sessionID)
	if err != nil || turns == nil {
		if err != nil {
			s.logger.Warn("session mirror read failed",
				"session_id", sessionID,
				"error", err)
		}
		return
	}
	if err := s.mirror.Save(ctx, sessionID, append(turns, turn)); err != nil {
		s.logger.Warn("session mirror write failed",
			"session_id", sessionID,
			"error", err)
	}
}
