package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mehdi-chebbi/k8s-chat/internal/chat"
	"github.com/mehdi-chebbi/k8s-chat/internal/classify"
	"github.com/mehdi-chebbi/k8s-chat/internal/llm"
)

// Postgres is the durable store. It assumes provisioned tables: chat_turns,
// activity_log, llm_configs, kubeconfigs, user_preferences.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	if db == nil {
		panic("store: db cannot be nil")
	}
	return &Postgres{db: db}
}

func (s *Postgres) SaveTurn(ctx context.Context, userID, sessionID string, turn chat.Turn) error {
	commands, err := json.Marshal(turn.CommandsExecuted)
	if err != nil {
		return fmt.Errorf("store: encode commands: %w", err)
	}
	var classification []byte
	if turn.Classification != nil {
		classification, err = json.Marshal(turn.Classification)
		if err != nil {
			return fmt.Errorf("store: encode classification: %w", err)
		}
	}

	ts := turn.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chat_turns (
			id, user_id, session_id, role, message,
			commands_executed, classification, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.New(), userID, sessionID, turn.Role, turn.Message,
		commands, nullableJSON(classification), ts,
	)
	if err != nil {
		return fmt.Errorf("store: insert turn: %w", err)
	}
	return nil
}

func (s *Postgres) LoadTurns(ctx context.Context, sessionID string) ([]chat.Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, message, commands_executed, classification, created_at
		FROM chat_turns
		WHERE session_id = $1
		ORDER BY created_at, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: query turns: %w", err)
	}
	defer rows.Close()

	var turns []chat.Turn
	for rows.Next() {
		var (
			turn           chat.Turn
			commands       []byte
			classification []byte
		)
		if err := rows.Scan(&turn.Role, &turn.Message, &commands, &classification, &turn.Timestamp); err != nil {
			return nil, fmt.Errorf("store: scan turn: %w", err)
		}
		if len(commands) > 0 {
			if err := json.Unmarshal(commands, &turn.CommandsExecuted); err != nil {
				return nil, fmt.Errorf("store: decode commands: %w", err)
			}
		}
		if len(classification) > 0 {
			var c classify.Classification
			if err := json.Unmarshal(classification, &c); err != nil {
				return nil, fmt.Errorf("store: decode classification: %w", err)
			}
			turn.Classification = &c
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate turns: %w", err)
	}
	return turns, nil
}

func (s *Postgres) DeleteHistory(ctx context.Context, _, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_turns WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("store: delete history: %w", err)
	}
	return nil
}

func (s *Postgres) ActiveLLMConfig(ctx context.Context) (llm.Config, error) {
	var cfg llm.Config
	err := s.db.QueryRowContext(ctx, `
		SELECT provider, api_key, endpoint_url, model
		FROM llm_configs
		WHERE is_active = TRUE
		LIMIT 1
	`).Scan(&cfg.Provider, &cfg.APIKey, &cfg.EndpointURL, &cfg.Model)
	if err == sql.ErrNoRows {
		return llm.Config{}, ErrNoActiveLLMConfig
	}
	if err != nil {
		return llm.Config{}, fmt.Errorf("store: query llm config: %w", err)
	}
	return cfg, nil
}

// ActiveKubeconfig returns the selected kubeconfig profile. No active row is
// not an error; the executor then uses the environment default.
func (s *Postgres) ActiveKubeconfig(ctx context.Context) (KubeconfigProfile, error) {
	var p KubeconfigProfile
	err := s.db.QueryRowContext(ctx, `
		SELECT name, path
		FROM kubeconfigs
		WHERE is_active = TRUE
		LIMIT 1
	`).Scan(&p.Name, &p.Path)
	if err == sql.ErrNoRows {
		return KubeconfigProfile{}, nil
	}
	if err != nil {
		return KubeconfigProfile{}, fmt.Errorf("store: query kubeconfig: %w", err)
	}
	return p, nil
}

// MaxCommandsPreference returns the user's command cap; 0 means unset.
func (s *Postgres) MaxCommandsPreference(ctx context.Context, userID string) (int, error) {
	var limit int
	err := s.db.QueryRowContext(ctx, `
		SELECT max_commands FROM user_preferences WHERE user_id = $1
	`, userID).Scan(&limit)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("store: query preference: %w", err)
	}
	return limit, nil
}

func (s *Postgres) LogActivity(ctx context.Context, userID, actionType string, success bool, detail string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log (id, user_id, action_type, success, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), userID, actionType, success, detail, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: insert activity: %w", err)
	}
	return nil
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
