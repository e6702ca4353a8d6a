package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/mehdi-chebbi/k8s-chat/internal/llm"
	"github.com/mehdi-chebbi/k8s-chat/internal/store"
	"github.com/mehdi-chebbi/k8s-chat/pkg/logging"
)

type llmConfigSource interface {
	ActiveLLMConfig(ctx context.Context) (llm.Config, error)
}

type connectionTester interface {
	TestConnection(ctx context.Context) llm.ConnectionStatus
}

// LLMTestHandler probes the active LLM backend on demand.
type LLMTestHandler struct {
	configs llmConfigSource
	build   func(llm.Config) connectionTester
	logger  *logging.Logger
}

func NewLLMTestHandler(configs llmConfigSource, build func(llm.Config) connectionTester, logger *logging.Logger) *LLMTestHandler {
	if build == nil {
		build = func(cfg llm.Config) connectionTester { return llm.New(cfg) }
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LLMTestHandler{configs: configs, build: build, logger: logger}
}

// Test handles POST /llm/test.
func (h *LLMTestHandler) Test(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configs.ActiveLLMConfig(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNoActiveLLMConfig) {
			http.Error(w, "no active llm configuration", http.StatusNotFound)
			return
		}
		h.logger.Error("llm config lookup failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	status := h.build(cfg).TestConnection(r.Context())
	writeJSON(w, http.StatusOK, status)
}
