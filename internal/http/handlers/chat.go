package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mehdi-chebbi/k8s-chat/internal/chat"
	"github.com/mehdi-chebbi/k8s-chat/pkg/logging"
)

const anonymousUser = "anonymous"

type chatService interface {
	ProcessTurn(ctx context.Context, req chat.Request) (*chat.Response, error)
	History(ctx context.Context, sessionID string) ([]chat.Turn, error)
	ClearHistory(ctx context.Context, userID, sessionID string) error
}

// ChatHandler exposes the diagnostic pipeline over HTTP.
type ChatHandler struct {
	svc    chatService
	logger *logging.Logger
}

func NewChatHandler(svc chatService, logger *logging.Logger) *ChatHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{svc: svc, logger: logger}
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	req.UserID = userID(r)

	resp, err := h.svc.ProcessTurn(r.Context(), req)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			http.Error(w, "message is required", http.StatusBadRequest)
			return
		}
		h.logger.Error("chat turn failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetHistory handles GET /sessions/{sessionID}/history.
func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	turns, err := h.svc.History(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("history load failed", "session_id", sessionID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if turns == nil {
		turns = []chat.Turn{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"history":    turns,
		"count":      len(turns),
	})
}

// DeleteHistory handles DELETE /sessions/{sessionID}/history.
func (h *ChatHandler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.svc.ClearHistory(r.Context(), userID(r), sessionID); err != nil {
		h.logger.Error("history delete failed", "session_id", sessionID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"status":     "cleared",
	})
}

func userID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return anonymousUser
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
