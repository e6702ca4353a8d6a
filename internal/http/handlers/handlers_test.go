package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehdi-chebbi/k8s-chat/internal/chat"
	"github.com/mehdi-chebbi/k8s-chat/internal/kube"
	"github.com/mehdi-chebbi/k8s-chat/internal/llm"
	"github.com/mehdi-chebbi/k8s-chat/internal/store"
)

type stubChatService struct {
	lastReq  chat.Request
	resp     *chat.Response
	err      error
	turns    []chat.Turn
	cleared  []string
	histErr  error
	clearErr error
}

func (s *stubChatService) ProcessTurn(_ context.Context, req chat.Request) (*chat.Response, error) {
	s.lastReq = req
	return s.resp, s.err
}

func (s *stubChatService) History(context.Context, string) ([]chat.Turn, error) {
	return s.turns, s.histErr
}

func (s *stubChatService) ClearHistory(_ context.Context, _, sessionID string) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.cleared = append(s.cleared, sessionID)
	return nil
}

func chatRouter(svc chatService) http.Handler {
	h := NewChatHandler(svc, nil)
	r := chi.NewRouter()
	r.Post("/chat", h.Chat)
	r.Get("/sessions/{sessionID}/history", h.GetHistory)
	r.Delete("/sessions/{sessionID}/history", h.DeleteHistory)
	return r
}

func TestChatHandlerSuccess(t *testing.T) {
	svc := &stubChatService{resp: &chat.Response{
		SessionID:    "s1",
		Response:     "all good",
		AnalysisType: chat.AnalysisAdviceOnly,
	}}

	req := httptest.NewRequest(http.MethodPost, "/chat",
		strings.NewReader(`{"session_id":"s1","message":"how are my pods?"}`))
	req.Header.Set("X-User-ID", "u42")
	rec := httptest.NewRecorder()
	chatRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u42", svc.lastReq.UserID)
	assert.Equal(t, "how are my pods?", svc.lastReq.Message)

	var resp chat.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "all good", resp.Response)
}

func TestChatHandlerDefaultsAnonymousUser(t *testing.T) {
	svc := &stubChatService{resp: &chat.Response{}}

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
	rec := httptest.NewRecorder()
	chatRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, anonymousUser, svc.lastReq.UserID)
}

func TestChatHandlerBadJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	chatRouter(&stubChatService{}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{broken")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHandlerEmptyMessage(t *testing.T) {
	svc := &stubChatService{err: chat.ErrEmptyMessage}

	rec := httptest.NewRecorder()
	chatRouter(svc).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":""}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHandlerInternalErrorIsGeneric(t *testing.T) {
	svc := &stubChatService{err: errors.New("pq: connection refused to db-internal-host")}

	rec := httptest.NewRecorder()
	chatRouter(svc).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db-internal-host")
}

func TestGetHistory(t *testing.T) {
	svc := &stubChatService{turns: []chat.Turn{
		{Role: chat.RoleUser, Message: "hi"},
		{Role: chat.RoleAssistant, Message: "hello"},
	}}

	rec := httptest.NewRecorder()
	chatRouter(svc).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/sessions/s1/history", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		SessionID string      `json:"session_id"`
		History   []chat.Turn `json:"history"`
		Count     int         `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, 2, resp.Count)
}

func TestDeleteHistory(t *testing.T) {
	svc := &stubChatService{}

	rec := httptest.NewRecorder()
	chatRouter(svc).ServeHTTP(rec,
		httptest.NewRequest(http.MethodDelete, "/sessions/s1/history", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"s1"}, svc.cleared)
}

type stubConfigSource struct {
	cfg llm.Config
	err error
}

func (s stubConfigSource) ActiveLLMConfig(context.Context) (llm.Config, error) {
	return s.cfg, s.err
}

type stubTester struct{ status llm.ConnectionStatus }

func (s stubTester) TestConnection(context.Context) llm.ConnectionStatus { return s.status }

func TestLLMTestHandler(t *testing.T) {
	h := NewLLMTestHandler(
		stubConfigSource{cfg: llm.Config{Provider: llm.ProviderLocal, Model: "m"}},
		func(cfg llm.Config) connectionTester {
			return stubTester{status: llm.ConnectionStatus{Connected: true, Provider: cfg.Provider, Model: cfg.Model}}
		}, nil)

	rec := httptest.NewRecorder()
	h.Test(rec, httptest.NewRequest(http.MethodPost, "/llm/test", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var status llm.ConnectionStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Connected)
	assert.Equal(t, "m", status.Model)
}

func TestLLMTestHandlerNoActiveConfig(t *testing.T) {
	h := NewLLMTestHandler(stubConfigSource{err: store.ErrNoActiveLLMConfig}, nil, nil)

	rec := httptest.NewRecorder()
	h.Test(rec, httptest.NewRequest(http.MethodPost, "/llm/test", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type countingProber struct {
	calls  int
	result kube.CommandResult
}

func (p *countingProber) Probe(context.Context) kube.CommandResult {
	p.calls++
	return p.result
}

func TestHealthHandlerCachesProbe(t *testing.T) {
	prober := &countingProber{result: kube.CommandResult{
		Success: true, ToolAvailable: true, TargetReachable: true,
	}}
	h := NewHealthHandler(prober, time.Minute)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 1, prober.calls)
}

func TestHealthHandlerReportsUnreachableCluster(t *testing.T) {
	prober := &countingProber{result: kube.CommandResult{
		Success: false, ToolAvailable: true, TargetReachable: false,
	}}
	h := NewHealthHandler(prober, time.Minute)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Kubectl.Available)
	assert.False(t, resp.Kubectl.ClusterReachable)
}
