package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehdi-chebbi/k8s-chat/internal/chat"
	"github.com/mehdi-chebbi/k8s-chat/internal/classify"
	"github.com/mehdi-chebbi/k8s-chat/internal/kube"
)

// newBackend starts a chat-completions stub. Each request body is recorded so
// tests can assert on the prompt that was sent.
func newBackend(t *testing.T, status int, content string) (*httptest.Server, *[]string) {
	t.Helper()
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(raw))
		if status != http.StatusOK {
			http.Error(w, "backend exploded", status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv, &bodies
}

func localClient(srv *httptest.Server) *Client {
	return New(Config{Provider: ProviderLocal, EndpointURL: srv.URL, Model: "test-model"})
}

func TestSuggestCommandsCapsModelOutput(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK,
		"kubectl get pods\nkubectl get svc\nkubectl get deploy\nkubectl get nodes")

	cmds := localClient(srv).SuggestCommands(context.Background(), "what is broken?", nil)

	assert.Len(t, cmds, 3)
	assert.Equal(t, "kubectl get pods", cmds[0])
}

func TestSuggestCommandsBackendDownReturnsNil(t *testing.T) {
	srv, _ := newBackend(t, http.StatusInternalServerError, "")

	var fallbackOp string
	c := New(Config{Provider: ProviderLocal, EndpointURL: srv.URL, Model: "test-model"},
		WithFallbackHook(func(op string) { fallbackOp = op }))

	cmds := c.SuggestCommands(context.Background(), "what is broken?", nil)

	assert.Nil(t, cmds)
	assert.Equal(t, "suggest", fallbackOp)
}

func TestSuggestFollowUpsCap(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK,
		"kubectl describe pod web-0\nkubectl logs web-0\nkubectl get events")

	outputs := kube.NewOutputSet()
	outputs.Add("kubectl get pods", "initial", kube.CommandResult{Success: true, Stdout: "web-0 CrashLoopBackOff"})

	cmds := localClient(srv).SuggestFollowUps(context.Background(), "why crashing?", outputs, nil)

	assert.Len(t, cmds, 2)
}

func TestHistoryWindowBoundsPrompt(t *testing.T) {
	srv, bodies := newBackend(t, http.StatusOK, "kubectl get pods")

	c := New(Config{Provider: ProviderLocal, EndpointURL: srv.URL, Model: "test-model"},
		WithHistoryWindow(2))
	history := []chat.Turn{
		{Role: chat.RoleUser, Message: "oldest question"},
		{Role: chat.RoleAssistant, Message: "oldest answer"},
		{Role: chat.RoleUser, Message: "latest question"},
		{Role: chat.RoleAssistant, Message: "latest answer"},
	}
	c.SuggestCommands(context.Background(), "what now?", history)

	require.Len(t, *bodies, 1)
	assert.Contains(t, (*bodies)[0], "latest answer")
	assert.NotContains(t, (*bodies)[0], "oldest question")
}

func TestAnalyzeOutputsSendsTriageFlags(t *testing.T) {
	srv, bodies := newBackend(t, http.StatusOK, "Your cluster is unreachable.")

	outputs := kube.NewOutputSet()
	outputs.Add("kubectl get pods", "initial", kube.CommandResult{
		ToolAvailable:   true,
		TargetReachable: false,
		Err:             "cluster connection error: connection refused",
	})
	outputs.Add("kubectl version", "initial", kube.CommandResult{
		ToolAvailable:   false,
		TargetReachable: true,
	})

	answer := localClient(srv).AnalyzeOutputs(context.Background(), "is my cluster ok?", outputs, nil)

	assert.Equal(t, "Your cluster is unreachable.", answer)
	require.Len(t, *bodies, 1)
	assert.Contains(t, (*bodies)[0], "cluster unreachable")
	assert.Contains(t, (*bodies)[0], "kubectl is not installed")
}

func TestAnalyzeOutputsEmptySetStatesNoData(t *testing.T) {
	srv, bodies := newBackend(t, http.StatusOK, "I could not gather data.")

	localClient(srv).AnalyzeOutputs(context.Background(), "how are my pods?", kube.NewOutputSet(), nil)

	require.Len(t, *bodies, 1)
	assert.Contains(t, (*bodies)[0], "No command outputs were collected")
}

func TestAnalyzeOutputsFallsBackWhenBackendDown(t *testing.T) {
	srv, _ := newBackend(t, http.StatusBadGateway, "")

	answer := localClient(srv).AnalyzeOutputs(context.Background(), "why are my pods crashing?", kube.NewOutputSet(), nil)

	assert.Contains(t, answer, "kubectl get pods")
	assert.Contains(t, answer, "CrashLoopBackOff")
}

func TestFallbackAnalysisPicksIntent(t *testing.T) {
	assert.Contains(t, fallbackAnalysis("is the cluster healthy?"), "kubectl cluster-info")
	assert.Contains(t, fallbackAnalysis("my pod keeps dying"), "kubectl describe pods")
	assert.Contains(t, fallbackAnalysis("help"), "kubectl get deployments")
}

func TestTestConnection(t *testing.T) {
	up, _ := newBackend(t, http.StatusOK, "ok")
	status := localClient(up).TestConnection(context.Background())
	assert.True(t, status.Connected)
	assert.Equal(t, ProviderLocal, status.Provider)
	assert.Equal(t, "test-model", status.Model)
	assert.GreaterOrEqual(t, status.LatencyMS, int64(0))

	down, _ := newBackend(t, http.StatusServiceUnavailable, "")
	status = localClient(down).TestConnection(context.Background())
	assert.False(t, status.Connected)
	assert.NotEmpty(t, status.Error)
}

func TestHostedProviderSendsIdentificationHeaders(t *testing.T) {
	var referer, title string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		referer = r.Header.Get("HTTP-Referer")
		title = r.Header.Get("X-Title")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "pong"}},
			},
		})
	}))
	t.Cleanup(srv.Close)

	c := New(Config{
		Provider:    ProviderOpenRouter,
		EndpointURL: srv.URL,
		APIKey:      "sk-test",
		Model:       "test-model",
		SiteURL:     "https://example.test",
		SiteName:    "example",
	})
	c.TestConnection(context.Background())

	assert.Equal(t, "https://example.test", referer)
	assert.Equal(t, "example", title)
}

func TestLocalBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/v1", localBaseURL(""))
	assert.Equal(t, "http://box:9000/v1", localBaseURL("http://box:9000"))
	assert.Equal(t, "http://box:9000/v1", localBaseURL("http://box:9000/"))
	assert.Equal(t, "http://box:9000/v1", localBaseURL("http://box:9000/v1"))
}

func TestSuggestClassificationParsesFencedJSON(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK, "```json\n"+
		`{"type":"deep_analysis","complexity_score":0.8,"confidence":0.9,"max_commands_suggested":3,"follow_up_allowed":true,"reasoning":"multi-resource"}`+
		"\n```")

	c, err := localClient(srv).SuggestClassification(context.Background(), "debug the cluster", nil)

	require.NoError(t, err)
	assert.Equal(t, classify.CategoryDeepAnalysis, c.Category)
	assert.True(t, c.FollowUpAllowed)
	assert.Equal(t, 3, c.SuggestedMaxCommands)
}

func TestSuggestClassificationRejectsProse(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK, "I think this is a deep analysis question.")

	_, err := localClient(srv).SuggestClassification(context.Background(), "debug", nil)

	assert.Error(t, err)
}
