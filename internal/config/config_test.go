package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "kubectl", cfg.KubectlBin)
	assert.Equal(t, "", cfg.KubeconfigPath)
	assert.Equal(t, 30*time.Second, cfg.CommandTimeout)
	assert.Equal(t, 10*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 2*time.Minute, cfg.LLMAnalyzeTimeout)
	assert.Equal(t, []string{"moderate_investigation", "deep_analysis"}, cfg.FollowUpCategories)
	assert.Equal(t, 10, cfg.HistoryWindow)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("COMMAND_TIMEOUT", "45s")
	t.Setenv("KUBECTL_BIN", "/usr/local/bin/kubectl")
	t.Setenv("FOLLOWUP_CATEGORIES", "deep_analysis")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	assert.Equal(t, 45*time.Second, cfg.CommandTimeout)
	assert.Equal(t, "/usr/local/bin/kubectl", cfg.KubectlBin)
	assert.Equal(t, []string{"deep_analysis"}, cfg.FollowUpCategories)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("COMMAND_TIMEOUT", "not-a-duration")
	t.Setenv("HISTORY_WINDOW", "many")

	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.CommandTimeout)
	assert.Equal(t, 10, cfg.HistoryWindow)
}
