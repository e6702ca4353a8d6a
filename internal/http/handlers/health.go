package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/mehdi-chebbi/k8s-chat/internal/kube"
)

type clusterProber interface {
	Probe(ctx context.Context) kube.CommandResult
}

// HealthHandler reports service liveness plus a cached kubectl probe. The
// probe is rate limited so health checks cannot hammer the cluster.
type HealthHandler struct {
	prober      clusterProber
	cacheWindow time.Duration

	mu        sync.Mutex
	last      kube.CommandResult
	checkedAt time.Time
}

func NewHealthHandler(prober clusterProber, cacheWindow time.Duration) *HealthHandler {
	if cacheWindow <= 0 {
		cacheWindow = 30 * time.Second
	}
	return &HealthHandler{prober: prober, cacheWindow: cacheWindow}
}

type healthResponse struct {
	Status  string      `json:"status"`
	Kubectl kubectlInfo `json:"kubectl"`
}

type kubectlInfo struct {
	Available        bool      `json:"available"`
	ClusterReachable bool      `json:"cluster_reachable"`
	CheckedAt        time.Time `json:"checked_at"`
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	result, checkedAt := h.probe(r.Context())

	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Kubectl: kubectlInfo{
			Available:        result.ToolAvailable,
			ClusterReachable: result.TargetReachable && result.Success,
			CheckedAt:        checkedAt,
		},
	})
}

func (h *HealthHandler) probe(ctx context.Context) (kube.CommandResult, time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.checkedAt.IsZero() && time.Since(h.checkedAt) < h.cacheWindow {
		return h.last, h.checkedAt
	}
	h.last = h.prober.Probe(ctx)
	h.checkedAt = time.Now().UTC()
	return h.last, h.checkedAt
}
