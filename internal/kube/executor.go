package kube

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/mehdi-chebbi/k8s-chat/pkg/logging"
)

const (
	defaultCommandTimeout = 30 * time.Second
	defaultProbeTimeout   = 10 * time.Second
)

// unreachablePatterns in stderr mean the cluster, not the command, is the
// problem with the active kubeconfig.
var unreachablePatterns = []string{
	"unable to connect",
	"connection refused",
	"no configuration",
	"invalid configuration",
}

// Options configures an Executor.
type Options struct {
	// Binary is the kubectl executable name or absolute path.
	Binary string
	// KubeconfigPath, when non-empty, is passed via --kubeconfig so an
	// admin-activated connection profile overrides the ambient default.
	KubeconfigPath string
	Timeout        time.Duration
	ProbeTimeout   time.Duration
	Logger         *logging.Logger
}

// Executor runs validated diagnostic commands against the live cluster.
// Each invocation is a fresh kubectl process with a bounded timeout.
type Executor struct {
	binary       string
	kubeconfig   string
	timeout      time.Duration
	probeTimeout time.Duration
	logger       *logging.Logger
}

// NewExecutor returns an executor with defaults applied.
func NewExecutor(opts Options) *Executor {
	if opts.Binary == "" {
		opts.Binary = "kubectl"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultCommandTimeout
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = defaultProbeTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	return &Executor{
		binary:       opts.Binary,
		kubeconfig:   opts.KubeconfigPath,
		timeout:      opts.Timeout,
		probeTimeout: opts.ProbeTimeout,
		logger:       opts.Logger,
	}
}

// Run executes one command with the standard timeout.
func (e *Executor) Run(ctx context.Context, args []string) CommandResult {
	return e.run(ctx, args, e.timeout)
}

// Probe is a lightweight connectivity check against the cluster.
func (e *Executor) Probe(ctx context.Context) CommandResult {
	return e.run(ctx, []string{"cluster-info"}, e.probeTimeout)
}

func (e *Executor) run(ctx context.Context, args []string, timeout time.Duration) (res CommandResult) {
	full := e.fullArgs(args)
	res = CommandResult{
		Command:         e.binary + " " + strings.Join(full, " "),
		ToolAvailable:   true,
		TargetReachable: true,
		Timestamp:       time.Now().UTC(),
	}

	// Nothing may escape this function: an unexpected fault becomes a
	// failed CommandResult, not a panic in the turn pipeline.
	defer func() {
		if r := recover(); r != nil {
			res.Success = false
			res.ExitCode = -1
			res.Err = fmt.Sprintf("unexpected execution fault: %v", r)
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	e.logger.Info("executing diagnostic command", "command", res.Command)

	cmd := exec.CommandContext(runCtx, e.binary, full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	switch {
	case errors.Is(err, exec.ErrNotFound):
		res.ToolAvailable = false
		res.ExitCode = -1
		res.Err = fmt.Sprintf("%s not found - install it or ensure it is in PATH", e.binary)

	case err != nil && stderrUnreachable(res.Stderr):
		res.TargetReachable = false
		res.ExitCode = exitCode(err)
		res.Err = "cluster connection error: " + strings.TrimSpace(res.Stderr)

	case runCtx.Err() == context.DeadlineExceeded:
		res.ExitCode = -1
		res.Err = fmt.Sprintf("timed out after %ds", int(timeout.Seconds()))

	case err != nil:
		res.ExitCode = exitCode(err)
		if res.ExitCode == -1 {
			res.Err = err.Error()
		}

	default:
		res.Success = true
	}

	if res.Success {
		e.logger.Debug("command succeeded", "command", res.Command)
	} else {
		e.logger.Warn("command failed",
			"command", res.Command,
			"exit_code", res.ExitCode,
			"tool_available", res.ToolAvailable,
			"target_reachable", res.TargetReachable,
			"error", res.Err,
		)
	}
	return res
}

func (e *Executor) fullArgs(args []string) []string {
	if e.kubeconfig == "" {
		return args
	}
	full := make([]string, 0, len(args)+2)
	full = append(full, "--kubeconfig", e.kubeconfig)
	return append(full, args...)
}

func stderrUnreachable(stderr string) bool {
	lower := strings.ToLower(stderr)
	for _, p := range unreachablePatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
