package kube

import "time"

// CommandResult is the uniform outcome of one diagnostic command. Every
// invocation produces exactly one of these; execution never surfaces a Go
// error to callers. The ToolAvailable/TargetReachable flags keep a missing
// kubectl binary distinguishable from an unreachable cluster so the analysis
// step can phrase the right remediation.
type CommandResult struct {
	Command         string    `json:"command"`
	Success         bool      `json:"success"`
	Stdout          string    `json:"stdout"`
	Stderr          string    `json:"stderr"`
	ExitCode        int       `json:"return_code"`
	ToolAvailable   bool      `json:"tool_available"`
	TargetReachable bool      `json:"target_reachable"`
	Timestamp       time.Time `json:"timestamp"`
	Err             string    `json:"error,omitempty"`
}

// FileEntry is one record parsed from `ls -la` output inside a pod.
type FileEntry struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Permissions string `json:"permissions"`
	Owner       string `json:"owner"`
	Group       string `json:"group"`
	Size        int64  `json:"size"`
	Modified    string `json:"modified"`
}
