package kube

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrPathRejected marks an in-pod path that failed validation.
var ErrPathRejected = errors.New("kube: path rejected")

// ReadPodFile returns the content of a file inside a running pod. Only a
// plain cat is ever issued, and the path is vetted first.
func (e *Executor) ReadPodFile(ctx context.Context, namespace, pod, path string) (string, error) {
	if ok, reason := CheckPath(path); !ok {
		return "", fmt.Errorf("%w: %s", ErrPathRejected, reason)
	}
	res := e.Run(ctx, []string{"exec", pod, "-n", namespace, "--", "cat", path})
	if !res.Success {
		return "", readFailure("read file", res)
	}
	return res.Stdout, nil
}

// BrowsePodFiles lists a directory inside a running pod as structured
// entries.
func (e *Executor) BrowsePodFiles(ctx context.Context, namespace, pod, path string) ([]FileEntry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "/"
	}
	if ok, reason := CheckPath(path); !ok {
		return nil, fmt.Errorf("%w: %s", ErrPathRejected, reason)
	}
	res := e.Run(ctx, []string{"exec", pod, "-n", namespace, "--", "ls", "-la", path})
	if !res.Success {
		return nil, readFailure("list files", res)
	}
	return ParseLsOutput(res.Stdout), nil
}

func readFailure(op string, res CommandResult) error {
	detail := strings.TrimSpace(res.Stderr)
	if detail == "" {
		detail = res.Err
	}
	return fmt.Errorf("kube: failed to %s: %s", op, detail)
}
