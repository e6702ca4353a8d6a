package kube

import (
	"fmt"
	"strings"
)

// readOnlyVerbs is the allow list for the first kubectl argument. Anything
// outside this set is dropped before execution, including exec: the only
// in-pod reads go through ReadPodFile/BrowsePodFiles, which vet their path
// argument separately.
var readOnlyVerbs = map[string]struct{}{
	"get":           {},
	"describe":      {},
	"logs":          {},
	"top":           {},
	"explain":       {},
	"events":        {},
	"version":       {},
	"api-resources": {},
	"api-versions":  {},
	"cluster-info":  {},
}

// chainingChars would let one suggested command smuggle in a second one.
// Arguments are passed as an exec argv, never through a shell, so these are
// inert at execution time, but a command carrying them is never legitimate.
const chainingChars = "|&;`$"

// pathUnsafeChars additionally covers substitution syntax for strings that
// end up inside a pod as a file path argument.
const pathUnsafeChars = "|&;`$()"

// CheckCommand decides whether a raw command string, as written by the
// model, may be executed. Returns the reason when it may not.
func CheckCommand(raw string) (bool, string) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) > 0 && fields[0] == "kubectl" {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return false, "empty command"
	}
	if strings.ContainsAny(raw, chainingChars) {
		return false, "command contains shell control characters"
	}
	verb := strings.ToLower(fields[0])
	if _, ok := readOnlyVerbs[verb]; !ok {
		return false, fmt.Sprintf("verb %q is not read-only", verb)
	}
	return true, ""
}

// CheckPath vets a file path destined for an in-pod read.
func CheckPath(path string) (bool, string) {
	path = strings.TrimSpace(path)
	if path == "" {
		return false, "empty path"
	}
	if strings.ContainsAny(path, pathUnsafeChars) {
		return false, "invalid characters in path"
	}
	return true, ""
}

// CommandArgs splits a vetted command string into the argument vector for
// the executor, dropping the leading tool name if present.
func CommandArgs(raw string) []string {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) > 0 && fields[0] == "kubectl" {
		fields = fields[1:]
	}
	return fields
}
