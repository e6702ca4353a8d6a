package llm

import (
	"fmt"
	"strings"

	"github.com/mehdi-chebbi/k8s-chat/internal/kube"
)

const suggestSystemPrompt = `You are a Kubernetes expert. Based on the user's question, suggest the most appropriate kubectl commands to investigate their issue.

Rules:
- Suggest ONLY read-only kubectl commands (get, describe, logs, top, events)
- Suggest at most 3 commands
- One command per line, starting with "kubectl "
- Use concrete resource names from the question where available
- No explanations, just the commands

Example:
- kubectl get pods -l app=nginx
- kubectl describe pod <nginx-pod-name>
- kubectl logs <nginx-pod-name>`

const followUpSystemPrompt = `You are a Kubernetes expert. Based on the initial investigation results, suggest follow-up commands to dig deeper into any issues found.

Rules:
- Suggest ONLY read-only kubectl commands (get, describe, logs, top, events)
- Suggest at most 2 commands
- One command per line, starting with "kubectl "
- Target the specific resources that showed problems
- If nothing looks wrong, suggest nothing`

const analyzeSystemPrompt = `You are a Kubernetes expert analyzing command outputs to help the user.

Your task:
1. Analyze the provided kubectl command outputs
2. Identify any issues, problems, or important information
3. Provide clear, actionable insights
4. Suggest specific next steps if there are problems
5. Be conversational and helpful

Focus on:
- Pod status issues (CrashLoopBackOff, ImagePullBackOff, Pending, etc.)
- Resource constraints (CPU, memory)
- Configuration problems
- Network issues
- Error messages and their meanings

Only use the real data in the outputs. If no outputs are provided, say you
could not gather data from the cluster and do not invent cluster facts. If an
output says kubectl is missing, tell the user to install kubectl. If an output
shows a cluster connection error, tell the user to check that the cluster is
running and the kubeconfig is valid.`

const classifySystemPrompt = `You classify Kubernetes support questions. Respond with ONLY a JSON object:
{"type": one of "direct_advice", "simple_lookup", "moderate_investigation", "deep_analysis",
 "complexity_score": 0.0-1.0, "confidence": 0.0-1.0,
 "max_commands_suggested": 0-3, "follow_up_allowed": true/false,
 "reasoning": short string}

Guidance:
- direct_advice: conceptual or how-to questions, no cluster data needed (0 commands)
- simple_lookup: a single listing answers it (1 command, no follow-up)
- moderate_investigation: a specific problem to look into (up to 3 commands)
- deep_analysis: multi-resource or intermittent problems (up to 3 commands, follow-up)`

func analysisUserMessage(question string, outputs *kube.OutputSet) string {
	if outputs == nil || outputs.Empty() {
		return fmt.Sprintf("User question: %s\n\nNo command outputs were collected for this question.", question)
	}
	return fmt.Sprintf("User question: %s\n\nCommand outputs:%s", question, formatOutputs(outputs))
}

// formatOutputs renders collected results in execution order, surfacing the
// executor's triage flags so the model can distinguish a missing tool from an
// unreachable cluster from an ordinary command failure.
func formatOutputs(outputs *kube.OutputSet) string {
	if outputs == nil || outputs.Empty() {
		return "\n(no outputs)"
	}
	var b strings.Builder
	for _, key := range outputs.Keys() {
		res, ok := outputs.Get(key)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n\nCommand: %s\n", key)
		switch {
		case !res.ToolAvailable:
			b.WriteString("Result: kubectl is not installed or not in PATH\n")
		case !res.TargetReachable:
			fmt.Fprintf(&b, "Result: cluster unreachable\nError:\n%s\n", firstNonEmpty(res.Err, res.Stderr))
		case res.Success:
			fmt.Fprintf(&b, "Output:\n%s\n", firstNonEmpty(res.Stdout, "(empty)"))
		default:
			fmt.Fprintf(&b, "Error (exit %d):\n%s\n", res.ExitCode, firstNonEmpty(res.Stderr, res.Err))
		}
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
