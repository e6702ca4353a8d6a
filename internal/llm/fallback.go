package llm

import "strings"

// Canned analyses returned when the backend is unavailable. The turn still
// completes; the user gets commands they can run by hand.

const clusterHealthFallback = `I'm having trouble reaching my AI backend right now, but I can still point you at cluster health basics.

To check your cluster health, run:
` + "```bash" + `
kubectl cluster-info
kubectl get nodes
kubectl get namespaces
kubectl get pods --all-namespaces
` + "```" + `

What to look for:
- Nodes in Ready status
- Namespaces in Active status
- Pods in Running state
- Any error conditions`

const podAnalysisFallback = `I'm having trouble reaching my AI backend right now. For pod analysis, try these commands:

` + "```bash" + `
kubectl get pods --all-namespaces
kubectl describe pods
kubectl logs <pod-name>
kubectl get pods -n <namespace>
` + "```" + `

Look for pods with issues like:
- CrashLoopBackOff
- ImagePullBackOff
- Pending
- Error`

const genericFallback = `I'm having trouble reaching my AI backend right now. Please try again in a few moments.

In the meantime, these basic kubectl commands cover most questions:
` + "```bash" + `
kubectl get pods
kubectl get services
kubectl get deployments
kubectl get nodes
` + "```"

// fallbackAnalysis picks the canned response closest to what was asked.
func fallbackAnalysis(question string) string {
	lower := strings.ToLower(question)
	switch {
	case strings.Contains(lower, "health") || strings.Contains(lower, "cluster") || strings.Contains(lower, "node"):
		return clusterHealthFallback
	case strings.Contains(lower, "pod") || strings.Contains(lower, "crash") || strings.Contains(lower, "log"):
		return podAnalysisFallback
	default:
		return genericFallback
	}
}
