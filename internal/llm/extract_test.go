package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCommandsFromMarkdown(t *testing.T) {
	text := "Here are the commands to run:\n" +
		"```bash\n" +
		"kubectl get pods -n default\n" +
		"kubectl describe pod web-0\n" +
		"```\n" +
		"These should show the problem."

	cmds := ExtractCommands(text, 3)

	assert.Equal(t, []string{
		"kubectl get pods -n default",
		"kubectl describe pod web-0",
	}, cmds)
}

func TestExtractCommandsFromBulletsAndNumbering(t *testing.T) {
	text := "- kubectl get pods\n" +
		"* `kubectl describe pod web-0`\n" +
		"1. kubectl logs web-0 --tail 100\n" +
		"2) kubectl top nodes\n"

	cmds := ExtractCommands(text, 10)

	assert.Equal(t, []string{
		"kubectl get pods",
		"kubectl describe pod web-0",
		"kubectl logs web-0 --tail 100",
		"kubectl top nodes",
	}, cmds)
}

func TestExtractCommandsCap(t *testing.T) {
	text := "kubectl get pods\nkubectl get svc\nkubectl get deploy\nkubectl get nodes\nkubectl get ns"

	assert.Len(t, ExtractCommands(text, 3), 3)
	assert.Len(t, ExtractCommands(text, 2), 2)
}

func TestExtractCommandsIgnoresProseAndDuplicates(t *testing.T) {
	text := "You should check your pods.\n" +
		"kubectl get pods\n" +
		"Run kubectl get pods\n" +
		"kubectl\n" +
		"Then look at the events.\n"

	cmds := ExtractCommands(text, 5)

	assert.Equal(t, []string{"kubectl get pods"}, cmds)
}

func TestExtractCommandsEmptyInput(t *testing.T) {
	assert.Empty(t, ExtractCommands("", 3))
	assert.Empty(t, ExtractCommands("no commands here", 3))
}
