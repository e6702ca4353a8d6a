package llm

import "strings"

// ExtractCommands pulls kubectl invocations out of free-form model output.
// Models wrap suggestions in bullets, numbering, backticks, and code fences;
// everything that is not a recognizable "kubectl ..." line is discarded.
// Duplicates are dropped and the result is capped at max.
func ExtractCommands(text string, max int) []string {
	var commands []string
	seen := make(map[string]struct{})

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		line = stripListMarker(line)
		line = strings.Trim(line, "`")

		idx := strings.Index(line, "kubectl ")
		if idx < 0 {
			continue
		}
		cmd := strings.TrimSpace(line[idx:])
		if cmd == "kubectl" || cmd == "kubectl " {
			continue
		}
		if _, dup := seen[cmd]; dup {
			continue
		}
		seen[cmd] = struct{}{}
		commands = append(commands, cmd)
		if len(commands) == max {
			break
		}
	}
	return commands
}

// stripListMarker removes a leading bullet or "1." style numbering.
func stripListMarker(line string) string {
	for _, marker := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):])
		}
	}
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) && (line[i] == '.' || line[i] == ')') {
		return strings.TrimSpace(line[i+1:])
	}
	return line
}
