package kube

import (
	"strconv"
	"strings"
)

// ParseLsOutput converts `ls -la` output into structured entries. It is a
// pure function kept separate from the executor so parsing bugs cannot mask
// execution failures. Lines that do not look like a long-format entry are
// skipped rather than failing the whole listing.
func ParseLsOutput(out string) []FileEntry {
	var entries []FileEntry
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "total") {
			continue
		}

		// -rw-r--r-- 1 root root 1234 Jan 1 12:00 filename
		parts := strings.Fields(line)
		if len(parts) < 9 || !looksLikeMode(parts[0]) {
			continue
		}

		size, err := strconv.ParseInt(parts[4], 10, 64)
		if err != nil {
			size = 0
		}

		entries = append(entries, FileEntry{
			Name:        strings.Join(parts[8:], " "),
			Type:        entryType(parts[0]),
			Permissions: parts[0],
			Owner:       parts[2],
			Group:       parts[3],
			Size:        size,
			Modified:    strings.Join(parts[5:8], " "),
		})
	}
	return entries
}

func looksLikeMode(field string) bool {
	if len(field) < 10 {
		return false
	}
	return strings.ContainsRune("-dlcbps", rune(field[0]))
}

func entryType(permissions string) string {
	switch {
	case strings.HasPrefix(permissions, "d"):
		return "directory"
	case strings.HasPrefix(permissions, "l"):
		return "symlink"
	case strings.HasPrefix(permissions, "c"):
		return "character"
	case strings.HasPrefix(permissions, "b"):
		return "block"
	default:
		return "file"
	}
}
