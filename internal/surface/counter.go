package surface

import (
	"os"
	"strconv"
	"strings"
)

// LoadCounter reads a persisted counter number. A missing or unreadable
// file yields counter 1, the same default a fresh install gets.
func LoadCounter(path string) int {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// SaveCounter persists the counter number so an operator station keeps its
// identity across restarts.
func SaveCounter(path string, counter int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(counter)+"\n"), 0o600)
}
