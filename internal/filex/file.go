// Package filex contains file-based secret loading used by configuration.
package filex

import (
	"fmt"
	"os"
	"strings"
)

// ReadSecretFile reads a secret value from path, trimming trailing
// whitespace/newlines. Used for *_FILE environment indirection so secrets can
// be mounted as files instead of living in the process environment.
func ReadSecretFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading secret file %s: %w", path, err)
	}
	return strings.TrimRight(string(b), " \t\r\n"), nil
}
