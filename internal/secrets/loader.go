// Package secrets resolves secret values from files or inline configuration.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Load returns the trimmed secret named name. A non-empty file path takes
// precedence over the inline value. An error names the secret when neither
// source yields anything usable.
func Load(name, file, value string) (string, error) {
	if name = strings.TrimSpace(name); name == "" {
		name = "secret"
	}

	if file = strings.TrimSpace(file); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		value = string(data)
	}

	secret := strings.TrimSpace(value)
	if secret == "" {
		if file != "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return "", fmt.Errorf("%s is not configured", name)
	}

	return secret, nil
}
