package config

import (
	"fmt"
	"os"
	"strings"
)

// ParseEnvFile reads KEY=VALUE lines. Blank lines and comments are
// skipped, an "export " prefix is allowed, and matching quotes around the
// value are removed.
func ParseEnvFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var envVars []string
	for _, line := range strings.Split(string(data), "\n") {
		s := strings.TrimSpace(line)
		if s == "" || s[0] == '#' {
			continue
		}
		s = strings.TrimPrefix(s, "export ")
		eqIdx := strings.IndexByte(s, '=')
		if eqIdx <= 0 {
			continue
		}
		key := strings.TrimSpace(s[:eqIdx])
		val := stripQuotes(strings.TrimSpace(s[eqIdx+1:]))
		envVars = append(envVars, key+"="+val)
	}
	return envVars, nil
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// LoadEnvFile exports the file's variables into the process environment.
// Variables that are already set win. Returns how many were applied.
func LoadEnvFile(path string) (int, error) {
	vars, err := ParseEnvFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading env file: %w", err)
	}
	n := 0
	for _, kv := range vars {
		key, val, _ := strings.Cut(kv, "=")
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, val); err != nil {
			return n, fmt.Errorf("setting %s: %w", key, err)
		}
		n++
	}
	return n, nil
}
