package grader

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Source files considered by the static graders, relative to the project.
const sourceGlob = "src/**/*.{ts,tsx,js,jsx}"

var entryCandidates = []string{"src/main.tsx", "src/index.tsx", "src/main.jsx", "src/index.jsx"}

// readFile returns "" and false for anything unreadable.
func readFile(dir, rel string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(dir, rel))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func readJSON(dir, rel string) (map[string]any, bool) {
	data, err := os.ReadFile(filepath.Join(dir, rel))
	if err != nil {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false
	}
	return m, true
}

func exists(dir, rel string) bool {
	_, err := os.Stat(filepath.Join(dir, rel))
	return err == nil
}

// sourceFiles lists regular files matching sourceGlob, sorted.
func sourceFiles(dir string) []string {
	if dir == "" {
		return nil
	}
	matches, err := doublestar.Glob(os.DirFS(dir), sourceGlob)
	if err != nil {
		return nil
	}
	var files []string
	for _, m := range matches {
		info, err := os.Stat(filepath.Join(dir, m))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)
	return files
}

type sourceFile struct {
	path    string
	content string
}

func loadSources(dir string) []sourceFile {
	var out []sourceFile
	for _, rel := range sourceFiles(dir) {
		if content, ok := readFile(dir, rel); ok {
			out = append(out, sourceFile{path: rel, content: content})
		}
	}
	return out
}

var (
	viteEnvRe = regexp.MustCompile(`import\.meta\.env\.(\w+)`)
	craEnvRe  = regexp.MustCompile(`process\.env\.(\w+)`)
)

// envRefs returns env var names referenced in content, vite-style first.
func envRefs(content string) []string {
	var vars []string
	for _, m := range viteEnvRe.FindAllStringSubmatch(content, -1) {
		vars = append(vars, m[1])
	}
	for _, m := range craEnvRe.FindAllStringSubmatch(content, -1) {
		vars = append(vars, m[1])
	}
	return vars
}

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)client_?secret\s*[=:]\s*["'][^"']+["']`),
	regexp.MustCompile(`(?i)clientSecret\s*[=:]\s*["'][^"']+["']`),
	regexp.MustCompile(`(?i)AUTH0_SECRET\s*[=:]\s*["'][^"']+["']`),
	regexp.MustCompile(`(?i)domain\s*[=:]\s*["'][a-z0-9-]+\.auth0\.com["']`),
	regexp.MustCompile(`(?i)clientId\s*[=:]\s*["'][a-zA-Z0-9]{32}["']`),
}

func containsSecret(content string) bool {
	for _, re := range secretPatterns {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}
