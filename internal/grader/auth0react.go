package grader

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/signalnine/skilleval/internal/result"
)

const (
	Auth0ReactSkill = "auth0-react"
	auth0ReactSDK   = "@auth0/auth0-react"
)

var Auth0ReactChecks = []string{
	"sdk_installed",
	"provider_wrapped",
	"env_vars_correct",
	"no_hardcoded_credentials",
	"redirect_uri_configured",
	"login_component",
	"logout_component",
	"useauth0_hook_usage",
}

var (
	hardcodedRedirectRe = regexp.MustCompile(`redirect_uri\s*:\s*["']http`)
	useAuth0DestructRe  = regexp.MustCompile(`const\s*\{[^}]*\}\s*=\s*useAuth0\s*\(\s*\)`)
)

// Auth0React grades a React project tree for an @auth0/auth0-react
// integration.
type Auth0React struct {
	dir     string
	sources []sourceFile
}

func NewAuth0React(projectDir string) *Auth0React {
	return &Auth0React{dir: projectDir}
}

func (g *Auth0React) Skill() string    { return Auth0ReactSkill }
func (g *Auth0React) Checks() []string { return append([]string(nil), Auth0ReactChecks...) }

func (g *Auth0React) Grade() []result.CheckResult {
	g.sources = loadSources(g.dir)
	return []result.CheckResult{
		g.sdkInstalled(),
		g.providerWrapped(),
		g.envVarsCorrect(),
		g.noHardcodedCredentials(),
		g.redirectURIConfigured(),
		g.loginComponent(),
		g.logoutComponent(),
		g.useAuth0HookUsage(),
	}
}

func (g *Auth0React) sdkInstalled() result.CheckResult {
	const name = "sdk_installed"
	pkg, ok := readJSON(g.dir, "package.json")
	if !ok {
		return fail(name, "package.json not found or not valid JSON", nil)
	}
	if deps, _ := pkg["dependencies"].(map[string]any); deps != nil {
		if _, ok := deps[auth0ReactSDK]; ok {
			return pass(name, auth0ReactSDK+" found in dependencies", nil)
		}
	}
	if dev, _ := pkg["devDependencies"].(map[string]any); dev != nil {
		if _, ok := dev[auth0ReactSDK]; ok {
			return fail(name, auth0ReactSDK+" listed in devDependencies instead of dependencies", nil)
		}
	}
	return fail(name, auth0ReactSDK+" not found in package.json dependencies", nil)
}

func (g *Auth0React) providerWrapped() result.CheckResult {
	const name = "provider_wrapped"
	var unimported string
	for _, rel := range entryCandidates {
		content, ok := readFile(g.dir, rel)
		if !ok || !strings.Contains(content, "Auth0Provider") {
			continue
		}
		if strings.Contains(content, "from '"+auth0ReactSDK+"'") || strings.Contains(content, `from "`+auth0ReactSDK+`"`) {
			return pass(name, "Auth0Provider found wrapping app in "+rel, map[string]any{"file": rel})
		}
		if unimported == "" {
			unimported = rel
		}
	}
	if unimported != "" {
		return fail(name, fmt.Sprintf("Auth0Provider used in %s but not imported from %s", unimported, auth0ReactSDK),
			map[string]any{"file": unimported})
	}
	return fail(name, "Auth0Provider not found wrapping the application", nil)
}

func (g *Auth0React) envVarsCorrect() result.CheckResult {
	const name = "env_vars_correct"
	expected, wrong := "REACT_APP_", "VITE_"
	if exists(g.dir, "vite.config.ts") || exists(g.dir, "vite.config.js") {
		expected, wrong = "VITE_", "REACT_APP_"
	}

	for _, f := range g.sources {
		for _, v := range envRefs(f.content) {
			if strings.HasPrefix(v, wrong) {
				return fail(name, fmt.Sprintf("Wrong env var prefix: %s (should use %s)", v, expected), map[string]any{
					"file":            f.path,
					"variable":        v,
					"expected_prefix": expected,
				})
			}
		}
	}

	for _, f := range g.sources {
		if strings.Contains(f.content, expected+"AUTH0") || strings.Contains(f.content, "import.meta.env."+expected) {
			return pass(name, "Environment variables correctly use "+expected+" prefix", nil)
		}
	}
	for _, f := range g.sources {
		if strings.Contains(f.content, "AUTH0_DOMAIN") || strings.Contains(f.content, "AUTH0_CLIENT_ID") {
			return fail(name, "Auth0 env vars found but without "+expected+" prefix", map[string]any{"file": f.path})
		}
	}
	return pass(name, "Environment variables correctly use "+expected+" prefix", nil)
}

func (g *Auth0React) noHardcodedCredentials() result.CheckResult {
	const name = "no_hardcoded_credentials"
	offending := []string{}
	for _, f := range g.sources {
		if containsSecret(f.content) {
			offending = append(offending, f.path)
		}
	}
	details := map[string]any{"files_with_secrets": offending}
	if len(offending) > 0 {
		return fail(name, "Potential hardcoded credentials in: "+strings.Join(offending, ", "), details)
	}
	return pass(name, "No hardcoded credentials found", details)
}

func (g *Auth0React) redirectURIConfigured() result.CheckResult {
	const name = "redirect_uri_configured"
	var misconfigured string
	for _, rel := range entryCandidates {
		content, ok := readFile(g.dir, rel)
		if !ok || !strings.Contains(content, "redirect_uri") {
			continue
		}
		details := map[string]any{"file": rel}
		if strings.Contains(content, "window.location.origin") {
			return pass(name, "redirect_uri correctly uses window.location.origin", details)
		}
		if hardcodedRedirectRe.MatchString(content) {
			return fail(name, "redirect_uri has hardcoded URL instead of window.location.origin", details)
		}
		if misconfigured == "" {
			misconfigured = rel
		}
	}
	if misconfigured != "" {
		return fail(name, "redirect_uri is set but does not use window.location.origin", map[string]any{"file": misconfigured})
	}
	return fail(name, "redirect_uri configuration not found", nil)
}

func (g *Auth0React) loginComponent() result.CheckResult {
	const name = "login_component"
	for _, f := range g.sources {
		if strings.Contains(f.content, "loginWithRedirect") {
			return pass(name, "Login functionality found using loginWithRedirect", map[string]any{"file": f.path})
		}
	}
	return fail(name, "No login component using loginWithRedirect found", nil)
}

func (g *Auth0React) logoutComponent() result.CheckResult {
	const name = "logout_component"
	var orphan string
	for _, f := range g.sources {
		if !strings.Contains(f.content, "logout(") {
			continue
		}
		if strings.Contains(f.content, "useAuth0") {
			return pass(name, "Logout functionality found", map[string]any{"file": f.path})
		}
		if orphan == "" {
			orphan = f.path
		}
	}
	if orphan != "" {
		return fail(name, "logout() called in "+orphan+" but not obtained from useAuth0", map[string]any{"file": orphan})
	}
	return fail(name, "No logout component found", nil)
}

func (g *Auth0React) useAuth0HookUsage() result.CheckResult {
	const name = "useauth0_hook_usage"
	var loose string
	for _, f := range g.sources {
		if !strings.Contains(f.content, "useAuth0") {
			continue
		}
		if useAuth0DestructRe.MatchString(f.content) {
			return pass(name, "useAuth0 hook correctly used with destructuring", map[string]any{"file": f.path})
		}
		if loose == "" {
			loose = f.path
		}
	}
	if loose != "" {
		return fail(name, "useAuth0 referenced in "+loose+" without destructuring its return value", map[string]any{"file": loose})
	}
	return fail(name, "useAuth0 hook not found", nil)
}
