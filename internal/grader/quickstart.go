package grader

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/signalnine/skilleval/internal/result"
)

const Auth0QuickstartSkill = "auth0-quickstart"

var Auth0QuickstartChecks = []string{
	"framework_detected",
	"cli_installed",
	"cli_logged_in",
	"app_created",
	"metadata_present",
	"app_type_correct",
	"callbacks_configured",
	"credentials_captured",
}

// AppTypeAliases maps an application type to the --type values accepted
// for it.
var AppTypeAliases = map[string][]string{
	"spa":     {"spa", "single page application"},
	"regular": {"regular", "regular web application"},
	"native":  {"native"},
}

var (
	detectionRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)cat\s+package\.json`),
		regexp.MustCompile(`(?i)grep.*react|next|vue|angular|express`),
		regexp.MustCompile(`(?i)ls.*angular\.json|vue\.config|next\.config`),
	}
	installRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)brew\s+install.*auth0`),
		regexp.MustCompile(`(?i)scoop\s+install\s+auth0`),
		regexp.MustCompile(`(?i)choco\s+install\s+auth0`),
		regexp.MustCompile(`(?i)auth0\s+--version`),
		regexp.MustCompile(`(?i)which\s+auth0`),
		regexp.MustCompile(`(?i)command\s+-v\s+auth0`),
	}
	frameworks = []string{"react", "next", "vue", "angular", "express"}

	loginRe       = regexp.MustCompile(`auth0\s+login`)
	appsCreateRe  = regexp.MustCompile(`auth0\s+apps\s+create`)
	metadataRe    = regexp.MustCompile(`--metadata\s+["']?created_by=agent_skills["']?`)
	appTypeRe     = regexp.MustCompile(`--type\s+(\w+)`)
	credentialsRe = regexp.MustCompile(`auth0\s+apps\s+(show|list)`)
)

// Auth0Quickstart grades an execution trace for the Auth0 CLI quickstart
// flow: detect, install, log in, create app, configure, fetch credentials.
type Auth0Quickstart struct {
	trace   *ExecutionTrace
	appType string
}

type QuickstartOption func(*Auth0Quickstart)

// WithAppType sets the expected application type. Defaults to "spa".
func WithAppType(t string) QuickstartOption {
	return func(g *Auth0Quickstart) { g.appType = t }
}

func NewAuth0Quickstart(trace *ExecutionTrace, opts ...QuickstartOption) *Auth0Quickstart {
	g := &Auth0Quickstart{trace: trace, appType: "spa"}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Auth0Quickstart) Skill() string    { return Auth0QuickstartSkill }
func (g *Auth0Quickstart) Checks() []string { return append([]string(nil), Auth0QuickstartChecks...) }

func (g *Auth0Quickstart) Grade() []result.CheckResult {
	return []result.CheckResult{
		g.frameworkDetected(),
		g.cliInstalled(),
		g.cliLoggedIn(),
		g.appCreated(),
		g.metadataPresent(),
		g.appTypeCorrect(),
		g.callbacksConfigured(),
		g.credentialsCaptured(),
	}
}

func (g *Auth0Quickstart) firstMatch(res ...*regexp.Regexp) (string, bool) {
	for _, c := range g.trace.Commands {
		for _, re := range res {
			if re.MatchString(c.Command) {
				return c.Command, true
			}
		}
	}
	return "", false
}

func (g *Auth0Quickstart) createCommands() []string {
	var cmds []string
	for _, c := range g.trace.Commands {
		if appsCreateRe.MatchString(c.Command) {
			cmds = append(cmds, c.Command)
		}
	}
	return cmds
}

func (g *Auth0Quickstart) frameworkDetected() result.CheckResult {
	const name = "framework_detected"
	if cmd, ok := g.firstMatch(detectionRes...); ok {
		return pass(name, "Framework detection step performed", map[string]any{"command": cmd})
	}
	for _, out := range g.trace.Outputs {
		lower := strings.ToLower(out)
		if !strings.Contains(lower, "detected") {
			continue
		}
		for _, fw := range frameworks {
			if strings.Contains(lower, fw) {
				return pass(name, fmt.Sprintf("Framework %s detected in output", fw), map[string]any{"framework": fw})
			}
		}
	}
	return fail(name, "No framework detection step found in trace", nil)
}

func (g *Auth0Quickstart) cliInstalled() result.CheckResult {
	const name = "cli_installed"
	if cmd, ok := g.firstMatch(installRes...); ok {
		return pass(name, "Auth0 CLI installation/verification found", map[string]any{"command": cmd})
	}
	return fail(name, "No Auth0 CLI installation or verification found", nil)
}

func (g *Auth0Quickstart) cliLoggedIn() result.CheckResult {
	const name = "cli_logged_in"
	if cmd, ok := g.firstMatch(loginRe); ok {
		return pass(name, "auth0 login command executed", map[string]any{"command": cmd})
	}
	return fail(name, "auth0 login command not found in trace", nil)
}

func (g *Auth0Quickstart) appCreated() result.CheckResult {
	const name = "app_created"
	if cmd, ok := g.firstMatch(appsCreateRe); ok {
		return pass(name, "auth0 apps create command executed", map[string]any{"command": cmd})
	}
	return fail(name, "auth0 apps create command not found in trace", nil)
}

func (g *Auth0Quickstart) metadataPresent() result.CheckResult {
	const name = "metadata_present"
	creates := g.createCommands()
	if len(creates) == 0 {
		return fail(name, "auth0 apps create command not found", nil)
	}
	for _, cmd := range creates {
		if metadataRe.MatchString(cmd) {
			return pass(name, "Instrumentation metadata present in create command", map[string]any{"command": cmd})
		}
	}
	return fail(name, "auth0 apps create found but missing --metadata 'created_by=agent_skills'",
		map[string]any{"command": creates[0]})
}

func (g *Auth0Quickstart) appTypeCorrect() result.CheckResult {
	const name = "app_type_correct"
	creates := g.createCommands()
	if len(creates) == 0 {
		return fail(name, "auth0 apps create command not found", map[string]any{"expected": g.appType})
	}
	accepted, ok := AppTypeAliases[g.appType]
	if !ok {
		accepted = []string{g.appType}
	}
	for _, cmd := range creates {
		m := appTypeRe.FindStringSubmatch(cmd)
		if m == nil {
			continue
		}
		actual := strings.ToLower(m[1])
		details := map[string]any{"expected": g.appType, "actual": actual}
		if slices.Contains(accepted, actual) {
			return pass(name, "Correct application type: "+actual, details)
		}
		return fail(name, fmt.Sprintf("Wrong application type: %s (expected %s)", actual, g.appType), details)
	}
	return fail(name, "Application type not specified in create command", map[string]any{"expected": g.appType})
}

func (g *Auth0Quickstart) callbacksConfigured() result.CheckResult {
	const name = "callbacks_configured"
	creates := g.createCommands()
	if len(creates) == 0 {
		return fail(name, "auth0 apps create command not found", nil)
	}
	for _, cmd := range creates {
		if strings.Contains(cmd, "--callbacks") && strings.Contains(cmd, "--logout-urls") {
			return pass(name, "Callback and logout URLs configured", map[string]any{"command": cmd})
		}
	}
	// No create had both; describe the most recent attempt.
	cmd := creates[len(creates)-1]
	details := map[string]any{"command": cmd}
	switch {
	case strings.Contains(cmd, "--callbacks"):
		return fail(name, "Callback URLs configured but --logout-urls missing", details)
	case strings.Contains(cmd, "--logout-urls"):
		return fail(name, "Logout URLs configured but --callbacks missing", details)
	default:
		return fail(name, "Create command has neither --callbacks nor --logout-urls", details)
	}
}

func (g *Auth0Quickstart) credentialsCaptured() result.CheckResult {
	const name = "credentials_captured"
	var shows []string
	for _, c := range g.trace.Commands {
		if credentialsRe.MatchString(c.Command) {
			shows = append(shows, c.Command)
		}
	}
	if len(shows) > 0 {
		return pass(name, "Credentials retrieval commands found", map[string]any{"commands": shows})
	}

	var vars []string
	for k := range g.trace.EnvVarsSet {
		upper := strings.ToUpper(k)
		if strings.Contains(upper, "AUTH0") || strings.Contains(upper, "DOMAIN") || strings.Contains(upper, "CLIENT") {
			vars = append(vars, k)
		}
	}
	if len(vars) > 0 {
		sort.Strings(vars)
		return pass(name, "Auth0 credentials set as environment variables", map[string]any{"env_vars": vars})
	}
	return fail(name, "No credentials retrieval or storage found", nil)
}
