package agent

import (
	"regexp"
	"strings"
)

// Command extraction is a heuristic over free text. It finds commands the
// agent announced with a known marker and misses everything else.
var commandMarkers = []*regexp.Regexp{
	regexp.MustCompile(`Running: (.+)`),
	regexp.MustCompile(`Executing: (.+)`),
	regexp.MustCompile(`Bash\((.+)\)\s*$`),
	regexp.MustCompile(`\$ (.+)`),
}

// ExtractCommands scans output line by line and keeps the text after the
// first marker found on each line.
func ExtractCommands(output string) []string {
	cmds := []string{}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		for _, re := range commandMarkers {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if cmd := strings.TrimSpace(m[1]); cmd != "" {
				cmds = append(cmds, cmd)
			}
			break
		}
	}
	return cmds
}
