package cmd

import (
	"regexp"
	"strings"
)

// headerFlagsTemplate is copied from cobra.Command.UsageTemplate, modified to include an invocation
// of insertHeaders on the flags, which intersperses the flags with headers.
var headerFlagsTemplate = `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces | insertHeaders .CommandPath}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}
`

// flagHeaders maps a command path to headers, keyed by the flag that each header precedes.
var flagHeaders = map[string]map[string]string{}

var flagLineRegexp = regexp.MustCompile(`^\s+(-\w, )?--([^ ]*)`)

func insertHeaders(cmdPath string, flags string) string {
	headers := flagHeaders[cmdPath]
	if len(headers) == 0 {
		return flags
	}

	in := strings.Split(flags, "\n")
	out := make([]string, 0, len(in)+len(headers))
	for _, line := range in {
		if matches := flagLineRegexp.FindStringSubmatch(line); matches != nil {
			if header := headers[matches[2]]; header != "" {
				out = append(out, "\n"+header)
			}
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}
