package codex

import "regexp"

// mcpServerSubcommand is the single subcommand that exposes the codex MCP
// server. The legacy version-sniffed subcommand no longer exists; this is
// the one place the current token is appended.
const mcpServerSubcommand = "mcp-server"

// packageSpecPattern recognizes a strict @openai/codex@<version-or-tag>
// npm spec. Bare names, other scopes, or a scope without a version are not
// package specs.
var packageSpecPattern = regexp.MustCompile(`^@openai/codex@[^\s@]+$`)

// RunnerSpec describes how to invoke the codex subprocess. Immutable once
// built; consumed by the external launcher.
type RunnerSpec struct {
	Command string
	Args    []string
	Label   string
}

// ParsePackageSpec reports whether token is a recognized codex package
// spec. Anything else is simply not a spec, never an error.
func ParsePackageSpec(token string) (string, bool) {
	if packageSpecPattern.MatchString(token) {
		return token, true
	}
	return "", false
}

// BuildRunner resolves the subprocess invocation. A recognized package spec
// runs through npx non-interactively; absence means the codex binary on
// PATH is invoked directly.
func BuildRunner(spec string) RunnerSpec {
	if _, ok := ParsePackageSpec(spec); ok {
		return RunnerSpec{
			Command: "npx",
			Args:    []string{"-y", spec},
			Label:   spec,
		}
	}
	return RunnerSpec{
		Command: "codex",
		Label:   "codex",
	}
}

// MCPServerCommand returns a copy of the runner with the MCP server
// subcommand appended to whatever argument list it already carries.
func MCPServerCommand(runner RunnerSpec) RunnerSpec {
	args := make([]string, 0, len(runner.Args)+1)
	args = append(args, runner.Args...)
	args = append(args, mcpServerSubcommand)
	runner.Args = args
	return runner
}

// SplitLeadingPackageSpec peels a recognized package spec off the front of
// an argument list. When the first argument is not a spec, the original
// list is returned untouched.
func SplitLeadingPackageSpec(args []string) (string, []string) {
	if len(args) == 0 {
		return "", args
	}
	if spec, ok := ParsePackageSpec(args[0]); ok {
		return spec, args[1:]
	}
	return "", args
}
