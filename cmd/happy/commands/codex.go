package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/shayne/happy/internal/codex"
	"github.com/shayne/happy/internal/codexver"
	"github.com/shayne/happy/internal/logging"
)

var (
	codexPackage string
	codexPrint   bool
)

// versionProbeTimeout bounds the --version subprocess call.
const versionProbeTimeout = 10 * time.Second

var codexCmd = &cobra.Command{
	Use:   "codex [@openai/codex@<version>] [-- codex args...]",
	Short: "Launch codex as an MCP server",
	Long: `Launch the codex CLI as an MCP server subprocess.

A leading @openai/codex@<version> argument (or --package) runs that
version through npx; otherwise the codex binary on PATH is used. The
installed version is probed to negotiate the elicitation response shape.

Examples:
  happy codex
  happy codex @openai/codex@0.80.0
  happy codex --print @openai/codex@latest`,
	RunE: runCodex,
}

func init() {
	codexCmd.Flags().StringVar(&codexPackage, "package", "", "Codex npm package spec (@openai/codex@<version>)")
	codexCmd.Flags().BoolVar(&codexPrint, "print", false, "Print the resolved command and response style without launching")
}

func runCodex(cmd *cobra.Command, args []string) error {
	spec, rest := codex.SplitLeadingPackageSpec(args)
	if spec == "" {
		spec = codexPackage
	}
	if spec == "" {
		spec = cfg.CodexPackage
	}

	runner := codex.BuildRunner(spec)
	info := probeVersion(cmd.Context(), runner)
	style := codexver.SelectResponseStyle(info, cfg.ResponseStyle)

	logging.Info().
		Str("runner", runner.Label).
		Str("version", info.Raw).
		Bool("versionParsed", info.Parsed).
		Str("responseStyle", string(style)).
		Msg("resolved codex runner")

	server := codex.MCPServerCommand(runner)
	serverArgs := append(server.Args, rest...)

	if codexPrint {
		fmt.Fprintf(cmd.OutOrStdout(), "command: %s", server.Command)
		for _, a := range serverArgs {
			fmt.Fprintf(cmd.OutOrStdout(), " %s", a)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nresponse style: %s\n", style)
		return nil
	}

	proc := exec.CommandContext(cmd.Context(), server.Command, serverArgs...)
	proc.Stdin = os.Stdin
	proc.Stdout = os.Stdout
	proc.Stderr = os.Stderr
	proc.Env = append(os.Environ(), "HAPPY_CODEX_RESPONSE_STYLE="+string(style))

	if err := proc.Run(); err != nil {
		return fmt.Errorf("codex exited: %w", err)
	}
	return nil
}

// probeVersion asks the resolved runner for its version. Failures are not
// fatal: an empty, unparsed VersionInfo falls through to the richer
// response style.
func probeVersion(ctx context.Context, runner codex.RunnerSpec) codexver.VersionInfo {
	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	probeArgs := append(append([]string{}, runner.Args...), "--version")
	out, err := exec.CommandContext(ctx, runner.Command, probeArgs...).Output()
	if err != nil {
		logging.Warn().Err(err).Str("runner", runner.Label).Msg("codex version probe failed")
		return codexver.VersionInfo{}
	}
	return codexver.Parse(string(out))
}
