package codex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePackageSpec(t *testing.T) {
	tests := []struct {
		token string
		ok    bool
	}{
		{"@openai/codex@latest", true},
		{"@openai/codex@0.45.0", true},
		{"@openai/codex@nightly", true},
		{"@openai/codex", false},
		{"codex", false},
		{"@openai/other@latest", false},
		{"@scope/codex@latest", false},
		{"@openai/codex@", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			spec, ok := ParsePackageSpec(tt.token)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.token, spec)
			} else {
				assert.Empty(t, spec)
			}
		})
	}
}

func TestBuildRunner(t *testing.T) {
	wrapped := BuildRunner("@openai/codex@latest")
	assert.Equal(t, "npx", wrapped.Command)
	assert.Equal(t, []string{"-y", "@openai/codex@latest"}, wrapped.Args)
	assert.Equal(t, "@openai/codex@latest", wrapped.Label)

	direct := BuildRunner("")
	assert.Equal(t, "codex", direct.Command)
	assert.Empty(t, direct.Args)
	assert.Equal(t, "codex", direct.Label)

	// An unrecognized token falls back to the direct binary.
	assert.Equal(t, direct, BuildRunner("not-a-spec"))
}

func TestMCPServerCommand(t *testing.T) {
	wrapped := MCPServerCommand(BuildRunner("@openai/codex@latest"))
	assert.Equal(t, "npx", wrapped.Command)
	assert.Equal(t, []string{"-y", "@openai/codex@latest", "mcp-server"}, wrapped.Args)

	direct := MCPServerCommand(BuildRunner(""))
	assert.Equal(t, "codex", direct.Command)
	assert.Equal(t, []string{"mcp-server"}, direct.Args)
}

func TestMCPServerCommand_DoesNotAliasArgs(t *testing.T) {
	base := BuildRunner("@openai/codex@latest")
	before := append([]string(nil), base.Args...)

	_ = MCPServerCommand(base)
	assert.Equal(t, before, base.Args)
}

func TestSplitLeadingPackageSpec(t *testing.T) {
	spec, rest := SplitLeadingPackageSpec([]string{"@openai/codex@latest", "--flag"})
	assert.Equal(t, "@openai/codex@latest", spec)
	assert.Equal(t, []string{"--flag"}, rest)

	spec, rest = SplitLeadingPackageSpec([]string{"--flag"})
	assert.Empty(t, spec)
	assert.Equal(t, []string{"--flag"}, rest)

	spec, rest = SplitLeadingPackageSpec(nil)
	assert.Empty(t, spec)
	assert.Empty(t, rest)
}
