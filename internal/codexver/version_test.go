package codexver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected VersionInfo
	}{
		{
			name:     "bare version",
			raw:      "0.77.0",
			expected: VersionInfo{Raw: "0.77.0", Parsed: true, Major: 0, Minor: 77, Patch: 0},
		},
		{
			name:     "v prefix",
			raw:      "v1.2.3",
			expected: VersionInfo{Raw: "v1.2.3", Parsed: true, Major: 1, Minor: 2, Patch: 3},
		},
		{
			name:     "product token",
			raw:      "codex-cli 0.80.0",
			expected: VersionInfo{Raw: "codex-cli 0.80.0", Parsed: true, Major: 0, Minor: 80, Patch: 0},
		},
		{
			name:     "product token with v prefix",
			raw:      "codex v0.45.1",
			expected: VersionInfo{Raw: "codex v0.45.1", Parsed: true, Major: 0, Minor: 45, Patch: 1},
		},
		{
			name: "prerelease",
			raw:  "0.78.0-alpha.3",
			expected: VersionInfo{
				Raw: "0.78.0-alpha.3", Parsed: true,
				Major: 0, Minor: 78, Patch: 0, PreTag: "alpha", PreNum: 3,
			},
		},
		{
			name: "fallback substring scan",
			raw:  "OpenAI Codex (research preview) 0.21.0 linux",
			expected: VersionInfo{
				Raw: "OpenAI Codex (research preview) 0.21.0 linux", Parsed: true,
				Major: 0, Minor: 21, Patch: 0,
			},
		},
		{
			name:     "surrounding whitespace",
			raw:      "  0.77.0\n",
			expected: VersionInfo{Raw: "  0.77.0\n", Parsed: true, Major: 0, Minor: 77, Patch: 0},
		},
		{
			name:     "unparseable",
			raw:      "not a version",
			expected: VersionInfo{Raw: "not a version"},
		},
		{
			name:     "empty",
			raw:      "",
			expected: VersionInfo{Raw: ""},
		},
		{
			name:     "two-part version is not a version",
			raw:      "1.2",
			expected: VersionInfo{Raw: "1.2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Parse(tt.raw))
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{"equal", "1.2.3", "1.2.3", 0},
		{"major", "2.0.0", "1.9.9", 1},
		{"minor", "0.77.0", "0.78.0", -1},
		{"patch", "0.77.1", "0.77.0", 1},
		{"release beats prerelease", "0.78.0", "0.78.0-alpha.1", 1},
		{"prerelease loses to release", "0.78.0-beta.2", "0.78.0", -1},
		{"differing tags lexical", "1.0.0-alpha.9", "1.0.0-beta.1", -1},
		{"equal tags by number", "1.0.0-alpha.2", "1.0.0-alpha.10", -1},
		{"identical prerelease", "1.0.0-rc.1", "1.0.0-rc.1", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Compare(Parse(tt.a), Parse(tt.b)))
		})
	}
}

func TestAtMost(t *testing.T) {
	cutoff := Parse("0.77.0")
	assert.True(t, AtMost(Parse("0.77.0"), cutoff))
	assert.True(t, AtMost(Parse("0.76.9"), cutoff))
	assert.True(t, AtMost(Parse("0.77.0-rc.1"), cutoff))
	assert.False(t, AtMost(Parse("0.77.1"), cutoff))
	assert.False(t, AtMost(Parse("0.78.0"), cutoff))
}

func TestSelectResponseStyle(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		override string
		expected ResponseStyle
	}{
		{"at cutoff", "0.77.0", "", StyleDecision},
		{"below cutoff", "0.45.0", "", StyleDecision},
		{"above cutoff", "0.78.0", "", StyleBoth},
		{"unparsed defaults rich", "garbage", "", StyleBoth},
		{"override decision wins over new version", "0.80.0", "decision", StyleDecision},
		{"override both wins over old version", "0.45.0", "both", StyleBoth},
		{"override case-insensitive", "0.45.0", "BOTH", StyleBoth},
		{"unknown override ignored", "0.45.0", "everything", StyleDecision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SelectResponseStyle(Parse(tt.raw), tt.override))
		})
	}
}
