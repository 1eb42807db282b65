// Package codexver parses installed codex-cli version strings and decides
// which elicitation response shape the protocol peer expects.
package codexver

import (
	"regexp"
	"strconv"
	"strings"
)

// ResponseStyle is the wire-shape variant of an elicitation response.
type ResponseStyle string

const (
	// StyleDecision is the terse {action, decision} shape used by older CLIs.
	StyleDecision ResponseStyle = "decision"
	// StyleBoth is the richer {action, decision, content} shape.
	StyleBoth ResponseStyle = "both"
)

// decisionStyleCutoff is the newest version that still expects the
// decision-only shape. Anything above it gets StyleBoth.
var decisionStyleCutoff = VersionInfo{Parsed: true, Major: 0, Minor: 77, Patch: 0}

// VersionInfo is a parsed codex-cli version. Unparseable input yields a
// zero-filled record with Parsed false; Raw always keeps the input verbatim.
type VersionInfo struct {
	Raw    string `json:"raw"`
	Parsed bool   `json:"parsed"`
	Major  int    `json:"major"`
	Minor  int    `json:"minor"`
	Patch  int    `json:"patch"`
	PreTag string `json:"preTag,omitempty"`
	PreNum int    `json:"preNum,omitempty"`
}

var (
	// Full-string form: optional product token ("codex-cli 0.80.0"), then a
	// v-prefixed or bare version with an optional -tag.N suffix.
	versionExact = regexp.MustCompile(`^(?:\S+\s+)?v?(\d+)\.(\d+)\.(\d+)(?:-([0-9A-Za-z-]+)\.(\d+))?$`)
	// Fallback: any bare N.N.N(-tag.N)? substring.
	versionScan = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)(?:-([0-9A-Za-z-]+)\.(\d+))?`)
)

// Parse extracts a structured version from a free-form string such as
// "codex-cli 0.80.0" or "v0.45.1-alpha.3". No match never errors: it
// returns a zeroed record with Parsed false.
func Parse(raw string) VersionInfo {
	info := VersionInfo{Raw: raw}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return info
	}

	m := versionExact.FindStringSubmatch(trimmed)
	if m == nil {
		m = versionScan.FindStringSubmatch(trimmed)
	}
	if m == nil {
		return info
	}

	info.Parsed = true
	info.Major, _ = strconv.Atoi(m[1])
	info.Minor, _ = strconv.Atoi(m[2])
	info.Patch, _ = strconv.Atoi(m[3])
	if m[4] != "" {
		info.PreTag = m[4]
		info.PreNum, _ = strconv.Atoi(m[5])
	}
	return info
}

// Compare orders two versions: -1 if a is older than b, 0 if equal, 1 if
// newer. Equal triples compare prerelease: a release beats any prerelease,
// differing tags compare lexically, equal tags by numeric suffix.
func Compare(a, b VersionInfo) int {
	if c := compareInt(a.Major, b.Major); c != 0 {
		return c
	}
	if c := compareInt(a.Minor, b.Minor); c != 0 {
		return c
	}
	if c := compareInt(a.Patch, b.Patch); c != 0 {
		return c
	}

	switch {
	case a.PreTag == "" && b.PreTag == "":
		return 0
	case a.PreTag == "":
		return 1
	case b.PreTag == "":
		return -1
	case a.PreTag != b.PreTag:
		return strings.Compare(a.PreTag, b.PreTag)
	default:
		return compareInt(a.PreNum, b.PreNum)
	}
}

// AtMost reports whether info is at or below the target version.
func AtMost(info, target VersionInfo) bool {
	return Compare(info, target) <= 0
}

// SelectResponseStyle picks the response shape for a detected version. An
// explicit override of exactly "decision" or "both" (case-insensitive) wins
// unconditionally. An unparsed version fails toward the richer StyleBoth.
func SelectResponseStyle(info VersionInfo, override string) ResponseStyle {
	switch strings.ToLower(strings.TrimSpace(override)) {
	case string(StyleDecision):
		return StyleDecision
	case string(StyleBoth):
		return StyleBoth
	}

	if !info.Parsed {
		return StyleBoth
	}
	if AtMost(info, decisionStyleCutoff) {
		return StyleDecision
	}
	return StyleBoth
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
