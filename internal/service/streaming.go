package service

import (
	"strings"
)

// NormalizePlatforms cleans a raw watch-provider list for display:
// sub-licensed "channel" variants are dropped, a trailing "Plus" becomes "+",
// whitespace is collapsed and duplicates are removed case-insensitively,
// keeping the first-seen casing.
func NormalizePlatforms(raw []string) []string {
	seen := make(map[string]bool)
	var out []string

	for _, name := range raw {
		cleaned := strings.Join(strings.Fields(name), " ")
		if cleaned == "" {
			continue
		}
		if strings.Contains(strings.ToLower(cleaned), "channel") {
			continue
		}

		if strings.HasSuffix(cleaned, "Plus") || strings.HasSuffix(cleaned, "plus") {
			cleaned = strings.TrimSpace(cleaned[:len(cleaned)-len("Plus")]) + "+"
		}

		key := strings.ToLower(cleaned)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, cleaned)
	}

	return out
}

// ApplyAllowlist intersects normalized platform names with the admin
// allowlist, case-insensitively. An empty allowlist means no filtering.
// Allowlist entries are stored normalized, which is why normalization must
// run before this filter.
func ApplyAllowlist(platforms, allowlist []string) []string {
	if len(allowlist) == 0 {
		return platforms
	}

	allowed := make(map[string]bool, len(allowlist))
	for _, entry := range allowlist {
		allowed[strings.ToLower(strings.TrimSpace(entry))] = true
	}

	var out []string
	for _, platform := range platforms {
		if allowed[strings.ToLower(platform)] {
			out = append(out, platform)
		}
	}
	return out
}
