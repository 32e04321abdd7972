// Package safety provides handle filtering, confirmation and audit logging
// for storefront tool invocations.
package safety

import (
	"path"
	"strings"
)

// Filter controls access to product and collection handles using an
// allowlist and a denylist of glob patterns (as understood by path.Match).
// Handles are compared case-insensitively.
//
// Rules:
//   - If both lists are empty (or nil), every handle is allowed.
//   - Denylist always takes priority over the allowlist.
//   - If a non-empty allowlist is present, a handle must match at least one
//     allowlist pattern to be permitted (after the denylist check).
type Filter struct {
	allowlist []string
	denylist  []string
}

// NewFilter constructs a Filter from the provided allowlist and denylist
// pattern slices. Either or both may be nil or empty.
func NewFilter(allowlist, denylist []string) *Filter {
	return &Filter{
		allowlist: lowerAll(allowlist),
		denylist:  lowerAll(denylist),
	}
}

// IsAllowed reports whether handle is permitted by this filter.
func (f *Filter) IsAllowed(handle string) bool {
	handle = strings.ToLower(handle)

	for _, pattern := range f.denylist {
		if matchGlob(pattern, handle) {
			return false
		}
	}

	if len(f.allowlist) == 0 {
		return true
	}

	for _, pattern := range f.allowlist {
		if matchGlob(pattern, handle) {
			return true
		}
	}
	return false
}

// Empty reports whether the filter has no rules at all.
func (f *Filter) Empty() bool {
	return len(f.allowlist) == 0 && len(f.denylist) == 0
}

// matchGlob returns true when name matches the given glob pattern.
// Malformed patterns are treated as non-matching.
func matchGlob(pattern, name string) bool {
	matched, err := path.Match(pattern, name)
	if err != nil {
		return false
	}
	return matched
}

func lowerAll(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, strings.ToLower(p))
	}
	return out
}
