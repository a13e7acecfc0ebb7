package scopes

import (
	"slices"
	"strings"
)

const (
	// Wildcard matches any permission when used alone, or any permission
	// under a namespace when used as a suffix (e.g. "billing.*").
	Wildcard = "*"

	// Delimiter separates hierarchical permission parts (e.g. "billing.view").
	Delimiter = "."
)

// Matches reports whether a single permission satisfies a pattern.
//
// Matching rules:
//   - Direct match: "view_billing" matches "view_billing"
//   - Global wildcard: "*" matches everything
//   - Namespace wildcard: "billing.*" matches "billing.view" and "billing.manage"
func Matches(perm, pattern string) bool {
	if perm == pattern || pattern == Wildcard {
		return true
	}

	if strings.HasSuffix(pattern, Wildcard) {
		prefix := strings.TrimSuffix(pattern, Wildcard)
		prefix = strings.TrimSuffix(prefix, Delimiter)
		return strings.HasPrefix(perm, prefix+Delimiter)
	}

	return false
}

// Has reports whether any pattern in the set matches perm.
func Has(set []string, perm string) bool {
	for _, pattern := range set {
		if Matches(perm, pattern) {
			return true
		}
	}
	return false
}

// HasAny reports whether the set matches at least one of the required
// permissions. An empty required list is trivially satisfied.
func HasAny(set, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if slices.Contains(set, Wildcard) {
		return true
	}
	for _, perm := range required {
		if Has(set, perm) {
			return true
		}
	}
	return false
}

// HasAll reports whether the set matches every required permission.
// An empty required list is trivially satisfied.
func HasAll(set, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if slices.Contains(set, Wildcard) {
		return true
	}
	for _, perm := range required {
		if !Has(set, perm) {
			return false
		}
	}
	return true
}

// Normalize returns a sorted, deduplicated copy of the set with entries
// removed when a broader wildcard in the same set already covers them.
// A global wildcard collapses the whole set to ["*"].
func Normalize(set []string) []string {
	if len(set) == 0 {
		return nil
	}

	if slices.Contains(set, Wildcard) {
		return []string{Wildcard}
	}

	uniq := make([]string, 0, len(set))
	seen := make(map[string]struct{}, len(set))
	for _, s := range set {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		uniq = append(uniq, s)
	}

	result := make([]string, 0, len(uniq))
	for _, s := range uniq {
		if coveredByOther(uniq, s) {
			continue
		}
		result = append(result, s)
	}

	slices.Sort(result)
	return result
}

// coveredByOther reports whether s is matched by a different, broader
// pattern in the set.
func coveredByOther(set []string, s string) bool {
	for _, pattern := range set {
		if pattern == s {
			continue
		}
		if Matches(s, pattern) {
			return true
		}
	}
	return false
}
