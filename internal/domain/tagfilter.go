package domain

import "strings"

// TagFilter narrows a document query by tag membership.
//
// IncludeAll keeps only documents whose tag sequence contains every listed
// tag. ExcludeAll rejects only documents whose tag sequence contains every
// listed tag: a document carrying some but not all of the excluded tags still
// passes. That makes ExcludeAll the exact negation of an IncludeAll with the
// same tags, and deliberately weaker than a contains-none condition.
type TagFilter struct {
	IncludeAll []string
	ExcludeAll []string
}

// IsZero reports whether the filter imposes no condition.
func (f TagFilter) IsZero() bool {
	return len(f.IncludeAll) == 0 && len(f.ExcludeAll) == 0
}

// Normalize trims each tag, drops empties, and removes duplicates from both
// sets, keeping first occurrence order. Filters are lenient where mutations
// are strict: a malformed entry narrows nothing instead of failing the query.
func (f TagFilter) Normalize() TagFilter {
	return TagFilter{
		IncludeAll: normalizeFilterTags(f.IncludeAll),
		ExcludeAll: normalizeFilterTags(f.ExcludeAll),
	}
}

// Matches reports whether a document with the given tag sequence passes the
// filter. It is the in-memory reference for the store-side translations; both
// must agree on every corpus.
func (f TagFilter) Matches(tags []string) bool {
	if len(f.IncludeAll) > 0 && !containsAllTags(tags, f.IncludeAll) {
		return false
	}
	if len(f.ExcludeAll) > 0 && containsAllTags(tags, f.ExcludeAll) {
		return false
	}
	return true
}

func containsAllTags(tags, wanted []string) bool {
	for _, w := range wanted {
		if indexOfTag(tags, w) < 0 {
			return false
		}
	}
	return true
}

func normalizeFilterTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || indexOfTag(out, t) >= 0 {
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
