package detect

import "sort"

// Set is a set of detected keywords.
type Set map[string]struct{}

// NewSet returns a Set holding keywords.
func NewSet(keywords ...string) Set {
	s := make(Set, len(keywords))
	for _, kw := range keywords {
		s[kw] = struct{}{}
	}
	return s
}

// Has reports whether keyword is in the set.
func (s Set) Has(keyword string) bool {
	_, ok := s[keyword]
	return ok
}

// Len returns the number of keywords.
func (s Set) Len() int { return len(s) }

// Sorted returns the keywords in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for kw := range s {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}
