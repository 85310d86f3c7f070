package detect

import (
	"fmt"
	"regexp"
	"strings"
)

// Strategy is one way of looking for a keyword in a text. Every strategy is
// case-insensitive.
type Strategy int

const (
	// Word matches the keyword between ASCII word boundaries (\b).
	Word Strategy = iota

	// Unsegmented matches an occurrence not preceded nor followed by an
	// ASCII letter or digit. It finds keywords in scripts without word
	// separators, such as Japanese.
	Unsegmented

	// Substring matches any occurrence.
	Substring
)

// String returns the strategy name used in logs.
func (s Strategy) String() string {
	switch s {
	case Word:
		return "word"
	case Unsegmented:
		return "unsegmented"
	case Substring:
		return "substring"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// pattern returns the regular expression source for keyword.
func (s Strategy) pattern(keyword string) string {
	quoted := regexp.QuoteMeta(keyword)
	switch s {
	case Word:
		return `(?i)\b` + quoted + `\b`
	case Unsegmented:
		// RE2 has no lookaround; consuming the neighbour is equivalent for a
		// yes/no match.
		return `(?i)(?:^|[^a-zA-Z0-9])` + quoted + `(?:[^a-zA-Z0-9]|$)`
	default:
		return `(?i)` + quoted
	}
}

// Strictness selects which strategies are tried.
type Strictness int

const (
	// Loose tries Word, Unsegmented and Substring.
	Loose Strictness = iota

	// Strict tries Word and Unsegmented only, so a keyword embedded in a
	// longer ASCII word is not detected.
	Strict
)

// ParseStrictness maps "loose" and "strict" to a Strictness.
func ParseStrictness(s string) (Strictness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "loose":
		return Loose, nil
	case "strict":
		return Strict, nil
	default:
		return Loose, fmt.Errorf("invalid strictness %q (must be loose or strict)", s)
	}
}

// String returns "loose" or "strict".
func (s Strictness) String() string {
	if s == Strict {
		return "strict"
	}
	return "loose"
}

// Strategies returns the ordered strategies for s.
func (s Strictness) Strategies() []Strategy {
	if s == Strict {
		return []Strategy{Word, Unsegmented}
	}
	return []Strategy{Word, Unsegmented, Substring}
}
