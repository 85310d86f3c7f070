package verdict

import (
	"fmt"
	"strings"
)

// Conclusion is the final classification of a checked row.
type Conclusion string

const (
	OK      Conclusion = "OK"
	NG      Conclusion = "NG"
	Unknown Conclusion = "UNKNOWN"
	Skipped Conclusion = "SKIPPED"
	NoData  Conclusion = "NO_DATA"
	Error   Conclusion = "ERROR"
)

// Conclusions lists every conclusion in reporting order.
var Conclusions = []Conclusion{OK, NG, Unknown, Skipped, NoData, Error}

// ParseConclusion maps a conclusion code back to a Conclusion.
func ParseConclusion(s string) (Conclusion, error) {
	for _, c := range Conclusions {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown conclusion %q", s)
}

// Completed reports whether c is the result of a checker call.
func (c Conclusion) Completed() bool {
	return c == OK || c == NG || c == Unknown
}

// Marker introduces the conclusion line of a checker response.
const Marker = "結論"

// window is the number of lines examined from a marker line, itself included.
const window = 5

// Extract maps checker free text to OK, NG or UNKNOWN.
//
// Each line containing Marker opens a window of that line and the four that
// follow; the first line in the window mentioning NG or OK decides, NG
// taking precedence within a line. When no window decides, the whole text
// is searched, again NG before OK.
func Extract(text string) Conclusion {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !strings.Contains(line, Marker) {
			continue
		}
		for j := i; j < min(i+window, len(lines)); j++ {
			if c, ok := decide(lines[j]); ok {
				return c
			}
		}
	}

	if c, ok := decide(text); ok {
		return c
	}
	return Unknown
}

func decide(s string) (Conclusion, bool) {
	switch {
	case strings.Contains(s, "NG"):
		return NG, true
	case strings.Contains(s, "OK"):
		return OK, true
	default:
		return "", false
	}
}
