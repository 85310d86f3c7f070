package checker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestErrorMessage(t *testing.T) {
	long := strings.Repeat("あ", maxErrorMessage+10)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"openai envelope", `{"error":{"message":"quota exceeded"}}`, "quota exceeded"},
		{"plain body", "  upstream unavailable \n", "upstream unavailable"},
		{"long multibyte body", long, strings.Repeat("あ", maxErrorMessage)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := errorMessage([]byte(tt.body))
			if !utf8.ValidString(got) {
				t.Fatalf("errorMessage() returned invalid UTF-8")
			}
			if got != tt.want {
				t.Errorf("errorMessage() = %q (%d runes), want %d runes", got, utf8.RuneCountInString(got), utf8.RuneCountInString(tt.want))
			}
		})
	}
}
