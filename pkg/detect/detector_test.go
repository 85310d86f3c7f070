package detect

import (
	"reflect"
	"sync"
	"testing"

	"mercator-hq/copycheck/pkg/rules"
)

func ruleWith(keywords ...string) *rules.Rule {
	refs := make(map[string]rules.Reference, len(keywords))
	for _, kw := range keywords {
		refs[kw] = rules.Reference{Keyword: kw, Document: kw + " detail"}
	}
	return &rules.Rule{Name: "copy", References: refs}
}

func TestDetector_Detect(t *testing.T) {
	rule := ruleWith("美白", "シミ", "SPF", "cure", "anti")

	tests := []struct {
		name       string
		strictness Strictness
		text       string
		want       []string
	}{
		{
			name: "japanese without separators",
			text: "この美容液で美白ケア",
			want: []string{"美白"},
		},
		{
			name: "english word boundary, any case",
			text: "High spf protection that will CURE dryness",
			want: []string{"SPF", "cure"},
		},
		{
			name: "keyword next to ascii letter is found by substring",
			text: "antiaging serum",
			want: []string{"anti"},
		},
		{
			name:       "strict drops substring fallback",
			strictness: Strict,
			text:       "antiaging serum",
			want:       []string{},
		},
		{
			name:       "strict still finds unsegmented japanese",
			strictness: Strict,
			text:       "シミを防ぐ",
			want:       []string{"シミ"},
		},
		{
			name: "several keywords",
			text: "シミ対策、美白、SPF50",
			want: []string{"SPF", "シミ", "美白"},
		},
		{
			name: "empty text",
			text: "",
			want: []string{},
		},
		{
			name: "nothing matches",
			text: "ただの説明文",
			want: []string{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.strictness, nil)
			got := d.Detect(rule, tt.text).Sorted()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetector_SubsetOfReferences(t *testing.T) {
	rule := ruleWith("美白")
	got := New(Loose, nil).Detect(rule, "美白 シミ SPF")
	for kw := range got {
		if _, ok := rule.References[kw]; !ok {
			t.Errorf("detected %q which is not a reference keyword", kw)
		}
	}
}

func TestDetector_NoReferences(t *testing.T) {
	d := New(Loose, nil)
	if got := d.Detect(&rules.Rule{Name: "empty"}, "美白"); got.Len() != 0 {
		t.Errorf("Detect() = %v, want empty", got)
	}
	if got := d.Detect(nil, "美白"); got.Len() != 0 {
		t.Errorf("Detect(nil) = %v, want empty", got)
	}
}

func TestDetector_MalformedKeywordSkipped(t *testing.T) {
	bad := string([]byte{0xff, 0xfe})
	rule := ruleWith(bad, "美白")

	got := New(Loose, nil).Detect(rule, "美白"+bad)

	if !got.Has("美白") {
		t.Error("valid keyword not detected next to a malformed one")
	}
	if got.Has(bad) {
		t.Error("malformed keyword detected")
	}
}

func TestDetector_RegexMetacharacters(t *testing.T) {
	rule := ruleWith("C++", "1.5倍")
	got := New(Loose, nil).Detect(rule, "C++で書かれた15倍")
	if want := []string{"C++"}; !reflect.DeepEqual(got.Sorted(), want) {
		t.Errorf("Detect() = %v, want %v", got.Sorted(), want)
	}
}

func TestDetector_Concurrent(t *testing.T) {
	rule := ruleWith("美白", "シミ", "SPF")
	d := New(Loose, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := d.Detect(rule, "美白とSPF"); got.Len() != 2 {
				t.Errorf("Detect() = %v", got.Sorted())
			}
		}()
	}
	wg.Wait()
}

func TestParseStrictness(t *testing.T) {
	tests := []struct {
		in      string
		want    Strictness
		wantErr bool
	}{
		{"", Loose, false},
		{"loose", Loose, false},
		{"STRICT", Strict, false},
		{"fuzzy", Loose, true},
	}
	for _, tt := range tests {
		got, err := ParseStrictness(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseStrictness(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestStrategyString(t *testing.T) {
	if Word.String() != "word" || Unsegmented.String() != "unsegmented" || Substring.String() != "substring" {
		t.Error("unexpected strategy names")
	}
}
