package verdict

import "testing"

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Conclusion
	}{
		{"marker line NG", "分析...\n結論: NG\n理由...", NG},
		{"marker line OK", "結論: OK", OK},
		{"NG wins within a line", "結論: OK ではなく NG", NG},
		{"verdict below marker", "## 結論\n\n\n判定: OK\n", OK},
		{"window beats whole text", "NG例の説明\n## 結論\nOK", OK},
		{"line after window falls back to whole text", "## 結論\n1\n2\n3\n4\nOK", OK},
		{"first window line decides", "## 結論\nOK\nNG", OK},
		{"substring without marker", "表現は問題ありません。OKです。", OK},
		{"NG before OK without marker", "OK部分とNG部分", NG},
		{"neither", "判断できません", Unknown},
		{"empty", "", Unknown},
		{"second marker decides", "結論は後述\na\nb\nc\nd\ne\n最終結論: OK", OK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.text); got != tt.want {
				t.Errorf("Extract(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseConclusion(t *testing.T) {
	for _, c := range Conclusions {
		got, err := ParseConclusion(string(c))
		if err != nil || got != c {
			t.Errorf("ParseConclusion(%q) = %q, %v", c, got, err)
		}
	}
	if _, err := ParseConclusion("MAYBE"); err == nil {
		t.Error("ParseConclusion(MAYBE) error = nil")
	}
}

func TestCompleted(t *testing.T) {
	for c, want := range map[Conclusion]bool{OK: true, NG: true, Unknown: true, Skipped: false, NoData: false, Error: false} {
		if c.Completed() != want {
			t.Errorf("%s.Completed() = %v, want %v", c, !want, want)
		}
	}
}
