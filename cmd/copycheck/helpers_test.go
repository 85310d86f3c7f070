package main

import (
	"testing"
	"time"
)

func TestParseSince(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "", want: time.Time{}},
		{in: "2026-10-01T08:00:00Z", want: time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)},
		{in: "24h", want: now.Add(-24 * time.Hour)},
		{in: "7d", want: now.AddDate(0, 0, -7)},
		{in: "0d", want: now},
		{in: "-1h", wantErr: true},
		{in: "xd", wantErr: true},
		{in: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSince(tt.in, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSince(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("parseSince(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	t.Run("date", func(t *testing.T) {
		got, err := parseSince("2026-10-01", now)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if got.Year() != 2026 || got.Month() != 10 || got.Day() != 1 || got.Location() != time.Local {
			t.Errorf("parseSince(date) = %v", got)
		}
	})
}

func TestContentKey(t *testing.T) {
	tests := []struct {
		prefix, key, want string
	}{
		{"", "copy/SKILL.md", "copy/SKILL.md"},
		{"rules", "rules/copy/SKILL.md", "copy/SKILL.md"},
		{"rules/", "rules/copy/references/シミ.md", "copy/references/シミ.md"},
		{"other", "rules/copy/SKILL.md", "rules/copy/SKILL.md"},
	}
	for _, tt := range tests {
		if got := contentKey(tt.prefix, tt.key); got != tt.want {
			t.Errorf("contentKey(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
		}
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("  結論: OK\n理由", 60); got != "結論: OK" {
		t.Errorf("firstLine = %q", got)
	}
	if got := firstLine("あいうえお", 3); got != "あいう..." {
		t.Errorf("firstLine truncated = %q", got)
	}
}

func TestProgressFunc(t *testing.T) {
	rec := &recordingProgress{}
	fn := progressFunc(rec)
	for i := 1; i <= 3; i++ {
		fn(i, 3)
	}
	if rec.starts != 1 || rec.total != 3 || rec.finished != 1 || rec.last != 3 {
		t.Errorf("progress = %+v", rec)
	}
}

type recordingProgress struct {
	starts, finished int
	total, last      int64
}

func (r *recordingProgress) Start(total int64) { r.starts++; r.total = total }
func (r *recordingProgress) Update(n int64)    { r.last = n }
func (r *recordingProgress) Finish()           { r.finished++ }
func (r *recordingProgress) Error(error)       {}

func TestCompleteRuleNames(t *testing.T) {
	env := newTestEnv(t)
	resetFlags(rootCmd)
	cfgFile = env.config
	t.Cleanup(func() { cfgFile = "config.yaml" })

	names, _ := completeRuleNames(checkCmd, nil, "co")
	if len(names) != 1 || names[0] != "copy\tproduct copy" {
		t.Errorf("completeRuleNames(co) = %v", names)
	}
	if names, _ := completeRuleNames(checkCmd, nil, "zz"); len(names) != 0 {
		t.Errorf("completeRuleNames(zz) = %v, want none", names)
	}
	if names, _ := completeRuleArg(rulesShowCmd, []string{"copy"}, ""); len(names) != 0 {
		t.Errorf("second argument completed: %v", names)
	}
}
