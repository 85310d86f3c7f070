package batch

import "testing"

func TestTextSpec_Build(t *testing.T) {
	row := Row{
		{Column: "商品名", Value: "スーパーサプリ"},
		{Column: "商品コード", Value: "A-001"},
		{Column: "説明", Value: "  "},
		{Column: "キャッチ", Value: "業界最安！"},
	}

	tests := []struct {
		name        string
		spec        TextSpec
		row         Row
		wantText    string
		wantContent bool
	}{
		{
			name:        "id first then other columns in row order",
			spec:        TextSpec{IDColumn: "商品コード"},
			row:         row,
			wantText:    "商品コード: A-001\n商品名: スーパーサプリ\nキャッチ: 業界最安！",
			wantContent: true,
		},
		{
			name:        "designated content columns in configured order",
			spec:        TextSpec{IDColumn: "商品コード", ContentColumns: []string{"キャッチ", "説明", "存在しない", "商品名"}},
			row:         row,
			wantText:    "商品コード: A-001\nキャッチ: 業界最安！\n商品名: スーパーサプリ",
			wantContent: true,
		},
		{
			name:        "only identifying column",
			spec:        TextSpec{IDColumn: "商品コード"},
			row:         Row{{Column: "商品コード", Value: "A-002"}, {Column: "説明", Value: ""}},
			wantText:    "商品コード: A-002",
			wantContent: false,
		},
		{
			name:        "blank row",
			spec:        TextSpec{IDColumn: "商品コード"},
			row:         Row{{Column: "商品コード", Value: " "}, {Column: "説明", Value: ""}},
			wantText:    "",
			wantContent: false,
		},
		{
			name:        "missing identifying column",
			spec:        TextSpec{IDColumn: "商品コード"},
			row:         Row{{Column: "説明", Value: "天然成分"}},
			wantText:    "説明: 天然成分",
			wantContent: true,
		},
		{
			name: "result columns of a checked sheet are skipped",
			spec: TextSpec{IDColumn: "商品コード", SkipColumns: []string{"チェック結果", "結論"}},
			row: Row{
				{Column: "商品コード", Value: "A-003"},
				{Column: "コピー", Value: "最安"},
				{Column: "チェック結果", Value: "結論: NG"},
				{Column: "結論", Value: "NG"},
			},
			wantText:    "商品コード: A-003\nコピー: 最安",
			wantContent: true,
		},
		{
			name: "result columns only count as no data",
			spec: TextSpec{IDColumn: "商品コード", SkipColumns: []string{"チェック結果", "結論"}},
			row: Row{
				{Column: "商品コード", Value: "A-004"},
				{Column: "結論", Value: "OK"},
			},
			wantText:    "商品コード: A-004",
			wantContent: false,
		},
		{
			name:        "no identifying column configured",
			spec:        TextSpec{},
			row:         Row{{Column: "a", Value: "1"}, {Column: "b", Value: "2"}},
			wantText:    "a: 1\nb: 2",
			wantContent: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			text, hasContent := tt.spec.Build(tt.row)
			if text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
			if hasContent != tt.wantContent {
				t.Errorf("hasContent = %v, want %v", hasContent, tt.wantContent)
			}
		})
	}
}

func TestRow_Get(t *testing.T) {
	row := Row{{Column: "a", Value: "1"}, {Column: "a", Value: "2"}}
	if v, ok := row.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v, want first value", v, ok)
	}
	if _, ok := row.Get("b"); ok {
		t.Error("Get(b) ok = true for absent column")
	}
}
