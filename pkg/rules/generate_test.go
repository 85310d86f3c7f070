package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateReferences(t *testing.T) {
	master := strings.Join([]string{
		"番号\tチェック用キーワード\t対応\t分類\t表示例\t読み\t判断\tOKの場合\tNGの場合\t備考\tガイドライン等",
		"\t\t\t\t\t\t\t\t\t\t出典",
		"1\t美白\t要注意\t効能\tシミを防ぐ\tびはく\t条件付き\t医薬部外品\t化粧品\t\t通知",
		"\t\t\t\t\t\t\t\t\t\t",
		"2\tA/B\t\t\t\t\t\t\t\t\t",
		"3\t \t\t\t\t\t\t\t\t\t",
	}, "\n")

	out := t.TempDir()
	n, err := GenerateReferences(strings.NewReader(master), out, "")
	if err != nil {
		t.Fatalf("GenerateReferences() error = %v", err)
	}
	if n != 2 {
		t.Errorf("GenerateReferences() = %d, want 2", n)
	}

	got, err := os.ReadFile(filepath.Join(out, "美白.md"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := strings.Join([]string{
		"# チェック用キーワード: 美白",
		"",
		"- 番号: 1",
		"- 分類: 効能",
		"- 読み: びはく",
		"",
		"## 対応", "要注意", "",
		"## 表示例", "シミを防ぐ", "",
		"## 判断", "条件付き", "",
		"## OKの場合", "医薬部外品", "",
		"## NGの場合", "化粧品", "",
		"## 備考", "", "",
		"## ガイドライン等の出典", "通知", "",
	}, "\n")
	if string(got) != want {
		t.Errorf("document =\n%s\nwant\n%s", got, want)
	}

	if _, err := os.Stat(filepath.Join(out, "A／B.md")); err != nil {
		t.Errorf("slash keyword not sanitised: %v", err)
	}
}

func TestGenerateReferences_MissingKeywordColumn(t *testing.T) {
	_, err := GenerateReferences(strings.NewReader("番号\t対応\n1\tx\n"), t.TempDir(), ".md")
	if err == nil {
		t.Fatal("GenerateReferences() error = nil, want error")
	}
}

func TestGenerateReferences_Empty(t *testing.T) {
	if _, err := GenerateReferences(strings.NewReader(""), t.TempDir(), ".md"); err == nil {
		t.Fatal("GenerateReferences() error = nil, want error")
	}
}

func TestReferenceFileName(t *testing.T) {
	if got := ReferenceFileName("a/b/c", ".md"); got != "a／b／c.md" {
		t.Errorf("ReferenceFileName() = %q", got)
	}
}
