package rules

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

// newCorpus lays out two rules, a directory without a definition document
// and a rule whose name duplicates the first.
func newCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "a-copy", "SKILL.md"),
		"---\nname: copy\ndescription: product copy\n---\nCheck the copy.\n")
	writeFile(t, filepath.Join(root, "a-copy", "references", "美白.md"), "美白 detail")
	writeFile(t, filepath.Join(root, "a-copy", "references", "シミ.md"), "シミ detail")
	writeFile(t, filepath.Join(root, "a-copy", "references", "notes.txt"), "ignored")

	writeFile(t, filepath.Join(root, "b-plain", "SKILL.md"), "No front matter here.")

	writeFile(t, filepath.Join(root, "c-empty", "README.md"), "not a rule")

	writeFile(t, filepath.Join(root, "d-dup", "SKILL.md"), "---\nname: copy\n---\nSecond copy.")

	writeFile(t, filepath.Join(root, ".hidden", "SKILL.md"), "---\nname: hidden\n---\n")

	return root
}

func TestRepository_Load(t *testing.T) {
	repo := NewRepository(newCorpus(t), Layout{}, nil, nil)
	if err := repo.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []Summary{
		{Name: "copy", Description: "product copy"},
		{Name: "b-plain", Description: ""},
	}
	if got := repo.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %+v, want %+v", got, want)
	}

	rule, err := repo.Rule("copy")
	if err != nil {
		t.Fatalf("Rule() error = %v", err)
	}
	if rule.Dir != "a-copy" {
		t.Errorf("Dir = %q, want the first directory %q", rule.Dir, "a-copy")
	}
	if rule.Body != "Check the copy." {
		t.Errorf("Body = %q", rule.Body)
	}
	if got, want := rule.Keywords(), []string{"シミ", "美白"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keywords() = %v, want %v", got, want)
	}
	if got := rule.References["美白"].Document; got != "美白 detail" {
		t.Errorf("reference document = %q", got)
	}
	if got, want := rule.References["シミ"].Key, "a-copy/references/シミ.md"; got != want {
		t.Errorf("reference key = %q, want %q", got, want)
	}
	wantKeys := []string{"a-copy/SKILL.md", "a-copy/references/シミ.md", "a-copy/references/美白.md"}
	if got := rule.ContentKeys(); !reflect.DeepEqual(got, wantKeys) {
		t.Errorf("ContentKeys() = %v, want %v", got, wantKeys)
	}

	plain, err := repo.Rule("b-plain")
	if err != nil {
		t.Fatalf("Rule(b-plain) error = %v", err)
	}
	if len(plain.References) != 0 {
		t.Errorf("References = %v, want none", plain.References)
	}

	if got := len(repo.Rules()); got != 2 {
		t.Errorf("len(Rules()) = %d, want 2", got)
	}
}

func TestRepository_Load_MissingRoot(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "missing"), Layout{}, nil, nil)

	err := repo.Load(context.Background())

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Load() error type = %T, want *LoadError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want wrapped ErrNotExist", err)
	}
}

func TestRepository_Rule_NotFound(t *testing.T) {
	repo := NewRepository(newCorpus(t), Layout{}, nil, nil)
	if err := repo.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	_, err := repo.Rule("unknown")

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Rule() error type = %T, want *NotFoundError", err)
	}
	if nf.Name != "unknown" {
		t.Errorf("Name = %q, want %q", nf.Name, "unknown")
	}
}

func TestRepository_Load_InvalidFrontMatterSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bad", "SKILL.md"), "---\nname: [oops\n---\nbody")
	writeFile(t, filepath.Join(root, "good", "SKILL.md"), "body")

	repo := NewRepository(root, Layout{}, nil, nil)
	if err := repo.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := repo.List(); len(got) != 1 || got[0].Name != "good" {
		t.Errorf("List() = %+v, want only good", got)
	}
}

type mapSource map[string]string

func (m mapSource) Resolve(_ context.Context, key string) (string, error) {
	if v, ok := m[key]; ok {
		return v, nil
	}
	return "", &NotFoundError{Name: key}
}

func TestRepository_Load_ThroughSource(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "copy", "SKILL.md"), "local body")
	writeFile(t, filepath.Join(root, "copy", "references", "kw.md"), "local ref")
	writeFile(t, filepath.Join(root, "copy", "references", "gone.md"), "local only")

	source := mapSource{
		"copy/SKILL.md":         "---\nname: remote\n---\nremote body",
		"copy/references/kw.md": "remote ref",
	}

	repo := NewRepository(root, Layout{}, source, nil)
	if err := repo.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	rule, err := repo.Rule("remote")
	if err != nil {
		t.Fatalf("Rule() error = %v", err)
	}
	if rule.Body != "remote body" {
		t.Errorf("Body = %q, want content from the source", rule.Body)
	}
	if got := rule.Keywords(); !reflect.DeepEqual(got, []string{"kw"}) {
		t.Errorf("Keywords() = %v, want unresolvable reference left out", got)
	}
}

func TestRepository_CustomLayout(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "copy", "RULE.txt"), "body")
	writeFile(t, filepath.Join(root, "copy", "refs", "kw.txt"), "ref")

	layout := Layout{DefinitionFile: "RULE.txt", ReferencesDir: "refs", Extension: ".txt"}
	repo := NewRepository(root, layout, nil, nil)
	if err := repo.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	rule, err := repo.Rule("copy")
	if err != nil {
		t.Fatalf("Rule() error = %v", err)
	}
	if _, ok := rule.References["kw"]; !ok {
		t.Errorf("References = %v, want kw", rule.References)
	}
}
