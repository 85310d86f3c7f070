package objectstore

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// UploadDir uploads every regular file below dir whose name ends in one of
// exts (all files when exts is empty) to store under prefix. Hidden files
// and directories are skipped. It returns the stored keys in walk order.
func UploadDir(ctx context.Context, store Store, dir, prefix string, exts ...string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !hasExt(d.Name(), exts) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		body, err := os.ReadFile(p)
		if err != nil {
			return err
		}

		key, err := store.Put(ctx, path.Join(prefix, filepath.ToSlash(rel)), body, contentTypeFor(p))
		if err != nil {
			return err
		}
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return keys, fmt.Errorf("upload %s: %w", dir, err)
	}
	return keys, nil
}

// Latest returns the most recently modified entry whose key ends in one of
// exts, compared case-insensitively. ok is false when none matches.
func Latest(entries []Entry, exts ...string) (Entry, bool) {
	var matched []Entry
	for _, e := range entries {
		if hasExt(e.Key, exts) {
			matched = append(matched, e)
		}
	}
	if len(matched) == 0 {
		return Entry{}, false
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].LastModified.After(matched[j].LastModified)
	})
	return matched[0], true
}

// Filter returns the entries whose key ends in one of exts.
func Filter(entries []Entry, exts ...string) []Entry {
	var out []Entry
	for _, e := range entries {
		if hasExt(e.Key, exts) {
			out = append(out, e)
		}
	}
	return out
}

func hasExt(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md":
		return ContentTypeMarkdown
	case ".xlsx", ".xlsm":
		return ContentTypeXLSX
	default:
		return ""
	}
}
