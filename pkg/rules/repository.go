package rules

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"mercator-hq/copycheck/pkg/resolver"
)

// ContentSource resolves a content key to document text.
// *resolver.Resolver implements it.
type ContentSource interface {
	Resolve(ctx context.Context, key string) (string, error)
}

// Repository loads and indexes the rule corpus. Candidates are discovered by
// listing the local root directory; document bodies are fetched through the
// ContentSource so cached or remote copies take precedence.
//
// Load must complete before any reader uses the Repository. After that the
// Repository is read-only and safe for concurrent use.
type Repository struct {
	root   string
	layout Layout
	source ContentSource
	logger *slog.Logger

	rules map[string]*Rule
	order []string
}

// NewRepository creates a Repository for the corpus under root. A nil source
// reads documents straight from root; a zero layout uses DefaultLayout.
func NewRepository(root string, layout Layout, source ContentSource, logger *slog.Logger) *Repository {
	if layout == (Layout{}) {
		layout = DefaultLayout
	}
	if source == nil {
		source = resolver.New(resolver.Options{Logger: logger}, resolver.Layer{Tier: resolver.NewLocal(root)})
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		root:   root,
		layout: layout,
		source: source,
		logger: logger.With("component", "rules.repository"),
		rules:  make(map[string]*Rule),
	}
}

// Root returns the local corpus directory.
func (r *Repository) Root() string {
	return r.root
}

// Load scans the root for one directory per rule, in lexical order of the
// directory names. A missing root is a *LoadError. Directories without a
// definition document, with unparsable front matter or whose definition
// cannot be resolved are skipped with a warning. A rule name already taken
// is rejected with a logged *DuplicateError.
func (r *Repository) Load(ctx context.Context) error {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		msg := "cannot read rule root"
		if errors.Is(err, fs.ErrNotExist) {
			msg = "rule root does not exist"
		}
		return &LoadError{Path: r.root, Message: msg, Cause: err}
	}

	rules := make(map[string]*Rule)
	var order []string

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rule, err := r.loadRule(ctx, entry.Name())
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.WarnContext(ctx, "skipping rule directory", "dir", entry.Name(), "error", err)
			continue
		}
		if rule == nil {
			continue
		}

		if existing, ok := rules[rule.Name]; ok {
			dup := &DuplicateError{Name: rule.Name, KeptDir: existing.Dir, RejectedDir: rule.Dir}
			r.logger.ErrorContext(ctx, "duplicate rule name", "error", dup)
			continue
		}

		rules[rule.Name] = rule
		order = append(order, rule.Name)
		r.logger.DebugContext(ctx, "rule loaded",
			"rule", rule.Name,
			"dir", rule.Dir,
			"references", len(rule.References),
		)
	}

	r.rules = rules
	r.order = order
	r.logger.InfoContext(ctx, "rules loaded", "count", len(order), "root", r.root)
	return nil
}

// loadRule returns nil, nil for a directory without a definition document.
func (r *Repository) loadRule(ctx context.Context, dir string) (*Rule, error) {
	defPath := filepath.Join(r.root, dir, r.layout.DefinitionFile)
	if _, err := os.Stat(defPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.DebugContext(ctx, "no definition document, skipping", "dir", dir)
			return nil, nil
		}
		return nil, err
	}

	key := path.Join(dir, r.layout.DefinitionFile)
	doc, err := r.source.Resolve(ctx, key)
	if err != nil {
		return nil, err
	}

	def, body, err := ParseDefinition(doc)
	if err != nil {
		return nil, &ParseError{Key: key, Cause: err}
	}

	name := def.Name
	if name == "" {
		name = dir
	}

	return &Rule{
		Name:          name,
		Description:   def.Description,
		Body:          body,
		Dir:           dir,
		DefinitionKey: key,
		References:    r.loadReferences(ctx, dir),
	}, nil
}

// loadReferences reads every reference document of a rule. Unresolvable
// documents are logged and left out.
func (r *Repository) loadReferences(ctx context.Context, dir string) map[string]Reference {
	refs := make(map[string]Reference)

	entries, err := os.ReadDir(filepath.Join(r.root, dir, r.layout.ReferencesDir))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.WarnContext(ctx, "cannot list references", "dir", dir, "error", err)
		}
		return refs
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, r.layout.Extension) {
			continue
		}
		keyword := strings.TrimSuffix(name, r.layout.Extension)
		if keyword == "" {
			continue
		}

		key := path.Join(dir, r.layout.ReferencesDir, name)
		doc, err := r.source.Resolve(ctx, key)
		if err != nil {
			r.logger.WarnContext(ctx, "skipping reference", "key", key, "error", err)
			continue
		}
		refs[keyword] = Reference{Keyword: keyword, Document: doc, Key: key}
	}

	return refs
}

// Rule returns the named rule or a *NotFoundError.
func (r *Repository) Rule(name string) (*Rule, error) {
	rule, ok := r.rules[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return rule, nil
}

// List returns name and description of every loaded rule in load order.
func (r *Repository) List() []Summary {
	out := make([]Summary, 0, len(r.order))
	for _, name := range r.order {
		rule := r.rules[name]
		out = append(out, Summary{Name: rule.Name, Description: rule.Description})
	}
	return out
}

// Rules returns every loaded rule in load order.
func (r *Repository) Rules() []*Rule {
	out := make([]*Rule, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.rules[name])
	}
	return out
}
