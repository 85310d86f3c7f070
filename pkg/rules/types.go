package rules

import "sort"

// Rule is a named compliance policy: an instruction body plus keyword-tagged
// reference documents. A Rule is immutable once loaded.
type Rule struct {
	// Name is unique across a Repository.
	Name string

	// Description is a short human description. May be empty.
	Description string

	// Body is the instruction text that follows the front matter.
	Body string

	// Dir is the directory the rule was loaded from, relative to the root.
	Dir string

	// DefinitionKey is the content key of the primary document.
	DefinitionKey string

	// References maps keyword to reference. Keys are case-sensitive.
	References map[string]Reference
}

// Reference pairs a keyword with its rule-detail document.
type Reference struct {
	// Keyword is non-empty and equals the document file name without extension.
	Keyword string

	// Document is the reference text.
	Document string

	// Key is the content key the document was resolved from.
	Key string
}

// Keywords returns the rule's reference keywords in lexicographic order.
func (r *Rule) Keywords() []string {
	keywords := make([]string, 0, len(r.References))
	for kw := range r.References {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	return keywords
}

// ContentKeys returns every content key the rule was built from, definition
// first, then references in keyword order.
func (r *Rule) ContentKeys() []string {
	keys := []string{r.DefinitionKey}
	for _, kw := range r.Keywords() {
		keys = append(keys, r.References[kw].Key)
	}
	return keys
}

// Summary is the name and description of a loaded rule.
type Summary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Definition is the front matter of a primary rule document.
// A missing name defaults to the directory name; a missing description to "".
type Definition struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Layout describes the file layout inside each rule directory.
type Layout struct {
	// DefinitionFile is the primary document, e.g. "SKILL.md".
	DefinitionFile string

	// ReferencesDir holds one document per keyword, e.g. "references".
	ReferencesDir string

	// Extension of reference documents, e.g. ".md".
	Extension string
}

// DefaultLayout is the layout used when a zero Layout is given.
var DefaultLayout = Layout{
	DefinitionFile: "SKILL.md",
	ReferencesDir:  "references",
	Extension:      ".md",
}
