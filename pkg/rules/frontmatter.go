package rules

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// ParseDefinition splits a primary document into its front matter and
// instruction body. The front matter is a YAML block between a first line of
// "---" and the next line of "---". Without a closing delimiter the whole
// document is the body. The body is trimmed of surrounding whitespace.
func ParseDefinition(doc string) (Definition, string, error) {
	var def Definition

	doc = strings.TrimPrefix(doc, "\ufeff")
	first, rest, ok := strings.Cut(doc, "\n")
	if !ok || strings.TrimRight(first, " \t\r") != frontMatterDelimiter {
		return def, strings.TrimSpace(doc), nil
	}

	var header strings.Builder
	for {
		line, next, more := strings.Cut(rest, "\n")
		if strings.TrimRight(line, " \t\r") == frontMatterDelimiter {
			if err := yaml.Unmarshal([]byte(header.String()), &def); err != nil {
				return Definition{}, "", err
			}
			def.Name = strings.TrimSpace(def.Name)
			def.Description = strings.TrimSpace(def.Description)
			return def, strings.TrimSpace(next), nil
		}
		if !more {
			// unterminated front matter
			return Definition{}, strings.TrimSpace(doc), nil
		}
		header.WriteString(line)
		header.WriteByte('\n')
		rest = next
	}
}
