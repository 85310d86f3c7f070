package prompt

import (
	"fmt"
	"strings"

	"mercator-hq/copycheck/pkg/detect"
	"mercator-hq/copycheck/pkg/rules"
)

// Section headings and fixed texts of the composed instructions.
const (
	manifestHeading   = "\n\n## チェック用キーワード参照\n"
	fullManifestIntro = "以下のキーワードについてのルールが定義されています:\n"
	detectedIntro     = "以下のキーワードが検出されました:\n"
	detailsHeading    = "\n## 各キーワードの詳細ルール\n"
	noteHeading       = "\n\n## 注意\n"

	// FallbackNote is appended when no reference keyword applies.
	FallbackNote = "商品テキストから該当するキーワードが検出されませんでしたが、一般的な薬機法・景表法の観点からチェックしてください。"
)

// Full composes the rule body, a manifest of every keyword and every
// reference document in keyword order. A rule without references yields
// its body alone.
func Full(rule *rules.Rule) string {
	parts := []string{rule.Body}
	keywords := rule.Keywords()
	if len(keywords) == 0 {
		return rule.Body
	}
	return compose(parts, fullManifestIntro, rule, keywords)
}

// Dynamic composes the rule body with only the detected keywords that exist
// in the rule. When none remain, FallbackNote is appended instead.
func Dynamic(rule *rules.Rule, detected detect.Set) string {
	parts := []string{rule.Body}

	var keywords []string
	for _, kw := range detected.Sorted() {
		if _, ok := rule.References[kw]; ok {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		parts = append(parts, noteHeading, FallbackNote)
		return strings.Join(parts, "\n")
	}
	return compose(parts, detectedIntro, rule, keywords)
}

func compose(parts []string, intro string, rule *rules.Rule, keywords []string) string {
	var manifest strings.Builder
	manifest.WriteString(intro)
	for _, kw := range keywords {
		manifest.WriteString("- ")
		manifest.WriteString(kw)
		manifest.WriteString("\n")
	}

	parts = append(parts, manifestHeading, manifest.String(), detailsHeading)
	for _, kw := range keywords {
		parts = append(parts, "\n### "+kw+"\n", rule.References[kw].Document)
	}
	return strings.Join(parts, "\n")
}

// Mode selects how references are included.
type Mode int

const (
	// ModeDynamic includes only detected references.
	ModeDynamic Mode = iota

	// ModeFull includes every reference.
	ModeFull
)

// ParseMode maps "dynamic" and "full" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dynamic":
		return ModeDynamic, nil
	case "full":
		return ModeFull, nil
	default:
		return ModeDynamic, fmt.Errorf("invalid prompt mode %q (must be dynamic or full)", s)
	}
}

// String returns "dynamic" or "full".
func (m Mode) String() string {
	if m == ModeFull {
		return "full"
	}
	return "dynamic"
}

// Compose builds instructions for mode. detected is ignored by ModeFull.
func Compose(mode Mode, rule *rules.Rule, detected detect.Set) string {
	if mode == ModeFull {
		return Full(rule)
	}
	return Dynamic(rule, detected)
}
