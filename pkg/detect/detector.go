package detect

import (
	"log/slog"
	"regexp"
	"sync"

	"mercator-hq/copycheck/pkg/rules"
)

// Detector finds which reference keywords of a rule occur in a text.
// Compiled patterns are cached per strategy and keyword. A Detector is safe
// for concurrent use.
type Detector struct {
	strictness Strictness
	strategies []Strategy
	logger     *slog.Logger

	// key: strategy + "\x00" + keyword, value: *regexp.Regexp (nil when the
	// pattern did not compile)
	patterns sync.Map
}

// New creates a Detector.
func New(strictness Strictness, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		strictness: strictness,
		strategies: strictness.Strategies(),
		logger:     logger.With("component", "detect"),
	}
}

// Strictness returns the configured strictness.
func (d *Detector) Strictness() Strictness {
	return d.strictness
}

// Detect returns the rule's reference keywords present in text. Empty text
// or a rule without references yields an empty set.
func (d *Detector) Detect(rule *rules.Rule, text string) Set {
	if rule == nil {
		return Set{}
	}
	return d.DetectKeywords(rule.Keywords(), text)
}

// DetectKeywords returns the subset of keywords present in text. For each
// keyword the strategies are tried in order and the first match detects it.
func (d *Detector) DetectKeywords(keywords []string, text string) Set {
	found := Set{}
	if text == "" {
		return found
	}

	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		for _, strategy := range d.strategies {
			re := d.compiled(strategy, kw)
			if re == nil {
				continue
			}
			if re.MatchString(text) {
				found[kw] = struct{}{}
				break
			}
		}
	}
	return found
}

func (d *Detector) compiled(strategy Strategy, keyword string) *regexp.Regexp {
	key := strategy.String() + "\x00" + keyword
	if v, ok := d.patterns.Load(key); ok {
		return v.(*regexp.Regexp)
	}

	re, err := regexp.Compile(strategy.pattern(keyword))
	if err != nil {
		d.logger.Debug("keyword pattern skipped",
			"keyword", keyword,
			"strategy", strategy.String(),
			"error", err,
		)
		re = nil
	}
	v, _ := d.patterns.LoadOrStore(key, re)
	return v.(*regexp.Regexp)
}
