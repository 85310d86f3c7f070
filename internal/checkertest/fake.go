package checkertest

import (
	"context"
	"strings"
	"sync"

	"mercator-hq/copycheck/pkg/checker"
)

// Fake is an in-process Checker. Each call is answered by the first rule
// whose substring occurs in the request content; otherwise Default is
// returned. Calls are recorded.
type Fake struct {
	// Default answers requests no rule matches.
	Default string

	mu    sync.Mutex
	rules []fakeRule
	calls []checker.Request
}

type fakeRule struct {
	contains string
	text     string
	err      error
}

// NewFake creates a Fake answering "結論: OK" by default.
func NewFake() *Fake {
	return &Fake{Default: "結論: OK"}
}

// Reply answers content containing substr with text.
func (f *Fake) Reply(substr, text string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, fakeRule{contains: substr, text: text})
	return f
}

// Fail answers content containing substr with err.
func (f *Fake) Fail(substr string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, fakeRule{contains: substr, err: err})
	return f
}

// Check implements checker.Checker.
func (f *Fake) Check(ctx context.Context, req checker.Request) (*checker.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	rules := f.rules
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &checker.RequestError{Kind: checker.KindCanceled, Message: "call canceled", Cause: err}
	}

	for _, r := range rules {
		if strings.Contains(req.Content, r.contains) {
			if r.err != nil {
				return nil, r.err
			}
			return &checker.Response{Text: r.text, Model: "fake", Usage: checker.Usage{Input: 10, Output: 5}}, nil
		}
	}
	return &checker.Response{Text: f.Default, Model: "fake", Usage: checker.Usage{Input: 10, Output: 5}}, nil
}

// Calls returns a copy of the recorded requests.
func (f *Fake) Calls() []checker.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]checker.Request(nil), f.calls...)
}
