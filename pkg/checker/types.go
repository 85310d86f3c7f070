package checker

import "context"

// Checker sends instructions and a product text to a text-generation service
// and returns its verdict text. Failures are *RequestError values.
type Checker interface {
	Check(ctx context.Context, req Request) (*Response, error)
}

// Request is one check.
type Request struct {
	// Instructions is the composed rule prompt, sent as the system message.
	Instructions string

	// Content is the product text, sent as the user message.
	Content string
}

// Response is the service's answer.
type Response struct {
	// Text is the generated verdict.
	Text string

	// Model is the model that produced the verdict, as reported by the service.
	Model string

	// FinishReason is the normalized stop reason ("stop", "length", ...).
	FinishReason string

	// Usage reports token consumption.
	Usage Usage
}

// Usage counts tokens of one call.
type Usage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// Func adapts a function to the Checker interface.
type Func func(ctx context.Context, req Request) (*Response, error)

// Check implements Checker.
func (f Func) Check(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
