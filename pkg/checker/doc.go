// Package checker calls the external text-generation service that judges
// product copy.
//
// Client speaks the OpenAI-compatible chat completions protocol: the composed
// rule prompt is the system message and the product text the user message.
// Transport errors and 5xx responses are retried with exponential backoff;
// every other failure is returned at once. The whole call, retries included,
// is bounded by the configured timeout. Every failure is a *RequestError.
package checker
