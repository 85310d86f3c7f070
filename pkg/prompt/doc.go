// Package prompt composes checker instructions from a rule.
//
// Composition is pure and byte-deterministic: references are always ordered
// by keyword, so the same rule and keyword set produce identical output.
package prompt
