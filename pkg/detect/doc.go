// Package detect selects the reference keywords of a rule that occur in a
// product text.
//
// Each keyword is tried against an ordered list of strategies (Word,
// Unsegmented, Substring) and is detected by the first that matches.
// Strictness Loose uses all three; Strict drops the plain substring
// fallback. A keyword whose pattern does not compile is skipped for that
// strategy only.
package detect
