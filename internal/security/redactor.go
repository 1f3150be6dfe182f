package security

import "regexp"

// substitution masks one sensitive value shape. Substitutions run in
// declaration order over the already-partially-redacted string; the
// shapes are chosen not to overlap in practice. Masks never match the
// source patterns, so redaction is idempotent.
type substitution struct {
	pattern *regexp.Regexp
	mask    string
}

var substitutions = []substitution{
	// SSN-shaped sequences
	{regexp.MustCompile(`\d{3}-\d{2}-\d{4}`), "***-**-****"},
	// 16-digit card numbers, optionally grouped in 4s
	{regexp.MustCompile(`\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}`), "****-****-****-****"},
	// RFC-shaped email addresses
	{regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`), "[email]"},
	// bare 10-digit runs (phone numbers)
	{regexp.MustCompile(`\b\d{10}\b`), "[phone]"},
}

// Redact masks known sensitive value shapes in a task text. It runs
// independently of classification: text that passes Classify may still
// carry a shape that gets masked here. Never fails; unmatched text
// passes through unchanged.
func Redact(text string) string {
	for _, s := range substitutions {
		text = s.pattern.ReplaceAllString(text, s.mask)
	}
	return text
}
