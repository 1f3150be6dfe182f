// Package security implements the trust boundary for submitted tasks:
// lexical classification against restricted content categories and
// destinations, redaction of sensitive value shapes, and the static
// capability policy that bounds execution.
//
// Classify and Redact are pure functions, safe for concurrent use.
package security
