package security

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/clickagent/backend/internal/shared/types"
)

// category pairs a name with its compiled matcher. Categories are kept
// in a slice so evaluation order is fixed and testable; new categories
// are additions to the table, not new control flow.
type category struct {
	name    string
	pattern *regexp.Regexp
}

// blockedCategories is the ordered content rule table. Matching is
// case-insensitive and purely lexical: "do NOT enter my password"
// still blocks. False positives are preferred over false negatives.
var blockedCategories = []category{
	{"visa", regexp.MustCompile(`(?i)visa|credit\s*card|debit\s*card|payment\s*method|billing\s*address`)},
	{"banking", regexp.MustCompile(`(?i)bank\s*account|account\s*number|routing\s*number|swift\s*code`)},
	{"crypto", regexp.MustCompile(`(?i)wallet|private\s*key|seed\s*phrase|crypto|bitcoin|ethereum`)},
	{"ssn", regexp.MustCompile(`(?i)ssn|social\s*security|tax\s*id|passport|driver.*license`)},
	{"personal", regexp.MustCompile(`(?i)phone\s*number|home\s*address|date\s*of\s*birth|mother.*maiden`)},
	{"password", regexp.MustCompile(`(?i)password|pin|secret|token|api.*key|auth.*code`)},
	{"oauth", regexp.MustCompile(`(?i)oauth|login|signin|authentication|2fa|two.*factor`)},
	{"health", regexp.MustCompile(`(?i)medical|health\s*record|prescription|diagnosis|patient\s*id`)},
	{"legal", regexp.MustCompile(`(?i)court\s*record|arrest|criminal|lawsuit|legal\s*document`)},
}

// blockedDestinations lists restricted destination substrings: payment
// processors, account-settings paths on major platforms, and generic
// finance terms. Checked after the category table, in list order.
var blockedDestinations = []string{
	"paypal.com",
	"stripe.com",
	"square.com",
	"amazon.com/account",
	"google.com/account",
	"facebook.com/settings",
	"twitter.com/settings",
	"linkedin.com/settings",
	"banking",
	"creditcard",
	"cryptocurrency",
}

// Classify decides whether a task text is safe to execute. The first
// matching rule wins: content categories in declaration order, then
// destination substrings in list order. Pure and deterministic.
func Classify(text string) types.SecurityDecision {
	for _, c := range blockedCategories {
		if c.pattern.MatchString(text) {
			return types.SecurityDecision{
				Safe:   false,
				Reason: fmt.Sprintf("Task contains restricted content: %s", c.name),
			}
		}
	}

	lower := strings.ToLower(text)
	for _, dest := range blockedDestinations {
		if strings.Contains(lower, dest) {
			return types.SecurityDecision{
				Safe:   false,
				Reason: fmt.Sprintf("Access to %s is restricted for security", dest),
			}
		}
	}

	return types.SecurityDecision{Safe: true}
}

// Categories returns the content category names in evaluation order.
func Categories() []string {
	names := make([]string, len(blockedCategories))
	for i, c := range blockedCategories {
		names[i] = c.name
	}
	return names
}

// RestrictedDestinations returns a copy of the destination block list.
func RestrictedDestinations() []string {
	out := make([]string, len(blockedDestinations))
	copy(out, blockedDestinations)
	return out
}
