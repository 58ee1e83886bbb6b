// Package brandvoice rewrites generated answers into Beforest's first-person
// brand voice: canonical domains, no assistant meta-talk, branded fallbacks.
package brandvoice

import (
	"regexp"
	"strings"
)

// CanonicalDomains is the closed set of authoritative brand domains. Tokens
// matching beforest.<tld> that are not in this set get rewritten to the root.
var CanonicalDomains = []string{
	"beforest.co",
	"bewild.life",
	"hospitality.beforest.co",
	"experiences.beforest.co",
	"10percent.beforest.co",
}

const canonicalRoot = "beforest.co"

var canonicalSet = func() map[string]bool {
	m := make(map[string]bool, len(CanonicalDomains))
	for _, d := range CanonicalDomains {
		m[d] = true
	}
	return m
}()

// Known wrong-but-common spellings. Longer aliases first so the www variants
// are swallowed before their bare forms.
var domainAliases = []struct {
	re        *regexp.Regexp
	canonical string
}{
	{regexp.MustCompile(`(?i)\bwww\.beforest\.in\b`), "beforest.co"},
	{regexp.MustCompile(`(?i)\bbeforest\.in\b`), "beforest.co"},
	{regexp.MustCompile(`(?i)\bbeforest\.org\b`), "beforest.co"},
	{regexp.MustCompile(`(?i)\bbeforest\.com\b`), "beforest.co"},
	{regexp.MustCompile(`(?i)\bbeforest\.net\b`), "beforest.co"},
	{regexp.MustCompile(`(?i)\bbewildproduce\.com\b`), "bewild.life"},
	{regexp.MustCompile(`(?i)\bbewild\.in\b`), "bewild.life"},
}

var brandDomainPattern = regexp.MustCompile(`(?i)\b(?:[a-z0-9-]+\.)*beforest\.[a-z]{2,}\b`)

// CanonicalizeDomains rewrites aliased or misspelled brand domains to the
// canonical ones. Already-canonical domains pass through unchanged.
func CanonicalizeDomains(text string) string {
	for _, a := range domainAliases {
		text = a.re.ReplaceAllString(text, a.canonical)
	}

	return brandDomainPattern.ReplaceAllStringFunc(text, func(match string) string {
		key := strings.TrimPrefix(strings.ToLower(match), "www.")
		if canonicalSet[key] {
			return match
		}
		return canonicalRoot
	})
}

var metaPhraseRemovals = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bbased on my research,?\s*`),
	regexp.MustCompile(`(?i)\bbased on the research,?\s*`),
	regexp.MustCompile(`(?i)\baccording to my research,?\s*`),
	regexp.MustCompile(`(?i)\bbased on my knowledge base,?\s*`),
	regexp.MustCompile(`(?i)\bfrom my knowledge base,?\s*`),
	regexp.MustCompile(`(?i)\bas an ai assistant,?\s*`),
	regexp.MustCompile(`(?i)\bas an ai,?\s*`),
	regexp.MustCompile(`(?i)\bi'?m an ai assistant\.?\s*`),
	regexp.MustCompile(`(?i)\bi am an ai assistant\.?\s*`),
}

var knowledgeBasePhrase = regexp.MustCompile(`(?i)\bknowledge base\b`)

var (
	repeatedSpace    = regexp.MustCompile(`\s+`)
	spaceBeforePunct = regexp.MustCompile(`\s+([,.!?;:])`)
)

// HumanizeVoice strips assistant meta-phrasing so the answer reads as the
// brand speaking in first person, then repairs whitespace artifacts the
// removals leave behind.
func HumanizeVoice(text string) string {
	for _, re := range metaPhraseRemovals {
		text = re.ReplaceAllString(text, "")
	}
	text = knowledgeBasePhrase.ReplaceAllString(text, "current details")

	text = repeatedSpace.ReplaceAllString(text, " ")
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

var dashReplacer = strings.NewReplacer(
	"‐", "-",
	"‑", "-",
	"‒", "-",
	"–", "-",
	"—", "-",
	"―", "-",
)

// NormalizeDashes collapses unicode dash variants to a plain hyphen.
func NormalizeDashes(text string) string {
	return dashReplacer.Replace(text)
}

var noInfoHedges = []string{
	"no information",
	"don't have information",
	"do not have information",
	"don't have any information",
	"couldn't find",
	"could not find",
	"unable to find",
	"not available in",
	"no details available",
}

const bewildNoInfoReply = "Bewild is our produce brand: small-batch harvests from the Beforest collectives, think wild infusions, forest honey, cold-pressed oils and heritage rice. The lineup rotates with the seasons, so tell me what you're after and I'll check what's in stock right now."

// Per-brand fallbacks for product questions the pipeline couldn't answer.
// Only Bewild has one today; other brands pass through unchanged.
var brandNoInfoReplies = map[string]string{
	"bewild": bewildNoInfoReply,
}

var productAskKeywords = []string{
	"product", "products", "catalog", "catalogue", "price list",
	"buy", "shop", "order", "stock", "available",
}

// ApplyNoInfoOverride replaces a hedging non-answer with a fixed branded
// paragraph when the user asked about a specific brand's products.
func ApplyNoInfoOverride(userMessage, answer string) string {
	msgLower := strings.ToLower(userMessage)

	var override string
	for brand, reply := range brandNoInfoReplies {
		if strings.Contains(msgLower, brand) {
			override = reply
			break
		}
	}
	if override == "" {
		return answer
	}

	if !containsAny(msgLower, productAskKeywords) {
		return answer
	}

	ansLower := strings.ToLower(answer)
	for _, hedge := range noInfoHedges {
		if strings.Contains(ansLower, hedge) {
			return override
		}
	}
	return answer
}

// Polish runs the full post-processing sequence on a generated answer:
// dash normalization, voice cleanup, domain canonicalization, then the
// branded no-info override. Order matters and is part of the contract.
func Polish(userMessage, answer string) string {
	out := NormalizeDashes(answer)
	out = HumanizeVoice(out)
	out = CanonicalizeDomains(out)
	return ApplyNoInfoOverride(userMessage, out)
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
