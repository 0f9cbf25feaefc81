// Package normalize canonicalizes free-text company names into a
// comparable form. Normalization is pure, deterministic, and idempotent:
// the same raw name always yields the same clean name, and normalizing
// a clean name is a no-op.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Rule is one whole-word substitution, applied in table order.
type Rule struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// defaultAbbreviations expand common short forms so that abbreviated
// legal suffixes are recognized as full forms by the suffix pass.
// Must run before suffix stripping.
var defaultAbbreviations = []Rule{
	{Pattern: `\bINTL\b`, Replacement: "INTERNATIONAL"},
	{Pattern: `\bNATL\b`, Replacement: "NATIONAL"},
	{Pattern: `\bCORP\b`, Replacement: "CORPORATION"},
	{Pattern: `\bINC\b`, Replacement: "INCORPORATED"},
	{Pattern: `\bMFG\b`, Replacement: "MANUFACTURING"},
	{Pattern: `\bTECH\b`, Replacement: "TECHNOLOGY"},
	{Pattern: `\bSYS\b`, Replacement: "SYSTEMS"},
}

// defaultSuffixes lists legal-entity suffixes stripped as whole words,
// fuller forms first so partial tokens never survive (stripping CORP
// ahead of CORPORATION would leave ORATION behind).
var defaultSuffixes = []string{
	`\bINCORPORATED\b`, `\bCORPORATION\b`, `\bCOMPANY\b`,
	`\bLIMITED\b`, `\bGROUP\b`,
	`\bCORP\.?\b`, `\bINC\.?\b`, `\bLTD\.?\b`,
	`\bCO\.?\b`, `\bL\.L\.C\.?\b`, `\bPLC\.?\b`,
	`\bLLC\b`, `\bS\.A\.\b`, `\bNV\b`, `\bGMBH\b`,
	`\bSA\b`, `\bAG\b`, `\bKK\b`,
}

var (
	nonAlnumRe    = regexp.MustCompile(`[^A-Z0-9\s]`)
	multiSpaceRe  = regexp.MustCompile(`\s+`)
	accentFolder  = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	symbolReplace = strings.NewReplacer("&", " AND ", "-", " ", "'", "", "’", "")
)

type compiledRule struct {
	re   *regexp.Regexp
	repl string
}

// Normalizer canonicalizes entity names using ordered rule tables.
type Normalizer struct {
	abbreviations []compiledRule
	suffixes      []*regexp.Regexp
}

// New builds a Normalizer with the built-in rule tables.
func New() *Normalizer {
	n, err := NewWithRules(Rules{})
	if err != nil {
		// Built-in tables compile; reachable only on a bad default table.
		panic(err)
	}
	return n
}

// NewWithRules builds a Normalizer with the built-in tables extended by
// extra rules. Extras run after the built-ins of their table.
func NewWithRules(extra Rules) (*Normalizer, error) {
	n := &Normalizer{}

	for _, r := range append(append([]Rule{}, defaultAbbreviations...), extra.Abbreviations...) {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, err
		}
		n.abbreviations = append(n.abbreviations, compiledRule{re: re, repl: r.Replacement})
	}

	for _, pat := range append(append([]string{}, defaultSuffixes...), extra.Suffixes...) {
		re, err := regexp.Compile(`(?i)` + pat)
		if err != nil {
			return nil, err
		}
		n.suffixes = append(n.suffixes, re)
	}

	return n, nil
}

// Normalize converts a raw company name into its canonical clean form.
// Steps run in fixed order; later steps assume earlier ones ran.
// The empty string comes back for empty or suffix-only input.
func (n *Normalizer) Normalize(raw string) string {
	name := strings.ToUpper(strings.TrimSpace(raw))
	if name == "" {
		return ""
	}

	if folded, _, err := transform.String(accentFolder, name); err == nil {
		name = folded
	}

	// Symbols: & joins, dashes split, apostrophes vanish.
	name = symbolReplace.Replace(name)

	// Abbreviations expand before suffixes are recognized.
	for _, r := range n.abbreviations {
		name = r.re.ReplaceAllString(name, r.repl)
	}

	for _, re := range n.suffixes {
		name = re.ReplaceAllString(name, "")
	}

	// Only uppercase letters, digits, and whitespace survive.
	name = nonAlnumRe.ReplaceAllString(name, " ")
	name = multiSpaceRe.ReplaceAllString(name, " ")

	return strings.TrimSpace(name)
}

var defaultNormalizer = New()

// Name normalizes a raw company name with the built-in rule tables.
func Name(raw string) string {
	return defaultNormalizer.Normalize(raw)
}
