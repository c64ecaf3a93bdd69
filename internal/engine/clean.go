package engine

import (
	"regexp"
	"strings"
)

// Japanese card statements decorate merchant names with corporate forms
// and filler glyphs that carry no categorization signal.
// \s does not cover the full-width space, so the classes spell it out.
var (
	corporatePrefixRe = regexp.MustCompile(`^(株式会社|有限会社|合同会社)[\s　]*`)
	corporateSuffixRe = regexp.MustCompile(`[\s　]*(株式会社|有限会社|合同会社)$`)
	fillerGlyphRe     = regexp.MustCompile(`[・＊※]`)
	whitespaceRe      = regexp.MustCompile(`[\s　]+`)
)

// CleanMerchantName normalizes a raw statement description for rule
// matching: corporate prefixes and suffixes go, filler glyphs are
// deleted outright so joined names stay joined, whitespace collapses
// to single spaces.
func CleanMerchantName(raw string) string {
	name := strings.TrimSpace(raw)
	name = corporatePrefixRe.ReplaceAllString(name, "")
	name = corporateSuffixRe.ReplaceAllString(name, "")
	name = fillerGlyphRe.ReplaceAllString(name, "")
	name = whitespaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}
