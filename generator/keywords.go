package generator

import "strings"

// swiftCaseKeywords are member-position keywords. A case or field whose
// name lands on one is wrapped in backticks.
var swiftCaseKeywords = map[string]struct{}{
	"associatedtype": {}, "class": {}, "deinit": {}, "enum": {}, "extension": {},
	"fileprivate": {}, "func": {}, "import": {}, "init": {}, "inout": {},
	"internal": {}, "let": {}, "open": {}, "operator": {}, "private": {},
	"protocol": {}, "public": {}, "rethrows": {}, "static": {}, "struct": {},
	"subscript": {}, "typealias": {}, "var": {}, "break": {}, "case": {},
	"continue": {}, "default": {}, "defer": {}, "do": {}, "else": {},
	"fallthrough": {}, "for": {}, "guard": {}, "if": {}, "in": {}, "repeat": {},
	"return": {}, "switch": {}, "where": {}, "while": {}, "as": {}, "any": {},
	"catch": {}, "false": {}, "is": {}, "nil": {}, "super": {}, "self": {},
	"throw": {}, "throws": {}, "true": {}, "try": {},
}

// swiftTypeKeywords clash with declaration names at type position. Matching
// is case-insensitive; a generated type landing on one gets a kind suffix
// (`_Enum`, `_Fragment`).
var swiftTypeKeywords = map[string]struct{}{
	"type": {}, "protocol": {}, "self": {}, "any": {},
}

func isCaseReserved(name string) bool {
	_, ok := swiftCaseKeywords[name]
	return ok
}

func isTypeReserved(name string) bool {
	_, ok := swiftTypeKeywords[strings.ToLower(name)]
	return ok
}

// escapeCaseName backticks member names that collide with keywords.
func escapeCaseName(name string) string {
	if isCaseReserved(name) {
		return "`" + name + "`"
	}
	return name
}

// firstUppercased uppercases the first rune, leaving the rest alone.
func firstUppercased(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// firstLowercased lowercases the first rune, leaving the rest alone.
func firstLowercased(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
