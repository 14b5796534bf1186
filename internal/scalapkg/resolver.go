// Package scalapkg infers the package statement for a Scala file from its
// position under the workspace's source roots.
package scalapkg

import (
	"path/filepath"
	"strings"
	"unicode"
)

// Reserved words that need backtick quoting when they show up as a path
// segment (e.g. src/main/scala/type/Foo.scala).
var scalaKeywords = map[string]struct{}{
	"abstract": {}, "case": {}, "catch": {}, "class": {}, "def": {},
	"do": {}, "else": {}, "extends": {}, "false": {}, "final": {},
	"finally": {}, "for": {}, "forSome": {}, "if": {}, "implicit": {},
	"import": {}, "lazy": {}, "match": {}, "new": {}, "null": {},
	"object": {}, "override": {}, "package": {}, "private": {},
	"protected": {}, "return": {}, "sealed": {}, "super": {}, "this": {},
	"throw": {}, "trait": {}, "true": {}, "try": {}, "type": {}, "val": {},
	"var": {}, "while": {}, "with": {}, "yield": {},
}

// Resolver maps target paths to package statements.
type Resolver struct {
	roots []string
}

// NewResolver builds a resolver over absolute source roots. Roots should be
// ordered deepest first; the first root enclosing the target wins.
func NewResolver(roots []string) *Resolver {
	return &Resolver{roots: roots}
}

// HeaderFor returns the package statement for a file at target, terminated
// by a blank line, or "" when the file sits directly at a source root or
// outside every root.
func (r *Resolver) HeaderFor(target string) string {
	dir := filepath.Dir(target)
	for _, root := range r.roots {
		rel, err := filepath.Rel(root, dir)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		segments := strings.Split(filepath.ToSlash(rel), "/")
		for i, seg := range segments {
			segments[i] = quoteIfNeeded(seg)
		}
		return "package " + strings.Join(segments, ".") + "\n\n"
	}
	return ""
}

// quoteIfNeeded backtick-quotes segments that are not plain Scala
// identifiers.
func quoteIfNeeded(seg string) string {
	if isPlainIdent(seg) {
		return seg
	}
	return "`" + seg + "`"
}

func isPlainIdent(seg string) bool {
	if seg == "" {
		return false
	}
	if _, reserved := scalaKeywords[seg]; reserved {
		return false
	}
	for i, r := range seg {
		switch {
		case unicode.IsLetter(r) || r == '_' || r == '$':
		case unicode.IsDigit(r) && i > 0:
		default:
			return false
		}
	}
	return true
}
