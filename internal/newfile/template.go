package newfile

import (
	"fmt"
	"strings"
)

// cursorMarker is the placeholder embedded in body templates. It is stripped
// before the file is written; its offset becomes the cursor position.
const cursorMarker = "@@"

// Position is a zero-based line/character pair, UTF-8 columns.
type Position struct {
	Line      int
	Character int
}

// Template is fully rendered file content with the cursor already resolved.
type Template struct {
	Content string
	Cursor  Position
}

// renderTemplate produces the content for one kind. header is prepended
// verbatim (empty when no package statement applies); ident is the declared
// identifier, already reduced to the last path segment by the caller.
func renderTemplate(kind Kind, ident, header string) (Template, error) {
	var body string
	switch kind {
	case KindCaseClass:
		body = fmt.Sprintf("final case class %s(%s)", ident, cursorMarker)
	case KindClass, KindObject, KindTrait:
		body = fmt.Sprintf("%s %s {\n  %s\n}\n", kind.keyword(), ident, cursorMarker)
	case KindPackageObject:
		// Content is the header alone; an empty header means an empty file.
		return Template{Content: header}, nil
	case KindWorksheet, KindScript:
		return Template{}, nil
	default:
		return Template{}, fmt.Errorf("no template for kind %q", kind.ID())
	}
	return stripMarker(header + body)
}

// stripMarker removes the single cursor marker from text and converts its
// byte offset to a line/character position in the marker-free content.
func stripMarker(text string) (Template, error) {
	idx := strings.Index(text, cursorMarker)
	if idx < 0 {
		return Template{}, fmt.Errorf("template has no cursor marker")
	}
	if strings.Contains(text[idx+len(cursorMarker):], cursorMarker) {
		return Template{}, fmt.Errorf("template has more than one cursor marker")
	}
	content := text[:idx] + text[idx+len(cursorMarker):]
	before := text[:idx]
	line := strings.Count(before, "\n")
	col := idx
	if nl := strings.LastIndex(before, "\n"); nl >= 0 {
		col = idx - nl - 1
	}
	return Template{
		Content: content,
		Cursor:  Position{Line: line, Character: col},
	}, nil
}
