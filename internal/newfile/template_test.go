package newfile

import "testing"

func TestRenderBodyTemplates(t *testing.T) {
	cases := []struct {
		kind    Kind
		ident   string
		header  string
		content string
		cursor  Position
	}{
		{
			kind:    KindCaseClass,
			ident:   "Point",
			content: "final case class Point()",
			cursor:  Position{Line: 0, Character: 23},
		},
		{
			kind:    KindClass,
			ident:   "Greeter",
			content: "class Greeter {\n  \n}\n",
			cursor:  Position{Line: 1, Character: 2},
		},
		{
			kind:    KindObject,
			ident:   "Main",
			content: "object Main {\n  \n}\n",
			cursor:  Position{Line: 1, Character: 2},
		},
		{
			kind:    KindTrait,
			ident:   "Api",
			content: "trait Api {\n  \n}\n",
			cursor:  Position{Line: 1, Character: 2},
		},
		{
			kind:    KindClass,
			ident:   "Greeter",
			header:  "package greet\n",
			content: "package greet\nclass Greeter {\n  \n}\n",
			cursor:  Position{Line: 2, Character: 2},
		},
		{
			kind:    KindCaseClass,
			ident:   "Point",
			header:  "package geo.shapes\n\n",
			content: "package geo.shapes\n\nfinal case class Point()",
			cursor:  Position{Line: 2, Character: 23},
		},
	}
	for _, tc := range cases {
		got, err := renderTemplate(tc.kind, tc.ident, tc.header)
		if err != nil {
			t.Fatalf("%s: renderTemplate: %v", tc.kind.ID(), err)
		}
		if got.Content != tc.content {
			t.Fatalf("%s: content = %q, want %q", tc.kind.ID(), got.Content, tc.content)
		}
		if got.Cursor != tc.cursor {
			t.Fatalf("%s: cursor = %+v, want %+v", tc.kind.ID(), got.Cursor, tc.cursor)
		}
	}
}

func TestRenderEmptyKinds(t *testing.T) {
	for _, kind := range []Kind{KindWorksheet, KindScript} {
		got, err := renderTemplate(kind, "ignored", "")
		if err != nil {
			t.Fatalf("%s: renderTemplate: %v", kind.ID(), err)
		}
		if got.Content != "" || got.Cursor != (Position{}) {
			t.Fatalf("%s: got %+v, want empty content at document start", kind.ID(), got)
		}
	}
}

func TestRenderPackageObjectIsHeaderOnly(t *testing.T) {
	got, err := renderTemplate(KindPackageObject, "", "package greet\n")
	if err != nil {
		t.Fatalf("renderTemplate: %v", err)
	}
	if got.Content != "package greet\n" {
		t.Fatalf("content = %q", got.Content)
	}
	if got.Cursor != (Position{}) {
		t.Fatalf("cursor = %+v, want document start", got.Cursor)
	}
}

func TestStripMarkerRejectsBadTemplates(t *testing.T) {
	if _, err := stripMarker("no marker here"); err == nil {
		t.Fatal("expected error for missing marker")
	}
	if _, err := stripMarker("one @@ two @@"); err == nil {
		t.Fatal("expected error for duplicate marker")
	}
}
