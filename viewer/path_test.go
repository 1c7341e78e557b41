package viewer

import (
	"slices"
	"testing"
)

func TestParseMethodPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "bare identifier", input: "animate", want: []string{"animate"}},
		{name: "dotted path", input: "viewer.controlAnimation", want: []string{"viewer", "controlAnimation"}},
		{name: "single index", input: "parts[0].show", want: []string{"parts", "0", "show"}},
		{name: "comma separated indexes", input: "a[1,2].b", want: []string{"a", "1", "2", "b"}},
		{name: "repeated index groups", input: "a[1][2]", want: []string{"a", "1", "2"}},
		{name: "index on last segment", input: "tree.nodes[12]", want: []string{"tree", "nodes", "12"}},
		{name: "dollar and underscore", input: "obj$_1.x", want: []string{"obj$_1", "x"}},
		{name: "leading digit identifier", input: "0leading.ok", want: []string{"0leading", "ok"}},
		{name: "underscore only", input: "_", want: []string{"_"}},
		{name: "wide index list", input: "grid[10,20,30]", want: []string{"grid", "10", "20", "30"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseMethodPath(tt.input)
			if !ok {
				t.Fatalf("ParseMethodPath(%q) did not match", tt.input)
			}
			if !slices.Equal(got, tt.want) {
				t.Fatalf("ParseMethodPath(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMethodPathRejectsMalformedInput(t *testing.T) {
	inputs := []string{
		"",
		"a..b",
		"a.",
		".a",
		"a[]",
		"a[1,]",
		"a[,1]",
		"a[1",
		"a]1[",
		"a[x]",
		"a[-1]",
		"a b",
		"a.b!",
		"viewer.controlAnimation ",
		"[0]",
		"a.b[",
	}
	for _, input := range inputs {
		if got, ok := ParseMethodPath(input); ok {
			t.Errorf("ParseMethodPath(%q) = %v, want no match", input, got)
		}
	}
}

func TestParseMethodPathReturnsNilOnFailure(t *testing.T) {
	got, ok := ParseMethodPath("a..b")
	if ok || got != nil {
		t.Fatalf("ParseMethodPath(a..b) = %v, %v; want nil, false", got, ok)
	}
}
