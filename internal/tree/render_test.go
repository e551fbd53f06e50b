package tree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustStyle(t *testing.T, name string) Style {
	t.Helper()
	s, err := LookupStyle(name)
	require.NoError(t, err)
	return s
}

func sampleTree() *Node {
	return NewBranch("R",
		NewBranch("A", NewBranch("A1"), NewBranch("A2")),
		NewBranch("B"),
	)
}

func TestRenderSecondLevelGrouping(t *testing.T) {
	t.Parallel()

	root := NewBranch("example.com",
		NewBranch("mail.example.com"),
		NewBranch("www.example.com"),
	)
	got := Render(root, Options{Style: mustStyle(t, "unicode")})

	want := "example.com\n" +
		"├─mail.example.com\n" +
		"└─www.example.com"
	assert.Equal(t, want, got)
}

func TestRenderIncludeRootUsesLastSiblingStyling(t *testing.T) {
	t.Parallel()

	got := Render(sampleTree(), Options{Style: mustStyle(t, "ascii"), IncludeRoot: true})

	want := strings.Join([]string{
		`\-R`,
		`  +-A`,
		`  | +-A1`,
		`  | \-A2`,
		`  \-B`,
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRenderStyles(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		style string
		want  []string
	}{
		{"ascii", []string{"R", "+-A", "| +-A1", `| \-A2`, `\-B`}},
		{"ascii2", []string{"R", "+-A", "| +-A1", "| `-A2", "`-B"}},
		{"ascii-compact", []string{"R", "+A", "|+A1", `|\A2`, `\B`}},
		{"ascii2-compact", []string{"R", "+A", "|+A1", "|`A2", "`B"}},
		{"arrows", []string{"R", "->A", "| ->A1", "| ->A2", "->B"}},
		{"harrows", []string{"R", "#>A", "| #>A1", "| #>A2", "#>B"}},
		{"bars", []string{"R", "|A", "||A1", "||A2", "|B"}},
		{"yaml", []string{"R", "-A", " -A1", " -A2", "-B"}},
		{"empty", []string{"R", "A", "A1", "A2", "B"}},
		{"compact", []string{"R", "├A", "│├A1", "│└A2", "└B"}},
		{"unicode", []string{"R", "├─A", "│ ├─A1", "│ └─A2", "└─B"}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.style, func(t *testing.T) {
			t.Parallel()
			got := Render(sampleTree(), Options{Style: mustStyle(t, tc.style)})
			assert.Equal(t, strings.Join(tc.want, "\n"), got)
		})
	}
}

func TestRenderLastSiblingSubtreeHangsOnBlanks(t *testing.T) {
	t.Parallel()

	root := NewBranch("R", NewBranch("A", NewBranch("A1")))
	got := Render(root, Options{Style: mustStyle(t, "unicode")})

	assert.Equal(t, "R\n└─A\n  └─A1", got)
}

func TestRenderLeafPrefixOnlyForTrueLeaves(t *testing.T) {
	t.Parallel()

	style := Style{
		IndentPrefix: "|",
		TPrefix:      "+-",
		LastPrefix:   Set(`\-`),
		LeafPrefix:   Set("*"),
	}
	root := NewBranch("R",
		NewLeaf("a"),
		NewBranch("b"),
		NewLeaf("c"),
	)

	got := Render(root, Options{Style: style})
	assert.Equal(t, "R\n*a\n+-b\n*c", got)
}

func TestRenderEmptyLeafPrefixIsIgnored(t *testing.T) {
	t.Parallel()

	style := Style{IndentPrefix: "|", TPrefix: "+-", LeafPrefix: Set("")}
	got := Render(NewBranch("R", NewLeaf("a")), Options{Style: style})
	assert.Equal(t, "R\n+-a", got)
}

func TestRenderSpacesPadsPrefixAndIndent(t *testing.T) {
	t.Parallel()

	root := NewBranch("R",
		NewBranch("A", NewBranch("A1")),
		NewBranch("B"),
	)
	got := Render(root, Options{Style: mustStyle(t, "unicode"), Spaces: 1})

	want := strings.Join([]string{
		"R",
		"├─ A",
		"│  └─ A1",
		"└─ B",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRenderColoredWrapsEveryLine(t *testing.T) {
	t.Parallel()

	root := NewBranch("example.com", NewBranch("mail.example.com"))
	got := Render(root, Options{Style: mustStyle(t, "unicode"), Colored: true})

	want := "\x1b[91mexample.com\x1b[0m\n" +
		"\x1b[91m\x1b[92m└─mail.example.com\x1b[0m\x1b[0m"
	assert.Equal(t, want, got)
}

func TestRenderColoredNestedIndentInsideParentColor(t *testing.T) {
	t.Parallel()

	root := NewBranch("R", NewBranch("A", NewBranch("A1")), NewBranch("B"))
	lines := Lines(root, Options{Style: mustStyle(t, "ascii"), Colored: true}, Root, 0)

	require.Len(t, lines, 4)
	assert.Equal(t,
		"\x1b[91m"+"\x1b[92m"+"| "+"\x1b[93m"+`\-A1`+Reset+Reset+Reset,
		lines[2],
	)
}

func TestRenderNilNode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", Render(nil, Options{}))
	assert.Nil(t, Lines(nil, Options{}, Default, 0))
}

func TestLinesKindSelectsPrefix(t *testing.T) {
	t.Parallel()

	opts := Options{Style: mustStyle(t, "ascii")}
	leaf := NewBranch("x")

	assert.Equal(t, []string{"+-x"}, Lines(leaf, opts, Default, 0))
	assert.Equal(t, []string{`\-x`}, Lines(leaf, opts, Last, 0))
	assert.Equal(t, []string{"x"}, Lines(leaf, opts, Root, 0))

	var zero Kind
	assert.Equal(t, Default, zero)
}

func TestColorForCyclesEverySixLevels(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "\x1b[91m", ColorFor(0))
	assert.Equal(t, "\x1b[96m", ColorFor(5))
	assert.Equal(t, ColorFor(0), ColorFor(PaletteSize))
	assert.Equal(t, "\x1b[92m", ColorFor(7))

	p := Palette()
	p[0] = "mutated"
	assert.Equal(t, "\x1b[91m", ColorFor(0))
}

func TestColorForNegativeDepthUsesAbsoluteValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ColorFor(1), ColorFor(-1))
	assert.Equal(t, ColorFor(7), ColorFor(-7))
}

func TestNodeLeafAndBranch(t *testing.T) {
	t.Parallel()

	leaf := NewLeaf("a")
	assert.True(t, leaf.IsLeaf())
	assert.Nil(t, leaf.Children())

	empty := NewBranch("b")
	assert.False(t, empty.IsLeaf())
	assert.NotNil(t, empty.Children())
	assert.Empty(t, empty.Children())

	leaf.Add(NewLeaf("c"))
	assert.False(t, leaf.IsLeaf())
	assert.Len(t, leaf.Children(), 1)
}
