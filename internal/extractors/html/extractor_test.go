package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strip(t *testing.T, src string) string {
	t.Helper()
	doc, err := parse(src)
	require.NoError(t, err)
	return visibleText(doc)
}

func TestVisibleText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"paragraphs", "<p>one</p><p>two</p>", "one\ntwo"},
		{"scripts and styles", "<style>p{}</style><p>x</p><script>alert(1)</script>", "x"},
		{"script holding a closing tag", `<p>a</p><script>var s = "</p><p>leak";</script><p>b</p>`, "a\nb"},
		{"noscript template svg", "<noscript>enable js</noscript><template><p>t</p></template><svg><text>s</text></svg><p>ok</p>", "ok"},
		{"comments", "a<!-- hidden -->b", "ab"},
		{"entities", "<p>fish &amp; chips&nbsp;today</p>", "fish & chips today"},
		{"br", "line1<br/>line2<br>line3", "line1\nline2\nline3"},
		{"table cells", "<table><tr><td>a</td><td>b</td></tr></table>", "a b"},
		{"table rows", "<table><tr><td>a</td></tr><tr><td>b</td></tr></table>", "a\nb"},
		{"inline tags", "<p>a <b>bold</b> word</p>", "a bold word"},
		{"attribute holding >", `<p>Price <img alt="a>b" src="x.png"> list</p>`, "Price list"},
		{"attribute holding a tag", `<p title="<b>x</b>">shown</p>`, "shown"},
		{"unclosed paragraphs", "<p>one<p>two", "one\ntwo"},
		{"collapses spaces", "<div>  lots \t of   space </div>", "lots of space"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, strip(t, tc.in))
		})
	}
}

func TestTitleOf(t *testing.T) {
	doc, err := parse("<html><head><title> Q3 &amp;Report </title></head></html>")
	require.NoError(t, err)
	assert.Equal(t, "Q3 &Report", titleOf(doc))

	doc, err = parse("<p>no title</p>")
	require.NoError(t, err)
	assert.Equal(t, "", titleOf(doc))
}

func TestExtract_PrependsTitle(t *testing.T) {
	doc := "<html><head><title>Handbook</title></head><body><h1>Welcome</h1><p>Rules.</p></body></html>"

	got, err := New().Extract(context.Background(), []byte(doc))

	require.NoError(t, err)
	assert.Equal(t, "Handbook\n\nWelcome\nRules.", got)
}

func TestExtract_TitleRepeatedInBody(t *testing.T) {
	doc := "<head><title>Guide</title></head><h1>Guide</h1><p>body</p>"

	got, err := New().Extract(context.Background(), []byte(doc))

	require.NoError(t, err)
	assert.Equal(t, "Guide\nbody", got)
}

func TestExtract_HeadMetadataIsNotBodyText(t *testing.T) {
	doc := `<html><head><title>T</title><meta name="x" content="y"><style>b{}</style></head><body><p>text</p></body></html>`

	got, err := New().Extract(context.Background(), []byte(doc))

	require.NoError(t, err)
	assert.Equal(t, "T\n\ntext", got)
}
