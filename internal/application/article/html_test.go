package article

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindH2(t *testing.T) {
	body := `<p>intro</p><h2 id="a">First <em>one</em></h2><p>x</p><H2>Second</H2>`
	hs := FindH2(body)
	require.Len(t, hs, 2)

	assert.Equal(t, "First one", hs[0].Text)
	assert.Equal(t, "Second", hs[1].Text)
	assert.Equal(t, "</h2>", body[hs[0].CloseEnd-5:hs[0].CloseEnd])
	assert.Equal(t, len(body), hs[1].CloseEnd)
}

func TestFindH2_LengthChangingCaseFolds(t *testing.T) {
	cases := []struct {
		name   string
		prefix string
	}{
		{"dotted capital I", "<p>İstanbul gezisi</p>"},
		{"a with stroke", "<p>" + strings.Repeat("Ⱥ", 10) + "</p>"},
		{"invalid utf8", "<p>\xff\xfe broken</p>"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := tc.prefix + "<h2>Sultanahmet</h2><p>text</p>"
			hs := FindH2(body)
			require.Len(t, hs, 1)
			assert.Equal(t, "Sultanahmet", hs[0].Text)
			assert.Equal(t, "</h2>", body[hs[0].CloseEnd-5:hs[0].CloseEnd])

			out := InsertAfter(body, []Insertion{{Offset: hs[0].CloseEnd, HTML: "<figure></figure>"}})
			assert.Equal(t, tc.prefix+"<h2>Sultanahmet</h2><figure></figure><p>text</p>", out)
		})
	}
}

func TestInsertAfter_UsesOriginalOffsets(t *testing.T) {
	body := "aaa|bbb|ccc"
	out := InsertAfter(body, []Insertion{
		{Offset: 4, HTML: "[1]"},
		{Offset: 8, HTML: "[2]"},
		{Offset: 0, HTML: "[0]"},
	})
	assert.Equal(t, "[0]aaa|[1]bbb|[2]ccc", out)

	assert.Equal(t, body, InsertAfter(body, []Insertion{{Offset: 99, HTML: "x"}}))
}

func TestFigureHTML_Escapes(t *testing.T) {
	got := FigureHTML("https://cdn.example/a.webp?x=1&y=2", `Tom's "cafe"`, 1200, 800)
	assert.True(t, strings.HasPrefix(got, `<figure class="inline-image"><img src="https://cdn.example/a.webp?x=1&amp;y=2"`))
	assert.Contains(t, got, `alt="Tom&#39;s &#34;cafe&#34;"`)
	assert.True(t, strings.HasSuffix(got, "</figure>"))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Hello world again", PlainText("<p>Hello <b>world</b></p>\n\n<p>again</p>"))
	assert.Equal(t, "", PlainText("   "))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "京都の紅葉", TruncateRunes("京都の紅葉ガイド", 5))
	assert.Equal(t, "short", TruncateRunes("short", 60))
	assert.Equal(t, "", TruncateRunes("x", 0))
	assert.Equal(t, "abc", TruncateRunes("abc def", 4))
}

func bodyWithHeadings(n int) string {
	var b strings.Builder
	b.WriteString("<p>intro</p>\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "<h2>Section %d</h2>\n<p>text %d</p>\n", i, i)
	}
	return b.String()
}

func TestInlineImages_PlacementPerHeadingCount(t *testing.T) {
	for n := 1; n <= 6; n++ {
		t.Run(fmt.Sprintf("%d headings", n), func(t *testing.T) {
			f := newFixture()
			g := f.generator()
			d := &Draft{Title: "T", Body: bodyWithHeadings(n), Pattern: &entityPatternP1}

			require.NoError(t, g.inlineImages(testContext(), testTenant, d))

			want := min(n, 4)
			assert.Equal(t, want, strings.Count(d.Body, `<figure class="inline-image"`))
			assert.Equal(t, want, strings.Count(d.Body, `</h2><figure class="inline-image"`))
			assert.Equal(t, want, d.InlineImages)
			for i := 1; i <= want; i++ {
				assert.Contains(t, d.Body, fmt.Sprintf("Section %d</h2><figure", i))
			}
			if n > 4 {
				assert.Contains(t, d.Body, "Section 5</h2>\n<p>")
			}
		})
	}
}

func TestInlineImages_SkipsFailedHeading(t *testing.T) {
	f := newFixture()
	f.media.failAlt = "Section 2"
	g := f.generator()
	d := &Draft{Title: "T", Body: bodyWithHeadings(5), Pattern: &entityPatternP1}

	require.NoError(t, g.inlineImages(testContext(), testTenant, d))

	assert.Equal(t, 3, strings.Count(d.Body, `<figure class="inline-image"`))
	assert.Contains(t, d.Body, "Section 2</h2>\n<p>text 2</p>")
	assert.Contains(t, d.Body, "Section 3</h2><figure")
	assert.Equal(t, 3, d.InlineImages)
}

func TestInlineImages_NoHeadings(t *testing.T) {
	f := newFixture()
	g := f.generator()
	d := &Draft{Title: "T", Body: "<p>only text</p>", Pattern: &entityPatternP1}

	require.NoError(t, g.inlineImages(testContext(), testTenant, d))
	assert.Equal(t, "<p>only text</p>", d.Body)
	assert.Empty(t, f.images.prompts)
}
