package scrape

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Parse_StructuredDataBlock(t *testing.T) {
	t.Parallel()
	html := `<html><head>
	<script type="application/ld+json">{"@type":"Corporation","price":2845.50}</script>
	</head><body>Previous close: 2,830.10</body></html>`

	ex, ok := Parse(html)
	require.True(t, ok)
	require.Equal(t, 2845.50, ex.Price)
	require.Equal(t, 2830.10, ex.PrevClose)
}

func Test_Parse_StructuredDataNestedOffers(t *testing.T) {
	t.Parallel()
	html := `<script type="application/ld+json">{"offers":{"price":"1,234.56"}}</script>`

	ex, ok := Parse(html)
	require.True(t, ok)
	require.Equal(t, 1234.56, ex.Price)
}

func Test_Parse_PriceAttrFallback(t *testing.T) {
	t.Parallel()
	html := `<div class="widget" data-last-price="512.30" data-previous-close="508.00"></div>`

	ex, ok := Parse(html)
	require.True(t, ok)
	require.Equal(t, 512.30, ex.Price)
	require.Equal(t, 508.00, ex.PrevClose)
}

func Test_Parse_MetaItemprop(t *testing.T) {
	t.Parallel()
	html := `<meta itemprop="price" content="99.95">`

	ex, ok := Parse(html)
	require.True(t, ok)
	require.Equal(t, 99.95, ex.Price)
}

func Test_Parse_LastPriceElement(t *testing.T) {
	t.Parallel()
	html := `<span class="quote last-price large">₹ 1,540.25</span>`

	ex, ok := Parse(html)
	require.True(t, ok)
	require.Equal(t, 1540.25, ex.Price)
}

func Test_Parse_PrevCloseJSONField(t *testing.T) {
	t.Parallel()
	html := `<meta itemprop="price" content="200"><script>var s={"previousClose":"195.5"};</script>`

	ex, ok := Parse(html)
	require.True(t, ok)
	require.Equal(t, 195.5, ex.PrevClose)
}

func Test_Parse_MissingPrevMirrorsPrice(t *testing.T) {
	t.Parallel()
	html := `<meta itemprop="price" content="77.7">`

	ex, ok := Parse(html)
	require.True(t, ok)
	require.Equal(t, ex.Price, ex.PrevClose)
}

func Test_Parse_NoDataOnEmptyDocument(t *testing.T) {
	t.Parallel()
	_, ok := Parse("<html><body>nothing here</body></html>")
	require.False(t, ok)

	_, ok = Parse("")
	require.False(t, ok)
}

func Test_Parse_MalformedStructuredBlockFallsThrough(t *testing.T) {
	t.Parallel()
	html := `<script type="application/ld+json">{not json</script>
	<div data-last-price="300.10"></div>`

	ex, ok := Parse(html)
	require.True(t, ok)
	require.Equal(t, 300.10, ex.Price)
}

func Test_ParseNumber(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1,234.56", 1234.56, true},
		{"₹2,845.50", 2845.50, true},
		{"  99 ", 99, true},
		{"0", 0, false},
		{"-12.5", 0, false},
		{"", 0, false},
		{"N/A", 0, false},
		{".", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseNumber(tc.in)
		require.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			require.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}
