package document

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDecompress(t *testing.T) {
	plain := []byte("<html><title>t</title></html>")

	out, err := Decompress(gzipped(t, plain), "gzip", 0)
	require.NoError(t, err)
	assert.Equal(t, plain, out)

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	stacked := enc.EncodeAll(gzipped(t, plain), nil)
	out, err = Decompress(stacked, "gzip, zstd", 0)
	require.NoError(t, err)
	assert.Equal(t, plain, out)

	out, err = Decompress(plain, "identity", 0)
	require.NoError(t, err)
	assert.Equal(t, plain, out)

	_, err = Decompress(plain, "br", 0)
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)
}

func TestDecompressLimit(t *testing.T) {
	out, err := Decompress(gzipped(t, bytes.Repeat([]byte("a"), 100)), "gzip", 10)
	require.NoError(t, err)
	assert.Len(t, out, 10)
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, "text/html", MediaType("text/html; charset=utf-8", nil))
	assert.Equal(t, "application/pdf", MediaType("", []byte("%PDF-1.7\n")))
	assert.True(t, IsHTML(MediaType("", []byte("<!DOCTYPE html><html><body>x</body></html>"))))
	assert.True(t, IsText("application/json"))
	assert.False(t, IsText("image/png"))
}

func TestToUTF8(t *testing.T) {
	latin1 := []byte("<p>caf\xe9</p>")
	out, name, err := ToUTF8(latin1, "text/html; charset=iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "<p>café</p>", out)
	assert.Equal(t, "windows-1252", name)

	out, name, err = ToUTF8([]byte(`<meta charset="utf-8"><p>naïve</p>`), "text/html")
	require.NoError(t, err)
	assert.Equal(t, "utf-8", name)
	assert.Contains(t, out, "naïve")

	out, name, err = ToUTF8([]byte("<p>déjà vu</p>"), "text/html")
	require.NoError(t, err)
	assert.Equal(t, "utf-8", name)
	assert.Equal(t, "<p>déjà vu</p>", out)
}

func TestParse(t *testing.T) {
	html := `<html><head>
		<title>  Hello
		 World </title>
		<base href=" /static/ ">
		<meta http-equiv="Refresh" content="5; URL='/next'">
	</head><body><a href="/a">a</a><a href=" b ">b</a></body></html>`

	info, err := Parse(html)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", info.Title)
	assert.Equal(t, "/static/", info.BaseHref)
	require.NotNil(t, info.Refresh)
	assert.Equal(t, Refresh{Delay: 5, URL: "/next"}, *info.Refresh)
	assert.Equal(t, []string{"/a", "b"}, info.Links)
}

func TestParseRefresh(t *testing.T) {
	tests := []struct {
		in   string
		want *Refresh
	}{
		{"0", &Refresh{}},
		{"3;url=/x", &Refresh{Delay: 3, URL: "/x"}},
		{"1.5, https://a.test/", &Refresh{Delay: 1, URL: "https://a.test/"}},
		{"x", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseRefresh(tt.in))
		})
	}
}

func TestXPathAndSelect(t *testing.T) {
	html := `<ul><li class="x">one</li><li>two</li></ul>`

	got, err := XPath(html, "//li")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, got)

	_, err = XPath(html, "//li[")
	assert.Error(t, err)

	got, err = Select(html, "li.x")
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, got)
}

func TestSanitize(t *testing.T) {
	out := Sanitize(`<p onclick="x()">hi<script>alert(1)</script></p>`)
	assert.Equal(t, "<p>hi</p>", out)
}
