package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// ErrUnsupportedEncoding is returned for content codings Decompress cannot undo.
var ErrUnsupportedEncoding = errors.New("unsupported content encoding")

// AcceptEncoding lists the codings Decompress understands.
const AcceptEncoding = "gzip, deflate, zstd"

// Decompress undoes a Content-Encoding header value. Codings are applied
// in order, so they are removed in reverse. At most limit bytes of output
// are kept when limit is positive.
func Decompress(body []byte, contentEncoding string, limit int64) ([]byte, error) {
	codings := strings.Split(contentEncoding, ",")
	for i := len(codings) - 1; i >= 0; i-- {
		coding := strings.ToLower(strings.TrimSpace(codings[i]))
		var (
			r   io.Reader
			err error
		)
		switch coding {
		case "", "identity":
			continue
		case "gzip", "x-gzip":
			r, err = gzip.NewReader(bytes.NewReader(body))
		case "deflate":
			r = flate.NewReader(bytes.NewReader(body))
		case "zstd":
			var zr *zstd.Decoder
			zr, err = zstd.NewReader(bytes.NewReader(body))
			if err == nil {
				defer zr.Close()
				r = zr
			}
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, coding)
		}
		if err != nil {
			return nil, fmt.Errorf("%s decode: %w", coding, err)
		}
		if limit > 0 {
			r = io.LimitReader(r, limit)
		}
		if body, err = io.ReadAll(r); err != nil {
			return nil, fmt.Errorf("%s decode: %w", coding, err)
		}
	}
	return body, nil
}

// MediaType returns the essence of contentType ("text/html"), sniffing
// body when the header is missing or unparsable.
func MediaType(contentType string, body []byte) string {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			return mt
		}
	}
	mt, _, _ := mime.ParseMediaType(mimetype.Detect(body).String())
	return mt
}

// IsHTML reports whether a media type is parsed as markup.
func IsHTML(mediaType string) bool {
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// IsText reports whether a media type is shown as text.
func IsText(mediaType string) bool {
	return strings.HasPrefix(mediaType, "text/") || IsHTML(mediaType) ||
		mediaType == "application/json" || mediaType == "application/xml"
}

// ToUTF8 converts body to UTF-8 and reports the encoding it used. Bodies
// that are valid UTF-8 without a declaration are taken as UTF-8.
func ToUTF8(body []byte, contentType string) (string, string, error) {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if !certain && name != "utf-8" {
		if guess := detectCharset(body); guess != "" {
			if e, canonical := charset.Lookup(guess); e != nil {
				enc, name = e, canonical
			}
		}
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return "", name, fmt.Errorf("decode %s: %w", name, err)
	}
	return string(out), name, nil
}

// detectCharset guesses an encoding, returning "" when confidence is low.
func detectCharset(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	res, err := chardet.NewTextDetector().DetectBest(body)
	if err != nil || res == nil || res.Confidence < 50 {
		return ""
	}
	return strings.ToLower(res.Charset)
}
